package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/anonto42/moments/backend/internal/client"
	"github.com/anonto42/moments/backend/internal/logger"
	"github.com/anonto42/moments/backend/internal/optimistic"
	"github.com/spf13/cobra"
)

var (
	authToken string
	apiURL    = "http://localhost:8080"
	output    = "text" // "text" or "json"
	verbose   bool

	api *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "moments",
	Short: "Moments CLI - like, follow and browse from the terminal",
	Long: `Moments CLI talks to the moments API. Likes and follows are applied
locally first and rolled back when the server rejects them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			if err := logger.Initialize("debug", ""); err != nil {
				return err
			}
		}
		if authToken == "" {
			authToken = os.Getenv("MOMENTS_TOKEN")
		}
		if authToken == "" && cmd.Name() != "login" && cmd.Name() != "help" {
			return fmt.Errorf("MOMENTS_TOKEN environment variable not set, run `moments login` first")
		}
		api = client.New(apiURL, authToken, 15*time.Second)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "Authentication token (defaults to MOMENTS_TOKEN env var)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", apiURL, "API server URL")
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log HTTP traffic")

	rootCmd.AddCommand(loginCmd, likeCmd, followCmd, searchCmd, feedCmd)
}

func reporter() optimistic.Reporter {
	return optimistic.ZapReporter{Log: logger.Log}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
