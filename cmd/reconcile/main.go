package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anonto42/moments/backend/internal/bootstrap"
	"github.com/anonto42/moments/backend/internal/ledger"
	"github.com/anonto42/moments/backend/internal/logger"
	"github.com/anonto42/moments/backend/pkg/config"
	"github.com/spf13/cobra"
)

var (
	pageSize int
	modeArg  string
)

var rootCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute like and follow counters from their membership sets",
	Long: `Reconcile scans every post and user once, repairs likesCount,
followersCount and followingCount, removes self-follows and prints a JSON report.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if modeArg != "" {
			cfg.LedgerMode = modeArg
		}
		if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
			return err
		}
		defer logger.Close()

		mode, err := ledger.ParseMode(cfg.LedgerMode)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fb, err := bootstrap.InitFirebase(ctx, cfg)
		if err != nil {
			return err
		}
		docs, err := bootstrap.OpenStore(ctx, cfg, fb)
		if err != nil {
			return err
		}
		defer docs.Close()

		report, err := ledger.NewReconciler(docs, mode).WithPageSize(pageSize).Run(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	rootCmd.Flags().IntVar(&pageSize, "page-size", 0, "Documents read per query (0 uses the default)")
	rootCmd.Flags().StringVar(&modeArg, "mode", "", "Override LEDGER_MODE for repairs")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
