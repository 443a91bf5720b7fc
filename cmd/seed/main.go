package main

import (
	"context"
	"fmt"
	"os"

	"github.com/anonto42/moments/backend/internal/bootstrap"
	"github.com/anonto42/moments/backend/internal/ledger"
	"github.com/anonto42/moments/backend/internal/logger"
	"github.com/anonto42/moments/backend/internal/seed"
	"github.com/anonto42/moments/backend/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	opts     = seed.DefaultOptions
	seedNum  uint64
	storeArg string
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the document store with fake users, posts and interactions",
	Long: `Seed writes fake profiles and posts, then follows, likes and comments
through the ledgers so counters match their membership sets.

Examples:
  seed --users 50 --follows 10
  seed --store memory --seed 42`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if storeArg != "" {
			cfg.StoreDriver = storeArg
		}
		if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
			return err
		}
		defer logger.Close()

		mode, err := ledger.ParseMode(cfg.LedgerMode)
		if err != nil {
			return err
		}

		ctx := context.Background()
		fb, err := bootstrap.InitFirebase(ctx, cfg)
		if err != nil {
			return err
		}
		docs, err := bootstrap.OpenStore(ctx, cfg, fb)
		if err != nil {
			return err
		}
		defer docs.Close()

		res, err := seed.NewSeeder(docs, mode, seedNum).Seed(ctx, opts)
		if err != nil {
			return err
		}
		logger.Log.Info("Seeding complete",
			zap.Int("users", res.Users),
			zap.Int("posts", res.Posts),
			zap.Int("follows", res.Follows),
			zap.Int("likes", res.Likes),
			zap.Int("comments", res.Comments),
		)
		return nil
	},
}

func init() {
	f := rootCmd.Flags()
	f.IntVar(&opts.Users, "users", opts.Users, "Number of users to create")
	f.IntVar(&opts.PostsPerUser, "posts", opts.PostsPerUser, "Posts per user")
	f.IntVar(&opts.FollowsPerUser, "follows", opts.FollowsPerUser, "Accounts each user follows")
	f.IntVar(&opts.LikesPerPost, "likes", opts.LikesPerPost, "Likes per post")
	f.IntVar(&opts.CommentsPerPost, "comments", opts.CommentsPerPost, "Comments per post")
	f.Uint64Var(&seedNum, "seed", 0, "Random seed (0 picks one)")
	f.StringVar(&storeArg, "store", "", "Override STORE_DRIVER (firestore, mongo or memory)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
