package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/anonto42/moments/backend/internal/optimistic"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Sign in with a local account and print the token",
	Long: `Sign in and print a token to export as MOMENTS_TOKEN.

Examples:
  export MOMENTS_TOKEN=$(moments login sam@example.com hunter22)`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := api.SignIn(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Toggle your like on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		u, err := api.ToggleLike(cmd.Context(), args[0], reporter(),
			optimistic.WithObserver(func(v optimistic.LikeView, s optimistic.State) {
				printLike(out, v, s)
			}))
		if err != nil {
			return fmt.Errorf("%s failed and was rolled back: %w", u.Op, err)
		}
		return nil
	},
}

var followCmd = &cobra.Command{
	Use:   "follow <user-id>",
	Short: "Toggle whether you follow a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		u, err := api.ToggleFollow(cmd.Context(), args[0], reporter(),
			optimistic.WithObserver(func(v optimistic.FollowView, s optimistic.State) {
				printFollow(out, v, s)
			}))
		if err != nil {
			return fmt.Errorf("%s failed and was rolled back: %w", u.Op, err)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <prefix>",
	Short: "Search users by handle prefix",
	Long: `Search users whose username starts with the given prefix (case-insensitive).

Examples:
  moments search sa
  moments search sa --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		users, err := api.Search(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if output == "json" {
			return printJSON(out, users)
		}
		if len(users) == 0 {
			fmt.Fprintln(out, "No users found")
			return nil
		}
		for _, u := range users {
			fmt.Fprintf(out, "@%-30s %s (%s)\n", u.Username, u.DisplayName, u.UID)
		}
		return nil
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show your feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		posts, err := api.Feed(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if output == "json" {
			return printJSON(out, posts)
		}
		for _, p := range posts {
			author := p.UserID
			if p.Author != nil {
				author = "@" + p.Author.Username
			}
			heart := " "
			if p.IsLiked {
				heart = "♥"
			}
			fmt.Fprintf(out, "%s %-20s %s  [%d likes, %d comments] %s\n", heart, author, p.ID, p.LikesCount, p.CommentsCount, p.Caption)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntP("limit", "l", 10, "Maximum number of results")
}

func printLike(w io.Writer, v optimistic.LikeView, s optimistic.State) {
	if output == "json" {
		_ = printJSON(w, map[string]any{"state": s.String(), "view": v})
		return
	}
	fmt.Fprintf(w, "[%s] liked=%t likes=%d\n", s, v.Liked, v.Count)
}

func printFollow(w io.Writer, v optimistic.FollowView, s optimistic.State) {
	if output == "json" {
		_ = printJSON(w, map[string]any{"state": s.String(), "view": v})
		return
	}
	fmt.Fprintf(w, "[%s] following=%t followers=%d\n", s, v.Following, v.Followers)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
