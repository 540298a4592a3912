package library

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"animehub/internal/cli/session"
	"animehub/pkg/models"
)

var reactCmd = &cobra.Command{
	Use:   "react <anime-id>",
	Short: "Like or dislike an anime",
	Long:  "Toggle a like or dislike. Reacting again with the same flag removes it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		animeID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid anime id %q", args[0])
		}

		dislike, _ := cmd.Flags().GetBool("dislike")
		tag := models.TagLikes
		if dislike {
			tag = models.TagDislikes
		}

		api, err := session.NewAuthedClient()
		if err != nil {
			return err
		}

		result, err := api.SetReaction(cmd.Context(), animeID, tag)
		if err != nil {
			return fmt.Errorf("failed to set reaction: %w", err)
		}

		switch result.Effect {
		case models.EffectAdded:
			fmt.Printf("✓ %s recorded\n", tag)
		case models.EffectSwitched:
			fmt.Printf("✓ Switched to %s\n", tag)
		case models.EffectRemoved:
			fmt.Printf("✓ %s removed\n", tag)
		default:
			fmt.Println("✓ No change")
		}
		if result.Counts != nil {
			fmt.Printf("  Likes: %d  Dislikes: %d\n", result.Counts.Likes, result.Counts.Dislikes)
		}
		return nil
	},
}

func init() {
	reactCmd.Flags().Bool("dislike", false, "Dislike instead of like")
	LibraryCmd.AddCommand(reactCmd)
}
