package library

import (
	"fmt"

	"github.com/spf13/cobra"

	"animehub/internal/cli/session"
	"animehub/pkg/models"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show your library summary",
	Long:  "Per-category counts plus total entries and episodes watched",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := session.NewAuthedClient()
		if err != nil {
			return err
		}

		summary, err := api.GetSummary(cmd.Context(), session.UserID())
		if err != nil {
			return fmt.Errorf("failed to get summary: %w", err)
		}

		fmt.Printf("\nLibrary summary:\n\n")
		for _, tag := range models.WatchTags {
			fmt.Printf("  %-14s %d\n", tag, summary.Counts[tag])
		}
		fmt.Printf("  %-14s %d\n", models.TagFavourites, summary.Counts[models.TagFavourites])
		fmt.Printf("  %-14s %d\n", models.TagLikes, summary.Counts[models.TagLikes])
		fmt.Printf("  %-14s %d\n\n", models.TagDislikes, summary.Counts[models.TagDislikes])
		fmt.Printf("  Total entries: %d\n", summary.TotalEntries)
		fmt.Printf("  Episodes watched: %d\n\n", summary.Episodes)
		return nil
	},
}

func init() {
	LibraryCmd.AddCommand(summaryCmd)
}
