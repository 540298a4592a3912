package progress

import (
	"fmt"

	"github.com/spf13/cobra"

	"animehub/internal/cli/session"
	"animehub/pkg/models"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update episode progress",
	Long: "Record how many episodes you have watched. Reaching the declared total\n" +
		"marks the anime Completed; anything below it marks it Watching.",
	RunE: func(cmd *cobra.Command, args []string) error {
		animeID, _ := cmd.Flags().GetInt64("anime-id")
		episodes, _ := cmd.Flags().GetInt("episodes")

		if animeID == 0 {
			return fmt.Errorf("--anime-id is required")
		}

		api, err := session.NewAuthedClient()
		if err != nil {
			return err
		}

		result, err := api.SetProgress(cmd.Context(), animeID, episodes)
		if err != nil {
			return fmt.Errorf("failed to update progress: %w", err)
		}

		fmt.Printf("✓ Progress updated\n")
		if result.Progress != nil {
			fmt.Printf("  Episodes watched: %d\n", result.Progress.Episodes)
		}
		if result.Status != nil {
			if result.Status.Status == models.TagCompleted {
				fmt.Println("  Status: Completed 🎉")
			} else {
				fmt.Printf("  Status: %s\n", result.Status.Status)
			}
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().Int64("anime-id", 0, "Anime ID (required)")
	updateCmd.Flags().Int("episodes", 0, "Episodes watched")
	updateCmd.MarkFlagRequired("anime-id")
	ProgressCmd.AddCommand(updateCmd)
}
