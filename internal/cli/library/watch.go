package library

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"animehub/internal/cli/session"
	"animehub/pkg/models"
)

// watchStates maps the lowercase CLI spelling to the stored tag.
var watchStates = map[string]models.StatusTag{
	"completed":     models.TagCompleted,
	"watching":      models.TagWatching,
	"on-hold":       models.TagOnHold,
	"dropped":       models.TagDropped,
	"plan-to-watch": models.TagPlanToWatch,
	"none":          models.TagSelect,
}

var watchCmd = &cobra.Command{
	Use:   "watch <anime-id> <state>",
	Short: "Set an anime's watch state",
	Long: "Set the watch state: completed, watching, on-hold, dropped, plan-to-watch.\n" +
		"Use \"none\" to clear the watch state and episode progress.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		animeID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid anime id %q", args[0])
		}

		tag, ok := watchStates[strings.ToLower(args[1])]
		if !ok {
			return fmt.Errorf("unknown watch state %q", args[1])
		}

		api, err := session.NewAuthedClient()
		if err != nil {
			return err
		}

		result, err := api.SetWatchState(cmd.Context(), animeID, tag)
		if err != nil {
			return fmt.Errorf("failed to set watch state: %w", err)
		}

		if result.Effect == models.EffectCleared {
			fmt.Println("✓ Watch state and progress cleared")
			return nil
		}
		fmt.Printf("✓ Watch state set to %s\n", tag)
		if result.Progress != nil {
			fmt.Printf("  Episodes watched: %d\n", result.Progress.Episodes)
		}
		return nil
	},
}

func init() {
	LibraryCmd.AddCommand(watchCmd)
}
