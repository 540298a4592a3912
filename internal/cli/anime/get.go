package anime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"animehub/internal/cli/session"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show anime details",
	Long:  "Display one anime with its episodes and reaction tallies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid anime id %q", args[0])
		}

		api := session.NewClient()
		a, err := api.GetAnime(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get anime: %w", err)
		}

		fmt.Printf("\n%s (id %d)\n", a.Title, a.ID)
		if a.Description != "" {
			fmt.Printf("  %s\n", a.Description)
		}
		if len(a.Genres) > 0 {
			fmt.Printf("  Genres: %s\n", strings.Join(a.Genres, ", "))
		}
		fmt.Printf("  Episodes: %d\n", a.Episodes)

		if counts, err := api.GetReactions(cmd.Context(), id); err == nil {
			fmt.Printf("  Likes: %d  Dislikes: %d\n", counts.Likes, counts.Dislikes)
		}

		episodes, err := api.ListEpisodes(cmd.Context(), id)
		if err == nil && len(episodes) > 0 {
			fmt.Printf("\nEpisodes:\n")
			for _, ep := range episodes {
				fmt.Printf("  %s. %s\n", ep.EpisodeNumber, ep.Title)
			}
		}
		fmt.Println()
		return nil
	},
}

func init() {
	AnimeCmd.AddCommand(getCmd)
}
