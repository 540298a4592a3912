package anime

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"animehub/internal/cli/session"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for anime",
	Long:  "Search the anime catalog by title",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		api := session.NewClient()
		animes, err := api.SearchAnimes(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		fmt.Printf("\nFound %d results:\n\n", len(animes))
		for i, a := range animes {
			fmt.Printf("%d. %s\n", i+1, a.Title)
			if len(a.Genres) > 0 {
				fmt.Printf("   Genres: %s\n", strings.Join(a.Genres, ", "))
			}
			fmt.Printf("   Episodes: %d\n", a.Episodes)
			fmt.Printf("   ID: %d\n\n", a.ID)
		}
		return nil
	},
}

func init() {
	AnimeCmd.AddCommand(searchCmd)
}
