package anime

import (
	"fmt"

	"github.com/spf13/cobra"

	"animehub/internal/cli/session"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the anime catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		api := session.NewClient()
		animes, err := api.ListAnimes(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list animes: %w", err)
		}

		fmt.Printf("\nCatalog (%d anime):\n\n", len(animes))
		for _, a := range animes {
			fmt.Printf("%4d  %s (%d episodes)\n", a.ID, a.Title, a.Episodes)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	AnimeCmd.AddCommand(listCmd)
}
