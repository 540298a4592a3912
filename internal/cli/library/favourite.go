package library

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"animehub/internal/cli/session"
	"animehub/pkg/models"
)

var favouriteCmd = &cobra.Command{
	Use:   "favourite <anime-id>",
	Short: "Toggle an anime in your favourites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		animeID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid anime id %q", args[0])
		}

		api, err := session.NewAuthedClient()
		if err != nil {
			return err
		}

		result, err := api.SetFavourite(cmd.Context(), animeID)
		if err != nil {
			return fmt.Errorf("failed to toggle favourite: %w", err)
		}

		if result.Effect == models.EffectRemoved {
			fmt.Println("✓ Removed from favourites")
		} else {
			fmt.Println("✓ Added to favourites")
		}
		return nil
	},
}

func init() {
	LibraryCmd.AddCommand(favouriteCmd)
}
