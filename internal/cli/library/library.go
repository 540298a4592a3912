package library

import "github.com/spf13/cobra"

var LibraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage your anime library",
	Long:  "React to anime, mark favourites, set watch states, and view your lists",
}
