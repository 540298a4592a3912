package anime

import "github.com/spf13/cobra"

var AnimeCmd = &cobra.Command{
	Use:   "anime",
	Short: "Anime search and information commands",
	Long:  "Search for anime, view details, and browse the catalog",
}
