package library

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"animehub/internal/cli/session"
	"animehub/internal/client"
	"animehub/pkg/models"
)

var listCmd = &cobra.Command{
	Use:   "list <state>",
	Short: "List your anime by category",
	Long: "View your anime for one category: completed, watching, on-hold, dropped,\n" +
		"plan-to-watch, favourites, likes, dislikes. Results are cached locally so\n" +
		"the last fetched list still shows when the server is unreachable.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, ok := listTags[strings.ToLower(args[0])]
		if !ok {
			return fmt.Errorf("unknown category %q", args[0])
		}

		userID := session.UserID()
		if viper.GetString("user.token") == "" || userID == 0 {
			return fmt.Errorf("not logged in. Please run: animehub auth login")
		}

		snapPath, err := session.SnapshotPath()
		if err != nil {
			return err
		}
		snap, err := client.OpenSnapshot(snapPath)
		if err != nil {
			return err
		}
		defer snap.Close()

		api, err := session.NewAuthedClient()
		if err != nil {
			return err
		}

		statuses, err := api.GetUserList(cmd.Context(), userID, tag)
		if err != nil {
			// Server unreachable: fall back to the last cached fetch.
			entries, cacheErr := snap.LoadLibrary(userID, tag)
			if cacheErr != nil || len(entries) == 0 {
				return fmt.Errorf("failed to get library: %w", err)
			}
			fmt.Printf("\n(server unreachable, showing cached list)\n")
			printEntries(tag, entries)
			return nil
		}

		// Refresh the cache with what the server returned. Titles come
		// along so the offline view has something to render.
		if err := snap.SaveStatuses(userID, tag, statuses); err == nil {
			for _, st := range statuses {
				if a, err := api.GetAnime(cmd.Context(), st.AnimeID); err == nil {
					snap.SaveAnimes([]models.Anime{*a})
				}
			}
		}

		entries, err := snap.LoadLibrary(userID, tag)
		if err != nil {
			return err
		}
		printEntries(tag, entries)
		return nil
	},
}

var listTags = map[string]models.StatusTag{
	"completed":     models.TagCompleted,
	"watching":      models.TagWatching,
	"on-hold":       models.TagOnHold,
	"dropped":       models.TagDropped,
	"plan-to-watch": models.TagPlanToWatch,
	"favourites":    models.TagFavourites,
	"likes":         models.TagLikes,
	"dislikes":      models.TagDislikes,
}

func printEntries(tag models.StatusTag, entries []client.LibraryEntry) {
	fmt.Printf("\n%s (%d anime):\n\n", tag, len(entries))
	for i, e := range entries {
		title := e.Title
		if title == "" {
			title = fmt.Sprintf("anime %d", e.AnimeID)
		}
		fmt.Printf("%d. %s\n", i+1, title)
		if e.Episodes > 0 {
			fmt.Printf("   Progress: %d/%d episodes\n", e.Watched, e.Episodes)
		}
		fmt.Printf("   Since: %s\n\n", e.CreatedAt.Format("2006-01-02"))
	}
}

func init() {
	LibraryCmd.AddCommand(listCmd)
}
