package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"animehub/internal/cli/anime"
	"animehub/internal/cli/auth"
	cliconfig "animehub/internal/cli/config"
	"animehub/internal/cli/library"
	"animehub/internal/cli/progress"
	"animehub/internal/cli/session"
)

var rootCmd = &cobra.Command{
	Use:   "animehub",
	Short: "AnimeHub command line client",
	Long: `AnimeHub CLI lets you browse the anime catalog, track what you watch
and manage your reactions and lists from the terminal.`,
}

func init() {
	cobra.OnInitialize(session.Init)

	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(anime.AnimeCmd)
	rootCmd.AddCommand(library.LibraryCmd)
	rootCmd.AddCommand(progress.ProgressCmd)
	rootCmd.AddCommand(cliconfig.ConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
