package progress

import "github.com/spf13/cobra"

var ProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Manage episode progress",
	Long:  "Record and view how many episodes you have watched",
}
