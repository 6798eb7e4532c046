package main

import "github.com/spf13/cobra"

var (
	configFile string
	oneshot    bool
	dryRun     bool
	verbose    bool
	journal    bool
)

var rootCmd = &cobra.Command{
	Use:          "frag-poll",
	Short:        "Poll file storage and git hosting for assignment submissions",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(filepollCmd)
	rootCmd.AddCommand(gitpollCmd)
	rootCmd.AddCommand(migrateCmd)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "poll.yaml", "Path to the poller configuration file")
	rootCmd.PersistentFlags().BoolVar(&oneshot, "oneshot", false, "Run a single pass and exit")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Do not commit anything nor send e-mails, implies --verbose and --oneshot")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log at debug level")
	rootCmd.PersistentFlags().BoolVar(&journal, "journal", false, "Log in a format suitable for journald")
}
