package cli

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "netcore-jenkins",
	Short: "MyGet webhook to Jenkins bridge",
	Long: `netcore-jenkins receives MyGet package feed webhooks and triggers the
feed maintenance job on Jenkins whenever a package is added.

The prune command is the maintenance job itself: it trims old preview
versions from the feed named in the push metadata.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml); environment variables override it")
}
