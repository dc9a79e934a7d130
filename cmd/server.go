package cmd

import (
	"vibemesh/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the VibeMesh HTTP server",
	Long:  `Start the VibeMesh HTTP server serving the track upload and analysis API.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start(loadConfig())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
