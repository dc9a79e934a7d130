package cmd

import (
	"fmt"
	"os"

	"vibemesh/config"
	"vibemesh/logger"
	"vibemesh/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vibemesh",
	Short: "VibeMesh analyzes uploaded tracks and serves their musical attributes.",
	Run: func(cmd *cobra.Command, args []string) {
		// Running with no subcommand starts the server.
		server.Start(loadConfig())
	},
}

// loadConfig builds the configuration and initializes logging from it.
func loadConfig() *config.Config {
	cfg := config.Load()
	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})
	return cfg
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
