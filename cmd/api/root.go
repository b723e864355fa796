package main

import (
	"github.com/spf13/cobra"

	"github.com/AlexP3rez/biblioteca-api/internal/config"
)

var flagConfigDir string

// cfg is loaded by PersistentPreRunE so all subcommands can use it.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "api",
	Short: "biblioteca-api is the digital-library lending backend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(flagConfigDir)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "directory holding config.yaml (default: current directory)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}
