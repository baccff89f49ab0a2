/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/embedis/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration with a generated API key",
	Long: `Write a configuration file with a freshly generated API key. The settings
image and the snapshot archive are placed under --data-dir.

Examples:
  embedis init --data-dir=./data
  embedis init --config=./embedis.yaml --force`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipOpen: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		force, _ := cmd.Flags().GetBool("force")
		out := cmd.OutOrStdout()

		if config.ConfigExists(configPath) && !force {
			fmt.Fprintf(out, "Configuration already exists at %s. Use --force to overwrite.\n", configPath)
			return nil
		}

		cfg, err := config.BootstrapConfig(configPath, dataDir)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Configuration written to %s\n", configPath)
		fmt.Fprintf(out, "Image: %s (%d bytes)\n", cfg.Image, cfg.Region.Size)
		fmt.Fprintf(out, "API key: %s\n", cfg.Security.APIKey)
		fmt.Fprintf(out, "\nYou can now start the server with:\n")
		fmt.Fprintf(out, "  embedis serve --config=%s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("data-dir", "./data", "Directory holding the image and snapshots")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}
