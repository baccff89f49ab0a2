/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/embedis/pkg/config"
	"github.com/ssargent/embedis/pkg/di"
	"github.com/ssargent/embedis/pkg/settings"
)

// skipOpen marks commands that run without opening the image
const skipOpen = "skip-open"

var (
	container *di.Container
	current   *config.Config
)

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "embedis",
	Short: "Embedis - persistent settings store",
	Long: `Embedis keeps string settings in a fixed-size image, the way relay, dimmer
and sensor controllers keep them in emulated EEPROM.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger, err := cfg.Logging.NewLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		current = cfg

		if cmd.Annotations[skipOpen] == "true" {
			return nil
		}
		if container == nil {
			return errors.New("dependency container not initialized")
		}
		if err := container.Open(cfg, logger); err != nil {
			return fmt.Errorf("failed to open settings: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipOpen] == "true" || container == nil {
			return nil
		}
		return container.Close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		if container != nil {
			container.Close()
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", config.GetDefaultConfigPath(), "Path to the configuration file")
	rootCmd.PersistentFlags().StringP("image", "i", "", "Settings image, overrides the configuration")
}

// loadConfig reads the configuration file, falling back to defaults when it
// does not exist
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	image, _ := cmd.Flags().GetString("image")

	cfg := config.DefaultConfig()
	if config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if image != "" {
		cfg.Image = image
	}
	return cfg, nil
}

func currentSettings() *settings.Settings {
	return container.Settings()
}
