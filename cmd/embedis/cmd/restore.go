/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore settings from a JSON backup",
	Long: `Restore settings from a JSON backup. The backup must name the configured
app. A backup carrying "backup": "1" replaces every setting, any other
backup is merged into the current ones.

Example:
  embedis restore backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read backup: %w", err)
		}
		if err := currentSettings().Restore(data); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Settings restored successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
