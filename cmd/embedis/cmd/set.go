/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// setCmd represents the set command
var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set the value of a key",
	Long: `Set the value of a key. The command fails and leaves the image untouched
when the entry does not fit.

Example:
  embedis set hostname kitchen`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := currentSettings().Set(args[0], args[1]); err != nil {
			return fmt.Errorf("could not set the key: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "OK")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
}
