/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// keysCmd represents the keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List every stored key with its value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := currentSettings()
		out := cmd.OutOrStdout()

		keys := s.Keys()
		for _, key := range keys {
			value, _ := s.Get(key)
			fmt.Fprintf(out, "> %s => %q\n", key, value)
		}

		stats := s.Stats()
		fmt.Fprintf(out, "Number of keys: %d\n", len(keys))
		fmt.Fprintf(out, "Available: %d bytes (%d%%)\n", stats.Available, 100*stats.Available/stats.Size)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}
