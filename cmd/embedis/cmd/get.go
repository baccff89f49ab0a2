/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <key>...",
	Short: "Get the value of one or more keys",
	Long: `Get the value of one or more keys. Keys that are not stored print their
registered default, if any.

Example:
  embedis get hostname relayBoot0`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := currentSettings()
		out := cmd.OutOrStdout()

		for _, key := range args {
			if value, ok := s.Get(key); ok {
				fmt.Fprintf(out, "> %s => %q\n", key, value)
				continue
			}
			if value, ok := s.Query(key); ok {
				fmt.Fprintf(out, "> %s => %s (default)\n", key, value)
				continue
			}
			fmt.Fprintf(out, "> %s =>\n", key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
