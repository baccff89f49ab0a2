/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd represents the del command
var deleteCmd = &cobra.Command{
	Use:     "del <key>...",
	Aliases: []string{"delete"},
	Short:   "Delete one or more keys",
	Long: `Delete one or more keys. With --prefix every key starting with one of the
arguments is deleted.

Example:
  embedis del relayBoot0 relayBoot1
  embedis del --prefix btn led`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix, _ := cmd.Flags().GetBool("prefix")

		s := currentSettings()
		var (
			removed int
			err     error
		)
		if prefix {
			removed, err = s.DeletePrefix(args...)
		} else {
			removed, err = s.Delete(args...)
		}
		if err != nil {
			return err
		}
		if removed == 0 {
			return errors.New("no keys were removed")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d key(s)\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().Bool("prefix", false, "Treat arguments as key prefixes")
}
