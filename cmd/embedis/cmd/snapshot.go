/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// snapshotCmd groups the snapshot commands
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage snapshots of the settings image",
	Long: `Snapshots are checksummed copies of the whole image kept in the archive
named by the configuration.

Examples:
  embedis snapshot create --label before-upgrade
  embedis snapshot list
  embedis snapshot restore 2hEw3GZoG8ZQ2t3cQ1gUQ0pJ7ve`,
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Capture the current image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		label, _ := cmd.Flags().GetString("label")

		info, err := container.CreateSnapshot(label)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s created (%d bytes, checksum %s)\n", info.ID, info.Size, info.Checksum)
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		infos, err := container.ListSnapshots()
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No snapshots")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tSIZE\tLABEL")
		for _, info := range infos {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", info.ID, info.CreatedAt.Format(time.RFC3339), info.Size, info.Label)
		}
		return w.Flush()
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Replace the image with a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := container.RestoreSnapshot(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s restored\n", args[0])
		return nil
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a snapshot from the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := container.DeleteSnapshot(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s deleted\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotCreateCmd, snapshotListCmd, snapshotRestoreCmd, snapshotDeleteCmd)
	snapshotCreateCmd.Flags().StringP("label", "l", "", "Label stored with the snapshot")
}
