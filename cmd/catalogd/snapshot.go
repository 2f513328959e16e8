package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:     "snapshot",
	Short:   "Inspect or clear the local snapshot",
	GroupID: "sync",
}

var snapshotInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the live snapshot document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := catalogClient.SnapshotInfo(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(info)
			return nil
		}
		if !info.Exists {
			fmt.Println("no snapshot")
			return nil
		}
		fmt.Printf("Size:     %d bytes\n", info.Size)
		fmt.Printf("Modified: %s\n", info.LastModified.Format("2006-01-02 15:04:05"))
		if info.Metadata != nil {
			fmt.Printf("Events:   %d\n", info.Metadata.EventsCount)
			fmt.Printf("Source:   %s\n", info.Metadata.Source)
			fmt.Printf("Updated:  %s\n", info.Metadata.LastUpdated)
			fmt.Printf("Version:  %s\n", info.Metadata.Version)
		}
		return nil
	},
}

var snapshotClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the live snapshot document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := catalogClient.ClearSnapshot(context.Background()); err != nil {
			return err
		}
		fmt.Println("snapshot cleared")
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotInfoCmd)
	snapshotCmd.AddCommand(snapshotClearCmd)
}
