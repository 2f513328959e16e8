package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:     "refresh",
	Short:   "Refresh the catalog from the preferred source",
	GroupID: "sync",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		remote, _ := cmd.Flags().GetBool("remote")

		result, err := catalogClient.Refresh(context.Background(), remote)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(result)
			return nil
		}
		printSyncResult(result)
		if !result.Success {
			return fmt.Errorf("refresh failed")
		}
		return nil
	},
}

var reloadCmd = &cobra.Command{
	Use:     "reload",
	Short:   "Discard the cache and reload from Airtable",
	GroupID: "sync",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := catalogClient.Reload(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(result)
			return nil
		}
		printSyncResult(result)
		if !result.Success {
			return fmt.Errorf("reload failed")
		}
		return nil
	},
}

func init() {
	refreshCmd.Flags().Bool("remote", false, "bypass the local snapshot and go straight to Airtable")
}
