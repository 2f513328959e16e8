package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var backupsCmd = &cobra.Command{
	Use:     "backups",
	Short:   "Manage snapshot backups",
	GroupID: "sync",
}

var backupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshot backups, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backups, err := catalogClient.ListBackups(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(backups)
			return nil
		}
		if len(backups) == 0 {
			fmt.Println("no backups")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FILENAME\tTIMESTAMP\tSIZE")
		for _, b := range backups {
			fmt.Fprintf(w, "%s\t%s\t%d\n",
				b.Filename, b.Timestamp.Format("2006-01-02 15:04:05"), b.Size)
		}
		return w.Flush()
	},
}

var backupsRestoreCmd = &cobra.Command{
	Use:   "restore <filename>",
	Short: "Restore the snapshot from a backup and re-prime the cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := catalogClient.RestoreBackup(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(result)
			return nil
		}
		fmt.Printf("restored from %s\n", args[0])
		printSyncResult(result)
		return nil
	},
}

func init() {
	backupsCmd.AddCommand(backupsListCmd)
	backupsCmd.AddCommand(backupsRestoreCmd)
}
