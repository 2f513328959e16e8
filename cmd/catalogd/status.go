package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/contextsuite/catalogd/internal/client"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show cache status and the last sync outcome",
	GroupID: "sync",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := catalogClient.CacheStatus(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(status)
			return nil
		}

		fmt.Printf("Events loaded:  %v\n", status.EventsLoaded)
		fmt.Printf("Filters loaded: %v\n", status.FiltersLoaded)
		fmt.Printf("Cache entries:  %d / %d\n", status.Size, status.MaxSize)
		if status.LastSync != nil {
			fmt.Println()
			printSyncResult(status.LastSync)
		}
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check server health",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := catalogClient.Health(context.Background())
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusInternalServerError {
				return fmt.Errorf("server unhealthy: %s", apiErr.Message)
			}
			return err
		}
		fmt.Println(status)
		return nil
	},
}
