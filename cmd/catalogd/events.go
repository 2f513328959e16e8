package main

import (
	"context"
	"fmt"

	"github.com/contextsuite/catalogd/internal/model"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:     "events",
	Short:   "Browse the event catalog",
	GroupID: "catalog",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		events, err := listEvents(context.Background(), category)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(events)
			return nil
		}
		printEventTable(events)
		return nil
	},
}

var eventsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one event by its record ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, err := catalogClient.EventByID(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(ev)
			return nil
		}
		printEvent(ev)
		return nil
	},
}

var eventsSlugCmd = &cobra.Command{
	Use:   "slug <slug>",
	Short: "Show one event by its topic slug",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, err := catalogClient.EventBySlug(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(ev)
			return nil
		}
		printEvent(ev)
		return nil
	},
}

var filtersCmd = &cobra.Command{
	Use:     "filters",
	Short:   "Show catalog filter options",
	GroupID: "catalog",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := catalogClient.Filters(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(filters)
			return nil
		}
		fmt.Printf("Categories: %s\n", joinOrNone(filters.Categories))
		fmt.Printf("Domains:    %s\n", joinOrNone(filters.Domains))
		fmt.Printf("Verticals:  %s\n", joinOrNone(filters.Verticals))
		return nil
	},
}

func listEvents(ctx context.Context, category string) ([]model.Event, error) {
	if category != "" {
		return catalogClient.EventsByCategory(ctx, category)
	}
	return catalogClient.Events(ctx)
}

func init() {
	eventsListCmd.Flags().String("category", "", "only events in this category")
	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsShowCmd)
	eventsCmd.AddCommand(eventsSlugCmd)
}
