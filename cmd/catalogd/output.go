package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/contextsuite/catalogd/internal/model"
	"github.com/contextsuite/catalogd/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printEvent(ev *model.Event) {
	fmt.Printf("ID:          %s\n", ev.AirtableID)
	fmt.Printf("Name:        %s\n", ev.Name)
	fmt.Printf("Slug:        %s\n", ev.TopicSlug)
	fmt.Printf("Topic:       %s\n", ev.Topic)
	fmt.Printf("Category:    %s\n", ev.Category)
	fmt.Printf("Domain:      %s\n", ev.Domain)
	if ev.Description != "" {
		fmt.Printf("Description: %s\n", ev.Description)
	}
	if ev.LastUpdated != "" {
		fmt.Printf("Updated:     %s\n", ev.LastUpdated)
	}
	if ev.Deprecated {
		fmt.Printf("Deprecated:  yes")
		if ev.ReplacementEvent != "" {
			fmt.Printf(" (use %s)", ev.ReplacementEvent)
		}
		fmt.Println()
		if ev.DeprecationReason != "" {
			fmt.Printf("Reason:      %s\n", ev.DeprecationReason)
		}
	}
	if len(ev.Aliases) > 0 {
		names := make([]string, 0, len(ev.Aliases))
		for _, a := range ev.Aliases {
			names = append(names, a.Name)
		}
		fmt.Printf("Aliases:     %s\n", strings.Join(names, ", "))
	}
}

func printEventTable(events []model.Event) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tNAME\tCATEGORY\tDOMAIN\tALIASES")
	for _, ev := range events {
		name := ev.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			ev.TopicSlug,
			name,
			ev.Category,
			ev.Domain,
			len(ev.Aliases),
		)
	}
	w.Flush()
	fmt.Printf("\n%d events\n", len(events))
}

func printSyncResult(result *model.SyncResult) {
	status := ui.RenderSuccess("ok")
	if !result.Success {
		status = ui.RenderError("failed")
	}
	fmt.Printf("Sync:     %s %s\n", status, ui.RenderMuted("("+result.ID+")"))
	fmt.Printf("Source:   %s\n", result.Source)
	fmt.Printf("Events:   %d\n", result.EventsCount)
	fmt.Printf("Duration: %s\n", result.Duration)
	if result.Error != "" {
		fmt.Printf("Error:    %s\n", result.Error)
	}
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}
