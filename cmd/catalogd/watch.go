package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/contextsuite/catalogd/internal/events"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Stream catalog sync events from NATS",
	GroupID: "sync",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL := os.Getenv("CATALOG_NATS_URL")
		if natsURL == "" {
			natsURL = activeRemoteNATSURL()
		}
		if natsURL == "" {
			return fmt.Errorf("CATALOG_NATS_URL is not set and the active remote has no nats_url")
		}

		sub, err := events.NewNATSSubscriber(natsURL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				log.Printf("nats: disconnected: %v", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				log.Printf("nats: reconnected")
			}),
		)
		if err != nil {
			return err
		}
		defer sub.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		topics := []string{
			events.TopicSyncCompleted,
			events.TopicSyncFailed,
			events.TopicSnapshotSaved,
			events.TopicSnapshotRestored,
		}
		for _, topic := range topics {
			ch, cancel, err := sub.Subscribe(topic)
			if err != nil {
				return err
			}
			defer cancel()
			go func(topic string, ch <-chan []byte) {
				for payload := range ch {
					fmt.Printf("%s %s\n", topic, payload)
				}
			}(topic, ch)
		}

		fmt.Fprintf(os.Stderr, "watching catalog events on %s (ctrl-c to stop)\n", natsURL)
		<-ctx.Done()
		return nil
	},
}
