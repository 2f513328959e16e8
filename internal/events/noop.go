package events

import "context"

// NoopPublisher is a Publisher that discards catalog events. It stands in
// when CATALOG_NATS_URL is not configured.
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}
