package airtable

import (
	"testing"
)

func newTransformClient() *Client {
	return New(Config{BaseID: "appTest", EventsTableID: "e", AliasesTableID: "a"}, nil)
}

func evRecord(id string, fields eventFields) record[eventFields] {
	return record[eventFields]{ID: id, Fields: fields, CreatedTime: "2024-02-01T12:00:00Z"}
}

func TestTransform_JoinsAliases(t *testing.T) {
	c := newTransformClient()

	aliases := []record[aliasFields]{
		{ID: "al1", Fields: aliasFields{Alias: "screen_view", Vertical: "Mobile", Topic: "page"}},
		{ID: "al2", Fields: aliasFields{Alias: "page_load", Vertical: "Web", Topic: "page"}},
	}
	events := []record[eventFields]{
		evRecord("rec1", eventFields{
			Name: "Page Viewed", Category: "Navigation", Domain: "Web",
			Description: "d", Topic: "page", Aliases: []string{"al1", "al2", "alMissing"},
		}),
	}

	got := c.transform(events, aliases)
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	// The dangling reference is dropped silently, not an error.
	if len(got[0].Aliases) != 2 {
		t.Fatalf("got %d aliases, want 2", len(got[0].Aliases))
	}
	if got[0].Aliases[0].Name != "screen_view" || got[0].Aliases[1].Name != "page_load" {
		t.Errorf("aliases out of order: %+v", got[0].Aliases)
	}
}

func TestTransform_InvalidRecordKept(t *testing.T) {
	c := newTransformClient()

	events := []record[eventFields]{
		evRecord("rec1", eventFields{Name: "Only Name", Topic: "only_name"}),
	}

	got := c.transform(events, nil)
	if len(got) != 1 {
		t.Fatalf("invalid record must stay in the catalog, got %d events", len(got))
	}
	if got[0].Category != "" {
		t.Errorf("Category = %q, want empty", got[0].Category)
	}
	if got[0].TopicSlug != "only-name" {
		t.Errorf("TopicSlug = %q, want only-name", got[0].TopicSlug)
	}
}

func TestTransform_SlugCollisions(t *testing.T) {
	c := newTransformClient()

	events := []record[eventFields]{
		evRecord("rec1", eventFields{Name: "A", Topic: "Checkout"}),
		evRecord("rec2", eventFields{Name: "B", Topic: "checkout"}),
		evRecord("rec3", eventFields{Name: "C", Topic: " checkout "}),
	}

	got := c.transform(events, nil)
	want := []string{"checkout", "checkout-1", "checkout-2"}
	for i := range want {
		if got[i].TopicSlug != want[i] {
			t.Errorf("event %d slug = %q, want %q", i, got[i].TopicSlug, want[i])
		}
	}
}

func TestTransform_SlugFallsBackToName(t *testing.T) {
	c := newTransformClient()

	got := c.transform([]record[eventFields]{
		evRecord("rec1", eventFields{Name: "Order Completed"}),
	}, nil)
	if got[0].TopicSlug != "order-completed" {
		t.Errorf("TopicSlug = %q, want order-completed", got[0].TopicSlug)
	}
}

func TestTransform_LastUpdatedFallsBackToCreatedTime(t *testing.T) {
	c := newTransformClient()

	got := c.transform([]record[eventFields]{
		evRecord("rec1", eventFields{Name: "A", Topic: "a"}),
	}, nil)
	if got[0].LastUpdated != "2024-02-01T12:00:00Z" {
		t.Errorf("LastUpdated = %q, want record createdTime", got[0].LastUpdated)
	}

	got = c.transform([]record[eventFields]{
		evRecord("rec2", eventFields{Name: "B", Topic: "b", LastUpdated: "2024-03-01T00:00:00Z"}),
	}, nil)
	if got[0].LastUpdated != "2024-03-01T00:00:00Z" {
		t.Errorf("LastUpdated = %q, want explicit value", got[0].LastUpdated)
	}
}
