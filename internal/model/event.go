package model

import "sort"

// Alias is a named, vertical-specific view of an event. Aliases are owned by
// exactly one event; they are never shared between events.
type Alias struct {
	Name        string `json:"name"`
	Vertical    string `json:"vertical"`
	Topic       string `json:"topic"`
	Description string `json:"description,omitempty"`
}

// Event is the unit of the catalog. Events are immutable once constructed
// for a sync cycle; a new cycle produces an entirely new set of values.
//
// Field values come from a loosely-typed remote source, so every field may be
// empty. Required-field checks live in Validate and produce warnings only;
// an event missing its category still belongs to the catalog.
type Event struct {
	AirtableID        string  `json:"airtable_id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Category          string  `json:"category"`
	Domain            string  `json:"domain"`
	Topic             string  `json:"topic"`
	TopicSlug         string  `json:"topicSlug"`
	Aliases           []Alias `json:"aliases"`
	LastUpdated       string  `json:"lastUpdated"`
	Deprecated        bool    `json:"deprecated,omitempty"`
	DeprecationReason string  `json:"deprecationReason,omitempty"`
	DeprecationDate   string  `json:"deprecationDate,omitempty"`
	ReplacementEvent  string  `json:"replacementEvent,omitempty"`
}

// FilterOptions is the precomputed filter index derived from a set of events:
// deduplicated, sorted value lists for the three filterable dimensions.
type FilterOptions struct {
	Categories []string `json:"categories"`
	Domains    []string `json:"domains"`
	Verticals  []string `json:"verticals"`
}

// FilterOptionsFrom derives the filter index from events. Empty values are
// excluded from every list.
func FilterOptionsFrom(events []Event) FilterOptions {
	categories := make(map[string]struct{})
	domains := make(map[string]struct{})
	verticals := make(map[string]struct{})

	for _, ev := range events {
		if ev.Category != "" {
			categories[ev.Category] = struct{}{}
		}
		if ev.Domain != "" {
			domains[ev.Domain] = struct{}{}
		}
		for _, a := range ev.Aliases {
			if a.Vertical != "" {
				verticals[a.Vertical] = struct{}{}
			}
		}
	}

	return FilterOptions{
		Categories: sortedKeys(categories),
		Domains:    sortedKeys(domains),
		Verticals:  sortedKeys(verticals),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FindBySlug returns the event whose TopicSlug matches, or nil.
func FindBySlug(events []Event, slug string) *Event {
	for i := range events {
		if events[i].TopicSlug == slug {
			return &events[i]
		}
	}
	return nil
}
