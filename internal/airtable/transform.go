package airtable

import (
	"github.com/contextsuite/catalogd/internal/model"
)

// transform joins event records with their aliases, validates each record,
// and assigns catalog-unique slugs in encounter order.
//
// Alias references that resolve to no alias record are dropped silently.
// Validation failures are logged as warnings; the record stays in the result
// with empty fields so the catalog never silently shrinks on bad data.
func (c *Client) transform(eventRecords []record[eventFields], aliasRecords []record[aliasFields]) []model.Event {
	aliasByID := make(map[string]model.Alias, len(aliasRecords))
	for _, rec := range aliasRecords {
		aliasByID[rec.ID] = model.Alias{
			Name:        rec.Fields.Alias,
			Vertical:    rec.Fields.Vertical,
			Topic:       rec.Fields.Topic,
			Description: rec.Fields.Description,
		}
	}

	events := make([]model.Event, 0, len(eventRecords))
	for _, rec := range eventRecords {
		f := rec.Fields

		var aliases []model.Alias
		for _, aliasID := range f.Aliases {
			if alias, ok := aliasByID[aliasID]; ok {
				aliases = append(aliases, alias)
			}
		}

		lastUpdated := f.LastUpdated
		if lastUpdated == "" {
			lastUpdated = rec.CreatedTime
		}

		ev := model.Event{
			AirtableID:        rec.ID,
			Name:              f.Name,
			Description:       f.Description,
			Category:          f.Category,
			Domain:            f.Domain,
			Topic:             f.Topic,
			Aliases:           aliases,
			LastUpdated:       lastUpdated,
			Deprecated:        f.Deprecated,
			DeprecationReason: f.DeprecationReason,
			DeprecationDate:   f.DeprecationDate,
			ReplacementEvent:  f.ReplacementEvent,
		}

		if res := ev.Validate(); !res.Valid() {
			c.logger.Warn("event record failed validation", "record_id", rec.ID, "errors", res.Errors)
		} else if len(res.Warnings) > 0 {
			c.logger.Warn("event record has inconsistent metadata", "record_id", rec.ID, "warnings", res.Warnings)
		}

		events = append(events, ev)
	}

	// Second pass: slugs depend on encounter order across the whole set.
	slugs := model.NewSlugTable()
	for i := range events {
		base := events[i].Topic
		if base == "" {
			base = events[i].Name
		}
		events[i].TopicSlug = slugs.Assign(model.Slugify(base))
	}

	return events
}
