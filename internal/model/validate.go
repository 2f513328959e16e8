package model

import (
	"fmt"
	"strings"
	"time"
)

// FieldError describes a required field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult collects the outcome of validating one event record.
// Errors mark missing required fields; warnings mark inconsistent but
// tolerated metadata. Neither excludes the event from the catalog.
type ValidationResult struct {
	Errors   []FieldError
	Warnings []string
}

// Valid reports whether no required field failed.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks required fields and deprecation metadata consistency.
// The remote source is human-edited, so any field may arrive empty; the
// caller logs the result and keeps the event either way.
func (e *Event) Validate() ValidationResult {
	var res ValidationResult

	required := []struct {
		field string
		value string
	}{
		{"Name", e.Name},
		{"Category", e.Category},
		{"Domain", e.Domain},
		{"Description", e.Description},
		{"Topic", e.Topic},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			res.Errors = append(res.Errors, FieldError{Field: f.field, Message: f.field + " is required"})
		}
	}

	if e.Deprecated {
		if strings.TrimSpace(e.DeprecationReason) == "" {
			res.Warnings = append(res.Warnings, "deprecated event should have a deprecation reason")
		}
		if strings.TrimSpace(e.DeprecationDate) == "" {
			res.Warnings = append(res.Warnings, "deprecated event should have a deprecation date")
		}
		if strings.TrimSpace(e.ReplacementEvent) == "" {
			res.Warnings = append(res.Warnings, "deprecated event should specify a replacement event")
		}
	}

	if e.DeprecationDate != "" && !parseableDate(e.DeprecationDate) {
		res.Errors = append(res.Errors, FieldError{Field: "Deprecation Date", Message: "invalid deprecation date format"})
	}
	if e.LastUpdated != "" && !parseableDate(e.LastUpdated) {
		res.Warnings = append(res.Warnings, "invalid last updated date format")
	}

	return res
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02",
}

func parseableDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
