package model

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9_\s-]`)
	slugSeparate = regexp.MustCompile(`[\s_-]+`)
)

// Slugify converts human-entered text into a URL-safe slug: lower-cased,
// special characters stripped, runs of whitespace/underscores/hyphens
// collapsed to a single hyphen.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSeparate.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SlugTable assigns catalog-unique slugs in encounter order. The first
// occurrence of a base slug keeps it bare; the Nth duplicate is suffixed -N.
// Uniqueness is therefore a deterministic function of input order.
type SlugTable struct {
	counts map[string]int
}

// NewSlugTable returns an empty slug table.
func NewSlugTable() *SlugTable {
	return &SlugTable{counts: make(map[string]int)}
}

// Assign records one occurrence of base and returns the unique slug for it.
func (t *SlugTable) Assign(base string) string {
	n, seen := t.counts[base]
	if !seen {
		t.counts[base] = 0
		return base
	}
	n++
	t.counts[base] = n
	return fmt.Sprintf("%s-%d", base, n)
}
