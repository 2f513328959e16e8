package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig(baseURL string) Config {
	return Config{
		APIKey:         "key-test",
		BaseID:         "appTest",
		EventsTableID:  "tblEvents",
		AliasesTableID: "tblAliases",
		BaseURL:        baseURL,
	}
}

// newTestClient builds a client against a test server with retry delays
// shortened so tests run fast.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(testConfig(srv.URL), nil)
	c.backoff = time.Millisecond
	return c, srv
}

func writePage(w http.ResponseWriter, records []map[string]any, offset string) {
	resp := map[string]any{"records": records}
	if offset != "" {
		resp["offset"] = offset
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func eventRecord(id, name, category, topic string) map[string]any {
	return map[string]any{
		"id": id,
		"fields": map[string]any{
			"Name":        name,
			"Category":    category,
			"Domain":      "Web",
			"Description": "d",
			"Topic":       topic,
		},
		"createdTime": "2024-01-01T00:00:00Z",
	}
}

func TestFetchAll_Pagination(t *testing.T) {
	pageSizes := []int{100, 100, 37}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key-test" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("pageSize"); got != "100" {
			t.Errorf("pageSize = %q, want 100", got)
		}

		switch r.URL.Path {
		case "/appTest/tblEvents":
			pageIdx := 0
			switch r.URL.Query().Get("offset") {
			case "":
				pageIdx = 0
			case "page1":
				pageIdx = 1
			case "page2":
				pageIdx = 2
			default:
				t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
			}

			var records []map[string]any
			for i := 0; i < pageSizes[pageIdx]; i++ {
				id := fmt.Sprintf("rec-%d-%d", pageIdx, i)
				records = append(records, eventRecord(id, "Event "+id, "Cat", "topic."+id))
			}
			offset := ""
			if pageIdx < 2 {
				offset = fmt.Sprintf("page%d", pageIdx+1)
			}
			writePage(w, records, offset)

		case "/appTest/tblAliases":
			writePage(w, nil, "")

		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	c, _ := newTestClient(t, handler)

	events, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(events) != 237 {
		t.Fatalf("got %d events, want 237", len(events))
	}

	seen := make(map[string]bool)
	for _, ev := range events {
		if seen[ev.AirtableID] {
			t.Errorf("duplicate event %s", ev.AirtableID)
		}
		seen[ev.AirtableID] = true
	}
}

func TestDoGet_RetriesTransient(t *testing.T) {
	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writePage(w, []map[string]any{eventRecord("rec1", "E", "C", "t")}, "")
	})

	c, srv := newTestClient(t, handler)

	body, err := c.doGet(context.Background(), srv.URL+"/appTest/tblEvents")
	if err != nil {
		t.Fatalf("doGet after retries: %v", err)
	}
	if len(body) == 0 {
		t.Fatal("expected response body")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestDoGet_NoRetryOnPermanentError(t *testing.T) {
	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	})

	c, srv := newTestClient(t, handler)

	_, err := c.doGet(context.Background(), srv.URL+"/x")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1 (no retry on 403)", got)
	}
}

func TestDoGet_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	c, srv := newTestClient(t, handler)

	_, err := c.doGet(context.Background(), srv.URL+"/x")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	// Initial attempt plus MaxRetries retries.
	if got := calls.Load(); got != int64(defaultMaxRetries)+1 {
		t.Errorf("server called %d times, want %d", got, defaultMaxRetries+1)
	}
}

func TestFetchEventByID_NotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	c, _ := newTestClient(t, handler)

	ev, err := c.FetchEventByID(context.Background(), "recMissing")
	if err != nil {
		t.Fatalf("FetchEventByID: %v", err)
	}
	if ev != nil {
		t.Errorf("expected nil for missing record, got %+v", ev)
	}
}

func TestFetchEventByID_Found(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/appTest/tblEvents/rec1":
			_ = json.NewEncoder(w).Encode(eventRecord("rec1", "Order Completed", "Commerce", "commerce order"))
		case "/appTest/tblAliases":
			writePage(w, nil, "")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	c, _ := newTestClient(t, handler)

	ev, err := c.FetchEventByID(context.Background(), "rec1")
	if err != nil {
		t.Fatalf("FetchEventByID: %v", err)
	}
	if ev == nil || ev.Name != "Order Completed" {
		t.Fatalf("got %+v, want Order Completed", ev)
	}
	if ev.TopicSlug != "commerce-order" {
		t.Errorf("TopicSlug = %q, want commerce-order", ev.TopicSlug)
	}
}

func TestFetchEventsByCategory_SendsFilterFormula(t *testing.T) {
	var gotFormula atomic.Value
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/appTest/tblEvents":
			gotFormula.Store(r.URL.Query().Get("filterByFormula"))
			writePage(w, []map[string]any{eventRecord("rec1", "E", "Commerce", "t")}, "")
		case "/appTest/tblAliases":
			writePage(w, nil, "")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	c, _ := newTestClient(t, handler)

	events, err := c.FetchEventsByCategory(context.Background(), "Commerce")
	if err != nil {
		t.Fatalf("FetchEventsByCategory: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if got := gotFormula.Load(); got != `{Category} = "Commerce"` {
		t.Errorf("filterByFormula = %q", got)
	}
}

func TestFilterOptions(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/appTest/tblEvents":
			writePage(w, []map[string]any{
				{
					"id": "rec1",
					"fields": map[string]any{
						"Name": "A", "Category": "Commerce", "Domain": "Web",
						"Description": "d", "Topic": "a", "Aliases": []string{"al1"},
					},
					"createdTime": "2024-01-01T00:00:00Z",
				},
				eventRecord("rec2", "B", "Navigation", "b"),
			}, "")
		case "/appTest/tblAliases":
			writePage(w, []map[string]any{
				{
					"id":          "al1",
					"fields":      map[string]any{"Alias": "a_view", "Vertical": "Retail", "Topic": "a"},
					"createdTime": "2024-01-01T00:00:00Z",
				},
			}, "")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	c, _ := newTestClient(t, handler)

	opts, err := c.FilterOptions(context.Background())
	if err != nil {
		t.Fatalf("FilterOptions: %v", err)
	}
	if len(opts.Categories) != 2 || opts.Categories[0] != "Commerce" {
		t.Errorf("Categories = %v", opts.Categories)
	}
	if len(opts.Verticals) != 1 || opts.Verticals[0] != "Retail" {
		t.Errorf("Verticals = %v", opts.Verticals)
	}
}
