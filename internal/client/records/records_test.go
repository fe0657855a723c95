package records

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"petverse/internal/platform/httpclient"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	hc, err := httpclient.NewWithBaseURL(srv.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("NewWithBaseURL() error: %v", err)
	}
	return NewClient(hc), &hits
}

func TestList_SplitsIdentityFromFields(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pets/3/medical-visits" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"id":1,"pet_id":3,"vet_id":7,"diagnosis":"otitis","created_at":"2026-01-01T00:00:00Z"},
			{"id":2,"pet_id":3,"visit_date":"2026-02-01"}
		]`))
	})

	recs, err := c.List(context.Background(), 3, "medical-visits", "tok")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != 1 || recs[0].PetID != 3 {
		t.Fatalf("unexpected records %+v", recs)
	}
	if recs[0].Fields["vet_id"] != int64(7) || recs[0].Fields["diagnosis"] != "otitis" {
		t.Fatalf("unexpected fields %+v", recs[0].Fields)
	}
	if _, present := recs[0].Fields["created_at"]; present {
		t.Fatalf("unknown fields must be ignored")
	}
}

func TestCreate_RejectsUnknownKindAndFields(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	if _, err := c.Create(context.Background(), 3, "events", map[string]any{}, "tok"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for kind, got %v", err)
	}
	if _, err := c.Create(context.Background(), 3, "weights", map[string]any{"weight": "a lot"}, "tok"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for field, got %v", err)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Fatalf("expected no requests")
	}
}

func TestCreate_RoundTrip(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["id"] = 5
		body["pet_id"] = 3
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	})

	rec, err := c.Create(context.Background(), 3, "weights", map[string]any{"date": "2026-03-01", "weight": 4.2}, "tok")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if rec.ID != 5 || rec.Fields["weight"] != 4.2 {
		t.Fatalf("unexpected record %+v", rec)
	}

	b, _ := json.Marshal(rec)
	var flat map[string]any
	_ = json.Unmarshal(b, &flat)
	if flat["id"] != float64(5) || flat["date"] != "2026-03-01" {
		t.Fatalf("unexpected flattened json %s", b)
	}
}
