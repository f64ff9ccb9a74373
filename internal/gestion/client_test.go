package gestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, WithTimeout(2*time.Second))
}

func TestFindPlayerByDocument(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/jugadores/documento/123":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"p1","nombre":"Ana María","nombreCorto":"Ana","telefono":"3188216823","documento":"123"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	p, err := c.FindPlayerByDocument(context.Background(), "123")
	if err != nil {
		t.Fatalf("FindPlayerByDocument: %v", err)
	}
	if p.ID != "p1" || p.Phone != "3188216823" || p.DisplayName() != "Ana" {
		t.Fatalf("unexpected player: %+v", p)
	}

	if _, err := c.FindPlayerByDocument(context.Background(), "999"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestAddRemoveMapping(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/partidos/m1/convocados":
			w.WriteHeader(http.StatusConflict)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/partidos/m1/convocados/p1":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))

	if err := c.AddPlayerToMatch(context.Background(), "p1", "m1"); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if err := c.RemovePlayerFromMatch(context.Background(), "p1", "m1"); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
	if err := c.AddPlayerToMatch(context.Background(), "p1", "m2"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on 500, got %v", err)
	}
}

func TestUnreachableServerIsUnavailable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", WithTimeout(500*time.Millisecond))
	if _, err := c.FindPlayerByChatID(context.Background(), "3188216823"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestFilterUpcoming(t *testing.T) {
	all := []MatchSummary{
		{ID: "m1", Date: "2025-01-01"},
		{ID: "m2", Date: "2025-06-01"},
	}
	ref := time.Date(2025, 3, 1, 15, 42, 0, 0, time.Local)

	got := filterUpcoming(all, ref)
	if len(got) != 1 || got[0].ID != "m2" {
		t.Fatalf("expected only m2, got %+v", got)
	}
}

func TestFilterUpcoming_SameDayKept(t *testing.T) {
	all := []MatchSummary{{ID: "m1", Date: "2025-03-01", Time: "06:00"}}
	ref := time.Date(2025, 3, 1, 23, 0, 0, 0, time.Local)
	if got := filterUpcoming(all, ref); len(got) != 1 {
		t.Fatalf("same-day match must be kept regardless of time, got %+v", got)
	}
}

func TestFilterUpcoming_OrderPreserved(t *testing.T) {
	all := []MatchSummary{
		{ID: "a", Date: "2025-06-03"},
		{ID: "b", Date: "2025-06-01"},
		{ID: "c", Date: "not-a-date"},
		{ID: "d", Date: "2025-06-02"},
	}
	ref := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	got := filterUpcoming(all, ref)
	if len(got) != 3 || got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "d" {
		t.Fatalf("unexpected order/content: %+v", got)
	}
}
