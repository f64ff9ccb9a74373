package server

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Falequi/ChatBotsGestionPartidos/internal/conversation"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/format"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/gestion"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/msgcat"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/session"
)

// stubAPI knows a single player and no matches; enough for the welcome and
// document flows exercised through the HTTP surface.
type stubAPI struct{}

func (stubAPI) FindPlayerByDocument(ctx context.Context, document string) (*gestion.Player, error) {
	if document == "123" {
		return &gestion.Player{ID: "p1", Name: "Ana", Phone: "3188216823", Document: "123"}, nil
	}
	return nil, gestion.ErrPlayerNotFound
}

func (stubAPI) FindPlayerByChatID(ctx context.Context, chatID string) (*gestion.Player, error) {
	return nil, gestion.ErrPlayerNotFound
}

func (stubAPI) LinkChatID(ctx context.Context, playerID, chatID string) error { return nil }

func (stubAPI) ListUpcomingMatches(ctx context.Context, ref time.Time) ([]gestion.MatchSummary, error) {
	return []gestion.MatchSummary{{ID: "m1", Date: "2099-01-01", Time: "18:00", Venue: "Cancha Norte"}}, nil
}

func (stubAPI) AddPlayerToMatch(ctx context.Context, playerID, matchID string) error      { return nil }
func (stubAPI) RemovePlayerFromMatch(ctx context.Context, playerID, matchID string) error { return nil }
func (stubAPI) GetRoster(ctx context.Context, matchID string) (*gestion.Roster, error) {
	return &gestion.Roster{}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	f := format.NewFormatter(cat)
	eng := conversation.NewEngine(session.NewMemoryStore(), stubAPI{}, f)
	return New(eng, f, "whatsapp:", "57")
}

func postWebhook(t *testing.T, s *Server, form url.Values) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "/webhook", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.App().Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(b)
}

func TestWebhookWelcome(t *testing.T) {
	s := newTestServer(t)
	status, body := postWebhook(t, s, url.Values{
		"From": {"whatsapp:+573188216823"},
		"Body": {"hola"},
	})

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !strings.Contains(body, "<Response><Message>") || !strings.Contains(body, "</Message></Response>") {
		t.Fatalf("reply is not a TwiML envelope:\n%s", body)
	}
	if !strings.Contains(body, "documento") {
		t.Fatalf("first reply must ask for the document:\n%s", body)
	}
}

func TestWebhookFullAuthOverHTTP(t *testing.T) {
	s := newTestServer(t)
	form := url.Values{"From": {"whatsapp:+573188216823"}, "Body": {"hola"}}
	_, _ = postWebhook(t, s, form)

	form.Set("Body", "123")
	status, body := postWebhook(t, s, form)
	if status != http.StatusOK || !strings.Contains(body, "Cancha Norte") {
		t.Fatalf("expected match list after document, got %d:\n%s", status, body)
	}
}

func TestWebhookMissingSenderStillAnswers(t *testing.T) {
	s := newTestServer(t)
	status, body := postWebhook(t, s, url.Values{"Body": {"hola"}})

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !strings.Contains(body, "<Response><Message>") {
		t.Fatalf("missing sender must still get an envelope:\n%s", body)
	}
}

func TestWebhookSaludo(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	resp, err := s.App().Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
