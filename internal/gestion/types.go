package gestion

import (
	"context"
	"errors"
	"time"
)

// Player is owned by the match service; callers treat it as read-only.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"nombre"`
	ShortName string `json:"nombreCorto,omitempty"`
	Phone     string `json:"telefono"`
	Document  string `json:"documento"`
	ChatID    string `json:"chatId,omitempty"`
}

// DisplayName prefers the short name when the service provides one.
func (p *Player) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.ShortName != "" {
		return p.ShortName
	}
	return p.Name
}

// MatchSummary is a read-only snapshot of a scheduled match.
// Date uses the service's wire format, YYYY-MM-DD.
type MatchSummary struct {
	ID    string `json:"id"`
	Date  string `json:"fecha"`
	Time  string `json:"hora"`
	Venue string `json:"lugar"`
}

// RosterPlayer is one convened player with payment status.
type RosterPlayer struct {
	Name string `json:"nombre"`
	Paid bool   `json:"pagado"`
}

// Roster is the convened-player list for a match.
type Roster struct {
	Date    string         `json:"fecha"`
	Time    string         `json:"hora"`
	Venue   string         `json:"lugar"`
	Players []RosterPlayer `json:"convocados"`
}

// Domain outcomes are distinguishable from transport failures: everything that
// is not one of the sentinels below wraps ErrUnavailable.
var (
	ErrUnavailable       = errors.New("gestion service unavailable")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrMatchNotFound     = errors.New("match not found")
	ErrAlreadyRegistered = errors.New("player already convened to match")
	ErrNotRegistered     = errors.New("player not convened to match")
)

// API is the narrow surface the conversation engine talks to. Every call is a
// synchronous network operation that may fail; no retries are performed — a
// failed call fails the current turn and the user re-sends to retry.
type API interface {
	FindPlayerByDocument(ctx context.Context, document string) (*Player, error)
	FindPlayerByChatID(ctx context.Context, chatID string) (*Player, error)
	LinkChatID(ctx context.Context, playerID, chatID string) error
	ListUpcomingMatches(ctx context.Context, ref time.Time) ([]MatchSummary, error)
	AddPlayerToMatch(ctx context.Context, playerID, matchID string) error
	RemovePlayerFromMatch(ctx context.Context, playerID, matchID string) error
	GetRoster(ctx context.Context, matchID string) (*Roster, error)
}
