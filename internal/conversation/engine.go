// Package conversation holds the dialogue state machine: given a user id and
// an inbound message it reads the session store, calls the match service, and
// produces the next reply. Every failure is converted to user-facing text; the
// engine never returns an error to the transport.
package conversation

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Falequi/ChatBotsGestionPartidos/internal/format"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/gestion"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/obslog"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/session"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/util"
)

// Menu options inside an active match dialogue.
const (
	optConvene  = "1"
	optWithdraw = "2"
	optRoster   = "3"
	optExit     = "4"
)

type Engine struct {
	store session.Store
	api   gestion.API
	fmt   *format.Formatter
	now   func() time.Time
}

type Option func(*Engine)

// WithClock overrides the reference-time source used for match filtering.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(store session.Store, api gestion.API, f *format.Formatter, opts ...Option) *Engine {
	e := &Engine{store: store, api: api, fmt: f, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle processes one inbound message for a normalized user id and returns
// the reply text. Session mutations are committed before returning; a turn
// that fails mid-call leaves the stage unchanged so the user can retry by
// re-sending the same message.
func (e *Engine) Handle(ctx context.Context, userID, text string) string {
	text = strings.TrimSpace(text)

	s, err := e.store.Get(ctx, userID)
	if err != nil {
		obslog.L().Error("session_get_failed", zap.String("user_id", userID), zap.Error(err))
		return e.fmt.Generic()
	}
	if s == nil {
		return e.firstContact(ctx, userID)
	}
	// Every stage past the document prompt carries a player record; a session
	// without one is corrupt, start over.
	if s.Stage != session.StageAwaitingDocument && s.Player == nil {
		_ = e.store.Delete(ctx, userID)
		return e.firstContact(ctx, userID)
	}

	switch s.Stage {
	case session.StageAwaitingDocument:
		return e.handleDocument(ctx, s, text)
	case session.StageAuthenticated:
		// Authenticated with no captured list: offer matches again.
		return e.offerMatches(ctx, s)
	case session.StageAwaitingMatchSelection:
		return e.handleSelection(ctx, s, text)
	case session.StageMenuActive:
		return e.handleMenu(ctx, s, text)
	default:
		_ = e.store.Delete(ctx, userID)
		return e.firstContact(ctx, userID)
	}
}

// firstContact starts a dialogue for a user with no session. A player already
// linked to this chat id skips the document prompt and goes straight to the
// match list; everyone else is asked for their document number.
func (e *Engine) firstContact(ctx context.Context, userID string) string {
	p, err := e.api.FindPlayerByChatID(ctx, userID)
	if err == nil && p != nil {
		obslog.L().Info("returning_user", zap.String("user_id", userID), zap.String("player_id", p.ID))
		s := session.New(userID)
		return e.authenticate(ctx, s, p)
	}
	if err != nil && !errors.Is(err, gestion.ErrPlayerNotFound) {
		// Lookup failure falls back to the document flow rather than blocking
		// the first contact.
		obslog.L().Warn("chat_lookup_failed", zap.String("user_id", userID), zap.Error(err))
	}

	s := session.New(userID)
	if err := e.store.Put(ctx, s); err != nil {
		obslog.L().Error("session_put_failed", zap.String("user_id", userID), zap.Error(err))
		return e.fmt.Generic()
	}
	obslog.L().Info("first_contact", zap.String("user_id", userID))
	return e.fmt.Welcome()
}

func (e *Engine) handleDocument(ctx context.Context, s *session.Session, text string) string {
	document := text

	p, err := e.api.FindPlayerByDocument(ctx, document)
	if errors.Is(err, gestion.ErrPlayerNotFound) {
		// Reset so the next message restarts the welcome prompt.
		_ = e.store.Delete(ctx, s.UserID)
		obslog.L().Info("document_not_found", zap.String("user_id", s.UserID))
		return e.fmt.DocumentNotFound()
	}
	if err != nil {
		return e.fmt.Unavailable()
	}

	if !util.PhoneMatches(p.Phone, s.UserID) {
		_ = e.store.Delete(ctx, s.UserID)
		obslog.L().Info("phone_mismatch", zap.String("user_id", s.UserID), zap.String("player_id", p.ID))
		return e.fmt.PhoneMismatch()
	}

	if err := e.api.LinkChatID(ctx, p.ID, s.UserID); err != nil {
		return e.fmt.Unavailable()
	}
	obslog.L().Info("auth_success", zap.String("user_id", s.UserID), zap.String("player_id", p.ID))
	return e.authenticate(ctx, s, p)
}

// authenticate fetches the upcoming matches and moves the session to
// selection, or to the authenticated holding stage when there is nothing to
// offer yet.
func (e *Engine) authenticate(ctx context.Context, s *session.Session, p *gestion.Player) string {
	matches, err := e.api.ListUpcomingMatches(ctx, e.now())
	if err != nil {
		// The player is verified; keep that and let the next message retry
		// the listing without asking for the document again.
		s.ToAuthenticated(p)
		if perr := e.store.Put(ctx, s); perr != nil {
			obslog.L().Error("session_put_failed", zap.String("user_id", s.UserID), zap.Error(perr))
		}
		return e.fmt.Unavailable()
	}

	if len(matches) == 0 {
		s.ToAuthenticated(p)
		if perr := e.store.Put(ctx, s); perr != nil {
			obslog.L().Error("session_put_failed", zap.String("user_id", s.UserID), zap.Error(perr))
		}
		return e.fmt.MatchList(p.DisplayName(), nil)
	}

	s.ToMatchSelection(p, matches)
	if err := e.store.Put(ctx, s); err != nil {
		obslog.L().Error("session_put_failed", zap.String("user_id", s.UserID), zap.Error(err))
		return e.fmt.Generic()
	}
	return e.fmt.MatchList(p.DisplayName(), matches)
}

func (e *Engine) offerMatches(ctx context.Context, s *session.Session) string {
	return e.authenticate(ctx, s, s.Player)
}

func (e *Engine) handleSelection(ctx context.Context, s *session.Session, text string) string {
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > len(s.CandidateMatches) {
		return e.fmt.InvalidSelection()
	}

	// 1-based index into the list captured when it was shown. The snapshot is
	// honored even if match data changed server-side in the meantime.
	chosen := s.CandidateMatches[n-1]
	s.ToMenu(chosen.ID)
	if err := e.store.Put(ctx, s); err != nil {
		obslog.L().Error("session_put_failed", zap.String("user_id", s.UserID), zap.Error(err))
		return e.fmt.Generic()
	}
	obslog.L().Info("match_selected", zap.String("user_id", s.UserID), zap.String("match_id", chosen.ID))
	return e.fmt.Menu()
}

func (e *Engine) handleMenu(ctx context.Context, s *session.Session, text string) string {
	switch text {
	case optConvene:
		err := e.api.AddPlayerToMatch(ctx, s.Player.ID, s.SelectedMatchID)
		switch {
		case errors.Is(err, gestion.ErrAlreadyRegistered):
			return e.fmt.AlreadyRegistered()
		case errors.Is(err, gestion.ErrMatchNotFound):
			return e.matchGone(ctx, s)
		case err != nil:
			return e.fmt.Unavailable()
		}
		obslog.L().Info("convened", zap.String("user_id", s.UserID), zap.String("match_id", s.SelectedMatchID))
		return e.fmt.Added()

	case optWithdraw:
		err := e.api.RemovePlayerFromMatch(ctx, s.Player.ID, s.SelectedMatchID)
		switch {
		case errors.Is(err, gestion.ErrNotRegistered):
			return e.fmt.NotRegistered()
		case err != nil:
			return e.fmt.Unavailable()
		}
		obslog.L().Info("withdrew", zap.String("user_id", s.UserID), zap.String("match_id", s.SelectedMatchID))
		return e.fmt.Removed()

	case optRoster:
		roster, err := e.api.GetRoster(ctx, s.SelectedMatchID)
		switch {
		case errors.Is(err, gestion.ErrMatchNotFound):
			return e.matchGone(ctx, s)
		case err != nil:
			return e.fmt.Unavailable()
		}
		return e.fmt.Roster(roster)

	case optExit:
		if err := e.store.Delete(ctx, s.UserID); err != nil {
			obslog.L().Error("session_delete_failed", zap.String("user_id", s.UserID), zap.Error(err))
			return e.fmt.Generic()
		}
		obslog.L().Info("exited", zap.String("user_id", s.UserID))
		return e.fmt.Exited()

	default:
		return e.fmt.UnknownOption()
	}
}

// matchGone handles a selected match that no longer exists on the server. The
// user stays authenticated and the next message re-offers the current list.
func (e *Engine) matchGone(ctx context.Context, s *session.Session) string {
	matchID := s.SelectedMatchID
	s.ToAuthenticated(s.Player)
	if err := e.store.Put(ctx, s); err != nil {
		obslog.L().Error("session_put_failed", zap.String("user_id", s.UserID), zap.Error(err))
	}
	obslog.L().Info("match_gone", zap.String("user_id", s.UserID), zap.String("match_id", matchID))
	return e.fmt.MatchGone()
}
