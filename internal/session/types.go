package session

import (
	"time"

	"github.com/Falequi/ChatBotsGestionPartidos/internal/gestion"
)

// Stage is the discrete state of a user's conversation. A user with no stored
// session is unauthenticated; every stored session carries exactly one stage.
type Stage string

const (
	StageAwaitingDocument       Stage = "AWAITING_DOCUMENT"
	StageAuthenticated          Stage = "AUTHENTICATED"
	StageAwaitingMatchSelection Stage = "AWAITING_MATCH_SELECTION"
	StageMenuActive             Stage = "MENU_ACTIVE"
)

// Session is the per-user dialogue record, stored as JSON when Redis backs the
// store. Fields that are not valid for the current stage are kept cleared; the
// transition helpers below are the only intended way to change stage.
type Session struct {
	UserID string `json:"user_id"`
	Stage  Stage  `json:"stage"`

	Player           *gestion.Player        `json:"player,omitempty"`
	CandidateMatches []gestion.MatchSummary `json:"candidate_matches,omitempty"`
	SelectedMatchID  string                 `json:"selected_match_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns a fresh session waiting for the user's document number.
func New(userID string) *Session {
	now := time.Now()
	return &Session{UserID: userID, Stage: StageAwaitingDocument, CreatedAt: now, UpdatedAt: now}
}

// ToAuthenticated records the verified player. Used when authentication
// succeeded but there is no match list to offer yet.
func (s *Session) ToAuthenticated(p *gestion.Player) {
	s.Stage = StageAuthenticated
	s.Player = p
	s.CandidateMatches = nil
	s.SelectedMatchID = ""
	s.UpdatedAt = time.Now()
}

// ToMatchSelection captures the offered match list. Selection indexes resolve
// against this snapshot even if the server-side list changes afterwards.
func (s *Session) ToMatchSelection(p *gestion.Player, matches []gestion.MatchSummary) {
	s.Stage = StageAwaitingMatchSelection
	s.Player = p
	s.CandidateMatches = matches
	s.SelectedMatchID = ""
	s.UpdatedAt = time.Now()
}

// ToMenu stores the chosen match and drops the candidate list.
func (s *Session) ToMenu(matchID string) {
	s.Stage = StageMenuActive
	s.SelectedMatchID = matchID
	s.CandidateMatches = nil
	s.UpdatedAt = time.Now()
}
