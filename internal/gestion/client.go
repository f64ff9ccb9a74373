package gestion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Falequi/ChatBotsGestionPartidos/internal/obslog"
)

const dateLayout = "2006-01-02"

// Client is a typed wrapper over the remote match-management REST API.
type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		defaultTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ API = (*Client)(nil)

func (c *Client) FindPlayerByDocument(ctx context.Context, document string) (*Player, error) {
	var p Player
	status, err := c.doJSON(ctx, fasthttp.MethodGet, "/api/jugadores/documento/"+strings.TrimSpace(document), nil, &p)
	if err != nil {
		return nil, err
	}
	switch {
	case status == fasthttp.StatusNotFound:
		return nil, ErrPlayerNotFound
	case status < 200 || status >= 300:
		return nil, unexpectedStatus(status)
	}
	return &p, nil
}

func (c *Client) FindPlayerByChatID(ctx context.Context, chatID string) (*Player, error) {
	var p Player
	status, err := c.doJSON(ctx, fasthttp.MethodGet, "/api/jugadores/chat/"+strings.TrimSpace(chatID), nil, &p)
	if err != nil {
		return nil, err
	}
	switch {
	case status == fasthttp.StatusNotFound:
		return nil, ErrPlayerNotFound
	case status < 200 || status >= 300:
		return nil, unexpectedStatus(status)
	}
	return &p, nil
}

// LinkChatID records the chat identifier on the player record. The remote
// endpoint is an upsert, so re-linking the same pair succeeds.
func (c *Client) LinkChatID(ctx context.Context, playerID, chatID string) error {
	body := map[string]string{"chatId": chatID}
	status, err := c.doJSON(ctx, fasthttp.MethodPatch, "/api/jugadores/"+playerID, body, nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return unexpectedStatus(status)
	}
	return nil
}

// ListUpcomingMatches fetches the match list and drops every match dated
// strictly before ref's calendar day. Comparison is by date components only;
// the match's time-of-day and timezone are ignored. An empty result is valid.
func (c *Client) ListUpcomingMatches(ctx context.Context, ref time.Time) ([]MatchSummary, error) {
	var all []MatchSummary
	status, err := c.doJSON(ctx, fasthttp.MethodGet, "/api/partidos", nil, &all)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, unexpectedStatus(status)
	}
	return filterUpcoming(all, ref), nil
}

func (c *Client) AddPlayerToMatch(ctx context.Context, playerID, matchID string) error {
	body := map[string]string{"jugadorId": playerID}
	status, err := c.doJSON(ctx, fasthttp.MethodPost, "/api/partidos/"+matchID+"/convocados", body, nil)
	if err != nil {
		return err
	}
	switch {
	case status == fasthttp.StatusConflict:
		return ErrAlreadyRegistered
	case status == fasthttp.StatusNotFound:
		return ErrMatchNotFound
	case status < 200 || status >= 300:
		return unexpectedStatus(status)
	}
	return nil
}

func (c *Client) RemovePlayerFromMatch(ctx context.Context, playerID, matchID string) error {
	status, err := c.doJSON(ctx, fasthttp.MethodDelete, "/api/partidos/"+matchID+"/convocados/"+playerID, nil, nil)
	if err != nil {
		return err
	}
	switch {
	case status == fasthttp.StatusNotFound:
		return ErrNotRegistered
	case status < 200 || status >= 300:
		return unexpectedStatus(status)
	}
	return nil
}

func (c *Client) GetRoster(ctx context.Context, matchID string) (*Roster, error) {
	var r Roster
	status, err := c.doJSON(ctx, fasthttp.MethodGet, "/api/partidos/"+matchID+"/convocados", nil, &r)
	if err != nil {
		return nil, err
	}
	switch {
	case status == fasthttp.StatusNotFound:
		return nil, ErrMatchNotFound
	case status < 200 || status >= 300:
		return nil, unexpectedStatus(status)
	}
	return &r, nil
}

// doJSON performs one request and decodes a 2xx JSON body into out. Transport
// failures and undecodable bodies wrap ErrUnavailable; non-2xx statuses are
// returned to the caller for per-operation mapping.
func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) (int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
		obslog.L().Warn("gestion_request_failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	status := resp.StatusCode()
	if out != nil && status >= 200 && status < 300 {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return status, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
		}
	}
	return status, nil
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func unexpectedStatus(status int) error {
	return fmt.Errorf("%w: status %d", ErrUnavailable, status)
}

// filterUpcoming keeps matches dated on or after ref's calendar day, in their
// original relative order. Matches with unparseable dates are dropped.
func filterUpcoming(all []MatchSummary, ref time.Time) []MatchSummary {
	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]MatchSummary, 0, len(all))
	for _, m := range all {
		d, err := time.Parse(dateLayout, strings.TrimSpace(m.Date))
		if err != nil {
			obslog.L().Debug("gestion_bad_match_date", zap.String("match_id", m.ID), zap.String("fecha", m.Date))
			continue
		}
		if d.Before(refDay) {
			continue
		}
		out = append(out, m)
	}
	return out
}
