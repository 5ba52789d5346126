// Package api is the credentialed HTTP client for the WordTreasure backend.
// Every call carries the session cookie and JSON content typing; a 401 from
// any endpoint fires the configured unauthorized hook exactly once per call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"
)

// Error is a non-2xx backend response. Message is the server-provided text
// when the body carried one, otherwise empty.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend: %d", e.Status)
}

// Client talks to the backend REST API.
type Client struct {
	baseURL        *url.URL
	http           *http.Client
	onUnauthorized func()
	observe        func(endpoint, outcome string)
}

// Option configures a Client.
type Option func(*Client)

// WithUnauthorizedHook installs the callback fired on any 401 response.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithObserver installs a per-request metrics callback.
func WithObserver(fn func(endpoint, outcome string)) Option {
	return func(c *Client) { c.observe = fn }
}

// New builds a Client with its own cookie jar. The jar is the client-side
// stand-in for the browser's cookie store: the backend session cookie lands
// there on login and rides along on every later call.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: u,
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do runs one JSON round trip. out may be nil for void endpoints.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, endpoint string) error {
	u := *c.baseURL
	u.Path = path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.record(endpoint, OutcomeError)
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.record(endpoint, OutcomeError)
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.record(endpoint, OutcomeError)
		apiErr := &Error{Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Message
		}
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return apiErr
	}

	c.record(endpoint, OutcomeOK)
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

// Outcome labels reported to the observer.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

func (c *Client) record(endpoint, outcome string) {
	if c.observe != nil {
		c.observe(endpoint, outcome)
	}
}

// Me returns the current identity, or a 401 *Error when the session is gone.
func (c *Client) Me(ctx context.Context) (*Member, error) {
	var m Member
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &m, "auth_me"); err != nil {
		return nil, err
	}
	return &m, nil
}

// Login exchanges credentials for a session cookie plus the identity.
func (c *Client) Login(ctx context.Context, email, password string) (*Member, error) {
	body := map[string]string{"email": email, "password": password}
	var m Member
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &m, "auth_login"); err != nil {
		return nil, err
	}
	return &m, nil
}

// Signup registers a new member and returns the created identity.
func (c *Client) Signup(ctx context.Context, email, nickName, password string) (*Member, error) {
	body := map[string]string{"email": email, "nickName": nickName, "password": password}
	var m Member
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", nil, body, &m, "auth_signup"); err != nil {
		return nil, err
	}
	return &m, nil
}

// Logout invalidates the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil, "auth_logout")
}

// CheckNickname runs the non-blocking duplicate advisory for a nickname.
func (c *Client) CheckNickname(ctx context.Context, nickName string) (*DuplicateCheck, error) {
	q := url.Values{"nickName": {nickName}}
	var d DuplicateCheck
	if err := c.do(ctx, http.MethodGet, "/api/auth/check/nickname", q, nil, &d, "auth_check_nickname"); err != nil {
		return nil, err
	}
	return &d, nil
}

// CheckEmail runs the non-blocking duplicate advisory for an email.
func (c *Client) CheckEmail(ctx context.Context, email string) (*DuplicateCheck, error) {
	q := url.Values{"email": {email}}
	var d DuplicateCheck
	if err := c.do(ctx, http.MethodGet, "/api/auth/check/email", q, nil, &d, "auth_check_email"); err != nil {
		return nil, err
	}
	return &d, nil
}

// CurrentGame reports today's session, if any, with restorable progress.
func (c *Client) CurrentGame(ctx context.Context) (*CurrentGame, error) {
	var cg CurrentGame
	if err := c.do(ctx, http.MethodGet, "/api/game/current", nil, nil, &cg, "game_current"); err != nil {
		return nil, err
	}
	return &cg, nil
}

// StartGame creates a fresh session for the given daily word.
func (c *Client) StartGame(ctx context.Context, dailyWordID string) (*GameSession, error) {
	body := map[string]string{"dailyWordId": dailyWordID}
	var s GameSession
	if err := c.do(ctx, http.MethodPost, "/api/game/start", nil, body, &s, "game_start"); err != nil {
		return nil, err
	}
	return &s, nil
}

// SubmitAttempt scores one guess against the session's daily word.
func (c *Client) SubmitAttempt(ctx context.Context, sessionID, userInput string) (*AttemptResult, error) {
	body := map[string]string{"gameSessionId": sessionID, "userInput": userInput}
	var r AttemptResult
	if err := c.do(ctx, http.MethodPost, "/api/game/attempt", nil, body, &r, "game_attempt"); err != nil {
		return nil, err
	}
	return &r, nil
}

// RequestHint buys one supplementary hint for the session.
func (c *Client) RequestHint(ctx context.Context, sessionID string) (*HintResult, error) {
	body := map[string]string{"gameSessionId": sessionID}
	var h HintResult
	if err := c.do(ctx, http.MethodPost, "/api/game/hint", nil, body, &h, "game_hint"); err != nil {
		return nil, err
	}
	return &h, nil
}

// LiveRankings fetches the transient top-N snapshot for a daily word.
func (c *Client) LiveRankings(ctx context.Context, dailyWordID string, limit int) (*LiveRankings, error) {
	q := url.Values{
		"dailyWordId": {dailyWordID},
		"limit":       {strconv.Itoa(limit)},
	}
	var lr LiveRankings
	if err := c.do(ctx, http.MethodGet, "/api/game/rankings/live", q, nil, &lr, "game_rankings_live"); err != nil {
		return nil, err
	}
	return &lr, nil
}

// PeriodRankings fetches one page of a time-windowed leaderboard.
func (c *Client) PeriodRankings(ctx context.Context, period string, page, size int) (*PeriodRankings, error) {
	q := url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
	}
	var pr PeriodRankings
	if err := c.do(ctx, http.MethodGet, "/api/rankings/"+period, q, nil, &pr, "rankings_"+period); err != nil {
		return nil, err
	}
	return &pr, nil
}

// Profile returns the member profile.
func (c *Client) Profile(ctx context.Context) (*Member, error) {
	var m Member
	if err := c.do(ctx, http.MethodGet, "/api/member/profile", nil, nil, &m, "member_profile"); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateProfile patches the mutable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, patch ProfilePatch) (*Member, error) {
	var m Member
	if err := c.do(ctx, http.MethodPatch, "/api/member/profile", nil, patch, &m, "member_profile_patch"); err != nil {
		return nil, err
	}
	return &m, nil
}

// ChangePassword replaces the account password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return c.do(ctx, http.MethodPut, "/api/member/password", nil, body, nil, "member_password")
}

// Statistics returns the member's aggregate play record.
func (c *Client) Statistics(ctx context.Context) (*Statistics, error) {
	var s Statistics
	if err := c.do(ctx, http.MethodGet, "/api/member/statistics", nil, nil, &s, "member_statistics"); err != nil {
		return nil, err
	}
	return &s, nil
}

// RecentGames returns the member's latest finished games.
func (c *Client) RecentGames(ctx context.Context, limit int) ([]RecentGame, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var games []RecentGame
	if err := c.do(ctx, http.MethodGet, "/api/member/recent-games", q, nil, &games, "member_recent_games"); err != nil {
		return nil, err
	}
	return games, nil
}

// ActivityCalendar returns per-day play activity for a year.
func (c *Client) ActivityCalendar(ctx context.Context, year int) ([]ActivityDay, error) {
	q := url.Values{"year": {strconv.Itoa(year)}}
	var days []ActivityDay
	if err := c.do(ctx, http.MethodGet, "/api/member/activity-calendar", q, nil, &days, "member_activity_calendar"); err != nil {
		return nil, err
	}
	return days, nil
}

// BestRecords returns the member's personal bests.
func (c *Client) BestRecords(ctx context.Context) (*BestRecords, error) {
	var b BestRecords
	if err := c.do(ctx, http.MethodGet, "/api/member/best-records", nil, nil, &b, "member_best_records"); err != nil {
		return nil, err
	}
	return &b, nil
}

// TokenPoolToday returns the current shared reward pool.
func (c *Client) TokenPoolToday(ctx context.Context) (*TokenPool, error) {
	var tp TokenPool
	if err := c.do(ctx, http.MethodGet, "/api/token-pool/today", nil, nil, &tp, "token_pool_today"); err != nil {
		return nil, err
	}
	return &tp, nil
}
