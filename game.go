package main

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"wordtreasure/internal/api"
	"wordtreasure/internal/metrics"
)

// GameViewModel owns the attempt timeline and the live-ranking snapshot for
// exactly one open game page. Both are discarded when the page is left; the
// backend is the only durable store. All network operations are guarded so
// at most one of each kind is in flight.
type GameViewModel struct {
	api     *api.Client
	metrics *metrics.Metrics

	pollInterval    time.Duration
	pollLimit       int
	transitionDelay time.Duration
	onSuccess       func(GameResult)

	mu           sync.Mutex
	session      api.GameSession
	timeline     []TimelineAttempt
	snapshot     RankingSnapshot
	input        string
	initialized  bool
	initializing bool
	submitting   bool
	hinting      bool
	closed       bool

	poller          *rankingPoller
	transitionTimer *time.Timer
}

// NewGameViewModel wires a view-model to the backend client. onSuccess is
// invoked (after the transition delay) when the winning guess lands.
func NewGameViewModel(client *api.Client, m *metrics.Metrics, pollInterval time.Duration, pollLimit int, transitionDelay time.Duration, onSuccess func(GameResult)) *GameViewModel {
	return &GameViewModel{
		api:             client,
		metrics:         m,
		pollInterval:    pollInterval,
		pollLimit:       pollLimit,
		transitionDelay: transitionDelay,
		onSuccess:       onSuccess,
		timeline:        []TimelineAttempt{},
	}
}

// Init performs the start-or-resume handshake. It runs at most once per
// view-model: a second call while one is pending, or after one succeeded,
// is a no-op. Any error is fatal to entering the game page; no partial
// state is kept.
func (g *GameViewModel) Init(ctx context.Context) error {
	g.mu.Lock()
	if g.initialized || g.initializing || g.closed {
		g.mu.Unlock()
		return nil
	}
	g.initializing = true
	g.mu.Unlock()

	current, err := g.api.CurrentGame(ctx)
	if err != nil {
		g.mu.Lock()
		g.initializing = false
		g.mu.Unlock()
		return err
	}

	var session api.GameSession
	var timeline []TimelineAttempt
	if current.Session != nil && current.Session.HasStarted {
		// Resume: adopt the existing identifiers and reconstruct the
		// timeline from the server-restored progress.
		session = *current.Session
		timeline = buildTimeline(current.Progress)
	} else {
		wordID := ""
		if current.Session != nil {
			wordID = current.Session.DailyWordID
		}
		started, err := g.api.StartGame(ctx, wordID)
		if err != nil {
			g.mu.Lock()
			g.initializing = false
			g.mu.Unlock()
			return err
		}
		session = *started
		timeline = []TimelineAttempt{}
	}

	g.mu.Lock()
	g.session = session
	g.timeline = timeline
	g.initialized = true
	g.initializing = false
	closed := g.closed
	g.mu.Unlock()

	if !closed && session.DailyWordID != "" {
		poller := newRankingPoller(g.api, g.metrics, session.DailyWordID, g.pollLimit, g.pollInterval, g.applySnapshot)
		if err := poller.Start(); err != nil {
			// The page is still playable without live rankings.
			logWarn("Failed to start ranking poller: %v", err)
		} else {
			g.mu.Lock()
			g.poller = poller
			g.mu.Unlock()
		}
	}
	logInfo("Game session %s ready (word %s, %d restored attempts)", session.SessionID, session.DailyWordID, len(timeline))
	return nil
}

// buildTimeline reconstructs the display timeline from restored progress.
// Attempts are ordered most-recent-first by attemptNumber; the full hint
// history, sorted by request time, attaches to the latest attempt only.
// A missing progress object yields an empty timeline.
func buildTimeline(progress *api.GameProgress) []TimelineAttempt {
	if progress == nil {
		return []TimelineAttempt{}
	}

	timeline := lo.Map(progress.Attempts, func(a api.ProgressAttempt, _ int) TimelineAttempt {
		return TimelineAttempt{
			AttemptNumber: a.AttemptNumber,
			UserInput:     a.UserInput,
			Similarity:    roundSimilarity(a.SimilarityScore, a.Similarity),
			Hint:          a.Hint,
			ExtraHints:    []string{},
			Timestamp:     timestampOrJustNow(a.CreatedAt),
		}
	})
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].AttemptNumber > timeline[j].AttemptNumber
	})

	hints := append([]api.ProgressHint(nil), progress.Hints...)
	sort.SliceStable(hints, func(i, j int) bool {
		return hintRequestedBefore(hints[i].RequestedAt, hints[j].RequestedAt)
	})
	contents := lo.Map(hints, func(h api.ProgressHint, _ int) string { return h.HintContent })

	if len(timeline) > 0 && len(contents) > 0 {
		timeline[0].ExtraHints = append(timeline[0].ExtraHints, contents...)
	}
	return timeline
}

// roundSimilarity reconciles the two score keys the backend has used; a
// missing score counts as zero.
func roundSimilarity(score, similarity *float64) int {
	v := 0.0
	switch {
	case score != nil:
		v = *score
	case similarity != nil:
		v = *similarity
	}
	return int(math.Round(v))
}

func timestampOrJustNow(createdAt string) string {
	if createdAt == "" {
		return TimestampJustNow
	}
	return createdAt
}

// hintRequestedBefore orders hint timestamps chronologically, falling back
// to a lexicographic compare when they are not RFC 3339.
func hintRequestedBefore(a, b string) bool {
	ta, errA := time.Parse(time.RFC3339, a)
	tb, errB := time.Parse(time.RFC3339, b)
	if errA == nil && errB == nil {
		return ta.Before(tb)
	}
	return a < b
}

// SubmitGuess scores one guess. Empty input and double submissions are
// rejected locally without touching the network. The timeline mutates only
// after the backend confirms the attempt; a failed submission leaves both
// the timeline and the input buffer untouched so the user can edit.
func (g *GameViewModel) SubmitGuess(ctx context.Context, raw string) error {
	guess := strings.TrimSpace(raw)
	if guess == "" {
		return errors.New(ErrorEmptyGuess)
	}

	g.mu.Lock()
	if g.submitting || g.closed || !g.initialized {
		g.mu.Unlock()
		return nil
	}
	g.submitting = true
	g.input = guess
	sessionID := g.session.SessionID
	priorCount := len(g.timeline)
	g.mu.Unlock()

	g.metrics.GuessSubmitted()
	result, err := g.api.SubmitAttempt(ctx, sessionID, guess)

	g.mu.Lock()
	g.submitting = false
	if err != nil {
		g.mu.Unlock()
		return userError(err, ErrorSubmitFailed)
	}

	attemptNumber := result.AttemptNumber
	if attemptNumber == 0 {
		attemptNumber = priorCount + 1
	}
	attempt := TimelineAttempt{
		AttemptNumber: attemptNumber,
		UserInput:     guess,
		Similarity:    int(math.Round(result.SimilarityScore)),
		Hint:          result.Hint,
		ExtraHints:    []string{},
		Timestamp:     TimestampJustNow,
	}
	// The server hands back attempts in strictly increasing submission
	// order, so the new attempt becomes index 0 without a re-sort.
	g.timeline = append([]TimelineAttempt{attempt}, g.timeline...)
	g.input = ""
	if result.IsCorrect {
		g.session.Status = api.StatusSuccess
	}
	poller := g.poller
	timelineCopy := g.timelineLocked()
	g.mu.Unlock()

	if poller != nil {
		go poller.Refresh(context.WithoutCancel(ctx))
	}

	if result.IsCorrect {
		g.scheduleTransition(GameResult{
			Timeline:     timelineCopy,
			AttemptCount: priorCount + 1,
			Rank:         result.Rank,
			TokensEarned: result.TokensEarned,
		})
	}
	return nil
}

// RequestHint buys a supplementary hint and appends it to the latest
// attempt. A request already in flight makes this a silent no-op; a result
// arriving onto an empty timeline is discarded.
func (g *GameViewModel) RequestHint(ctx context.Context) error {
	g.mu.Lock()
	if g.hinting || g.closed || !g.initialized || g.session.SessionID == "" {
		g.mu.Unlock()
		return nil
	}
	g.hinting = true
	sessionID := g.session.SessionID
	g.mu.Unlock()

	result, err := g.api.RequestHint(ctx, sessionID)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.hinting = false
	if err != nil {
		return userError(err, ErrorHintFailed)
	}
	if len(g.timeline) == 0 {
		logWarn("Hint received with empty timeline, discarding")
		return nil
	}
	g.timeline[0].ExtraHints = append(g.timeline[0].ExtraHints, result.HintText)
	return nil
}

// applySnapshot replaces the whole ranking snapshot; polls never merge.
func (g *GameViewModel) applySnapshot(lr api.LiveRankings) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.snapshot = RankingSnapshot{
		Entries:   lr.Rankings,
		MyRank:    lr.MyRank,
		UpdatedAt: time.Now(),
	}
}

func (g *GameViewModel) scheduleTransition(result GameResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || g.onSuccess == nil {
		return
	}
	g.transitionTimer = time.AfterFunc(g.transitionDelay, func() {
		g.onSuccess(result)
	})
}

// Timeline returns a copy of the display timeline, most recent first.
func (g *GameViewModel) Timeline() []TimelineAttempt {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timelineLocked()
}

func (g *GameViewModel) timelineLocked() []TimelineAttempt {
	out := make([]TimelineAttempt, len(g.timeline))
	copy(out, g.timeline)
	return out
}

// Rankings returns the last successful poll snapshot; it may be stale when
// the most recent poll failed, which is acceptable for display.
func (g *GameViewModel) Rankings() RankingSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot
}

// Session returns the adopted session identifiers.
func (g *GameViewModel) Session() api.GameSession {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// Input returns the retained input buffer (non-empty only after a failed
// submission, so the form can be refilled for editing).
func (g *GameViewModel) Input() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.input
}

// Close tears down the poll job and any pending transition timer. The
// timeline and snapshot die with the view-model.
func (g *GameViewModel) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	poller := g.poller
	timer := g.transitionTimer
	g.poller = nil
	g.transitionTimer = nil
	g.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if poller != nil {
		poller.Stop()
	}
}

// userError prefers the server-provided message and falls back to a generic
// one; internals never leak to the page.
func userError(err error, fallback string) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return errors.New(apiErr.Message)
	}
	return errors.New(fallback)
}
