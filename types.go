package main

import (
	"time"

	"wordtreasure/internal/api"
)

// TimelineAttempt is one scored guess as displayed in the game timeline.
// The timeline is ordered most-recent-first; AttemptNumber is the
// authoritative sort key, never display insertion order.
type TimelineAttempt struct {
	AttemptNumber int      `json:"attemptNumber"`
	UserInput     string   `json:"userInput"`
	Similarity    int      `json:"similarity"` // 0-100, already percentage-scaled by the server
	Hint          string   `json:"hint,omitempty"`
	ExtraHints    []string `json:"extraHints"`
	Timestamp     string   `json:"timestamp"`
}

// RankingSnapshot is the latest live-ranking poll result. It is replaced
// whole on every successful poll, never merged.
type RankingSnapshot struct {
	Entries   []api.RankingEntry
	MyRank    *api.RankingEntry
	UpdatedAt time.Time
}

// GameResult is the payload carried into the success view: the timeline as
// it stood when the winning guess landed, plus the backend's reward data.
type GameResult struct {
	Timeline     []TimelineAttempt
	AttemptCount int
	Rank         int
	TokensEarned int
}

// DashboardView is everything the dashboard page renders.
type DashboardView struct {
	Member    *api.Member
	TokenPool *api.TokenPool
	Session   *api.GameSession
	CanStart  bool
}

// canStartGame is the canonical "can the user start a new game today"
// predicate: true when no session exists yet, or when one was created but
// never started. A started session resumes; a finished one is done for the
// day.
func canStartGame(session *api.GameSession) bool {
	return session == nil || !session.HasStarted
}
