package api

// Member is the authenticated identity returned by the auth endpoints.
type Member struct {
	ID        string `json:"memberId"`
	Email     string `json:"email"`
	NickName  string `json:"nickName"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// DuplicateCheck is the advisory result of the nickname/email checks.
type DuplicateCheck struct {
	IsDuplicate bool   `json:"isDuplicate"`
	Message     string `json:"message"`
}

// Game session status values as reported by the backend.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusSuccess    = "SUCCESS"
	StatusFail       = "FAIL"
)

// GameSession identifies one user's run at the current daily word.
type GameSession struct {
	SessionID   string `json:"sessionId"`
	DailyWordID string `json:"dailyWordId"`
	HasStarted  bool   `json:"hasStarted"`
	Status      string `json:"status"`
}

// ProgressAttempt is one restored guess inside a resumed session. The
// backend has shipped the score under two different keys over time, so both
// are kept and reconciled by the caller.
type ProgressAttempt struct {
	AttemptNumber   int      `json:"attemptNumber"`
	UserInput       string   `json:"userInput"`
	SimilarityScore *float64 `json:"similarityScore,omitempty"`
	Similarity      *float64 `json:"similarity,omitempty"`
	Hint            string   `json:"hint,omitempty"`
	CreatedAt       string   `json:"createdAt,omitempty"`
}

// ProgressHint is one supplementary hint bought during the session.
type ProgressHint struct {
	HintContent string `json:"hintContent"`
	RequestedAt string `json:"requestedAt"`
}

// GameProgress is the server-restored history embedded in a resume.
type GameProgress struct {
	Attempts []ProgressAttempt `json:"attempts"`
	Hints    []ProgressHint    `json:"hints"`
}

// CurrentGame is the response of GET /api/game/current. Session is nil when
// no game exists for today; Progress is nil when the session carries no
// restorable history.
type CurrentGame struct {
	Session  *GameSession  `json:"session,omitempty"`
	Progress *GameProgress `json:"progress,omitempty"`
}

// AttemptResult is the scored outcome of one submitted guess.
type AttemptResult struct {
	AttemptNumber   int     `json:"attemptNumber"`
	SimilarityScore float64 `json:"similarityScore"`
	IsCorrect       bool    `json:"isCorrect"`
	Hint            string  `json:"hint,omitempty"`
	Rank            int     `json:"rank,omitempty"`
	TokensEarned    int     `json:"tokensEarned,omitempty"`
}

// HintResult is the outcome of buying a supplementary hint.
type HintResult struct {
	HintText        string `json:"hintText"`
	TokensSpent     int    `json:"tokensSpent"`
	RemainingTokens int    `json:"remainingTokens"`
}

// RankingEntry is one row of a ranking snapshot.
type RankingEntry struct {
	MemberID     string `json:"memberId"`
	Nickname     string `json:"nickname"`
	Rank         int    `json:"rank"`
	AttemptCount int    `json:"attemptCount"`
	Status       string `json:"status"`
}

// LiveRankings is the bounded, server-ranked snapshot for one daily word.
type LiveRankings struct {
	Rankings []RankingEntry `json:"rankings"`
	MyRank   *RankingEntry  `json:"myRank,omitempty"`
}

// Ranking periods accepted by PeriodRankings.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodAllTime = "all-time"
)

// PeriodRankingEntry is one row of a time-windowed leaderboard.
type PeriodRankingEntry struct {
	MemberID     string `json:"memberId"`
	Nickname     string `json:"nickname"`
	Rank         int    `json:"rank"`
	Wins         int    `json:"wins"`
	AvgAttempts  float64 `json:"avgAttempts"`
	TokensEarned int    `json:"tokensEarned"`
}

// PeriodRankings is a paginated leaderboard page plus the caller's own row.
type PeriodRankings struct {
	Rankings   []PeriodRankingEntry `json:"rankings"`
	MyRanking  *PeriodRankingEntry  `json:"myRanking,omitempty"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"totalPages"`
}

// Statistics is the member's aggregate play record.
type Statistics struct {
	TotalGames    int     `json:"totalGames"`
	Wins          int     `json:"wins"`
	WinRate       float64 `json:"winRate"`
	AvgAttempts   float64 `json:"avgAttempts"`
	CurrentStreak int     `json:"currentStreak"`
	MaxStreak     int     `json:"maxStreak"`
	TokenBalance  int     `json:"tokenBalance"`
}

// RecentGame is one row of the recent-games list.
type RecentGame struct {
	Date         string `json:"date"`
	Status       string `json:"status"`
	AttemptCount int    `json:"attemptCount"`
	Rank         int    `json:"rank,omitempty"`
	TokensEarned int    `json:"tokensEarned,omitempty"`
}

// ActivityDay is one cell of the activity calendar.
type ActivityDay struct {
	Date   string `json:"date"`
	Played bool   `json:"played"`
	Won    bool   `json:"won"`
}

// BestRecords are the member's personal bests.
type BestRecords struct {
	BestRank        int `json:"bestRank"`
	FewestAttempts  int `json:"fewestAttempts"`
	MostTokensInDay int `json:"mostTokensInDay"`
	LongestStreak   int `json:"longestStreak"`
}

// ProfilePatch is the mutable subset of the member profile.
type ProfilePatch struct {
	NickName string `json:"nickName,omitempty"`
}

// TokenPool is today's shared reward balance.
type TokenPool struct {
	Date        string `json:"date"`
	TotalTokens int    `json:"totalTokens"`
}
