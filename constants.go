package main

// Route constants
const (
	RouteLogin       = "/login"
	RouteSignup      = "/signup"
	RouteDashboard   = "/dashboard"
	RouteGame        = "/game"
	RouteGuess       = "/game/guess"
	RouteHint        = "/game/hint"
	RouteRankings    = "/game/rankings"
	RouteResult      = "/result"
	RouteLeaderboard = "/leaderboard"
	RouteProfile     = "/profile"
	RouteLogout      = "/logout"
)

// User-facing error message constants
const (
	ErrorEmptyGuess       = "Enter a guess first."
	ErrorSubmitFailed     = "Could not submit your guess. Please try again."
	ErrorHintFailed       = "Could not fetch a hint. Please try again."
	ErrorLoginFailed      = "Login failed. Check your email and password."
	ErrorSignupFailed     = "Signup failed. Please try again."
	ErrorGameUnavailable  = "Could not open today's game. Please try again later."
	ErrorProfileUpdate    = "Could not update your profile."
	ErrorPasswordChange   = "Could not change your password."
	ErrorFieldsRequired   = "All fields are required."
	ErrorPasswordMismatch = "Passwords do not match."
)

// TimestampJustNow is the display placeholder for an attempt whose creation
// time the backend did not report.
const TimestampJustNow = "just now"

// Context key constants
const (
	requestIDKey contextKey = "request_id"
)

type contextKey string
