package config

import "time"

// Config holds every tunable of the gateway. Values are layered by Load:
// defaults, then an optional YAML file, then WT_-prefixed environment
// variables.
type Config struct {
	// Addr is the listen address of the gateway itself.
	Addr string `koanf:"addr"`
	// BackendURL is the base URL of the WordTreasure REST backend.
	BackendURL string `koanf:"backend_url"`
	// RequestTimeout bounds every outbound backend call.
	RequestTimeout time.Duration `koanf:"request_timeout"`
	// PollInterval is the live-ranking refresh period while a game is open.
	PollInterval time.Duration `koanf:"poll_interval"`
	// PollLimit is the number of live-ranking entries fetched per poll.
	PollLimit int `koanf:"poll_limit"`
	// TransitionDelay is how long the winning board stays visible before
	// the player is moved to the result page.
	TransitionDelay time.Duration `koanf:"transition_delay"`

	RateLimitRPS   int `koanf:"rate_limit_rps"`
	RateLimitBurst int `koanf:"rate_limit_burst"`

	// CookieJarPath is where the backend session cookie is kept between
	// runs. Empty disables persistence.
	CookieJarPath string `koanf:"cookie_jar_path"`
	// CookieMaxAge caps how old a persisted session cookie may be before
	// it is discarded on load.
	CookieMaxAge time.Duration `koanf:"cookie_max_age"`

	StaticCacheAge time.Duration `koanf:"static_cache_age"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		Addr:            ":8080",
		BackendURL:      "http://localhost:9090",
		RequestTimeout:  10 * time.Second,
		PollInterval:    5 * time.Second,
		PollLimit:       10,
		TransitionDelay: 1500 * time.Millisecond,
		RateLimitRPS:    5,
		RateLimitBurst:  10,
		CookieJarPath:   "data/cookies.json",
		CookieMaxAge:    24 * time.Hour,
		StaticCacheAge:  5 * time.Minute,
	}
}
