package main

import (
	"context"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"

	"wordtreasure/internal/api"
	"wordtreasure/internal/config"
	"wordtreasure/internal/metrics"
)

func main() {
	_ = godotenv.Load()

	isProduction := os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	logInfo("Starting WordTreasure client in %s mode", map[bool]string{true: "production", false: "development"}[isProduction])

	cfg, err := config.Load()
	if err != nil {
		logFatal("Failed to load config: %v", err)
	}
	logInfo("Backend: %s, poll interval: %v", cfg.BackendURL, cfg.PollInterval)

	m := metrics.New()

	var auth *AuthState
	client, err := api.New(cfg.BackendURL, cfg.RequestTimeout,
		api.WithObserver(m.ObserveBackendRequest),
		api.WithUnauthorizedHook(func() {
			if auth != nil {
				auth.MarkUnauthenticated()
			}
		}),
	)
	if err != nil {
		logFatal("Failed to build backend client: %v", err)
	}
	if err := client.LoadCookies(cfg.CookieJarPath, cfg.CookieMaxAge); err != nil {
		logWarn("Failed to restore session cookies: %v", err)
	}

	auth = NewAuthState(client)
	go auth.Probe(context.Background())

	app := newApp(cfg, client, auth, m, isProduction)

	router := gin.Default()

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".gif"}),
		ginGzip.WithExcludedPaths([]string{"/static/fonts"})))
	router.Use(requestIDMiddleware())

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	router.Use(func(c *gin.Context) {
		applyCacheHeaders(c, app.IsProduction, cfg.StaticCacheAge)
	})

	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
	router.SetFuncMap(funcMap)

	if isProduction && dirExists("dist") {
		logInfo("Serving assets from dist/ directory")
		router.LoadHTMLGlob("dist/templates/*.html")
		router.Static("/static", "./dist/static")
	} else {
		logInfo("Serving development assets from source directories")
		router.LoadHTMLGlob("templates/*.html")
		router.Static("/static", "./static")
	}

	registerRoutes(router, app)

	startServer(router, app)
}

// registerRoutes wires every page, fragment and API surface of the gateway.
func registerRoutes(router *gin.Engine, app *App) {
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, RouteDashboard)
	})

	// Unauthenticated surface; these pages are never 401-redirect targets
	// themselves, which is the redirect loop guard.
	router.GET(RouteLogin, app.loginPageHandler)
	router.POST(RouteLogin, app.rateLimitMiddleware(), app.loginHandler)
	router.GET(RouteSignup, app.signupPageHandler)
	router.POST(RouteSignup, app.rateLimitMiddleware(), app.signupHandler)
	router.GET("/signup/check/nickname", app.checkNicknameHandler)
	router.GET("/signup/check/email", app.checkEmailHandler)

	// Everything below requires the auth holder to have an identity.
	private := router.Group("/", app.requireAuth())
	private.GET(RouteDashboard, app.dashboardHandler)
	private.GET(RouteGame, app.gameHandler)
	private.POST(RouteGuess, app.rateLimitMiddleware(), app.guessHandler)
	private.POST(RouteHint, app.rateLimitMiddleware(), app.hintHandler)
	private.GET(RouteRankings, app.rankingsHandler)
	private.GET(RouteResult, app.resultHandler)
	private.GET(RouteLeaderboard+"/:period", app.leaderboardHandler)
	private.GET(RouteLeaderboard, func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, RouteLeaderboard+"/daily")
	})
	private.GET(RouteProfile, app.profileHandler)
	private.POST(RouteProfile, app.rateLimitMiddleware(), app.updateProfileHandler)
	private.POST(RouteProfile+"/password", app.rateLimitMiddleware(), app.changePasswordHandler)
	private.POST(RouteLogout, app.logoutHandler)

	router.GET("/healthz", app.healthzHandler)
	router.GET("/metrics", gin.WrapH(app.Metrics.Handler()))
}

func startServer(router *gin.Engine, app *App) {
	srv := &http.Server{
		Addr:              app.Config.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		logInfo("Shutdown signal received, shutting down server gracefully...")

		app.closeGame()
		if err := app.API.SaveCookies(app.Config.CookieJarPath); err != nil {
			logWarn("Failed to save session cookies: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	logInfo("Gateway starting on %s", app.Config.Addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	logInfo("Server shutdown complete")
}

// applyCacheHeaders mirrors browser-friendly caching: static assets get a
// short public max-age in production, everything else is never cached.
func applyCacheHeaders(c *gin.Context, production bool, staticCacheAge time.Duration) {
	if production && strings.HasPrefix(c.Request.URL.Path, "/static/") {
		cachecontrol.New(cachecontrol.Config{
			Public: true,
			MaxAge: cachecontrol.Duration(staticCacheAge),
		})(c)
		c.Header("Vary", "Accept-Encoding")
		return
	}
	cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	})(c)
}
