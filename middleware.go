package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// getLimiter returns a rate limiter for the given key (usually client IP).
func (app *App) getLimiter(key string) *rate.Limiter {
	app.LimiterMutex.Lock()
	defer app.LimiterMutex.Unlock()
	if lim, ok := app.LimiterMap[key]; ok {
		return lim
	}

	if key == "" || key == "::1" {
		logWarn("Rate limiter key is empty or loopback: %q", key)
	}
	rps := app.Config.RateLimitRPS
	if rps <= 0 {
		rps = 1
	}
	lim := rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), app.Config.RateLimitBurst)
	app.LimiterMap[key] = lim
	return lim
}

// rateLimitMiddleware returns a Gin middleware that enforces per-client rate limiting.
func (app *App) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !app.getLimiter(key).Allow() {
			if c.GetHeader("HX-Request") == "true" {
				c.Header("HX-Trigger", "rate-limit-exceeded")
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down."})
			return
		}
		c.Next()
	}
}

// requestIDMiddleware injects a request ID into the context for each request.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.Request.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(c.Request.Context(), requestIDKey, reqID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-Id", reqID)
		c.Next()
	}
}

// requireAuth gates every protected page on the auth holder's state:
// loading renders a blocking placeholder, unauthenticated redirects to the
// login entry point, authenticated passes through unmodified. The decision
// is never cached here; the holder's state is the only source.
func (app *App) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if app.Auth.Loading() {
			go app.Auth.Probe(context.WithoutCancel(c.Request.Context()))
			c.HTML(http.StatusOK, "loading.html", gin.H{
				"title": "WordTreasure",
			})
			c.Abort()
			return
		}
		if !app.Auth.IsAuthenticated() {
			if c.GetHeader("HX-Request") == "true" {
				c.Header("HX-Redirect", RouteLogin)
				c.AbortWithStatus(http.StatusOK)
				return
			}
			c.Redirect(http.StatusSeeOther, RouteLogin)
			c.Abort()
			return
		}
		c.Next()
	}
}
