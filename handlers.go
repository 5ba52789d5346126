package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"wordtreasure/internal/api"
)

// loginPageHandler renders the login entry point.
func (app *App) loginPageHandler(c *gin.Context) {
	if app.Auth.IsAuthenticated() {
		c.Redirect(http.StatusSeeOther, RouteDashboard)
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{"title": "WordTreasure - Login"})
}

// loginHandler processes a login form submission.
func (app *App) loginHandler(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	if email == "" || password == "" {
		c.HTML(http.StatusOK, "login.html", gin.H{
			"title": "WordTreasure - Login",
			"error": ErrorFieldsRequired,
			"email": email,
		})
		return
	}

	if _, err := app.Auth.Login(c.Request.Context(), email, password); err != nil {
		c.HTML(http.StatusOK, "login.html", gin.H{
			"title": "WordTreasure - Login",
			"error": userError(err, ErrorLoginFailed).Error(),
			"email": email,
		})
		return
	}
	c.Redirect(http.StatusSeeOther, RouteDashboard)
}

// signupPageHandler renders the registration form.
func (app *App) signupPageHandler(c *gin.Context) {
	if app.Auth.IsAuthenticated() {
		c.Redirect(http.StatusSeeOther, RouteDashboard)
		return
	}
	c.HTML(http.StatusOK, "signup.html", gin.H{"title": "WordTreasure - Sign up"})
}

// signupHandler processes a registration form submission. Field validation
// is local and blocks the network call; the duplicate advisories are
// non-blocking and live in their own fragment handlers.
func (app *App) signupHandler(c *gin.Context) {
	email := c.PostForm("email")
	nickName := c.PostForm("nickName")
	password := c.PostForm("password")
	confirm := c.PostForm("passwordConfirm")

	render := func(errMsg string) {
		c.HTML(http.StatusOK, "signup.html", gin.H{
			"title":    "WordTreasure - Sign up",
			"error":    errMsg,
			"email":    email,
			"nickName": nickName,
		})
	}

	if email == "" || nickName == "" || password == "" {
		render(ErrorFieldsRequired)
		return
	}
	if password != confirm {
		render(ErrorPasswordMismatch)
		return
	}

	if _, err := app.Auth.Signup(c.Request.Context(), email, nickName, password); err != nil {
		render(userError(err, ErrorSignupFailed).Error())
		return
	}
	c.Redirect(http.StatusSeeOther, RouteDashboard)
}

// checkNicknameHandler renders the nickname duplicate advisory fragment.
// Advisory only: a failed check renders nothing and blocks nothing.
func (app *App) checkNicknameHandler(c *gin.Context) {
	nick := c.Query("nickName")
	if nick == "" {
		c.HTML(http.StatusOK, "check-result", gin.H{})
		return
	}
	result, err := app.API.CheckNickname(c.Request.Context(), nick)
	if err != nil {
		logWarn("Nickname check failed: %v", err)
		c.HTML(http.StatusOK, "check-result", gin.H{})
		return
	}
	c.HTML(http.StatusOK, "check-result", gin.H{
		"duplicate": result.IsDuplicate,
		"message":   result.Message,
	})
}

// checkEmailHandler renders the email duplicate advisory fragment.
func (app *App) checkEmailHandler(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.HTML(http.StatusOK, "check-result", gin.H{})
		return
	}
	result, err := app.API.CheckEmail(c.Request.Context(), email)
	if err != nil {
		logWarn("Email check failed: %v", err)
		c.HTML(http.StatusOK, "check-result", gin.H{})
		return
	}
	c.HTML(http.StatusOK, "check-result", gin.H{
		"duplicate": result.IsDuplicate,
		"message":   result.Message,
	})
}

// logoutHandler ends the session locally no matter what the backend says.
func (app *App) logoutHandler(c *gin.Context) {
	app.closeGame()
	if err := app.Auth.Logout(c.Request.Context()); err != nil {
		logWarn("Logout: %v", err)
	}
	c.Redirect(http.StatusSeeOther, RouteLogin)
}

// dashboardHandler renders today's pool, the session status and the start
// button. Entering the dashboard discards any open game view-model.
func (app *App) dashboardHandler(c *gin.Context) {
	app.closeGame()
	ctx := c.Request.Context()

	view := DashboardView{Member: app.Auth.User(), CanStart: true}

	if pool, err := app.API.TokenPoolToday(ctx); err != nil {
		logWarn("Token pool fetch failed: %v", err)
	} else {
		view.TokenPool = pool
	}

	if current, err := app.API.CurrentGame(ctx); err != nil {
		logWarn("Current game probe failed: %v", err)
	} else if current.Session != nil {
		view.Session = current.Session
		view.CanStart = canStartGame(current.Session)
	}

	notice := ""
	if c.Query("notice") == "game" {
		notice = ErrorGameUnavailable
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"title":  "WordTreasure - Dashboard",
		"view":   view,
		"notice": notice,
	})
}

// gameHandler enters (or re-enters) the game page. Initialization failure
// is fatal to page entry: the user lands back on the dashboard with a
// blocking notice, never on a partially initialized board.
func (app *App) gameHandler(c *gin.Context) {
	vm, err := app.enterGame(c.Request.Context())
	if err != nil {
		logWarn("Game entry failed: %v", err)
		c.Redirect(http.StatusSeeOther, RouteDashboard+"?notice=game")
		return
	}

	session := vm.Session()
	c.HTML(http.StatusOK, "game.html", gin.H{
		"title":    "WordTreasure - Today's Word",
		"session":  session,
		"playable": session.Status == api.StatusInProgress,
		"timeline": vm.Timeline(),
		"input":    vm.Input(),
		"snapshot": vm.Rankings(),
	})
}

// renderGameContent renders the board fragment, attaching the error text as
// an HX-Trigger payload the way the page's scripts expect.
func (app *App) renderGameContent(c *gin.Context, vm *GameViewModel, errMsg string) {
	if errMsg != "" {
		payload := map[string]string{"server_error": errMsg}
		if b, jerr := json.Marshal(payload); jerr == nil {
			c.Header("HX-Trigger", string(b))
		} else {
			logWarn("Failed to marshal HX-Trigger payload: %v", jerr)
		}
	}
	session := vm.Session()
	c.HTML(http.StatusOK, "game-content", gin.H{
		"session":  session,
		"playable": session.Status == api.StatusInProgress,
		"timeline": vm.Timeline(),
		"input":    vm.Input(),
		"error":    errMsg,
	})
}

// guessHandler submits a guess through the view-model.
func (app *App) guessHandler(c *gin.Context) {
	vm := app.currentGame()
	if vm == nil {
		c.Redirect(http.StatusSeeOther, RouteGame)
		return
	}

	errMsg := ""
	if err := vm.SubmitGuess(c.Request.Context(), c.PostForm("guess")); err != nil {
		errMsg = err.Error()
	}
	if c.GetHeader("HX-Request") == "true" {
		app.renderGameContent(c, vm, errMsg)
		return
	}
	c.Redirect(http.StatusSeeOther, RouteGame)
}

// hintHandler buys a supplementary hint for the latest attempt.
func (app *App) hintHandler(c *gin.Context) {
	vm := app.currentGame()
	if vm == nil {
		c.Redirect(http.StatusSeeOther, RouteGame)
		return
	}

	errMsg := ""
	if err := vm.RequestHint(c.Request.Context()); err != nil {
		errMsg = err.Error()
	}
	if c.GetHeader("HX-Request") == "true" {
		app.renderGameContent(c, vm, errMsg)
		return
	}
	c.Redirect(http.StatusSeeOther, RouteGame)
}

// rankingsHandler renders the live-ranking fragment from the poller's last
// snapshot; the page re-requests it on its own cadence.
func (app *App) rankingsHandler(c *gin.Context) {
	vm := app.currentGame()
	if vm == nil {
		c.HTML(http.StatusOK, "rankings", gin.H{})
		return
	}
	snapshot := vm.Rankings()
	c.HTML(http.StatusOK, "rankings", gin.H{
		"entries":   snapshot.Entries,
		"myRank":    snapshot.MyRank,
		"updatedAt": snapshot.UpdatedAt,
	})
}

// resultHandler renders the carried success payload.
func (app *App) resultHandler(c *gin.Context) {
	app.closeGame()
	result := app.takeResult()
	if result == nil {
		c.Redirect(http.StatusSeeOther, RouteDashboard)
		return
	}
	c.HTML(http.StatusOK, "result.html", gin.H{
		"title":  "WordTreasure - You found it!",
		"result": result,
	})
}

// leaderboardHandler renders one page of a time-windowed leaderboard.
func (app *App) leaderboardHandler(c *gin.Context) {
	app.closeGame()

	period := c.Param("period")
	validPeriods := []string{api.PeriodDaily, api.PeriodWeekly, api.PeriodMonthly, api.PeriodAllTime}
	if !lo.Contains(validPeriods, period) {
		period = api.PeriodDaily
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	rankings, err := app.API.PeriodRankings(c.Request.Context(), period, page, 20)
	if err != nil {
		logWarn("Leaderboard fetch failed: %v", err)
		c.HTML(http.StatusOK, "leaderboard.html", gin.H{
			"title":   "WordTreasure - Leaderboard",
			"period":  period,
			"periods": validPeriods,
			"error":   userError(err, ErrorGameUnavailable).Error(),
		})
		return
	}

	c.HTML(http.StatusOK, "leaderboard.html", gin.H{
		"title":    "WordTreasure - Leaderboard",
		"period":   period,
		"periods":  validPeriods,
		"rankings": rankings,
		"page":     page,
	})
}

// profileHandler renders the member page: profile, statistics, recent
// games, activity calendar and personal bests. Partial fetch failures
// degrade the page instead of killing it.
func (app *App) profileHandler(c *gin.Context) {
	app.closeGame()
	ctx := c.Request.Context()

	data := gin.H{"title": "WordTreasure - Profile"}

	if member, err := app.API.Profile(ctx); err != nil {
		logWarn("Profile fetch failed: %v", err)
		data["member"] = app.Auth.User()
	} else {
		data["member"] = member
	}
	if stats, err := app.API.Statistics(ctx); err != nil {
		logWarn("Statistics fetch failed: %v", err)
	} else {
		data["stats"] = stats
	}
	if recent, err := app.API.RecentGames(ctx, 10); err != nil {
		logWarn("Recent games fetch failed: %v", err)
	} else {
		data["recent"] = recent
	}
	if calendar, err := app.API.ActivityCalendar(ctx, time.Now().Year()); err != nil {
		logWarn("Activity calendar fetch failed: %v", err)
	} else {
		data["calendar"] = calendar
	}
	if records, err := app.API.BestRecords(ctx); err != nil {
		logWarn("Best records fetch failed: %v", err)
	} else {
		data["records"] = records
	}

	if msg := c.Query("msg"); msg != "" {
		data["notice"] = msg
	}
	c.HTML(http.StatusOK, "profile.html", data)
}

// updateProfileHandler patches the mutable profile fields.
func (app *App) updateProfileHandler(c *gin.Context) {
	nickName := c.PostForm("nickName")
	if nickName == "" {
		c.Redirect(http.StatusSeeOther, RouteProfile)
		return
	}
	if _, err := app.API.UpdateProfile(c.Request.Context(), api.ProfilePatch{NickName: nickName}); err != nil {
		logWarn("Profile update failed: %v", err)
		c.Redirect(http.StatusSeeOther, RouteProfile+"?msg="+url.QueryEscape(ErrorProfileUpdate))
		return
	}
	c.Redirect(http.StatusSeeOther, RouteProfile)
}

// changePasswordHandler replaces the account password.
func (app *App) changePasswordHandler(c *gin.Context) {
	current := c.PostForm("currentPassword")
	next := c.PostForm("newPassword")
	confirm := c.PostForm("newPasswordConfirm")

	if current == "" || next == "" {
		c.Redirect(http.StatusSeeOther, RouteProfile+"?msg="+url.QueryEscape(ErrorFieldsRequired))
		return
	}
	if next != confirm {
		c.Redirect(http.StatusSeeOther, RouteProfile+"?msg="+url.QueryEscape(ErrorPasswordMismatch))
		return
	}
	if err := app.API.ChangePassword(c.Request.Context(), current, next); err != nil {
		logWarn("Password change failed: %v", err)
		c.Redirect(http.StatusSeeOther, RouteProfile+"?msg="+url.QueryEscape(ErrorPasswordChange))
		return
	}
	c.Redirect(http.StatusSeeOther, RouteProfile)
}

// healthzHandler returns a JSON health check with gateway stats.
func (app *App) healthzHandler(c *gin.Context) {
	uptime := time.Since(app.StartTime)
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"env":           map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"authenticated": app.Auth.IsAuthenticated(),
		"game_open":     app.currentGame() != nil,
		"uptime":        formatUptime(uptime),
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}
