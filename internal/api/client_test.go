package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, 5*time.Second, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestMeDecodesIdentity(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/me" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Member{ID: "m-1", Email: "a@b.c", NickName: "treasure"})
	}))

	m, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if m.ID != "m-1" || m.NickName != "treasure" {
		t.Errorf("unexpected member: %+v", m)
	}
}

func TestErrorMappingUsesServerMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "already guessed that"})
	}))

	_, err := c.SubmitAttempt(context.Background(), "s-1", "treasure")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "already guessed that" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
}

func TestUnauthorizedHookFiresOn401(t *testing.T) {
	fired := 0
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), WithUnauthorizedHook(func() { fired++ }))

	if _, err := c.Me(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if fired != 1 {
		t.Errorf("expected hook to fire once, fired %d times", fired)
	}

	// Non-401 errors must not fire the hook.
	c2, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), WithUnauthorizedHook(func() { fired++ }))
	if _, err := c2.Me(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if fired != 1 {
		t.Errorf("hook fired on non-401: %d", fired)
	}
}

func TestCookiePersistsAcrossRequests(t *testing.T) {
	var sawCookie string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "WTSESSION", Value: "abc123", Path: "/"})
			json.NewEncoder(w).Encode(Member{ID: "m-1"})
		case "/api/auth/me":
			if ck, err := r.Cookie("WTSESSION"); err == nil {
				sawCookie = ck.Value
			}
			json.NewEncoder(w).Encode(Member{ID: "m-1"})
		}
	}))

	if _, err := c.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := c.Me(context.Background()); err != nil {
		t.Fatalf("Me: %v", err)
	}
	if sawCookie != "abc123" {
		t.Errorf("session cookie not carried, got %q", sawCookie)
	}
}

func TestCheckNicknameSendsQuery(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("nickName"); got != "treasure hunter" {
			t.Errorf("unexpected nickName query: %q", got)
		}
		json.NewEncoder(w).Encode(DuplicateCheck{IsDuplicate: true, Message: "taken"})
	}))

	d, err := c.CheckNickname(context.Background(), "treasure hunter")
	if err != nil {
		t.Fatalf("CheckNickname: %v", err)
	}
	if !d.IsDuplicate || d.Message != "taken" {
		t.Errorf("unexpected check result: %+v", d)
	}
}

func TestLiveRankingsQueryParams(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("dailyWordId") != "w-9" || q.Get("limit") != "10" {
			t.Errorf("unexpected query: %v", q)
		}
		json.NewEncoder(w).Encode(LiveRankings{
			Rankings: []RankingEntry{{MemberID: "m-1", Rank: 1}},
		})
	}))

	lr, err := c.LiveRankings(context.Background(), "w-9", 10)
	if err != nil {
		t.Fatalf("LiveRankings: %v", err)
	}
	if len(lr.Rankings) != 1 || lr.Rankings[0].Rank != 1 {
		t.Errorf("unexpected snapshot: %+v", lr)
	}
}

func TestSaveAndLoadCookies(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "cookies.json")

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "WTSESSION", Value: "persist-me", Path: "/"})
		json.NewEncoder(w).Encode(Member{ID: "m-1"})
	}))
	if _, err := c.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := c.SaveCookies(jarPath); err != nil {
		t.Fatalf("SaveCookies: %v", err)
	}

	var got string
	c2, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("WTSESSION"); err == nil {
			got = ck.Value
		}
		json.NewEncoder(w).Encode(Member{ID: "m-1"})
	}))
	// Point the restored cookies at the second test server's host.
	if err := c2.LoadCookies(jarPath, time.Hour); err != nil {
		t.Fatalf("LoadCookies: %v", err)
	}
	if _, err := c2.Me(context.Background()); err != nil {
		t.Fatalf("Me: %v", err)
	}
	if got != "persist-me" {
		t.Errorf("restored cookie not sent, got %q", got)
	}
}

func TestLoadCookiesDropsStaleFile(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "cookies.json")
	if err := os.WriteFile(jarPath, []byte(`[{"name":"WTSESSION","value":"old"}]`), 0600); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(jarPath, old, old); err != nil {
		t.Fatal(err)
	}

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	if err := c.LoadCookies(jarPath, 24*time.Hour); err != nil {
		t.Fatalf("LoadCookies: %v", err)
	}
	if _, err := os.Stat(jarPath); !os.IsNotExist(err) {
		t.Error("stale cookie file should have been removed")
	}
}

func TestLoadCookiesDropsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "cookies.json")
	if err := os.WriteFile(jarPath, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	if err := c.LoadCookies(jarPath, time.Hour); err != nil {
		t.Fatalf("LoadCookies: %v", err)
	}
	if _, err := os.Stat(jarPath); !os.IsNotExist(err) {
		t.Error("corrupt cookie file should have been removed")
	}
}
