package main

import (
	"context"
	"sync"

	"wordtreasure/internal/api"
)

// AuthState is the process-wide holder of the authenticated identity. It is
// the single writer for auth state: every mutation goes through Probe,
// Login, Signup, Logout or MarkUnauthenticated, never direct assignment.
type AuthState struct {
	api *api.Client

	mu      sync.Mutex
	user    *api.Member
	loading bool
	probing bool
}

// NewAuthState returns a holder in the loading state; the first Probe
// resolves it to authenticated-or-not.
func NewAuthState(client *api.Client) *AuthState {
	return &AuthState{api: client, loading: true}
}

// Probe resolves the current identity with one status call. A cached
// identity skips the network entirely and just clears loading; a probe
// already in flight makes this call a no-op.
func (a *AuthState) Probe(ctx context.Context) {
	a.mu.Lock()
	if a.user != nil {
		a.loading = false
		a.mu.Unlock()
		return
	}
	if a.probing {
		a.mu.Unlock()
		return
	}
	a.probing = true
	a.mu.Unlock()

	m, err := a.api.Me(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.probing = false
	a.loading = false
	if err != nil {
		logInfo("Auth probe resolved unauthenticated: %v", err)
		return
	}
	a.user = m
	logInfo("Auth probe resolved member %s (%s)", m.ID, m.NickName)
}

// Login exchanges credentials for a session. The identity and the
// authenticated flag flip together under one lock, so consumers never see
// an intermediate state.
func (a *AuthState) Login(ctx context.Context, email, password string) (*api.Member, error) {
	m, err := a.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.user = m
	a.loading = false
	a.mu.Unlock()
	return m, nil
}

// Signup registers a new member and adopts the returned identity like Login.
func (a *AuthState) Signup(ctx context.Context, email, nickName, password string) (*api.Member, error) {
	m, err := a.api.Signup(ctx, email, nickName, password)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.user = m
	a.loading = false
	a.mu.Unlock()
	return m, nil
}

// Logout clears the local identity even when the server-side invalidation
// fails; the user asked to leave and must not stay stuck authenticated.
func (a *AuthState) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	if err != nil {
		logWarn("Server logout failed, clearing local identity anyway: %v", err)
	}
	a.mu.Lock()
	a.user = nil
	a.loading = false
	a.mu.Unlock()
	return err
}

// MarkUnauthenticated drops the cached identity. Wired to the API client's
// 401 hook so an expired backend session propagates immediately.
func (a *AuthState) MarkUnauthenticated() {
	a.mu.Lock()
	a.user = nil
	a.loading = false
	a.mu.Unlock()
}

// User returns the cached identity, or nil.
func (a *AuthState) User() *api.Member {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

// IsAuthenticated reports whether an identity is cached.
func (a *AuthState) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user != nil
}

// Loading reports whether the initial probe is still unresolved.
func (a *AuthState) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}
