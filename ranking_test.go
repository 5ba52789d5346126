package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"wordtreasure/internal/api"
)

func TestPollerAppliesSnapshotWhole(t *testing.T) {
	client := testAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("dailyWordId"); got != "w-1" {
			t.Errorf("unexpected dailyWordId: %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("unexpected limit: %q", got)
		}
		json.NewEncoder(w).Encode(api.LiveRankings{
			Rankings: []api.RankingEntry{
				{Rank: 1, Nickname: "alice", AttemptCount: 4},
				{Rank: 2, Nickname: "bob", AttemptCount: 7},
			},
			MyRank: &api.RankingEntry{Rank: 2, Nickname: "bob", AttemptCount: 7},
		})
	}))

	var mu sync.Mutex
	var got api.LiveRankings
	p := newRankingPoller(client, nil, "w-1", 10, time.Hour, func(lr api.LiveRankings) {
		mu.Lock()
		got = lr
		mu.Unlock()
	})

	p.Refresh(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if len(got.Rankings) != 2 || got.MyRank == nil || got.MyRank.Rank != 2 {
		t.Errorf("snapshot not applied: %+v", got)
	}
	if got.Rankings[0].Nickname != "alice" {
		t.Errorf("entry order not preserved: %+v", got.Rankings)
	}
}

func TestPollerSkipsWhileInFlight(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	client := testAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		json.NewEncoder(w).Encode(api.LiveRankings{})
	}))

	p := newRankingPoller(client, nil, "w-1", 10, time.Hour, func(api.LiveRankings) {})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Refresh(context.Background())
	}()
	for calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	// A burst of ticks while the first request is still in flight must be
	// dropped, not queued.
	for i := 0; i < 5; i++ {
		p.Refresh(context.Background())
	}
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("expected exactly one in-flight request, got %d", calls.Load())
	}
}

func TestPollerKeepsStaleSnapshotOnFailure(t *testing.T) {
	var fail atomic.Bool
	client := testAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(api.LiveRankings{
			Rankings: []api.RankingEntry{{Rank: 1, Nickname: "alice"}},
		})
	}))

	var mu sync.Mutex
	applied := 0
	p := newRankingPoller(client, nil, "w-1", 10, time.Hour, func(api.LiveRankings) {
		mu.Lock()
		applied++
		mu.Unlock()
	})

	p.Refresh(context.Background())
	fail.Store(true)
	p.Refresh(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if applied != 1 {
		t.Errorf("failed poll must not replace the snapshot, applied %d times", applied)
	}
}

func TestPollerStartPollsImmediately(t *testing.T) {
	polled := make(chan struct{}, 1)
	client := testAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case polled <- struct{}{}:
		default:
		}
		json.NewEncoder(w).Encode(api.LiveRankings{})
	}))

	p := newRankingPoller(client, nil, "w-1", 10, time.Hour, func(api.LiveRankings) {})
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(p.Stop)

	select {
	case <-polled:
	case <-time.After(2 * time.Second):
		t.Fatal("poller never issued its first fetch")
	}
}
