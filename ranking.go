package main

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"wordtreasure/internal/api"
	"wordtreasure/internal/metrics"
)

// rankingPoller keeps the live-ranking snapshot fresh for one daily word:
// an immediate fetch on start, then a fixed-interval job until Stop. The
// in-flight guard is set before the request goes out, so a tick (or an
// out-of-band refresh) that fires mid-request is dropped, never queued.
type rankingPoller struct {
	api      *api.Client
	metrics  *metrics.Metrics
	wordID   string
	limit    int
	interval time.Duration
	apply    func(api.LiveRankings)

	mu       sync.Mutex
	inFlight bool
	sched    gocron.Scheduler
}

func newRankingPoller(client *api.Client, m *metrics.Metrics, wordID string, limit int, interval time.Duration, apply func(api.LiveRankings)) *rankingPoller {
	return &rankingPoller{
		api:      client,
		metrics:  m,
		wordID:   wordID,
		limit:    limit,
		interval: interval,
		apply:    apply,
	}
}

// Start schedules the poll job. The first run fires immediately.
func (p *rankingPoller) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(p.interval),
		gocron.NewTask(p.tick),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}
	sched.Start()
	p.mu.Lock()
	p.sched = sched
	p.mu.Unlock()
	logInfo("Live-ranking poll started for word %s every %v", p.wordID, p.interval)
	return nil
}

func (p *rankingPoller) tick() {
	p.fetch(context.Background(), true)
}

// Refresh runs one out-of-band fetch, e.g. right after a guess lands. It
// honors the same single-in-flight guarantee as the scheduled ticks.
func (p *rankingPoller) Refresh(ctx context.Context) {
	p.fetch(ctx, false)
}

func (p *rankingPoller) fetch(ctx context.Context, fromTick bool) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		if fromTick {
			p.metrics.PollSkipped()
		}
		return
	}
	p.inFlight = true
	p.mu.Unlock()

	if fromTick {
		p.metrics.PollTick()
	}

	snapshot, err := p.api.LiveRankings(ctx, p.wordID, p.limit)

	p.mu.Lock()
	p.inFlight = false
	p.mu.Unlock()

	if err != nil {
		// Stale-but-displayed beats an error banner on every blip.
		logWarn("Live-ranking fetch failed for word %s: %v", p.wordID, err)
		return
	}
	p.apply(*snapshot)
}

// Stop cancels the poll job. Safe to call more than once.
func (p *rankingPoller) Stop() {
	p.mu.Lock()
	sched := p.sched
	p.sched = nil
	p.mu.Unlock()
	if sched != nil {
		if err := sched.Shutdown(); err != nil {
			logWarn("Ranking poll shutdown: %v", err)
		}
	}
}
