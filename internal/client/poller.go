package client

import (
	"context"
	"sync"
	"time"
)

// PollState is the sync status poller's state.
type PollState int

const (
	StateInitializing PollState = iota
	StateActive
	StateInactive
	StateError
)

// String returns a human-readable state name.
func (s PollState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateInactive:
		return "inactive"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// WatcherAPI is the subset of the client the poller needs.
type WatcherAPI interface {
	WatcherStatus(ctx context.Context) (bool, error)
}

// StatusPoller checks the server's watcher status once, after a fixed
// delay from Start. A fetch failure is terminal for this instance.
type StatusPoller struct {
	api   WatcherAPI
	delay time.Duration

	mu    sync.Mutex
	state PollState
	err   error
	timer *time.Timer
}

// NewStatusPoller creates a poller with the given check delay.
func NewStatusPoller(api WatcherAPI, delay time.Duration) *StatusPoller {
	if delay <= 0 {
		delay = time.Second
	}
	return &StatusPoller{
		api:   api,
		delay: delay,
		state: StateInitializing,
	}
}

// Start schedules the deferred status check.
func (p *StatusPoller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		return
	}
	p.timer = time.AfterFunc(p.delay, func() { p.check(ctx) })
}

// Stop cancels a pending check.
func (p *StatusPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
	}
}

// State returns the current poller state.
func (p *StatusPoller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err returns the terminal error, if the poller is in StateError.
func (p *StatusPoller) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *StatusPoller) check(ctx context.Context) {
	active, err := p.api.WatcherStatus(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.state = StateError
		p.err = err
		return
	}
	if active {
		p.state = StateActive
	} else {
		p.state = StateInactive
	}
}
