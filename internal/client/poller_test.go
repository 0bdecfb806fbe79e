package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeWatcherAPI struct {
	active bool
	err    error
}

func (f *fakeWatcherAPI) WatcherStatus(ctx context.Context) (bool, error) {
	return f.active, f.err
}

func TestStatusPoller_Active(t *testing.T) {
	p := NewStatusPoller(&fakeWatcherAPI{active: true}, 10*time.Millisecond)
	require.Equal(t, StateInitializing, p.State())

	p.Start(context.Background())
	require.Eventually(t, func() bool {
		return p.State() == StateActive
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, p.Err())
}

func TestStatusPoller_Inactive(t *testing.T) {
	p := NewStatusPoller(&fakeWatcherAPI{active: false}, 10*time.Millisecond)
	p.Start(context.Background())

	require.Eventually(t, func() bool {
		return p.State() == StateInactive
	}, 2*time.Second, 5*time.Millisecond)
}

func TestStatusPoller_ErrorIsTerminal(t *testing.T) {
	boom := errors.New("connection refused")
	p := NewStatusPoller(&fakeWatcherAPI{err: boom}, 10*time.Millisecond)
	p.Start(context.Background())

	require.Eventually(t, func() bool {
		return p.State() == StateError
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, boom, p.Err())

	// Start is a no-op once the check has been scheduled.
	p.Start(context.Background())
	require.Equal(t, StateError, p.State())
}

func TestStatusPoller_Stop(t *testing.T) {
	p := NewStatusPoller(&fakeWatcherAPI{active: true}, 30*time.Millisecond)
	p.Start(context.Background())
	p.Stop()

	time.Sleep(80 * time.Millisecond)
	require.Equal(t, StateInitializing, p.State())
}

func TestPollState_String(t *testing.T) {
	require.Equal(t, "initializing", StateInitializing.String())
	require.Equal(t, "active", StateActive.String())
	require.Equal(t, "inactive", StateInactive.String())
	require.Equal(t, "error", StateError.String())
}
