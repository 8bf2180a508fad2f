package connector

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	mu       sync.Mutex
	account  string
	startErr error
	started  bool
	starts   int
	stopped  bool
}

func (f *fakeRunner) Account() string { return f.account }

func (f *fakeRunner) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	f.starts++
	return nil
}

func (f *fakeRunner) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeRunner) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := StateDisconnected
	if f.started && !f.stopped {
		state = StatePolling
	}
	return Status{Account: f.account, State: state}
}

func TestManagerAddAndRemove(t *testing.T) {
	t.Parallel()

	m := NewManager()
	r := &fakeRunner{account: "alice@example.com"}

	require.NoError(t, m.Add(context.Background(), r))
	assert.True(t, r.started)

	assert.True(t, m.Remove("alice@example.com"))
	assert.True(t, r.stopped)

	assert.False(t, m.Remove("alice@example.com"))
}

func TestManagerRejectsDuplicateAccount(t *testing.T) {
	t.Parallel()

	m := NewManager()
	require.NoError(t, m.Add(context.Background(), &fakeRunner{account: "alice@example.com"}))

	err := m.Add(context.Background(), &fakeRunner{account: "alice@example.com"})
	assert.ErrorIs(t, err, ErrAlreadyConnected)
}

func TestManagerFailedStartLeavesNoRunner(t *testing.T) {
	t.Parallel()

	m := NewManager()
	boom := errors.New("token expired")
	err := m.Add(context.Background(), &fakeRunner{account: "bob@example.com", startErr: boom})
	require.ErrorIs(t, err, boom)

	assert.Empty(t, m.Statuses())
	assert.False(t, m.Remove("bob@example.com"))
}

func TestManagerConcurrentAddSameAccount(t *testing.T) {
	t.Parallel()

	m := NewManager()
	runners := []*fakeRunner{
		{account: "alice@example.com"},
		{account: "alice@example.com"},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(runners))
	for i, r := range runners {
		wg.Add(1)
		go func(i int, r *fakeRunner) {
			defer wg.Done()
			errs[i] = m.Add(context.Background(), r)
		}(i, r)
	}
	wg.Wait()

	started := runners[0].starts + runners[1].starts
	assert.Equal(t, 1, started, "exactly one runner may start")

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyConnected):
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.Len(t, m.Statuses(), 1)
}

func TestManagerStatusesSortedByAccount(t *testing.T) {
	t.Parallel()

	m := NewManager()
	require.NoError(t, m.Add(context.Background(), &fakeRunner{account: "zoe@example.com"}))
	require.NoError(t, m.Add(context.Background(), &fakeRunner{account: "amy@example.com"}))

	statuses := m.Statuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "amy@example.com", statuses[0].Account)
	assert.Equal(t, "zoe@example.com", statuses[1].Account)
	assert.Equal(t, StatePolling, statuses[0].State)
}

func TestManagerStopAll(t *testing.T) {
	t.Parallel()

	m := NewManager()
	a := &fakeRunner{account: "a@example.com"}
	b := &fakeRunner{account: "b@example.com"}
	require.NoError(t, m.Add(context.Background(), a))
	require.NoError(t, m.Add(context.Background(), b))

	m.StopAll()

	assert.True(t, a.stopped)
	assert.True(t, b.stopped)
	assert.Empty(t, m.Statuses())
}
