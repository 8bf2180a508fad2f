// Package connector manages the long-lived background pollers that feed
// external sources into the index.
package connector

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var ErrAlreadyConnected = errors.New("account already connected")

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StatePolling      State = "polling"
)

type Status struct {
	Account   string `json:"account"`
	State     State  `json:"state"`
	LastError string `json:"last_error,omitempty"`
}

// Runner is one account's background poller.
type Runner interface {
	Account() string
	Start(ctx context.Context) error
	Stop()
	Status() Status
}

// Manager owns the account to runner mapping. Connect/disconnect endpoints
// mutate it while status endpoints read it, so every access takes the lock.
type Manager struct {
	mu      sync.Mutex
	runners map[string]Runner
}

func NewManager() *Manager {
	return &Manager{runners: make(map[string]Runner)}
}

// Add registers and starts a runner. The account key is reserved before
// the start, so concurrent Adds for one account cannot both start pollers;
// a failed start rolls the reservation back.
func (m *Manager) Add(ctx context.Context, r Runner) error {
	m.mu.Lock()
	if _, exists := m.runners[r.Account()]; exists {
		m.mu.Unlock()
		return ErrAlreadyConnected
	}
	m.runners[r.Account()] = r
	m.mu.Unlock()

	if err := r.Start(ctx); err != nil {
		m.mu.Lock()
		if m.runners[r.Account()] == r {
			delete(m.runners, r.Account())
		}
		m.mu.Unlock()
		return err
	}
	return nil
}

// Remove stops and forgets an account's runner. Returns false when the
// account was not connected.
func (m *Manager) Remove(account string) bool {
	m.mu.Lock()
	r, ok := m.runners[account]
	delete(m.runners, account)
	m.mu.Unlock()

	if !ok {
		return false
	}
	r.Stop()
	return true
}

func (m *Manager) Statuses() []Status {
	m.mu.Lock()
	statuses := make([]Status, 0, len(m.runners))
	for _, r := range m.runners {
		statuses = append(statuses, r.Status())
	}
	m.mu.Unlock()

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Account < statuses[j].Account })
	return statuses
}

// StopAll shuts every runner down, letting each flush its durable state.
func (m *Manager) StopAll() {
	m.mu.Lock()
	runners := make([]Runner, 0, len(m.runners))
	for _, r := range m.runners {
		runners = append(runners, r)
	}
	m.runners = make(map[string]Runner)
	m.mu.Unlock()

	for _, r := range runners {
		r.Stop()
	}
}
