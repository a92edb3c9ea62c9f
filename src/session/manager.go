// Package session is the core of the session shell: it maps session ids to
// conversations, serializes runs per session, and owns shutdown of the
// shared clients.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/elee1766/moviefinder/src/executor"
	"github.com/elee1766/moviefinder/src/memory"
)

// DefaultID is used when the caller supplies no session id.
const DefaultID = "default"

var (
	// ErrEmptyQuery is returned for blank queries.
	ErrEmptyQuery = errors.New("query must not be empty")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session manager is closed")
)

// Runner is the agent loop as seen by the manager.
type Runner interface {
	Run(ctx context.Context, conv *memory.Conversation, utterance string, cb *executor.Callbacks) *executor.Result
}

// Tracker is notified as sessions come and go.
type Tracker interface {
	SessionOpened()
	SessionClosed()
}

// Config configures a Manager.
type Config struct {
	Runner Runner
	Store  memory.Store
	// Closers are released by Close, e.g. provider and engine clients.
	Closers []io.Closer
	Tracker Tracker
	Logger  *slog.Logger
}

type entry struct {
	conv *memory.Conversation
	// lock is a one-slot semaphore so waiting can honor ctx.
	lock chan struct{}
}

// Manager dispatches queries to per-session conversations.
type Manager struct {
	runner  Runner
	store   memory.Store
	closers []io.Closer
	tracker Tracker
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*entry
	closed   bool
	wg       sync.WaitGroup
}

// NewManager creates a Manager.
func NewManager(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Store == nil {
		cfg.Store = memory.NewInMemoryStore()
	}
	return &Manager{
		runner:   cfg.Runner,
		store:    cfg.Store,
		closers:  cfg.Closers,
		tracker:  cfg.Tracker,
		logger:   cfg.Logger.With("component", "session_manager"),
		sessions: make(map[string]*entry),
	}
}

// NormalizeID trims id and substitutes DefaultID for blank ids.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultID
	}
	return id
}

// Handle runs query for sessionID and returns the answer text. Runs on the
// same session are serialized; runs on different sessions proceed in
// parallel. The returned error is non-nil only for blank queries, a closed
// manager, or when ctx ends before or during the run.
func (m *Manager) Handle(ctx context.Context, sessionID, query string) (string, error) {
	res, err := m.HandleWith(ctx, sessionID, query, nil)
	if err != nil {
		return "", err
	}
	return res.Response, nil
}

// HandleWith is Handle with callbacks and the full run result.
func (m *Manager) HandleWith(ctx context.Context, sessionID, query string, cb *executor.Callbacks) (*executor.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	sessionID = NormalizeID(sessionID)

	e, err := m.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer m.release(e)

	res := m.runner.Run(ctx, e.conv, query, cb)
	if res.Outcome == executor.OutcomeCanceled {
		if err := ctx.Err(); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Reset clears the session's memory and forgets the session. Resetting an
// unknown or already reset session is a no-op.
func (m *Manager) Reset(ctx context.Context, sessionID string) error {
	sessionID = NormalizeID(sessionID)

	e, err := m.acquire(ctx, sessionID)
	if err != nil {
		return err
	}
	defer m.release(e)

	if err := e.conv.Clear(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	if cur, ok := m.sessions[sessionID]; ok && cur == e {
		delete(m.sessions, sessionID)
		if m.tracker != nil {
			m.tracker.SessionClosed()
		}
	}
	m.mu.Unlock()

	m.logger.Info("session reset", "session_id", sessionID)
	return nil
}

// History returns the remembered turns of sessionID.
func (m *Manager) History(ctx context.Context, sessionID string) ([]memory.Turn, error) {
	return m.store.Snapshot(ctx, NormalizeID(sessionID))
}

// Sessions returns the number of sessions currently held.
func (m *Manager) Sessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close waits for in-flight runs, then releases the shared clients. Further
// calls to Handle fail with ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.wg.Wait()

	var result *multierror.Error
	for _, c := range m.closers {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	m.logger.Info("session manager closed")
	return result.ErrorOrNil()
}

func (m *Manager) acquire(ctx context.Context, sessionID string) (*entry, error) {
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return nil, ErrClosed
		}
		e, ok := m.sessions[sessionID]
		if !ok {
			e = &entry{
				conv: memory.NewConversation(m.store, sessionID),
				lock: make(chan struct{}, 1),
			}
			m.sessions[sessionID] = e
			if m.tracker != nil {
				m.tracker.SessionOpened()
			}
			m.logger.Debug("session created", "session_id", sessionID)
		}
		m.wg.Add(1)
		m.mu.Unlock()

		select {
		case e.lock <- struct{}{}:
		case <-ctx.Done():
			m.wg.Done()
			return nil, ctx.Err()
		}

		// a reset may have retired this entry while we waited
		m.mu.Lock()
		cur := m.sessions[sessionID]
		m.mu.Unlock()
		if cur == e {
			return e, nil
		}
		<-e.lock
		m.wg.Done()
	}
}

func (m *Manager) release(e *entry) {
	<-e.lock
	m.wg.Done()
}
