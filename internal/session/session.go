// Package session keeps the client-side sign-in state of an operator and
// watches their own membership row, signing them out when it is deactivated.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/service"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/posclient"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

type State int

const (
	StateUninitialized State = iota
	StateUnauthenticated
	// StateAuthenticated is a signed-in user without a usable workspace.
	StateAuthenticated
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated-no-workspace"
	case StateReady:
		return "authenticated-with-workspace"
	}
	return "uninitialized"
}

// Backend is the part of the API the session needs; *posclient.Client
// implements it.
type Backend interface {
	Login(ctx context.Context, email, password string) (*service.LoginResponse, error)
	Session(ctx context.Context) (*model.UserResponse, error)
	Membership(ctx context.Context) (*posclient.Membership, error)
	Logout(ctx context.Context) error
	Events(ctx context.Context) (<-chan ws.Event, error)
}

// Snapshot is a copy of the session at one point in time.
type Snapshot struct {
	State       State
	User        *model.UserResponse
	Member      *model.WorkspaceMember
	RoleLabel   string
	Permissions []string
}

// Manager owns the session state machine:
//
//	uninitialized → unauthenticated ⇄ authenticated → ready
//
// It is built once by the composition root, started with Start and stopped
// with Stop.
type Manager struct {
	backend  Backend
	onChange func(Snapshot)

	mu   sync.RWMutex
	snap Snapshot

	// userID is read by the watcher without taking mu.
	userID   atomic.Pointer[uuid.UUID]
	kicked   atomic.Bool
	inflight singleflight.Group

	watchOnce sync.Once
	ready     chan struct{}
	cancel    context.CancelFunc
	done      chan struct{}

	retryMin time.Duration
	retryMax time.Duration
}

type Option func(*Manager)

// WithOnChange registers fn to receive every state transition.
func WithOnChange(fn func(Snapshot)) Option {
	return func(m *Manager) { m.onChange = fn }
}

// WithRetry bounds the delay between realtime resubscription attempts. The
// delay doubles from min up to max and resets once events flow again.
func WithRetry(lo, hi time.Duration) Option {
	return func(m *Manager) { m.retryMin, m.retryMax = lo, hi }
}

func New(backend Backend, opts ...Option) *Manager {
	m := &Manager{
		backend:  backend,
		ready:    make(chan struct{}, 1),
		done:     make(chan struct{}),
		retryMin: time.Second,
		retryMax: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

func (m *Manager) State() State {
	return m.Snapshot().State
}

// Start resumes a stored session, resolves the workspace and starts the
// membership watcher. The watcher is started once per Manager.
func (m *Manager) Start(ctx context.Context) error {
	m.watchOnce.Do(func() {
		wctx, cancel := context.WithCancel(ctx)
		m.cancel = cancel
		go m.watch(wctx)
	})

	user, err := m.backend.Session(ctx)
	if err != nil {
		if !posclient.IsUnauthorized(err) {
			log.Warn().Err(err).Msg("session: resume failed")
		}
		m.signedOut()
		return nil
	}
	m.signedIn(user)
	return m.LoadWorkspace(ctx)
}

// Stop ends the membership watcher and waits for it.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	res, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return err
	}
	m.signedIn(&res.User)
	return m.LoadWorkspace(ctx)
}

// SignOut revokes the token and clears all cached identity. The local state
// is cleared even when the server call fails.
func (m *Manager) SignOut(ctx context.Context) error {
	err := m.backend.Logout(ctx)
	m.signedOut()
	return err
}

// LoadWorkspace resolves the caller's membership. Concurrent callers share
// one in-flight request. A deactivated membership clears the workspace; any
// other failure keeps the current state so a network blip does not lock the
// operator out.
func (m *Manager) LoadWorkspace(ctx context.Context) error {
	_, err, _ := m.inflight.Do("membership", func() (interface{}, error) {
		ms, err := m.backend.Membership(ctx)
		switch {
		case err == nil:
			m.update(func(s *Snapshot) {
				member := ms.Member
				s.Member = &member
				s.RoleLabel = ms.RoleLabel
				s.Permissions = ms.Permissions
				s.State = StateReady
			})
			m.poke()
			return nil, nil
		case posclient.IsForbidden(err):
			m.clearWorkspace()
			return nil, nil
		case posclient.IsUnauthorized(err):
			m.signedOut()
			return nil, err
		}
		log.Warn().Err(err).Msg("session: membership load failed, keeping current state")
		return nil, err
	})
	return err
}

func (m *Manager) signedIn(user *model.UserResponse) {
	id := user.ID
	m.userID.Store(&id)
	m.kicked.Store(false)
	m.update(func(s *Snapshot) {
		u := *user
		s.User = &u
		if s.State != StateReady {
			s.State = StateAuthenticated
		}
	})
}

func (m *Manager) signedOut() {
	m.userID.Store(nil)
	m.update(func(s *Snapshot) {
		*s = Snapshot{State: StateUnauthenticated}
	})
}

func (m *Manager) clearWorkspace() {
	m.update(func(s *Snapshot) {
		s.Member = nil
		s.RoleLabel = ""
		s.Permissions = nil
		s.State = StateAuthenticated
	})
}

func (m *Manager) update(fn func(*Snapshot)) {
	m.mu.Lock()
	before := m.snap.State
	fn(&m.snap)
	snap := m.snap
	m.mu.Unlock()

	if before != snap.State {
		log.Info().Str("from", before.String()).Str("to", snap.State.String()).Msg("session state changed")
	}
	if m.onChange != nil {
		m.onChange(snap)
	}
}

// poke tells the watcher a workspace is available to subscribe to.
func (m *Manager) poke() {
	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// watch keeps at most one realtime subscription open while the session is
// ready, and reacts to updates of the caller's own membership row.
func (m *Manager) watch(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.ready:
		}
		m.follow(ctx)
	}
}

// follow subscribes and consumes events until the session leaves the ready
// state. A failed subscribe or a dropped stream is retried with backoff.
func (m *Manager) follow(ctx context.Context) {
	delay := m.retryMin
	for ctx.Err() == nil && m.State() == StateReady {
		sub, cancel := context.WithCancel(ctx)
		events, err := m.backend.Events(sub)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", delay).Msg("session: realtime subscribe failed")
		} else {
			for e := range events {
				delay = m.retryMin
				m.handle(ctx, e)
				if m.State() != StateReady {
					cancel()
				}
			}
		}
		cancel()
		if ctx.Err() != nil || m.State() != StateReady {
			return
		}
		if err == nil {
			log.Warn().Dur("retry_in", delay).Msg("session: realtime stream closed, resubscribing")
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
		if delay *= 2; delay > m.retryMax {
			delay = m.retryMax
		}
	}
}

func (m *Manager) handle(ctx context.Context, e ws.Event) {
	if e.Type != ws.EventMembershipUpdate || e.Member == nil {
		return
	}
	current := m.userID.Load()
	if current == nil || e.Member.UserID != *current {
		return
	}

	if !e.Member.IsActive {
		if m.kicked.CompareAndSwap(false, true) {
			log.Warn().Str("user_id", current.String()).Msg("membership deactivated, signing out")
			if err := m.SignOut(ctx); err != nil && !posclient.IsUnauthorized(err) {
				log.Warn().Err(err).Msg("session: sign-out call failed")
			}
		}
		return
	}
	// role or profile may have changed
	if err := m.LoadWorkspace(ctx); err != nil {
		log.Warn().Err(err).Msg("session: reload after membership update failed")
	}
}
