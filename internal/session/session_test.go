package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/service"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/posclient"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Backend = (*posclient.Client)(nil)

type fakeBackend struct {
	mu         sync.Mutex
	user       *model.UserResponse
	sessionErr error
	member     model.WorkspaceMember
	memberErr  error
	gate       chan struct{}

	membershipCalls int32
	logoutCalls     int32
	subscribeCalls  int32
	events          chan ws.Event

	// failing and dropped streams handed out before a working one
	subscribeFailures int32
	droppedStreams    int32
}

func newFakeBackend() *fakeBackend {
	user := &model.UserResponse{ID: uuid.New(), Email: "caja@example.com"}
	return &fakeBackend{
		user:   user,
		member: model.WorkspaceMember{UserID: user.ID, WorkspaceID: uuid.New(), Role: model.RoleCashier, IsActive: true},
		events: make(chan ws.Event, 8),
	}
}

func (f *fakeBackend) Login(_ context.Context, email, _ string) (*service.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionErr = nil
	return &service.LoginResponse{Token: "tok", User: *f.user}, nil
}

func (f *fakeBackend) Session(context.Context) (*model.UserResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	u := *f.user
	return &u, nil
}

func (f *fakeBackend) Membership(context.Context) (*posclient.Membership, error) {
	atomic.AddInt32(&f.membershipCalls, 1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.memberErr != nil {
		return nil, f.memberErr
	}
	return &posclient.Membership{Member: f.member, RoleLabel: "Cajero", Permissions: []string{"sales:create"}}, nil
}

func (f *fakeBackend) Logout(context.Context) error {
	atomic.AddInt32(&f.logoutCalls, 1)
	return nil
}

func (f *fakeBackend) Events(ctx context.Context) (<-chan ws.Event, error) {
	atomic.AddInt32(&f.subscribeCalls, 1)
	if atomic.AddInt32(&f.subscribeFailures, -1) >= 0 {
		return nil, errors.New("dial tcp: connection refused")
	}
	out := make(chan ws.Event)
	if atomic.AddInt32(&f.droppedStreams, -1) >= 0 {
		close(out)
		return out, nil
	}
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-f.events:
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (f *fakeBackend) setMember(fn func(*model.WorkspaceMember)) {
	f.mu.Lock()
	fn(&f.member)
	f.mu.Unlock()
}

func start(t *testing.T, f *fakeBackend) *Manager {
	t.Helper()
	m := New(f)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)
	return m
}

func TestStart_ResumesIntoReady(t *testing.T) {
	f := newFakeBackend()
	var seen []State
	var mu sync.Mutex
	m := New(f, WithOnChange(func(s Snapshot) {
		mu.Lock()
		seen = append(seen, s.State)
		mu.Unlock()
	}))
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	snap := m.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, model.RoleCashier, snap.Member.Role)
	assert.Equal(t, "Cajero", snap.RoleLabel)

	mu.Lock()
	assert.Equal(t, []State{StateAuthenticated, StateReady}, seen)
	mu.Unlock()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&f.subscribeCalls) == 1 }, time.Second, 10*time.Millisecond)
}

func TestStart_RevokedTokenIsUnauthenticated(t *testing.T) {
	f := newFakeBackend()
	f.sessionErr = &posclient.APIError{Status: 401, Message: "Session expired"}
	m := start(t, f)

	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Zero(t, atomic.LoadInt32(&f.membershipCalls))

	require.NoError(t, m.SignIn(context.Background(), "caja@example.com", "caja123"))
	assert.Equal(t, StateReady, m.State())
}

func TestDeactivationSignsOut(t *testing.T) {
	f := newFakeBackend()
	m := start(t, f)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&f.subscribeCalls) == 1 }, time.Second, 10*time.Millisecond)

	// someone else's row is ignored
	other := f.member
	other.UserID = uuid.New()
	other.IsActive = false
	f.events <- ws.Event{Type: ws.EventMembershipUpdate, Member: &other}

	own := f.member
	own.IsActive = false
	f.events <- ws.Event{Type: ws.EventMembershipUpdate, Member: &own}
	f.events <- ws.Event{Type: ws.EventMembershipUpdate, Member: &own}

	assert.Eventually(t, func() bool { return m.State() == StateUnauthenticated }, time.Second, 10*time.Millisecond)
	snap := m.Snapshot()
	assert.Nil(t, snap.User)
	assert.Nil(t, snap.Member)
	assert.Never(t, func() bool { return atomic.LoadInt32(&f.logoutCalls) > 1 }, 50*time.Millisecond, 5*time.Millisecond, "sign-out happens once")
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.logoutCalls))
}

func TestRoleChangeReloadsWithoutSignOut(t *testing.T) {
	f := newFakeBackend()
	m := start(t, f)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&f.subscribeCalls) == 1 }, time.Second, 10*time.Millisecond)

	f.setMember(func(wm *model.WorkspaceMember) { wm.Role = model.RoleManager })
	updated := f.member
	f.events <- ws.Event{Type: ws.EventMembershipUpdate, Member: &updated}

	assert.Eventually(t, func() bool {
		s := m.Snapshot()
		return s.Member != nil && s.Member.Role == model.RoleManager
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, StateReady, m.State())
	assert.Zero(t, atomic.LoadInt32(&f.logoutCalls))
}

func TestLoadWorkspace_FailureKeepsState(t *testing.T) {
	f := newFakeBackend()
	m := start(t, f)
	before := m.Snapshot()

	f.mu.Lock()
	f.memberErr = errors.New("connection reset")
	f.mu.Unlock()

	assert.Error(t, m.LoadWorkspace(context.Background()))
	assert.Equal(t, before.State, m.State())
	assert.Equal(t, before.Member.ID, m.Snapshot().Member.ID)
}

func TestLoadWorkspace_InactiveClearsWorkspace(t *testing.T) {
	f := newFakeBackend()
	f.memberErr = &posclient.APIError{Status: 403, Message: "Your account has been deactivated"}
	m := start(t, f)

	snap := m.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.NotNil(t, snap.User)
	assert.Nil(t, snap.Member)
}

func TestLoadWorkspace_ConcurrentCallersShareOneRequest(t *testing.T) {
	f := newFakeBackend()
	f.sessionErr = &posclient.APIError{Status: 401}
	m := start(t, f)
	require.NoError(t, m.SignIn(context.Background(), "caja@example.com", "x"))
	atomic.StoreInt32(&f.membershipCalls, 0)

	f.gate = make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.LoadWorkspace(context.Background()))
		}()
	}
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&f.membershipCalls) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(f.gate)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&f.membershipCalls))
}

func TestWatcherResubscribesAfterDroppedStream(t *testing.T) {
	f := newFakeBackend()
	f.subscribeFailures = 1
	f.droppedStreams = 1
	m := New(f, WithRetry(5*time.Millisecond, 20*time.Millisecond))
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	// refused, dropped, then a live stream
	require.Eventually(t, func() bool { return atomic.LoadInt32(&f.subscribeCalls) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, StateReady, m.State())

	own := f.member
	own.IsActive = false
	f.events <- ws.Event{Type: ws.EventMembershipUpdate, Member: &own}

	assert.Eventually(t, func() bool { return m.State() == StateUnauthenticated }, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.logoutCalls))
	assert.EqualValues(t, 3, atomic.LoadInt32(&f.subscribeCalls), "no resubscribe once signed out")
}
