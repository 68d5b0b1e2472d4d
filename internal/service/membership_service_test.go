package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUser(email string) *model.User {
	u := &model.User{Email: email, FullName: "Ana"}
	u.ID = uuid.New()
	return u
}

func TestResolve_ProvisionsWorkspaceForNewUser(t *testing.T) {
	members, workspaces := &fakeMemberRepo{}, &fakeWorkspaceRepo{}
	svc := NewMembershipService(members, workspaces, "")
	user := newUser("ana@example.com")

	m, err := svc.Resolve(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, m.Role)
	assert.True(t, m.IsActive)
	assert.Equal(t, "ana@example.com", m.Email)

	require.Len(t, workspaces.workspaces, 1)
	assert.Equal(t, model.DefaultWorkspaceName, workspaces.workspaces[0].Name)
	assert.Equal(t, user.ID, workspaces.workspaces[0].OwnerID)

	again, err := svc.Resolve(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, m.ID, again.ID)
	assert.Len(t, workspaces.workspaces, 1, "provisioned exactly once")
}

func TestResolve_ExistingMembershipWins(t *testing.T) {
	members, workspaces := &fakeMemberRepo{}, &fakeWorkspaceRepo{}
	user := newUser("cajero@example.com")
	wsID := uuid.New()
	require.NoError(t, members.Create(context.Background(), &model.WorkspaceMember{
		WorkspaceID: wsID, UserID: user.ID, Role: model.RoleCashier, IsActive: true,
	}))

	m, err := NewMembershipService(members, workspaces, "").Resolve(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, model.RoleCashier, m.Role)
	assert.Empty(t, workspaces.workspaces)
}

func TestResolve_InactiveBlocksWithoutProvisioning(t *testing.T) {
	members, workspaces := &fakeMemberRepo{}, &fakeWorkspaceRepo{}
	user := newUser("baja@example.com")
	require.NoError(t, members.Create(context.Background(), &model.WorkspaceMember{
		WorkspaceID: uuid.New(), UserID: user.ID, Role: model.RoleViewer, IsActive: false,
	}))

	_, err := NewMembershipService(members, workspaces, "").Resolve(context.Background(), user)
	assert.ErrorIs(t, err, ErrMembershipInactive)
	assert.Empty(t, workspaces.workspaces)
}

func TestResolve_ReusesOwnedWorkspace(t *testing.T) {
	members, workspaces := &fakeMemberRepo{}, &fakeWorkspaceRepo{}
	user := newUser("dueño@example.com")
	owned := &model.Workspace{Name: "Tiendita", OwnerID: user.ID}
	require.NoError(t, workspaces.Create(context.Background(), owned))

	m, err := NewMembershipService(members, workspaces, "").Resolve(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, owned.ID, m.WorkspaceID)
	assert.Len(t, workspaces.workspaces, 1)
}

func TestResolve_InsertFailureRefetches(t *testing.T) {
	members, workspaces := &fakeMemberRepo{}, &fakeWorkspaceRepo{}
	user := newUser("race@example.com")
	svc := NewMembershipService(&racingMemberRepo{fakeMemberRepo: members}, workspaces, "")

	m, err := svc.Resolve(context.Background(), user)
	require.NoError(t, err, "a failed insert falls back to re-fetching the row")
	assert.Equal(t, model.RoleAdmin, m.Role)
	assert.Len(t, members.members, 1)
}

func TestResolve_InsertFailureWithoutRowErrors(t *testing.T) {
	members, workspaces := &fakeMemberRepo{createErr: errors.New("connection reset")}, &fakeWorkspaceRepo{}
	_, err := NewMembershipService(members, workspaces, "").Resolve(context.Background(), newUser("x@example.com"))
	assert.Error(t, err)
}

// racingMemberRepo behaves as if a concurrent request inserted the
// membership between our re-check and our insert.
type racingMemberRepo struct {
	*fakeMemberRepo
	rechecks int
}

func (r *racingMemberRepo) FindFirstByUser(context.Context, uuid.UUID) (*model.WorkspaceMember, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *racingMemberRepo) FindByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*model.WorkspaceMember, error) {
	r.rechecks++
	if r.rechecks == 1 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.fakeMemberRepo.FindByWorkspaceAndUser(ctx, workspaceID, userID)
}

func (r *racingMemberRepo) Create(ctx context.Context, m *model.WorkspaceMember) error {
	if err := r.fakeMemberRepo.Create(ctx, m); err != nil {
		return err
	}
	return gorm.ErrDuplicatedKey
}

func TestResolve_ConcurrentCallersShareOneRoundTrip(t *testing.T) {
	members := &fakeMemberRepo{gate: make(chan struct{})}
	workspaces := &fakeWorkspaceRepo{}
	svc := NewMembershipService(members, workspaces, "")
	user := newUser("rapido@example.com")

	var wg sync.WaitGroup
	results := make([]*model.WorkspaceMember, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := svc.Resolve(context.Background(), user)
			assert.NoError(t, err)
			results[i] = m
		}(i)
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&members.firstCalls) == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(members.gate)
	wg.Wait()

	assert.Len(t, workspaces.workspaces, 1)
	assert.Len(t, members.members, 1)
	for _, m := range results {
		require.NotNil(t, m)
		assert.Equal(t, results[0].ID, m.ID)
	}
}
