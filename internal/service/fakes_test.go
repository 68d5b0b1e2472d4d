package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	_ repository.ProductRepository   = (*fakeProductRepo)(nil)
	_ repository.SaleRepository      = (*fakeSaleRepo)(nil)
	_ repository.CashRepository      = (*fakeCashRepo)(nil)
	_ repository.MemberRepository    = (*fakeMemberRepo)(nil)
	_ repository.WorkspaceRepository = (*fakeWorkspaceRepo)(nil)
	_ repository.UserRepository      = (*fakeUserRepo)(nil)
	_ Publisher                      = (*fakePublisher)(nil)
)

func ensureID(b *model.BaseModel) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
}

func inPeriod(d model.Date, p repository.Period) bool {
	return (p.From == "" || d >= p.From) && (p.To == "" || d <= p.To)
}

// ---- products

type fakeProductRepo struct {
	mu             sync.Mutex
	items          map[uuid.UUID]model.Product
	updateStockErr map[uuid.UUID]error
}

func newFakeProductRepo(products ...*model.Product) *fakeProductRepo {
	r := &fakeProductRepo{items: map[uuid.UUID]model.Product{}, updateStockErr: map[uuid.UUID]error{}}
	for _, p := range products {
		ensureID(&p.BaseModel)
		r.items[p.ID] = *p
	}
	return r
}

func (r *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ensureID(&p.BaseModel)
	r.items[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) FindAll(_ context.Context, workspaceID uuid.UUID) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.items {
		if p.WorkspaceID == workspaceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, workspaceID, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || p.WorkspaceID != workspaceID {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) FindBySKU(_ context.Context, workspaceID uuid.UUID, sku string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.WorkspaceID == workspaceID && p.SKU != nil && *p.SKU == sku {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) UpdateStock(_ context.Context, workspaceID, id uuid.UUID, newStock int, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.updateStockErr[id]; err != nil {
		return err
	}
	p, ok := r.items[id]
	if !ok || p.WorkspaceID != workspaceID {
		return gorm.ErrRecordNotFound
	}
	p.Stock = newStock
	p.UpdatedBy = updatedBy
	r.items[id] = p
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, workspaceID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || p.WorkspaceID != workspaceID {
		return gorm.ErrRecordNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeProductRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id].Stock
}

// ---- sales

type fakeSaleRepo struct {
	mu        sync.Mutex
	sales     []model.Sale
	createErr error
}

func (r *fakeSaleRepo) Create(_ context.Context, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	ensureID(&s.BaseModel)
	r.sales = append(r.sales, *s)
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, workspaceID, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sales {
		if s.ID == id && s.WorkspaceID == workspaceID {
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSaleRepo) FindByPeriod(_ context.Context, workspaceID uuid.UUID, period repository.Period) ([]model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Sale
	for _, s := range r.sales {
		if s.WorkspaceID == workspaceID && inPeriod(s.SaleDate, period) {
			out = append(out, s)
		}
	}
	return out, nil
}

// ---- cash

type fakeCashRepo struct {
	mu        sync.Mutex
	movements []model.CashMovement
	createErr error
}

func (r *fakeCashRepo) Create(_ context.Context, m *model.CashMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	ensureID(&m.BaseModel)
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeCashRepo) FindByPeriod(_ context.Context, workspaceID uuid.UUID, period repository.Period) ([]model.CashMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CashMovement
	for _, m := range r.movements {
		if m.WorkspaceID == workspaceID && inPeriod(m.MovementDate, period) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeCashRepo) FindBySale(_ context.Context, workspaceID, saleID uuid.UUID) ([]model.CashMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CashMovement
	for _, m := range r.movements {
		if m.WorkspaceID == workspaceID && m.RelatedSaleID != nil && *m.RelatedSaleID == saleID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ---- members

type fakeMemberRepo struct {
	mu         sync.Mutex
	members    []model.WorkspaceMember
	createErr  error
	firstCalls int32
	// gate, when set, blocks FindFirstByUser until closed
	gate chan struct{}
}

func (r *fakeMemberRepo) Create(_ context.Context, m *model.WorkspaceMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.members {
		if existing.WorkspaceID == m.WorkspaceID && existing.UserID == m.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	ensureID(&m.BaseModel)
	r.members = append(r.members, *m)
	return nil
}

func (r *fakeMemberRepo) Update(_ context.Context, m *model.WorkspaceMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.members {
		if r.members[i].ID == m.ID {
			r.members[i] = *m
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeMemberRepo) FindByID(_ context.Context, workspaceID, id uuid.UUID) (*model.WorkspaceMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.ID == id && m.WorkspaceID == workspaceID {
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMemberRepo) FindFirstByUser(_ context.Context, userID uuid.UUID) (*model.WorkspaceMember, error) {
	atomic.AddInt32(&r.firstCalls, 1)
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.UserID == userID {
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMemberRepo) FindByWorkspaceAndUser(_ context.Context, workspaceID, userID uuid.UUID) (*model.WorkspaceMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMemberRepo) FindByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]model.WorkspaceMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.WorkspaceMember
	for _, m := range r.members {
		if m.WorkspaceID == workspaceID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ---- workspaces

type fakeWorkspaceRepo struct {
	mu         sync.Mutex
	workspaces []model.Workspace
}

func (r *fakeWorkspaceRepo) Create(_ context.Context, w *model.Workspace) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ensureID(&w.BaseModel)
	r.workspaces = append(r.workspaces, *w)
	return nil
}

func (r *fakeWorkspaceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.workspaces {
		if w.ID == id {
			return &w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeWorkspaceRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) (*model.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.workspaces {
		if w.OwnerID == ownerID {
			return &w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ---- users

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]model.User{}}
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ensureID(&u.BaseModel)
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hashed string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.Password = hashed
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) UpdateTokenVersion(_ context.Context, id uuid.UUID, version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.TokenVersion = version
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) UpdateLastSeen(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	now := time.Now()
	u.LastSeenAt = &now
	r.users[id] = u
	return nil
}

// ---- realtime

type fakePublisher struct {
	mu           sync.Mutex
	events       []ws.Event
	disconnected []uuid.UUID
}

func (p *fakePublisher) Publish(_ uuid.UUID, e ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *fakePublisher) DisconnectUser(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnected = append(p.disconnected, id)
}

// fixedCalendar pins today to 2026-10-16 in Mexico City time.
func fixedCalendar() Calendar {
	loc := time.FixedZone("CST", -6*60*60)
	return Calendar{
		Location: loc,
		Now:      func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, loc) },
	}
}
