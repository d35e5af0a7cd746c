package group

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunalsh/splitledger/internal/auth"
	"github.com/kunalsh/splitledger/internal/rbac"
	"github.com/kunalsh/splitledger/pkg/apperr"
)

// memStore is an in-memory Store for service tests.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	groups map[int64]*Group
}

func newMemStore() *memStore {
	return &memStore{groups: make(map[int64]*Group)}
}

func cloneGroup(g *Group) *Group {
	c := *g
	c.MemberEmails = append([]string(nil), g.MemberEmails...)
	if g.SettledAt != nil {
		at := *g.SettledAt
		c.SettledAt = &at
	}
	return &c
}

func (m *memStore) Create(_ context.Context, g *Group) (*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c := cloneGroup(g)
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	m.groups[c.ID] = c
	return cloneGroup(c), nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, nil
	}
	return cloneGroup(g), nil
}

func (m *memStore) ListByMember(_ context.Context, email string) ([]*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Group
	for _, g := range m.groups {
		if g.HasMember(email) {
			out = append(out, cloneGroup(g))
		}
	}
	return out, nil
}

func (m *memStore) Mutate(_ context.Context, id int64, fn func(*Group) error) (*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, nil
	}
	c := cloneGroup(g)
	if err := fn(c); err != nil {
		return nil, err
	}
	m.groups[id] = c
	return cloneGroup(c), nil
}

func (m *memStore) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[id]; !ok {
		return false, nil
	}
	delete(m.groups, id)
	return true, nil
}

// unpaidFake reports unpaid obligations per email.
type unpaidFake map[string]bool

func (f unpaidFake) HasUnpaidForMember(_ context.Context, _ int64, email string) (bool, error) {
	return f[email], nil
}

var (
	manager = auth.Identity{Email: "manager@x.com", Role: rbac.RoleManager}
	admin   = auth.Identity{Email: "admin@x.com", Role: rbac.RoleAdmin}
	viewer  = auth.Identity{Email: "viewer@x.com", Role: rbac.RoleViewer}
)

func newTestService(unpaid unpaidFake) (*Service, *memStore) {
	store := newMemStore()
	return NewService(store, unpaid, time.Second), store
}

func TestCreateGroup(t *testing.T) {
	svc, _ := newTestService(nil)

	g, err := svc.Create(context.Background(), manager, &CreateGroupRequest{
		Name:        "Goa Trip",
		Description: "Beach week",
	})
	require.NoError(t, err)
	assert.Equal(t, manager.Email, g.AdminEmail)
	assert.Equal(t, []string{manager.Email}, g.MemberEmails)
	assert.False(t, g.IsSettled)
}

func TestCreateGroupValidation(t *testing.T) {
	svc, _ := newTestService(nil)

	tests := []struct {
		name     string
		actor    auth.Identity
		req      CreateGroupRequest
		wantKind apperr.Kind
	}{
		{"viewer lacks capability", viewer, CreateGroupRequest{Name: "Trip", Description: "Somewhere"}, apperr.KindPermission},
		{"short name", manager, CreateGroupRequest{Name: "ab", Description: "Somewhere"}, apperr.KindValidation},
		{"short description", manager, CreateGroupRequest{Name: "Trip", Description: "ab"}, apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.actor, &tt.req)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
		})
	}
}

func TestGetByIDHidesGroupsFromNonMembers(t *testing.T) {
	svc, _ := newTestService(nil)
	g, err := svc.Create(context.Background(), manager, &CreateGroupRequest{Name: "Flat 4B", Description: "Rent and bills"})
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), viewer, g.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	got, err := svc.GetByID(context.Background(), manager, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)
}

func TestAddMembers(t *testing.T) {
	svc, _ := newTestService(nil)
	g, err := svc.Create(context.Background(), manager, &CreateGroupRequest{Name: "Flat 4B", Description: "Rent and bills"})
	require.NoError(t, err)

	got, err := svc.AddMembers(context.Background(), manager, g.ID, []string{"A@x.com", "b@x.com", "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{manager.Email, "a@x.com", "b@x.com"}, got.MemberEmails)

	_, err = svc.AddMembers(context.Background(), manager, g.ID, []string{"not-an-email"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.AddMembers(context.Background(), viewer, g.ID, []string{"c@x.com"})
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))
}

func TestRemoveMembers(t *testing.T) {
	unpaid := unpaidFake{"debtor@x.com": true}
	svc, store := newTestService(unpaid)
	g, err := svc.Create(context.Background(), manager, &CreateGroupRequest{Name: "Flat 4B", Description: "Rent and bills"})
	require.NoError(t, err)
	_, err = svc.AddMembers(context.Background(), manager, g.ID, []string{"clean@x.com", "debtor@x.com"})
	require.NoError(t, err)

	// clean member leaves
	got, err := svc.RemoveMembers(context.Background(), manager, g.ID, []string{"clean@x.com"})
	require.NoError(t, err)
	assert.False(t, got.HasMember("clean@x.com"))

	// unpaid obligations block removal
	_, err = svc.RemoveMembers(context.Background(), manager, g.ID, []string{"debtor@x.com"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	current, _ := store.GetByID(context.Background(), g.ID)
	assert.True(t, current.HasMember("debtor@x.com"))

	// the admin cannot be removed
	_, err = svc.RemoveMembers(context.Background(), manager, g.ID, []string{manager.Email})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestMutationsRejectedOnSettledGroup(t *testing.T) {
	svc, store := newTestService(nil)
	g, err := svc.Create(context.Background(), manager, &CreateGroupRequest{Name: "Flat 4B", Description: "Rent and bills"})
	require.NoError(t, err)

	_, err = store.Mutate(context.Background(), g.ID, func(g *Group) error {
		now := time.Now()
		g.IsSettled = true
		g.SettledAt = &now
		return nil
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), manager, g.ID, &UpdateGroupRequest{Name: "Flat 5C", Description: "New flat"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = svc.AddMembers(context.Background(), manager, g.ID, []string{"late@x.com"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestDeleteGroup(t *testing.T) {
	svc, _ := newTestService(nil)
	g, err := svc.Create(context.Background(), admin, &CreateGroupRequest{Name: "Flat 4B", Description: "Rent and bills"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), manager, g.ID)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	require.NoError(t, svc.Delete(context.Background(), admin, g.ID))

	err = svc.Delete(context.Background(), admin, g.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
