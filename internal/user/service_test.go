package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunalsh/splitledger/internal/auth"
	"github.com/kunalsh/splitledger/internal/balance"
	"github.com/kunalsh/splitledger/internal/group"
	"github.com/kunalsh/splitledger/internal/rbac"
)

type groupFake []*group.Group

func (f groupFake) ListByMember(_ context.Context, email string) ([]*group.Group, error) {
	var out []*group.Group
	for _, g := range f {
		if g.HasMember(email) {
			out = append(out, g)
		}
	}
	return out, nil
}

type summarizerFake map[int64][]balance.MemberBalance

func (f summarizerFake) SummarizeGroup(_ context.Context, groupID int64) ([]balance.MemberBalance, error) {
	return f[groupID], nil
}

var me = auth.Identity{Email: "me@x.com", Role: rbac.RoleViewer}

func TestFinancialSummary(t *testing.T) {
	groups := groupFake{
		{ID: 1, Name: "Goa Trip", AdminEmail: me.Email, MemberEmails: []string{me.Email, "a@x.com", "b@x.com"}},
		{ID: 2, Name: "Flat 4B", AdminEmail: "a@x.com", MemberEmails: []string{"a@x.com", me.Email}, IsSettled: true},
	}
	balances := summarizerFake{
		1: {
			{Email: me.Email, TotalPaid: 300, TotalOwed: 120, NetBalance: 180},
			{Email: "a@x.com", TotalPaid: 60, TotalOwed: 120, NetBalance: -60},
			{Email: "b@x.com", TotalOwed: 120, NetBalance: -120},
		},
		2: {
			{Email: "a@x.com", TotalPaid: 50, TotalOwed: 25, NetBalance: 25},
			{Email: me.Email, TotalPaid: 0, TotalOwed: 25, NetBalance: -25},
		},
	}

	svc := NewService(groups, balances, time.Second)
	summary, err := svc.FinancialSummary(context.Background(), me)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.GroupCount)
	assert.Equal(t, 180.0, summary.TotalToReceive)
	assert.Equal(t, 25.0, summary.TotalToPay)
	assert.Equal(t, 155.0, summary.NetBalance)

	require.Len(t, summary.Groups, 2)
	first := summary.Groups[0]
	assert.Equal(t, int64(1), first.GroupID)
	assert.Equal(t, "Goa Trip", first.GroupName)
	assert.Equal(t, 3, first.MemberCount)
	assert.True(t, first.IsAdmin)
	assert.False(t, first.IsSettled)
	assert.Equal(t, 300.0, first.TotalPaid)
	assert.Equal(t, 120.0, first.TotalShare)
	assert.Equal(t, 180.0, first.NetBalance)

	second := summary.Groups[1]
	assert.False(t, second.IsAdmin)
	assert.True(t, second.IsSettled)
	assert.Equal(t, -25.0, second.NetBalance)
}

func TestFinancialSummaryNoGroups(t *testing.T) {
	svc := NewService(groupFake{}, summarizerFake{}, time.Second)
	summary, err := svc.FinancialSummary(context.Background(), me)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.GroupCount)
	assert.Zero(t, summary.TotalToPay)
	assert.Zero(t, summary.TotalToReceive)
	assert.Zero(t, summary.NetBalance)
	assert.Empty(t, summary.Groups)
}
