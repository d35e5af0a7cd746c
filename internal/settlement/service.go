// Package settlement owns the settled/open state machine for groups and
// expenses. A group's settlement is terminal: there is no reverse
// transition. An expense's settled status is derived from its split lines.
package settlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/kunalsh/splitledger/internal/auth"
	"github.com/kunalsh/splitledger/internal/expense"
	"github.com/kunalsh/splitledger/internal/group"
	"github.com/kunalsh/splitledger/pkg/apperr"
)

// Store performs the atomic settlement writes. *Repository implements it.
type Store interface {
	SettleGroup(ctx context.Context, groupID int64, at time.Time) error
	SettleExpense(ctx context.Context, expenseID int64) error
}

// GroupStore is the read access the service needs on groups.
type GroupStore interface {
	GetByID(ctx context.Context, id int64) (*group.Group, error)
}

// ExpenseStore is the read access the service needs on expenses.
type ExpenseStore interface {
	GetByID(ctx context.Context, id int64) (*expense.Expense, error)
}

// Service coordinates settlement state transitions
type Service struct {
	store    Store
	groups   GroupStore
	expenses ExpenseStore
	timeout  time.Duration
	now      func() time.Time
}

// NewService creates a new settlement service
func NewService(store Store, groups GroupStore, expenses ExpenseStore, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{
		store:    store,
		groups:   groups,
		expenses: expenses,
		timeout:  timeout,
		now:      time.Now,
	}
}

func (s *Service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// SettleGroup transitions a group from open to settled. Admin only. Every
// split line in the group becomes paid; the transition is irreversible and
// a second call fails with a conflict.
func (s *Service) SettleGroup(ctx context.Context, actor auth.Identity, groupID int64) (*group.Group, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, apperr.Translate(err)
	}
	if g == nil || !g.HasMember(actor.Email) {
		return nil, apperr.NotFound("group")
	}
	if actor.Email != g.AdminEmail {
		return nil, apperr.Permission("only the group admin can settle the group")
	}
	if g.IsSettled {
		return nil, apperr.Conflict("group is already settled")
	}

	at := s.now()
	if err := s.store.SettleGroup(ctx, groupID, at); err != nil {
		return nil, apperr.Translate(err)
	}

	g.IsSettled = true
	g.SettledAt = &at

	slog.Info("group settled", "group_id", groupID, "admin", actor.Email)
	return g, nil
}

// SettleExpense marks every split line of one expense as paid. Settling
// one's debt is a payment action, not an edit, so any group member may do
// it, not only the creator.
func (s *Service) SettleExpense(ctx context.Context, actor auth.Identity, expenseID int64) (*expense.Expense, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	e, err := s.expenses.GetByID(ctx, expenseID)
	if err != nil {
		return nil, apperr.Translate(err)
	}
	if e == nil {
		return nil, apperr.NotFound("expense")
	}

	g, err := s.groups.GetByID(ctx, e.GroupID)
	if err != nil {
		return nil, apperr.Translate(err)
	}
	if g == nil || !g.HasMember(actor.Email) {
		return nil, apperr.NotFound("expense")
	}
	if g.IsSettled {
		return nil, apperr.Conflict("group is already settled")
	}
	if e.IsSettled() {
		return nil, apperr.Conflict("expense is already settled")
	}

	if err := s.store.SettleExpense(ctx, expenseID); err != nil {
		return nil, apperr.Translate(err)
	}

	for i := range e.Splits {
		e.Splits[i].IsPaid = true
	}

	slog.Info("expense settled", "expense_id", expenseID, "actor", actor.Email)
	return e, nil
}
