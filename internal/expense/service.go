package expense

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kunalsh/splitledger/internal/auth"
	"github.com/kunalsh/splitledger/internal/balance"
	"github.com/kunalsh/splitledger/internal/expense/split"
	"github.com/kunalsh/splitledger/internal/group"
	"github.com/kunalsh/splitledger/pkg/apperr"
)

// Store is the persistence contract the service is written against.
// *Repository implements it; tests supply an in-memory fake.
type Store interface {
	Create(ctx context.Context, e *Expense) (*Expense, error)
	Update(ctx context.Context, e *Expense) (*Expense, error)
	Delete(ctx context.Context, e *Expense) error
	GetByID(ctx context.Context, id int64) (*Expense, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*Expense, error)
}

// GroupStore is the read access the service needs on groups.
type GroupStore interface {
	GetByID(ctx context.Context, id int64) (*group.Group, error)
}

// Service handles expense business logic
type Service struct {
	store        Store
	groups       GroupStore
	splitFactory *split.Factory
	timeout      time.Duration
}

// NewService creates a new expense service with dependencies injected
func NewService(store Store, groups GroupStore, splitFactory *split.Factory, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{store: store, groups: groups, splitFactory: splitFactory, timeout: timeout}
}

func (s *Service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Create records a new expense in an open group. The split is computed
// before anything is written; expense and lines are persisted in one
// transaction.
func (s *Service) Create(ctx context.Context, actor auth.Identity, req *CreateExpenseRequest) (*Expense, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	g, err := s.loadGroup(ctx, req.GroupID, actor)
	if err != nil {
		return nil, err
	}
	if g.IsSettled {
		return nil, apperr.Conflict("group is already settled")
	}

	e, err := buildExpense(g, req.Title, req.Description, req.Amount, req.Category,
		req.SplitType, req.Date, req.PaidBy, req.Participants, s.splitFactory)
	if err != nil {
		return nil, err
	}
	e.GroupID = g.ID
	e.CreatedBy = actor.Email

	created, err := s.store.Create(ctx, e)
	if err != nil {
		return nil, apperr.Translate(err)
	}

	slog.Info("expense created", "expense_id", created.ID, "group_id", g.ID, "amount", created.Amount)
	return created, nil
}

// Update replaces an expense. Only its creator may edit, and only while the
// group is open. The split is recomputed from scratch, which resets payment
// progress on every line.
func (s *Service) Update(ctx context.Context, actor auth.Identity, id int64, req *UpdateExpenseRequest) (*Expense, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	existing, g, err := s.loadExpense(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if existing.CreatedBy != actor.Email {
		return nil, apperr.Permission("only the creator can edit this expense")
	}
	if g.IsSettled {
		return nil, apperr.Conflict("group is already settled")
	}

	e, err := buildExpense(g, req.Title, req.Description, req.Amount, req.Category,
		req.SplitType, req.Date, req.PaidBy, req.Participants, s.splitFactory)
	if err != nil {
		return nil, err
	}
	e.ID = existing.ID
	e.GroupID = existing.GroupID
	e.CreatedBy = existing.CreatedBy
	e.CreatedAt = existing.CreatedAt

	updated, err := s.store.Update(ctx, e)
	if err != nil {
		return nil, apperr.Translate(err)
	}

	slog.Info("expense updated", "expense_id", updated.ID, "group_id", g.ID)
	return updated, nil
}

// Delete removes an expense. Same permission and settlement checks as edit.
func (s *Service) Delete(ctx context.Context, actor auth.Identity, id int64) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	existing, g, err := s.loadExpense(ctx, id, actor)
	if err != nil {
		return err
	}
	if existing.CreatedBy != actor.Email {
		return apperr.Permission("only the creator can delete this expense")
	}
	if g.IsSettled {
		return apperr.Conflict("group is already settled")
	}

	if err := s.store.Delete(ctx, existing); err != nil {
		return apperr.Translate(err)
	}

	slog.Info("expense deleted", "expense_id", id, "group_id", g.ID)
	return nil
}

// GetByID retrieves an expense for a member of its group.
func (s *Service) GetByID(ctx context.Context, actor auth.Identity, id int64) (*Expense, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	e, _, err := s.loadExpense(ctx, id, actor)
	return e, err
}

// ListByGroup retrieves all expenses of a group for one of its members.
func (s *Service) ListByGroup(ctx context.Context, actor auth.Identity, groupID int64) ([]*Expense, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if _, err := s.loadGroup(ctx, groupID, actor); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, apperr.Translate(err)
	}
	return expenses, nil
}

// SummarizeGroup folds all of the group's expenses into one balance per
// member, computed fresh on every call. Every current member appears even
// with zero activity; historical members with obligations still show up.
func (s *Service) SummarizeGroup(ctx context.Context, groupID int64) ([]balance.MemberBalance, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, apperr.Translate(err)
	}
	if g == nil {
		return nil, apperr.NotFound("group")
	}

	expenses, err := s.store.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, apperr.Translate(err)
	}

	inputs := make([]balance.Expense, len(expenses))
	for i, e := range expenses {
		shares := make([]balance.Share, len(e.Splits))
		for j, l := range e.Splits {
			shares[j] = balance.Share{Email: l.Email, Amount: l.Amount}
		}
		inputs[i] = balance.Expense{PaidBy: e.PaidBy, Amount: e.Amount, Shares: shares}
	}

	return balance.Summarize(g.MemberEmails, inputs), nil
}

// loadGroup fetches the group and gates on membership. Non-members get a
// not found error so group existence is not leaked.
func (s *Service) loadGroup(ctx context.Context, groupID int64, actor auth.Identity) (*group.Group, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, apperr.Translate(err)
	}
	if g == nil || !g.HasMember(actor.Email) {
		return nil, apperr.NotFound("group")
	}
	return g, nil
}

func (s *Service) loadExpense(ctx context.Context, id int64, actor auth.Identity) (*Expense, *group.Group, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, nil, apperr.Translate(err)
	}
	if e == nil {
		return nil, nil, apperr.NotFound("expense")
	}

	g, err := s.loadGroup(ctx, e.GroupID, actor)
	if err != nil {
		return nil, nil, err
	}

	return e, g, nil
}

// buildExpense validates the input against the group and runs the split
// calculator. Split calculator failures surface as validation errors.
func buildExpense(g *group.Group, title, description string, amount float64,
	category, splitType, date, paidBy string, participants []split.Input,
	factory *split.Factory) (*Expense, error) {

	title = strings.TrimSpace(title)
	if len(title) < 3 {
		return nil, apperr.Validation("title must be at least 3 characters")
	}
	if amount <= 0 {
		return nil, apperr.Validation("amount must be positive")
	}

	cat := Category(category)
	if !cat.IsValid() {
		return nil, apperr.Validation("invalid category: %s", category)
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, apperr.Validation("invalid date, expected YYYY-MM-DD")
	}

	paidBy = strings.ToLower(strings.TrimSpace(paidBy))
	if !g.HasMember(paidBy) {
		return nil, apperr.Validation("payer %s is not a member of the group", paidBy)
	}
	parts := make([]split.Input, len(participants))
	for i, p := range participants {
		p.Email = strings.ToLower(strings.TrimSpace(p.Email))
		if !g.HasMember(p.Email) {
			return nil, apperr.Validation("participant %s is not a member of the group", p.Email)
		}
		parts[i] = p
	}

	strategy, err := factory.CreateFromString(splitType)
	if err != nil {
		return nil, apperr.Validation("invalid split type: %s", splitType)
	}

	lines, err := strategy.Calculate(amount, parts)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}

	return &Expense{
		Title:       title,
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Category:    cat,
		SplitType:   strategy.Type(),
		Date:        day,
		PaidBy:      paidBy,
		Splits:      lines,
	}, nil
}
