package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/kunalsh/splitledger/internal/expense/split"
	"github.com/kunalsh/splitledger/pkg/apperr"
)

// Repository handles expense and split data persistence. Every mutation
// locks the owning group's row first, so writes within one group are
// serialized and the settled check cannot race with a concurrent settle.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// lockGroup takes the owning group's row lock and enforces the open-group
// precondition inside the transaction.
func lockGroup(ctx context.Context, tx *sql.Tx, groupID int64) error {
	var isSettled bool
	err := tx.QueryRowContext(ctx,
		`SELECT is_settled FROM groups WHERE id = $1 FOR UPDATE`, groupID).Scan(&isSettled)
	if err == sql.ErrNoRows {
		return apperr.NotFound("group")
	}
	if err != nil {
		return fmt.Errorf("failed to lock group: %w", err)
	}
	if isSettled {
		return apperr.Conflict("group is already settled")
	}
	return nil
}

// Create inserts an expense together with its split lines in one
// transaction, so a split can never be partially applied.
func (r *Repository) Create(ctx context.Context, e *Expense) (*Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockGroup(ctx, tx, e.GroupID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO expenses (group_id, title, description, amount, category, split_type, expense_date, paid_by, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, query,
		e.GroupID, e.Title, e.Description, e.Amount, e.Category, e.SplitType,
		e.Date, e.PaidBy, e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	if err := insertSplits(ctx, tx, e.ID, e.Splits); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense: %w", err)
	}

	return e, nil
}

// Update replaces the expense row and all of its split lines.
func (r *Repository) Update(ctx context.Context, e *Expense) (*Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockGroup(ctx, tx, e.GroupID); err != nil {
		return nil, err
	}

	query := `
		UPDATE expenses
		SET title = $2, description = $3, amount = $4, category = $5,
		    split_type = $6, expense_date = $7, paid_by = $8
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, query,
		e.ID, e.Title, e.Description, e.Amount, e.Category, e.SplitType,
		e.Date, e.PaidBy)
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	// The expense may have been deleted between the service's read and this
	// transaction taking the group lock.
	if affected == 0 {
		return nil, apperr.NotFound("expense")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM splits WHERE expense_id = $1`, e.ID); err != nil {
		return nil, fmt.Errorf("failed to clear splits: %w", err)
	}

	if err := insertSplits(ctx, tx, e.ID, e.Splits); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense update: %w", err)
	}

	return e, nil
}

// Delete removes an expense and its split lines.
func (r *Repository) Delete(ctx context.Context, e *Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockGroup(ctx, tx, e.GroupID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, e.ID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense delete: %w", err)
	}

	return nil
}

// GetByID retrieves an expense with its split lines
func (r *Repository) GetByID(ctx context.Context, id int64) (*Expense, error) {
	query := `
		SELECT id, group_id, title, description, amount, category, split_type, expense_date, paid_by, created_by, created_at
		FROM expenses
		WHERE id = $1
	`

	e := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.GroupID, &e.Title, &e.Description, &e.Amount, &e.Category,
		&e.SplitType, &e.Date, &e.PaidBy, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	splitsByExpense, err := r.loadSplits(ctx, []int64{e.ID})
	if err != nil {
		return nil, err
	}
	e.Splits = splitsByExpense[e.ID]

	return e, nil
}

// ListByGroup retrieves all expenses of a group, newest date first
func (r *Repository) ListByGroup(ctx context.Context, groupID int64) ([]*Expense, error) {
	query := `
		SELECT id, group_id, title, description, amount, category, split_type, expense_date, paid_by, created_by, created_at
		FROM expenses
		WHERE group_id = $1
		ORDER BY expense_date DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	var ids []int64
	for rows.Next() {
		e := &Expense{}
		err := rows.Scan(
			&e.ID, &e.GroupID, &e.Title, &e.Description, &e.Amount, &e.Category,
			&e.SplitType, &e.Date, &e.PaidBy, &e.CreatedBy, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	if len(ids) == 0 {
		return expenses, nil
	}

	splitsByExpense, err := r.loadSplits(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		e.Splits = splitsByExpense[e.ID]
	}

	return expenses, nil
}

// HasUnpaidForMember reports whether the member still has unpaid split
// lines anywhere in the group.
func (r *Repository) HasUnpaidForMember(ctx context.Context, groupID int64, email string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM splits s
			JOIN expenses e ON e.id = s.expense_id
			WHERE e.group_id = $1 AND s.member_email = $2 AND NOT s.is_paid
		)
	`

	var unpaid bool
	if err := r.db.QueryRowContext(ctx, query, groupID, email).Scan(&unpaid); err != nil {
		return false, fmt.Errorf("failed to check unpaid splits: %w", err)
	}

	return unpaid, nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, expenseID int64, lines []split.Line) error {
	query := `
		INSERT INTO splits (expense_id, member_email, amount, percentage, is_paid, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, l := range lines {
		if _, err := tx.ExecContext(ctx, query,
			expenseID, l.Email, l.Amount, l.Percentage, l.IsPaid, i); err != nil {
			return fmt.Errorf("failed to create split: %w", err)
		}
	}
	return nil
}

func (r *Repository) loadSplits(ctx context.Context, expenseIDs []int64) (map[int64][]split.Line, error) {
	query := `
		SELECT expense_id, member_email, amount, percentage, is_paid
		FROM splits
		WHERE expense_id = ANY($1)
		ORDER BY expense_id, position
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(expenseIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load splits: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]split.Line, len(expenseIDs))
	for rows.Next() {
		var expenseID int64
		var l split.Line
		if err := rows.Scan(&expenseID, &l.Email, &l.Amount, &l.Percentage, &l.IsPaid); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		out[expenseID] = append(out[expenseID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load splits: %w", err)
	}

	return out, nil
}
