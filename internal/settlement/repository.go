package settlement

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kunalsh/splitledger/pkg/apperr"
)

// Repository performs the cross-table settlement writes. Each operation is
// one transaction holding the group's row lock, so a settle can never
// interleave with a concurrent expense write, and the state preconditions
// are re-checked under the lock.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new settlement repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SettleGroup marks every split line of every expense in the group as paid
// and flips the group into its terminal settled state.
func (r *Repository) SettleGroup(ctx context.Context, groupID int64, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var isSettled bool
	err = tx.QueryRowContext(ctx,
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

	_, err = tx.ExecContext(ctx, `
		UPDATE splits SET is_paid = TRUE
		WHERE expense_id IN (SELECT id FROM expenses WHERE group_id = $1)
	`, groupID)
	if err != nil {
		return fmt.Errorf("failed to settle splits: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE groups SET is_settled = TRUE, settled_at = $2 WHERE id = $1
	`, groupID, at)
	if err != nil {
		return fmt.Errorf("failed to settle group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit group settlement: %w", err)
	}

	return nil
}

// SettleExpense marks every split line of one expense as paid.
func (r *Repository) SettleExpense(ctx context.Context, expenseID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var groupID int64
	var groupSettled bool
	err = tx.QueryRowContext(ctx, `
		SELECT e.group_id, g.is_settled
		FROM expenses e
		JOIN groups g ON g.id = e.group_id
		WHERE e.id = $1
		FOR UPDATE OF g
	`, expenseID).Scan(&groupID, &groupSettled)
	if err == sql.ErrNoRows {
		return apperr.NotFound("expense")
	}
	if err != nil {
		return fmt.Errorf("failed to lock group: %w", err)
	}
	if groupSettled {
		return apperr.Conflict("group is already settled")
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE splits SET is_paid = TRUE WHERE expense_id = $1 AND NOT is_paid
	`, expenseID)
	if err != nil {
		return fmt.Errorf("failed to settle splits: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to settle splits: %w", err)
	}
	if affected == 0 {
		return apperr.Conflict("expense is already settled")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense settlement: %w", err)
	}

	return nil
}
