package group

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository handles group data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const groupColumns = `id, name, description, admin_email, member_emails, is_settled, settled_at, created_at`

func scanGroup(row interface{ Scan(...any) error }) (*Group, error) {
	g := &Group{}
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.AdminEmail,
		pq.Array(&g.MemberEmails),
		&g.IsSettled,
		&g.SettledAt,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Create inserts a new group into the database
func (r *Repository) Create(ctx context.Context, g *Group) (*Group, error) {
	query := `
		INSERT INTO groups (name, description, admin_email, member_emails)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + groupColumns

	created, err := scanGroup(r.db.QueryRowContext(ctx, query,
		g.Name, g.Description, g.AdminEmail, pq.Array(g.MemberEmails)))
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return created, nil
}

// GetByID retrieves a group by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`

	g, err := scanGroup(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return g, nil
}

// ListByMember retrieves all groups the email belongs to, newest first
func (r *Repository) ListByMember(ctx context.Context, email string) ([]*Group, error) {
	query := `
		SELECT ` + groupColumns + `
		FROM groups
		WHERE $1 = ANY(member_emails)
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	return groups, nil
}

// Mutate applies fn to the group inside a transaction while holding the
// group's row lock. The group is the unit of serialization: every mutation
// against it goes through here, so two writers can never interleave their
// read-modify-write cycles. Returns (nil, nil) when the group does not
// exist; an error from fn rolls the transaction back.
func (r *Repository) Mutate(ctx context.Context, id int64, fn func(*Group) error) (*Group, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1 FOR UPDATE`
	g, err := scanGroup(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock group: %w", err)
	}

	if err := fn(g); err != nil {
		return nil, err
	}

	update := `
		UPDATE groups
		SET name = $2, description = $3, admin_email = $4, member_emails = $5,
		    is_settled = $6, settled_at = $7
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, update,
		g.ID, g.Name, g.Description, g.AdminEmail, pq.Array(g.MemberEmails),
		g.IsSettled, g.SettledAt); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit group update: %w", err)
	}

	return g, nil
}

// Delete removes a group. Its expenses and splits cascade at the schema
// level. Returns false when the group does not exist.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete group: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete group: %w", err)
	}

	return affected > 0, nil
}
