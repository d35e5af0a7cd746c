package group

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/kunalsh/splitledger/internal/auth"
	"github.com/kunalsh/splitledger/internal/rbac"
	"github.com/kunalsh/splitledger/pkg/apperr"
)

// Store is the persistence contract the service is written against.
// *Repository implements it; tests supply an in-memory fake.
type Store interface {
	Create(ctx context.Context, g *Group) (*Group, error)
	GetByID(ctx context.Context, id int64) (*Group, error)
	ListByMember(ctx context.Context, email string) ([]*Group, error)
	Mutate(ctx context.Context, id int64, fn func(*Group) error) (*Group, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// UnpaidChecker answers whether a member still has unpaid split lines in a
// group. Implemented by the expense repository.
type UnpaidChecker interface {
	HasUnpaidForMember(ctx context.Context, groupID int64, email string) (bool, error)
}

// Service handles group business logic
type Service struct {
	store   Store
	unpaid  UnpaidChecker
	timeout time.Duration
}

// NewService creates a new group service
func NewService(store Store, unpaid UnpaidChecker, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{store: store, unpaid: unpaid, timeout: timeout}
}

func (s *Service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Create creates a new group with the actor as admin and sole member.
func (s *Service) Create(ctx context.Context, actor auth.Identity, req *CreateGroupRequest) (*Group, error) {
	if !rbac.Can(actor.Role, rbac.ActionCreateGroup) {
		return nil, apperr.Permission("cannot create groups")
	}
	if err := validateNameDescription(req.Name, req.Description); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	g, err := s.store.Create(ctx, &Group{
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		AdminEmail:   actor.Email,
		MemberEmails: []string{actor.Email},
	})
	if err != nil {
		return nil, apperr.Translate(err)
	}

	slog.Info("group created", "group_id", g.ID, "admin", g.AdminEmail)
	return g, nil
}

// GetByID retrieves a group for one of its members. Non-members get a not
// found error rather than a denial, so group existence is not leaked.
func (s *Service) GetByID(ctx context.Context, actor auth.Identity, id int64) (*Group, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	g, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Translate(err)
	}
	if g == nil || !g.HasMember(actor.Email) {
		return nil, apperr.NotFound("group")
	}
	return g, nil
}

// List retrieves all groups the actor belongs to
func (s *Service) List(ctx context.Context, actor auth.Identity) ([]*Group, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	groups, err := s.store.ListByMember(ctx, actor.Email)
	if err != nil {
		return nil, apperr.Translate(err)
	}
	return groups, nil
}

// Update renames or re-describes a group.
func (s *Service) Update(ctx context.Context, actor auth.Identity, id int64, req *UpdateGroupRequest) (*Group, error) {
	if !rbac.Can(actor.Role, rbac.ActionUpdateGroup) {
		return nil, apperr.Permission("cannot update groups")
	}
	if err := validateNameDescription(req.Name, req.Description); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	g, err := s.store.Mutate(ctx, id, func(g *Group) error {
		if g.IsSettled {
			return apperr.Conflict("group is already settled")
		}
		g.Name = strings.TrimSpace(req.Name)
		g.Description = strings.TrimSpace(req.Description)
		return nil
	})
	if err != nil {
		return nil, apperr.Translate(err)
	}
	if g == nil {
		return nil, apperr.NotFound("group")
	}
	return g, nil
}

// AddMembers adds emails to the group's membership. Duplicates are ignored;
// order of first appearance is preserved.
func (s *Service) AddMembers(ctx context.Context, actor auth.Identity, id int64, emails []string) (*Group, error) {
	if !rbac.Can(actor.Role, rbac.ActionUpdateGroup) {
		return nil, apperr.Permission("cannot update groups")
	}
	normalized, err := normalizeEmails(emails)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	g, err := s.store.Mutate(ctx, id, func(g *Group) error {
		if g.IsSettled {
			return apperr.Conflict("group is already settled")
		}
		for _, email := range normalized {
			if !g.HasMember(email) {
				g.MemberEmails = append(g.MemberEmails, email)
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Translate(err)
	}
	if g == nil {
		return nil, apperr.NotFound("group")
	}
	return g, nil
}

// RemoveMembers removes emails from the group's membership. The admin can
// never be removed, and a member with unpaid split lines stays until those
// are settled. The unpaid check runs while the group's row lock is held, so
// it cannot race with a concurrent expense write.
func (s *Service) RemoveMembers(ctx context.Context, actor auth.Identity, id int64, emails []string) (*Group, error) {
	if !rbac.Can(actor.Role, rbac.ActionUpdateGroup) {
		return nil, apperr.Permission("cannot update groups")
	}
	normalized, err := normalizeEmails(emails)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	g, err := s.store.Mutate(ctx, id, func(g *Group) error {
		if g.IsSettled {
			return apperr.Conflict("group is already settled")
		}
		for _, email := range normalized {
			if email == g.AdminEmail {
				return apperr.Validation("cannot remove the group admin")
			}
			if !g.HasMember(email) {
				continue
			}
			unpaid, err := s.unpaid.HasUnpaidForMember(ctx, g.ID, email)
			if err != nil {
				return err
			}
			if unpaid {
				return apperr.Conflict("%s still has unpaid expenses in this group", email)
			}
			g.MemberEmails = removeEmail(g.MemberEmails, email)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Translate(err)
	}
	if g == nil {
		return nil, apperr.NotFound("group")
	}
	return g, nil
}

// Delete removes a group and, through the schema cascade, all of its
// expenses and splits.
func (s *Service) Delete(ctx context.Context, actor auth.Identity, id int64) error {
	if !rbac.Can(actor.Role, rbac.ActionDeleteGroup) {
		return apperr.Permission("cannot delete groups")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return apperr.Translate(err)
	}
	if !deleted {
		return apperr.NotFound("group")
	}

	slog.Info("group deleted", "group_id", id, "actor", actor.Email)
	return nil
}

func validateNameDescription(name, description string) error {
	if len(strings.TrimSpace(name)) < 3 {
		return apperr.Validation("name must be at least 3 characters")
	}
	if len(strings.TrimSpace(description)) < 3 {
		return apperr.Validation("description must be at least 3 characters")
	}
	return nil
}

func normalizeEmails(emails []string) ([]string, error) {
	if len(emails) == 0 {
		return nil, apperr.Validation("at least one email is required")
	}
	normalized := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if _, err := mail.ParseAddress(e); err != nil {
			return nil, apperr.Validation("invalid email: %s", e)
		}
		normalized = append(normalized, e)
	}
	return normalized, nil
}

func removeEmail(emails []string, email string) []string {
	out := emails[:0]
	for _, e := range emails {
		if e != email {
			out = append(out, e)
		}
	}
	return out
}
