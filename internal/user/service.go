package user

import (
	"context"
	"time"

	"github.com/kunalsh/splitledger/internal/auth"
	"github.com/kunalsh/splitledger/internal/balance"
	"github.com/kunalsh/splitledger/internal/group"
	"github.com/kunalsh/splitledger/pkg/apperr"
)

// GroupStore is the read access the service needs on groups.
type GroupStore interface {
	ListByMember(ctx context.Context, email string) ([]*group.Group, error)
}

// Summarizer computes the per-member balance summary for a group.
// Implemented by the expense service.
type Summarizer interface {
	SummarizeGroup(ctx context.Context, groupID int64) ([]balance.MemberBalance, error)
}

// Service derives per-user figures across all groups
type Service struct {
	groups     GroupStore
	summarizer Summarizer
	timeout    time.Duration
}

// NewService creates a new user service
func NewService(groups GroupStore, summarizer Summarizer, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{groups: groups, summarizer: summarizer, timeout: timeout}
}

// FinancialSummary folds the actor's balance in every group they belong to
// into one cross-group summary. Computed fresh on every call.
func (s *Service) FinancialSummary(ctx context.Context, actor auth.Identity) (*FinancialSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	groups, err := s.groups.ListByMember(ctx, actor.Email)
	if err != nil {
		return nil, apperr.Translate(err)
	}

	summary := &FinancialSummary{
		GroupCount: len(groups),
		Groups:     make([]GroupSummary, 0, len(groups)),
	}

	for _, g := range groups {
		balances, err := s.summarizer.SummarizeGroup(ctx, g.ID)
		if err != nil {
			return nil, err
		}

		var mine balance.MemberBalance
		for _, b := range balances {
			if b.Email == actor.Email {
				mine = b
				break
			}
		}

		summary.Groups = append(summary.Groups, GroupSummary{
			GroupID:     g.ID,
			GroupName:   g.Name,
			MemberCount: len(g.MemberEmails),
			IsAdmin:     g.AdminEmail == actor.Email,
			IsSettled:   g.IsSettled,
			TotalPaid:   mine.TotalPaid,
			TotalShare:  mine.TotalOwed,
			NetBalance:  mine.NetBalance,
		})

		summary.NetBalance += mine.NetBalance
		if mine.NetBalance > 0 {
			summary.TotalToReceive += mine.NetBalance
		} else {
			summary.TotalToPay += -mine.NetBalance
		}
	}

	return summary, nil
}
