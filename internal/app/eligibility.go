package app

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexP3rez/biblioteca-api/internal/clock"
	"github.com/AlexP3rez/biblioteca-api/internal/domain"
)

// UserStatusReader is the slice of the user collaborator the gate consults.
type UserStatusReader interface {
	GetUserStatus(ctx context.Context, userID string) (domain.UserStatus, error)
}

// OverdueLoanCounter counts a user's loans whose due date has passed without
// a return, as of the given instant.
type OverdueLoanCounter interface {
	CountOverdueLoans(ctx context.Context, userID string, asOf time.Time) (int, error)
}

// EligibilityGate decides whether a user may open a new loan right now.
type EligibilityGate struct {
	users UserStatusReader
	loans OverdueLoanCounter
	clock clock.Clock
}

func NewEligibilityGate(users UserStatusReader, loans OverdueLoanCounter, clk clock.Clock) *EligibilityGate {
	return &EligibilityGate{
		users: users,
		loans: loans,
		clock: clk,
	}
}

// Check returns nil when the user may borrow. The overdue check is derived
// from due dates, not from a stored overdue state.
func (g *EligibilityGate) Check(ctx context.Context, userID string) error {
	status, err := g.users.GetUserStatus(ctx, userID)
	if err != nil {
		return err
	}
	if status != domain.UserStatusActive {
		return fmt.Errorf("%w: status is %s", domain.ErrUserInactive, status)
	}

	overdue, err := g.loans.CountOverdueLoans(ctx, userID, g.clock.Now())
	if err != nil {
		return err
	}
	if overdue > 0 {
		return fmt.Errorf("%w: %d overdue loan(s) must be returned first", domain.ErrUserIneligible, overdue)
	}
	return nil
}
