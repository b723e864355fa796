package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AlexP3rez/biblioteca-api/internal/clock"
	"github.com/AlexP3rez/biblioteca-api/internal/domain"
)

func TestEligibilityGate_Check(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	today := clock.Day(now)

	newGate := func(store *fakeStore) *EligibilityGate {
		return NewEligibilityGate(store, store, clock.NewFixed(now))
	}

	t.Run("active user with no overdue loans passes", func(t *testing.T) {
		store := newFakeStore()
		store.addUser(domain.User{ID: "u1", Status: domain.UserStatusActive})
		store.addLoan(domain.Loan{ID: "l1", UserID: "u1", State: domain.LoanStateActive, DueAt: today.AddDate(0, 0, 7)})

		assert.NoError(t, newGate(store).Check(context.Background(), "u1"))
	})

	t.Run("due today is not overdue yet", func(t *testing.T) {
		store := newFakeStore()
		store.addUser(domain.User{ID: "u1", Status: domain.UserStatusActive})
		store.addLoan(domain.Loan{ID: "l1", UserID: "u1", State: domain.LoanStateActive, DueAt: today})

		assert.NoError(t, newGate(store).Check(context.Background(), "u1"))
	})

	t.Run("overdue loan blocks borrowing", func(t *testing.T) {
		store := newFakeStore()
		store.addUser(domain.User{ID: "u1", Status: domain.UserStatusActive})
		store.addLoan(domain.Loan{ID: "l1", UserID: "u1", State: domain.LoanStateRenewed, DueAt: today.AddDate(0, 0, -1)})

		err := newGate(store).Check(context.Background(), "u1")
		assert.ErrorIs(t, err, domain.ErrUserIneligible)
	})

	t.Run("returned overdue loan does not count", func(t *testing.T) {
		returnedAt := today
		store := newFakeStore()
		store.addUser(domain.User{ID: "u1", Status: domain.UserStatusActive})
		store.addLoan(domain.Loan{ID: "l1", UserID: "u1", State: domain.LoanStateReturned, DueAt: today.AddDate(0, 0, -10), ReturnedAt: &returnedAt})

		assert.NoError(t, newGate(store).Check(context.Background(), "u1"))
	})

	t.Run("another user's overdue loan does not count", func(t *testing.T) {
		store := newFakeStore()
		store.addUser(domain.User{ID: "u1", Status: domain.UserStatusActive})
		store.addLoan(domain.Loan{ID: "l1", UserID: "u2", State: domain.LoanStateActive, DueAt: today.AddDate(0, 0, -10)})

		assert.NoError(t, newGate(store).Check(context.Background(), "u1"))
	})

	t.Run("inactive statuses", func(t *testing.T) {
		for _, status := range []domain.UserStatus{domain.UserStatusInactive, domain.UserStatusSuspended} {
			store := newFakeStore()
			store.addUser(domain.User{ID: "u1", Status: status})

			err := newGate(store).Check(context.Background(), "u1")
			assert.ErrorIs(t, err, domain.ErrUserInactive, "status %s", status)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		err := newGate(newFakeStore()).Check(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
