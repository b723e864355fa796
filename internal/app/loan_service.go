package app

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexP3rez/biblioteca-api/internal/clock"
	"github.com/AlexP3rez/biblioteca-api/internal/domain"
)

type LoanRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetLoan(ctx context.Context, loanID string) (domain.Loan, error)
	GetLoanForUpdate(ctx context.Context, loanID string) (domain.Loan, error)
	CreateLoan(ctx context.Context, loan domain.Loan) error
	UpdateLoanRenewal(ctx context.Context, loanID string, dueAt time.Time, renewalCount int, state domain.LoanState) error
	UpdateLoanReturn(ctx context.Context, loanID string, returnedAt time.Time, state domain.LoanState) error
}

// CopyLedger is the slice of the inventory ledger the engine drives.
type CopyLedger interface {
	ReserveCopy(ctx context.Context, bookID string) (int, error)
	ReleaseCopy(ctx context.Context, bookID string) (int, error)
}

// EligibilityChecker gates new loans.
type EligibilityChecker interface {
	Check(ctx context.Context, userID string) error
}

const (
	defaultLoanPeriodDays       = 14
	defaultRenewalExtensionDays = 15
	defaultMaxRenewals          = 2
)

// LoanService is the loan lifecycle engine: it opens loans against the
// inventory ledger, renews them up to the renewal cap, and returns them.
// Every operation runs its read-modify-write inside one transaction so the
// loan row and the book's availability always move together.
type LoanService struct {
	repo   LoanRepository
	ledger CopyLedger
	gate   EligibilityChecker
	clock  clock.Clock

	loanPeriodDays       int
	renewalExtensionDays int
	maxRenewals          int
}

func NewLoanService(repo LoanRepository, ledger CopyLedger, gate EligibilityChecker, clk clock.Clock, opts ...LoanServiceOption) *LoanService {
	svc := &LoanService{
		repo:                 repo,
		ledger:               ledger,
		gate:                 gate,
		clock:                clk,
		loanPeriodDays:       defaultLoanPeriodDays,
		renewalExtensionDays: defaultRenewalExtensionDays,
		maxRenewals:          defaultMaxRenewals,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type LoanServiceOption func(*LoanService)

// WithLoanPeriodDays overrides the default loan period applied when a borrow
// request carries no due date.
func WithLoanPeriodDays(days int) LoanServiceOption {
	return func(s *LoanService) {
		if days > 0 {
			s.loanPeriodDays = days
		}
	}
}

// WithRenewalExtensionDays overrides the extension a renewal adds to the
// current due date.
func WithRenewalExtensionDays(days int) LoanServiceOption {
	return func(s *LoanService) {
		if days > 0 {
			s.renewalExtensionDays = days
		}
	}
}

// WithMaxRenewals overrides the per-loan renewal cap.
func WithMaxRenewals(max int) LoanServiceOption {
	return func(s *LoanService) {
		if max >= 0 {
			s.maxRenewals = max
		}
	}
}

type OpenLoanInput struct {
	UserID string
	BookID string
	DueAt  time.Time
	Notes  string
}

// OpenLoan checks eligibility, reserves a copy, and creates the loan record
// as one logical transaction. A failure at any step leaves no partial
// effect: the transaction rollback undoes the reservation.
func (s *LoanService) OpenLoan(ctx context.Context, in OpenLoanInput) (domain.Loan, error) {
	if in.UserID == "" || in.BookID == "" {
		return domain.Loan{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	today := clock.Day(now)

	dueAt := clock.Day(in.DueAt)
	if in.DueAt.IsZero() {
		dueAt = today.AddDate(0, 0, s.loanPeriodDays)
	} else if !dueAt.After(today) {
		return domain.Loan{}, domain.ErrInvalidDueDate
	}

	var result domain.Loan
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.gate.Check(txCtx, in.UserID); err != nil {
			return err
		}
		if _, err := s.ledger.ReserveCopy(txCtx, in.BookID); err != nil {
			return err
		}

		loan := domain.Loan{
			ID:           newID(),
			UserID:       in.UserID,
			BookID:       in.BookID,
			BorrowedAt:   now,
			DueAt:        dueAt,
			State:        domain.LoanStateActive,
			RenewalCount: 0,
			Notes:        in.Notes,
		}
		if err := s.repo.CreateLoan(txCtx, loan); err != nil {
			return err
		}

		result = loan
		return nil
	})
	if err != nil {
		return domain.Loan{}, err
	}
	return result, nil
}

// RenewLoan extends the due date by the configured extension, counted from
// the current due date, and moves the loan to the renewed state. Renewal is
// allowed while the loan is overdue; only a returned loan cannot renew.
func (s *LoanService) RenewLoan(ctx context.Context, loanID string) (domain.Loan, error) {
	if loanID == "" {
		return domain.Loan{}, domain.ErrInvalidID
	}

	var result domain.Loan
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		loan, err := s.repo.GetLoanForUpdate(txCtx, loanID)
		if err != nil {
			return err
		}
		if loan.State == domain.LoanStateReturned {
			return fmt.Errorf("%w: loan was returned", domain.ErrLoanNotActive)
		}
		if loan.RenewalCount >= s.maxRenewals {
			return fmt.Errorf("%w: %d of %d renewals used", domain.ErrRenewalLimitReached, loan.RenewalCount, s.maxRenewals)
		}

		loan.DueAt = loan.DueAt.AddDate(0, 0, s.renewalExtensionDays)
		loan.RenewalCount++
		loan.State = domain.LoanStateRenewed

		if err := s.repo.UpdateLoanRenewal(txCtx, loanID, loan.DueAt, loan.RenewalCount, loan.State); err != nil {
			return err
		}

		result = loan
		return nil
	})
	if err != nil {
		return domain.Loan{}, err
	}
	return result, nil
}

// ReturnLoan marks the loan returned and releases its copy back to the
// ledger. Both mutations commit together. A second return reports
// ErrLoanAlreadyReturned and touches nothing.
func (s *LoanService) ReturnLoan(ctx context.Context, loanID string) (domain.Loan, error) {
	if loanID == "" {
		return domain.Loan{}, domain.ErrInvalidID
	}

	var result domain.Loan
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		loan, err := s.repo.GetLoanForUpdate(txCtx, loanID)
		if err != nil {
			return err
		}
		if loan.State == domain.LoanStateReturned {
			return domain.ErrLoanAlreadyReturned
		}

		returnedAt := clock.Day(s.clock.Now())
		if err := s.repo.UpdateLoanReturn(txCtx, loanID, returnedAt, domain.LoanStateReturned); err != nil {
			return err
		}
		if _, err := s.ledger.ReleaseCopy(txCtx, loan.BookID); err != nil {
			return err
		}

		loan.State = domain.LoanStateReturned
		loan.ReturnedAt = &returnedAt
		result = loan
		return nil
	})
	if err != nil {
		return domain.Loan{}, err
	}
	return result, nil
}

// GetLoan fetches a single loan.
func (s *LoanService) GetLoan(ctx context.Context, loanID string) (domain.Loan, error) {
	if loanID == "" {
		return domain.Loan{}, domain.ErrInvalidID
	}
	return s.repo.GetLoan(ctx, loanID)
}
