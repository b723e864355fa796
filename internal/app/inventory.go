package app

import (
	"context"
	"fmt"

	"github.com/AlexP3rez/biblioteca-api/internal/domain"
)

// InventoryRepository is the storage surface the ledger needs. All
// read-modify-write methods are expected to run inside the caller's
// transaction with the book row locked by GetBookForUpdate.
type InventoryRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetBookForUpdate(ctx context.Context, bookID string) (domain.Book, error)
	CountOutstandingLoans(ctx context.Context, bookID string) (int, error)
	CountLoansByBook(ctx context.Context, bookID string) (int, error)
	SetBookAvailability(ctx context.Context, bookID string, available int, isAvailable bool) error
}

// InventoryLedger owns the per-title copy counts. Reservation decisions are
// made against the outstanding-loan count recomputed under the row lock, not
// the stored counter, so an administrative edit to total_copies cannot make
// the ledger hand out copies that are already lent. The stored
// available_copies column is refreshed in the same transaction and clamped
// at zero for display.
type InventoryLedger struct {
	repo InventoryRepository
}

func NewInventoryLedger(repo InventoryRepository) *InventoryLedger {
	return &InventoryLedger{repo: repo}
}

// ReserveCopy takes one copy of the book for a new loan and returns the
// count of copies left. Callers create the loan row in the same transaction.
func (l *InventoryLedger) ReserveCopy(ctx context.Context, bookID string) (int, error) {
	book, err := l.repo.GetBookForUpdate(ctx, bookID)
	if err != nil {
		return 0, err
	}

	outstanding, err := l.repo.CountOutstandingLoans(ctx, bookID)
	if err != nil {
		return 0, err
	}

	available := book.TotalCopies - outstanding
	if available <= 0 {
		return 0, fmt.Errorf("%w: %q has %d copies, all lent", domain.ErrNoCopiesAvailable, book.Title, book.TotalCopies)
	}

	remaining := available - 1
	if err := l.repo.SetBookAvailability(ctx, bookID, remaining, remaining > 0); err != nil {
		return 0, err
	}
	return remaining, nil
}

// ReleaseCopy puts one copy back after its loan was marked returned in the
// same transaction, and returns the updated available count.
func (l *InventoryLedger) ReleaseCopy(ctx context.Context, bookID string) (int, error) {
	book, err := l.repo.GetBookForUpdate(ctx, bookID)
	if err != nil {
		return 0, err
	}
	if book.AvailableCopies >= book.TotalCopies {
		return 0, fmt.Errorf("%w: book %s has %d/%d copies", domain.ErrCopyOverflow, bookID, book.AvailableCopies, book.TotalCopies)
	}

	outstanding, err := l.repo.CountOutstandingLoans(ctx, bookID)
	if err != nil {
		return 0, err
	}

	available := book.TotalCopies - outstanding
	if available < 0 {
		available = 0
	}
	if err := l.repo.SetBookAvailability(ctx, bookID, available, available > 0); err != nil {
		return 0, err
	}
	return available, nil
}

// OutstandingLoans returns the count of loans still holding a copy and the
// count of all loans ever recorded for the book. Catalog deletion consults
// both before destroying a title.
func (l *InventoryLedger) OutstandingLoans(ctx context.Context, bookID string) (active, total int, err error) {
	active, err = l.repo.CountOutstandingLoans(ctx, bookID)
	if err != nil {
		return 0, 0, err
	}
	total, err = l.repo.CountLoansByBook(ctx, bookID)
	if err != nil {
		return 0, 0, err
	}
	return active, total, nil
}

// HasOutstandingLoans reports whether any loan, current or historical,
// references the book.
func (l *InventoryLedger) HasOutstandingLoans(ctx context.Context, bookID string) (bool, error) {
	_, total, err := l.OutstandingLoans(ctx, bookID)
	if err != nil {
		return false, err
	}
	return total > 0, nil
}
