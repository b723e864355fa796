package app

import (
	"context"
	"fmt"

	"github.com/AlexP3rez/biblioteca-api/internal/clock"
	"github.com/AlexP3rez/biblioteca-api/internal/domain"
)

type CatalogRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateBook(ctx context.Context, book domain.Book) error
	GetBook(ctx context.Context, bookID string) (domain.Book, error)
	GetBookForUpdate(ctx context.Context, bookID string) (domain.Book, error)
	ListBooks(ctx context.Context) ([]domain.Book, error)
	SetBookCopies(ctx context.Context, bookID string, total, available int, isAvailable bool) error
	DeleteBook(ctx context.Context, bookID string) error
}

// LoanVetoSource supplies the loan counts that gate destructive catalog
// operations.
type LoanVetoSource interface {
	OutstandingLoans(ctx context.Context, bookID string) (active, total int, err error)
}

// CatalogService manages titles. It stays thin: the only operations with a
// lending contract are the deletion veto and the availability reconcile on
// administrative copy edits.
type CatalogService struct {
	repo   CatalogRepository
	ledger LoanVetoSource
	clock  clock.Clock
}

func NewCatalogService(repo CatalogRepository, ledger LoanVetoSource, clk clock.Clock) *CatalogService {
	return &CatalogService{
		repo:   repo,
		ledger: ledger,
		clock:  clk,
	}
}

type AddBookInput struct {
	ISBN        string
	Title       string
	Subtitle    string
	TotalCopies int
}

func (s *CatalogService) AddBook(ctx context.Context, in AddBookInput) (domain.Book, error) {
	if in.Title == "" {
		return domain.Book{}, domain.ErrTitleRequired
	}
	if in.TotalCopies < 0 {
		return domain.Book{}, domain.ErrInvalidCopyCount
	}

	book := domain.Book{
		ID:              newID(),
		ISBN:            in.ISBN,
		Title:           in.Title,
		Subtitle:        in.Subtitle,
		TotalCopies:     in.TotalCopies,
		AvailableCopies: in.TotalCopies,
		IsAvailable:     in.TotalCopies > 0,
		CreatedAt:       s.clock.Now(),
	}
	if err := s.repo.CreateBook(ctx, book); err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

func (s *CatalogService) GetBook(ctx context.Context, bookID string) (domain.Book, error) {
	if bookID == "" {
		return domain.Book{}, domain.ErrInvalidID
	}
	return s.repo.GetBook(ctx, bookID)
}

func (s *CatalogService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return s.repo.ListBooks(ctx)
}

// UpdateBookCopies changes the total copy count of a title. The stored
// available count is recomputed from the outstanding-loan count in the same
// transaction, clamped at zero, so shrinking the total below the number of
// lent copies never invalidates existing loans and never drifts the counter.
func (s *CatalogService) UpdateBookCopies(ctx context.Context, bookID string, totalCopies int) (domain.Book, error) {
	if bookID == "" {
		return domain.Book{}, domain.ErrInvalidID
	}
	if totalCopies < 0 {
		return domain.Book{}, domain.ErrInvalidCopyCount
	}

	var result domain.Book
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		book, err := s.repo.GetBookForUpdate(txCtx, bookID)
		if err != nil {
			return err
		}

		active, _, err := s.ledger.OutstandingLoans(txCtx, bookID)
		if err != nil {
			return err
		}

		available := totalCopies - active
		if available < 0 {
			available = 0
		}
		if err := s.repo.SetBookCopies(txCtx, bookID, totalCopies, available, available > 0); err != nil {
			return err
		}

		book.TotalCopies = totalCopies
		book.AvailableCopies = available
		book.IsAvailable = available > 0
		result = book
		return nil
	})
	if err != nil {
		return domain.Book{}, err
	}
	return result, nil
}

// DeleteBook destroys a title. Any loan on record vetoes the deletion:
// outstanding loans are reported first, then historical ones, so the caller
// knows whether waiting for returns would help.
func (s *CatalogService) DeleteBook(ctx context.Context, bookID string) error {
	if bookID == "" {
		return domain.ErrInvalidID
	}

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetBookForUpdate(txCtx, bookID); err != nil {
			return err
		}

		active, total, err := s.ledger.OutstandingLoans(txCtx, bookID)
		if err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%w: %d active loan(s)", domain.ErrBookHasLoans, active)
		}
		if total > 0 {
			return fmt.Errorf("%w: %d loan(s) in the history; mark the book unavailable instead", domain.ErrBookHasLoans, total)
		}

		return s.repo.DeleteBook(txCtx, bookID)
	})
}
