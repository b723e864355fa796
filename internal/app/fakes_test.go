package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AlexP3rez/biblioteca-api/internal/domain"
)

// fakeStore is an in-memory stand-in for the Postgres repositories. WithTx
// serializes callers the way a row lock would and restores a snapshot on
// error, so partial effects never leak out of a failed transaction.
type fakeStore struct {
	mu    sync.Mutex
	users map[string]domain.User
	books map[string]domain.Book
	loans map[string]domain.Loan
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]domain.User),
		books: make(map[string]domain.Book),
		loans: make(map[string]domain.Loan),
	}
}

func (f *fakeStore) addUser(u domain.User) {
	f.users[u.ID] = u
}

func (f *fakeStore) addBook(b domain.Book) {
	f.books[b.ID] = b
}

func (f *fakeStore) addLoan(l domain.Loan) {
	f.loans[l.ID] = l
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	usersSnap := copyMap(f.users)
	booksSnap := copyMap(f.books)
	loansSnap := copyMap(f.loans)

	if err := fn(ctx); err != nil {
		f.users = usersSnap
		f.books = booksSnap
		f.loans = loansSnap
		return err
	}
	return nil
}

func copyMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// LoanRepository

func (f *fakeStore) GetLoan(_ context.Context, loanID string) (domain.Loan, error) {
	loan, ok := f.loans[loanID]
	if !ok {
		return domain.Loan{}, domain.ErrLoanNotFound
	}
	return loan, nil
}

func (f *fakeStore) GetLoanForUpdate(ctx context.Context, loanID string) (domain.Loan, error) {
	return f.GetLoan(ctx, loanID)
}

func (f *fakeStore) CreateLoan(_ context.Context, loan domain.Loan) error {
	f.loans[loan.ID] = loan
	return nil
}

func (f *fakeStore) UpdateLoanRenewal(_ context.Context, loanID string, dueAt time.Time, renewalCount int, state domain.LoanState) error {
	loan, ok := f.loans[loanID]
	if !ok {
		return domain.ErrLoanNotFound
	}
	loan.DueAt = dueAt
	loan.RenewalCount = renewalCount
	loan.State = state
	f.loans[loanID] = loan
	return nil
}

func (f *fakeStore) UpdateLoanReturn(_ context.Context, loanID string, returnedAt time.Time, state domain.LoanState) error {
	loan, ok := f.loans[loanID]
	if !ok {
		return domain.ErrLoanNotFound
	}
	loan.ReturnedAt = &returnedAt
	loan.State = state
	f.loans[loanID] = loan
	return nil
}

func (f *fakeStore) CountOverdueLoans(_ context.Context, userID string, asOf time.Time) (int, error) {
	count := 0
	for _, loan := range f.loans {
		if loan.UserID == userID && loan.Overdue(asOf) {
			count++
		}
	}
	return count, nil
}

// InventoryRepository

func (f *fakeStore) GetBookForUpdate(_ context.Context, bookID string) (domain.Book, error) {
	book, ok := f.books[bookID]
	if !ok {
		return domain.Book{}, domain.ErrBookNotFound
	}
	return book, nil
}

func (f *fakeStore) CountOutstandingLoans(_ context.Context, bookID string) (int, error) {
	count := 0
	for _, loan := range f.loans {
		if loan.BookID == bookID && loan.Outstanding() {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CountLoansByBook(_ context.Context, bookID string) (int, error) {
	count := 0
	for _, loan := range f.loans {
		if loan.BookID == bookID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) SetBookAvailability(_ context.Context, bookID string, available int, isAvailable bool) error {
	book, ok := f.books[bookID]
	if !ok {
		return domain.ErrBookNotFound
	}
	book.AvailableCopies = available
	book.IsAvailable = isAvailable
	f.books[bookID] = book
	return nil
}

// CatalogRepository

func (f *fakeStore) CreateBook(_ context.Context, book domain.Book) error {
	f.books[book.ID] = book
	return nil
}

func (f *fakeStore) GetBook(ctx context.Context, bookID string) (domain.Book, error) {
	return f.GetBookForUpdate(ctx, bookID)
}

func (f *fakeStore) ListBooks(_ context.Context) ([]domain.Book, error) {
	books := make([]domain.Book, 0, len(f.books))
	for _, b := range f.books {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	return books, nil
}

func (f *fakeStore) SetBookCopies(_ context.Context, bookID string, total, available int, isAvailable bool) error {
	book, ok := f.books[bookID]
	if !ok {
		return domain.ErrBookNotFound
	}
	book.TotalCopies = total
	book.AvailableCopies = available
	book.IsAvailable = isAvailable
	f.books[bookID] = book
	return nil
}

func (f *fakeStore) DeleteBook(_ context.Context, bookID string) error {
	if _, ok := f.books[bookID]; !ok {
		return domain.ErrBookNotFound
	}
	delete(f.books, bookID)
	return nil
}

// UserRepository

func (f *fakeStore) CreateUser(_ context.Context, user domain.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, userID string) (domain.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeStore) GetUserStatus(ctx context.Context, userID string) (domain.UserStatus, error) {
	user, err := f.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Status, nil
}

func (f *fakeStore) SetUserStatus(_ context.Context, userID string, status domain.UserStatus) error {
	user, ok := f.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Status = status
	f.users[userID] = user
	return nil
}
