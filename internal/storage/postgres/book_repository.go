package postgres

import (
	"context"
	"fmt"

	"github.com/AlexP3rez/biblioteca-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookRepository backs both the inventory ledger and the catalog service.
// Loan counts live here because availability is defined against the loans
// table, the same way capacity math lives with the inventory rows.
type BookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

func (r *BookRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const bookColumns = `id, COALESCE(isbn, ''), title, COALESCE(subtitle, ''), total_copies, available_copies, is_available, created_at`

func (r *BookRepository) GetBook(ctx context.Context, bookID string) (domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	return r.scanBook(r.queryRow(ctx, query, bookID))
}

func (r *BookRepository) GetBookForUpdate(ctx context.Context, bookID string) (domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1 FOR UPDATE`
	return r.scanBook(r.queryRow(ctx, query, bookID))
}

func (r *BookRepository) scanBook(row pgx.Row) (domain.Book, error) {
	var b domain.Book
	err := row.Scan(&b.ID, &b.ISBN, &b.Title, &b.Subtitle, &b.TotalCopies, &b.AvailableCopies, &b.IsAvailable, &b.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Book{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Book{}, domain.ErrBookNotFound
		}
		return domain.Book{}, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (r *BookRepository) ListBooks(ctx context.Context) ([]domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY created_at DESC`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(&b.ID, &b.ISBN, &b.Title, &b.Subtitle, &b.TotalCopies, &b.AvailableCopies, &b.IsAvailable, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *BookRepository) CreateBook(ctx context.Context, book domain.Book) error {
	const stmt = `
INSERT INTO books (id, isbn, title, subtitle, total_copies, available_copies, is_available, created_at)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)`

	_, err := r.exec(ctx, stmt,
		book.ID,
		book.ISBN,
		book.Title,
		book.Subtitle,
		book.TotalCopies,
		book.AvailableCopies,
		book.IsAvailable,
		book.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "books_isbn_key") {
			return domain.ErrISBNTaken
		}
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

func (r *BookRepository) SetBookAvailability(ctx context.Context, bookID string, available int, isAvailable bool) error {
	const stmt = `UPDATE books SET available_copies = $2, is_available = $3 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, bookID, available, isAvailable)
	if err != nil {
		return fmt.Errorf("set book availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *BookRepository) SetBookCopies(ctx context.Context, bookID string, total, available int, isAvailable bool) error {
	const stmt = `UPDATE books SET total_copies = $2, available_copies = $3, is_available = $4 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, bookID, total, available, isAvailable)
	if err != nil {
		return fmt.Errorf("set book copies: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *BookRepository) DeleteBook(ctx context.Context, bookID string) error {
	const stmt = `DELETE FROM books WHERE id = $1`

	tag, err := r.exec(ctx, stmt, bookID)
	if err != nil {
		if isForeignKeyViolation(err, "loans_book_id_fkey") {
			return domain.ErrBookHasLoans
		}
		return fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *BookRepository) CountOutstandingLoans(ctx context.Context, bookID string) (int, error) {
	const query = `
SELECT COUNT(*)
FROM loans
WHERE book_id = $1 AND state IN ('active', 'renewed')`

	var total int
	if err := r.queryRow(ctx, query, bookID).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count outstanding loans: %w", err)
	}
	return total, nil
}

func (r *BookRepository) CountLoansByBook(ctx context.Context, bookID string) (int, error) {
	const query = `SELECT COUNT(*) FROM loans WHERE book_id = $1`

	var total int
	if err := r.queryRow(ctx, query, bookID).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count loans by book: %w", err)
	}
	return total, nil
}

func (r *BookRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *BookRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *BookRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
