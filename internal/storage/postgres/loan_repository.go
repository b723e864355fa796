package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexP3rez/biblioteca-api/internal/clock"
	"github.com/AlexP3rez/biblioteca-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LoanRepository struct {
	pool *pgxpool.Pool
}

func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

func (r *LoanRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const loanColumns = `id, user_id, book_id, borrowed_at, due_at, returned_at, state, renewal_count, COALESCE(notes, '')`

func (r *LoanRepository) GetLoan(ctx context.Context, loanID string) (domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	return r.scanLoan(r.queryRow(ctx, query, loanID))
}

func (r *LoanRepository) GetLoanForUpdate(ctx context.Context, loanID string) (domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`
	return r.scanLoan(r.queryRow(ctx, query, loanID))
}

func (r *LoanRepository) scanLoan(row pgx.Row) (domain.Loan, error) {
	var l domain.Loan
	var state string
	err := row.Scan(&l.ID, &l.UserID, &l.BookID, &l.BorrowedAt, &l.DueAt, &l.ReturnedAt, &state, &l.RenewalCount, &l.Notes)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Loan{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Loan{}, domain.ErrLoanNotFound
		}
		return domain.Loan{}, fmt.Errorf("get loan: %w", err)
	}
	l.State = domain.LoanState(state)
	return l, nil
}

func (r *LoanRepository) CreateLoan(ctx context.Context, loan domain.Loan) error {
	const stmt = `
INSERT INTO loans (id, user_id, book_id, borrowed_at, due_at, state, renewal_count, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))`

	_, err := r.exec(ctx, stmt,
		loan.ID,
		loan.UserID,
		loan.BookID,
		loan.BorrowedAt,
		loan.DueAt,
		loan.State,
		loan.RenewalCount,
		loan.Notes,
	)
	if err != nil {
		if isForeignKeyViolation(err, "loans_user_id_fkey") {
			return domain.ErrUserNotFound
		}
		if isForeignKeyViolation(err, "loans_book_id_fkey") {
			return domain.ErrBookNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create loan: %w", err)
	}
	return nil
}

func (r *LoanRepository) UpdateLoanRenewal(ctx context.Context, loanID string, dueAt time.Time, renewalCount int, state domain.LoanState) error {
	const stmt = `UPDATE loans SET due_at = $2, renewal_count = $3, state = $4 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, loanID, dueAt, renewalCount, state)
	if err != nil {
		return fmt.Errorf("update loan renewal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

func (r *LoanRepository) UpdateLoanReturn(ctx context.Context, loanID string, returnedAt time.Time, state domain.LoanState) error {
	const stmt = `UPDATE loans SET returned_at = $2, state = $3 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, loanID, returnedAt, state)
	if err != nil {
		return fmt.Errorf("update loan return: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

// CountOverdueLoans counts loans still holding a copy whose due date lies
// before asOf's calendar day. Overdue is derived here, never stored.
func (r *LoanRepository) CountOverdueLoans(ctx context.Context, userID string, asOf time.Time) (int, error) {
	const query = `
SELECT COUNT(*)
FROM loans
WHERE user_id = $1 AND state IN ('active', 'renewed') AND due_at < $2`

	var total int
	if err := r.queryRow(ctx, query, userID, clock.Day(asOf)).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count overdue loans: %w", err)
	}
	return total, nil
}

func (r *LoanRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *LoanRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
