package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AlexP3rez/biblioteca-api/internal/clock"
	"github.com/AlexP3rez/biblioteca-api/internal/domain"
)

const dialectPostgres = "postgres"

// LoanQueryRepository serves the read-only loan listing. The filter is
// dynamic, so the query is built with goqu instead of string concatenation.
type LoanQueryRepository struct {
	pool *pgxpool.Pool
}

func NewLoanQueryRepository(pool *pgxpool.Pool) *LoanQueryRepository {
	return &LoanQueryRepository{pool: pool}
}

func (r *LoanQueryRepository) GetLoan(ctx context.Context, loanID string) (domain.Loan, error) {
	const query = `
SELECT id, user_id, book_id, borrowed_at, due_at, returned_at, state, renewal_count, COALESCE(notes, '')
FROM loans
WHERE id = $1`

	var l domain.Loan
	var state string
	err := r.pool.QueryRow(ctx, query, loanID).
		Scan(&l.ID, &l.UserID, &l.BookID, &l.BorrowedAt, &l.DueAt, &l.ReturnedAt, &state, &l.RenewalCount, &l.Notes)
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

func (r *LoanQueryRepository) ListLoans(ctx context.Context, filter domain.LoanFilter, asOf time.Time) ([]domain.Loan, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From("loans").
		Select("id", "user_id", "book_id", "borrowed_at", "due_at", "returned_at", "state", "renewal_count", goqu.COALESCE(goqu.C("notes"), "").As("notes")).
		Order(goqu.I("borrowed_at").Desc())

	if filter.UserID != "" {
		stmt = stmt.Where(goqu.C("user_id").Eq(filter.UserID))
	}
	if filter.BookID != "" {
		stmt = stmt.Where(goqu.C("book_id").Eq(filter.BookID))
	}
	if filter.State != "" {
		stmt = stmt.Where(goqu.C("state").Eq(string(filter.State)))
	}
	if filter.OverdueOnly {
		stmt = stmt.Where(
			goqu.C("state").In(string(domain.LoanStateActive), string(domain.LoanStateRenewed)),
			goqu.C("due_at").Lt(clock.Day(asOf)),
		)
	}

	query, args, err := stmt.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build loan query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		var l domain.Loan
		var state string
		if err := rows.Scan(&l.ID, &l.UserID, &l.BookID, &l.BorrowedAt, &l.DueAt, &l.ReturnedAt, &state, &l.RenewalCount, &l.Notes); err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		l.State = domain.LoanState(state)
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return loans, nil
}
