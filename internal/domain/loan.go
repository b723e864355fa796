package domain

import "time"

type LoanState string

const (
	LoanStateActive   LoanState = "active"
	LoanStateRenewed  LoanState = "renewed"
	LoanStateReturned LoanState = "returned"
)

// Loan records one copy lent to one user for a bounded period. Loans are
// never deleted; returned loans stay on record and block deletion of the
// book they reference.
type Loan struct {
	ID           string
	UserID       string
	BookID       string
	BorrowedAt   time.Time
	DueAt        time.Time
	ReturnedAt   *time.Time
	State        LoanState
	RenewalCount int
	Notes        string
}

// LoanFilter narrows a loan listing. Zero values mean "no filter".
type LoanFilter struct {
	UserID      string
	BookID      string
	State       LoanState
	OverdueOnly bool
}

// Outstanding reports whether the loan still holds a copy.
func (l Loan) Outstanding() bool {
	return l.State == LoanStateActive || l.State == LoanStateRenewed
}

// Overdue reports whether the loan's due date has passed without a return,
// as of the given instant. Overdue is a read-time projection; the stored
// state stays active or renewed.
func (l Loan) Overdue(asOf time.Time) bool {
	if !l.Outstanding() {
		return false
	}
	day := asOf.UTC().Truncate(24 * time.Hour)
	return l.DueAt.Before(day)
}
