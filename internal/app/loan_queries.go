package app

import (
	"context"
	"time"

	"github.com/AlexP3rez/biblioteca-api/internal/clock"
	"github.com/AlexP3rez/biblioteca-api/internal/domain"
)

type LoanQueryRepository interface {
	GetLoan(ctx context.Context, loanID string) (domain.Loan, error)
	ListLoans(ctx context.Context, filter domain.LoanFilter, asOf time.Time) ([]domain.Loan, error)
}

// LoanView is a loan plus its derived overdue projection.
type LoanView struct {
	domain.Loan
	Overdue bool
}

// LoanQueryService is the read-only listing surface. It applies no lending
// logic beyond projecting the derived overdue flag.
type LoanQueryService struct {
	repo  LoanQueryRepository
	clock clock.Clock
}

func NewLoanQueryService(repo LoanQueryRepository, clk clock.Clock) *LoanQueryService {
	return &LoanQueryService{repo: repo, clock: clk}
}

func (s *LoanQueryService) GetLoan(ctx context.Context, loanID string) (LoanView, error) {
	if loanID == "" {
		return LoanView{}, domain.ErrInvalidID
	}
	loan, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return LoanView{}, err
	}
	return LoanView{Loan: loan, Overdue: loan.Overdue(s.clock.Now())}, nil
}

func (s *LoanQueryService) ListLoans(ctx context.Context, filter domain.LoanFilter) ([]LoanView, error) {
	if filter.State != "" {
		switch filter.State {
		case domain.LoanStateActive, domain.LoanStateRenewed, domain.LoanStateReturned:
		default:
			return nil, domain.ErrInvalidStatus
		}
	}

	now := s.clock.Now()
	loans, err := s.repo.ListLoans(ctx, filter, now)
	if err != nil {
		return nil, err
	}

	views := make([]LoanView, 0, len(loans))
	for _, loan := range loans {
		views = append(views, LoanView{Loan: loan, Overdue: loan.Overdue(now)})
	}
	return views, nil
}
