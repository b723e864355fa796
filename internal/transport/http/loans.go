package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/AlexP3rez/biblioteca-api/internal/app"
	"github.com/AlexP3rez/biblioteca-api/internal/domain"
)

// LoanOpener is the minimal interface needed to open a loan.
type LoanOpener interface {
	OpenLoan(ctx context.Context, in app.OpenLoanInput) (domain.Loan, error)
}

// LoanMutator covers the lifecycle operations on an existing loan.
type LoanMutator interface {
	RenewLoan(ctx context.Context, loanID string) (domain.Loan, error)
	ReturnLoan(ctx context.Context, loanID string) (domain.Loan, error)
}

// LoanReader serves the read-only projection with the derived overdue flag.
type LoanReader interface {
	GetLoan(ctx context.Context, loanID string) (app.LoanView, error)
	ListLoans(ctx context.Context, filter domain.LoanFilter) ([]app.LoanView, error)
}

// HandleLoans serves POST /loans (borrow) and GET /loans (listing).
func HandleLoans(opener LoanOpener, reader LoanReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handleOpenLoan(w, r, opener)
		case http.MethodGet:
			handleListLoans(w, r, reader)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func handleOpenLoan(w http.ResponseWriter, r *http.Request, opener LoanOpener) {
	var req openLoanRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	userID := req.UserID
	if userID == "" {
		// Borrow for the authenticated caller when the body names nobody.
		if id, ok := IdentityFrom(r.Context()); ok {
			userID = id.UserID
		}
	}

	loan, err := opener.OpenLoan(r.Context(), app.OpenLoanInput{
		UserID: userID,
		BookID: req.BookID,
		DueAt:  req.DueAt,
		Notes:  req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, loanFromDomain(loan, false))
}

func handleListLoans(w http.ResponseWriter, r *http.Request, reader LoanReader) {
	q := r.URL.Query()
	filter := domain.LoanFilter{
		UserID:      q.Get("user_id"),
		BookID:      q.Get("book_id"),
		State:       domain.LoanState(q.Get("state")),
		OverdueOnly: q.Get("overdue") == "true",
	}

	views, err := reader.ListLoans(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]loanResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, loanFromDomain(v.Loan, v.Overdue))
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleLoanActions serves GET /loans/{id}, POST /loans/{id}/renew and
// POST /loans/{id}/return.
func HandleLoanActions(mutator LoanMutator, reader LoanReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loanID, action, ok := parseLoanPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			view, err := reader.GetLoan(r.Context(), loanID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, loanFromDomain(view.Loan, view.Overdue))

		case action == "renew" && r.Method == http.MethodPost:
			loan, err := mutator.RenewLoan(r.Context(), loanID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, loanFromDomain(loan, false))

		case action == "return" && r.Method == http.MethodPost:
			loan, err := mutator.ReturnLoan(r.Context(), loanID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, loanFromDomain(loan, false))

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func parseLoanPath(path string) (loanID, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "loans" || parts[1] == "" {
		return "", "", false
	}
	if len(parts) == 2 {
		return parts[1], "", true
	}
	if parts[2] != "renew" && parts[2] != "return" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

type openLoanRequest struct {
	UserID string    `json:"user_id"`
	BookID string    `json:"book_id"`
	DueAt  time.Time `json:"due_at"`
	Notes  string    `json:"notes"`
}

type loanResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	BookID       string     `json:"book_id"`
	BorrowedAt   time.Time  `json:"borrowed_at"`
	DueAt        time.Time  `json:"due_at"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
	State        string     `json:"state"`
	RenewalCount int        `json:"renewal_count"`
	Overdue      bool       `json:"overdue"`
	Notes        string     `json:"notes,omitempty"`
}

func loanFromDomain(loan domain.Loan, overdue bool) loanResponse {
	return loanResponse{
		ID:           loan.ID,
		UserID:       loan.UserID,
		BookID:       loan.BookID,
		BorrowedAt:   loan.BorrowedAt,
		DueAt:        loan.DueAt,
		ReturnedAt:   loan.ReturnedAt,
		State:        string(loan.State),
		RenewalCount: loan.RenewalCount,
		Overdue:      overdue,
		Notes:        loan.Notes,
	}
}
