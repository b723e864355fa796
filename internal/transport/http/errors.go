package http

import (
	"errors"
	"net/http"

	"github.com/AlexP3rez/biblioteca-api/internal/domain"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeInvalidID            = "invalid_id"
	codeInvalidDueDate       = "invalid_due_date"
	codeInvalidCopyCount     = "invalid_copy_count"
	codeTitleRequired        = "title_required"
	codeNameRequired         = "name_required"
	codeEmailRequired        = "email_required"
	codeEmailTaken           = "email_taken"
	codeISBNTaken            = "isbn_taken"
	codeInvalidRole          = "invalid_role"
	codeInvalidStatus        = "invalid_status"
	codeBookNotFound         = "book_not_found"
	codeUserNotFound         = "user_not_found"
	codeLoanNotFound         = "loan_not_found"
	codeNoCopiesAvailable    = "no_copies_available"
	codeUserIneligible       = "user_ineligible"
	codeUserInactive         = "user_inactive"
	codeLoanNotActive        = "loan_not_active"
	codeRenewalLimitReached  = "renewal_limit_reached"
	codeLoanAlreadyReturned  = "loan_already_returned"
	codeBookHasLoans         = "book_has_loans"
	codeIdentityRequired     = "identity_required"
	codeForbidden            = "forbidden"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps a service error onto an HTTP status and a
// machine-readable code. Business-rule violations surface as 4xx with the
// violated rule in the message; a copy-overflow is an invariant defect and
// stays a 500 like any unknown error.
func writeDomainError(w http.ResponseWriter, err error) {
	for _, m := range domainErrorMap {
		if errors.Is(err, m.sentinel) {
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

var domainErrorMap = []struct {
	sentinel error
	status   int
	code     string
}{
	{domain.ErrInvalidID, http.StatusBadRequest, codeInvalidID},
	{domain.ErrInvalidDueDate, http.StatusBadRequest, codeInvalidDueDate},
	{domain.ErrInvalidCopyCount, http.StatusBadRequest, codeInvalidCopyCount},
	{domain.ErrTitleRequired, http.StatusBadRequest, codeTitleRequired},
	{domain.ErrNameRequired, http.StatusBadRequest, codeNameRequired},
	{domain.ErrEmailRequired, http.StatusBadRequest, codeEmailRequired},
	{domain.ErrInvalidRole, http.StatusBadRequest, codeInvalidRole},
	{domain.ErrInvalidStatus, http.StatusBadRequest, codeInvalidStatus},
	{domain.ErrBookNotFound, http.StatusNotFound, codeBookNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound, codeUserNotFound},
	{domain.ErrLoanNotFound, http.StatusNotFound, codeLoanNotFound},
	{domain.ErrEmailTaken, http.StatusConflict, codeEmailTaken},
	{domain.ErrISBNTaken, http.StatusConflict, codeISBNTaken},
	{domain.ErrNoCopiesAvailable, http.StatusConflict, codeNoCopiesAvailable},
	{domain.ErrUserIneligible, http.StatusConflict, codeUserIneligible},
	{domain.ErrUserInactive, http.StatusConflict, codeUserInactive},
	{domain.ErrLoanNotActive, http.StatusConflict, codeLoanNotActive},
	{domain.ErrRenewalLimitReached, http.StatusConflict, codeRenewalLimitReached},
	{domain.ErrLoanAlreadyReturned, http.StatusConflict, codeLoanAlreadyReturned},
	{domain.ErrBookHasLoans, http.StatusConflict, codeBookHasLoans},
}
