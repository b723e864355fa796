package domain

import "errors"

var (
	ErrBookNotFound        = errors.New("book not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrNoCopiesAvailable   = errors.New("no copies available")
	ErrUserIneligible      = errors.New("user has overdue loans")
	ErrUserInactive        = errors.New("user account is not active")
	ErrLoanNotActive       = errors.New("loan is not active")
	ErrRenewalLimitReached = errors.New("renewal limit reached")
	ErrLoanAlreadyReturned = errors.New("loan already returned")
	ErrBookHasLoans        = errors.New("book has loans on record")
	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidDueDate      = errors.New("due date must be in the future")
	ErrInvalidCopyCount    = errors.New("copy count must not be negative")
	ErrTitleRequired       = errors.New("title is required")
	ErrNameRequired        = errors.New("name is required")
	ErrEmailRequired       = errors.New("email is required")
	ErrEmailTaken          = errors.New("email already registered")
	ErrISBNTaken           = errors.New("isbn already registered")
	ErrInvalidRole         = errors.New("invalid user role")
	ErrInvalidStatus       = errors.New("invalid user status")

	// ErrCopyOverflow means a release would push available copies past the
	// total. It signals a bug in the caller, never a client error.
	ErrCopyOverflow = errors.New("available copies would exceed total copies")
)
