package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AlexP3rez/biblioteca-api/internal/app"
	"github.com/AlexP3rez/biblioteca-api/internal/domain"
)

type stubCatalog struct {
	book  domain.Book
	books []domain.Book
	err   error
}

func (s *stubCatalog) AddBook(_ context.Context, _ app.AddBookInput) (domain.Book, error) {
	return s.book, s.err
}

func (s *stubCatalog) GetBook(_ context.Context, _ string) (domain.Book, error) {
	return s.book, s.err
}

func (s *stubCatalog) ListBooks(_ context.Context) ([]domain.Book, error) {
	return s.books, s.err
}

func (s *stubCatalog) UpdateBookCopies(_ context.Context, _ string, _ int) (domain.Book, error) {
	return s.book, s.err
}

func (s *stubCatalog) DeleteBook(_ context.Context, _ string) error {
	return s.err
}

func asRole(req *http.Request, role domain.UserRole) *http.Request {
	id := Identity{UserID: "caller-1", Role: role}
	return req.WithContext(context.WithValue(req.Context(), identityKey{}, id))
}

func TestHandleBooks(t *testing.T) {
	t.Parallel()

	book := domain.Book{
		ID:              "book-1",
		Title:           "Dune",
		TotalCopies:     3,
		AvailableCopies: 3,
		IsAvailable:     true,
		CreatedAt:       time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name           string
		method         string
		role           domain.UserRole
		body           io.Reader
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "created",
			method:         http.MethodPost,
			role:           domain.RoleAdministrator,
			body:           strings.NewReader(`{"title":"Dune","total_copies":3}`),
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"available_copies":3`,
		},
		{
			name:           "create requires admin",
			method:         http.MethodPost,
			role:           domain.RoleStudent,
			body:           strings.NewReader(`{"title":"Dune"}`),
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "invalid body",
			method:         http.MethodPost,
			role:           domain.RoleAdministrator,
			body:           strings.NewReader(`{"title":`),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing title",
			method:         http.MethodPost,
			role:           domain.RoleAdministrator,
			body:           strings.NewReader(`{"total_copies":1}`),
			serviceErr:     domain.ErrTitleRequired,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "duplicate isbn",
			method:         http.MethodPost,
			role:           domain.RoleAdministrator,
			body:           strings.NewReader(`{"title":"Dune","isbn":"9780441013593"}`),
			serviceErr:     domain.ErrISBNTaken,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "listing is open to members",
			method:         http.MethodGet,
			role:           domain.RoleStudent,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "method not allowed",
			method:         http.MethodPut,
			role:           domain.RoleAdministrator,
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			catalog := &stubCatalog{book: book, books: []domain.Book{book}, err: tt.serviceErr}
			req := asRole(httptest.NewRequest(tt.method, "/books", tt.body), tt.role)
			rec := httptest.NewRecorder()

			HandleBooks(catalog).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestHandleBookByID(t *testing.T) {
	t.Parallel()

	book := domain.Book{
		ID:              "book-1",
		Title:           "Dune",
		TotalCopies:     5,
		AvailableCopies: 4,
		IsAvailable:     true,
	}

	tests := []struct {
		name           string
		method         string
		path           string
		role           domain.UserRole
		body           io.Reader
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "get",
			method:         http.MethodGet,
			path:           "/books/book-1",
			role:           domain.RoleStudent,
			expectedStatus: http.StatusOK,
			expectedSubstr: `"title":"Dune"`,
		},
		{
			name:           "get unknown",
			method:         http.MethodGet,
			path:           "/books/missing",
			role:           domain.RoleStudent,
			serviceErr:     domain.ErrBookNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "update copies",
			method:         http.MethodPut,
			path:           "/books/book-1/copies",
			role:           domain.RoleAdministrator,
			body:           strings.NewReader(`{"total_copies":5}`),
			expectedStatus: http.StatusOK,
			expectedSubstr: `"total_copies":5`,
		},
		{
			name:           "update copies requires admin",
			method:         http.MethodPut,
			path:           "/books/book-1/copies",
			role:           domain.RoleInstructor,
			body:           strings.NewReader(`{"total_copies":5}`),
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "delete",
			method:         http.MethodDelete,
			path:           "/books/book-1",
			role:           domain.RoleAdministrator,
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "delete vetoed by loans",
			method:         http.MethodDelete,
			path:           "/books/book-1",
			role:           domain.RoleAdministrator,
			serviceErr:     domain.ErrBookHasLoans,
			expectedStatus: http.StatusConflict,
			expectedSubstr: `"code":"book_has_loans"`,
		},
		{
			name:           "delete requires admin",
			method:         http.MethodDelete,
			path:           "/books/book-1",
			role:           domain.RoleStudent,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "unknown subresource",
			method:         http.MethodPut,
			path:           "/books/book-1/availability",
			role:           domain.RoleAdministrator,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			catalog := &stubCatalog{book: book, err: tt.serviceErr}
			req := asRole(httptest.NewRequest(tt.method, tt.path, tt.body), tt.role)
			rec := httptest.NewRecorder()

			HandleBookByID(catalog).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}
