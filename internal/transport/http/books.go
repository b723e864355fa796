package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/AlexP3rez/biblioteca-api/internal/app"
	"github.com/AlexP3rez/biblioteca-api/internal/domain"
)

// Catalog is the surface the book handlers need.
type Catalog interface {
	AddBook(ctx context.Context, in app.AddBookInput) (domain.Book, error)
	GetBook(ctx context.Context, bookID string) (domain.Book, error)
	ListBooks(ctx context.Context) ([]domain.Book, error)
	UpdateBookCopies(ctx context.Context, bookID string, totalCopies int) (domain.Book, error)
	DeleteBook(ctx context.Context, bookID string) error
}

// HandleBooks serves POST /books (admin) and GET /books.
func HandleBooks(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			if !requireAdmin(w, r) {
				return
			}
			var req addBookRequest
			if err := decodeJSON(r.Body, &req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			book, err := catalog.AddBook(r.Context(), app.AddBookInput{
				ISBN:        req.ISBN,
				Title:       req.Title,
				Subtitle:    req.Subtitle,
				TotalCopies: req.TotalCopies,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, bookFromDomain(book))

		case http.MethodGet:
			books, err := catalog.ListBooks(r.Context())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := make([]bookResponse, 0, len(books))
			for _, b := range books {
				resp = append(resp, bookFromDomain(b))
			}
			writeJSON(w, http.StatusOK, resp)

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleBookByID serves GET /books/{id}, PUT /books/{id}/copies (admin) and
// DELETE /books/{id} (admin).
func HandleBookByID(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookID, copies, ok := parseBookPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch {
		case copies && r.Method == http.MethodPut:
			if !requireAdmin(w, r) {
				return
			}
			var req updateCopiesRequest
			if err := decodeJSON(r.Body, &req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			book, err := catalog.UpdateBookCopies(r.Context(), bookID, req.TotalCopies)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, bookFromDomain(book))

		case !copies && r.Method == http.MethodGet:
			book, err := catalog.GetBook(r.Context(), bookID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, bookFromDomain(book))

		case !copies && r.Method == http.MethodDelete:
			if !requireAdmin(w, r) {
				return
			}
			if err := catalog.DeleteBook(r.Context(), bookID); err != nil {
				writeDomainError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func parseBookPath(path string) (bookID string, copies bool, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "books" || parts[1] == "" {
		return "", false, false
	}
	if len(parts) == 3 {
		if parts[2] != "copies" {
			return "", false, false
		}
		return parts[1], true, true
	}
	return parts[1], false, true
}

type addBookRequest struct {
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	TotalCopies int    `json:"total_copies"`
}

type updateCopiesRequest struct {
	TotalCopies int `json:"total_copies"`
}

type bookResponse struct {
	ID              string    `json:"id"`
	ISBN            string    `json:"isbn,omitempty"`
	Title           string    `json:"title"`
	Subtitle        string    `json:"subtitle,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	IsAvailable     bool      `json:"is_available"`
	CreatedAt       time.Time `json:"created_at"`
}

func bookFromDomain(book domain.Book) bookResponse {
	return bookResponse{
		ID:              book.ID,
		ISBN:            book.ISBN,
		Title:           book.Title,
		Subtitle:        book.Subtitle,
		TotalCopies:     book.TotalCopies,
		AvailableCopies: book.AvailableCopies,
		IsAvailable:     book.IsAvailable,
		CreatedAt:       book.CreatedAt,
	}
}
