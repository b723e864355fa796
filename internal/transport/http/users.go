package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/AlexP3rez/biblioteca-api/internal/app"
	"github.com/AlexP3rez/biblioteca-api/internal/domain"
)

// Directory is the member-directory surface the user handlers need.
type Directory interface {
	AddUser(ctx context.Context, in app.AddUserInput) (domain.User, error)
	GetUser(ctx context.Context, userID string) (domain.User, error)
	SetUserStatus(ctx context.Context, userID string, status domain.UserStatus) error
}

// HandleUsers serves POST /users (admin).
func HandleUsers(directory Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		if !requireAdmin(w, r) {
			return
		}

		var req addUserRequest
		if err := decodeJSON(r.Body, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		user, err := directory.AddUser(r.Context(), app.AddUserInput{
			FullName: req.FullName,
			Email:    req.Email,
			Role:     domain.UserRole(req.Role),
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, userFromDomain(user))
	}
}

// HandleUserByID serves GET /users/{id} and PUT /users/{id}/status (admin).
func HandleUserByID(directory Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, status, ok := parseUserPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch {
		case status && r.Method == http.MethodPut:
			if !requireAdmin(w, r) {
				return
			}
			var req setStatusRequest
			if err := decodeJSON(r.Body, &req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			if err := directory.SetUserStatus(r.Context(), userID, domain.UserStatus(req.Status)); err != nil {
				writeDomainError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		case !status && r.Method == http.MethodGet:
			user, err := directory.GetUser(r.Context(), userID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, userFromDomain(user))

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func parseUserPath(path string) (userID string, status bool, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "users" || parts[1] == "" {
		return "", false, false
	}
	if len(parts) == 3 {
		if parts[2] != "status" {
			return "", false, false
		}
		return parts[1], true, true
	}
	return parts[1], false, true
}

type addUserRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

type userResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func userFromDomain(user domain.User) userResponse {
	return userResponse{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Role:      string(user.Role),
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
	}
}
