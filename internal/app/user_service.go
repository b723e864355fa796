package app

import (
	"context"

	"github.com/AlexP3rez/biblioteca-api/internal/clock"
	"github.com/AlexP3rez/biblioteca-api/internal/domain"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, userID string) (domain.User, error)
	GetUserStatus(ctx context.Context, userID string) (domain.UserStatus, error)
	SetUserStatus(ctx context.Context, userID string, status domain.UserStatus) error
}

// UserService is the thin member directory. The lending core only reads a
// user's status through the eligibility gate.
type UserService struct {
	repo  UserRepository
	clock clock.Clock
}

func NewUserService(repo UserRepository, clk clock.Clock) *UserService {
	return &UserService{repo: repo, clock: clk}
}

type AddUserInput struct {
	FullName string
	Email    string
	Role     domain.UserRole
}

func (s *UserService) AddUser(ctx context.Context, in AddUserInput) (domain.User, error) {
	if in.FullName == "" {
		return domain.User{}, domain.ErrNameRequired
	}
	if in.Email == "" {
		return domain.User{}, domain.ErrEmailRequired
	}
	if !in.Role.Valid() {
		return domain.User{}, domain.ErrInvalidRole
	}

	user := domain.User{
		ID:        newID(),
		FullName:  in.FullName,
		Email:     in.Email,
		Role:      in.Role,
		Status:    domain.UserStatusActive,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	if userID == "" {
		return domain.User{}, domain.ErrInvalidID
	}
	return s.repo.GetUser(ctx, userID)
}

func (s *UserService) GetUserStatus(ctx context.Context, userID string) (domain.UserStatus, error) {
	if userID == "" {
		return "", domain.ErrInvalidID
	}
	return s.repo.GetUserStatus(ctx, userID)
}

func (s *UserService) SetUserStatus(ctx context.Context, userID string, status domain.UserStatus) error {
	if userID == "" {
		return domain.ErrInvalidID
	}
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}
	return s.repo.SetUserStatus(ctx, userID, status)
}
