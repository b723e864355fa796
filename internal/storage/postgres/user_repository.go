package postgres

import (
	"context"
	"fmt"

	"github.com/AlexP3rez/biblioteca-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) CreateUser(ctx context.Context, user domain.User) error {
	const stmt = `
INSERT INTO users (id, full_name, email, role, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.exec(ctx, stmt,
		user.ID,
		user.FullName,
		user.Email,
		user.Role,
		user.Status,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetUser(ctx context.Context, userID string) (domain.User, error) {
	const query = `SELECT id, full_name, email, role, status, created_at FROM users WHERE id = $1`

	var u domain.User
	var role, status string
	err := r.queryRow(ctx, query, userID).Scan(&u.ID, &u.FullName, &u.Email, &role, &status, &u.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.User{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	u.Role = domain.UserRole(role)
	u.Status = domain.UserStatus(status)
	return u, nil
}

func (r *UserRepository) GetUserStatus(ctx context.Context, userID string) (domain.UserStatus, error) {
	const query = `SELECT status FROM users WHERE id = $1`

	var status string
	if err := r.queryRow(ctx, query, userID).Scan(&status); err != nil {
		if isInvalidUUID(err) {
			return "", domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("get user status: %w", err)
	}
	return domain.UserStatus(status), nil
}

func (r *UserRepository) SetUserStatus(ctx context.Context, userID string, status domain.UserStatus) error {
	const stmt = `UPDATE users SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, userID, status)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *UserRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
