package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/kickoff/internal/domain"
	"github.com/aidar/kickoff/internal/repository"
)

// TokenRepository реализует repository.TokenRepository для PostgreSQL
type TokenRepository struct {
	db *pgxpool.Pool
}

var _ repository.TokenRepository = (*TokenRepository)(nil)

// NewTokenRepository создает новый экземпляр TokenRepository
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save запоминает выданный токен
func (r *TokenRepository) Save(ctx context.Context, token domain.IssuedToken) error {
	query := `
		INSERT INTO tokens (token_id, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_id) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, token.TokenID, token.UserID, token.ExpiresAt); err != nil {
		return storageErr("save token", err)
	}
	return nil
}

// Exists сообщает, не отозван ли токен
func (r *TokenRepository) Exists(ctx context.Context, tokenID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tokens WHERE token_id = $1)`, tokenID).Scan(&exists)
	if err != nil {
		return false, storageErr("check token", err)
	}
	return exists, nil
}

// Delete отзывает токен
func (r *TokenRepository) Delete(ctx context.Context, tokenID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM tokens WHERE token_id = $1`, tokenID); err != nil {
		return storageErr("delete token", err)
	}
	return nil
}

// DeleteByUser отзывает все токены пользователя
func (r *TokenRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM tokens WHERE user_id = $1`, userID); err != nil {
		return storageErr("delete user tokens", err)
	}
	return nil
}

// DeleteExpired удаляет записи, истекшие до указанного момента
func (r *TokenRepository) DeleteExpired(ctx context.Context, before time.Time) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM tokens WHERE expires_at < $1`, before); err != nil {
		return storageErr("delete expired tokens", err)
	}
	return nil
}
