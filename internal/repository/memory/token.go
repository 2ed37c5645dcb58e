package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aidar/kickoff/internal/domain"
	"github.com/aidar/kickoff/internal/repository"
)

// TokenRepository хранит выданные токены в памяти процесса
type TokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]domain.IssuedToken
}

var _ repository.TokenRepository = (*TokenRepository)(nil)

// NewTokenRepository создает пустое хранилище токенов
func NewTokenRepository() *TokenRepository {
	return &TokenRepository{tokens: make(map[string]domain.IssuedToken)}
}

// Save запоминает выданный токен
func (r *TokenRepository) Save(_ context.Context, token domain.IssuedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[token.TokenID] = token
	return nil
}

// Exists сообщает, не отозван ли токен
func (r *TokenRepository) Exists(_ context.Context, tokenID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.tokens[tokenID]
	return ok, nil
}

// Delete отзывает токен; отсутствие записи не считается ошибкой
func (r *TokenRepository) Delete(_ context.Context, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, tokenID)
	return nil
}

// DeleteByUser отзывает все токены пользователя
func (r *TokenRepository) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, id)
		}
	}
	return nil
}

// DeleteExpired удаляет истекшие записи
func (r *TokenRepository) DeleteExpired(_ context.Context, before time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.tokens {
		if t.ExpiresAt.Before(before) {
			delete(r.tokens, id)
		}
	}
	return nil
}
