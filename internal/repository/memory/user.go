package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/aidar/kickoff/internal/domain"
	"github.com/aidar/kickoff/internal/repository"
)

// UserRepository хранит пользователей в памяти процесса
type UserRepository struct {
	clock clock.Clock

	mu      sync.RWMutex
	users   map[string]*domain.User
	byEmail map[string]string
}

var _ repository.UserRepository = (*UserRepository)(nil)

// NewUserRepository создает пустое хранилище пользователей
func NewUserRepository(clock clock.Clock) *UserRepository {
	return &UserRepository{
		clock:   clock,
		users:   make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

// Create создает нового пользователя
func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return domain.ErrEmailTaken
	}

	user.CreatedAt = r.clock.Now().UTC()
	stored := *user
	stored.Positions = slices.Clone(user.Positions)
	r.users[user.UserID] = &stored
	r.byEmail[user.Email] = user.UserID

	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(_ context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	c.Positions = slices.Clone(u.Positions)
	return &c, nil
}

// GetByEmail получает пользователя по email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	userID, ok := r.byEmail[email]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.GetByID(ctx, userID)
}

// GetMany возвращает игроков по списку ID
func (r *UserRepository) GetMany(_ context.Context, userIDs []string) (map[string]domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	players := make(map[string]domain.Player, len(userIDs))
	for _, id := range userIDs {
		if u, ok := r.users[id]; ok {
			players[id] = u.Player()
		}
	}
	return players, nil
}

// Update сохраняет изменения профиля пользователя
func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[user.UserID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if owner, taken := r.byEmail[user.Email]; taken && owner != user.UserID {
		return domain.ErrEmailTaken
	}

	stored := *user
	stored.CreatedAt = current.CreatedAt
	stored.Positions = slices.Clone(user.Positions)
	delete(r.byEmail, current.Email)
	r.users[user.UserID] = &stored
	r.byEmail[user.Email] = user.UserID
	user.CreatedAt = current.CreatedAt

	return nil
}

// Delete удаляет пользователя
func (r *UserRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.users, userID)

	return nil
}
