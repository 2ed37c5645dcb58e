package repository

import (
	"context"
	"time"

	"github.com/aidar/kickoff/internal/domain"
)

// MatchMutator изменяет матч внутри атомарной операции Update.
// Возврат ошибки отменяет изменение целиком.
type MatchMutator func(match *domain.Match) error

// MatchRepository определяет методы для работы с данными матчей
type MatchRepository interface {
	// Get получает матч по ID
	Get(ctx context.Context, matchID string) (*domain.Match, error)

	// Create сохраняет новый матч
	Create(ctx context.Context, match *domain.Match) (*domain.Match, error)

	// Update выполняет атомарное чтение-изменение-запись матча.
	// Параллельные вызовы для одного матча сериализуются.
	Update(ctx context.Context, matchID string, mutate MatchMutator) (*domain.Match, error)

	// Delete удаляет матч
	Delete(ctx context.Context, matchID string) error

	// Find возвращает матчи, удовлетворяющие фильтру, по возрастанию времени начала
	Find(ctx context.Context, filter domain.MatchFilter) ([]*domain.Match, error)
}

// PlayerLookup возвращает уровень мастерства и позиции игроков
type PlayerLookup interface {
	// GetMany возвращает игроков по ID; отсутствующие ID не попадают в результат
	GetMany(ctx context.Context, userIDs []string) (map[string]domain.Player, error)
}

// UserRepository определяет методы для работы с данными пользователей
type UserRepository interface {
	PlayerLookup

	// Create создает нового пользователя
	Create(ctx context.Context, user *domain.User) error

	// GetByID получает пользователя по ID
	GetByID(ctx context.Context, userID string) (*domain.User, error)

	// GetByEmail получает пользователя по email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update сохраняет изменения профиля; занятый email возвращает ErrEmailTaken
	Update(ctx context.Context, user *domain.User) error

	// Delete удаляет пользователя
	Delete(ctx context.Context, userID string) error
}

// TokenRepository хранит выданные токены. Токен без записи считается отозванным.
type TokenRepository interface {
	// Save запоминает выданный токен
	Save(ctx context.Context, token domain.IssuedToken) error

	// Exists сообщает, не отозван ли токен
	Exists(ctx context.Context, tokenID string) (bool, error)

	// Delete отзывает токен
	Delete(ctx context.Context, tokenID string) error

	// DeleteByUser отзывает все токены пользователя
	DeleteByUser(ctx context.Context, userID string) error

	// DeleteExpired удаляет записи, истекшие до указанного момента
	DeleteExpired(ctx context.Context, before time.Time) error
}
