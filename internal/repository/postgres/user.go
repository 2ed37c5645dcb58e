package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/kickoff/internal/domain"
	"github.com/aidar/kickoff/internal/repository"
)

// UserRepository реализует repository.UserRepository для PostgreSQL
type UserRepository struct {
	db *pgxpool.Pool
}

var _ repository.UserRepository = (*UserRepository)(nil)

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create создает нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (user_id, name, email, password_hash, skill_level, positions)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		user.UserID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.SkillLevel,
		user.Positions,
	).Scan(&user.CreatedAt)
	if err != nil {
		// Check for unique constraint violation (email already registered)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return domain.ErrEmailTaken
		}
		return storageErr("create user", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, name, email, password_hash, skill_level, positions, created_at
		FROM users
		WHERE user_id = $1
	`
	return r.getOne(ctx, query, userID)
}

// GetByEmail получает пользователя по email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT user_id, name, email, password_hash, skill_level, positions, created_at
		FROM users
		WHERE email = $1
	`
	return r.getOne(ctx, query, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.UserID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.SkillLevel,
		&user.Positions,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storageErr("get user", err)
	}

	return &user, nil
}

// GetMany возвращает уровень мастерства и позиции игроков по списку ID
func (r *UserRepository) GetMany(ctx context.Context, userIDs []string) (map[string]domain.Player, error) {
	players := make(map[string]domain.Player, len(userIDs))
	if len(userIDs) == 0 {
		return players, nil
	}

	query := `
		SELECT user_id, name, skill_level, positions
		FROM users
		WHERE user_id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, storageErr("lookup players", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.UserID, &p.Name, &p.SkillLevel, &p.Positions); err != nil {
			return nil, storageErr("scan player", err)
		}
		players[p.UserID] = p
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("lookup players", err)
	}

	return players, nil
}

// Update сохраняет изменения профиля пользователя
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, password_hash = $4, skill_level = $5, positions = $6
		WHERE user_id = $1
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		user.UserID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.SkillLevel,
		user.Positions,
	).Scan(&user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return domain.ErrEmailTaken
		}
		return storageErr("update user", err)
	}

	return nil
}

// Delete удаляет пользователя вместе с его матчами и токенами (ON DELETE CASCADE)
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return storageErr("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
