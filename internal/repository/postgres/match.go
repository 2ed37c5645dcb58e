package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/kickoff/internal/domain"
	"github.com/aidar/kickoff/internal/repository"
)

const matchColumns = `
	match_id, organizer_id, field_name, city_name, start_date_time, max_players,
	cleats_allowed, tackles_allowed, players, team1, team2, gk_rotation,
	version, created_at, updated_at
`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// MatchRepository реализует repository.MatchRepository для PostgreSQL
type MatchRepository struct {
	db    *pgxpool.Pool
	clock clock.Clock
}

var _ repository.MatchRepository = (*MatchRepository)(nil)

// NewMatchRepository создает новый экземпляр MatchRepository
func NewMatchRepository(db *pgxpool.Pool, clock clock.Clock) *MatchRepository {
	return &MatchRepository{db: db, clock: clock}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*domain.Match, error) {
	var m domain.Match
	var rotation []byte

	err := row.Scan(
		&m.MatchID,
		&m.OrganizerID,
		&m.FieldName,
		&m.CityName,
		&m.StartDateTime,
		&m.MaxPlayers,
		&m.CleatsAllowed,
		&m.TacklesAllowed,
		&m.Players,
		&m.Team1,
		&m.Team2,
		&rotation,
		&m.Version,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(rotation) > 0 {
		if err := json.Unmarshal(rotation, &m.GKRotation); err != nil {
			return nil, fmt.Errorf("decode gk_rotation: %w", err)
		}
	}

	return &m, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}

// Get получает матч по ID
func (r *MatchRepository) Get(ctx context.Context, matchID string) (*domain.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE match_id = $1`

	m, err := scanMatch(r.db.QueryRow(ctx, query, matchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, storageErr("get match", err)
	}

	return m, nil
}

// Create сохраняет новый матч
func (r *MatchRepository) Create(ctx context.Context, match *domain.Match) (*domain.Match, error) {
	rotation, err := json.Marshal(match.GKRotation)
	if err != nil {
		return nil, fmt.Errorf("encode gk_rotation: %w", err)
	}

	now := r.clock.Now().UTC()
	query := `
		INSERT INTO matches (
			match_id, organizer_id, field_name, city_name, start_date_time, max_players,
			cleats_allowed, tackles_allowed, players, team1, team2, gk_rotation,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1, $13, $13)
		RETURNING ` + matchColumns

	created, err := scanMatch(r.db.QueryRow(ctx, query,
		match.MatchID,
		match.OrganizerID,
		match.FieldName,
		match.CityName,
		match.StartDateTime,
		match.MaxPlayers,
		match.CleatsAllowed,
		match.TacklesAllowed,
		nonNil(match.Players),
		nonNil(match.Team1),
		nonNil(match.Team2),
		string(rotation),
		now,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23503" { // foreign_key_violation
				return nil, domain.ErrUserNotFound
			}
			if pgErr.Code == "23514" { // check_violation
				return nil, fmt.Errorf("%w: %s", domain.ErrValidation, pgErr.ConstraintName)
			}
		}
		return nil, storageErr("create match", err)
	}

	return created, nil
}

// Update выполняет атомарное чтение-изменение-запись под блокировкой строки
func (r *MatchRepository) Update(ctx context.Context, matchID string, mutate repository.MatchMutator) (*domain.Match, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // Ignore error as it will fail if transaction was committed
	}()

	// Lock the row so concurrent mutations of the same match are serialized
	query := `SELECT ` + matchColumns + ` FROM matches WHERE match_id = $1 FOR UPDATE`
	m, err := scanMatch(tx.QueryRow(ctx, query, matchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, storageErr("lock match", err)
	}

	if err := mutate(m); err != nil {
		return nil, err
	}

	rotation, err := json.Marshal(m.GKRotation)
	if err != nil {
		return nil, fmt.Errorf("encode gk_rotation: %w", err)
	}

	updateQuery := `
		UPDATE matches
		SET players = $2, team1 = $3, team2 = $4, gk_rotation = $5,
		    version = version + 1, updated_at = $6
		WHERE match_id = $1
		RETURNING ` + matchColumns

	updated, err := scanMatch(tx.QueryRow(ctx, updateQuery,
		matchID,
		nonNil(m.Players),
		nonNil(m.Team1),
		nonNil(m.Team2),
		string(rotation),
		r.clock.Now().UTC(),
	))
	if err != nil {
		return nil, storageErr("update match", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("commit match update", err)
	}

	return updated, nil
}

// Delete удаляет матч
func (r *MatchRepository) Delete(ctx context.Context, matchID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM matches WHERE match_id = $1`, matchID)
	if err != nil {
		return storageErr("delete match", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrMatchNotFound
	}

	return nil
}

// Find возвращает матчи по городу и/или участнику
func (r *MatchRepository) Find(ctx context.Context, filter domain.MatchFilter) ([]*domain.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE ($1::text = '' OR city_name ILIKE '%' || $1::text || '%')
		  AND ($2::text = '' OR $2::text = ANY(players))
		ORDER BY start_date_time, match_id
	`

	city := likeEscaper.Replace(strings.TrimSpace(filter.City))
	rows, err := r.db.Query(ctx, query, city, filter.PlayerID)
	if err != nil {
		return nil, storageErr("find matches", err)
	}
	defer rows.Close()

	matches := []*domain.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, storageErr("scan match", err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("find matches", err)
	}

	return matches, nil
}

// nonNil keeps NOT NULL array columns from receiving SQL NULL
func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
