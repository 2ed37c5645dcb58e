package mockrepo

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/aidar/kickoff/internal/domain"
	"github.com/aidar/kickoff/internal/repository"
)

var (
	_ repository.MatchRepository = (*MatchRepository)(nil)
	_ repository.PlayerLookup    = (*PlayerLookup)(nil)
)

type MatchRepository struct {
	mock.Mock
}

func (r *MatchRepository) Get(ctx context.Context, matchID string) (*domain.Match, error) {
	args := r.Called(ctx, matchID)

	var m *domain.Match
	if args.Get(0) != nil {
		m = args.Get(0).(*domain.Match)
	}
	return m, args.Error(1)
}

func (r *MatchRepository) Create(ctx context.Context, match *domain.Match) (*domain.Match, error) {
	args := r.Called(ctx, match)

	var m *domain.Match
	if args.Get(0) != nil {
		m = args.Get(0).(*domain.Match)
	}
	return m, args.Error(1)
}

// Update applies mutate to the match returned by the first argument, if any,
// so tests can exercise the caller's mutator.
func (r *MatchRepository) Update(ctx context.Context, matchID string, mutate repository.MatchMutator) (*domain.Match, error) {
	args := r.Called(ctx, matchID, mutate)

	var m *domain.Match
	if args.Get(0) != nil {
		m = args.Get(0).(*domain.Match).Clone()
		if err := mutate(m); err != nil {
			return nil, err
		}
	}
	return m, args.Error(1)
}

func (r *MatchRepository) Delete(ctx context.Context, matchID string) error {
	args := r.Called(ctx, matchID)
	return args.Error(0)
}

func (r *MatchRepository) Find(ctx context.Context, filter domain.MatchFilter) ([]*domain.Match, error) {
	args := r.Called(ctx, filter)

	var ms []*domain.Match
	if args.Get(0) != nil {
		ms = args.Get(0).([]*domain.Match)
	}
	return ms, args.Error(1)
}

type PlayerLookup struct {
	mock.Mock
}

func (l *PlayerLookup) GetMany(ctx context.Context, userIDs []string) (map[string]domain.Player, error) {
	args := l.Called(ctx, userIDs)

	var players map[string]domain.Player
	if args.Get(0) != nil {
		players = args.Get(0).(map[string]domain.Player)
	}
	return players, args.Error(1)
}
