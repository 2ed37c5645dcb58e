package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/aidar/kickoff/internal/domain"
	"github.com/aidar/kickoff/internal/repository"
)

// MatchRepository хранит матчи в памяти процесса.
// Мутации одного матча сериализуются отдельной блокировкой на матч.
type MatchRepository struct {
	clock clock.Clock

	mu      sync.RWMutex
	matches map[string]*domain.Match
	locks   map[string]*sync.Mutex
}

var _ repository.MatchRepository = (*MatchRepository)(nil)

// NewMatchRepository создает пустое хранилище матчей
func NewMatchRepository(clock clock.Clock) *MatchRepository {
	return &MatchRepository{
		clock:   clock,
		matches: make(map[string]*domain.Match),
		locks:   make(map[string]*sync.Mutex),
	}
}

func (r *MatchRepository) lockFor(matchID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[matchID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[matchID] = l
	}
	return l
}

// Get получает копию матча по ID
func (r *MatchRepository) Get(_ context.Context, matchID string) (*domain.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.matches[matchID]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	return m.Clone(), nil
}

// Create сохраняет копию нового матча
func (r *MatchRepository) Create(_ context.Context, match *domain.Match) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := match.Clone()
	now := r.clock.Now().UTC()
	stored.Version = 1
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.matches[stored.MatchID] = stored

	return stored.Clone(), nil
}

// Update применяет mutate к копии матча и сохраняет ее только при успехе
func (r *MatchRepository) Update(ctx context.Context, matchID string, mutate repository.MatchMutator) (*domain.Match, error) {
	l := r.lockFor(matchID)
	l.Lock()
	defer l.Unlock()

	m, err := r.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if err := mutate(m); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Deleted while the mutator was running
	if _, ok := r.matches[matchID]; !ok {
		return nil, domain.ErrMatchNotFound
	}

	m.Version++
	m.UpdatedAt = r.clock.Now().UTC()
	r.matches[matchID] = m

	return m.Clone(), nil
}

// Delete удаляет матч
func (r *MatchRepository) Delete(_ context.Context, matchID string) error {
	l := r.lockFor(matchID)
	l.Lock()
	defer l.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.matches[matchID]; !ok {
		return domain.ErrMatchNotFound
	}
	delete(r.matches, matchID)
	delete(r.locks, matchID)

	return nil
}

// Find возвращает матчи по городу и/или участнику
func (r *MatchRepository) Find(_ context.Context, filter domain.MatchFilter) ([]*domain.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	city := strings.ToLower(strings.TrimSpace(filter.City))
	result := []*domain.Match{}
	for _, m := range r.matches {
		if city != "" && !strings.Contains(strings.ToLower(m.CityName), city) {
			continue
		}
		if filter.PlayerID != "" && !m.HasPlayer(filter.PlayerID) {
			continue
		}
		result = append(result, m.Clone())
	}

	slices.SortFunc(result, func(a, b *domain.Match) int {
		if c := a.StartDateTime.Compare(b.StartDateTime); c != 0 {
			return c
		}
		return strings.Compare(a.MatchID, b.MatchID)
	})

	return result, nil
}
