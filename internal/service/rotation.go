package service

import (
	"math/rand"
	"slices"

	"github.com/benbjohnson/clock"

	"github.com/aidar/kickoff/internal/domain"
)

// RotationOption configures a RotationManager
type RotationOption func(*RotationManager)

// WithRandSource replaces the generator factory used for shuffling rotation orders
func WithRandSource(newRand func() *rand.Rand) RotationOption {
	return func(m *RotationManager) {
		m.newRand = newRand
	}
}

// RotationManager drives the goalkeeper rotation of teams without a natural goalkeeper.
//
// Rotation advances lazily: RotateIfDue is called whenever a match is read, so a team
// that is never read does not rotate in real time.
type RotationManager struct {
	clock           clock.Clock
	intervalMinutes int
	newRand         func() *rand.Rand
}

// NewRotationManager creates a RotationManager with the given rotation interval
func NewRotationManager(clock clock.Clock, intervalMinutes int, opts ...RotationOption) *RotationManager {
	if intervalMinutes <= 0 {
		intervalMinutes = domain.DefaultRotationIntervalMinutes
	}

	m := &RotationManager{
		clock:           clock,
		intervalMinutes: intervalMinutes,
		// Each shuffle gets its own seed so orders are not correlated across teams
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(rand.Int63()))
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize builds the rotation state for a freshly formed team.
// Teams with a natural goalkeeper, and empty teams, get an inactive rotation.
func (m *RotationManager) Initialize(members []domain.Player) domain.RotationState {
	state := domain.RotationState{
		RotationIntervalMinutes: m.intervalMinutes,
		Order:                   []string{},
	}

	if len(members) == 0 || slices.ContainsFunc(members, domain.Player.IsGoalkeeper) {
		return state
	}

	order := make([]string, len(members))
	for i, p := range members {
		order[i] = p.UserID
	}
	m.shuffle(order)

	now := m.clock.Now().UTC()
	current := order[0]

	state.Active = true
	state.Order = order
	state.Current = &current
	state.LastRotatedAt = &now
	if len(order) > 1 {
		state.Index = 1
	}

	return state
}

// RotateIfDue advances an active rotation against the team's live roster.
// It hands goalkeeper duty to the next player when the interval has elapsed or the
// current goalkeeper is no longer on the team. Returns true if the state changed.
func (m *RotationManager) RotateIfDue(state *domain.RotationState, roster []string) bool {
	if !state.Active {
		return false
	}

	if len(roster) == 0 {
		*state = domain.RotationState{
			RotationIntervalMinutes: state.RotationIntervalMinutes,
			Order:                   []string{},
		}
		return true
	}

	changed := m.reconcileOrder(state, roster)

	if state.RotationIntervalMinutes <= 0 {
		state.RotationIntervalMinutes = m.intervalMinutes
		changed = true
	}

	if state.Index < 0 || state.Index >= len(state.Order) {
		state.Index = 0
		changed = true
	}

	now := m.clock.Now().UTC()
	due := state.LastRotatedAt == nil || now.Sub(*state.LastRotatedAt) >= state.Interval()
	currentMissing := state.Current == nil || !slices.Contains(roster, *state.Current)

	if due || currentMissing {
		next := state.Order[state.Index]
		state.Current = &next
		state.Index = (state.Index + 1) % len(state.Order)
		state.LastRotatedAt = &now
		changed = true
	}

	return changed
}

// reconcileOrder makes Order a permutation of roster: departed players are pruned
// (shifting Index so it keeps pointing at the same successor), duplicates dropped and
// members missing from the order appended in random order. An order left empty is
// rebuilt from scratch.
func (m *RotationManager) reconcileOrder(state *domain.RotationState, roster []string) bool {
	kept := make([]string, 0, len(state.Order))
	removedBefore := 0
	for i, id := range state.Order {
		if slices.Contains(roster, id) && !slices.Contains(kept, id) {
			kept = append(kept, id)
			continue
		}
		if i < state.Index {
			removedBefore++
		}
	}

	if len(kept) == 0 {
		order := slices.Clone(roster)
		m.shuffle(order)
		state.Order = order
		state.Index = 0
		return true
	}

	changed := len(kept) != len(state.Order)
	state.Index -= removedBefore

	var missing []string
	for _, id := range roster {
		if !slices.Contains(kept, id) && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		m.shuffle(missing)
		kept = append(kept, missing...)
		changed = true
	}

	state.Order = kept
	return changed
}

func (m *RotationManager) shuffle(ids []string) {
	rng := m.newRand()
	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}
