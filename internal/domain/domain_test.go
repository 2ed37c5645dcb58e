package domain

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsGoalkeeperTag(t *testing.T) {
	for _, tag := range []string{"goalie", "GK", " Goalkeeper ", "keeper"} {
		assert.True(t, IsGoalkeeperTag(tag), tag)
	}
	for _, tag := range []string{"outfielder", "defender", ""} {
		assert.False(t, IsGoalkeeperTag(tag), tag)
	}
}

func TestNormalizePositions(t *testing.T) {
	got, ok := NormalizePositions([]string{"GK", "Outfielder", "keeper"})
	require.True(t, ok)
	assert.Equal(t, []string{PositionGoalie, PositionOutfielder}, got)

	_, ok = NormalizePositions([]string{"striker"})
	assert.False(t, ok)

	got, ok = NormalizePositions(nil)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestMatch_Capacity(t *testing.T) {
	tests := []struct {
		maxPlayers int
		capacity   int
	}{
		{4, 2},
		{5, 3},
		{10, 5},
		{11, 6},
	}
	for _, tt := range tests {
		m := Match{MaxPlayers: tt.maxPlayers}
		assert.Equal(t, tt.capacity, m.TeamCapacity(), "maxPlayers=%d", tt.maxPlayers)
	}
}

func TestMatch_RemovePlayer(t *testing.T) {
	m := &Match{
		Players: []string{"a", "b", "c", "d"},
		Team1:   []string{"a", "c"},
		Team2:   []string{"b", "d"},
	}

	m.RemovePlayer("c")

	assert.Equal(t, []string{"a", "b", "d"}, m.Players)
	assert.Equal(t, []string{"a"}, m.Team1)
	assert.Equal(t, []string{"b", "d"}, m.Team2)
}

func TestMatch_CloneIsDeep(t *testing.T) {
	now := time.Now()
	current := "a"
	m := &Match{
		Players: []string{"a", "b"},
		Team1:   []string{"a"},
		Team2:   []string{"b"},
		GKRotation: GKRotation{
			Team1: RotationState{Active: true, Current: &current, LastRotatedAt: &now, Order: []string{"a"}},
		},
	}

	c := m.Clone()
	c.Players[0] = "x"
	c.GKRotation.Team1.Order[0] = "x"
	*c.GKRotation.Team1.Current = "x"

	assert.Equal(t, "a", m.Players[0])
	assert.Equal(t, "a", m.GKRotation.Team1.Order[0])
	assert.Equal(t, "a", m.GKRotation.Team1.CurrentID())
}

func TestRotationState_JSONShape(t *testing.T) {
	last := time.Date(2026, 5, 16, 18, 0, 0, 0, time.UTC)
	current := "u1"
	state := RotationState{
		Active:                  true,
		RotationIntervalMinutes: 15,
		LastRotatedAt:           &last,
		Current:                 &current,
		Order:                   []string{"u1", "u2"},
		Index:                   1,
	}

	data, err := json.Marshal(state)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"active": true,
		"rotationIntervalMinutes": 15,
		"lastRotatedAt": "2026-05-16T18:00:00Z",
		"current": "u1",
		"order": ["u1", "u2"],
		"index": 1
	}`, string(data))

	inactive, err := json.Marshal(RotationState{RotationIntervalMinutes: 15, Order: []string{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"active": false, "rotationIntervalMinutes": 15, "order": [], "index": 0}`, string(inactive))
}

func TestRotationState_IntervalDefaults(t *testing.T) {
	s := RotationState{RotationIntervalMinutes: -3}
	assert.Equal(t, 15*time.Minute, s.Interval())

	s.RotationIntervalMinutes = 10
	assert.Equal(t, 10*time.Minute, s.Interval())
}

func TestMapErrorToCode(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCode
	}{
		{fmt.Errorf("%w: bad field", ErrValidation), CodeValidation},
		{ErrMatchNotFound, CodeNotFound},
		{ErrUserNotFound, CodeNotFound},
		{ErrForbidden, CodeForbidden},
		{ErrAlreadyJoined, CodeAlreadyJoined},
		{ErrMatchFull, CodeMatchFull},
		{ErrOrganizerCannotLeave, CodeOrganizerCannotLeave},
		{ErrNotAJoinedPlayer, CodeNotAJoinedPlayer},
		{ErrInsufficientPlayers, CodeInsufficientPlayers},
		{fmt.Errorf("%w: get match: %w", ErrStorage, fmt.Errorf("conn refused")), CodeStorage},
		{ErrEmailTaken, CodeEmailTaken},
		{ErrInvalidToken, CodeUnauthorized},
		{fmt.Errorf("something else"), CodeInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapErrorToCode(tt.err), tt.err.Error())
	}
}
