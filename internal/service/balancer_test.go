package service

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/kickoff/internal/domain"
)

func player(id string, skill int, positions ...string) domain.Player {
	return domain.Player{UserID: id, Name: id, SkillLevel: skill, Positions: positions}
}

func TestBalance_MixedRosterWithTwoGoalkeepers(t *testing.T) {
	players := []domain.Player{
		player("A", 5, domain.PositionOutfielder),
		player("B", 5, domain.PositionGoalie),
		player("C", 3, domain.PositionGoalie),
		player("D", 1, domain.PositionOutfielder),
	}

	result, err := Balance(players, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "D"}, result.Team1)
	assert.Equal(t, []string{"C", "A"}, result.Team2)
	assert.False(t, result.RotationNeeded)
}

func TestBalance_NoGoalkeepers(t *testing.T) {
	players := []domain.Player{
		player("p1", 4, domain.PositionOutfielder),
		player("p2", 3, domain.PositionOutfielder),
		player("p3", 2, domain.PositionOutfielder),
		player("p4", 2, domain.PositionOutfielder),
		player("p5", 0, domain.PositionOutfielder),
	}

	result, err := Balance(players, 3)
	require.NoError(t, err)

	assert.True(t, result.RotationNeeded)
	assert.Equal(t, []string{"p1", "p4", "p5"}, result.Team1)
	assert.Equal(t, []string{"p2", "p3"}, result.Team2)
	assertPartition(t, players, result)
}

func TestBalance_BestGoalkeepersSplit(t *testing.T) {
	players := []domain.Player{
		player("g-low", 1, "gk"),
		player("out1", 4, domain.PositionOutfielder),
		player("g-top", 4, "Goalkeeper"),
		player("out2", 3, domain.PositionOutfielder),
		player("g-mid", 2, "keeper"),
		player("out3", 2, domain.PositionOutfielder),
	}

	result, err := Balance(players, 3)
	require.NoError(t, err)

	assert.False(t, result.RotationNeeded)
	assert.Equal(t, "g-top", result.Team1[0])
	assert.Equal(t, "g-mid", result.Team2[0])
	assertPartition(t, players, result)
}

func TestBalance_SingleGoalkeeperNeedsRotation(t *testing.T) {
	players := []domain.Player{
		player("g", 3, domain.PositionGoalie, domain.PositionOutfielder),
		player("a", 3, domain.PositionOutfielder),
		player("b", 2, domain.PositionOutfielder),
	}

	result, err := Balance(players, 2)
	require.NoError(t, err)
	assert.True(t, result.RotationNeeded)
	assert.Len(t, result.Team1, 2)
	assert.Len(t, result.Team2, 1)
	assertPartition(t, players, result)
}

func TestBalance_Errors(t *testing.T) {
	t.Run("too few players", func(t *testing.T) {
		_, err := Balance([]domain.Player{player("solo", 3)}, 2)
		assert.ErrorIs(t, err, domain.ErrInsufficientPlayers)

		_, err = Balance(nil, 2)
		assert.ErrorIs(t, err, domain.ErrInsufficientPlayers)
	})

	t.Run("capacity too small", func(t *testing.T) {
		players := []domain.Player{player("a", 1), player("b", 1), player("c", 1)}
		_, err := Balance(players, 1)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestBalance_Deterministic(t *testing.T) {
	players := []domain.Player{
		player("a", 2, domain.PositionOutfielder),
		player("b", 2, domain.PositionOutfielder),
		player("c", 2, domain.PositionOutfielder),
		player("d", 2, domain.PositionOutfielder),
	}

	first, err := Balance(players, 2)
	require.NoError(t, err)
	second, err := Balance(players, 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// Input must not be reordered
	assert.Equal(t, "a", players[0].UserID)
}

func TestBalance_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	positions := []string{domain.PositionOutfielder, domain.PositionGoalie}

	for round := 0; round < 200; round++ {
		n := 2 + rng.Intn(20)
		players := make([]domain.Player, n)
		for i := range players {
			players[i] = player(fmt.Sprintf("p%d", i), rng.Intn(5), positions[rng.Intn(len(positions))])
		}
		capacity := (n+1)/2 + rng.Intn(3)

		result, err := Balance(players, capacity)
		require.NoError(t, err)

		assertPartition(t, players, result)
		assert.LessOrEqual(t, len(result.Team1), capacity)
		assert.LessOrEqual(t, len(result.Team2), capacity)
		// Odd rosters put the extra player on team1
		assert.Equal(t, (n+1)/2, len(result.Team1))
		assert.GreaterOrEqual(t, len(result.Team1), len(result.Team2))

		var goalies []domain.Player
		for _, p := range players {
			if p.IsGoalkeeper() {
				goalies = append(goalies, p)
			}
		}
		assert.Equal(t, len(goalies) < 2, result.RotationNeeded)

		if len(goalies) >= 2 {
			slices.SortStableFunc(goalies, func(a, b domain.Player) int { return b.SkillLevel - a.SkillLevel })
			assert.Equal(t, goalies[0].UserID, result.Team1[0])
			assert.Equal(t, goalies[1].UserID, result.Team2[0])
		}
	}
}

func assertPartition(t *testing.T, players []domain.Player, result BalanceResult) {
	t.Helper()

	all := append(slices.Clone(result.Team1), result.Team2...)
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.UserID
	}

	assert.ElementsMatch(t, ids, all, "teams must cover every player exactly once")
	diff := len(result.Team1) - len(result.Team2)
	assert.True(t, diff >= -1 && diff <= 1, "team sizes %d and %d differ by more than one", len(result.Team1), len(result.Team2))
}
