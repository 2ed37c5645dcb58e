package service

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/aidar/kickoff/internal/domain"
)

// BalanceResult holds the two teams produced by Balance
type BalanceResult struct {
	Team1          []string
	Team2          []string
	RotationNeeded bool
}

type teamBuilder struct {
	ids []string
	sum int
}

func (t *teamBuilder) add(p domain.Player) {
	t.ids = append(t.ids, p.UserID)
	t.sum += p.SkillLevel
}

// Balance splits players into two teams with close skill sums.
//
// Players are ranked by skill, highest first; equal skills keep their input order,
// so callers get reproducible teams by passing the roster in join order. When there
// are at least two goalkeepers the best one seeds team1 and the second best seeds
// team2. Everyone else goes to the team with the lower running skill sum (team1 on
// ties) unless that team is full. Team1 holds at most min(capacity, ceil(n/2))
// players and team2 at most min(capacity, floor(n/2)), so an odd roster leaves the
// extra player on team1.
func Balance(players []domain.Player, capacity int) (BalanceResult, error) {
	n := len(players)
	if n < 2 {
		return BalanceResult{}, domain.ErrInsufficientPlayers
	}
	if capacity*2 < n {
		return BalanceResult{}, fmt.Errorf("%w: %d players do not fit into two teams of %d", domain.ErrValidation, n, capacity)
	}
	limit1 := min(capacity, (n+1)/2)
	limit2 := min(capacity, n/2)

	ranked := slices.Clone(players)
	slices.SortStableFunc(ranked, func(a, b domain.Player) int {
		return cmp.Compare(b.SkillLevel, a.SkillLevel)
	})

	var goalies []int
	for i, p := range ranked {
		if p.IsGoalkeeper() {
			goalies = append(goalies, i)
		}
	}

	result := BalanceResult{RotationNeeded: len(goalies) < 2}

	var team1, team2 teamBuilder
	seeded := func(int) bool { return false }
	if len(goalies) >= 2 {
		first, second := goalies[0], goalies[1]
		team1.add(ranked[first])
		team2.add(ranked[second])
		seeded = func(i int) bool { return i == first || i == second }
	}

	for i, p := range ranked {
		if seeded(i) {
			continue
		}
		switch {
		case len(team1.ids) >= limit1:
			team2.add(p)
		case len(team2.ids) >= limit2:
			team1.add(p)
		case team2.sum < team1.sum:
			team2.add(p)
		default:
			team1.add(p)
		}
	}

	result.Team1 = team1.ids
	result.Team2 = team2.ids
	return result, nil
}
