package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/aidar/kickoff/internal/domain"
	"github.com/aidar/kickoff/internal/metrics"
	"github.com/aidar/kickoff/internal/repository"
)

// formTeamsAttempts bounds how often FormTeams starts over when players join
// between the skill lookup and the locked update
const formTeamsAttempts = 3

var (
	// errRotationCurrent aborts a rotation update that another reader already applied
	errRotationCurrent = errors.New("rotation already current")

	// errRosterChanged aborts a team formation whose roster gained players after the skill lookup
	errRosterChanged = errors.New("roster changed during team formation")
)

// CreateMatchInput holds the fields needed to schedule a match
type CreateMatchInput struct {
	OrganizerID    string
	FieldName      string
	CityName       string
	StartDateTime  time.Time
	MaxPlayers     int
	CleatsAllowed  bool
	TacklesAllowed bool
}

// MatchService handles the match lifecycle: roster changes, team formation and
// goalkeeper rotation
type MatchService struct {
	matchRepo repository.MatchRepository
	players   repository.PlayerLookup
	rotation  *RotationManager
	clock     clock.Clock
	metrics   metrics.Metrics
	logger    *slog.Logger
}

// NewMatchService creates a new MatchService
func NewMatchService(
	matchRepo repository.MatchRepository,
	players repository.PlayerLookup,
	rotation *RotationManager,
	clock clock.Clock,
	metrics metrics.Metrics,
	logger *slog.Logger,
) *MatchService {
	return &MatchService{
		matchRepo: matchRepo,
		players:   players,
		rotation:  rotation,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
}

// CreateMatch schedules a new match with the organizer as its first player
func (s *MatchService) CreateMatch(ctx context.Context, in CreateMatchInput) (*domain.Match, error) {
	in.FieldName = strings.TrimSpace(in.FieldName)
	in.CityName = strings.TrimSpace(in.CityName)

	var problems []string
	if in.OrganizerID == "" {
		problems = append(problems, "organizer is required")
	}
	if in.FieldName == "" {
		problems = append(problems, "field name is required")
	}
	if in.CityName == "" {
		problems = append(problems, "city name is required")
	}
	if in.StartDateTime.IsZero() {
		problems = append(problems, "start date and time is required")
	}
	if in.MaxPlayers < domain.MinMaxPlayers {
		problems = append(problems, fmt.Sprintf("a match must have at least %d players", domain.MinMaxPlayers))
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}

	// The organizer must be a known player
	found, err := s.players.GetMany(ctx, []string{in.OrganizerID})
	if err != nil {
		return nil, err
	}
	if _, ok := found[in.OrganizerID]; !ok {
		return nil, domain.ErrUserNotFound
	}

	match := &domain.Match{
		MatchID:        uuid.New().String(),
		OrganizerID:    in.OrganizerID,
		FieldName:      in.FieldName,
		CityName:       in.CityName,
		StartDateTime:  in.StartDateTime.UTC(),
		MaxPlayers:     in.MaxPlayers,
		CleatsAllowed:  in.CleatsAllowed,
		TacklesAllowed: in.TacklesAllowed,
		Players:        []string{in.OrganizerID},
		Team1:          []string{},
		Team2:          []string{},
		GKRotation: domain.GKRotation{
			Team1: s.rotation.Initialize(nil),
			Team2: s.rotation.Initialize(nil),
		},
	}

	created, err := s.matchRepo.Create(ctx, match)
	if err != nil {
		s.logStorageFailure("create match", match.MatchID, err)
		return nil, err
	}

	s.metrics.IncMatchesCreated()
	s.logger.Info("Match created",
		"match_id", created.MatchID,
		"organizer_id", created.OrganizerID,
		"city", created.CityName,
		"max_players", created.MaxPlayers,
	)
	return created, nil
}

// JoinMatch adds a player to the match roster. Teams are left untouched until the
// next FormTeams.
func (s *MatchService) JoinMatch(ctx context.Context, matchID, playerID string) (*domain.Match, error) {
	match, err := s.matchRepo.Update(ctx, matchID, func(m *domain.Match) error {
		if m.HasPlayer(playerID) {
			return domain.ErrAlreadyJoined
		}
		if m.IsFull() {
			return domain.ErrMatchFull
		}
		m.Players = append(m.Players, playerID)
		return nil
	})
	if err != nil {
		s.logStorageFailure("join match", matchID, err)
		return nil, err
	}

	s.metrics.IncJoins()
	s.logger.Info("Player joined match", "match_id", matchID, "player_id", playerID, "players", len(match.Players))
	return match, nil
}

// LeaveMatch removes a player from the roster and from both teams. Teams are not
// rebalanced; the rotation order is pruned on the next read.
func (s *MatchService) LeaveMatch(ctx context.Context, matchID, playerID string) (*domain.Match, error) {
	match, err := s.matchRepo.Update(ctx, matchID, func(m *domain.Match) error {
		if m.IsOrganizer(playerID) {
			return domain.ErrOrganizerCannotLeave
		}
		if !m.HasPlayer(playerID) {
			return domain.ErrNotAJoinedPlayer
		}
		m.RemovePlayer(playerID)
		return nil
	})
	if err != nil {
		s.logStorageFailure("leave match", matchID, err)
		return nil, err
	}

	s.metrics.IncLeaves()
	s.logger.Info("Player left match", "match_id", matchID, "player_id", playerID, "players", len(match.Players))
	return match, nil
}

// FormTeams balances the current roster into two teams and starts goalkeeper
// rotation for teams without a natural goalkeeper. Only the organizer may call it.
func (s *MatchService) FormTeams(ctx context.Context, matchID, requesterID string) (*domain.TeamFormation, error) {
	var (
		match    *domain.Match
		balanced BalanceResult
		err      error
	)
	for attempt := 1; attempt <= formTeamsAttempts; attempt++ {
		match, balanced, err = s.formTeams(ctx, matchID, requesterID)
		if !errors.Is(err, errRosterChanged) {
			break
		}
		s.logger.Debug("Roster changed during team formation, retrying", "match_id", matchID, "attempt", attempt)
	}
	if errors.Is(err, errRosterChanged) {
		err = fmt.Errorf("%w: roster keeps changing, try again", domain.ErrStorage)
	}
	if err != nil {
		s.logStorageFailure("form teams", matchID, err)
		return nil, err
	}

	formation := &domain.TeamFormation{
		Match:              match,
		Team1:              match.Team1,
		Team2:              match.Team2,
		RotationNeeded:     balanced.RotationNeeded,
		TeamRotationActive: make(map[domain.TeamKey]bool, len(domain.TeamKeys)),
		Messages:           []string{},
	}
	for _, key := range domain.TeamKeys {
		state := match.GKRotation.For(key)
		formation.TeamRotationActive[key] = state.Active
		if state.Active {
			formation.Messages = append(formation.Messages, fmt.Sprintf(
				"%s has no natural goalkeeper: goalkeeper duty rotates every %d minutes, starting with %s",
				key, state.RotationIntervalMinutes, state.CurrentID(),
			))
		}
	}

	s.metrics.IncTeamsFormed()
	s.logger.Info("Teams formed",
		"match_id", matchID,
		"team1", len(match.Team1),
		"team2", len(match.Team2),
		"rotation_needed", balanced.RotationNeeded,
	)
	return formation, nil
}

// formTeams reads player skills before taking the match lock so the lookup never
// holds a second storage connection inside the update. Players who joined after
// the lookup abort the attempt with errRosterChanged.
func (s *MatchService) formTeams(ctx context.Context, matchID, requesterID string) (*domain.Match, BalanceResult, error) {
	var balanced BalanceResult

	snapshot, err := s.matchRepo.Get(ctx, matchID)
	if err != nil {
		return nil, balanced, err
	}
	if err := canFormTeams(snapshot, requesterID); err != nil {
		return nil, balanced, err
	}

	found, err := s.players.GetMany(ctx, snapshot.Players)
	if err != nil {
		return nil, balanced, err
	}

	match, err := s.matchRepo.Update(ctx, matchID, func(m *domain.Match) error {
		if err := canFormTeams(m, requesterID); err != nil {
			return err
		}

		// Keep join order so equal skills resolve the same way every time
		roster := make([]domain.Player, 0, len(m.Players))
		for _, id := range m.Players {
			p, ok := found[id]
			switch {
			case ok:
				roster = append(roster, p)
			case slices.Contains(snapshot.Players, id):
				return fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
			default:
				return errRosterChanged
			}
		}

		start := time.Now()
		result, err := Balance(roster, m.TeamCapacity())
		s.metrics.ObserveBalanceDuration(time.Since(start).Seconds())
		if err != nil {
			return err
		}

		balanced = result
		m.Team1 = result.Team1
		m.Team2 = result.Team2
		m.GKRotation = domain.GKRotation{
			Team1: s.rotation.Initialize(pick(found, m.Team1)),
			Team2: s.rotation.Initialize(pick(found, m.Team2)),
		}
		return nil
	})
	return match, balanced, err
}

func canFormTeams(m *domain.Match, requesterID string) error {
	if !m.IsOrganizer(requesterID) {
		return domain.ErrForbidden
	}
	if len(m.Players) < 2 {
		return domain.ErrInsufficientPlayers
	}
	return nil
}

// DeleteMatch removes the match permanently. Only the organizer may call it.
func (s *MatchService) DeleteMatch(ctx context.Context, matchID, requesterID string) error {
	match, err := s.matchRepo.Get(ctx, matchID)
	if err != nil {
		return err
	}

	if !match.IsOrganizer(requesterID) {
		return domain.ErrForbidden
	}

	if err := s.matchRepo.Delete(ctx, matchID); err != nil {
		s.logStorageFailure("delete match", matchID, err)
		return err
	}

	s.logger.Info("Match deleted", "match_id", matchID)
	return nil
}

// RemoveUser takes a departing account out of every match: matches it organizes
// are deleted, and it leaves the roster and teams of the others.
func (s *MatchService) RemoveUser(ctx context.Context, userID string) error {
	matches, err := s.matchRepo.Find(ctx, domain.MatchFilter{PlayerID: userID})
	if err != nil {
		return err
	}

	for _, m := range matches {
		if m.IsOrganizer(userID) {
			err = s.matchRepo.Delete(ctx, m.MatchID)
		} else {
			_, err = s.matchRepo.Update(ctx, m.MatchID, func(current *domain.Match) error {
				if !current.HasPlayer(userID) {
					return domain.ErrNotAJoinedPlayer
				}
				current.RemovePlayer(userID)
				return nil
			})
		}
		// The match may have changed since Find; that is fine here
		if err != nil && !errors.Is(err, domain.ErrMatchNotFound) && !errors.Is(err, domain.ErrNotAJoinedPlayer) {
			s.logStorageFailure("remove user", m.MatchID, err)
			return err
		}
	}

	s.logger.Info("User removed from matches", "user_id", userID, "matches", len(matches))
	return nil
}

// GetMatch returns the match with resolved player details, advancing any goalkeeper
// rotation that is due before returning.
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*domain.MatchDetails, error) {
	match, err := s.matchRepo.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if match.HasTeams() && s.rotationPending(match) {
		match, err = s.persistRotation(ctx, matchID)
		if err != nil {
			return nil, err
		}
	}

	return s.resolve(ctx, match)
}

// SearchMatchesByCity returns matches whose city contains the given text (case-insensitive)
func (s *MatchService) SearchMatchesByCity(ctx context.Context, city string) ([]*domain.Match, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fmt.Errorf("%w: city is required", domain.ErrValidation)
	}
	return s.matchRepo.Find(ctx, domain.MatchFilter{City: city})
}

// ListMatchesForUser returns every match the user organizes or has joined
func (s *MatchService) ListMatchesForUser(ctx context.Context, userID string) ([]*domain.Match, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.matchRepo.Find(ctx, domain.MatchFilter{PlayerID: userID})
}

// rotationPending reports whether reading the match would change any rotation state.
// It works on a copy so the snapshot handed to the caller is not modified.
func (s *MatchService) rotationPending(match *domain.Match) bool {
	scratch := match.Clone()
	for _, key := range domain.TeamKeys {
		if s.rotation.RotateIfDue(scratch.GKRotation.For(key), scratch.Team(key)) {
			return true
		}
	}
	return false
}

func (s *MatchService) persistRotation(ctx context.Context, matchID string) (*domain.Match, error) {
	match, err := s.matchRepo.Update(ctx, matchID, func(m *domain.Match) error {
		changed := false
		for _, key := range domain.TeamKeys {
			state := m.GKRotation.For(key)
			previous := state.CurrentID()
			if !s.rotation.RotateIfDue(state, m.Team(key)) {
				continue
			}
			changed = true
			if current := state.CurrentID(); current != previous && current != "" {
				s.metrics.IncGoalkeeperRotations()
				s.logger.Info("Goalkeeper rotated",
					"match_id", matchID,
					"team", key,
					"previous", previous,
					"current", current,
				)
			}
		}
		if !changed {
			return errRotationCurrent
		}
		return nil
	})

	if errors.Is(err, errRotationCurrent) {
		return s.matchRepo.Get(ctx, matchID)
	}
	if err != nil {
		s.logStorageFailure("rotate goalkeeper", matchID, err)
		return nil, err
	}
	return match, nil
}

func (s *MatchService) resolve(ctx context.Context, match *domain.Match) (*domain.MatchDetails, error) {
	found, err := s.players.GetMany(ctx, match.Players)
	if err != nil {
		return nil, err
	}

	details := &domain.MatchDetails{
		Match:       match,
		Players:     pick(found, match.Players),
		Team1:       pick(found, match.Team1),
		Team2:       pick(found, match.Team2),
		Goalkeepers: make(map[domain.TeamKey]string, len(domain.TeamKeys)),
	}
	for _, key := range domain.TeamKeys {
		if state := match.GKRotation.For(key); state.Active && state.Current != nil {
			details.Goalkeepers[key] = *state.Current
		}
	}

	return details, nil
}

func (s *MatchService) logStorageFailure(op, matchID string, err error) {
	if errors.Is(err, domain.ErrStorage) {
		s.logger.Error("Storage failure", "op", op, "match_id", matchID, "error", err)
	}
}

// pick returns the players for ids in order, skipping unknown ids
func pick(found map[string]domain.Player, ids []string) []domain.Player {
	players := make([]domain.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := found[id]; ok {
			players = append(players, p)
		}
	}
	return players
}
