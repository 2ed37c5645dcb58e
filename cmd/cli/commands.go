package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aidar/kickoff/internal/app"
	"github.com/aidar/kickoff/internal/config"
	"github.com/aidar/kickoff/internal/domain"
	"github.com/aidar/kickoff/internal/repository/postgres"
	"github.com/aidar/kickoff/internal/service"
)

var (
	playersFile string
	maxPlayers  int
)

func init() {
	balanceCmd.Flags().StringVarP(&playersFile, "file", "f", "", "JSON file with the players to balance (- for stdin)")
	balanceCmd.Flags().IntVar(&maxPlayers, "max-players", 0, "Match size; defaults to the number of players")
	_ = balanceCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(balanceCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations to the configured database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}

		pool, err := app.Connect(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := postgres.Migrate(cmd.Context(), pool); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
		return nil
	},
}

type balanceOutput struct {
	Capacity       int             `json:"capacity"`
	Team1          []domain.Player `json:"team1"`
	Team2          []domain.Player `json:"team2"`
	RotationNeeded bool            `json:"rotationNeeded"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Split a list of players into two balanced teams",
	RunE: func(cmd *cobra.Command, args []string) error {
		players, err := readPlayers(cmd.InOrStdin(), playersFile)
		if err != nil {
			return err
		}

		size := maxPlayers
		if size <= 0 {
			size = len(players)
		}
		sizing := domain.Match{MaxPlayers: size}
		capacity := sizing.TeamCapacity()

		result, err := service.Balance(players, capacity)
		if err != nil {
			return err
		}

		byID := make(map[string]domain.Player, len(players))
		for _, p := range players {
			byID[p.UserID] = p
		}

		out := balanceOutput{
			Capacity:       capacity,
			Team1:          lookup(byID, result.Team1),
			Team2:          lookup(byID, result.Team2),
			RotationNeeded: result.RotationNeeded,
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func readPlayers(stdin io.Reader, path string) ([]domain.Player, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read players: %w", err)
	}

	var players []domain.Player
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("failed to parse players: %w", err)
	}

	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if p.UserID == "" || seen[p.UserID] {
			return nil, fmt.Errorf("%w: every player needs a unique id", domain.ErrValidation)
		}
		seen[p.UserID] = true
	}

	return players, nil
}

func lookup(byID map[string]domain.Player, ids []string) []domain.Player {
	players := make([]domain.Player, 0, len(ids))
	for _, id := range ids {
		players = append(players, byID[id])
	}
	return players
}
