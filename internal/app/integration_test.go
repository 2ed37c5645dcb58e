package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aidar/kickoff/internal/config"
	"github.com/aidar/kickoff/internal/domain"
)

// newPostgresServer поднимает приложение поверх PostgreSQL в контейнере
func newPostgresServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("kickoff_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := testConfig(config.StoragePostgres)
	cfg.Database = config.DatabaseConfig{
		Host:        host,
		Port:        port.Port(),
		User:        "test_user",
		Password:    "test_password",
		Name:        "kickoff_test",
		SSLMode:     "disable",
		MaxConns:    10,
		MinConns:    1,
		AutoMigrate: true,
	}

	clk := clock.NewMock()
	clk.Set(time.Date(2026, 5, 16, 18, 0, 0, 0, time.UTC))

	application, err := New(cfg,
		WithClock(clk),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err, "Failed to create application")
	require.NoError(t, application.Initialize(ctx), "Failed to initialize application")
	t.Cleanup(func() {
		if application.db != nil {
			application.db.Close()
		}
	})

	return &testServer{handler: application.Handler(), clock: clk}
}

// TestE2E_Postgres проверяет полный сценарий матча на реальной БД
func TestE2E_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	s := newPostgresServer(t)

	a := s.register(t, "alice", 4, "outfielder")
	b := s.register(t, "bruno", 4, "goalie")
	c := s.register(t, "chen", 2, "gk")
	d := s.register(t, "dana", 1, "outfielder")

	rec := s.do(t, http.MethodPost, "/matches", map[string]any{
		"fieldName":      "Harbor Pitch",
		"cityName":       "Portland",
		"startDateTime":  "2026-05-17T18:00:00Z",
		"maxPlayers":     4,
		"tacklesAllowed": true,
	}, a.Token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	match := decode[domain.Match](t, rec)
	matchPath := "/matches/" + match.MatchID

	for _, p := range []authResponse{b, c, d} {
		rec := s.do(t, http.MethodPost, matchPath+"/join", nil, p.Token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, matchPath+"/teams", nil, a.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	formation := decode[domain.TeamFormation](t, rec)

	assert.Equal(t, []string{b.User.UserID, d.User.UserID}, formation.Team1)
	assert.Equal(t, []string{c.User.UserID, a.User.UserID}, formation.Team2)
	assert.False(t, formation.RotationNeeded)

	rec = s.do(t, http.MethodGet, matchPath, nil, d.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	details := decode[domain.MatchDetails](t, rec)
	assert.Equal(t, formation.Match.Version, details.Match.Version)
	assert.Empty(t, details.Goalkeepers)
	require.Len(t, details.Team1, 2)
	assert.Equal(t, "bruno", details.Team1[0].Name)

	// Goalkeeper leaves: the team is not rebalanced and rotation stays inactive
	rec = s.do(t, http.MethodPost, matchPath+"/leave", nil, b.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{d.User.UserID}, decode[domain.Match](t, rec).Team1)

	rec = s.do(t, http.MethodGet, "/matches/search?city=PORT", nil, d.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), match.MatchID)

	rec = s.do(t, http.MethodDelete, matchPath, nil, a.Token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assertError(t, s.do(t, http.MethodGet, matchPath, nil, a.Token), http.StatusNotFound, domain.CodeNotFound)

	// Logged out tokens are rejected
	rec = s.do(t, http.MethodPost, "/auth/logout", nil, c.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assertError(t, s.do(t, http.MethodGet, "/users/me", nil, c.Token), http.StatusUnauthorized, domain.CodeUnauthorized)

	// Account changes and deletion
	rec = s.do(t, http.MethodPut, "/users/me", map[string]any{"email": "alice@example.com"}, d.Token)
	assertError(t, rec, http.StatusConflict, domain.CodeEmailTaken)

	rec = s.do(t, http.MethodPut, "/users/me", map[string]any{"skillLevel": 3}, d.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 3, decode[domain.User](t, rec).SkillLevel)

	rec = s.do(t, http.MethodDelete, "/users/me", nil, d.Token)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assertError(t, s.do(t, http.MethodGet, "/users/me", nil, d.Token), http.StatusUnauthorized, domain.CodeUnauthorized)
}
