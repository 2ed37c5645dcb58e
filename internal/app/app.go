package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aidar/kickoff/internal/config"
	"github.com/aidar/kickoff/internal/handler"
	"github.com/aidar/kickoff/internal/metrics"
	"github.com/aidar/kickoff/internal/middleware"
	"github.com/aidar/kickoff/internal/repository"
	"github.com/aidar/kickoff/internal/repository/memory"
	"github.com/aidar/kickoff/internal/repository/postgres"
	"github.com/aidar/kickoff/internal/service"
)

// Option настраивает App
type Option func(*App)

// WithLogger заменяет логгер приложения
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithClock заменяет источник времени (используется в тестах)
func WithClock(clock clock.Clock) Option {
	return func(a *App) {
		a.clock = clock
	}
}

// App представляет приложение со всеми зависимостями
type App struct {
	config   *config.Config
	db       *pgxpool.Pool
	server   *http.Server
	logger   *slog.Logger
	clock    clock.Clock
	registry *prometheus.Registry
}

// New создает новый экземпляр приложения
func New(cfg *config.Config, opts ...Option) (*App, error) {
	app := &App{
		config: cfg,
		// Структурированный логгер (JSON формат)
		logger:   slog.New(slog.NewJSONHandler(os.Stdout, nil)),
		clock:    clock.New(),
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(app)
	}

	return app, nil
}

// Initialize инициализирует все компоненты приложения
func (a *App) Initialize(ctx context.Context) error {
	repos, err := a.setupStorage(ctx)
	if err != nil {
		return err
	}

	// Настраиваем HTTP сервер и роутинг
	a.setupServer(repos)

	a.logger.Info("Application initialized successfully", "storage", a.config.Storage.Driver)
	return nil
}

// Handler возвращает HTTP обработчик приложения
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// repositories набор хранилищ приложения
type repositories struct {
	matches repository.MatchRepository
	users   repository.UserRepository
	tokens  repository.TokenRepository
}

// setupStorage выбирает реализацию хранилища согласно конфигурации
func (a *App) setupStorage(ctx context.Context) (repositories, error) {
	if a.config.Storage.Driver == config.StorageMemory {
		a.logger.Warn("Using in-memory storage, data will be lost on restart")
		return repositories{
			matches: memory.NewMatchRepository(a.clock),
			users:   memory.NewUserRepository(a.clock),
			tokens:  memory.NewTokenRepository(),
		}, nil
	}

	// Подключаемся к базе данных
	if err := a.connectDB(ctx); err != nil {
		return repositories{}, fmt.Errorf("failed to connect to database: %w", err)
	}

	if a.config.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, a.db); err != nil {
			return repositories{}, err
		}
		a.logger.Info("Database migrations applied")
	}

	return repositories{
		matches: postgres.NewMatchRepository(a.db, a.clock),
		users:   postgres.NewUserRepository(a.db),
		tokens:  postgres.NewTokenRepository(a.db),
	}, nil
}

// connectDB устанавливает подключение к PostgreSQL с connection pool
func (a *App) connectDB(ctx context.Context) error {
	pool, err := Connect(ctx, a.config.Database)
	if err != nil {
		return err
	}

	a.db = pool
	a.logger.Info("Connected to database")
	return nil
}

// Connect открывает пул подключений к PostgreSQL и проверяет его
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Настраиваем размеры connection pool
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Проверяем подключение к БД
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// setupServer инициализирует HTTP роутер и обработчики
func (a *App) setupServer(repos repositories) {
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsService := metrics.NewService(a.registry)

	// Инициализируем слой сервисов (бизнес-логика)
	rotation := service.NewRotationManager(a.clock, a.config.Match.RotationIntervalMinutes)
	matchService := service.NewMatchService(repos.matches, repos.users, rotation, a.clock, metricsService, a.logger)
	authService := service.NewAuthService(
		repos.users,
		repos.tokens,
		a.config.JWT.Secret,
		a.config.JWT.GetExpiration(),
		a.clock,
		a.logger,
	)
	userService := service.NewUserService(repos.users, authService, matchService, a.logger)

	// Инициализируем HTTP обработчики
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, authService)
	matchHandler := handler.NewMatchHandler(matchService)

	// Инициализируем middleware для JWT авторизации
	authMiddleware := middleware.AuthMiddleware(authService)

	// Настраиваем роутер
	r := chi.NewRouter()

	// Глобальные middleware (применяются ко всем запросам)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Публичные эндпоинты (без авторизации)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	// Health check для мониторинга
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			a.logger.Error("Failed to write health check response", "error", err)
		}
	})
	r.Handle("/metrics", metrics.NewMetricsHandler(a.registry))

	// Защищенные эндпоинты (требуют JWT токен в заголовке или cookie)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		// Эндпоинты пользователей
		r.Get("/users/me", userHandler.Me)
		r.Put("/users/me", userHandler.UpdateMe)
		r.Delete("/users/me", userHandler.DeleteMe)
		r.Get("/users/{userID}", userHandler.GetUser)

		// Эндпоинты матчей
		r.Route("/matches", func(r chi.Router) {
			r.Post("/", matchHandler.CreateMatch)
			r.Get("/search", matchHandler.SearchMatches)
			r.Get("/my", matchHandler.MyMatches)
			r.Get("/{matchID}", matchHandler.GetMatch)
			r.Delete("/{matchID}", matchHandler.DeleteMatch)
			r.Post("/{matchID}/join", matchHandler.JoinMatch)
			r.Post("/{matchID}/leave", matchHandler.LeaveMatch)
			r.Post("/{matchID}/teams", matchHandler.FormTeams)
		})
	})

	// Создаем HTTP сервер с настройками таймаутов
	addr := fmt.Sprintf("%s:%s", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.Info("HTTP server configured", "addr", addr)
}

// Run запускает HTTP сервер
func (a *App) Run() error {
	a.logger.Info("Starting HTTP server", "addr", a.server.Addr)
	return a.server.ListenAndServe()
}

// Shutdown корректно останавливает приложение
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application")

	// Останавливаем HTTP сервер (ждем завершения текущих запросов)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	// Закрываем подключения к базе данных
	if a.db != nil {
		a.db.Close()
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}
