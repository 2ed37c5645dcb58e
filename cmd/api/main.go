package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aidar/kickoff/internal/app"
	"github.com/aidar/kickoff/internal/config"
)

func main() {
	// Загружаем конфигурацию из .env и переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Создаем экземпляр приложения
	application, err := app.New(cfg, app.WithLogger(logger))
	if err != nil {
		log.Fatalf("Не удалось создать приложение: %v", err)
	}

	// Инициализируем приложение (хранилище, миграции, роутинг)
	ctx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	if err := application.Initialize(ctx); err != nil {
		cancelInit()
		log.Fatalf("Не удалось инициализировать приложение: %v", err)
	}
	cancelInit()

	// Настраиваем graceful shutdown для корректного завершения
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Запускаем HTTP сервер в отдельной горутине
	go func() {
		if err := application.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			sigChan <- syscall.SIGTERM
		}
	}()

	logger.Info("Server started", "port", cfg.Server.Port)

	// Ожидаем сигнал прерывания (Ctrl+C или SIGTERM)
	<-sigChan
	logger.Info("Stopping server")

	// Создаем контекст с таймаутом для graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	// Корректно останавливаем приложение
	if err := application.Shutdown(shutdownCtx); err != nil {
		cancel()
		logger.Error("Failed to stop server gracefully", "error", err)
		os.Exit(1)
	}
	cancel()
}
