package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/onboarding-api/internal/config"
	"github.com/onboarding-api/internal/database"
	"github.com/onboarding-api/internal/domain"
	"github.com/onboarding-api/internal/handler"
	"github.com/onboarding-api/internal/notification"
	"github.com/onboarding-api/internal/repository"
	"github.com/onboarding-api/internal/service"
	"github.com/onboarding-api/internal/storage"
)

func main() {
	// Инициализация логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg := config.Load()

	// Подключение к БД
	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("failed to get sql.DB", slog.Any("error", err))
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Запуск миграций
	if err := database.Migrate(db, cfg.Database.Driver); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	template, err := loadTaskTemplate(cfg.TaskTemplatePath)
	if err != nil {
		logger.Error("failed to load task template", slog.String("path", cfg.TaskTemplatePath), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("task template loaded", slog.String("version", template.Version), slog.Int("tasks", len(template.Tasks)))

	var notifier notification.Notifier
	if cfg.SMTP.Enabled {
		notifier = notification.NewSMTPNotifier(cfg.SMTP, cfg.CompanyName)
	} else {
		notifier = notification.NewLogNotifier(logger, cfg.CompanyName)
	}

	// Инициализация репозиториев
	tx := repository.NewTxManager(db)
	deptRepo := repository.NewDepartmentRepository(db)
	posRepo := repository.NewPositionRepository(db)
	accRepo := repository.NewAccountRepository(db)
	empRepo := repository.NewEmployeeRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	docRepo := repository.NewDocumentRepository(db)

	// Инициализация сервисов
	opts := []service.Option{
		service.WithLogger(logger),
		service.WithNotifyTimeout(cfg.SMTP.Timeout),
		service.WithTaskTemplate(template),
	}
	deptService := service.NewDepartmentService(deptRepo)
	posService := service.NewPositionService(posRepo, deptRepo)
	empService := service.NewEmployeeService(tx, accRepo, empRepo, posRepo, taskRepo, docRepo, notifier, opts...)
	taskService := service.NewTaskService(tx, taskRepo, empRepo, accRepo, opts...)
	docService := service.NewDocumentService(tx, docRepo, empRepo, storage.NewLocalStore(cfg.Storage.Dir), opts...)
	dashService := service.NewDashboardService(empRepo, taskRepo, docRepo, opts...)

	// Настройка роутера
	router := handler.NewRouter(handler.Handlers{
		Department: handler.NewDepartmentHandler(deptService, posService, logger),
		Employee:   handler.NewEmployeeHandler(empService, logger),
		Task:       handler.NewTaskHandler(taskService, logger),
		Document:   handler.NewDocumentHandler(docService, cfg.Server.MaxUploadMB<<20, logger),
		Dashboard:  handler.NewDashboardHandler(dashService, logger),
	}, logger)
	httpHandler := router.Setup()

	// Настройка HTTP сервера
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("could not gracefully shutdown the server", slog.Any("error", err))
		}
		close(done)
	}()

	logger.Info("server is starting", slog.String("port", cfg.Server.Port), slog.String("db_driver", cfg.Database.Driver))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
		os.Exit(1)
	}

	<-done
	logger.Info("server stopped")
}

// loadTaskTemplate читает шаблон задач из файла, если путь задан
func loadTaskTemplate(path string) (*domain.TaskTemplate, error) {
	if path == "" {
		return domain.DefaultTaskTemplate(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open task template: %w", err)
	}
	defer f.Close()

	return domain.LoadTaskTemplate(f)
}
