package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/suchimauz/dental-clinic-scheduler/internal/adapters/in/http"
	"github.com/suchimauz/dental-clinic-scheduler/internal/adapters/out/cache"
	"github.com/suchimauz/dental-clinic-scheduler/internal/adapters/out/logger"
	"github.com/suchimauz/dental-clinic-scheduler/internal/adapters/out/memstore"
	"github.com/suchimauz/dental-clinic-scheduler/internal/adapters/out/postgres"
	"github.com/suchimauz/dental-clinic-scheduler/internal/adapters/out/rabbitmq"
	"github.com/suchimauz/dental-clinic-scheduler/internal/config"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/ports/out"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/services/scheduler_service"
)

func main() {
	// Переменные окружения из .env для локального запуска
	_ = godotenv.Load()

	// Загрузка конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера с таймзоной
	mainLogger, err := logger.NewConsoleLogger(cfg.App.Timezone)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := mainLogger.WithModule("Main")

	logger.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"storageDriver":   cfg.Storage.Driver,
		"rabbitmqEnabled": cfg.RabbitMq.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
	})

	// Настройка Gin в зависимости от окружения
	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализация хранилища записей
	var appointmentStore out.AppointmentPort
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pgStore, err := postgres.NewAppointmentStore(ctx, cfg, mainLogger)
		if err != nil {
			logger.Error("app.postgres.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		if err := pgStore.Migrate(ctx); err != nil {
			logger.Error("app.postgres.migrate_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		defer pgStore.Close()
		appointmentStore = pgStore
	default:
		appointmentStore = memstore.NewAppointmentStore(mainLogger)
	}

	// Кэш календарей доступности
	var calendarCache out.CalendarCachePort
	if cfg.Cache.Enabled {
		cacheAdapter, err := cache.NewCalendarCacheAdapter(cfg, mainLogger)
		if err != nil {
			logger.Error("app.cache.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		calendarCache = cacheAdapter
	}

	// Публикация доменных событий
	var eventPublisher out.EventPublisherPort
	if cfg.RabbitMq.Enabled {
		publisher, err := rabbitmq.NewEventPublisher(cfg, mainLogger.WithModule("EventPublisher"))
		if err != nil {
			logger.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		defer func() {
			if err := publisher.Stop(); err != nil {
				logger.Error("app.rabbitmq.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()

		eventPublisher = publisher
	}

	// Инициализация сервиса
	schedulerService, err := scheduler_service.NewSchedulerService(
		appointmentStore,
		calendarCache,
		eventPublisher,
		cfg,
		mainLogger,
	)
	if err != nil {
		logger.Error("app.scheduler.init_failed", out.LogFields{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Настройка HTTP сервера
	router := gin.Default()
	controller := http.NewSchedulerController(schedulerService, cfg)
	controller.RegisterRoutes(router)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := router.Run(cfg.HTTP.Host + ":" + cfg.HTTP.Port); err != nil {
			logger.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	logger.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})
}
