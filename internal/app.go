package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	logger_adapter "analysis-service/internal/adapters/logger"
	memcache_adapter "analysis-service/internal/adapters/memcache"
	postgres_adapter "analysis-service/internal/adapters/postgres"
	rabbitmq_adapter "analysis-service/internal/adapters/rabbitmq"
	"analysis-service/internal/adapters/rest"
	"analysis-service/internal/configs"
	"analysis-service/internal/constants"
	"analysis-service/internal/contextkeys"
	"analysis-service/internal/core/engine"
	"analysis-service/internal/core/port"
	"analysis-service/internal/core/usecase"

	fluentlogger "analysis-service/pkg/fluent_logger"
	"analysis-service/pkg/postgres"
	"analysis-service/pkg/rabbitmq/rabbitmq_common"
	"analysis-service/pkg/rabbitmq/rabbitmq_consumer"
	"analysis-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App – структура приложения
type App struct {
	config       *configs.AppConfig
	dbPool       *pgxpool.Pool
	apiServer    *rest.Server
	cache        *memcache_adapter.AnalysisCacheAdapter
	fluentClient *fluent.Fluent
	logger       port.LoggerPort

	analysisRequestListener port.EventListenerPort
	analysisEventsProducer  *rabbitmq_producer.Publisher
	rabbitConnManager       *rabbitmq_common.ConnectionManager
}

// NewApp создает новый экземпляр приложения.
// Это "Composition Root", где все зависимости создаются и связываются.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	slogCfg := logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false, // текстовый формат
		UseColor: true,
	}
	stdoutLogger := logger_adapter.NewSlogAdapter(slogCfg)
	activeLoggers = append(activeLoggers, stdoutLogger)

	// Добавляем Fluent Bit логгер, если он включен в конфигурации
	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName, // Используем имя приложения как префикс
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	// Создаем наш композитный логгер
	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. СОЗДАЕМ БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ С КОНТЕКСТОМ ---
	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 3. НИЗКОУРОВНЕВЫЕ ЗАВИСИМОСТИ ---
	dbPool, err := postgres.NewClient(context.Background(), postgres.Config{
		DatabaseURL: appConfig.Database.URL,
		MaxConns:    int32(appConfig.Database.MaxConns),
	})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

	propertyRepository, err := postgres_adapter.NewPropertyRepositoryAdapter(dbPool)
	if err != nil {
		appLogger.Error("Failed to create property repository adapter", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to create property repository adapter: %w", err)
	}
	appLogger.Info("Postgres repository adapter initialized.", nil)

	analysisCache := memcache_adapter.NewAnalysisCacheAdapter()

	// --- 4. ДВИЖКИ И USE CASE ---
	params := buildEngineParams(appConfig.Analysis)

	positionEngine := engine.NewMarketPositionEngine(propertyRepository, analysisCache, params)
	agentAnalyzer := engine.NewAgentPerformanceAnalyzer(propertyRepository, analysisCache, params)
	velocityTracker := engine.NewNeighborhoodVelocityTracker(propertyRepository, analysisCache, params)
	scarcityAnalyzer := engine.NewPropertyScarcityAnalyzer(propertyRepository, analysisCache, params)
	roiCalculator := engine.NewROICalculator(propertyRepository, analysisCache, params)

	analyzePropertyUseCase := usecase.NewAnalyzePropertyUseCase(
		propertyRepository,
		positionEngine,
		agentAnalyzer,
		velocityTracker,
		scarcityAnalyzer,
		roiCalculator,
	)
	appLogger.Info("Analysis engines and use case initialized.", nil)

	application := &App{
		config:       appConfig,
		dbPool:       dbPool,
		cache:        analysisCache,
		fluentClient: fluentClient,
		logger:       appLogger,
	}

	// --- 5. RABBITMQ (опционально) ---
	if appConfig.RabbitMQ.Enabled {
		connManagerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})
		connManager, err := rabbitmq_common.NewManager(
			rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			rabbitmq_adapter.NewPkgLoggerBridge(connManagerLogger),
		)
		if err != nil {
			appLogger.Error("Failed to create connection manager", err, nil)
			dbPool.Close()
			return nil, fmt.Errorf("failed to create connection manager: %w", err)
		}
		application.rabbitConnManager = connManager
		appLogger.Info("RabbitMQ Connection Manager initialized.", nil)

		producerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})
		producerCfg := rabbitmq_producer.PublisherConfig{
			Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			ExchangeName:             constants.ExchangeAnalysisEvents,
			ExchangeType:             "topic",
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,

			Logger: rabbitmq_adapter.NewPkgLoggerBridge(producerLogger),
		}
		eventProducer, err := rabbitmq_producer.NewPublisher(producerCfg, connManager)
		if err != nil {
			appLogger.Error("Failed to create event producer", err, nil)
			dbPool.Close()
			return nil, fmt.Errorf("failed to create event producer: %w", err)
		}
		application.analysisEventsProducer = eventProducer
		appLogger.Info("RabbitMQ Event Producer initialized.", nil)

		resultReporter, err := rabbitmq_adapter.NewResultReporterAdapter(eventProducer, constants.RoutingKeyAnalysisCompleted)
		if err != nil {
			appLogger.Error("Failed to create result reporter adapter", err, nil)
			dbPool.Close()
			return nil, err
		}

		requestConsumerCfg := rabbitmq_consumer.ConsumerConfig{
			Config:              rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			QueueName:           constants.QueueAnalysisRequests,
			DurableQueue:        true,
			DeclareQueue:        true,
			ExchangeNameForBind: constants.ExchangeAnalysisEvents,
			RoutingKeyForBind:   constants.RoutingKeyAnalysisRequest,
			PrefetchCount:       1,
			ConsumerTag:         "analysis-request-adapter",
		}
		requestListener, err := rabbitmq_adapter.NewAnalysisRequestConsumerAdapter(
			requestConsumerCfg, analyzePropertyUseCase, resultReporter, baseLogger, connManager)
		if err != nil {
			appLogger.Error("Failed to create analysis request listener", err, nil)
			dbPool.Close()
			return nil, err
		}
		application.analysisRequestListener = requestListener
		appLogger.Info("Analysis Request Events Listener initialized.", nil)
	}

	// --- 6. REST API Server ---
	analysisHandlers := rest.NewAnalysisHandler(analyzePropertyUseCase, appConfig.AppName)
	application.apiServer = rest.NewServer(appConfig.Rest.PORT, analysisHandlers, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	return application, nil
}

// buildEngineParams накладывает конфигурационные переопределения на дефолты движков
func buildEngineParams(cfg configs.AnalysisConfig) engine.Params {
	params := engine.DefaultParams()
	if cfg.MinComparableSample > 0 {
		params.MinComparableSample = cfg.MinComparableSample
	}
	if cfg.DemandWindowDays > 0 {
		params.DemandWindowDays = cfg.DemandWindowDays
	}
	if cfg.AcquisitionFeeRate > 0 {
		params.AcquisitionFeeRate = cfg.AcquisitionFeeRate
	}
	if cfg.OperatingCostRate > 0 {
		params.OperatingCostRate = cfg.OperatingCostRate
	}
	return params
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	// Создаем единый контекст для всего приложения для управления graceful shutdown
	appCtx, cancelApp := context.WithCancel(context.Background())

	// Используем WaitGroup для ожидания завершения всех фоновых задач
	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		// Ждем завершения всех запущенных горутин (слушателей)
		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		if a.apiServer != nil {
			if err := a.apiServer.Stop(context.Background()); err != nil {
				a.logger.Error("Error during API server shutdown", err, nil)
			}
		}

		// Теперь безопасно закрываем ресурсы
		if a.analysisRequestListener != nil {
			if err := a.analysisRequestListener.Close(); err != nil {
				a.logger.Error("Error closing analysis request listener", err, nil)
			}
		}

		if a.analysisEventsProducer != nil {
			if err := a.analysisEventsProducer.Close(); err != nil {
				a.logger.Error("Error closing event producer", err, nil)
			}
		}

		if a.rabbitConnManager != nil {
			if err := a.rabbitConnManager.Close(); err != nil {
				a.logger.Error("Error closing RabbitMQ connection manager", err, nil)
			}
		}

		if a.dbPool != nil {
			a.dbPool.Close()
			a.logger.Info("PostgreSQL pool closed.", nil)
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				// Логируем в stdout, так как fluent может быть уже недоступен
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, 1)

	// Фоновая уборка протухших записей кэша
	wg.Add(1)
	go func() {
		defer wg.Done()
		janitorCtx := contextkeys.ContextWithLogger(appCtx, a.logger.WithFields(port.Fields{"component": "cache_janitor"}))
		a.cache.Run(janitorCtx, time.Duration(a.config.Analysis.CacheSweepSeconds)*time.Second)
	}()

	// Функция-хелпер для запуска слушателей
	startListener := func(name string, listener port.EventListenerPort) {
		defer wg.Done()
		listenerLogger := a.logger.WithFields(port.Fields{"listener_name": name})
		listenerLogger.Info("Starting listener...", nil)

		if err := listener.Start(appCtx); err != nil {
			listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
			errorsCh <- fmt.Errorf("%s error: %w", name, err)
		} else {
			listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
		}
	}

	if a.analysisRequestListener != nil {
		wg.Add(1)
		go startListener("Analysis Request Events Listener", a.analysisRequestListener)
	}

	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.Rest.PORT})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	// Ожидание сигнала на завершение или ошибки от одного из компонентов
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down...", nil)
	}

	// Инициируем graceful shutdown, отменяя главный контекст
	cancelApp()

	return nil
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		// Возвращаем безопасное значение по умолчанию и логируем предупреждение
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
