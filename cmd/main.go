package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	addPaymentHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/add_payment"
	calculateFinalAmountHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/calculate_final_amount"
	cancelReservationHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/cancel_reservation"
	completeReservationHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/complete_reservation"
	createReservationHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/create_reservation"
	findNearestSpotsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/find_nearest_spots"
	getAreaPolicyHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_area_policy"
	getAreaReservationsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_area_reservations"
	getReservationHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_reservation"
	getSlotStatusHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_slot_status"
	getUserReservationsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_user_reservations"
	setAreaActivationHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/set_area_activation"
	transitionReservationHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/transition_reservation"
	updateAreaPolicyHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/update_area_policy"
	updateAreaPricesHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/update_area_prices"
	updateSlotHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/update_slot"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/config"
	areaCache "github.com/m04kA/SMC-ParkingService/internal/infra/cache/areas"
	areaRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/parkingarea"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/parkingslot"
	policyRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/policy"
	reservationRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/userservice"
	parkingAreasService "github.com/m04kA/SMC-ParkingService/internal/service/parkingareas"
	parkingSlotsService "github.com/m04kA/SMC-ParkingService/internal/service/parkingslots"
	reservationsService "github.com/m04kA/SMC-ParkingService/internal/service/reservations"
	createReservationUC "github.com/m04kA/SMC-ParkingService/internal/usecase/create_reservation"
	findNearestSpotsUC "github.com/m04kA/SMC-ParkingService/internal/usecase/find_nearest_spots"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/logger"
	"github.com/m04kA/SMC-ParkingService/pkg/metrics"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.toml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ParkingService...")
	log.Info("Configuration loaded from %s", configPath)

	// Инициализируем метрики (если включены)
	// При выключенных метриках сервисы получают nil: все методы Metrics безопасны для nil
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	txMgr := txmanager.NewTransactionManager(wrappedDB).
		WithSerializableAttempts(cfg.Policy.MaxTransitionAttempts)

	// Кеш кандидатов геопоиска
	var candidateCache interface {
		findNearestSpotsUC.AreaCache
		parkingAreasService.AreaCache
	} = areaCache.Noop{}

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			// Кеш необязателен: без Redis поиск ходит напрямую в БД
			log.Warn("Redis unavailable at %s, candidate cache disabled: %v", cfg.Redis.Addr, err)
		} else {
			candidateCache = areaCache.NewRedisCache(redisClient, cfg.Redis.Prefix,
				time.Duration(cfg.Redis.TTL)*time.Second, log)
			log.Info("Candidate cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
		}
	}

	// Инициализируем интеграционных клиентов
	var userClient createReservationUC.UserServiceClient = userservice.Noop{}
	if cfg.UserService.Enabled {
		userClient = userservice.NewClient(
			cfg.UserService.URL,
			time.Duration(cfg.UserService.Timeout)*time.Second,
			log,
		)
		log.Info("UserService client initialized (url=%s, timeout=%ds)", cfg.UserService.URL, cfg.UserService.Timeout)
	}

	var notifier createReservationUC.Notifier = notificationservice.Noop{}
	if cfg.NotificationService.Enabled {
		notifier = notificationservice.NewClient(
			cfg.NotificationService.URL,
			time.Duration(cfg.NotificationService.Timeout)*time.Second,
			log,
		)
		log.Info("NotificationService client initialized (url=%s, timeout=%ds)",
			cfg.NotificationService.URL, cfg.NotificationService.Timeout)
	}

	// Инициализируем репозитории
	areaRepository := areaRepo.NewRepository(wrappedDB)
	slotRepository := slotRepo.NewRepository(wrappedDB)
	reservationRepository := reservationRepo.NewRepository(wrappedDB)
	policyRepository := policyRepo.NewRepository(wrappedDB)

	basePolicy := cfg.Policy.Domain()

	// Инициализируем use cases
	findNearestSpotsUseCase := findNearestSpotsUC.NewUseCase(
		areaRepository,
		slotRepository,
		reservationRepository,
		policyRepository,
		candidateCache,
		metricsCollector,
		findNearestSpotsUC.Options{
			Policy:              basePolicy,
			DefaultRadiusMeters: cfg.Policy.DefaultSearchRadiusMeters,
			SampleSize:          cfg.Policy.FreeSlotSampleSize,
		},
		log,
	)

	createReservationUseCase := createReservationUC.NewUseCase(
		slotRepository,
		areaRepository,
		reservationRepository,
		policyRepository,
		userClient,
		notifier,
		txMgr,
		metricsCollector,
		createReservationUC.Options{
			Policy:                basePolicy,
			AutoConfirm:           cfg.Policy.AutoConfirm,
			ClockSkew:             cfg.Policy.ClockSkew(),
			MaxTransitionAttempts: cfg.Policy.MaxTransitionAttempts,
		},
		log,
	)

	// Инициализируем сервисы
	reservationSvc := reservationsService.NewService(
		reservationRepository,
		slotRepository,
		areaRepository,
		policyRepository,
		txMgr,
		metricsCollector,
		reservationsService.Options{
			Policy:                basePolicy,
			ClockSkew:             cfg.Policy.ClockSkew(),
			MaxTransitionAttempts: cfg.Policy.MaxTransitionAttempts,
		},
		log,
	)
	areaSvc := parkingAreasService.NewService(
		areaRepository,
		policyRepository,
		candidateCache,
		txMgr,
		basePolicy,
		log,
	)
	slotSvc := parkingSlotsService.NewService(
		slotRepository,
		areaRepository,
		reservationRepository,
		policyRepository,
		txMgr,
		basePolicy,
		log,
	)

	// Инициализируем handlers
	findNearestSpots := findNearestSpotsHandler.NewHandler(findNearestSpotsUseCase, log)
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	transitionReservation := transitionReservationHandler.NewHandler(reservationSvc, log)
	completeReservation := completeReservationHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	calculateFinalAmount := calculateFinalAmountHandler.NewHandler(reservationSvc, log)
	addPayment := addPaymentHandler.NewHandler(reservationSvc, log)
	getUserReservations := getUserReservationsHandler.NewHandler(reservationSvc, log)
	getAreaReservations := getAreaReservationsHandler.NewHandler(reservationSvc, log)
	setAreaActivation := setAreaActivationHandler.NewHandler(areaSvc, log)
	getAreaPolicy := getAreaPolicyHandler.NewHandler(areaSvc, log)
	updateAreaPolicy := updateAreaPolicyHandler.NewHandler(areaSvc, log)
	updateSlot := updateSlotHandler.NewHandler(slotSvc, log)
	updateAreaPrices := updateAreaPricesHandler.NewHandler(slotSvc, log)
	getSlotStatus := getSlotStatusHandler.NewHandler(slotSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware и endpoint (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Поиск свободных мест рядом
	api.HandleFunc("/parking-area/nearest-parking-spots", findNearestSpots.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Брони ---
	protected.HandleFunc("/reservation", createReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservation/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservation/{reservationId}", transitionReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservation/{reservationId}/complete", completeReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservation/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservation/{reservationId}/calculate-final-amount", calculateFinalAmount.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservation/{reservationId}/payments", addPayment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/users/{userId}/reservations", getUserReservations.Handle).Methods(http.MethodGet)

	// --- Управление парковкой (для владельцев) ---
	protected.HandleFunc("/parking-area/{areaId}/activation", setAreaActivation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/parking-area/{areaId}/policy", getAreaPolicy.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/parking-area/{areaId}/policy", updateAreaPolicy.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/parking-area/{areaId}/reservations", getAreaReservations.Handle).Methods(http.MethodGet)

	// --- Места ---
	protected.HandleFunc("/parking-slot/parking-area/{areaId}", updateAreaPrices.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/parking-slot/parking-area/{areaId}/status", getSlotStatus.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/parking-slot/{slotId}", updateSlot.Handle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
