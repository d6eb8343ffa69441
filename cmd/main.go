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

	acquireSlotLockHandler "github.com/freshnest-app/booking-core/internal/api/handlers/acquire_slot_lock"
	advanceStatusHandler "github.com/freshnest-app/booking-core/internal/api/handlers/advance_status"
	cancelBookingHandler "github.com/freshnest-app/booking-core/internal/api/handlers/cancel_booking"
	claimJobHandler "github.com/freshnest-app/booking-core/internal/api/handlers/claim_job"
	createBookingHandler "github.com/freshnest-app/booking-core/internal/api/handlers/create_booking"
	extendSlotLockHandler "github.com/freshnest-app/booking-core/internal/api/handlers/extend_slot_lock"
	getAvailableSlotsHandler "github.com/freshnest-app/booking-core/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/freshnest-app/booking-core/internal/api/handlers/get_booking"
	getCustomerBookingsHandler "github.com/freshnest-app/booking-core/internal/api/handlers/get_customer_bookings"
	getProfessionalBookingsHandler "github.com/freshnest-app/booking-core/internal/api/handlers/get_professional_bookings"
	releaseSlotLockHandler "github.com/freshnest-app/booking-core/internal/api/handlers/release_slot_lock"
	"github.com/freshnest-app/booking-core/internal/api/middleware"
	"github.com/freshnest-app/booking-core/internal/config"
	availabilityRepo "github.com/freshnest-app/booking-core/internal/infra/storage/availability"
	bookingRepo "github.com/freshnest-app/booking-core/internal/infra/storage/booking"
	reversalRepo "github.com/freshnest-app/booking-core/internal/infra/storage/reversal"
	slotLockRepo "github.com/freshnest-app/booking-core/internal/infra/storage/slotlock"
	chatServiceClient "github.com/freshnest-app/booking-core/internal/integrations/chatservice"
	notifyServiceClient "github.com/freshnest-app/booking-core/internal/integrations/notifyservice"
	paymentServiceClient "github.com/freshnest-app/booking-core/internal/integrations/paymentservice"
	"github.com/freshnest-app/booking-core/internal/jobs/locksweeper"
	"github.com/freshnest-app/booking-core/internal/jobs/refunddispatcher"
	bookingsService "github.com/freshnest-app/booking-core/internal/service/bookings"
	slotLocksService "github.com/freshnest-app/booking-core/internal/service/slotlocks"
	cancelBookingUC "github.com/freshnest-app/booking-core/internal/usecase/cancel_booking"
	claimJobUC "github.com/freshnest-app/booking-core/internal/usecase/claim_job"
	createBookingUC "github.com/freshnest-app/booking-core/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/freshnest-app/booking-core/internal/usecase/get_available_slots"
	"github.com/freshnest-app/booking-core/pkg/dbmetrics"
	"github.com/freshnest-app/booking-core/pkg/events"
	"github.com/freshnest-app/booking-core/pkg/logger"
	"github.com/freshnest-app/booking-core/pkg/metrics"
	"github.com/freshnest-app/booking-core/pkg/simpletxmanager"
	"github.com/freshnest-app/booking-core/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
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

	log.Info("Starting booking-core...")
	log.Info("Configuration loaded from config.toml")

	// Таймзона операционного региона
	location, err := time.LoadLocation(cfg.Booking.Region)
	if err != nil {
		log.Fatal("Failed to load region timezone %q: %v", cfg.Booking.Region, err)
	}
	log.Info("Operating region: %s", cfg.Booking.Region)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
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

	// Инициализируем публикацию событий (если включена)
	var eventProducer *events.Producer
	if cfg.Kafka.Enabled {
		eventProducer, err = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Metrics.ServiceName)
		if err != nil {
			log.Fatal("Failed to initialize event producer: %v", err)
		}
		defer eventProducer.Close()
		log.Info("Event producer initialized (brokers=%v, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	// Интерфейс публикации событий для сервисов и usecases
	// nil отключает публикацию
	var eventsOut interface {
		Publish(ctx context.Context, event events.Event) error
	}
	if eventProducer != nil {
		eventsOut = eventProducer
	}

	// Инициализируем интеграционных клиентов
	paymentClient := paymentServiceClient.NewClient(
		cfg.PaymentService.URL,
		time.Duration(cfg.PaymentService.Timeout)*time.Second,
		log,
	)
	notifyClient := notifyServiceClient.NewClient(
		cfg.NotificationService.URL,
		time.Duration(cfg.NotificationService.Timeout)*time.Second,
		log,
	)
	chatClient := chatServiceClient.NewClient(
		cfg.ChatService.URL,
		time.Duration(cfg.ChatService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (PaymentService=%s, NotificationService=%s, ChatService=%s)",
		cfg.PaymentService.URL, cfg.NotificationService.URL, cfg.ChatService.URL)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository      *bookingRepo.Repository
		slotLockRepository     *slotLockRepo.Repository
		availabilityRepository *availabilityRepo.Repository
		reversalRepository     *reversalRepo.Repository
	)

	// Интерфейс transaction manager (используется в usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		slotLockRepository = slotLockRepo.NewRepository(wrappedDB)
		availabilityRepository = availabilityRepo.NewRepository(wrappedDB)
		reversalRepository = reversalRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		slotLockRepository = slotLockRepo.NewRepository(db)
		availabilityRepository = availabilityRepo.NewRepository(db)
		reversalRepository = reversalRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		eventsOut,
		notifyClient,
		log,
	)
	slotLockSvc := slotLocksService.NewService(
		slotLockRepository,
		time.Duration(cfg.Booking.LockTTLMinutes)*time.Minute,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		slotLockRepository,
		txMgr,
		eventsOut,
		notifyClient,
		location,
		cfg.Booking.PlatformFeeRate,
		cfg.Booking.TaxRate,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		availabilityRepository,
		location,
		log,
	)
	claimJobUseCase := claimJobUC.NewUseCase(
		bookingRepository,
		eventsOut,
		notifyClient,
		chatClient,
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		reversalRepository,
		txMgr,
		eventsOut,
		notifyClient,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getCustomerBookings := getCustomerBookingsHandler.NewHandler(bookingSvc, log)
	getProfessionalBookings := getProfessionalBookingsHandler.NewHandler(bookingSvc, log)
	claimJob := claimJobHandler.NewHandler(claimJobUseCase, log)
	advanceStatus := advanceStatusHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	acquireSlotLock := acquireSlotLockHandler.NewHandler(slotLockSvc, log)
	releaseSlotLock := releaseSlotLockHandler.NewHandler(slotLockSvc, log)
	extendSlotLock := extendSlotLockHandler.NewHandler(slotLockSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
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

	// Доступные слоты исполнителя
	api.HandleFunc("/professionals/{professionalId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/claim", claimJob.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/status", advanceStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// --- История и календарь ---
	protected.HandleFunc("/customers/{customerId}/bookings", getCustomerBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/professionals/{professionalId}/bookings",
		getProfessionalBookings.Handle).Methods(http.MethodGet)

	// --- Слот-локи ---
	protected.HandleFunc("/slot-locks", acquireSlotLock.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/slot-locks/{lockId}", releaseSlotLock.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/slot-locks/{lockId}/extend", extendSlotLock.Handle).Methods(http.MethodPatch)

	// Запускаем фоновые джобы
	jobsCtx, stopJobs := context.WithCancel(context.Background())

	var sweeperMetrics locksweeper.Metrics
	var dispatcherMetrics refunddispatcher.Metrics
	if metricsCollector != nil {
		sweeperMetrics = metricsCollector
		dispatcherMetrics = metricsCollector
	}

	sweeper := locksweeper.New(
		slotLockRepository,
		time.Duration(cfg.Booking.LockSweepSeconds)*time.Second,
		sweeperMetrics,
		log,
	)
	go sweeper.Run(jobsCtx)

	dispatcher := refunddispatcher.New(
		reversalRepository,
		paymentClient,
		time.Duration(cfg.Booking.ReversalPollSeconds)*time.Second,
		cfg.Booking.ReversalMaxAttempts,
		time.Duration(cfg.Booking.ReversalBackoffBase)*time.Second,
		dispatcherMetrics,
		log,
	)
	go dispatcher.Run(jobsCtx)

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

	// Останавливаем фоновые джобы
	stopJobs()

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

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
