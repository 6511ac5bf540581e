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
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	activateTemplateHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/activate_template"
	cancelLessonHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/cancel_lesson"
	checkAvailabilityHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/check_availability"
	checkSlotConflictsHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/check_slot_conflicts"
	completeLessonHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/complete_lesson"
	createLessonHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/create_lesson"
	createSlotHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/create_slot"
	createTemplateHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/create_template"
	createTopicHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/create_topic"
	deleteLessonHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/delete_lesson"
	deleteSlotHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/delete_slot"
	deleteTemplateHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/delete_template"
	deleteTopicHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/delete_topic"
	generateLessonsHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/generate_lessons"
	getLessonsHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/get_lessons"
	getSlotsHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/get_slots"
	getTemplatesHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/get_templates"
	getTopicsHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/get_topics"
	getWeeklyScheduleHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/get_weekly_schedule"
	updateLessonHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/update_lesson"
	updateSlotHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/update_slot"
	updateTemplateHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/update_template"
	updateTopicHandler "github.com/maktab-crm/schedule-service/internal/api/handlers/update_topic"
	"github.com/maktab-crm/schedule-service/internal/api/middleware"
	"github.com/maktab-crm/schedule-service/internal/config"
	lessonRepo "github.com/maktab-crm/schedule-service/internal/infra/storage/lesson"
	timetableRepo "github.com/maktab-crm/schedule-service/internal/infra/storage/timetable"
	topicRepo "github.com/maktab-crm/schedule-service/internal/infra/storage/topic"
	branchServiceClient "github.com/maktab-crm/schedule-service/internal/integrations/branchservice"
	schoolServiceClient "github.com/maktab-crm/schedule-service/internal/integrations/schoolservice"
	"github.com/maktab-crm/schedule-service/internal/jobs"
	lessonsService "github.com/maktab-crm/schedule-service/internal/service/lessons"
	timetablesService "github.com/maktab-crm/schedule-service/internal/service/timetables"
	checkAvailabilityUC "github.com/maktab-crm/schedule-service/internal/usecase/check_availability"
	generateLessonsUC "github.com/maktab-crm/schedule-service/internal/usecase/generate_lessons"
	"github.com/maktab-crm/schedule-service/migrations"
	"github.com/maktab-crm/schedule-service/pkg/dbmetrics"
	"github.com/maktab-crm/schedule-service/pkg/logger"
	"github.com/maktab-crm/schedule-service/pkg/metrics"
	"github.com/maktab-crm/schedule-service/pkg/simpletxmanager"
	"github.com/maktab-crm/schedule-service/pkg/txmanager"
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

	log.Info("Starting schedule-service...")
	log.Info("Configuration loaded from config.toml")

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

	// Накатываем миграции из embed FS
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("Failed to set goose dialect: %v", err)
	}
	if err := goose.Up(db, "."); err != nil {
		log.Fatal("Failed to apply migrations: %v", err)
	}
	log.Info("Database migrations applied")

	// Инициализируем интеграционных клиентов
	schoolClient := schoolServiceClient.NewClient(
		cfg.SchoolService.URL,
		time.Duration(cfg.SchoolService.Timeout)*time.Second,
		log,
	)
	branchClient := branchServiceClient.NewClient(
		cfg.BranchService.URL,
		time.Duration(cfg.BranchService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (SchoolService=%s timeout=%ds, BranchService=%s timeout=%ds)",
		cfg.SchoolService.URL, cfg.SchoolService.Timeout, cfg.BranchService.URL, cfg.BranchService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		timetableRepository *timetableRepo.Repository
		lessonRepository    *lessonRepo.Repository
		topicRepository     *topicRepo.Repository
	)

	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		timetableRepository = timetableRepo.NewRepository(wrappedDB)
		lessonRepository = lessonRepo.NewRepository(wrappedDB)
		topicRepository = topicRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		timetableRepository = timetableRepo.NewRepository(db)
		lessonRepository = lessonRepo.NewRepository(db)
		topicRepository = topicRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	timeProvider := generateLessonsUC.RealTimeProvider{}

	// Инициализируем сервисы
	timetableSvc := timetablesService.NewService(
		timetableRepository,
		lessonRepository,
		schoolClient,
		branchClient,
		txMgr,
		timeProvider,
		log,
	)
	lessonSvc := lessonsService.NewService(
		lessonRepository,
		topicRepository,
		schoolClient,
		branchClient,
		txMgr,
		timeProvider,
		log,
	)

	// Инициализируем use cases
	generateLessonsUseCase := generateLessonsUC.NewUseCase(
		timetableRepository,
		lessonRepository,
		branchClient,
		schoolClient,
		timeProvider,
		log,
	)
	checkAvailabilityUseCase := checkAvailabilityUC.NewUseCase(lessonRepository, schoolClient, branchClient, log)

	// Инициализируем handlers
	createTemplate := createTemplateHandler.NewHandler(timetableSvc, log)
	getTemplates := getTemplatesHandler.NewHandler(timetableSvc, log)
	updateTemplate := updateTemplateHandler.NewHandler(timetableSvc, log)
	activateTemplate := activateTemplateHandler.NewHandler(timetableSvc, log)
	deleteTemplate := deleteTemplateHandler.NewHandler(timetableSvc, log)
	createSlot := createSlotHandler.NewHandler(timetableSvc, log)
	getSlots := getSlotsHandler.NewHandler(timetableSvc, log)
	updateSlot := updateSlotHandler.NewHandler(timetableSvc, log)
	deleteSlot := deleteSlotHandler.NewHandler(timetableSvc, log)
	checkSlotConflicts := checkSlotConflictsHandler.NewHandler(timetableSvc, log)
	generateLessons := generateLessonsHandler.NewHandler(generateLessonsUseCase, log)
	checkAvailability := checkAvailabilityHandler.NewHandler(checkAvailabilityUseCase, log)
	createLesson := createLessonHandler.NewHandler(lessonSvc, log)
	getLessons := getLessonsHandler.NewHandler(lessonSvc, log)
	updateLesson := updateLessonHandler.NewHandler(lessonSvc, log)
	completeLesson := completeLessonHandler.NewHandler(lessonSvc, log)
	cancelLesson := cancelLessonHandler.NewHandler(lessonSvc, log)
	deleteLesson := deleteLessonHandler.NewHandler(lessonSvc, log)
	getWeeklySchedule := getWeeklyScheduleHandler.NewHandler(lessonSvc, log)
	createTopic := createTopicHandler.NewHandler(lessonSvc, log)
	getTopics := getTopicsHandler.NewHandler(lessonSvc, log)
	updateTopic := updateTopicHandler.NewHandler(lessonSvc, log)
	deleteTopic := deleteTopicHandler.NewHandler(lessonSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Расписание класса на неделю
	api.HandleFunc("/classes/{classId}/schedule/weekly", getWeeklySchedule.Handle).Methods(http.MethodGet)

	// Занятия с фильтрацией и по ID
	api.HandleFunc("/lessons", getLessons.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/lessons/{lessonId}", getLessons.HandleByID).Methods(http.MethodGet)

	// Темы предмета
	api.HandleFunc("/subjects/{subjectId}/topics", getTopics.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/topics/{topicId}", getTopics.HandleByID).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Шаблоны расписания ---
	protected.HandleFunc("/timetables", createTemplate.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/timetables", getTemplates.HandleList).Methods(http.MethodGet)
	protected.HandleFunc("/timetables/{timetableId}", getTemplates.HandleByID).Methods(http.MethodGet)
	protected.HandleFunc("/timetables/{timetableId}", updateTemplate.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/timetables/{timetableId}", deleteTemplate.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/timetables/{timetableId}/activate", activateTemplate.HandleActivate).Methods(http.MethodPost)
	protected.HandleFunc("/timetables/{timetableId}/deactivate", activateTemplate.HandleDeactivate).Methods(http.MethodPost)

	// --- Слоты шаблона ---
	protected.HandleFunc("/timetables/{timetableId}/slots", createSlot.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/timetables/{timetableId}/slots", getSlots.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/timetables/{timetableId}/slots/bulk", createSlot.HandleBulk).Methods(http.MethodPost)
	protected.HandleFunc("/timetables/{timetableId}/slots/check", checkSlotConflicts.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/slots/{slotId}", updateSlot.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/slots/{slotId}", deleteSlot.Handle).Methods(http.MethodDelete)

	// --- Генерация занятий ---
	protected.HandleFunc("/timetables/{timetableId}/generate", generateLessons.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/timetables/{timetableId}/generate/week", generateLessons.HandleWeek).Methods(http.MethodPost)
	protected.HandleFunc("/timetables/{timetableId}/generate/month", generateLessons.HandleMonth).Methods(http.MethodPost)
	protected.HandleFunc("/timetables/{timetableId}/generate/quarter/{quarterId}", generateLessons.HandleQuarter).Methods(http.MethodPost)

	// --- Проверка доступности ---
	protected.HandleFunc("/availability/check", checkAvailability.Handle).Methods(http.MethodPost)

	// --- Занятия ---
	protected.HandleFunc("/lessons", createLesson.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/lessons/{lessonId}", updateLesson.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/lessons/{lessonId}", deleteLesson.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/lessons/{lessonId}/complete", completeLesson.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/lessons/{lessonId}/cancel", cancelLesson.Handle).Methods(http.MethodPost)

	// --- Темы ---
	protected.HandleFunc("/topics", createTopic.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/topics/{topicId}", updateTopic.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/topics/{topicId}", deleteTopic.Handle).Methods(http.MethodDelete)

	// Фоновая догенерация занятий по активным шаблонам
	jobsCtx, jobsCancel := context.WithCancel(context.Background())
	defer jobsCancel()
	if cfg.Jobs.Enabled {
		runner := jobs.New(jobsCtx)
		jobs.StartGenerateSweeps(
			runner,
			generateLessonsUseCase,
			time.Duration(cfg.Jobs.WeekSweepInterval)*time.Hour,
			time.Duration(cfg.Jobs.MonthSweepInterval)*time.Hour,
			log,
		)
		log.Info("Background generate sweeps started (week=%dh, month=%dh)",
			cfg.Jobs.WeekSweepInterval, cfg.Jobs.MonthSweepInterval)
	}

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

	// Останавливаем фоновые задачи и сбор метрик connection pool
	jobsCancel()
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
