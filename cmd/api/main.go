package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/kost-system/access-service/internal/config"
	"github.com/kost-system/access-service/internal/handler"
	"github.com/kost-system/access-service/internal/integrations/mqtt"
	"github.com/kost-system/access-service/internal/middleware"
	"github.com/kost-system/access-service/internal/repository"
	"github.com/kost-system/access-service/internal/service"
	"github.com/kost-system/access-service/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const jobTimeout = 10 * time.Minute

func main() {
	_ = godotenv.Load()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	repo := repository.NewRepository(db)

	// Device transport is optional: without a broker the notifier
	// degrades to log-only.
	var publisher service.Publisher
	if cfg.MQTTBrokerURL != "" {
		mqttClient, err := mqtt.NewClient(cfg.MQTTBrokerURL, cfg.MQTTClientID, logger)
		if err != nil {
			logger.Warnf("MQTT unavailable, device notifications disabled: %v", err)
		} else {
			defer mqttClient.Close()
			publisher = mqttClient
		}
	}
	notifier := service.NewDeviceNotifier(publisher, cfg.MQTTTopicPrefix, logger)

	var mail service.MailSender
	if cfg.SMTPHost != "" {
		mail = email.NewSender(cfg, logger)
	}

	// Initialize layers
	events := &service.LogEventSink{Log: logger}
	accessSvc := service.NewAccessService(repo, notifier, events, mail, logger, cfg.DueDayOfMonth, cfg.GracePeriodDays)
	reminderSvc := service.NewReminderService(repo, mail, logger)
	authSvc := service.NewAuthService(repo, logger, cfg.JWTSecret)
	h := handler.NewHandler(authSvc, accessSvc, reminderSvc, cfg.ReminderLeadDays)

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/healthz", h.Health).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/reconcile", h.ReconcileAll).Methods("POST")
	authRouter.HandleFunc("/tenants/{id}/reconcile", h.ReconcileTenant).Methods("POST")
	authRouter.HandleFunc("/tenants/{id}/cards", h.IssueCard).Methods("POST")
	authRouter.HandleFunc("/reminders/run", h.RunReminders).Methods("POST")

	// Schedule the nightly reconciliation sweep and the reminder pass
	c := cron.New()
	_, err = c.AddFunc(cfg.ReconcileCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		logger.Info("Starting scheduled access reconciliation")
		result := accessSvc.ReconcileAll(ctx)
		logger.Infof("Scheduled reconciliation done: processed=%d updated=%d errors=%d",
			result.Processed, result.Updated, result.Errors)
	})
	if err != nil {
		logger.Fatalf("Failed to schedule reconciliation job: %v", err)
	}
	_, err = c.AddFunc(cfg.ReminderCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		logger.Info("Starting scheduled payment reminders")
		if _, err := reminderSvc.Run(ctx, cfg.ReminderLeadDays, false); err != nil {
			logger.Errorf("Scheduled reminder run failed: %v", err)
		}
	})
	if err != nil {
		logger.Fatalf("Failed to schedule reminder job: %v", err)
	}
	c.Start()
	defer c.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
