package main

import (
	"context"
	"database/sql"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/kost-system/access-service/internal/config"
	"github.com/kost-system/access-service/internal/repository"
	"github.com/kost-system/access-service/internal/service"
	"github.com/kost-system/access-service/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// One-shot payment reminder run, intended for external scheduling.
// Exits 0 only when every matching payment was handled without errors.
func main() {
	_ = godotenv.Load()

	dryRun := flag.Bool("dry-run", false, "compute and log reminders without persisting them")
	days := flag.String("days", "", "comma-separated lead days, e.g. 3,2,1,0 (defaults to REMINDER_LEAD_DAYS)")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	leadDays := cfg.ReminderLeadDays
	if *days != "" {
		leadDays, err = config.ParseLeadDays(*days)
		if err != nil {
			logger.Fatalf("Invalid -days value: %v", err)
		}
	}

	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	repo := repository.NewRepository(db)
	var mail service.MailSender
	if cfg.SMTPHost != "" {
		mail = email.NewSender(cfg, logger)
	}
	svc := service.NewReminderService(repo, mail, logger)

	if *dryRun {
		logger.Warn("Dry run mode - no reminders will be persisted")
	}

	result, err := svc.Run(context.Background(), leadDays, *dryRun)
	if err != nil {
		logger.Errorf("Reminder run failed: %v", err)
		os.Exit(1)
	}

	logger.Infof("Payment reminders completed: sent=%d skipped=%d errors=%d",
		result.TotalSent, result.Skipped, result.Errors)
	if result.Errors > 0 {
		os.Exit(1)
	}
}
