package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgetwatch/internal/budget"
	"budgetwatch/internal/config"
	"budgetwatch/internal/log"
	"budgetwatch/internal/mail"
	"budgetwatch/internal/notify"
	"budgetwatch/internal/report"
	"budgetwatch/internal/services"
	"budgetwatch/internal/storage"
	"budgetwatch/internal/ynab"
)

func main() {
	testMode := flag.Bool("test", false, "run against live data but deliver only to the test recipient")
	exportOnly := flag.Bool("export-only", false, "run the pipeline and write exports without sending email")
	flag.Parse()

	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := validate(cfg, *exportOnly); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *testMode, *exportOnly); err != nil {
		logger.Error("Budget run failed", log.FieldError, err)
		os.Exit(1)
	}
}

func validate(cfg *config.Config, exportOnly bool) error {
	if exportOnly {
		// No email delivery, so SMTP settings are not required.
		if err := cfg.Validate(); err != nil {
			return err
		}
		return cfg.ValidateSource()
	}
	return cfg.ValidateRun()
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger, testMode, exportOnly bool) error {
	started := time.Now()

	plan, err := budget.LoadPlan(cfg.PlanFile)
	if err != nil {
		return err
	}

	store, err := storage.NewHistoryStore(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var publisher services.AlertPublisher
	if cfg.AMQPURL != "" {
		client, err := notify.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// The broker is an optional channel; alerts still land in the
			// store and the report.
			logger.Warn("Notification broker unavailable", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	source := ynab.NewClient(cfg.YNABBaseURL, cfg.YNABToken, cfg.YNABBudgetID, cfg.FetchTimeout)
	processor := services.NewRunProcessor(source, store, plan, cfg.AlertThreshold, publisher, logger)

	bundle, err := processor.Run(ctx, testMode)
	if err != nil {
		return err
	}

	exporter := report.NewExporter(cfg.ReportDir)
	exportPath, err := exporter.SaveBundle(bundle)
	if err != nil {
		return err
	}
	logger.Info("Budget data exported",
		log.FieldOperation, log.OpExport,
		log.FieldPath, exportPath)

	body, err := report.RenderEmail(bundle, cfg.DashboardURL)
	if err != nil {
		return err
	}
	if _, err := exporter.SaveHTML(body, bundle.Timestamp, testMode); err != nil {
		logger.Warn("Could not save HTML report", log.FieldError, err)
	}

	history := store.SpendingSince(ctx, bundle.Timestamp.AddDate(0, 0, -30))
	if png, err := report.RenderTrendChart(history); err != nil {
		logger.Warn("Could not render trend chart", log.FieldError, err)
	} else if _, err := exporter.SaveChart(png, bundle.Timestamp, testMode); err != nil {
		logger.Warn("Could not save trend chart", log.FieldError, err)
	}

	if exportOnly {
		logger.Info("Export-only run complete, skipping email")
	} else {
		recipients := cfg.Recipients
		if testMode && cfg.TestRecipient != "" {
			recipients = []string{cfg.TestRecipient}
		}

		sender := mail.NewSender(cfg.SMTPHost, cfg.SMTPPortNumber(), cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPUser, logger)
		subject := report.Subject(bundle.Timestamp, testMode)
		if err := sender.Send(ctx, recipients, subject, body); err != nil {
			// The run's data is already durable; a mail outage only costs
			// this delivery.
			logger.Error("Email delivery failed", log.FieldError, err)
		} else {
			logger.Info("Report email sent", log.FieldCount, len(recipients))
		}
	}

	removed := report.Cleanup(ctx, logger, cfg.ReportDir, cfg.RetentionAge, cfg.TestRetentionAge, time.Now())
	if removed > 0 {
		logger.Info("Old report artifacts removed",
			log.FieldOperation, log.OpCleanup,
			log.FieldCount, removed)
	}

	logger.Info("Budget run complete",
		log.FieldDuration, time.Since(started).Milliseconds(),
		log.FieldCount, len(bundle.Metrics),
		"alerts", len(bundle.Alerts),
		log.FieldTestMode, testMode)

	return nil
}
