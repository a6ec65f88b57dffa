package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"clinic_sync_backend/internal/appointments"
	apptrepo "clinic_sync_backend/internal/appointments/repository"
	"clinic_sync_backend/internal/archive"
	"clinic_sync_backend/internal/calendar"
	"clinic_sync_backend/internal/eligibility"
	eligrepo "clinic_sync_backend/internal/eligibility/repository"
	"clinic_sync_backend/internal/email"
	"clinic_sync_backend/internal/export"
	"clinic_sync_backend/internal/policy"
	"clinic_sync_backend/internal/scheduler"
	"clinic_sync_backend/platform/config"
	"clinic_sync_backend/platform/db"
	"clinic_sync_backend/platform/logger"
	"clinic_sync_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting sync scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pol, err := policy.Load(cfg.GetPolicyPath(), validator.New())
	if err != nil {
		log.Error("failed to load sync policy", "error", err)
		panic("failed to load sync policy: " + err.Error())
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	archiver, err := archive.NewStore(cfg, log)
	if err != nil {
		log.Error("failed to initialize export archive", "error", err)
		panic("failed to initialize export archive: " + err.Error())
	}

	appointmentSvc := appointments.NewService(
		export.NewLoader(cfg.GetExportPath(), archiver, log),
		apptrepo.New(pool),
		calendar.NewClient(cfg, log),
		email.NewSender(cfg, log),
		pol,
		cfg.GetErrorRecipient(),
		cfg.GetCalendarFetchConcurrency(),
		log,
	)
	eligibilitySvc := eligibility.NewService(eligrepo.New(pool), pol, log)

	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic enqueuer", "error", err)
		panic("failed to initialize periodic enqueuer: " + err.Error())
	}
	if err := periodic.Start(); err != nil {
		log.Error("failed to start periodic enqueuer", "error", err)
		panic("failed to start periodic enqueuer: " + err.Error())
	}
	defer periodic.Shutdown()

	worker, err := scheduler.NewWorker(cfg, appointmentSvc, eligibilitySvc, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}
