package scheduler

import (
	"context"
	"fmt"

	"clinic_sync_backend/internal/appointments"
	"clinic_sync_backend/internal/eligibility"
	"clinic_sync_backend/platform/config"
	"clinic_sync_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// AppointmentSyncer runs one appointment reconciliation batch.
type AppointmentSyncer interface {
	Run(ctx context.Context) (appointments.Stats, error)
}

// EligibilitySyncer runs one eligibility batch.
type EligibilitySyncer interface {
	Run(ctx context.Context, opts eligibility.Options) (eligibility.Stats, error)
}

// Worker consumes the periodic sync tasks. Concurrency is pinned to 1: both
// jobs write the same tables and the design assumes a single writer.
type Worker struct {
	server       *asynq.Server
	mux          *asynq.ServeMux
	appointments AppointmentSyncer
	eligibility  EligibilitySyncer
	log          *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, appts AppointmentSyncer, elig EligibilitySyncer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetSyncQueueName()
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 1,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:       server,
		mux:          mux,
		appointments: appts,
		eligibility:  elig,
		log:          log,
	}

	mux.HandleFunc(TaskAppointmentSync, w.handleAppointmentSync)
	mux.HandleFunc(TaskEligibilitySync, w.handleEligibilitySync)

	return w, nil
}

func (w *Worker) handleAppointmentSync(ctx context.Context, _ *asynq.Task) error {
	w.log.Info("starting scheduled appointment sync")
	_, err := w.appointments.Run(ctx)
	return err
}

func (w *Worker) handleEligibilitySync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseEligibilitySyncPayload(task)
	if err != nil {
		return err
	}

	w.log.Info("starting scheduled eligibility sync", "force_all", payload.ForceAll)
	_, err = w.eligibility.Run(ctx, eligibility.Options{
		ForceAll:       payload.ForceAll,
		ForceClientIDs: payload.ForceClientIDs,
	})
	return err
}

// Run blocks until ctx is cancelled, then drains in-flight tasks.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
