package scheduler

import (
	"fmt"
	"time"

	"clinic_sync_backend/platform/config"
	"clinic_sync_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Periodic registers the recurring sync tasks with the asynq scheduler.
// Each task carries a fixed task id, so a tick that fires while the previous
// run is still queued is dropped instead of stacking a second writer.
type Periodic struct {
	scheduler *asynq.Scheduler
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
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

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				log.Error("failed to enqueue periodic task", "error", err)
				return
			}
			log.Debug("enqueued periodic task", "type", info.Type, "queue", info.Queue)
		},
	})

	if _, err := scheduler.Register(
		every(cfg.GetAppointmentSyncInterval()),
		NewAppointmentSyncTask(),
		asynq.Queue(queue),
		asynq.TaskID(TaskAppointmentSync),
	); err != nil {
		return nil, fmt.Errorf("register appointment sync: %w", err)
	}

	eligibilityTask, err := NewEligibilitySyncTask(EligibilitySyncPayload{})
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(
		every(cfg.GetEligibilitySyncInterval()),
		eligibilityTask,
		asynq.Queue(queue),
		asynq.TaskID(TaskEligibilitySync),
	); err != nil {
		return nil, fmt.Errorf("register eligibility sync: %w", err)
	}

	return &Periodic{scheduler: scheduler}, nil
}

// Start runs the enqueuer loop in the background.
func (p *Periodic) Start() error {
	return p.scheduler.Start()
}

func (p *Periodic) Shutdown() {
	if p == nil || p.scheduler == nil {
		return
	}
	p.scheduler.Shutdown()
}

func every(interval time.Duration) string {
	if interval <= 0 {
		interval = time.Hour
	}
	return "@every " + interval.String()
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
