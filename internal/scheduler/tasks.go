package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskAppointmentSync = "sync.appointments"

const TaskEligibilitySync = "sync.eligibility"

// EligibilitySyncPayload selects which clients to force-recompute. A zero
// payload is a normal minimal-delta run.
type EligibilitySyncPayload struct {
	ForceAll       bool    `json:"forceAll,omitempty"`
	ForceClientIDs []int64 `json:"forceClientIds,omitempty"`
}

func NewAppointmentSyncTask() *asynq.Task {
	return asynq.NewTask(TaskAppointmentSync, nil)
}

func NewEligibilitySyncTask(payload EligibilitySyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEligibilitySync, data), nil
}

func ParseEligibilitySyncPayload(task *asynq.Task) (EligibilitySyncPayload, error) {
	var payload EligibilitySyncPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return EligibilitySyncPayload{}, err
	}
	return payload, nil
}
