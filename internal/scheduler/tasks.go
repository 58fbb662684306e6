package scheduler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskRecordActivity = "enrollment.activity.record"

const TaskRecalculateDailyTasks = "enrollment.tasks.recalculate"

type ActivityPayload struct {
	ActivityID string         `json:"activityId"`
	LeadID     string         `json:"leadId"`
	UserID     string         `json:"userId"`
	CadenceID  *string        `json:"cadenceId,omitempty"`
	Kind       string         `json:"kind"`
	Name       string         `json:"name"`
	Status     *string        `json:"status,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

type RecalculateDailyTasksPayload struct {
	UserIDs []string `json:"userIds"`
}

func NewRecordActivityTask(payload ActivityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecordActivity, data), nil
}

func ParseRecordActivityPayload(task *asynq.Task) (ActivityPayload, error) {
	var payload ActivityPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ActivityPayload{}, err
	}
	return payload, nil
}

func NewRecalculateDailyTasksTask(userIDs []uuid.UUID) (*asynq.Task, error) {
	payload := RecalculateDailyTasksPayload{UserIDs: make([]string, 0, len(userIDs))}
	for _, id := range userIDs {
		payload.UserIDs = append(payload.UserIDs, id.String())
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecalculateDailyTasks, data), nil
}

func ParseRecalculateDailyTasksPayload(task *asynq.Task) ([]uuid.UUID, error) {
	var payload RecalculateDailyTasksPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(payload.UserIDs))
	for _, raw := range payload.UserIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
