package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSeizureActionDue = "seizure.action.due"

type SeizureActionDuePayload struct {
	ActionID string `json:"actionId"`
}

func NewSeizureActionDueTask(payload SeizureActionDuePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSeizureActionDue, data), nil
}

func ParseSeizureActionDuePayload(task *asynq.Task) (SeizureActionDuePayload, error) {
	var payload SeizureActionDuePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SeizureActionDuePayload{}, err
	}
	return payload, nil
}
