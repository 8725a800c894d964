package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"voyago/models"
)

const TypeLeadHandoff = "lead:handoff"

func NewLeadHandoffTask(payload models.LeadHandoffPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeLeadHandoff, b)
	opts := []asynq.Option{
		asynq.Queue(QueueLeads),
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}

	return task, opts, nil
}
