package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"voyago/models"
)

const TypeCatalogRefresh = "catalog:refresh"

// Queue names. Lead hand-offs must not starve behind catalog rebuilds.
const (
	QueueLeads   = "leads"
	QueueCatalog = "catalog"
)

func NewCatalogRefreshTask(payload models.CatalogRefreshPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeCatalogRefresh, b)
	opts := []asynq.Option{
		asynq.Queue(QueueCatalog),
		asynq.MaxRetry(3),
		asynq.Timeout(5 * time.Minute),
	}

	return task, opts, nil
}
