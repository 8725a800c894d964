package crm

import (
	"context"

	"github.com/hibiken/asynq"

	leadRepo "voyago/database/repository/lead"
	"voyago/models"
)

// Service manages CRM leads: persisting hand-offs from the conversation
// engine and exposing them to the admin API.
type Service interface {
	// Record persists a new lead and notifies managers through the queue.
	Record(ctx context.Context, lead models.Lead) (string, error)
	// AttachPhone completes a lead once the caller sends a phone number.
	AttachPhone(ctx context.Context, leadID, phone string) error
	// List returns leads matching the filter, newest first.
	List(filter leadRepo.LeadFilter) ([]models.Lead, error)
	// Count returns the number of leads matching the filter.
	Count(filter leadRepo.LeadFilter) (int64, error)
}

// enqueuer is the slice of asynq.Client the service needs. Kept narrow so
// tests can script it.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// DefaultLeadService implements Service. Queue may be nil; leads are then
// persisted without a manager notification.
type DefaultLeadService struct {
	Repo  leadRepo.LeadRepository
	Queue enqueuer
}

// NewLeadService wires the CRM service with its repository and task queue.
func NewLeadService(repo leadRepo.LeadRepository, queue *asynq.Client) *DefaultLeadService {
	s := &DefaultLeadService{Repo: repo}
	// A nil *asynq.Client must stay a nil interface.
	if queue != nil {
		s.Queue = queue
	}
	return s
}
