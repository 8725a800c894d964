package crm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	leadRepo "voyago/database/repository/lead"
	"voyago/models"
	"voyago/services/tasks"
	"voyago/utils"
)

// Record persists the lead and enqueues a manager notification. A queue
// failure is logged but does not fail the hand-off; the lead is already
// stored and managers can pick it up from the admin list.
func (s *DefaultLeadService) Record(ctx context.Context, lead models.Lead) (string, error) {
	id, err := s.Repo.Create(&lead)
	if err != nil {
		return "", fmt.Errorf("failed to record lead: %w", err)
	}

	utils.GetLogger().Info("lead recorded",
		zap.String("leadId", id),
		zap.String("conversationId", lead.ConversationID),
		zap.String("reason", lead.Reason))

	s.notify(ctx, models.LeadHandoffPayload{
		LeadID:         id,
		ConversationID: lead.ConversationID,
		Reason:         lead.Reason,
	})
	return id, nil
}

// AttachPhone completes a stored lead with the caller's phone number.
func (s *DefaultLeadService) AttachPhone(ctx context.Context, leadID, phone string) error {
	if err := s.Repo.AttachPhone(leadID, phone); err != nil {
		return fmt.Errorf("failed to attach phone to lead: %w", err)
	}
	utils.GetLogger().Info("lead phone attached", zap.String("leadId", leadID))
	return nil
}

// List returns leads matching the filter, newest first.
func (s *DefaultLeadService) List(filter leadRepo.LeadFilter) ([]models.Lead, error) {
	return s.Repo.List(filter)
}

// Count returns the number of leads matching the filter.
func (s *DefaultLeadService) Count(filter leadRepo.LeadFilter) (int64, error) {
	return s.Repo.Count(filter)
}

func (s *DefaultLeadService) notify(ctx context.Context, payload models.LeadHandoffPayload) {
	if s.Queue == nil {
		return
	}
	task, opts, err := tasks.NewLeadHandoffTask(payload)
	if err != nil {
		utils.GetLogger().Warn("build lead hand-off task",
			zap.String("leadId", payload.LeadID), zap.Error(err))
		return
	}
	if _, err := s.Queue.EnqueueContext(ctx, task, opts...); err != nil {
		utils.GetLogger().Warn("enqueue lead hand-off",
			zap.String("leadId", payload.LeadID), zap.Error(err))
	}
}
