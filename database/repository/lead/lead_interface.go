package leadRepo

import (
	"time"

	"voyago/models"
)

// LeadFilter narrows List and Count queries.
type LeadFilter struct {
	// Reason keeps only leads with this hand-off reason when set.
	Reason string
	// Since keeps only leads created at or after this time when set.
	Since time.Time
	// Limit bounds the number of returned leads; 0 means the default page.
	Limit int64
}

// LeadRepository defines methods for lead data access.
type LeadRepository interface {
	// Create inserts a new lead record and returns its ID.
	Create(lead *models.Lead) (string, error)
	// AttachPhone sets the phone number on an existing lead.
	AttachPhone(id, phone string) error
	// GetByID retrieves a lead by its unique ID.
	GetByID(id string) (*models.Lead, error)
	// List retrieves leads matching the filter, newest first.
	List(filter LeadFilter) ([]models.Lead, error)
	// Count returns the number of leads matching the filter.
	Count(filter LeadFilter) (int64, error)
}
