package models

import "time"

// Lead is a CRM record created when a conversation hands off to a human:
// oversized groups, booking requests, or a user who asked for a manager.
type Lead struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	ConversationID string    `bson:"conversationId" json:"conversationId"`
	Name           string    `bson:"name,omitempty" json:"name,omitempty"`
	Phone          string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Reason         string    `bson:"reason" json:"reason"` // "escalation", "booking", "manager_request"
	Slots          TripSlots `bson:"slots" json:"slots"`
	TourID         string    `bson:"tourId,omitempty" json:"tourId,omitempty"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}

// LeadHandoffPayload is the queue payload that notifies managers of a new lead.
type LeadHandoffPayload struct {
	LeadID         string `json:"leadId"`
	ConversationID string `json:"conversationId"`
	Reason         string `json:"reason"`
}

// CatalogRefreshPayload triggers a rebuild of the vendor reference catalogs.
type CatalogRefreshPayload struct {
	Requested time.Time `json:"requested"`
}
