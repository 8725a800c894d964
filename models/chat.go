package models

// ChatRequest is one inbound user turn.
type ChatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the reply to one turn. TourCards is non-empty only when the
// turn produced presentable offers.
type ChatResponse struct {
	Reply          string  `json:"reply"`
	TourCards      []Offer `json:"tour_cards,omitempty"`
	ConversationID string  `json:"conversation_id"`
	Phase          Phase   `json:"phase"`
}
