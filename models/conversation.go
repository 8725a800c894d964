package models

import "time"

// Phase is the conversation phase. The set is closed: every transition in the
// dialogue engine matches exhaustively over these values.
type Phase string

const (
	PhaseGreeting   Phase = "greeting"
	PhaseCollecting Phase = "collecting"
	PhaseValidating Phase = "validating"
	PhaseEscalation Phase = "escalation"
	PhaseConfirming Phase = "confirming"
	PhaseSearching  Phase = "searching"
	PhasePresenting Phase = "presenting"
	PhaseFallback   Phase = "fallback"
	PhaseFAQ        Phase = "faq"
	PhaseError      Phase = "error"
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseGreeting, PhaseCollecting, PhaseValidating, PhaseEscalation,
		PhaseConfirming, PhaseSearching, PhasePresenting, PhaseFallback,
		PhaseFAQ, PhaseError:
		return true
	}
	return false
}

// ChatMessage is one entry of the per-conversation history window.
type ChatMessage struct {
	Role string    `json:"role"` // "user" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// ConversationState is everything the engine knows about one conversation.
// It is stored as JSON under the conversation id and restored each turn.
type ConversationState struct {
	ID    string    `json:"id"`
	Phase Phase     `json:"phase"`
	Slots TripSlots `json:"slots"`

	// LastAsked carries the slot the previous reply asked about, so a bare
	// answer like "7" or "Москва" lands in the right field.
	LastAsked Slot `json:"lastAsked,omitempty"`

	Greeted              bool `json:"greeted,omitempty"`
	AwaitingConfirmation bool `json:"awaitingConfirmation,omitempty"`
	SearchConfirmed      bool `json:"searchConfirmed,omitempty"`
	FallbackOffered      bool `json:"fallbackOffered,omitempty"`

	// QualityAsked marks the one optional hotel-level question as spent, so
	// a "рассмотрим варианты" answer moves on instead of re-asking.
	QualityAsked bool `json:"qualityAsked,omitempty"`

	// EmptySearches counts consecutive empty results; two in a row end in a
	// hand-off to a human manager. Reset by any non-empty result.
	EmptySearches int `json:"emptySearches,omitempty"`

	// RequestID remembers the vendor search id of the latest result so a
	// "show more" turn can try to extend it before falling back to a rerun.
	RequestID string `json:"requestId,omitempty"`

	// LeadID links the conversation to its CRM record once a hand-off
	// happened, so a phone number sent afterwards lands on the same lead.
	LeadID string `json:"leadId,omitempty"`

	Offers    []Offer       `json:"offers,omitempty"`
	LastError string        `json:"lastError,omitempty"`
	History   []ChatMessage `json:"history,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewConversationState returns a fresh state in the greeting phase.
func NewConversationState(id string) *ConversationState {
	now := time.Now()
	return &ConversationState{
		ID:        id,
		Phase:     PhaseGreeting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendMessage adds a history entry, trimming to the given window size.
func (s *ConversationState) AppendMessage(role, text string, window int) {
	s.History = append(s.History, ChatMessage{Role: role, Text: text, At: time.Now()})
	if window > 0 && len(s.History) > window {
		s.History = s.History[len(s.History)-window:]
	}
}
