package dialog

import (
	"context"
	"sync"
	"time"

	"voyago/models"
	"voyago/services/extractor"
	"voyago/services/intelligence"
	"voyago/services/search"
	"voyago/services/session"
)

// Service is the conversation engine: it takes one user message and produces
// one reply, advancing the stored conversation state.
type Service interface {
	// ProcessTurn handles one message. Turns of the same conversation are
	// serialized; turns of different conversations run concurrently.
	ProcessTurn(ctx context.Context, conversationID, message string) (*models.ChatResponse, error)
	// History returns the stored message window of a conversation.
	History(ctx context.Context, conversationID string) ([]models.ChatMessage, error)
	// Reset deletes a conversation so the next message starts fresh.
	Reset(ctx context.Context, conversationID string) error
}

// LeadSink records manager hand-offs. Recording persists the lead and
// notifies managers; AttachPhone completes a lead once the caller sends a
// phone number.
type LeadSink interface {
	Record(ctx context.Context, lead models.Lead) (string, error)
	AttachPhone(ctx context.Context, leadID, phone string) error
}

// DefaultDialogService implements Service. Search, Intelligence and Leads may
// be nil in tests; every path degrades to a fixed reply without them.
type DefaultDialogService struct {
	Sessions     session.Store
	Extractor    *extractor.Extractor
	Search       search.Service
	Intelligence intelligence.Service
	Leads        LeadSink

	// PartyLimit is the largest group served without a manager.
	PartyLimit int
	// HistoryWindow bounds the stored message history per conversation.
	HistoryWindow int

	Now func() time.Time

	locks sync.Map // conversation id -> *sync.Mutex
}

// NewDialogService wires the engine with production defaults.
func NewDialogService(sessions session.Store, ext *extractor.Extractor, srch search.Service,
	intel intelligence.Service, leads LeadSink) *DefaultDialogService {
	return &DefaultDialogService{
		Sessions:      sessions,
		Extractor:     ext,
		Search:        srch,
		Intelligence:  intel,
		Leads:         leads,
		PartyLimit:    6,
		HistoryWindow: 20,
		Now:           time.Now,
	}
}

func (s *DefaultDialogService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultDialogService) partyLimit() int {
	if s.PartyLimit > 0 {
		return s.PartyLimit
	}
	return 6
}

func (s *DefaultDialogService) historyWindow() int {
	if s.HistoryWindow > 0 {
		return s.HistoryWindow
	}
	return 20
}

// sessionLock returns the mutex serializing turns of one conversation.
func (s *DefaultDialogService) sessionLock(conversationID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(conversationID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
