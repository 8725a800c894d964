// Package dialog is the conversation engine: it owns the phase machine that
// collects trip parameters over turns, validates and confirms them, runs the
// search and presents the offers, with FAQ answers, fallback suggestions and
// manager hand-offs along the way.
package dialog

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"voyago/models"
	"voyago/services/search"
	"voyago/services/session"
	"voyago/utils"
)

func (s *DefaultDialogService) ProcessTurn(ctx context.Context, conversationID, message string) (resp *models.ChatResponse, err error) {
	logger := utils.GetLogger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("dialogue turn panicked",
				zap.String("conversationId", conversationID),
				zap.Any("panic", r))
			resp = &models.ChatResponse{
				Reply:          genericRecoveryText,
				ConversationID: conversationID,
				Phase:          models.PhaseError,
			}
			err = nil
		}
	}()

	mu := s.sessionLock(conversationID)
	mu.Lock()
	defer mu.Unlock()

	state, err := s.Sessions.Get(ctx, conversationID)
	if errors.Is(err, session.ErrNotFound) {
		state = models.NewConversationState(conversationID)
	} else if err != nil {
		logger.Error("load conversation",
			zap.String("conversationId", conversationID), zap.Error(err))
		return nil, newDialogError("sessionUnavailable", "conversation state could not be loaded")
	}

	clean, rejection := sanitizeInput(message)
	if rejection != "" {
		state.AppendMessage("user", clip(message, 200), s.historyWindow())
		state.AppendMessage("assistant", rejection, s.historyWindow())
		if saveErr := s.Sessions.Save(ctx, state); saveErr != nil {
			logger.Warn("save conversation",
				zap.String("conversationId", conversationID), zap.Error(saveErr))
		}
		return &models.ChatResponse{Reply: rejection, ConversationID: state.ID, Phase: state.Phase}, nil
	}
	state.AppendMessage("user", clean, s.historyWindow())

	t := &turn{ctx: ctx, state: state}
	s.route(t, clean)

	reply := scrubOutput(strings.TrimSpace(t.out))
	if reply == "" {
		logger.Error("turn produced no reply",
			zap.String("conversationId", conversationID),
			zap.String("phase", string(state.Phase)))
		reply = genericRecoveryText
		state.Phase = models.PhaseCollecting
	}
	state.AppendMessage("assistant", reply, s.historyWindow())

	if saveErr := s.Sessions.Save(ctx, state); saveErr != nil {
		logger.Error("save conversation",
			zap.String("conversationId", conversationID), zap.Error(saveErr))
		return nil, newDialogError("sessionUnavailable", "conversation state could not be saved")
	}

	return &models.ChatResponse{
		Reply:          reply,
		TourCards:      t.cards,
		ConversationID: state.ID,
		Phase:          state.Phase,
	}, nil
}

func (s *DefaultDialogService) History(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	state, err := s.Sessions.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return state.History, nil
}

func (s *DefaultDialogService) Reset(ctx context.Context, conversationID string) error {
	mu := s.sessionLock(conversationID)
	mu.Lock()
	defer mu.Unlock()
	return s.Sessions.Delete(ctx, conversationID)
}

// route decides what this message is before the phase machine runs: a phone
// number for a waiting hand-off, a booking request, a fallback menu answer, a
// "show more", an FAQ question, or regular slot input.
func (s *DefaultDialogService) route(t *turn, msg string) {
	state := t.state
	lower := strings.ToLower(strings.TrimSpace(msg))

	if state.Phase == models.PhaseEscalation {
		s.handlePhoneTurn(t, msg)
		return
	}

	intent := models.IntentSearch
	if s.Intelligence != nil {
		intent = s.Intelligence.ClassifyIntent(t.ctx, msg)
	}

	changed := false
	if s.Extractor != nil {
		extracted := s.Extractor.Extract(msg, state.Slots, state.LastAsked)
		changed = !slotsEqual(extracted, state.Slots)
		state.Slots = extracted
	}
	if intent == models.IntentHotTours && !state.Slots.HotTour {
		state.Slots.HotTour = true
		changed = true
	}
	if changed {
		// The hint is consumed; the next question sets a fresh one.
		state.LastAsked = models.SlotNone
	}

	if intent == models.IntentBooking {
		s.handleBookingIntent(t, msg, lower)
		return
	}
	if isManagerRequest(lower) {
		s.handleManagerRequest(t)
		return
	}

	if state.Phase == models.PhaseFallback && state.FallbackOffered {
		s.routeFallbackReply(t, msg, lower, intent, changed)
		return
	}
	if state.Phase == models.PhasePresenting {
		s.routePresentingReply(t, msg, lower, intent, changed)
		return
	}

	// FAQ and chatter only swallow a turn that carried no slot data.
	if !changed && intent.IsFAQ() {
		s.handleFAQ(t, msg, intent)
		return
	}
	if !changed && state.Greeted && intent == models.IntentGeneral {
		s.handleSmallTalk(t, msg, "")
		return
	}

	s.runMachine(t)
}

// routeFallbackReply interprets the answer to the three-option menu. New slot
// data restarts the pipeline instead.
func (s *DefaultDialogService) routeFallbackReply(t *turn, msg, lower string, intent models.Intent, changed bool) {
	state := t.state
	if choice := parseFallbackChoice(lower); choice > 0 {
		for _, alt := range search.Alternatives(state.Slots, s.now()) {
			if alt.Option == choice {
				state.Slots = alt.Trip
				break
			}
		}
		state.FallbackOffered = false
		state.AwaitingConfirmation = false
		state.SearchConfirmed = true
		state.Phase = models.PhaseSearching
		s.runMachine(t)
		return
	}
	if changed {
		state.FallbackOffered = false
		state.AwaitingConfirmation = false
		state.SearchConfirmed = false
		state.Phase = models.PhaseValidating
		s.runMachine(t)
		return
	}
	if intent.IsFAQ() {
		s.handleFAQ(t, msg, intent)
		return
	}
	t.say(fallbackRepeatText)
}

// routePresentingReply handles follow-ups to a shown result set: refinements
// re-run the pipeline, "ещё" extends it, the rest is FAQ or chatter.
func (s *DefaultDialogService) routePresentingReply(t *turn, msg, lower string, intent models.Intent, changed bool) {
	state := t.state
	if changed {
		state.SearchConfirmed = false
		state.Phase = models.PhaseValidating
		s.runMachine(t)
		return
	}
	if wantsMoreOffers(lower) {
		s.handleShowMore(t)
		return
	}
	if intent.IsFAQ() {
		s.handleFAQ(t, msg, intent)
		return
	}
	if intent == models.IntentGeneral || intent == models.IntentGreeting {
		s.handleSmallTalk(t, msg, presentingFollowupText)
		return
	}
	t.say(presentingFollowupText)
}

// handleFAQ answers from the knowledge base and, mid-collection, re-asks the
// pending question so the flow is not lost.
func (s *DefaultDialogService) handleFAQ(t *turn, question string, intent models.Intent) {
	answer := s.Intelligence.AnswerFAQ(t.ctx, intent, question)
	state := t.state
	if state.Phase == models.PhasePresenting || state.Phase == models.PhaseFallback {
		t.say(answer)
		return
	}
	state.Greeted = true
	state.Phase = models.PhaseFAQ
	if missing := state.Slots.MissingRequired(); len(missing) > 0 {
		slot := missing[0]
		state.LastAsked = slot
		t.say(answer + "\n\n" + questionFor(slot, state.Slots))
		return
	}
	t.say(answer)
}

// handleSmallTalk lets the model answer chatter, then steers back to the
// pending question. Without a model the pending question alone is the reply.
func (s *DefaultDialogService) handleSmallTalk(t *turn, msg, idleText string) {
	reply := ""
	if s.Intelligence != nil {
		reply = s.Intelligence.SmallTalk(t.ctx, msg, t.state.History)
	}
	pending := ""
	if t.state.Phase != models.PhasePresenting {
		if missing := t.state.Slots.MissingRequired(); len(missing) > 0 {
			pending = questionFor(missing[0], t.state.Slots)
			t.state.LastAsked = missing[0]
		}
	}
	switch {
	case reply != "" && pending != "":
		t.say(reply + "\n\n" + pending)
	case reply != "":
		t.say(reply)
	case pending != "":
		t.say(pending)
	case idleText != "":
		t.say(idleText)
	default:
		t.say(smallTalkIdleText)
	}
}

// handleShowMore extends the last search. The continue call picks up slower
// operators; the second result page is the backstop. Already-shown offers
// are filtered out.
func (s *DefaultDialogService) handleShowMore(t *turn) {
	state := t.state
	if s.Search == nil || state.RequestID == "" {
		t.say(noMoreOffersText)
		return
	}
	logger := utils.GetLogger()

	seen := make(map[string]bool, len(state.Offers))
	for _, o := range state.Offers {
		seen[o.TourID] = true
	}
	fresh := func(result *models.SearchResult) []models.Offer {
		if result == nil {
			return nil
		}
		var out []models.Offer
		for _, o := range result.Offers {
			if !seen[o.TourID] {
				out = append(out, o)
			}
		}
		return out
	}

	result, err := s.Search.ContinueSearch(t.ctx, state.RequestID, state.Slots)
	if err != nil {
		logger.Warn("continue search",
			zap.String("conversationId", state.ID), zap.Error(err))
		t.say(presentErrorText)
		return
	}
	offers := fresh(result)
	if len(offers) == 0 {
		page2, err2 := s.Search.FetchMore(t.ctx, state.RequestID, state.Slots, 2)
		if err2 != nil {
			logger.Warn("fetch next page",
				zap.String("conversationId", state.ID), zap.Error(err2))
		} else {
			offers = fresh(page2)
			if len(offers) > 0 {
				result = page2
			}
		}
	}
	if len(offers) == 0 {
		t.say(noMoreOffersText)
		return
	}
	if result != nil && result.RequestID != "" {
		state.RequestID = result.RequestID
	}
	state.Offers = offers
	t.cards = offers
	t.say(moreOffersHeader(len(offers)))
}

// handleBookingIntent starts the lead capture. Oversized groups are promised
// the group-booking desk; a reference to a shown card is re-priced before the
// hand-off.
func (s *DefaultDialogService) handleBookingIntent(t *turn, msg, lower string) {
	state := t.state
	if state.Slots.TotalPax() > s.partyLimit() {
		if phone := detectPhone(msg); phone != "" {
			s.completeLead(t, "booking", "", phone)
			return
		}
		s.recordLead(t, "booking", "")
		state.Phase = models.PhaseEscalation
		state.AwaitingConfirmation = true
		t.say(groupBookingText(state.Slots.TotalPax()))
		return
	}

	var tourID string
	prompt := bookingAskPhoneNoOffers
	if len(state.Offers) > 0 {
		prompt = bookingAskPhoneWithOffers
		if offer := pickOffer(lower, state.Offers); offer != nil {
			tourID = offer.TourID
			if s.Search != nil {
				act, err := s.Search.Actualize(t.ctx, offer.TourID)
				switch {
				case err != nil:
					utils.GetLogger().Warn("actualize before booking",
						zap.String("tourId", offer.TourID), zap.Error(err))
				case act == nil || !act.Available:
					t.say(tourGoneText)
					return
				case act.PriceChanged:
					prompt = priceChangedNote(act.Price, act.Currency) + prompt
				}
			}
		}
	}

	if phone := detectPhone(msg); phone != "" {
		s.completeLead(t, "booking", tourID, phone)
		return
	}

	s.recordLead(t, "booking", tourID)
	state.Phase = models.PhaseEscalation
	state.AwaitingConfirmation = true
	t.say(prompt)
}

// handleManagerRequest hands off on explicit demand, whatever the phase.
func (s *DefaultDialogService) handleManagerRequest(t *turn) {
	s.recordLead(t, "manager_request", "")
	t.state.Phase = models.PhaseEscalation
	t.state.AwaitingConfirmation = true
	t.say(bookingAskPhoneNoOffers)
}

// handlePhoneTurn reads the message sent while a hand-off waits for a
// callback number.
func (s *DefaultDialogService) handlePhoneTurn(t *turn, msg string) {
	phone := detectPhone(msg)
	if phone == "" {
		t.say(askPhoneAgainText)
		return
	}
	reason := "booking"
	if t.state.Slots.TotalPax() > s.partyLimit() {
		reason = "escalation"
	}
	s.completeLead(t, reason, "", phone)
}

// recordLead persists a hand-off without a phone yet. Failures are logged and
// swallowed: the user still gets the hand-off reply, and the phone turn will
// retry the write.
func (s *DefaultDialogService) recordLead(t *turn, reason, tourID string) {
	if s.Leads == nil {
		return
	}
	lead := models.Lead{
		ConversationID: t.state.ID,
		Reason:         reason,
		Slots:          t.state.Slots,
		TourID:         tourID,
		CreatedAt:      s.now(),
	}
	id, err := s.Leads.Record(t.ctx, lead)
	if err != nil {
		utils.GetLogger().Error("record lead",
			zap.String("conversationId", t.state.ID),
			zap.String("reason", reason), zap.Error(err))
		return
	}
	t.state.LeadID = id
}

// completeLead attaches the phone to the recorded lead, or records a complete
// one when the earlier write failed, then confirms to the user.
func (s *DefaultDialogService) completeLead(t *turn, reason, tourID, phone string) {
	state := t.state
	logger := utils.GetLogger()
	if s.Leads != nil {
		if state.LeadID != "" {
			if err := s.Leads.AttachPhone(t.ctx, state.LeadID, phone); err != nil {
				logger.Error("attach phone to lead",
					zap.String("leadId", state.LeadID), zap.Error(err))
			}
		} else {
			lead := models.Lead{
				ConversationID: state.ID,
				Phone:          phone,
				Reason:         reason,
				Slots:          state.Slots,
				TourID:         tourID,
				CreatedAt:      s.now(),
			}
			if id, err := s.Leads.Record(t.ctx, lead); err != nil {
				logger.Error("record lead",
					zap.String("conversationId", state.ID), zap.Error(err))
			} else {
				state.LeadID = id
			}
		}
	}

	desc := recapLine(state.Slots)
	if desc == "" {
		desc = "направление уточняется"
	}
	if state.Slots.TotalPax() > s.partyLimit() {
		t.say(groupLeadAcceptedText(phone, state.Slots.TotalPax(), desc))
	} else {
		t.say(leadAcceptedText(phone, desc))
	}
	state.Phase = models.PhaseEscalation
	state.AwaitingConfirmation = false
	state.LastAsked = models.SlotNone
}
