package dialog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"voyago/models"
	"voyago/services/search"
	"voyago/utils"
)

// maxPhaseHops bounds one turn's pass through the machine. The longest legal
// chain is greeting → collecting → validating → confirming → searching →
// fallback, with one hop to spare.
const maxPhaseHops = 8

// turn carries everything produced while handling one message.
type turn struct {
	ctx   context.Context
	state *models.ConversationState

	// prefix rides in front of the next reply; the confirmation summary uses
	// it to stay visible when the search outcome lands in the same turn.
	prefix string
	out    string
	cards  []models.Offer
	result *models.SearchResult

	escalationReason string
}

func (t *turn) say(text string) {
	t.out = t.prefix + text
	t.prefix = ""
}

// runMachine advances phases until a handler produces the reply for this
// turn. Handlers return true to hand over to the next phase within the same
// turn.
func (s *DefaultDialogService) runMachine(t *turn) {
	for hops := 0; hops < maxPhaseHops; hops++ {
		var again bool
		switch t.state.Phase {
		case models.PhaseGreeting:
			again = s.stepGreeting(t)
		case models.PhaseCollecting, models.PhaseFAQ:
			again = s.stepCollecting(t)
		case models.PhaseValidating:
			again = s.stepValidating(t)
		case models.PhaseEscalation:
			again = s.stepEscalation(t)
		case models.PhaseConfirming:
			again = s.stepConfirming(t)
		case models.PhaseSearching:
			again = s.stepSearching(t)
		case models.PhasePresenting:
			again = s.stepPresenting(t)
		case models.PhaseFallback:
			again = s.stepFallback(t)
		case models.PhaseError:
			again = s.stepError(t)
		default:
			t.state.Phase = models.PhaseCollecting
			again = true
		}
		if !again {
			return
		}
	}
	utils.GetLogger().Error("phase budget exhausted",
		zap.String("conversationId", t.state.ID),
		zap.String("phase", string(t.state.Phase)))
	if t.out == "" {
		t.say(genericRecoveryText)
		t.state.Phase = models.PhaseCollecting
	}
}

// stepGreeting fires once. A first message that already carries slot data
// skips the pleasantries it has answered.
func (s *DefaultDialogService) stepGreeting(t *turn) bool {
	t.state.Greeted = true
	t.state.Phase = models.PhaseCollecting
	if t.state.Slots.Complete() {
		// Slot questions are answered; collecting still owns the optional
		// quality question.
		return true
	}
	slot := t.state.Slots.MissingRequired()[0]
	switch {
	case slot == models.SlotDestination:
		t.say(greetingText)
	case t.state.Slots.Destination != "":
		t.say(fmt.Sprintf("Отлично, %s! %s", t.state.Slots.Destination, questionFor(slot, t.state.Slots)))
	default:
		t.say("Здравствуйте! Я консультант турагентства МГП. Помогу подобрать тур. " +
			questionFor(slot, t.state.Slots))
	}
	t.state.LastAsked = slot
	return false
}

// stepCollecting asks for exactly one missing slot, highest priority first.
// With every required slot in place it still owns one optional question about
// the hotel level before handing over to validation.
func (s *DefaultDialogService) stepCollecting(t *turn) bool {
	t.state.Phase = models.PhaseCollecting
	missing := t.state.Slots.MissingRequired()
	if len(missing) == 0 {
		if s.shouldAskQuality(t.state) {
			t.state.QualityAsked = true
			t.state.LastAsked = models.SlotStars
			t.ask(models.SlotStars, t.state.Slots)
			return false
		}
		t.state.Phase = models.PhaseValidating
		return true
	}
	slot := missing[0]
	t.ask(slot, t.state.Slots)
	t.state.LastAsked = slot
	return false
}

// ask phrases one slot question with the recap prefix when anything is known.
func (t *turn) ask(slot models.Slot, slots models.TripSlots) {
	question := questionFor(slot, slots)
	if recap := recapLine(slots); recap != "" {
		t.say("Принято: " + recap + ". " + question)
	} else {
		t.say(question)
	}
}

// shouldAskQuality gates the one optional hotel-level question: only when the
// user expressed no quality preference at all, did not name a hotel, is not
// after hot tours and is not an oversized group headed for a manager anyway.
func (s *DefaultDialogService) shouldAskQuality(state *models.ConversationState) bool {
	slots := state.Slots
	return !state.QualityAsked &&
		slots.Stars == 0 && slots.Meal == "" &&
		!slots.SkipQualityCheck && slots.HotelName == "" &&
		!slots.HotTour &&
		slots.TotalPax() <= s.partyLimit()
}

// stepValidating checks the group limit before anything else, then the value
// ranges. A violated slot is cleared and re-asked so the conversation cannot
// loop on the same bad value.
func (s *DefaultDialogService) stepValidating(t *turn) bool {
	slots := &t.state.Slots
	if slots.TotalPax() > s.partyLimit() {
		t.escalationReason = "escalation"
		t.state.Phase = models.PhaseEscalation
		return true
	}

	var errs []string
	today := dateOnly(s.now())
	if !slots.DateStart.IsZero() {
		bad := false
		if slots.DateStart.Before(today) {
			errs = append(errs, errDatePast)
			bad = true
		} else if slots.DateStart.After(today.AddDate(1, 0, 0)) {
			errs = append(errs, errDateTooFar)
			bad = true
		}
		if bad {
			slots.DateStart = time.Time{}
			slots.DatePrecision = models.PrecisionNone
		}
	}
	if slots.Nights != 0 && (slots.Nights < 1 || slots.Nights > 30) {
		errs = append(errs, errNightsRange)
		slots.Nights = 0
	}
	if slots.Adults < 1 && !slots.HotTour {
		errs = append(errs, errAdultsNeeded)
		slots.Adults = 0
	}
	for _, age := range slots.ChildrenAges {
		if age < 0 || age > 17 {
			errs = append(errs, errChildAge)
			slots.ChildrenAges = nil
			slots.ChildrenPending = 0
			break
		}
	}

	if len(errs) > 0 {
		msg := validationReply(errs)
		slot := models.SlotAdults
		if missing := slots.MissingRequired(); len(missing) > 0 {
			slot = missing[0]
		}
		msg += "\n\n" + questionFor(slot, *slots)
		t.state.LastAsked = slot
		t.state.Phase = models.PhaseCollecting
		t.state.SearchConfirmed = false
		t.say(msg)
		return false
	}

	t.state.LastAsked = models.SlotNone
	t.state.Phase = models.PhaseConfirming
	return true
}

// stepEscalation records the lead and asks for a callback number. The phase
// persists so the next message is read as the phone reply.
func (s *DefaultDialogService) stepEscalation(t *turn) bool {
	reason := t.escalationReason
	if reason == "" {
		reason = "escalation"
	}
	s.recordLead(t, reason, "")
	t.say(escalationText(t.state.Slots.TotalPax()))
	t.state.Phase = models.PhaseEscalation
	t.state.AwaitingConfirmation = true
	t.state.LastAsked = models.SlotNone
	return false
}

// stepConfirming summarizes the parameters once, then searches. Hot-tour
// requests skip the summary: the parameter card has nothing to show yet.
func (s *DefaultDialogService) stepConfirming(t *turn) bool {
	if !t.state.SearchConfirmed && !t.state.Slots.HotTour {
		t.prefix = confirmationSummary(t.state.Slots) + "\n\n"
	}
	t.state.SearchConfirmed = true
	t.state.Phase = models.PhaseSearching
	return true
}

func (s *DefaultDialogService) stepSearching(t *turn) bool {
	if s.Search == nil {
		t.state.LastError = "search service not configured"
		t.state.Phase = models.PhaseError
		return true
	}
	trip := t.state.Slots
	var (
		result *models.SearchResult
		err    error
	)
	if trip.HotTour {
		result, err = s.Search.HotOffers(t.ctx, trip)
	} else {
		result, err = s.Search.Search(t.ctx, trip)
	}
	if err != nil {
		return s.searchFailed(t, err)
	}

	t.result = result
	t.state.RequestID = result.RequestID
	if len(result.Offers) == 0 {
		t.state.EmptySearches++
		t.state.Offers = nil
		t.state.Phase = models.PhaseFallback
		return true
	}
	t.state.EmptySearches = 0
	t.state.FallbackOffered = false
	t.state.Offers = result.Offers
	t.state.Phase = models.PhasePresenting
	return true
}

// searchFailed maps resolve failures back to a question for the offending
// slot; anything else goes through the generic error phase.
func (s *DefaultDialogService) searchFailed(t *turn, err error) bool {
	state := t.state
	switch {
	case errors.Is(err, search.ErrUnknownCountry):
		name := state.Slots.Destination
		state.Slots.Destination = ""
		state.SearchConfirmed = false
		state.Phase = models.PhaseCollecting
		state.LastAsked = models.SlotDestination
		t.say(unknownCountryText(name))
		return false
	case errors.Is(err, search.ErrUnknownDeparture):
		name := state.Slots.Departure
		state.Slots.Departure = ""
		state.SearchConfirmed = false
		state.Phase = models.PhaseCollecting
		state.LastAsked = models.SlotDeparture
		t.say(unknownDepartureText(name))
		return false
	case errors.Is(err, search.ErrHotelNotFound):
		name := state.Slots.HotelName
		state.Slots.HotelName = ""
		state.Slots.SkipQualityCheck = false
		state.SearchConfirmed = false
		state.Phase = models.PhaseCollecting
		state.LastAsked = models.SlotNone
		t.say(hotelNotFoundText(name))
		return false
	default:
		utils.GetLogger().Error("tour search failed",
			zap.String("conversationId", state.ID), zap.Error(err))
		state.LastError = err.Error()
		state.Phase = models.PhaseError
		return true
	}
}

// stepPresenting announces the result set; the offers travel as cards.
func (s *DefaultDialogService) stepPresenting(t *turn) bool {
	t.state.Phase = models.PhasePresenting
	if t.result == nil || len(t.result.Offers) == 0 {
		t.say(noOffersText)
		return false
	}
	t.cards = t.result.Offers
	t.say(presentHeader(t.state.Slots, len(t.result.Offers), t.result.TotalFound))
	t.state.LastAsked = models.SlotNone
	return false
}

// stepFallback proposes relaxations once; the second consecutive empty result
// recommends a manager instead.
func (s *DefaultDialogService) stepFallback(t *turn) bool {
	if t.state.EmptySearches >= 2 {
		t.say(fallbackSecondText(t.state.Slots.Destination))
		t.state.Phase = models.PhasePresenting
		t.state.FallbackOffered = false
		t.state.AwaitingConfirmation = false
		return false
	}
	t.say(fallbackFirstText(t.state.Slots, search.AlternativeDeparture(t.state.Slots.Departure)))
	t.state.FallbackOffered = true
	t.state.AwaitingConfirmation = true
	t.state.Phase = models.PhaseFallback
	t.state.LastAsked = models.SlotNone
	return false
}

// stepError returns the generic retry message and reopens the collection so
// the user can adjust parameters.
func (s *DefaultDialogService) stepError(t *turn) bool {
	t.say(searchErrorText)
	t.state.Phase = models.PhaseCollecting
	t.state.SearchConfirmed = false
	return false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
