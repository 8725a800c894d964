package models

// Intent is the coarse classification of a user turn, used only as an
// auxiliary hint: FAQ routing and small talk. Slot extraction never depends
// on it.
type Intent string

const (
	IntentSearch       Intent = "search_tour"
	IntentHotTours     Intent = "hot_tours"
	IntentBooking      Intent = "booking"
	IntentGreeting     Intent = "greeting"
	IntentGeneral      Intent = "general_chat"
	IntentFAQVisa      Intent = "faq_visa"
	IntentFAQPayment   Intent = "faq_payment"
	IntentFAQCancel    Intent = "faq_cancel"
	IntentFAQInsurance Intent = "faq_insurance"
	IntentFAQDocuments Intent = "faq_documents"
)

// IsFAQ reports whether the intent routes to the FAQ knowledge base.
func (i Intent) IsFAQ() bool {
	switch i {
	case IntentFAQVisa, IntentFAQPayment, IntentFAQCancel, IntentFAQInsurance, IntentFAQDocuments:
		return true
	}
	return false
}
