package dialog

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxMessageLength bounds one user turn. Anything longer is not a trip
// request.
const maxMessageLength = 2000

// injectionMarkers are phrases that try to repurpose the assistant. The turn
// is answered with a polite redirect and never reaches the extractor.
var injectionMarkers = []string{
	"ignore previous instructions",
	"ignore all previous",
	"disregard previous",
	"system prompt",
	"you are now",
	"забудь инструкции",
	"забудь все инструкции",
	"игнорируй предыдущие",
	"игнорируй инструкции",
	"новая инструкция",
	"ты больше не",
	"представь что ты",
}

// leakMarkers are substrings that only ever appear in internal error text.
// A reply containing one is replaced wholesale before it leaves the engine.
var leakMarkers = []string{
	"goroutine ",
	"runtime error",
	"panic:",
	"search: ",
	"redis:",
	"mongodb",
	"server selection error",
	"context deadline exceeded",
	"connection refused",
}

// sanitizeInput normalizes one inbound message. A non-empty rejection is the
// full reply for the turn; the message is then ignored.
func sanitizeInput(text string) (clean, rejection string) {
	clean = strings.TrimSpace(stripControl(text))
	if clean == "" {
		return "", emptyMessageText
	}
	if utf8.RuneCountInString(clean) > maxMessageLength {
		return "", messageTooLongText
	}
	lower := strings.ToLower(clean)
	for _, marker := range injectionMarkers {
		if strings.Contains(lower, marker) {
			return "", unsafeInputText
		}
	}
	return clean, ""
}

// scrubOutput keeps internal failure text out of user replies.
func scrubOutput(reply string) string {
	lower := strings.ToLower(reply)
	for _, marker := range leakMarkers {
		if strings.Contains(lower, marker) {
			return genericRecoveryText
		}
	}
	return reply
}

// stripControl drops control characters, keeping newlines and tabs.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
