package brain

import "strings"

// Thresholds for the chat-mode search heuristic.
const (
	// greetingMaxLen is the length under which a greeting-vocabulary match
	// suppresses search.
	greetingMaxLen = 32
	// searchMinLen is the length above which a message always triggers
	// search regardless of vocabulary.
	searchMinLen = 120
)

// greetings is the casual-acknowledgment vocabulary that never needs search.
var greetings = []string{
	"hi", "hello", "hey", "yo", "sup",
	"thanks", "thank you", "thx", "ty",
	"ok", "okay", "cool", "nice", "great", "good",
	"good morning", "good afternoon", "good evening", "good night",
	"bye", "goodbye", "see you", "lol", "haha",
}

// interrogatives are question-opening keywords that trigger search even
// without a question mark.
var interrogatives = []string{
	"who", "what", "when", "where", "why", "how", "which",
	"is", "are", "was", "were", "do", "does", "did",
	"can", "could", "will", "would", "should", "really", "true",
}

// ShouldSearch decides whether a chat message warrants a search-grounded
// generation. Fact-check mode bypasses this entirely.
func ShouldSearch(message string) bool {
	m := strings.ToLower(strings.TrimSpace(message))
	if m == "" {
		return false
	}

	if len(m) <= greetingMaxLen && isGreeting(m) {
		return false
	}
	if strings.Contains(m, "?") {
		return true
	}
	if startsWithInterrogative(m) {
		return true
	}
	return len(m) > searchMinLen
}

// isGreeting reports whether the message is, or starts with, a phrase from
// the casual vocabulary.
func isGreeting(m string) bool {
	stripped := strings.Trim(m, "!.,:;?)( ")
	for _, g := range greetings {
		if stripped == g || strings.HasPrefix(stripped, g+" ") || strings.HasPrefix(stripped, g+"!") {
			return true
		}
	}
	return false
}

func startsWithInterrogative(m string) bool {
	fields := strings.Fields(m)
	if len(fields) == 0 {
		return false
	}
	first := strings.Trim(fields[0], "!.,:;")
	for _, kw := range interrogatives {
		if first == kw {
			return true
		}
	}
	return false
}
