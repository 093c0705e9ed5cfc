package brain

import (
	"strings"
	"testing"
)

func TestShouldSearchGreetings(t *testing.T) {
	for _, msg := range []string{
		"hi", "Hello!", "hey there", "thanks", "Thank you!",
		"ok cool", "good morning", "bye", "lol",
	} {
		if ShouldSearch(msg) {
			t.Errorf("greeting %q should not trigger search", msg)
		}
	}
}

func TestShouldSearchQuestions(t *testing.T) {
	for _, msg := range []string{
		"is the earth flat?",
		"what time is it",
		"How does photosynthesis work",
		"really??",
		"did NASA fake the moon landing",
	} {
		if !ShouldSearch(msg) {
			t.Errorf("question %q should trigger search", msg)
		}
	}
}

func TestShouldSearchLongMessages(t *testing.T) {
	long := strings.Repeat("the quick brown fox jumps over the lazy dog ", 4)
	if !ShouldSearch(long) {
		t.Error("long statement should trigger search")
	}
}

func TestShouldSearchShortStatements(t *testing.T) {
	if ShouldSearch("nice weather today") {
		t.Error("short non-question statement should not trigger search")
	}
	if ShouldSearch("") {
		t.Error("empty message should not trigger search")
	}
	if ShouldSearch("   ") {
		t.Error("whitespace-only message should not trigger search")
	}
}

func TestShouldSearchGreetingWithQuestionMark(t *testing.T) {
	// A question mark wins only when the message is not a short greeting.
	if ShouldSearch("hello?") {
		t.Error("a bare greeting with a question mark is still a greeting")
	}
}
