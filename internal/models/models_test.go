package models

import (
	"encoding/json"
	"testing"
)

func TestFlexIDAcceptsStringAndNumber(t *testing.T) {
	var v struct {
		ID FlexID `json:"id"`
	}
	if err := json.Unmarshal([]byte(`{"id":"12345"}`), &v); err != nil {
		t.Fatalf("failed to decode string id: %v", err)
	}
	if v.ID.String() != "12345" {
		t.Errorf("unexpected string id: %q", v.ID)
	}

	if err := json.Unmarshal([]byte(`{"id":12345}`), &v); err != nil {
		t.Fatalf("failed to decode numeric id: %v", err)
	}
	if v.ID.String() != "12345" {
		t.Errorf("numeric id not normalized: %q", v.ID)
	}

	if err := json.Unmarshal([]byte(`{"id":null}`), &v); err != nil {
		t.Fatalf("failed to decode null id: %v", err)
	}
	if v.ID != "" {
		t.Errorf("null id should decode empty, got %q", v.ID)
	}
}

func TestFlexIDPreservesLargeNumbers(t *testing.T) {
	var v struct {
		ID FlexID `json:"id"`
	}
	// A page-scoped id larger than float64 can represent exactly.
	if err := json.Unmarshal([]byte(`{"id":10221234567890123457}`), &v); err != nil {
		t.Fatalf("failed to decode large numeric id: %v", err)
	}
	if v.ID.String() != "10221234567890123457" {
		t.Errorf("large numeric id lost precision: %q", v.ID)
	}
}

func TestChangeValueSenderPrecedence(t *testing.T) {
	both := ChangeValue{SenderID: "1", From: &Principal{ID: "2"}}
	if both.Sender() != "1" {
		t.Errorf("sender_id must take precedence, got %q", both.Sender())
	}

	fromOnly := ChangeValue{From: &Principal{ID: "2"}}
	if fromOnly.Sender() != "2" {
		t.Errorf("expected from.id fallback, got %q", fromOnly.Sender())
	}

	if (ChangeValue{}).Sender() != "" {
		t.Error("expected empty sender for empty value")
	}
}

func TestActionable(t *testing.T) {
	tests := []struct {
		name string
		ev   InboundEvent
		want bool
	}{
		{"dm complete", InboundEvent{Kind: EventDirectMessage, SenderID: "5", RawText: "hi"}, true},
		{"dm no text", InboundEvent{Kind: EventDirectMessage, SenderID: "5"}, false},
		{"dm no sender", InboundEvent{Kind: EventDirectMessage, RawText: "hi"}, false},
		{"comment complete", InboundEvent{Kind: EventFeedComment, PrimaryObjectID: "1_2", SecondaryObjectID: "1_3"}, true},
		{"comment no target", InboundEvent{Kind: EventFeedComment, PrimaryObjectID: "1_2"}, false},
		{"mention complete", InboundEvent{Kind: EventMention, PrimaryObjectID: "1_2", SecondaryObjectID: "1_2"}, true},
		{"ignored", InboundEvent{Kind: EventIgnored, PrimaryObjectID: "1_2", SecondaryObjectID: "1_3"}, false},
	}
	for _, tc := range tests {
		if got := tc.ev.Actionable(); got != tc.want {
			t.Errorf("%s: Actionable() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestWebhookPayloadDecode(t *testing.T) {
	raw := `{
		"object": "page",
		"entry": [{
			"id": "100",
			"time": 1700000000,
			"messaging": [{"sender":{"id":"555"},"recipient":{"id":"100"},"timestamp":1700000001,"message":{"mid":"m1","text":"hello"}}],
			"changes": [{"field":"feed","value":{"item":"comment","verb":"add","post_id":"100_1","comment_id":"100_2","from":{"id":"999","name":"Bob"}}}]
		}]
	}`
	var p WebhookPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if p.Object != "page" || len(p.Entry) != 1 {
		t.Fatalf("unexpected payload shape: %+v", p)
	}
	entry := p.Entry[0]
	if len(entry.Messaging) != 1 || entry.Messaging[0].Message.Text != "hello" {
		t.Errorf("unexpected messaging lane: %+v", entry.Messaging)
	}
	if len(entry.Changes) != 1 || entry.Changes[0].Value.Sender() != "999" {
		t.Errorf("unexpected changes lane: %+v", entry.Changes)
	}
}

func TestAPIResponseEnvelope(t *testing.T) {
	got, err := json.Marshal(Received())
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if string(got) != `{"status":"received"}` {
		t.Errorf("unexpected received envelope: %s", got)
	}

	got, err = json.Marshal(Error("boom"))
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if string(got) != `{"status":"error","message":"boom"}` {
		t.Errorf("unexpected error envelope: %s", got)
	}
}
