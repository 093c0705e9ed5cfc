// Package models defines the core data structures for Theta.
//
// It includes the typed webhook event representation, resolved content
// context, reply requests, and API envelope types shared across modules.
package models

import (
	"encoding/json"
	"errors"
)

// EventKind classifies an inbound webhook notification.
type EventKind string

const (
	// EventDirectMessage is a private Messenger message sent to the Page.
	EventDirectMessage EventKind = "direct_message"
	// EventFeedComment is a comment added or edited on a Page post.
	EventFeedComment EventKind = "feed_comment"
	// EventMention is a post or comment that tags the Page.
	EventMention EventKind = "mention"
	// EventIgnored marks notifications that must not trigger any action,
	// including everything originating from the Page itself.
	EventIgnored EventKind = "ignored"
)

// InboundEvent is the classified, typed representation of one webhook
// notification. Events are immutable once constructed and owned by the
// single work item processing them.
type InboundEvent struct {
	Kind EventKind
	// SenderID identifies the originating actor; empty if unknown.
	SenderID string
	// PrimaryObjectID is the post or comment the event concerns.
	PrimaryObjectID string
	// SecondaryObjectID carries the comment id when PrimaryObjectID is the
	// parent post. For mention events it is the reply target and may equal
	// PrimaryObjectID.
	SecondaryObjectID string
	// RawText is inline text already present in the payload (DM body).
	RawText string
}

// Actionable reports whether the event carries enough identifiers to resolve
// context and a target to reply to.
func (e InboundEvent) Actionable() bool {
	switch e.Kind {
	case EventDirectMessage:
		return e.SenderID != "" && e.RawText != ""
	case EventFeedComment:
		return e.PrimaryObjectID != "" && e.SecondaryObjectID != ""
	case EventMention:
		return e.PrimaryObjectID != "" && e.SecondaryObjectID != ""
	default:
		return false
	}
}

// SourceQuality records which acquisition path produced a ResolvedContext.
type SourceQuality string

const (
	// SourceAuthoritative means the Graph API returned usable fields.
	SourceAuthoritative SourceQuality = "authoritative"
	// SourceScraped means the public embed rendering was parsed instead.
	SourceScraped SourceQuality = "scraped"
	// SourceUnavailable means every acquisition path failed and Text holds
	// a degraded explanatory placeholder.
	SourceUnavailable SourceQuality = "unavailable"
)

// ResolvedContext is the normalized, model-ready description of what the bot
// is replying to. Constructed fresh per event, never cached or persisted.
type ResolvedContext struct {
	Text    string
	Quality SourceQuality
	// Images holds a bounded list of content image URLs collected by the
	// scrape path; empty on other paths.
	Images []string
}

// ReplyMode selects the generation behavior for a reply.
type ReplyMode string

const (
	// ModeFactCheck verifies public post content with search grounding.
	ModeFactCheck ReplyMode = "fact_check"
	// ModeChat answers private messages conversationally; search is enabled
	// only when the message looks like it needs it.
	ModeChat ReplyMode = "chat"
)

// ReplyResult is the outcome of one generation cascade run.
type ReplyResult struct {
	Text      string
	ModelUsed string
}

// Counter names persisted by the interaction store.
const (
	CounterCommentsAnalyzed = "comments_analyzed"
	CounterDMsAnswered      = "dms_answered"
)

// Validation errors shared across modules.
var (
	ErrEmptyRecipient = errors.New("recipient cannot be empty")
	ErrEmptyMessage   = errors.New("message cannot be empty")
	ErrEmptyObjectID  = errors.New("object id cannot be empty")
)

// FlexID is an identifier that Facebook delivers inconsistently as either a
// JSON string or a JSON number depending on the event lane.
type FlexID string

// UnmarshalJSON accepts both string and numeric forms.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string { return string(f) }

// WebhookPayload is the raw body of one POST /webhook delivery.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry is one page-level entry inside a webhook delivery. The
// messaging and changes lanes are independent and may both be present.
type WebhookEntry struct {
	ID        FlexID           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging,omitempty"`
	Changes   []Change         `json:"changes,omitempty"`
}

// Principal identifies an actor in a webhook payload.
type Principal struct {
	ID   FlexID `json:"id"`
	Name string `json:"name,omitempty"`
}

// MessagingEvent is one Messenger event in the messaging lane.
type MessagingEvent struct {
	Sender    Principal       `json:"sender"`
	Recipient Principal       `json:"recipient"`
	Timestamp int64           `json:"timestamp"`
	Message   *InlineMessage  `json:"message,omitempty"`
	Delivery  json.RawMessage `json:"delivery,omitempty"`
}

// InlineMessage is the message body of a messaging event.
type InlineMessage struct {
	MID    string `json:"mid"`
	Text   string `json:"text"`
	IsEcho bool   `json:"is_echo,omitempty"`
}

// Change is one entry in the changes lane, routed by Field.
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue carries the feed or mention details of a change. The sender is
// reported either as a bare sender_id or as a from object depending on the
// notification type.
type ChangeValue struct {
	Item      string     `json:"item,omitempty"`
	Verb      string     `json:"verb,omitempty"`
	PostID    FlexID     `json:"post_id,omitempty"`
	CommentID FlexID     `json:"comment_id,omitempty"`
	SenderID  FlexID     `json:"sender_id,omitempty"`
	From      *Principal `json:"from,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// Sender returns the best available sender identifier of a change.
func (v ChangeValue) Sender() string {
	if v.SenderID != "" {
		return v.SenderID.String()
	}
	if v.From != nil {
		return v.From.ID.String()
	}
	return ""
}

// StatsSnapshot is the payload of GET /stats.
type StatsSnapshot struct {
	CommentsAnalyzed int64  `json:"comments_analyzed"`
	DMsAnswered      int64  `json:"dms_answered"`
	Model            string `json:"model"`
	Status           string `json:"status"`
}

// API response types for consistent JSON responses.

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
	// APIStatusReceived acknowledges a webhook delivery.
	APIStatusReceived APIStatus = "received"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}

// Received acknowledges a webhook delivery regardless of internal outcome.
func Received() APIResponse {
	return APIResponse{Status: string(APIStatusReceived)}
}
