// Package dispatch delivers generated replies through the correct channel.
//
// Each work item invokes exactly one send; there is no internal retry loop.
// Delivery failure is logged and reported as an outcome rather than raised,
// so callers can decide what to gate on it.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
)

// Channel is the abstract send capability behind the dispatcher.
type Channel interface {
	// PostComment posts a public comment on a post or comment id.
	PostComment(ctx context.Context, objectID, message string) error
	// SendMessage sends a private message to a PSID.
	SendMessage(ctx context.Context, recipientID, text string) error
}

// Dispatcher routes replies to the public or private channel.
type Dispatcher struct {
	channel Channel
}

// New creates a Dispatcher over the given channel.
func New(channel Channel) *Dispatcher {
	return &Dispatcher{channel: channel}
}

// SendPublicReply posts text as a comment on targetID. When the original
// sender is known the text is prefixed with a directed mention tag so the
// reply visibly addresses that user inside a busy thread. Returns whether
// delivery succeeded.
func (d *Dispatcher) SendPublicReply(ctx context.Context, targetID, senderID, text string) bool {
	if senderID != "" {
		text = fmt.Sprintf("@[%s] %s", senderID, text)
	}
	if err := d.channel.PostComment(ctx, targetID, text); err != nil {
		slog.Error("Dispatcher.SendPublicReply: delivery failed", "error", err, "target_id", targetID)
		return false
	}
	slog.Info("Dispatcher.SendPublicReply: delivered", "target_id", targetID)
	return true
}

// SendPrivateReply sends text as a private message to recipientID. Returns
// whether delivery succeeded.
func (d *Dispatcher) SendPrivateReply(ctx context.Context, recipientID, text string) bool {
	if err := d.channel.SendMessage(ctx, recipientID, text); err != nil {
		slog.Error("Dispatcher.SendPrivateReply: delivery failed", "error", err, "recipient", recipientID)
		return false
	}
	slog.Info("Dispatcher.SendPrivateReply: delivered", "recipient", recipientID)
	return true
}
