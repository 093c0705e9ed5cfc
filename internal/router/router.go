// Package router classifies raw webhook payloads into typed events and
// drives the resolve → generate → dispatch → count pipeline for each one.
//
// Classification is synchronous and never fails past the HTTP boundary: any
// parse problem yields an empty event set, because the webhook handler must
// always acknowledge or Facebook disables the subscription. The single most
// important property here is the self-loop guard: an event whose sender is
// the Page itself is suppressed in every lane, or the bot would reply to its
// own replies indefinitely.
package router

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teramind-labs/theta/internal/alerts"
	"github.com/teramind-labs/theta/internal/models"
	"github.com/teramind-labs/theta/internal/store"
)

// ContextResolver is the content acquisition capability.
type ContextResolver interface {
	Resolve(ctx context.Context, objectID string) models.ResolvedContext
	ResolveCommentOnPost(ctx context.Context, postID, commentID string) models.ResolvedContext
}

// ReplyGenerator is the generation cascade capability.
type ReplyGenerator interface {
	Generate(ctx context.Context, mode models.ReplyMode, contextText string) models.ReplyResult
}

// ReplyDispatcher is the delivery capability.
type ReplyDispatcher interface {
	SendPublicReply(ctx context.Context, targetID, senderID, text string) bool
	SendPrivateReply(ctx context.Context, recipientID, text string) bool
}

// Scheduler is the fire-and-forget background task capability.
type Scheduler interface {
	Submit(fn func(ctx context.Context))
}

// Router is the webhook event state machine.
type Router struct {
	pageID     string
	scheduler  Scheduler
	resolver   ContextResolver
	generator  ReplyGenerator
	dispatcher ReplyDispatcher
	store      store.Store
	notifier   *alerts.Notifier
}

// New creates a Router. notifier may be nil to disable operator alerts.
func New(pageID string, scheduler Scheduler, resolver ContextResolver, generator ReplyGenerator, dispatcher ReplyDispatcher, st store.Store, notifier *alerts.Notifier) *Router {
	return &Router{
		pageID:     pageID,
		scheduler:  scheduler,
		resolver:   resolver,
		generator:  generator,
		dispatcher: dispatcher,
		store:      st,
		notifier:   notifier,
	}
}

// Route classifies a payload and schedules one background work item per
// actionable event. It returns the number of scheduled items and never
// blocks on the work itself.
func (r *Router) Route(payload models.WebhookPayload) int {
	scheduled := 0
	for _, ev := range r.Classify(payload) {
		if !ev.Actionable() {
			continue
		}
		ev := ev
		r.scheduler.Submit(func(ctx context.Context) {
			r.Process(ctx, ev)
		})
		scheduled++
	}
	slog.Debug("Router.Route: scheduling complete", "scheduled", scheduled)
	return scheduled
}

// Classify turns one raw webhook body into zero or more typed events. It
// must not panic or fail: unexpected shapes are logged and dropped.
func (r *Router) Classify(payload models.WebhookPayload) []models.InboundEvent {
	if payload.Object != "page" {
		slog.Warn("Router.Classify: unexpected object type", "object", payload.Object)
		return nil
	}

	var events []models.InboundEvent
	for _, entry := range payload.Entry {
		slog.Debug("Router.Classify: processing entry", "page_id", entry.ID.String(), "time", entry.Time)

		for _, msg := range entry.Messaging {
			if ev, ok := r.classifyMessaging(msg); ok {
				events = append(events, ev)
			}
		}
		for _, change := range entry.Changes {
			if ev, ok := r.classifyChange(change); ok {
				events = append(events, ev)
			}
		}
	}
	return events
}

// classifyMessaging handles the messaging lane: each message event with a
// non-self sender and non-empty text becomes a DirectMessage.
func (r *Router) classifyMessaging(msg models.MessagingEvent) (models.InboundEvent, bool) {
	senderID := msg.Sender.ID.String()
	if senderID == "" {
		slog.Debug("Router.classifyMessaging: message without sender dropped")
		return models.InboundEvent{}, false
	}
	if senderID == r.pageID {
		slog.Debug("Router.classifyMessaging: skipping self-generated message")
		return models.InboundEvent{}, false
	}
	if msg.Message == nil || msg.Message.IsEcho {
		slog.Debug("Router.classifyMessaging: non-message or echo event dropped", "sender", senderID)
		return models.InboundEvent{}, false
	}
	if msg.Message.Text == "" {
		slog.Debug("Router.classifyMessaging: message without extractable text dropped", "sender", senderID)
		return models.InboundEvent{}, false
	}
	return models.InboundEvent{
		Kind:     models.EventDirectMessage,
		SenderID: senderID,
		RawText:  msg.Message.Text,
	}, true
}

// classifyChange routes one change by its declared field name.
func (r *Router) classifyChange(change models.Change) (models.InboundEvent, bool) {
	val := change.Value
	switch change.Field {
	case "feed":
		return r.classifyFeed(val)
	case "mention", "mentions":
		return r.classifyMention(val)
	default:
		slog.Info("Router.classifyChange: unhandled field ignored", "field", change.Field)
		return models.InboundEvent{}, false
	}
}

func (r *Router) classifyFeed(val models.ChangeValue) (models.InboundEvent, bool) {
	sender := val.Sender()
	slog.Debug("Router.classifyFeed: feed event", "item", val.Item, "verb", val.Verb, "sender", sender)

	if sender == r.pageID {
		slog.Debug("Router.classifyFeed: skipping self-generated feed event")
		return models.InboundEvent{}, false
	}

	if val.Item == "comment" && (val.Verb == "add" || val.Verb == "edited") {
		if val.PostID == "" || val.CommentID == "" {
			slog.Warn("Router.classifyFeed: comment event missing identifiers",
				"post_id", val.PostID.String(), "comment_id", val.CommentID.String())
			return models.InboundEvent{}, false
		}
		return models.InboundEvent{
			Kind:              models.EventFeedComment,
			SenderID:          sender,
			PrimaryObjectID:   val.PostID.String(),
			SecondaryObjectID: val.CommentID.String(),
		}, true
	}

	if val.Item == "status" && val.Verb == "add" {
		slog.Info("Router.classifyFeed: new post observed, not actioned", "post_id", val.PostID.String())
		return models.InboundEvent{}, false
	}

	slog.Debug("Router.classifyFeed: feed event not actionable", "item", val.Item, "verb", val.Verb)
	return models.InboundEvent{}, false
}

func (r *Router) classifyMention(val models.ChangeValue) (models.InboundEvent, bool) {
	sender := val.Sender()
	slog.Debug("Router.classifyMention: mention event",
		"post_id", val.PostID.String(), "comment_id", val.CommentID.String(), "verb", val.Verb, "sender", sender)

	if val.Verb != "add" {
		slog.Debug("Router.classifyMention: non-add mention dropped", "verb", val.Verb)
		return models.InboundEvent{}, false
	}
	if sender == r.pageID {
		slog.Debug("Router.classifyMention: skipping self-generated mention")
		return models.InboundEvent{}, false
	}
	if val.PostID == "" {
		slog.Warn("Router.classifyMention: mention without post id dropped")
		return models.InboundEvent{}, false
	}

	// Reply to the comment when the mention is in one, otherwise the post.
	target := val.CommentID.String()
	if target == "" {
		target = val.PostID.String()
	}
	return models.InboundEvent{
		Kind:              models.EventMention,
		SenderID:          sender,
		PrimaryObjectID:   val.PostID.String(),
		SecondaryObjectID: target,
	}, true
}

// Process runs one work item end to end: resolve → generate → dispatch →
// count. Every stage has a degraded terminal output, so the item always runs
// to completion.
func (r *Router) Process(ctx context.Context, ev models.InboundEvent) {
	slog.Info("Router.Process: work item started",
		"kind", ev.Kind, "primary", ev.PrimaryObjectID, "secondary", ev.SecondaryObjectID, "sender", ev.SenderID)

	switch ev.Kind {
	case models.EventFeedComment:
		r.processFeedComment(ctx, ev)
	case models.EventMention:
		r.processMention(ctx, ev)
	case models.EventDirectMessage:
		r.processDirectMessage(ctx, ev)
	default:
		slog.Warn("Router.Process: non-actionable event reached pipeline", "kind", ev.Kind)
	}
}

func (r *Router) processFeedComment(ctx context.Context, ev models.InboundEvent) {
	rc := r.resolver.ResolveCommentOnPost(ctx, ev.PrimaryObjectID, ev.SecondaryObjectID)
	slog.Debug("Router.processFeedComment: context resolved", "quality", rc.Quality, "length", len(rc.Text))

	result := r.generator.Generate(ctx, models.ModeFactCheck, rc.Text)
	delivered := r.dispatcher.SendPublicReply(ctx, ev.SecondaryObjectID, ev.SenderID, result.Text)

	r.finish(ctx, models.CounterCommentsAnalyzed, result, delivered, ev)
}

func (r *Router) processMention(ctx context.Context, ev models.InboundEvent) {
	var rc models.ResolvedContext
	if ev.SecondaryObjectID != ev.PrimaryObjectID {
		// Mention inside a comment: the generator needs the post and the
		// comment together.
		rc = r.resolver.ResolveCommentOnPost(ctx, ev.PrimaryObjectID, ev.SecondaryObjectID)
	} else {
		rc = r.resolver.Resolve(ctx, ev.PrimaryObjectID)
	}
	slog.Debug("Router.processMention: context resolved", "quality", rc.Quality, "length", len(rc.Text))

	result := r.generator.Generate(ctx, models.ModeFactCheck, rc.Text)
	delivered := r.dispatcher.SendPublicReply(ctx, ev.SecondaryObjectID, ev.SenderID, result.Text)

	r.finish(ctx, models.CounterCommentsAnalyzed, result, delivered, ev)
}

func (r *Router) processDirectMessage(ctx context.Context, ev models.InboundEvent) {
	// The DM body arrives inline; no content resolution is needed.
	result := r.generator.Generate(ctx, models.ModeChat, ev.RawText)
	delivered := r.dispatcher.SendPrivateReply(ctx, ev.SenderID, result.Text)

	r.finish(ctx, models.CounterDMsAnswered, result, delivered, ev)
}

// finish records the outcome of one work item. The counter increments
// regardless of delivery outcome.
func (r *Router) finish(ctx context.Context, counter string, result models.ReplyResult, delivered bool, ev models.InboundEvent) {
	if err := r.store.IncrementCounter(counter); err != nil {
		slog.Error("Router.finish: counter increment failed", "error", err, "counter", counter)
	}

	if result.ModelUsed == "fallback" {
		r.notifier.Notify(ctx, fmt.Sprintf("Theta: generation cascade exhausted for %s event %s", ev.Kind, ev.PrimaryObjectID))
	}
	if !delivered {
		r.notifier.Notify(ctx, fmt.Sprintf("Theta: reply delivery failed for %s event %s", ev.Kind, ev.PrimaryObjectID))
	}

	slog.Info("Router.finish: work item complete",
		"kind", ev.Kind, "model", result.ModelUsed, "delivered", delivered, "counter", counter)
}
