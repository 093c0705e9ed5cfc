// Package resolver produces the normalized textual context the reply
// generator works from.
//
// Resolution is an ordered fallback chain: an authoritative Graph API fetch
// first, a one-level comment tree walk when the object turns out to be a
// comment, an unauthenticated embed scrape when the API reports a
// permission or visibility error, and finally a degraded placeholder so the
// pipeline always has something to reply about. Failures at any step are
// recovered locally and never reach the caller as errors.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/teramind-labs/theta/internal/facebook"
	"github.com/teramind-labs/theta/internal/models"
)

// Field sets requested from the Graph API per object shape.
const (
	postFields    = "message,story,type,created_time,from,attachments{description,media,subattachments}"
	commentFields = "message,from,created_time,parent,attachment"
	parentFields  = "message,from,created_time"
)

// UnavailableText is the degraded terminal placeholder. Downstream still
// attempts a reply with it rather than dropping the event.
const UnavailableText = "The post content is not readable due to privacy settings."

// GraphAPI is the subset of the Graph client the resolver consumes.
type GraphAPI interface {
	GetObject(ctx context.Context, objectID, fields string) (*facebook.GraphObject, error)
}

// EmbedFetcher is the scrape capability behind the same resolution interface
// as the authoritative fetch, so the extraction strategy can be swapped or
// disabled without touching the chain.
type EmbedFetcher interface {
	FetchEmbed(ctx context.Context, pageID, postID string) (*facebook.EmbedContent, error)
}

// Resolver walks the acquisition chain for one object id at a time.
type Resolver struct {
	graph GraphAPI
	embed EmbedFetcher
}

// New creates a Resolver. embed may be nil to disable the scrape path.
func New(graph GraphAPI, embed EmbedFetcher) *Resolver {
	return &Resolver{graph: graph, embed: embed}
}

// Resolve produces the context for a post or comment identifier.
func (r *Resolver) Resolve(ctx context.Context, objectID string) models.ResolvedContext {
	obj, err := r.graph.GetObject(ctx, objectID, postFields)
	if err == nil && obj.Error == nil {
		if text := formatPostContext(obj); text != "" {
			return models.ResolvedContext{Text: text, Quality: models.SourceAuthoritative}
		}
		slog.Debug("Resolver.Resolve: object reachable but empty", "object_id", objectID)
	}
	if err != nil {
		slog.Warn("Resolver.Resolve: authoritative fetch failed", "error", err, "object_id", objectID)
	}

	// The id may denote a comment; try the comment tree walk before giving
	// up on the API.
	if err == nil && obj.Error != nil {
		if text := r.resolveCommentText(ctx, objectID); text != "" {
			return models.ResolvedContext{Text: text, Quality: models.SourceAuthoritative}
		}
	}

	if content := r.scrape(ctx, objectID); content != nil && content.Text != "" {
		return models.ResolvedContext{Text: content.Text, Quality: models.SourceScraped, Images: content.Images}
	}

	return models.ResolvedContext{Text: UnavailableText, Quality: models.SourceUnavailable}
}

// ResolveCommentOnPost produces the combined context for a comment on a
// post. The generator needs both pieces to produce a relevant answer, so the
// two are concatenated with explicit delimiters.
func (r *Resolver) ResolveCommentOnPost(ctx context.Context, postID, commentID string) models.ResolvedContext {
	post := r.Resolve(ctx, postID)

	commentText := r.resolveCommentText(ctx, commentID)
	if commentText == "" {
		commentText = "(comment text unavailable)"
	}

	text := fmt.Sprintf("Post Content: %s\nUser Comment: %s", post.Text, commentText)
	return models.ResolvedContext{Text: text, Quality: post.Quality, Images: post.Images}
}

// resolveCommentText fetches a comment and walks one level up to its parent
// comment, concatenating parent-then-child. Returns "" when nothing usable
// could be fetched.
func (r *Resolver) resolveCommentText(ctx context.Context, commentID string) string {
	comment, err := r.graph.GetObject(ctx, commentID, commentFields)
	if err != nil || comment.Error != nil {
		slog.Warn("Resolver.resolveCommentText: comment fetch failed", "comment_id", commentID)
		return ""
	}

	var parts []string
	if comment.Parent != nil && comment.Parent.ID != "" {
		parent, err := r.graph.GetObject(ctx, comment.Parent.ID, parentFields)
		if err == nil && parent.Error == nil && parent.Message != "" {
			parts = append(parts, fmt.Sprintf("[Parent Comment by %s]: %s", authorName(parent), parent.Message))
		}
	}
	if comment.Message != "" {
		parts = append(parts, fmt.Sprintf("[Comment by %s]: %s", authorName(comment), comment.Message))
	}
	if comment.Attachment != nil && comment.Attachment.Description != "" {
		parts = append(parts, fmt.Sprintf("[Attachment Description]: %s", comment.Attachment.Description))
	}
	return strings.Join(parts, "\n")
}

// scrape attempts the embed fallback. It requires the composite
// {pageId}_{postId} id shape; ids that do not split cleanly skip this step.
func (r *Resolver) scrape(ctx context.Context, objectID string) *facebook.EmbedContent {
	if r.embed == nil {
		return nil
	}
	pageID, postID, ok := SplitCompositeID(objectID)
	if !ok {
		slog.Debug("Resolver.scrape: id is not composite, skipping", "object_id", objectID)
		return nil
	}
	content, err := r.embed.FetchEmbed(ctx, pageID, postID)
	if err != nil {
		slog.Warn("Resolver.scrape: embed fetch failed", "error", err, "object_id", objectID)
		return nil
	}
	return content
}

// SplitCompositeID splits a {pageId}_{postId} identifier. The two-part shape
// is assumed, not guaranteed: reshared and reaction-origin ids can carry
// more underscores, in which case the first segment is taken as the page id
// and the rest as the post id.
func SplitCompositeID(objectID string) (pageID, postID string, ok bool) {
	idx := strings.Index(objectID, "_")
	if idx <= 0 || idx == len(objectID)-1 {
		return "", "", false
	}
	return objectID[:idx], objectID[idx+1:], true
}

// formatPostContext folds a post's text-bearing fields into the context
// format the generator expects.
func formatPostContext(post *facebook.GraphObject) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("[Post by %s]", authorName(post)))

	hasBody := false
	if post.Message != "" {
		parts = append(parts, "Content: "+post.Message)
		hasBody = true
	}
	if post.Story != "" && post.Message == "" {
		parts = append(parts, "Story: "+post.Story)
		hasBody = true
	}
	if post.Attachments != nil {
		for _, att := range post.Attachments.Data {
			if att.Description != "" {
				parts = append(parts, "[Attachment]: "+att.Description)
				hasBody = true
			}
			if att.SubAttachments == nil {
				continue
			}
			for _, sub := range att.SubAttachments.Data {
				if sub.Description != "" {
					parts = append(parts, "[Sub-Attachment]: "+sub.Description)
					hasBody = true
				}
			}
		}
	}

	if !hasBody {
		return ""
	}
	return strings.Join(parts, "\n")
}

func authorName(obj *facebook.GraphObject) string {
	if obj.From != nil && obj.From.Name != "" {
		return obj.From.Name
	}
	return "Unknown"
}
