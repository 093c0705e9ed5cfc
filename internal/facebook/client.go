// Package facebook wraps the Facebook Graph API and the public post-embed
// endpoint for Theta.
//
// The Graph client covers the three calls the pipeline needs: structured
// object fetches, public comment posts, and private message sends. Graph-level
// errors (the {"error": {...}} payload) are surfaced on the returned object
// rather than as Go errors, so the resolver can distinguish "the API said no"
// from "the network failed".
package facebook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teramind-labs/theta/internal/models"
)

// DefaultRequestTimeout bounds every outbound Graph and embed call.
const DefaultRequestTimeout = 10 * time.Second

// Opts holds configuration options for the Graph client.
type Opts struct {
	BaseURL     string
	EmbedURL    string
	AccessToken string
	HTTPClient  *http.Client
}

// Option defines a configuration option for the Graph client.
type Option func(*Opts)

// WithBaseURL sets the Graph API base URL.
func WithBaseURL(base string) Option {
	return func(o *Opts) { o.BaseURL = base }
}

// WithEmbedURL sets the public post-embed endpoint used by the scrape path.
func WithEmbedURL(embed string) Option {
	return func(o *Opts) { o.EmbedURL = embed }
}

// WithAccessToken sets the Page access token.
func WithAccessToken(token string) Option {
	return func(o *Opts) { o.AccessToken = token }
}

// WithHTTPClient overrides the HTTP client (used by tests).
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// Client talks to the Graph API as a single Page identity.
type Client struct {
	baseURL     string
	embedURL    string
	accessToken string
	http        *http.Client
}

// NewClient creates a Graph client from the provided options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("graph base URL must be provided")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("page access token must be provided")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultRequestTimeout}
	}
	slog.Debug("facebook.NewClient: client configured",
		"base_url", cfg.BaseURL, "embed_url_set", cfg.EmbedURL != "", "token_set", cfg.AccessToken != "")
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		embedURL:    cfg.EmbedURL,
		accessToken: cfg.AccessToken,
		http:        cfg.HTTPClient,
	}, nil
}

// GraphError is the error object the Graph API returns in place of fields.
type GraphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph error %d: %s", e.Code, e.Message)
}

// PermissionDenied reports whether the error denotes a permission or
// visibility failure, which makes the object a candidate for the scrape
// fallback rather than a hard miss.
func (e *GraphError) PermissionDenied() bool {
	switch e.Code {
	case 10, 100, 104, 200:
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "permission") || strings.Contains(msg, "privacy")
}

// Attachment is one attachment entry on a post or comment.
type Attachment struct {
	Description    string `json:"description,omitempty"`
	SubAttachments *struct {
		Data []Attachment `json:"data"`
	} `json:"subattachments,omitempty"`
}

// GraphObject is the union of the text-bearing fields Theta requests for
// posts and comments. Absent fields stay zero.
type GraphObject struct {
	ID      string     `json:"id,omitempty"`
	Message string     `json:"message,omitempty"`
	Story   string     `json:"story,omitempty"`
	From    *Principal `json:"from,omitempty"`
	Parent  *struct {
		ID string `json:"id"`
	} `json:"parent,omitempty"`
	Attachments *struct {
		Data []Attachment `json:"data"`
	} `json:"attachments,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Error      *GraphError `json:"error,omitempty"`
}

// Principal is an author reference on a Graph object.
type Principal struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// GetObject fetches the requested fields of an object. A nil error with a
// non-nil obj.Error means the API answered with a Graph-level error.
func (c *Client) GetObject(ctx context.Context, objectID, fields string) (*GraphObject, error) {
	if objectID == "" {
		return nil, models.ErrEmptyObjectID
	}
	q := url.Values{}
	q.Set("fields", fields)
	q.Set("access_token", c.accessToken)
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(objectID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("Client.GetObject: request failed", "error", err, "object_id", objectID)
		return nil, fmt.Errorf("graph GET %s failed: %w", objectID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph response: %w", err)
	}

	var obj GraphObject
	if err := json.Unmarshal(body, &obj); err != nil {
		slog.Error("Client.GetObject: failed to decode response", "error", err, "object_id", objectID, "status", resp.StatusCode)
		return nil, fmt.Errorf("failed to decode graph response for %s: %w", objectID, err)
	}
	if obj.Error != nil {
		slog.Warn("Client.GetObject: graph returned error object",
			"object_id", objectID, "code", obj.Error.Code, "message", obj.Error.Message)
	} else {
		slog.Debug("Client.GetObject: object fetched", "object_id", objectID)
	}
	return &obj, nil
}

// PostComment posts a public comment on the given post or comment id.
func (c *Client) PostComment(ctx context.Context, objectID, message string) error {
	if objectID == "" {
		return models.ErrEmptyObjectID
	}
	if message == "" {
		return models.ErrEmptyMessage
	}
	endpoint := fmt.Sprintf("%s/%s/comments", c.baseURL, url.PathEscape(objectID))
	form := url.Values{}
	form.Set("message", message)
	form.Set("access_token", c.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build comment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("Client.PostComment: request failed", "error", err, "object_id", objectID)
		return fmt.Errorf("failed to post comment on %s: %w", objectID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		slog.Error("Client.PostComment: graph rejected comment",
			"object_id", objectID, "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("graph rejected comment on %s: status %d", objectID, resp.StatusCode)
	}
	slog.Info("Client.PostComment: comment posted", "object_id", objectID)
	return nil
}

// sendMessageRequest is the wire format of POST /me/messages.
type sendMessageRequest struct {
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	MessagingType string `json:"messaging_type"`
	Message       struct {
		Text string `json:"text"`
	} `json:"message"`
}

// SendMessage sends a private message to a PSID, tagged as a RESPONSE to an
// inbound message.
func (c *Client) SendMessage(ctx context.Context, recipientID, text string) error {
	if recipientID == "" {
		return models.ErrEmptyRecipient
	}
	if text == "" {
		return models.ErrEmptyMessage
	}
	var payload sendMessageRequest
	payload.Recipient.ID = recipientID
	payload.MessagingType = "RESPONSE"
	payload.Message.Text = text

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/me/messages?access_token=%s", c.baseURL, url.QueryEscape(c.accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build message request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("Client.SendMessage: request failed", "error", err, "recipient", recipientID)
		return fmt.Errorf("failed to send message to %s: %w", recipientID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		slog.Error("Client.SendMessage: graph rejected message",
			"recipient", recipientID, "status", resp.StatusCode, "body", string(respBody))
		return fmt.Errorf("graph rejected message to %s: status %d", recipientID, resp.StatusCode)
	}
	slog.Info("Client.SendMessage: message sent", "recipient", recipientID)
	return nil
}
