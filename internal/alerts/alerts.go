// Package alerts notifies the operator over SMS when the reply pipeline is
// in trouble: a fully exhausted generation cascade or a delivery failure.
//
// Alerting is best-effort and optional; an unconfigured notifier is nil and
// every call on it is a no-op, so the pipeline never depends on Twilio being
// reachable.
package alerts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Opts holds configuration options for the Twilio notifier.
type Opts struct {
	AccountSID string
	AuthToken  string
	From       string
	Recipient  string
}

// Option defines a configuration option for the notifier.
type Option func(*Opts)

// WithAccountSID sets the Twilio account SID.
func WithAccountSID(sid string) Option {
	return func(o *Opts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token.
func WithAuthToken(token string) Option {
	return func(o *Opts) { o.AuthToken = token }
}

// WithFrom sets the sending phone number.
func WithFrom(from string) Option {
	return func(o *Opts) { o.From = from }
}

// WithRecipient sets the operator phone number that receives alerts.
func WithRecipient(to string) Option {
	return func(o *Opts) { o.Recipient = to }
}

// Notifier sends operator alerts through the Twilio API.
type Notifier struct {
	client    *twilio.RestClient
	from      string
	recipient string
}

// NewNotifier creates a Twilio-backed notifier from the provided options.
func NewNotifier(opts ...Option) (*Notifier, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("alerts.NewNotifier: config loaded",
		"account_sid_set", cfg.AccountSID != "",
		"auth_token_set", cfg.AuthToken != "",
		"from_set", cfg.From != "",
		"recipient_set", cfg.Recipient != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.From == "" || cfg.Recipient == "" {
		return nil, fmt.Errorf("from and recipient numbers must be provided")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &Notifier{client: client, from: cfg.From, recipient: cfg.Recipient}, nil
}

// Notify sends one alert message to the operator. Safe on a nil receiver.
func (n *Notifier) Notify(ctx context.Context, message string) {
	if n == nil {
		return
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.recipient)
	params.SetFrom(n.from)
	params.SetBody(message)

	if _, err := n.client.Api.CreateMessage(params); err != nil {
		slog.Error("Notifier.Notify: failed to send alert", "error", err)
		return
	}
	slog.Debug("Notifier.Notify: alert sent")
}
