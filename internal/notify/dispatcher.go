package notify

import (
	"context"
	"log/slog"

	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/observe"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender delivers a single text message to a phone number.
type Sender interface {
	Send(to, body string) error
}

// TwilioSender sends SMS through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from}
}

func (t *TwilioSender) Send(to, body string) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)
	_, err := t.client.Api.CreateMessage(params)
	return err
}

// Dispatcher wraps a Sender. Dispatch never returns an error: trip state is
// committed before dispatch runs and a failed or skipped send must not undo it.
type Dispatcher struct {
	sender Sender
	log    *slog.Logger
}

// NewDispatcher builds a dispatcher. A nil sender means the SMS provider is
// unconfigured; every dispatch then logs a warning and drops the message.
func NewDispatcher(sender Sender, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{sender: sender, log: log}
}

func (d *Dispatcher) Dispatch(ctx context.Context, event Event, to, body string) {
	if d.sender == nil {
		d.log.WarnContext(ctx, "sms provider not configured, dropping notification",
			"event", string(event), "to", to)
		observe.NotificationsTotal.WithLabelValues(string(event), "skipped").Inc()
		return
	}

	if err := d.sender.Send(to, body); err != nil {
		d.log.ErrorContext(ctx, "sms dispatch failed",
			"event", string(event), "to", to, "error", err)
		observe.NotificationsTotal.WithLabelValues(string(event), "failed").Inc()
		return
	}

	d.log.InfoContext(ctx, "sms dispatched", "event", string(event), "to", to)
	observe.NotificationsTotal.WithLabelValues(string(event), "sent").Inc()
}
