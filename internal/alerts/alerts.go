// Package alerts delivers high-priority notifications to the shop owner's
// phone as SMS or WhatsApp messages.
package alerts

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"chidi/internal/domain"
	applog "chidi/internal/log"
)

// Sender delivers one text message.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// NoopSender drops every message. It is used when Twilio is not configured.
type NoopSender struct{}

func (NoopSender) Send(context.Context, string, string) error { return nil }

type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

// Send uses WhatsApp when to carries the "whatsapp:" prefix, SMS otherwise.
func (s *TwilioSender) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from := s.from
	if strings.HasPrefix(to, "whatsapp:") && !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:" + from
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio: send to %s: %w", to, err)
	}
	if resp.Sid != nil {
		applog.Info(nil, "alert.sent", map[string]any{"sid": *resp.Sid})
	}
	return nil
}

// Format renders a notification as a message body.
func Format(n domain.Notification) string {
	return fmt.Sprintf("CHIDI %s: %s", n.Title, n.Message)
}

// Dispatcher queues high-priority notifications and sends them from a
// single background worker so callers never wait on the network.
type Dispatcher struct {
	sender Sender
	to     string
	queue  chan domain.Notification
	wg     sync.WaitGroup
	once   sync.Once
}

func NewDispatcher(sender Sender, to string, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 32
	}
	d := &Dispatcher{sender: sender, to: to, queue: make(chan domain.Notification, buffer)}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for n := range d.queue {
		if err := d.sender.Send(context.Background(), d.to, Format(n)); err != nil {
			applog.Error(nil, "alert.send", err, map[string]any{"notification_id": n.ID})
		}
	}
}

// Dispatch enqueues the high-priority notes. A full queue drops the note.
func (d *Dispatcher) Dispatch(notes ...domain.Notification) {
	if d == nil || d.to == "" {
		return
	}
	for _, n := range notes {
		if n.Priority != domain.PriorityHigh {
			continue
		}
		select {
		case d.queue <- n:
		default:
			applog.Error(nil, "alert.dropped", fmt.Errorf("alert queue full"), map[string]any{"notification_id": n.ID})
		}
	}
}

// Close stops accepting alerts and waits for queued ones to be sent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() { close(d.queue) })
	d.wg.Wait()
}
