package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// MailSender is the part of *mail.Client used to deliver messages.
type MailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mail e-mails each event to a fixed recipient.
type Mail struct {
	client MailSender
	from   string
	to     string
}

func NewMail(client MailSender, from, to string) *Mail {
	return &Mail{client: client, from: from, to: to}
}

func (m *Mail) Notify(ctx context.Context, event Event) error {
	msg, err := m.Message(event)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail for event %s: %w", event.ID, err)
	}
	return nil
}

// Message builds the e-mail for event.
func (m *Mail) Message(event Event) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := msg.To(m.to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", m.to, err)
	}
	msg.Subject(fmt.Sprintf("[Hotel schedule] %s", event.Type))

	var body strings.Builder
	body.WriteString(Describe(event))
	body.WriteString("\n\n")
	fmt.Fprintf(&body, "Event: %s\n", event.ID)
	fmt.Fprintf(&body, "Hotel: %d\n", event.HotelID)
	if event.Status != "" {
		fmt.Fprintf(&body, "Status: %s\n", event.Status)
	}
	fmt.Fprintf(&body, "Occurred at: %s\n", event.OccurredAt.Format("02.01.2006 15:04"))
	msg.SetBodyString(mail.TypeTextPlain, body.String())

	return msg, nil
}
