// Package mailer sends transactional mail through SendGrid, or logs it when no
// API key is configured.
package mailer

import (
	"context"
	"net/http"
	"net/mail"
	"sync"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const appName = "School Portal"

type Message struct {
	To      mail.Address
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New picks SendGrid when apiKey is set, otherwise the console sender.
func New(apiKey, from string, log *zap.Logger) Sender {
	if apiKey == "" {
		return NewConsole(log)
	}
	return &sendgridSender{
		key:        apiKey,
		from:       sgmail.NewEmail(appName, from),
		subjPrefix: "[" + appName + "] ",
	}
}

/* ===================== SendGrid ===================== */

type sendgridSender struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

func (s *sendgridSender) Send(ctx context.Context, msg Message) error {
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.To.Name, msg.To.Address))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}

	res, err := sendgrid.NewSendClient(s.key).SendWithContext(ctx, m)
	if err != nil {
		return errors.Wrap(err, "sendgrid request")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("sendgrid status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

/* ===================== Console ===================== */

// Console logs messages instead of sending them and keeps a copy for inspection.
type Console struct {
	log  *zap.Logger
	mu   sync.Mutex
	sent []Message
}

func NewConsole(log *zap.Logger) *Console {
	return &Console{log: log.Named("mail")}
}

func (c *Console) Send(_ context.Context, msg Message) error {
	c.log.Info("mail (console)",
		zap.String("to", msg.To.String()),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)
	c.mu.Lock()
	c.sent = append(c.sent, msg)
	c.mu.Unlock()
	return nil
}

func (c *Console) Sent() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.sent))
	copy(out, c.sent)
	return out
}
