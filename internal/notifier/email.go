package notifier

import (
	"context"
	"fmt"
	"time"

	"RSIMonitor/internal/model"

	"github.com/wneessen/go-mail"
)

// EmailNotifier sends alerts over SMTP with STARTTLS.
type EmailNotifier struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// TLSPolicy defaults to mandatory STARTTLS.
	TLSPolicy mail.TLSPolicy
	Timeout   time.Duration
}

// NewEmailNotifier creates an SMTP notifier. The password is passed in
// already resolved from the environment.
func NewEmailNotifier(host string, port int, username, password, from string) *EmailNotifier {
	if from == "" {
		from = username
	}
	return &EmailNotifier{
		Host:      host,
		Port:      port,
		Username:  username,
		Password:  password,
		From:      from,
		TLSPolicy: mail.TLSMandatory,
		Timeout:   30 * time.Second,
	}
}

func (e *EmailNotifier) Name() string { return "email" }

func (e *EmailNotifier) buildMessage(recipient string, msg model.Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(e.From); err != nil {
		return nil, fmt.Errorf("%w: sender %q: %w", ErrNotificationFailed, e.From, err)
	}
	if err := m.To(recipient); err != nil {
		return nil, fmt.Errorf("%w: recipient %q: %w", ErrNotificationFailed, recipient, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}

func (e *EmailNotifier) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithTLSPortPolicy(e.TLSPolicy),
		mail.WithPort(e.Port),
		mail.WithTimeout(e.Timeout),
	}
	if e.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(e.Username),
			mail.WithPassword(e.Password),
		)
	}
	c, err := mail.NewClient(e.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: smtp client: %w", ErrNotificationFailed, err)
	}
	return c, nil
}

// Send delivers one message. Failures are returned, never retried.
func (e *EmailNotifier) Send(ctx context.Context, recipient string, msg model.Message) error {
	m, err := e.buildMessage(recipient, msg)
	if err != nil {
		return err
	}
	c, err := e.client()
	if err != nil {
		return err
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("%w: smtp send via %s:%d: %w", ErrNotificationFailed, e.Host, e.Port, err)
	}
	return nil
}
