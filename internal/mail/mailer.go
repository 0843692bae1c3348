// Package mail renders booking emails and sends them over SMTP.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/kirinyoku/tour-go/internal/notify"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	FromName string
	AppURL   string
}

// Mailer is a notify.Sender. Without SMTP credentials it logs and skips
// every message.
type Mailer struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Mailer {
	if cfg.FromName == "" {
		cfg.FromName = "TravelHub"
	}
	return &Mailer{cfg: cfg, logger: logger}
}

func (m *Mailer) configured() bool {
	return m.cfg.User != "" && m.cfg.Password != ""
}

func (m *Mailer) Send(ctx context.Context, msg notify.Message) error {
	const op = "mail.Mailer.Send"

	if !m.configured() {
		m.logger.Info("email skipped: smtp not configured",
			slog.String("kind", string(msg.Kind)),
			slog.String("to", msg.Booking.UserEmail),
		)
		return nil
	}

	r, err := Render(msg, m.cfg.FromName, m.cfg.AppURL)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	out, err := m.build(msg.Booking.UserEmail, r)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.User),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(20*time.Second),
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	m.logger.Info("email sent",
		slog.String("kind", string(msg.Kind)),
		slog.String("to", msg.Booking.UserEmail),
	)

	return nil
}

func (m *Mailer) build(to string, r Rendered) (*gomail.Msg, error) {
	out := gomail.NewMsg()
	if err := out.FromFormat(m.cfg.FromName, m.cfg.User); err != nil {
		return nil, err
	}
	if err := out.To(to); err != nil {
		return nil, err
	}
	out.Subject(r.Subject)

	if r.Text != "" {
		out.SetBodyString(gomail.TypeTextPlain, r.Text)
		out.AddAlternativeString(gomail.TypeTextHTML, r.HTML)
	} else {
		out.SetBodyString(gomail.TypeTextHTML, r.HTML)
	}

	return out, nil
}
