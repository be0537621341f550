// Package reminder emails the notes whose reminder falls today.
package reminder

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Due returns the notes with a reminder on today.
func Due(notes []pocket.Note, today date.Date) []pocket.Note {
	var due []pocket.Note
	for _, n := range notes {
		if n.ReminderDate == today {
			due = append(due, n)
		}
	}
	return due
}

// Config is the SMTP server and the addresses of the reminders.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       []string
}

// Sender emails reminders.
type Sender struct {
	cfg    Config
	logger logrus.FieldLogger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a sender through the SMTP server of cfg.
func NewSender(cfg Config, logger logrus.FieldLogger) (*Sender, error) {
	if cfg.Host == "" || len(cfg.To) == 0 {
		return nil, fmt.Errorf("an SMTP host and a recipient are required: %w", pocket.ErrInvalid)
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send:   (*email.Email).Send,
	}, nil
}

func (s *Sender) message(n pocket.Note) *email.Email {
	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = s.cfg.To
	subject := n.Title
	if subject == "" {
		subject = firstLine(n.Content)
	}
	e.Subject = "Recordatorio: " + subject

	var body strings.Builder
	if n.Title != "" {
		fmt.Fprintf(&body, "%s\n\n", n.Title)
	}
	fmt.Fprintf(&body, "%s\n\n", n.Content)
	fmt.Fprintf(&body, "Recordatorio del %s.\n", n.ReminderDate)
	e.Text = []byte(body.String())
	return e
}

func firstLine(s string) string {
	s, _, _ = strings.Cut(s, "\n")
	if r := []rune(s); len(r) > 50 {
		s = string(r[:50]) + "…"
	}
	return s
}

// Send emails the reminder of note n.
func (s *Sender) Send(n pocket.Note) error {
	e := s.message(n)
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.WithField("id", n.ID).Errorf("Failed to send reminder: %v", err)
		return fmt.Errorf("failed to send reminder of note %s: %w", n.ID, err)
	}
	s.logger.WithField("id", n.ID).Infof("Reminder sent to %s: %s", strings.Join(e.To, ", "), e.Subject)
	return nil
}

// SendDue emails every note due today, and returns how many were sent.
func (s *Sender) SendDue(notes []pocket.Note, today date.Date) (int, error) {
	var (
		sent int
		errs []error
	)
	for _, n := range Due(notes, today) {
		if err := s.Send(n); err != nil {
			errs = append(errs, err)
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}
