package reminder

import (
	"errors"
	"io"
	"net/smtp"
	"strings"
	"testing"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

func notes() []pocket.Note {
	return []pocket.Note{
		{ID: "a", Title: "Seguro", Content: "Renovar el seguro del coche", ReminderDate: date.MustParse("2025-06-10")},
		{ID: "b", Content: "Llamar al banco\nsobre la hipoteca", ReminderDate: date.MustParse("2025-06-10")},
		{ID: "c", Content: "Sin recordatorio"},
		{ID: "d", Content: "Mañana", ReminderDate: date.MustParse("2025-06-11")},
	}
}

func TestDue(t *testing.T) {
	due := Due(notes(), date.MustParse("2025-06-10"))
	if len(due) != 2 || due[0].ID != "a" || due[1].ID != "b" {
		t.Errorf("Due() = %v, want a and b", due)
	}
	if due := Due(notes(), date.MustParse("2025-06-12")); len(due) != 0 {
		t.Errorf("Due(2025-06-12) = %v, want none", due)
	}
}

func newTestSender(t *testing.T, fail bool) (*Sender, *[]*email.Email) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s, err := NewSender(Config{Host: "smtp.example.com", Username: "me@example.com", Password: "pw", To: []string{"me@example.com"}}, logger)
	if err != nil {
		t.Fatal(err)
	}
	var sent []*email.Email
	s.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		if addr != "smtp.example.com:587" {
			t.Errorf("addr = %q, want the default port", addr)
		}
		if fail {
			return errors.New("connection refused")
		}
		sent = append(sent, e)
		return nil
	}
	return s, &sent
}

func TestSender_SendDue(t *testing.T) {
	s, sent := newTestSender(t, false)
	n, err := s.SendDue(notes(), date.MustParse("2025-06-10"))
	if err != nil || n != 2 {
		t.Fatalf("SendDue() = %d, %v, want 2, nil", n, err)
	}
	if got, want := (*sent)[0].Subject, "Recordatorio: Seguro"; got != want {
		t.Errorf("Subject = %q, want %q", got, want)
	}
	if got, want := (*sent)[1].Subject, "Recordatorio: Llamar al banco"; got != want {
		t.Errorf("Subject = %q, want %q", got, want)
	}
	if body := string((*sent)[0].Text); !strings.Contains(body, "Renovar el seguro del coche") || !strings.Contains(body, "2025-06-10") {
		t.Errorf("Text = %q, want the note content and date", body)
	}
	if from := (*sent)[0].From; from != "me@example.com" {
		t.Errorf("From = %q, want the username", from)
	}
}

func TestSender_SendDue_Failure(t *testing.T) {
	s, _ := newTestSender(t, true)
	n, err := s.SendDue(notes(), date.MustParse("2025-06-10"))
	if err == nil || n != 0 {
		t.Errorf("SendDue() = %d, %v, want 0 and an error", n, err)
	}
}

func TestNewSender_Invalid(t *testing.T) {
	if _, err := NewSender(Config{}, logrus.New()); !errors.Is(err, pocket.ErrInvalid) {
		t.Errorf("NewSender(no host) = %v, want ErrInvalid", err)
	}
}
