package pocket

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/pocket/date"
)

// Note is a free text memo, optionally with a reminder.
type Note struct {
	ID           ID        `json:"id"`
	Title        string    `json:"title,omitempty"`
	Content      string    `json:"content"`
	ReminderDate date.Date `json:"reminderDate,omitzero"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// normalize trims the note text.
func (n Note) normalize() Note {
	n.Title = strings.TrimSpace(n.Title)
	n.Content = strings.TrimSpace(n.Content)
	return n
}

func (n Note) Validate() error {
	if strings.TrimSpace(n.Content) == "" {
		return fmt.Errorf("note %q has no content: %w", n.Title, ErrInvalid)
	}
	return nil
}
