package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/subtally/subtally/internal/pkg/reminder"
)

// ReminderMailer delivers payment reminders over SMTP. It implements
// reminder.Notifier.
type ReminderMailer struct{}

func NewReminderMailer() *ReminderMailer {
	return &ReminderMailer{}
}

// SendReminder sends a week-out or day-out payment reminder. The SMTP call
// itself is synchronous; ctx cancellation is honored before the send starts.
func (m *ReminderMailer) SendReminder(ctx context.Context, item reminder.Item, window reminder.Window, dueDate time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var subject string
	switch window {
	case reminder.WindowWeek:
		subject = fmt.Sprintf("%s renews in one week", item.DisplayName)
	case reminder.WindowDay:
		subject = fmt.Sprintf("%s renews tomorrow", item.DisplayName)
	default:
		return fmt.Errorf("unknown reminder window %q", window)
	}

	body := fmt.Sprintf(
		"<p>Your subscription to <strong>%s</strong> renews on %s.</p>"+
			"<p>Amount due: %s</p>",
		item.DisplayName,
		dueDate.Format("Monday, 2 January 2006"),
		item.Price.StringFixed(2),
	)
	if item.ProductURL != "" {
		body += fmt.Sprintf("<p><a href=\"%s\">Manage your subscription</a></p>", item.ProductURL)
	}

	return SendMail(item.Contact, subject, body)
}
