// Package mail sends the notification emails produced by background tasks.
package mail

import (
	"context"
	"errors"
	"fmt"
)

// Mailer delivers a plain text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

const confirmationSubject = "You created a new Conference!"

// ErrMissingRecipient is returned for a confirmation task without an email.
var ErrMissingRecipient = errors.New("confirmation email: missing recipient")

// ConfirmationHandler returns the task handler that emails a conference
// organizer a summary of the conference they created.
func ConfirmationHandler(m Mailer) func(ctx context.Context, params map[string]string) error {
	return func(ctx context.Context, params map[string]string) error {
		to := params["email"]
		if to == "" {
			return ErrMissingRecipient
		}
		body := "Hi, you have created a following conference:\r\n\r\n" + params["conferenceInfo"]
		if err := m.Send(ctx, to, confirmationSubject, body); err != nil {
			return fmt.Errorf("confirmation email to %s: %w", to, err)
		}
		return nil
	}
}
