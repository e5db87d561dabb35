package notify

import "context"

// EmailSender defines the interface for sending emails.
// Implementations can be swapped (SES, SMTP, a provider API) without
// changing callers.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string // Plain text body
	HTML    string // Optional HTML body
}
