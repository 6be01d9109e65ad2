package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/gracechapel/backend/pkg/mailer"
)

var emailPattern = regexp.MustCompile(`^[\w-]+(\.[\w-]+)*@([\w-]+\.)+[a-zA-Z]{2,7}$`)

// ContactRequest is one contact form submission. All fields are required.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactValidationError reports a rejected submission.
type ContactValidationError struct {
	Message string
}

func (e *ContactValidationError) Error() string { return e.Message }

// ContactService relays contact form submissions to a fixed recipient.
type ContactService struct {
	mailer    mailer.Mailer
	recipient string
}

func NewContactService(m mailer.Mailer, recipient string) *ContactService {
	return &ContactService{mailer: m, recipient: recipient}
}

// Relay validates the submission and forwards it by email. Reply-To is set
// to the submitter so the recipient can answer directly.
func (c *ContactService) Relay(ctx context.Context, req ContactRequest) error {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	subject := strings.TrimSpace(req.Subject)
	message := strings.TrimSpace(req.Message)

	if name == "" || email == "" || subject == "" || message == "" {
		return &ContactValidationError{Message: "All fields are required."}
	}
	if !emailPattern.MatchString(email) {
		return &ContactValidationError{Message: "Please provide a valid email address."}
	}

	body := fmt.Sprintf("Name: %s\nEmail: %s\nSubject: %s\nMessage: %s", name, email, subject, message)
	return c.mailer.Send(ctx, mailer.Message{
		To:      c.recipient,
		ReplyTo: email,
		Subject: fmt.Sprintf("Contact Form: %s", subject),
		Body:    body,
	})
}
