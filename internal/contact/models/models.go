package models

import (
	"strings"
)

// Field limits, counted in characters.
const (
	MaxNameLength    = 100
	MaxEmailLength   = 255
	MaxMessageLength = 5000
)

// MaxBodyBytes is the default request body limit for a submission.
const MaxBodyBytes = 10000

// Submission is the contact form body as sent by the visitor.
type Submission struct {
	Name    string `json:"name" validate:"notblank,max=100"`
	Email   string `json:"email" validate:"notblank,max=255,contactemail"`
	Message string `json:"message" validate:"notblank,max=5000"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (s Submission) Trimmed() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Message: strings.TrimSpace(s.Message),
	}
}

// SanitizedSubmission is the HTML-escaped copy used only inside the email body.
type SanitizedSubmission struct {
	Name    string
	Email   string
	Message string
}

// Message is a composed outbound email.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Receipt is what the provider returned for an accepted message.
type Receipt struct {
	ID string
}

// SentResponse is the success body of the contact endpoint.
type SentResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
