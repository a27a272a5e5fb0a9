// Package compose builds the outbound notification email for a submission.
package compose

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"folio/internal/contact/models"
)

// SubjectPrefix starts every notification subject.
const SubjectPrefix = "Portfolio Contact: Message from "

// The fields are escaped by the sanitize package before they reach the
// template, so text/template is used to avoid escaping them a second time.
//
//go:embed template.html
var bodySource string

var bodyTemplate = template.Must(template.New("contact").Parse(bodySource))

type bodyData struct {
	Name        string
	Email       string
	MessageHTML string
}

// Composer turns sanitized submissions into messages for fixed sender and recipients.
type Composer struct {
	from       string
	recipients []string
}

func New(from string, recipients []string) (*Composer, error) {
	if strings.TrimSpace(from) == "" {
		return nil, errors.New("compose: from address is required")
	}
	if len(recipients) == 0 {
		return nil, errors.New("compose: at least one recipient is required")
	}
	return &Composer{
		from:       from,
		recipients: append([]string(nil), recipients...),
	}, nil
}

// Compose builds the message. clean must be the sanitized copy of raw; raw is
// used only for the Reply-To header so replies reach the address as typed.
func (c *Composer) Compose(raw models.Submission, clean models.SanitizedSubmission) (*models.Message, error) {
	var body strings.Builder
	err := bodyTemplate.Execute(&body, bodyData{
		Name:        clean.Name,
		Email:       clean.Email,
		MessageHTML: strings.ReplaceAll(clean.Message, "\n", "<br>"),
	})
	if err != nil {
		return nil, fmt.Errorf("render contact email: %w", err)
	}

	return &models.Message{
		From:    c.from,
		To:      append([]string(nil), c.recipients...),
		ReplyTo: raw.Email,
		Subject: SubjectPrefix + clean.Name,
		HTML:    body.String(),
	}, nil
}
