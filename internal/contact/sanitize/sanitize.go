// Package sanitize escapes visitor text before it is placed in an HTML email.
package sanitize

import (
	"strings"

	"folio/internal/contact/models"
)

// htmlEscaper replaces in a single pass, so an '&' it emits is never escaped again.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// EscapeHTML replaces & < > " ' / with entities. It is not idempotent:
// apply it once, to raw input only.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// Submission escapes every field of a submission.
func Submission(sub models.Submission) models.SanitizedSubmission {
	return models.SanitizedSubmission{
		Name:    EscapeHTML(sub.Name),
		Email:   EscapeHTML(sub.Email),
		Message: EscapeHTML(sub.Message),
	}
}
