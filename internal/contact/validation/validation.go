package validation

import (
	"slices"

	"folio/internal/contact/models"
	dErrors "folio/pkg/domain-errors"
	"folio/pkg/validation"
)

// Validate checks a submission as received. Required fields must be non-blank
// after trimming; lengths and the email format are checked on the raw values.
// When several defects exist the
// reported reason follows missing_fields, then field_too_long, then
// invalid_email. The returned error carries a models.Reason as its cause.
func Validate(sub models.Submission) error {
	tags := validation.FailedTags(validation.Struct(sub))
	if len(tags) == 0 {
		return nil
	}

	var reason models.Reason
	switch {
	case slices.Contains(tags, "notblank"):
		reason = models.ReasonMissingFields
	case slices.Contains(tags, "max"):
		reason = models.ReasonFieldTooLong
	default:
		reason = models.ReasonInvalidEmail
	}
	return dErrors.Wrap(reason, dErrors.CodeValidation, reason.Message())
}
