package models

// Reason names the specific defect of a rejected submission. It implements
// error so it can travel as the cause of a validation domain error.
type Reason string

const (
	ReasonMissingFields   Reason = "missing_fields"
	ReasonFieldTooLong    Reason = "field_too_long"
	ReasonInvalidEmail    Reason = "invalid_email"
	ReasonPayloadTooLarge Reason = "payload_too_large"
)

func (r Reason) Error() string {
	return string(r)
}

// Message returns the default English text for the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonMissingFields:
		return "All fields are required"
	case ReasonFieldTooLong:
		return "Field length exceeds maximum allowed"
	case ReasonInvalidEmail:
		return "Invalid email address"
	case ReasonPayloadTooLarge:
		return "Request payload too large"
	default:
		return "Invalid request"
	}
}
