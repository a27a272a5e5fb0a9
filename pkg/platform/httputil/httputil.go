package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "folio/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for every error the service returns.
type ErrorResponse struct {
	Error string `json:"error"`
}

// genericErrorMessage is written when an error carries nothing safe to show.
const genericErrorMessage = "Failed to send email. Please try again later."

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError centralizes domain error translation to HTTP responses.
// Only the domain message is written; wrapped causes never reach the client.
// Internal and dispatch failures always get the generic message.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		msg := domainErr.Message
		if msg == "" || exposesNoDetail(domainErr.Code) {
			msg = genericErrorMessage
		}
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), ErrorResponse{Error: msg})
		return
	}

	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: genericErrorMessage})
}

// WriteErrorMessage writes an error envelope with an already user-safe message.
func WriteErrorMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeDispatchFailed, dErrors.CodeTimeout, dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func exposesNoDetail(code dErrors.Code) bool {
	return DomainCodeToHTTPStatus(code) >= http.StatusInternalServerError
}
