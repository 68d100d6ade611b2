// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable. Generic codes mirror HTTP status
// semantics; domain codes cover outcomes the status alone cannot convey.
// Clients are expected to branch on the code, not the message.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "unknown_model",
//	  "message": "model is not in the catalog"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeUnavailable      = "unavailable"

	// Domain-specific:
	ErrCodeUnknownModel   = "unknown_model"
	ErrCodePromptTooLong  = "prompt_too_long"
	ErrCodeCreateFailed   = "create_failed"
	ErrCodeTicketNotFound = "ticket_not_found"
)
