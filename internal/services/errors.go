// Package services holds the assistant's business logic: the conversation
// orchestrator, per-user session state, user profiles and the support desk.
// This file centralizes service-level error values so that callers can match
// them with errors.Is and front doors can translate them consistently.
package services

import "errors"

var (
	// ErrUnknownModel is returned when a model id is not in the catalog.
	ErrUnknownModel = errors.New("unknown model")

	// ErrInvalidTransition is returned when a dialog mode change is not
	// allowed from the user's current mode.
	ErrInvalidTransition = errors.New("invalid dialog transition")

	// ErrEmptyPrompt is returned when a prompt is blank after trimming.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrTooLong is returned when a prompt exceeds the configured rune limit.
	ErrTooLong = errors.New("prompt too long")

	// ErrConversationNotFound indicates that the conversation does not exist
	// or belongs to another user.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrTicketNotFound indicates an unknown ticket id.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrEmptyTicket is returned for a support message with no text.
	ErrEmptyTicket = errors.New("ticket message is empty")

	// ErrUnsupportedLanguage is returned for language codes that match none
	// of the supported languages.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)
