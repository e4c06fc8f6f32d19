// Package common holds sentinel errors and tiny helpers shared by every
// layer of the expense sheets client. Match errors with errors.Is.
package common

import "errors"

var (
	// Lookups.
	ErrNotFound = errors.New("not found")

	// Remote boundary.
	ErrUnavailable  = errors.New("remote service unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")

	// Routing conditions, not failures inside a screen.
	ErrNoSession = errors.New("no active session")
	ErrNoProfile = errors.New("no employee profile")

	// Input checks done before any network call.
	ErrValidation = errors.New("validation error")

	// Sheet workflow.
	ErrSheetLocked          = errors.New("sheet is not pending")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrNoSheetSelected      = errors.New("no sheet selected")
	ErrInvalidState         = errors.New("action not available in the current view")

	// Attachments.
	ErrAttachment   = errors.New("attachment upload failed")
	ErrNoAttachment = errors.New("line has no attachment")

	// Onboarding.
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrCodeNotValidated     = errors.New("organization code not validated")

	// Local cache.
	ErrCacheCorrupted = errors.New("local cache corrupted")
)
