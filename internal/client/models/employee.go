package models

import (
	"fmt"

	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/google/uuid"
)

// Employee is the profile linked one-to-one with an authenticated user.
type Employee struct {
	ID             string  `json:"id" msgpack:"id"`
	Name           string  `json:"name" msgpack:"name"`
	IsAdmin        bool    `json:"is_admin" msgpack:"is_admin"`
	OrganizationID string  `json:"id_organization" msgpack:"id_organization"`
	UserID         string  `json:"id_user" msgpack:"id_user"`
	AdminID        *string `json:"id_admin,omitempty" msgpack:"id_admin,omitempty"`
}

// Validate checks the profile invariants: an id, a UUID user identity and
// exactly one organization.
func (e *Employee) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: empty profile", common.ErrValidation)
	}
	if e.ID == "" {
		return fmt.Errorf("%w: profile without id", common.ErrValidation)
	}
	if _, err := uuid.Parse(e.UserID); err != nil {
		return fmt.Errorf("%w: profile user id %q: %v", common.ErrValidation, e.UserID, err)
	}
	if e.OrganizationID == "" {
		return fmt.Errorf("%w: profile without organization", common.ErrValidation)
	}
	return nil
}

// NewEmployee is the onboarding insert payload.
type NewEmployee struct {
	Name           string `validate:"required"`
	OrganizationID string `validate:"required"`
	UserID         string `validate:"required,uuid"`
	IsAdmin        bool
}
