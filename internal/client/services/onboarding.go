package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/client/remote"
	"github.com/dmitrijs2005/expensesheets/internal/common"
)

// ProfileSink is where onboarding delivers the new profile.
type ProfileSink interface {
	Session() *models.Session
	SetProfile(ctx context.Context, e *models.Employee) error
}

// Onboarding links a signed-in user without profile to an organization:
// first the organization code is validated, then the employee is created.
type Onboarding struct {
	orgs      remote.Organizations
	employees remote.Employees
	sink      ProfileSink

	mu  sync.Mutex
	org *models.Organization
}

func NewOnboarding(orgs remote.Organizations, employees remote.Employees, sink ProfileSink) *Onboarding {
	return &Onboarding{orgs: orgs, employees: employees, sink: sink}
}

// ValidateCode looks the organization up by its tax code.
func (o *Onboarding) ValidateCode(ctx context.Context, code string) (*models.Organization, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: organization code is required", common.ErrValidation)
	}

	org, err := o.orgs.OrganizationByCode(ctx, code)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", common.ErrOrganizationNotFound, code)
		}
		return nil, err
	}

	o.mu.Lock()
	o.org = org
	o.mu.Unlock()
	return org, nil
}

// Organization is the validated organization, or nil.
func (o *Onboarding) Organization() *models.Organization {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.org
}

func (o *Onboarding) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.org = nil
}

// Complete creates the employee for the current user in the validated
// organization and installs it as the active profile.
func (o *Onboarding) Complete(ctx context.Context, name string) (*models.Employee, error) {
	org := o.Organization()
	if org == nil {
		return nil, common.ErrCodeNotValidated
	}
	sess := o.sink.Session()
	if sess == nil {
		return nil, common.ErrNoSession
	}

	ne := &models.NewEmployee{
		Name:           strings.TrimSpace(name),
		OrganizationID: org.ID,
		UserID:         sess.User.ID,
	}
	if err := models.Check(ne); err != nil {
		return nil, err
	}

	e, err := o.employees.CreateEmployee(ctx, ne)
	if err != nil {
		return nil, err
	}
	if err := o.sink.SetProfile(ctx, e); err != nil {
		return nil, err
	}

	o.Reset()
	return e, nil
}
