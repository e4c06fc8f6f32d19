// Package remote declares the boundaries of the hosted backend the client
// consumes: the auth service, the row store and object storage.
//
// Adapters live in the subpackages gotrue, postgres and objects. Services
// depend only on the interfaces below so they can be driven by fakes.
package remote

import (
	"context"
	"io"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
)

// EventKind classifies a session change published by Auth.
type EventKind int

const (
	EventSignedIn EventKind = iota + 1
	EventSignedOut
	EventTokenRefreshed
)

func (k EventKind) String() string {
	switch k {
	case EventSignedIn:
		return "signed_in"
	case EventSignedOut:
		return "signed_out"
	case EventTokenRefreshed:
		return "token_refreshed"
	default:
		return "unknown"
	}
}

// SessionEvent carries the session after the change. Session is nil for
// EventSignedOut.
type SessionEvent struct {
	Kind    EventKind
	Session *models.Session
}

// Auth is a stateful auth client holding the current session.
type Auth interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	// SignUp returns a nil session when the service requires the address to
	// be confirmed first.
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context) error
	// GetSession returns the current session, refreshing it first when the
	// access token has expired. A nil session with a nil error means nobody
	// is signed in.
	GetSession(ctx context.Context) (*models.Session, error)
	Refresh(ctx context.Context) (*models.Session, error)
	// SetSession seeds the client with a previously cached session.
	SetSession(s *models.Session)
	Events() <-chan SessionEvent
}

// TokenSource yields the bearer token row-level security is evaluated for.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

type Organizations interface {
	// OrganizationByCode returns common.ErrNotFound when no row matches.
	OrganizationByCode(ctx context.Context, vatNumber string) (*models.Organization, error)
}

type Employees interface {
	// EmployeeByUser returns common.ErrNotFound when the user has no profile.
	EmployeeByUser(ctx context.Context, userID string) (*models.Employee, error)
	CreateEmployee(ctx context.Context, e *models.NewEmployee) (*models.Employee, error)
	EmployeesByIDs(ctx context.Context, ids []string) ([]models.Employee, error)
}

type Sheets interface {
	ListSheets(ctx context.Context, ownerID string) ([]models.Sheet, error)
	CreateSheet(ctx context.Context, s *models.NewSheet) (int64, error)
	UpdateSheetStatus(ctx context.Context, id int64, status models.SheetStatus) error
	DeleteSheet(ctx context.Context, id int64) error
}

type Lines interface {
	ListLines(ctx context.Context, sheetID int64) ([]models.Line, error)
	CreateLine(ctx context.Context, l *models.NewLine) (int64, error)
	DeleteLine(ctx context.Context, id int64) error
}

type References interface {
	// ListReference returns the rows of table ordered by name.
	ListReference(ctx context.Context, table models.ReferenceTable) ([]models.RefItem, error)
}

type Stats interface {
	// DashboardStats returns common.ErrNotFound when the employee has no row.
	DashboardStats(ctx context.Context, employeeID string) (*models.DashboardStats, error)
	TeamStats(ctx context.Context, adminID string) ([]models.DashboardStats, error)
}

// Data is the whole row store.
type Data interface {
	Organizations
	Employees
	Sheets
	Lines
	References
	Stats
	Close() error
}

// Objects is S3-style storage with public read URLs.
type Objects interface {
	// Put upserts body at bucket/key.
	Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	PublicURL(bucket, key string) string
}
