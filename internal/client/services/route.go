package services

import "github.com/dmitrijs2005/expensesheets/internal/client/models"

// Route is the top-level screen the client should show.
type Route int

const (
	RouteSignIn Route = iota
	RouteOnboarding
	RouteHome
)

func (r Route) String() string {
	switch r {
	case RouteSignIn:
		return "sign-in"
	case RouteOnboarding:
		return "onboarding"
	case RouteHome:
		return "home"
	default:
		return "unknown"
	}
}

// Resolve: no session signs in, a session without profile onboards.
func Resolve(s *models.Session, p *models.Employee) Route {
	switch {
	case s == nil:
		return RouteSignIn
	case p == nil:
		return RouteOnboarding
	default:
		return RouteHome
	}
}
