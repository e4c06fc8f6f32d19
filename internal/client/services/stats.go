package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/client/remote"
	"github.com/dmitrijs2005/expensesheets/internal/common"
)

// TeamView is the admin overview. Restricted is set for non-admins, in
// which case Members is empty and nothing was queried.
type TeamView struct {
	Restricted bool
	Members    []models.TeamMember
}

type Stats struct {
	stats     remote.Stats
	employees remote.Employees
	profile   ProfileSource
}

func NewStats(stats remote.Stats, employees remote.Employees, profile ProfileSource) *Stats {
	return &Stats{stats: stats, employees: employees, profile: profile}
}

// Dashboard returns the counters of the current profile. An employee
// without sheets gets zeroed counters.
func (s *Stats) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	p := s.profile.Profile()
	if p == nil {
		return nil, common.ErrNoProfile
	}

	st, err := s.stats.DashboardStats(ctx, p.ID)
	if errors.Is(err, common.ErrNotFound) {
		return &models.DashboardStats{UserID: p.ID}, nil
	}
	return st, err
}

// Team lists the employees administered by the current profile with their
// counters.
func (s *Stats) Team(ctx context.Context) (*TeamView, error) {
	p := s.profile.Profile()
	if p == nil {
		return nil, common.ErrNoProfile
	}
	if !p.IsAdmin {
		return &TeamView{Restricted: true}, nil
	}

	rows, err := s.stats.TeamStats(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			ids = append(ids, r.UserID)
		}
	}

	names := make(map[string]string, len(ids))
	if len(ids) > 0 {
		emps, err := s.employees.EmployeesByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, e := range emps {
			names[e.ID] = e.Name
		}
	}

	view := &TeamView{Members: make([]models.TeamMember, 0, len(rows))}
	for _, r := range rows {
		name := names[r.UserID]
		if name == "" {
			name = r.UserID
		}
		view.Members = append(view.Members, models.TeamMember{Name: name, Stats: r})
	}
	return view, nil
}
