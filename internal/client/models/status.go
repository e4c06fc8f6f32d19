package models

import (
	"fmt"
	"slices"

	"github.com/dmitrijs2005/expensesheets/internal/common"
)

// SheetStatus mirrors the ids of the Sheet_status lookup table.
type SheetStatus int64

const (
	StatusPending  SheetStatus = 1
	StatusApproved SheetStatus = 2
	StatusRejected SheetStatus = 3
)

func (s SheetStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	default:
		return fmt.Sprintf("status(%d)", int64(s))
	}
}

// Valid reports whether s is one of the known statuses.
func (s SheetStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// ParseStatus validates a status id read from the remote service.
func ParseStatus(id int64) (SheetStatus, error) {
	s := SheetStatus(id)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: unknown sheet status %d", common.ErrValidation, id)
	}
	return s, nil
}

// transitions is the single source of truth for sheet workflow gating.
// Nothing goes back to pending.
var transitions = map[SheetStatus][]SheetStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusRejected},
	StatusRejected: {StatusApproved},
}

// Allowed returns the statuses reachable from s. The slice must not be modified.
func (s SheetStatus) Allowed() []SheetStatus {
	return transitions[s]
}

// CanTransition reports whether moving from s to next is permitted.
func (s SheetStatus) CanTransition(next SheetStatus) bool {
	return slices.Contains(transitions[s], next)
}

// Transition returns next when allowed, or ErrTransitionNotAllowed.
func (s SheetStatus) Transition(next SheetStatus) (SheetStatus, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("%w: %s -> %s", common.ErrTransitionNotAllowed, s, next)
	}
	return next, nil
}

// Actions are the affordances offered on an open sheet.
type Actions struct {
	CanApprove bool
	CanReject  bool
	CanAddLine bool
}

// ActionsFor derives the sheet affordances from the transition table.
// Lines can be added, and deleted, only while the sheet is pending.
func ActionsFor(s SheetStatus) Actions {
	return Actions{
		CanApprove: s.CanTransition(StatusApproved),
		CanReject:  s.CanTransition(StatusRejected),
		CanAddLine: s == StatusPending,
	}
}
