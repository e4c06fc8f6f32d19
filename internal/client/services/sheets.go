package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/client/remote"
	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/dmitrijs2005/expensesheets/internal/logging"
)

// View is the state of the sheet board.
type View int

const (
	ViewList View = iota
	ViewCreating
	ViewDetail
)

func (v View) String() string {
	switch v {
	case ViewList:
		return "list"
	case ViewCreating:
		return "creating"
	case ViewDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// SheetBoard is the list/create/detail state machine over the profile's
// sheets. Mutations are always followed by a full reload.
type SheetBoard struct {
	sheets  remote.Sheets
	profile ProfileSource
	logger  logging.Logger
	now     func() time.Time

	mu       sync.RWMutex
	view     View
	list     []models.Sheet
	loaded   bool
	loadErr  error
	message  string
	openID   int64
	openCopy *models.Sheet
}

func NewSheetBoard(sheets remote.Sheets, profile ProfileSource, logger logging.Logger) *SheetBoard {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SheetBoard{sheets: sheets, profile: profile, logger: logger, now: time.Now}
}

func (b *SheetBoard) View() View {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.view
}

// Sheets returns a copy of the last loaded list.
func (b *SheetBoard) Sheets() []models.Sheet {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.list)
}

// Loaded is true after a successful load, even when it returned no rows.
func (b *SheetBoard) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

func (b *SheetBoard) Err() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loadErr
}

// Message is the last user-facing failure of a create or delete.
func (b *SheetBoard) Message() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.message
}

func (b *SheetBoard) OpenCreate() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.view != ViewList {
		return fmt.Errorf("%w: open create from %s", common.ErrInvalidState, b.view)
	}
	b.view = ViewCreating
	b.message = ""
	return nil
}

func (b *SheetBoard) CancelCreate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.view == ViewCreating {
		b.view = ViewList
	}
}

// Create submits the form. On success the board returns to the list and
// reloads; on failure it stays on the form with Message set.
func (b *SheetBoard) Create(ctx context.Context, form models.SheetForm) (int64, error) {
	if b.View() != ViewCreating {
		return 0, fmt.Errorf("%w: create outside the form", common.ErrInvalidState)
	}
	p := b.profile.Profile()
	if p == nil {
		return 0, common.ErrNoProfile
	}

	ns, err := form.Build(p.ID, b.now())
	if err != nil {
		b.setMessage(err)
		return 0, err
	}

	id, err := b.sheets.CreateSheet(ctx, ns)
	if err != nil {
		b.logger.Warn(ctx, "sheet create failed", "error", err)
		b.setMessage(err)
		return 0, err
	}

	b.mu.Lock()
	b.view = ViewList
	b.message = ""
	b.mu.Unlock()

	return id, b.Reload(ctx)
}

// Select opens the detail of a listed sheet.
func (b *SheetBoard) Select(id int64) (*models.Sheet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.view != ViewList {
		return nil, fmt.Errorf("%w: select from %s", common.ErrInvalidState, b.view)
	}
	i := slices.IndexFunc(b.list, func(s models.Sheet) bool { return s.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("sheet %d: %w", id, common.ErrNotFound)
	}

	s := b.list[i]
	b.view = ViewDetail
	b.openID = id
	b.openCopy = &s
	return &s, nil
}

// Close returns from the detail to the list.
func (b *SheetBoard) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeLocked()
}

func (b *SheetBoard) closeLocked() {
	if b.view == ViewDetail {
		b.view = ViewList
	}
	b.openID = 0
	b.openCopy = nil
}

// Current returns the open sheet, if any.
func (b *SheetBoard) Current() (*models.Sheet, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.view != ViewDetail || b.openCopy == nil {
		return nil, false
	}
	s := *b.openCopy
	return &s, true
}

// ApplyStatus mirrors a status change made from the detail view.
func (b *SheetBoard) ApplyStatus(id int64, status models.StatusRef) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.list {
		if b.list[i].ID == id {
			b.list[i].Status = status
		}
	}
	if b.openCopy != nil && b.openCopy.ID == id {
		b.openCopy.Status = status
	}
}

// Reload replaces the list with the profile's sheets. On failure the list
// is emptied and Err reports why.
func (b *SheetBoard) Reload(ctx context.Context) error {
	p := b.profile.Profile()
	if p == nil {
		b.setLoad(nil, common.ErrNoProfile)
		return common.ErrNoProfile
	}

	list, err := b.sheets.ListSheets(ctx, p.ID)
	if err != nil {
		b.logger.Warn(ctx, "sheet list load failed", "error", err)
	}
	b.setLoad(list, err)
	return err
}

func (b *SheetBoard) setLoad(list []models.Sheet, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.list, b.loaded, b.loadErr = []models.Sheet{}, false, err
		return
	}
	if list == nil {
		list = []models.Sheet{}
	}
	b.list, b.loaded, b.loadErr = list, true, nil

	if b.openCopy != nil {
		if i := slices.IndexFunc(list, func(s models.Sheet) bool { return s.ID == b.openID }); i >= 0 {
			s := list[i]
			b.openCopy = &s
		}
	}
}

// Delete removes a sheet. When it is the open one the detail closes. The
// list is reloaded after a successful delete; a failed delete changes
// nothing but Message.
func (b *SheetBoard) Delete(ctx context.Context, id int64) error {
	if err := b.sheets.DeleteSheet(ctx, id); err != nil {
		b.logger.Warn(ctx, "sheet delete failed", "id", id, "error", err)
		b.setMessage(err)
		return err
	}

	b.mu.Lock()
	if b.openID == id {
		b.closeLocked()
	}
	b.message = ""
	b.mu.Unlock()

	return b.Reload(ctx)
}

// Reset drops all state, for identity changes.
func (b *SheetBoard) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.view = ViewList
	b.list, b.loaded, b.loadErr, b.message = nil, false, nil, ""
	b.openID, b.openCopy = 0, nil
}

func (b *SheetBoard) setMessage(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.message = err.Error()
}
