package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/client/remote"
	"github.com/dmitrijs2005/expensesheets/internal/logging"
	"golang.org/x/sync/errgroup"
)

// ReferenceCache holds the status, payment type and category lookup tables
// for the signed-in identity.
type ReferenceCache struct {
	refs   remote.References
	logger logging.Logger

	mu       sync.RWMutex
	tables   map[models.ReferenceTable][]models.RefItem
	identity string
}

func NewReferenceCache(refs remote.References, logger logging.Logger) *ReferenceCache {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ReferenceCache{
		refs:   refs,
		logger: logger,
		tables: make(map[models.ReferenceTable][]models.RefItem),
	}
}

// Load fetches the three tables concurrently. A table that fails to load
// keeps its previous rows (empty on first load); the failures are joined
// into the returned error.
func (r *ReferenceCache) Load(ctx context.Context) error {
	results := make([][]models.RefItem, len(models.ReferenceTables))
	errs := make([]error, len(models.ReferenceTables))

	var g errgroup.Group
	for i, table := range models.ReferenceTables {
		g.Go(func() error {
			items, err := r.refs.ListReference(ctx, table)
			if err != nil {
				r.logger.Warn(ctx, "reference load failed", "table", string(table), "error", err)
				errs[i] = fmt.Errorf("load %s: %w", table, err)
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	r.mu.Lock()
	for i, table := range models.ReferenceTables {
		if errs[i] == nil {
			r.tables[table] = results[i]
		}
	}
	r.mu.Unlock()

	return errors.Join(errs...)
}

// Refresh reloads every table.
func (r *ReferenceCache) Refresh(ctx context.Context) error {
	return r.Load(ctx)
}

// Sync reloads when the identity changes. Without both a user and a profile
// the cache is emptied.
func (r *ReferenceCache) Sync(ctx context.Context, id Identity) error {
	key := id.Key()

	r.mu.Lock()
	if key == r.identity {
		r.mu.Unlock()
		return nil
	}
	r.identity = key
	if key == "" {
		clear(r.tables)
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	return r.Load(ctx)
}

func (r *ReferenceCache) list(t models.ReferenceTable) []models.RefItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.RefItem(nil), r.tables[t]...)
}

func (r *ReferenceCache) Statuses() []models.RefItem     { return r.list(models.TableSheetStatus) }
func (r *ReferenceCache) PaymentTypes() []models.RefItem { return r.list(models.TablePaymentType) }
func (r *ReferenceCache) Categories() []models.RefItem   { return r.list(models.TableCategory) }

func (r *ReferenceCache) name(t models.ReferenceTable, id int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return models.FindRef(r.tables[t], id)
}

func (r *ReferenceCache) StatusName(id int64) string      { return r.name(models.TableSheetStatus, id) }
func (r *ReferenceCache) PaymentTypeName(id int64) string { return r.name(models.TablePaymentType, id) }
func (r *ReferenceCache) CategoryName(id int64) string    { return r.name(models.TableCategory, id) }
