package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"homekeeper/internal/csvcodec"
	"homekeeper/internal/domain"
	"homekeeper/internal/repository"
)

var ErrUnreadableSource = errors.New("import source could not be read")

// AssetStore owns the asset collection. Every mutation rewrites the whole
// collection; the in-memory change stands even when that write fails.
type AssetStore interface {
	All() []domain.Asset
	Get(id uuid.UUID) (domain.Asset, bool)
	Add(ctx context.Context, asset domain.Asset) (domain.Asset, error)
	// Update replaces the asset with the same id. found is false, and nothing
	// is written, when no asset has that id.
	Update(ctx context.Context, asset domain.Asset) (found bool, err error)
	ToggleDisposed(ctx context.Context, ids []uuid.UUID) (changed int, err error)
	Dispose(ctx context.Context, ids []uuid.UUID) (changed int, err error)
	Delete(ctx context.Context, ids []uuid.UUID) (removed int, err error)
	ImportCSV(ctx context.Context, r io.Reader, format csvcodec.DateFormat) (csvcodec.Result, error)
	ExportCSV(format csvcodec.DateFormat) string

	Active() []domain.Asset
	Disposed() []domain.Asset
	Summary(now time.Time) Summary
	YearlyTotals() []YearTotal
	LifeProgress(now time.Time) []LifeProgressEntry
	Sorted(now time.Time, status AssetStatus, field SortField, order SortOrder) []domain.Asset
}

type assetStore struct {
	mu     sync.RWMutex
	assets []domain.Asset
	coll   *repository.Collection[domain.Asset]
	codec  *csvcodec.Codec
	logger *zap.Logger
	now    func() time.Time
}

// NewAssetStore loads the collection once. A missing or unreadable slot
// starts the store empty.
func NewAssetStore(
	ctx context.Context,
	coll *repository.Collection[domain.Asset],
	codec *csvcodec.Codec,
	logger *zap.Logger,
	opts ...Option,
) AssetStore {
	o := applyOptions(opts)
	s := &assetStore{
		coll:   coll,
		codec:  codec,
		logger: logger.With(zap.String("store", "assets")),
		now:    o.now,
	}
	s.assets = loadCollection(ctx, coll, s.logger)
	return s
}

func (s *assetStore) All() []domain.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Asset(nil), s.assets...)
}

func (s *assetStore) Get(id uuid.UUID) (domain.Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assets {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Asset{}, false
}

// Add assigns an id, resolves the useful life and appends the asset
func (s *assetStore) Add(ctx context.Context, asset domain.Asset) (domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset.ID = uuid.Nil
	asset.Normalize(s.now())
	s.assets = append(s.assets, asset)

	return asset, s.persist(ctx, "add")
}

func (s *assetStore) Update(ctx context.Context, asset domain.Asset) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.assets {
		if s.assets[i].ID != asset.ID {
			continue
		}
		asset.Normalize(s.now())
		s.assets[i] = asset
		return true, s.persist(ctx, "update")
	}

	s.logger.Debug("Update ignored for unknown asset", zap.String("asset_id", asset.ID.String()))
	return false, nil
}

// ToggleDisposed flips each matching asset between active and disposed.
// Newly disposed assets get the current time as their disposal date.
func (s *assetStore) ToggleDisposed(ctx context.Context, ids []uuid.UUID) (int, error) {
	return s.mutateEach(ctx, "toggle_disposed", ids, func(a *domain.Asset, now time.Time) bool {
		if a.IsDisposed() {
			a.Reinstate()
		} else {
			a.MarkDisposed(now)
		}
		return true
	})
}

// Dispose marks matching active assets as disposed today. Already disposed
// assets keep their original disposal date.
func (s *assetStore) Dispose(ctx context.Context, ids []uuid.UUID) (int, error) {
	return s.mutateEach(ctx, "dispose", ids, func(a *domain.Asset, now time.Time) bool {
		if a.IsDisposed() {
			return false
		}
		a.MarkDisposed(now)
		return true
	})
}

func (s *assetStore) mutateEach(
	ctx context.Context,
	op string,
	ids []uuid.UUID,
	fn func(a *domain.Asset, now time.Time) bool,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := idSet(ids)
	now := s.now()
	changed := 0
	for i := range s.assets {
		if _, ok := wanted[s.assets[i].ID]; !ok {
			continue
		}
		if fn(&s.assets[i], now) {
			changed++
		}
	}

	if changed == 0 {
		return 0, nil
	}
	return changed, s.persist(ctx, op)
}

// Delete removes exactly the given ids and keeps the order of the rest
func (s *assetStore) Delete(ctx context.Context, ids []uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := idSet(ids)
	kept := s.assets[:0:0]
	for _, a := range s.assets {
		if _, ok := wanted[a.ID]; !ok {
			kept = append(kept, a)
		}
	}

	removed := len(s.assets) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	s.assets = kept
	return removed, s.persist(ctx, "delete")
}

// ImportCSV appends every decodable row. It fails only when r cannot be
// read, in which case the collection is untouched.
func (s *assetStore) ImportCSV(ctx context.Context, r io.Reader, format csvcodec.DateFormat) (csvcodec.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return csvcodec.Result{}, fmt.Errorf("%w: %v", ErrUnreadableSource, err)
	}

	result := s.codec.Decode(string(data), format)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("CSV decoded",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)

	if result.Imported == 0 {
		return result, nil
	}

	s.assets = append(s.assets, result.Assets...)
	return result, s.persist(ctx, "import")
}

func (s *assetStore) ExportCSV(format csvcodec.DateFormat) string {
	return s.codec.Encode(s.All(), format)
}

// persist must be called with the write lock held
func (s *assetStore) persist(ctx context.Context, op string) error {
	if err := s.coll.Save(ctx, s.assets); err != nil {
		s.logger.Error("Failed to persist assets",
			zap.String("op", op),
			zap.Int("count", len(s.assets)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// loadCollection reads a collection, treating a missing or corrupt slot as empty
func loadCollection[T any](ctx context.Context, coll *repository.Collection[T], logger *zap.Logger) []T {
	items, err := coll.Load(ctx)
	switch {
	case err == nil:
		logger.Info("Collection loaded", zap.String("slot", coll.Name()), zap.Int("count", len(items)))
		return items
	case errors.Is(err, repository.ErrSlotNotFound):
		logger.Info("No saved data, starting empty", zap.String("slot", coll.Name()))
	default:
		logger.Warn("Could not load saved data, starting empty",
			zap.String("slot", coll.Name()),
			zap.Error(err),
		)
	}
	return nil
}
