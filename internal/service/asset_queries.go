package service

import (
	"sort"
	"strings"
	"time"

	"homekeeper/internal/domain"
)

// Summary aggregates the asset collection for the dashboard
type Summary struct {
	ActiveCount         int `json:"activeCount"`
	DisposedCount       int `json:"disposedCount"`
	TotalCost           int `json:"totalCost"`
	OverUsefulLifeCount int `json:"overUsefulLifeCount"`
}

// YearTotal is the purchase spend of active assets in one calendar year
type YearTotal struct {
	Year  int `json:"year"`
	Total int `json:"total"`
	Count int `json:"count"`
}

// LifeProgressEntry ranks how much of its useful life an active asset has consumed
type LifeProgressEntry struct {
	ID          string  `json:"id"`
	ProductName string  `json:"productName"`
	Category    string  `json:"category"`
	Percent     float64 `json:"percent"`
	Progress    float64 `json:"progress"`
	IsOver      bool    `json:"isOverUsefulLife"`
}

func (s *assetStore) Active() []domain.Asset {
	return s.filter(func(a domain.Asset) bool { return !a.IsDisposed() })
}

func (s *assetStore) Disposed() []domain.Asset {
	return s.filter(domain.Asset.IsDisposed)
}

func (s *assetStore) filter(keep func(domain.Asset) bool) []domain.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Asset{}
	for _, a := range s.assets {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// Summary counts both partitions; cost and over-life figures cover active assets only
func (s *assetStore) Summary(now time.Time) Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum Summary
	for _, a := range s.assets {
		if a.IsDisposed() {
			sum.DisposedCount++
			continue
		}
		sum.ActiveCount++
		sum.TotalCost += a.PurchasePrice
		if a.IsOverUsefulLife(now) {
			sum.OverUsefulLifeCount++
		}
	}
	return sum
}

// YearlyTotals groups active purchases by purchase year, oldest first
func (s *assetStore) YearlyTotals() []YearTotal {
	byYear := make(map[int]*YearTotal)
	for _, a := range s.Active() {
		year := a.PurchaseDate.Year()
		yt, ok := byYear[year]
		if !ok {
			yt = &YearTotal{Year: year}
			byYear[year] = yt
		}
		yt.Total += a.PurchasePrice
		yt.Count++
	}

	out := make([]YearTotal, 0, len(byYear))
	for _, yt := range byYear {
		out = append(out, *yt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// LifeProgress lists active assets by consumed useful life, highest first
func (s *assetStore) LifeProgress(now time.Time) []LifeProgressEntry {
	active := s.Active()
	out := make([]LifeProgressEntry, 0, len(active))
	for _, a := range active {
		out = append(out, LifeProgressEntry{
			ID:          a.ID.String(),
			ProductName: a.ProductName,
			Category:    a.Category,
			Percent:     a.UsefulLifePercent(now),
			Progress:    a.UsefulLifeProgress(now),
			IsOver:      a.IsOverUsefulLife(now),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Percent > out[j].Percent })
	return out
}

// AssetStatus selects a partition of the collection
type AssetStatus string

const (
	StatusAll      AssetStatus = "all"
	StatusActive   AssetStatus = "active"
	StatusDisposed AssetStatus = "disposed"
)

// ParseAssetStatus accepts all, active or disposed; "" means all
func ParseAssetStatus(s string) (AssetStatus, bool) {
	switch st := AssetStatus(strings.ToLower(s)); st {
	case "", StatusAll:
		return StatusAll, true
	case StatusActive, StatusDisposed:
		return st, true
	}
	return StatusAll, false
}

// Sorted returns the assets of one partition in table order
func (s *assetStore) Sorted(now time.Time, status AssetStatus, field SortField, order SortOrder) []domain.Asset {
	var assets []domain.Asset
	switch status {
	case StatusActive:
		assets = s.Active()
	case StatusDisposed:
		assets = s.Disposed()
	default:
		assets = s.All()
	}
	return SortAssets(assets, now, field, order)
}

// SortField names a sortable asset column
type SortField string

const (
	SortNone            SortField = ""
	SortCategory        SortField = "category"
	SortProductName     SortField = "productName"
	SortStore           SortField = "store"
	SortPurchaseDate    SortField = "purchaseDate"
	SortPurchasePrice   SortField = "purchasePrice"
	SortUsefulLifeYears SortField = "usefulLifeYears"
	SortElapsedDays     SortField = "elapsedDays"
	SortDailyCost       SortField = "dailyCost"
	SortLifeProgress    SortField = "lifeProgress"
)

var sortFields = []SortField{
	SortCategory, SortProductName, SortStore, SortPurchaseDate, SortPurchasePrice,
	SortUsefulLifeYears, SortElapsedDays, SortDailyCost, SortLifeProgress,
}

// ParseSortField accepts a column name case-insensitively; "" means insertion order
func ParseSortField(s string) (SortField, bool) {
	if s == "" {
		return SortNone, true
	}
	for _, f := range sortFields {
		if strings.EqualFold(s, string(f)) {
			return f, true
		}
	}
	return SortNone, false
}

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseSortOrder defaults to ascending
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(s, string(OrderDesc)) {
		return OrderDesc
	}
	return OrderAsc
}

// SortAssets returns a sorted copy. Ties keep their relative order and
// SortNone keeps insertion order.
func SortAssets(assets []domain.Asset, now time.Time, field SortField, order SortOrder) []domain.Asset {
	out := append([]domain.Asset(nil), assets...)
	less := assetLess(field, now)
	if less == nil {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if order == OrderDesc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func assetLess(field SortField, now time.Time) func(a, b domain.Asset) bool {
	switch field {
	case SortCategory:
		return func(a, b domain.Asset) bool { return a.Category < b.Category }
	case SortProductName:
		return func(a, b domain.Asset) bool { return a.ProductName < b.ProductName }
	case SortStore:
		return func(a, b domain.Asset) bool { return a.Store < b.Store }
	case SortPurchaseDate:
		return func(a, b domain.Asset) bool { return a.PurchaseDate.Before(b.PurchaseDate) }
	case SortPurchasePrice:
		return func(a, b domain.Asset) bool { return a.PurchasePrice < b.PurchasePrice }
	case SortUsefulLifeYears:
		return func(a, b domain.Asset) bool { return a.UsefulLifeYears < b.UsefulLifeYears }
	case SortElapsedDays:
		return func(a, b domain.Asset) bool { return a.ElapsedDays(now) < b.ElapsedDays(now) }
	case SortDailyCost:
		return func(a, b domain.Asset) bool { return a.DailyCost(now) < b.DailyCost(now) }
	case SortLifeProgress:
		return func(a, b domain.Asset) bool { return a.UsefulLifePercent(now) < b.UsefulLifePercent(now) }
	default:
		return nil
	}
}
