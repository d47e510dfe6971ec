package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	// DaysPerYear converts elapsed days into fractional years
	DaysPerYear = 365.25

	// MaxLifeProgress caps UsefulLifeProgress for gauges
	MaxLifeProgress = 1.5
)

// Disposal marks an asset as removed from active service.
// A nil *Disposal on an Asset means the asset is active.
type Disposal struct {
	Date *time.Time `json:"date,omitempty"`
}

// Asset represents a tracked durable good
type Asset struct {
	ID              uuid.UUID `json:"id"`
	Category        string    `json:"category"`
	ProductName     string    `json:"productName"`
	Store           string    `json:"store"`
	PurchaseDate    time.Time `json:"purchaseDate"`
	PurchasePrice   int       `json:"purchasePrice"`
	UsefulLifeYears int       `json:"usefulLifeYears"`
	Notes           string    `json:"notes"`
	Disposal        *Disposal `json:"disposal,omitempty"`
}

// Metrics is a snapshot of the derived values of an asset at a point in time
type Metrics struct {
	ElapsedDays        int     `json:"elapsedDays"`
	ElapsedYears       float64 `json:"elapsedYears"`
	DailyCost          float64 `json:"dailyCost"`
	IsOverUsefulLife   bool    `json:"isOverUsefulLife"`
	UsefulLifeProgress float64 `json:"usefulLifeProgress"`
	// Applicable is false for disposed assets; the values are still computed.
	Applicable bool `json:"applicable"`
}

// Normalize fills the creation defaults: a fresh ID, the purchase date,
// the category-derived useful life and a non-negative price.
func (a *Asset) Normalize(now time.Time) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.PurchaseDate.IsZero() {
		a.PurchaseDate = now
	}
	if a.UsefulLifeYears <= 0 {
		a.UsefulLifeYears = ResolveUsefulLife(a.Category)
	}
	if a.PurchasePrice < 0 {
		a.PurchasePrice = 0
	}
}

// IsDisposed reports whether the asset has been removed from service
func (a Asset) IsDisposed() bool {
	return a.Disposal != nil
}

// DisposedAt returns the disposal date, if one was recorded
func (a Asset) DisposedAt() (time.Time, bool) {
	if a.Disposal == nil || a.Disposal.Date == nil {
		return time.Time{}, false
	}
	return *a.Disposal.Date, true
}

// MarkDisposed sets the disposal status with the given date
func (a *Asset) MarkDisposed(at time.Time) {
	a.Disposal = &Disposal{Date: &at}
}

// Reinstate returns a disposed asset to active service
func (a *Asset) Reinstate() {
	a.Disposal = nil
}

// ElapsedDays is the number of calendar days from the purchase date to now, never negative
func (a Asset) ElapsedDays(now time.Time) int {
	days := calendarDays(a.PurchaseDate, now)
	if days < 0 {
		return 0
	}
	return days
}

// ElapsedYears is the continuous age of the asset in years
func (a Asset) ElapsedYears(now time.Time) float64 {
	return float64(a.ElapsedDays(now)) / DaysPerYear
}

// DailyCost amortizes the purchase price over the elapsed days.
// It is zero on the purchase day.
func (a Asset) DailyCost(now time.Time) float64 {
	days := a.ElapsedDays(now)
	if days == 0 {
		return 0
	}
	return float64(a.PurchasePrice) / float64(days)
}

// IsOverUsefulLife reports whether the asset has outlived its useful life
func (a Asset) IsOverUsefulLife(now time.Time) bool {
	return a.ElapsedYears(now) > float64(a.usefulLife())
}

// UsefulLifePercent is the uncapped share of the useful life consumed, 100 meaning exactly used up
func (a Asset) UsefulLifePercent(now time.Time) float64 {
	return a.ElapsedYears(now) / float64(a.usefulLife()) * 100
}

// UsefulLifeProgress is the consumed ratio capped at MaxLifeProgress
func (a Asset) UsefulLifeProgress(now time.Time) float64 {
	return math.Min(a.ElapsedYears(now)/float64(a.usefulLife()), MaxLifeProgress)
}

// Metrics computes every derived value at once
func (a Asset) Metrics(now time.Time) Metrics {
	return Metrics{
		ElapsedDays:        a.ElapsedDays(now),
		ElapsedYears:       a.ElapsedYears(now),
		DailyCost:          a.DailyCost(now),
		IsOverUsefulLife:   a.IsOverUsefulLife(now),
		UsefulLifeProgress: a.UsefulLifeProgress(now),
		Applicable:         !a.IsDisposed(),
	}
}

// usefulLife guards the divisions above against records that were never normalized
func (a Asset) usefulLife() int {
	if a.UsefulLifeYears > 0 {
		return a.UsefulLifeYears
	}
	return ResolveUsefulLife(a.Category)
}

// calendarDays counts day boundaries between two instants in the location of to
func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.In(to.Location()).Date()
	ty, tm, td := to.Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
