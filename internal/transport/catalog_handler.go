package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"homekeeper/internal/domain"
	"homekeeper/internal/middleware"
	"homekeeper/internal/notify"
)

type RecurrenceOption struct {
	Value domain.Recurrence `json:"value"`
	Label string            `json:"label"`
}

// CategoriesResponse lists the choices offered by the entry forms
type CategoriesResponse struct {
	AssetCategories []domain.CategoryLife `json:"assetCategories"`
	TaskCategories  []domain.TaskCategory `json:"taskCategories"`
	Recurrences     []RecurrenceOption    `json:"recurrences"`
}

// CatalogHandler serves reference data and the reminder schedule
type CatalogHandler struct {
	scheduler notify.Scheduler
	logger    *zap.Logger
}

// NewCatalogHandler accepts a nil scheduler when the notifier keeps no schedule
func NewCatalogHandler(scheduler notify.Scheduler, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{scheduler: scheduler, logger: logger}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.Categories)
	r.Get("/reminders", h.Reminders)
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	recurrences := []RecurrenceOption{}
	for _, rec := range []domain.Recurrence{
		domain.RecurrenceDaily,
		domain.RecurrenceWeekly,
		domain.RecurrenceBiweekly,
		domain.RecurrenceMonthly,
	} {
		recurrences = append(recurrences, RecurrenceOption{Value: rec, Label: rec.Label()})
	}

	middleware.RespondWithJSON(w, http.StatusOK, CategoriesResponse{
		AssetCategories: domain.Catalog(),
		TaskCategories:  domain.TaskCategories(),
		Recurrences:     recurrences,
	})
}

func (h *CatalogHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "reminder schedule not available")
		return
	}

	pending, err := h.scheduler.Pending(r.Context())
	if err != nil {
		h.logger.Error("Failed to list reminders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeInternal, "could not list reminders")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, pending)
}
