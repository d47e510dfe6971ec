package transport

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"homekeeper/internal/csvcodec"
	"homekeeper/internal/domain"
	"homekeeper/internal/middleware"
	"homekeeper/internal/service"
)

// maxUploadBytes bounds CSV imports
const maxUploadBytes = 10 << 20

// AssetRequest is the create/update payload. A zero useful life takes the
// category default; a missing purchase date means today.
type AssetRequest struct {
	Category        string     `json:"category" validate:"max=100"`
	ProductName     string     `json:"productName" validate:"required,max=200"`
	Store           string     `json:"store" validate:"max=200"`
	PurchaseDate    *time.Time `json:"purchaseDate"`
	PurchasePrice   int        `json:"purchasePrice" validate:"gte=0"`
	UsefulLifeYears int        `json:"usefulLifeYears" validate:"gte=0,lte=100"`
	Notes           string     `json:"notes" validate:"max=2000"`
	Disposed        bool       `json:"disposed"`
	DisposalDate    *time.Time `json:"disposalDate"`
}

func (req AssetRequest) toAsset(now time.Time) domain.Asset {
	category := req.Category
	if !domain.IsKnownCategory(category) {
		category = domain.CategoryOther
	}

	a := domain.Asset{
		Category:        category,
		ProductName:     req.ProductName,
		Store:           req.Store,
		PurchasePrice:   req.PurchasePrice,
		UsefulLifeYears: req.UsefulLifeYears,
		Notes:           req.Notes,
	}
	if req.PurchaseDate != nil {
		a.PurchaseDate = *req.PurchaseDate
	}
	if req.Disposed {
		at := now
		if req.DisposalDate != nil {
			at = *req.DisposalDate
		}
		a.MarkDisposed(at)
	}
	return a
}

// AssetView is an asset with its derived metrics
type AssetView struct {
	domain.Asset
	Disposed bool           `json:"disposed"`
	Metrics  domain.Metrics `json:"metrics"`
}

func newAssetView(a domain.Asset, now time.Time) AssetView {
	return AssetView{Asset: a, Disposed: a.IsDisposed(), Metrics: a.Metrics(now)}
}

// ImportResponse reports the outcome of a CSV import
type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// AssetHandler handles HTTP requests for the asset collection
type AssetHandler struct {
	store      service.AssetStore
	dateFormat csvcodec.DateFormat
	now        func() time.Time
	logger     *zap.Logger
}

// NewAssetHandler uses dateFormat for CSV when a request does not name one
func NewAssetHandler(store service.AssetStore, dateFormat csvcodec.DateFormat, logger *zap.Logger) *AssetHandler {
	return &AssetHandler{
		store:      store,
		dateFormat: dateFormat,
		now:        time.Now,
		logger:     logger,
	}
}

func (h *AssetHandler) RegisterRoutes(r chi.Router) {
	r.Route("/assets", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/export", h.Export)
		r.Post("/import", h.Import)
		r.Post("/toggle-disposed", h.ToggleDisposed)
		r.Post("/dispose", h.Dispose)
		r.Post("/delete", h.Delete)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
	})
	r.Get("/dashboard", h.Dashboard)
}

// List supports ?status=active|disposed&sort=<field>&order=asc|desc
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	field, ok := service.ParseSortField(q.Get("sort"))
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeInvalidRequest, "unknown sort field")
		return
	}

	status, ok := service.ParseAssetStatus(q.Get("status"))
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeInvalidRequest, "status must be active, disposed or all")
		return
	}

	now := h.now()
	sorted := h.store.Sorted(now, status, field, service.ParseSortOrder(q.Get("order")))

	views := make([]AssetView, 0, len(sorted))
	for _, a := range sorted {
		views = append(views, newAssetView(a, now))
	}
	middleware.RespondWithJSON(w, http.StatusOK, views)
}

func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	asset, found := h.store.Get(id)
	if !found {
		middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "asset not found")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newAssetView(asset, h.now()))
}

func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AssetRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	now := h.now()
	asset, err := h.store.Add(r.Context(), req.toAsset(now))
	if err != nil {
		respondStoreError(w, err)
		return
	}

	h.logger.Info("Asset created", zap.String("asset_id", asset.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, newAssetView(asset, now))
}

// Update replaces the asset. A disposed asset that is resubmitted as disposed
// without a date keeps its original disposal date.
func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req AssetRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	now := h.now()
	asset := req.toAsset(now)
	asset.ID = id
	if existing, found := h.store.Get(id); found && req.Disposed && req.DisposalDate == nil {
		asset.Disposal = existing.Disposal
		if asset.Disposal == nil {
			asset.MarkDisposed(now)
		}
	}

	found, err := h.store.Update(r.Context(), asset)
	if !found {
		middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "asset not found")
		return
	}
	if err != nil {
		respondStoreError(w, err)
		return
	}

	updated, _ := h.store.Get(id)
	middleware.RespondWithJSON(w, http.StatusOK, newAssetView(updated, now))
}

func (h *AssetHandler) ToggleDisposed(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, "toggle-disposed", h.store.ToggleDisposed)
}

func (h *AssetHandler) Dispose(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, "dispose", h.store.Dispose)
}

func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, "delete", h.store.Delete)
}

func (h *AssetHandler) batch(w http.ResponseWriter, r *http.Request, op string, fn batchFunc) {
	var req IDsRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	n, err := fn(r.Context(), req.IDs)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	h.logger.Info("Asset batch applied", zap.String("op", op), zap.Int("requested", len(req.IDs)), zap.Int("affected", n))
	middleware.RespondWithJSON(w, http.StatusOK, BatchResponse{Affected: n})
}

// Import accepts a multipart upload in the "file" field or the CSV as the raw body
func (h *AssetHandler) Import(w http.ResponseWriter, r *http.Request) {
	format, ok := h.formatParam(w, r)
	if !ok {
		return
	}

	var src io.Reader = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeUnreadableSource, "could not read upload")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeInvalidRequest, "missing file field")
			return
		}
		defer file.Close()
		src = file
	}

	result, err := h.store.ImportCSV(r.Context(), src, format)
	if err != nil {
		h.logger.Warn("CSV import failed", zap.Error(err))
		respondStoreError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ImportResponse{Imported: result.Imported, Skipped: result.Skipped})
}

func (h *AssetHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, ok := h.formatParam(w, r)
	if !ok {
		return
	}

	body := h.store.ExportCSV(format)
	filename := fmt.Sprintf("assets-%s.csv", h.now().Format("20060102"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, body)
}

// DashboardResponse feeds the summary cards and charts
type DashboardResponse struct {
	Summary      service.Summary             `json:"summary"`
	YearlyTotals []service.YearTotal         `json:"yearlyTotals"`
	LifeProgress []service.LifeProgressEntry `json:"lifeProgress"`
}

func (h *AssetHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	middleware.RespondWithJSON(w, http.StatusOK, DashboardResponse{
		Summary:      h.store.Summary(now),
		YearlyTotals: h.store.YearlyTotals(),
		LifeProgress: h.store.LifeProgress(now),
	})
}

func (h *AssetHandler) formatParam(w http.ResponseWriter, r *http.Request) (csvcodec.DateFormat, bool) {
	raw := r.URL.Query().Get("dateFormat")
	if raw == "" {
		return h.dateFormat, true
	}
	format, ok := csvcodec.ParseDateFormat(raw)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeInvalidRequest, "unknown dateFormat")
		return "", false
	}
	return format, true
}
