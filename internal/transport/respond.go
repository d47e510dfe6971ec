package transport

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"homekeeper/internal/middleware"
	"homekeeper/internal/service"
)

// IDsRequest selects records for a batch operation
type IDsRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

// BatchResponse reports how many records a batch operation touched
type BatchResponse struct {
	Affected int `json:"affected"`
}

type batchFunc func(ctx context.Context, ids []uuid.UUID) (int, error)

// decodeRequest answers 400 itself and returns false when the body is unusable
func decodeRequest(w http.ResponseWriter, r *http.Request, v any, logger *zap.Logger) bool {
	err := middleware.DecodeAndValidate(r, v)
	if err == nil {
		return true
	}

	logger.Debug("Request validation failed", zap.String("path", r.URL.Path), zap.Error(err))
	if fieldErrs := middleware.FormatValidationErrors(err); len(fieldErrs) > 0 {
		middleware.RespondWithValidationErrors(w, fieldErrs)
		return false
	}
	middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeInvalidRequest, "invalid request body")
	return false
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeInvalidRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// respondStoreError maps store errors. Write failures leave the change in
// memory, which the message tells the client.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnreadableSource):
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeUnreadableSource, err.Error())
	default:
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodePersistFailed,
			"change applied but could not be saved")
	}
}
