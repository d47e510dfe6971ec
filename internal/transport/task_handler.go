package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"homekeeper/internal/domain"
	"homekeeper/internal/middleware"
	"homekeeper/internal/service"
)

// TaskRequest creates a task. Notifications default to on.
type TaskRequest struct {
	Title               string     `json:"title" validate:"required,max=200"`
	Category            string     `json:"category" validate:"max=50"`
	DueDate             *time.Time `json:"dueDate"`
	Recurrence          string     `json:"recurrence" validate:"recurrence"`
	NotificationEnabled *bool      `json:"notificationEnabled"`
}

func (req TaskRequest) toTask() domain.Task {
	recurrence, _ := domain.ParseRecurrence(req.Recurrence)
	enabled := true
	if req.NotificationEnabled != nil {
		enabled = *req.NotificationEnabled
	}
	return domain.Task{
		Title:               req.Title,
		Category:            domain.ParseTaskCategory(req.Category),
		DueDate:             req.DueDate,
		Recurrence:          recurrence,
		NotificationEnabled: enabled,
	}
}

// TaskView adds display fields to a task
type TaskView struct {
	domain.Task
	RecurrenceLabel string `json:"recurrenceLabel,omitempty"`
	IsOverdue       bool   `json:"isOverdue"`
}

func newTaskView(t domain.Task, now time.Time) TaskView {
	return TaskView{Task: t, RecurrenceLabel: t.Recurrence.Label(), IsOverdue: t.IsOverdue(now)}
}

type TaskHandler struct {
	store  service.TaskStore
	now    func() time.Time
	logger *zap.Logger
}

func NewTaskHandler(store service.TaskStore, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{store: store, now: time.Now, logger: logger}
}

func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/delete", h.Delete)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/toggle", h.Toggle)
	})
}

// List supports ?status=pending|completed|overdue
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	var tasks []domain.Task
	switch r.URL.Query().Get("status") {
	case "", "all":
		tasks = h.store.All()
	case "pending":
		tasks = h.store.Pending()
	case "completed":
		tasks = h.store.Completed()
	case "overdue":
		tasks = h.store.Overdue(now)
	default:
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeInvalidRequest, "status must be pending, completed, overdue or all")
		return
	}

	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, newTaskView(t, now))
	}
	middleware.RespondWithJSON(w, http.StatusOK, views)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	task, found := h.store.Get(id)
	if !found {
		middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "task not found")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newTaskView(task, h.now()))
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	task, err := h.store.Add(r.Context(), req.toTask())
	if err != nil {
		respondStoreError(w, err)
		return
	}

	h.logger.Info("Task created",
		zap.String("task_id", task.ID.String()),
		zap.Bool("reminder", task.WantsReminder()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, newTaskView(task, h.now()))
}

func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.store.ToggleComplete(r.Context(), id)
	if !found {
		middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "task not found")
		return
	}
	if err != nil {
		respondStoreError(w, err)
		return
	}

	task, _ := h.store.Get(id)
	middleware.RespondWithJSON(w, http.StatusOK, newTaskView(task, h.now()))
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req IDsRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	n, err := h.store.Delete(r.Context(), req.IDs)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, BatchResponse{Affected: n})
}
