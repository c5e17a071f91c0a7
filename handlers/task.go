package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"task-management-app/domain"
	"task-management-app/services"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"
)

type TaskHandler struct {
	tasks  *services.TaskService
	logger *log.Logger
	tracer trace.Tracer
}

func NewTaskHandler(s *services.TaskService, logger *log.Logger, t trace.Tracer) *TaskHandler {
	return &TaskHandler{tasks: s, logger: logger, tracer: t}
}

func (h TaskHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TasksHandler.GetAll")
	defer span.End()

	tasks, err := h.tasks.List(ctx, OwnerFrom(ctx))
	if err != nil {
		writeErrorResp(err, w, h.logger)
		return
	}
	writeResp(tasks, http.StatusOK, w)
}

func (h TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TasksHandler.Create")
	defer span.End()

	req := &domain.TaskDraft{}
	if err := readReq(req, r, w); err != nil {
		return
	}

	task, err := h.tasks.Create(ctx, OwnerFrom(ctx), *req)
	if err != nil {
		writeErrorResp(err, w, h.logger)
		return
	}
	writeResp(task, http.StatusCreated, w)
}

func (h TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TasksHandler.Update")
	defer span.End()

	req := &domain.TaskPatch{}
	if err := readReq(req, r, w); err != nil {
		return
	}

	task, err := h.tasks.Update(ctx, OwnerFrom(ctx), mux.Vars(r)["id"], *req)
	if err != nil {
		writeErrorResp(err, w, h.logger)
		return
	}
	writeResp(task, http.StatusOK, w)
}

func (h TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TasksHandler.Delete")
	defer span.End()

	if err := h.tasks.Delete(ctx, OwnerFrom(ctx), mux.Vars(r)["id"]); err != nil {
		writeErrorResp(err, w, h.logger)
		return
	}
	writeResp(messageResp{Message: "Task deleted successfully"}, http.StatusOK, w)
}

// Reorder takes {"tasks":[{"id":..,"order":..}]} and answers with the whole
// freshly sorted list.
func (h TaskHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TasksHandler.Reorder")
	defer span.End()

	req := &struct {
		Tasks json.RawMessage `json:"tasks"`
	}{}
	if err := readReq(req, r, w); err != nil {
		return
	}

	raw := bytes.TrimSpace(req.Tasks)
	if len(raw) == 0 || raw[0] != '[' {
		writeErrorResp(domain.ErrTasksMustBeArray(), w, h.logger)
		return
	}
	var pairs []domain.OrderPair
	if err := json.Unmarshal(raw, &pairs); err != nil {
		writeErrorResp(domain.ErrInvalidRequestBody(), w, h.logger)
		return
	}

	tasks, err := h.tasks.Reorder(ctx, OwnerFrom(ctx), pairs)
	if err != nil {
		writeErrorResp(err, w, h.logger)
		return
	}
	writeResp(tasks, http.StatusOK, w)
}
