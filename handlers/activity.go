package handlers

import (
	"net/http"
	"strconv"

	"task-management-app/services"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/trace"
)

type ActivityHandler struct {
	activity *services.ActivityService
	logger   *log.Logger
	tracer   trace.Tracer
}

func NewActivityHandler(s *services.ActivityService, logger *log.Logger, t trace.Tracer) *ActivityHandler {
	return &ActivityHandler{activity: s, logger: logger, tracer: t}
}

// GetAll lists the caller's history, newest first. ?limit= caps the count.
func (h ActivityHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ActivityHandler.GetAll")
	defer span.End()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := h.activity.List(ctx, OwnerFrom(ctx), limit)
	if err != nil {
		writeErrorResp(err, w, h.logger)
		return
	}
	writeResp(activities, http.StatusOK, w)
}
