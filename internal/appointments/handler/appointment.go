package handler

import (
	"net/http"

	"calendar/internal/appointments/service"
	httputil "calendar/pkg/http"
	"calendar/pkg/logger"
	"calendar/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
	}
}

// Book answers 201 for a new appointment and 200 when the idempotency key was already used.
func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookAppointmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Book", err)
		return
	}

	result, err := h.service.Book(r.Context(), r.Header.Get(httputil.HeaderIdempotencyKey), &req)
	if err != nil {
		h.writeError(w, "Book", err)
		return
	}

	status := http.StatusOK
	if result.NewlyCreated {
		status = http.StatusCreated
	}
	if err := httputil.WriteMessage(w, status, result.Message, result); err != nil {
		h.log.Error("failed to write response", "handler", "Book", "operation", "WriteMessage", "error", err)
	}
}

func (h *AppointmentHandler) GetUpcoming(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetUpcoming", err)
		return
	}

	upcoming, total, err := h.service.GetUpcoming(r.Context(), ps.ByName("owner_id"), limit, offset)
	if err != nil {
		h.writeError(w, "GetUpcoming", err)
		return
	}

	if err := httputil.WritePaginated(w, upcoming, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetUpcoming", "operation", "WritePaginated", "error", err)
	}
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments/book", h.Book)
	router.GET("/api/v1/appointments/owner/:owner_id/upcoming", h.GetUpcoming)
}
