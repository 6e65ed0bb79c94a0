package handler

import (
	"fmt"
	"net/http"

	"calendar/internal/availability/service"
	apperrors "calendar/pkg/errors"
	httputil "calendar/pkg/http"
	"calendar/pkg/logger"
	"calendar/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) CreateRules(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AvailabilitySetupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CreateRules", err)
		return
	}

	message, err := h.service.CreateRules(r.Context(), &req)
	if err != nil {
		h.writeError(w, "CreateRules", err)
		return
	}

	if err := httputil.WriteMessage(w, http.StatusCreated, message, nil); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateRules", "operation", "WriteMessage", "error", err)
	}
}

func (h *AvailabilityHandler) UpdateRules(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AvailabilitySetupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "UpdateRules", err)
		return
	}

	result, err := h.service.UpdateRules(r.Context(), &req)
	if err != nil {
		h.writeError(w, "UpdateRules", err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	if err := httputil.WriteMessage(w, status, result.Message, nil); err != nil {
		h.log.Error("failed to write response", "handler", "UpdateRules", "operation", "WriteMessage", "error", err)
	}
}

func (h *AvailabilityHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ownerID := ps.ByName("owner_id")

	raw := r.URL.Query().Get("date")
	if raw == "" {
		h.writeError(w, "GetAvailableSlots", apperrors.InvalidInput("date query parameter is required"))
		return
	}
	date, err := model.ParseDate(raw)
	if err != nil {
		h.writeError(w, "GetAvailableSlots", apperrors.InvalidInput(
			fmt.Sprintf("invalid date parameter %q, expected %s", raw, model.DateLayout)))
		return
	}

	free, err := h.service.GetAvailableSlots(r.Context(), ownerID, date)
	if err != nil {
		h.writeError(w, "GetAvailableSlots", err)
		return
	}

	message := "No Available slots found"
	if len(free) > 0 {
		message = fmt.Sprintf("Available slots fetched successfully for owner id: %s", ownerID)
	}
	if err := httputil.WriteMessage(w, http.StatusOK, message, free); err != nil {
		h.log.Error("failed to write response", "handler", "GetAvailableSlots", "operation", "WriteMessage", "error", err)
	}
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/availability/setup", h.CreateRules)
	router.PUT("/api/v1/availability/setup", h.UpdateRules)
	router.GET("/api/v1/availability/:owner_id/slots", h.GetAvailableSlots)
}
