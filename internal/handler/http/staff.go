package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type StaffHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Add(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type staffHandlerImpl struct {
	staffService staff.StaffService
}

func NewStaffHandler(staffService staff.StaffService) StaffHandler {
	return &staffHandlerImpl{
		staffService: staffService,
	}
}

// List implements StaffHandler.
func (h *staffHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.staffService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]staff.StaffResponse, len(members))
	for i, m := range members {
		out[i] = staff.ToResponse(m)
	}
	response.JSON(w, out)
}

// Add implements StaffHandler.
func (h *staffHandlerImpl) Add(w http.ResponseWriter, r *http.Request) {
	var req staff.AddStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Info("Failed to decode add staff request", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	created, err := h.staffService.Add(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Added "+created.Name+" to the roster")
}

// Update implements StaffHandler.
func (h *staffHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	oldName, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		response.BadRequest(w, "Invalid staff name in path", nil)
		return
	}

	var req staff.UpdateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Info("Failed to decode update staff request", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.OldName = oldName

	updated, err := h.staffService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Updated "+updated.Name)
}
