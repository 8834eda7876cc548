package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ShiftHandler interface {
	Status(w http.ResponseWriter, r *http.Request)
	StatusFor(w http.ResponseWriter, r *http.Request)
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	TakeBreak(w http.ResponseWriter, r *http.Request)
	ReturnFromBreak(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	shiftService shift.ShiftService
}

func NewShiftHandler(shiftService shift.ShiftService) ShiftHandler {
	return &shiftHandlerImpl{
		shiftService: shiftService,
	}
}

// Status implements ShiftHandler.
func (h *shiftHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	views, err := h.shiftService.ResolveCurrentStatus(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.JSON(w, views)
}

// StatusFor implements ShiftHandler.
func (h *shiftHandlerImpl) StatusFor(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		response.BadRequest(w, "Invalid staff name in path", nil)
		return
	}
	view, err := h.shiftService.StatusFor(r.Context(), name)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.JSON(w, view)
}

// ClockIn implements ShiftHandler.
func (h *shiftHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.shiftService.ClockIn)
}

// ClockOut implements ShiftHandler.
func (h *shiftHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.shiftService.ClockOut)
}

// TakeBreak implements ShiftHandler.
func (h *shiftHandlerImpl) TakeBreak(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.shiftService.TakeBreak)
}

// ReturnFromBreak implements ShiftHandler.
func (h *shiftHandlerImpl) ReturnFromBreak(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.shiftService.ReturnFromBreak)
}

type transition func(ctx context.Context, req shift.ClockRequest) (shift.ActionResult, error)

func (h *shiftHandlerImpl) act(w http.ResponseWriter, r *http.Request, do transition) {
	var req shift.ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Info("Failed to decode clock request", "path", r.URL.Path, "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := do(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Action(w, result.Message, result.Time, result.BreakDuration)
}
