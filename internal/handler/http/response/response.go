package response

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope for actions and failures. Queries answer with
// the bare payload instead.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Code    string            `json:"code,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ActionResponse reports a completed clock action.
type ActionResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Time          string `json:"time,omitempty"`
	BreakDuration *int   `json:"breakDuration,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		fallback := Response{
			Success: false,
			Code:    "ENCODING_ERROR",
			Error:   "Failed to encode response",
		}
		_ = json.NewEncoder(w).Encode(fallback)
	}
}

// WriteJSON writes payload as is with statusCode.
func WriteJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	writeJSON(w, statusCode, payload)
}

// JSON writes payload as is with a 200.
func JSON(w http.ResponseWriter, payload interface{}) {
	writeJSON(w, http.StatusOK, payload)
}

// Success responses
func SuccessWithMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
	})
}

func Action(w http.ResponseWriter, message, at string, breakDuration *int) {
	writeJSON(w, http.StatusOK, ActionResponse{
		Success:       true,
		Message:       message,
		Time:          at,
		BreakDuration: breakDuration,
	})
}

// Error responses
func fail(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	writeJSON(w, statusCode, Response{
		Success: false,
		Code:    code,
		Error:   message,
		Details: details,
	})
}

func BadRequest(w http.ResponseWriter, message string, details map[string]string) {
	fail(w, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func ValidationError(w http.ResponseWriter, message string, details map[string]string) {
	fail(w, http.StatusBadRequest, "VALIDATION_ERROR", message, details)
}

// StateConflict is an action that is not legal in the person's current state.
func StateConflict(w http.ResponseWriter, code, message string) {
	fail(w, http.StatusBadRequest, code, message, nil)
}

func NotFound(w http.ResponseWriter, message string) {
	fail(w, http.StatusNotFound, "NOT_FOUND", message, nil)
}

func Conflict(w http.ResponseWriter, message string) {
	fail(w, http.StatusConflict, "CONFLICT", message, nil)
}

func InternalServerError(w http.ResponseWriter, code, message string) {
	fail(w, http.StatusInternalServerError, code, message, nil)
}
