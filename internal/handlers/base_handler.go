package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Response is the uniform envelope for every API reply
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondSuccess sends a success envelope
func (h *BaseHandler) RespondSuccess(w http.ResponseWriter, status int, message string, data any) {
	h.RespondJSON(w, status, Response{Success: true, Message: message, Data: data})
}

// RespondError sends an error envelope
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, Response{Success: false, Message: message})
}
