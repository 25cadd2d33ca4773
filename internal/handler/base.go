package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// response is the only shape this API ever returns.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// genericErrorMessage is shown for internal failures; the real cause is only
// logged server-side.
const genericErrorMessage = "An error occurred while processing your request. Please try again later."

type BaseHandler struct {
	Logger *slog.Logger
}

func (h *BaseHandler) writeJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Logger.Error("failed to encode response", "err", err)
	}
}

func (h *BaseHandler) logError(r *http.Request, err error) {
	h.Logger.Error(err.Error(), "method", r.Method, "uri", r.URL.RequestURI())
}

// MethodNotAllowed emits the JSON error shape for any verb the router does
// not accept.
func MethodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(response{Success: false, Message: "Method not allowed"})
	}
}
