// Package httpapi is the thin JSON layer over the engine. It owns no
// business rules: it decodes requests, trusts the authenticated caller
// identity handed over in the X-User-ID header, calls the services,
// and translates structured errors into status codes.
package httpapi

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"chat-store/errors"
	"chat-store/services"
	"chat-store/validation"

	"github.com/gorilla/mux"
)

// userIDHeader carries the authenticated caller identity. Verifying it
// is the job of whatever sits in front of this API.
const userIDHeader = "X-User-ID"

type Handler struct {
	log      *slog.Logger
	messages services.IMessageService
	rooms    services.IRoomService
}

func New(log *slog.Logger, messages services.IMessageService, rooms services.IRoomService) *Handler {
	return &Handler{log: log, messages: messages, rooms: rooms}
}

// SetupRouter configures and returns the HTTP router.
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/users", h.CreateUser).Methods("POST")
	r.HandleFunc("/users/{id}", h.GetUser).Methods("GET")

	r.HandleFunc("/rooms", h.CreateRoom).Methods("POST")
	r.HandleFunc("/rooms/{id}", h.GetRoom).Methods("GET")
	r.HandleFunc("/rooms/{id}", h.DeleteRoom).Methods("DELETE")
	r.HandleFunc("/rooms/{id}/members", h.AddMember).Methods("POST")

	r.HandleFunc("/rooms/{id}/messages", h.ListMessages).Methods("GET")
	r.HandleFunc("/rooms/{id}/messages", h.AppendMessage).Methods("POST")
	r.HandleFunc("/rooms/{id}/messages/search", h.SearchMessages).Methods("GET")

	r.HandleFunc("/healthz", h.Health).Methods("GET")

	return r
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("Response encoding failed", "err", err)
	}
}

// writeError maps the engine's error taxonomy onto status codes.
// Violation sets come back whole so the caller can render every
// problem at once.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var violations *validation.Error
	switch {
	case stderrors.As(err, &violations):
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      "validation failed",
			"violations": violations.Kinds,
		})
	case stderrors.Is(err, errors.ErrRoomNotFound), stderrors.Is(err, errors.ErrUserNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case stderrors.Is(err, errors.ErrForbidden):
		h.writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case stderrors.Is(err, errors.ErrTransactionConflict):
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case stderrors.Is(err, errors.ErrEmptyRoomName):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.log.Error("Request failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, body any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}
