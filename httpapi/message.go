package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"chat-store/domain"
	"chat-store/repositories"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type appendMessageRequest struct {
	Content string `json:"content"`
	Image   string `json:"image"`
}

type messageResponse struct {
	ID        uuid.UUID `json:"id"`
	Room      int       `json:"room"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type messagePageResponse struct {
	Messages []messageResponse `json:"messages"`
	Cursor   *string           `json:"cursor,omitempty"`
}

type searchHitResponse struct {
	ID      uuid.UUID `json:"id"`
	Author  string    `json:"author"`
	Content string    `json:"content"`
}

func (h *Handler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roomID(w, r)
	if !ok {
		return
	}
	sender := r.Header.Get(userIDHeader)
	if sender == "" {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing " + userIDHeader + " header"})
		return
	}
	var body appendMessageRequest
	if !h.decode(w, r, &body) {
		return
	}

	message, err := h.messages.Append(r.Context(), domain.AppendMessageCommand{
		Room:    id,
		UserID:  sender,
		Content: body.Content,
		Image:   domain.ImageRef(body.Image),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toMessageResponse(message))
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roomID(w, r)
	if !ok {
		return
	}
	var cursor *string
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		cursor = &raw
	}
	messages, next, err := h.messages.ListByRoom(domain.GetMessagesCommand{Room: id, Cursor: cursor})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, messagePageResponse{
		Messages: lo.Map(messages, func(message domain.Message, _ int) messageResponse {
			return toMessageResponse(message)
		}),
		Cursor: next,
	})
}

func (h *Handler) SearchMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roomID(w, r)
	if !ok {
		return
	}
	terms := r.URL.Query().Get("q")
	if terms == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter q is required"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	hits, err := h.messages.Search(r.Context(), domain.SearchMessagesCommand{
		Room:  id,
		Terms: terms,
		Limit: limit,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits": lo.Map(hits, func(hit repositories.SearchHit, _ int) searchHitResponse {
			return searchHitResponse{ID: hit.ID, Author: hit.Author, Content: hit.Content}
		}),
	})
}

func toMessageResponse(message domain.Message) messageResponse {
	return messageResponse{
		ID:        message.ID,
		Room:      int(message.Room),
		SenderID:  message.SenderID,
		Content:   message.Content,
		Image:     string(message.Image),
		CreatedAt: message.CreatedAt,
	}
}
