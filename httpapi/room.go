package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"chat-store/domain"

	"github.com/gorilla/mux"
)

type createUserRequest struct {
	Handle string `json:"handle"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Handle    string    `json:"handle"`
	CreatedAt time.Time `json:"created_at"`
}

type createRoomRequest struct {
	Name string `json:"name"`
}

type roomResponse struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
}

type membershipResponse struct {
	Room   int       `json:"room"`
	UserID string    `json:"user_id"`
	Since  time.Time `json:"since"`
}

type deletionResponse struct {
	DeletedMessages int `json:"deleted_messages"`
}

// roomID extracts the {id} path variable. A non-numeric id is a 400,
// not a 404: the route exists, the argument is malformed.
func (h *Handler) roomID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "room id must be an integer"})
		return 0, false
	}
	return id, true
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var body createUserRequest
	if !h.decode(w, r, &body) {
		return
	}
	user, err := h.rooms.CreateUser(body.Handle)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.rooms.ResolveUser(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var body createRoomRequest
	if !h.decode(w, r, &body) {
		return
	}
	room, err := h.rooms.CreateRoom(body.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.log.Info("Room created", "room", room.ID, "name", room.Name)
	h.writeJSON(w, http.StatusCreated, toRoomResponse(room))
}

func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roomID(w, r)
	if !ok {
		return
	}
	room, err := h.rooms.ResolveRoom(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toRoomResponse(room))
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roomID(w, r)
	if !ok {
		return
	}
	var body addMemberRequest
	if !h.decode(w, r, &body) {
		return
	}
	membership, err := h.rooms.AddMember(id, body.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, membershipResponse{
		Room:   int(membership.Room),
		UserID: membership.UserID,
		Since:  membership.Since,
	})
}

// DeleteRoom runs the cascade. The requester comes from the trusted
// identity header and must be a member of the room.
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roomID(w, r)
	if !ok {
		return
	}
	requester := r.Header.Get(userIDHeader)
	if requester == "" {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing " + userIDHeader + " header"})
		return
	}
	result, err := h.rooms.DeleteRoom(r.Context(), domain.DeleteRoomCommand{
		Room:        id,
		RequestedBy: requester,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, deletionResponse{DeletedMessages: result.DeletedMessages})
}

func toUserResponse(user domain.User) userResponse {
	return userResponse{ID: user.ID, Handle: user.Handle, CreatedAt: user.CreatedAt}
}

func toRoomResponse(room domain.Room) roomResponse {
	return roomResponse{ID: int(room.ID), Name: room.Name, CreatedAt: room.CreatedAt}
}
