package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"limit-holdem/internal/game/viewmodel"
	"limit-holdem/internal/room"
)

type RoomHandlers struct {
	rooms *room.Manager
}

func NewRoomHandlers(rooms *room.Manager) *RoomHandlers {
	return &RoomHandlers{rooms: rooms}
}

func (h *RoomHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := h.rooms.List()
		writeJSON(w, map[string]any{"items": items, "count": len(items)})
	}
}

type roomStateResponse struct {
	room.Info
	State viewmodel.PublicStateView `json:"state"`
}

// State returns the public view only; hole cards never leave the room
// except to their owner over the websocket.
func (h *RoomHandlers) State() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, ok := h.rooms.Get(chi.URLParam(r, "room_id"))
		if !ok {
			WriteHTTPError(w, http.StatusNotFound, "room_not_found")
			return
		}
		writeJSON(w, roomStateResponse{Info: rm.Info(), State: rm.Snapshot()})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
