package httptransport

import (
	"encoding/json"
	"net/http"

	"limit-holdem/internal/room"
)

type AdminHandlers struct {
	history HandHistory
	rooms   *room.Manager
}

func NewAdminHandlers(history HandHistory, rooms *room.Manager) *AdminHandlers {
	return &AdminHandlers{history: history, rooms: rooms}
}

// Health reports the hand store as "disabled" when history is off; the game
// itself needs no database.
func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		rooms := len(h.rooms.List())
		if h.history == nil {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "disabled", "rooms": rooms})
			return
		}
		if err := h.history.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down", "rooms": rooms})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up", "rooms": rooms})
	}
}
