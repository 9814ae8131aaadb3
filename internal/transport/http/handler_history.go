package httptransport

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"limit-holdem/internal/store"
)

// HandHistory is the read side of the hand store.
type HandHistory interface {
	Ping(ctx context.Context) error
	ListRecentHands(ctx context.Context, roomID string, limit, offset int) ([]store.Hand, error)
	GetHand(ctx context.Context, handID string) (*store.Hand, error)
	ListHandActions(ctx context.Context, handID string) ([]store.HandAction, error)
	ListPotAwards(ctx context.Context, handID string) ([]store.PotAward, error)
}

type HistoryHandlers struct {
	history HandHistory
}

// NewHistoryHandlers accepts a nil history; every endpoint then answers
// 503 history_disabled.
func NewHistoryHandlers(history HandHistory) *HistoryHandlers {
	return &HistoryHandlers{history: history}
}

func (h *HistoryHandlers) Hands() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.history == nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "history_disabled")
			return
		}
		metricHandQueries.Add(1)
		limit, offset := ParsePagination(r)
		items, err := h.history.ListRecentHands(r.Context(), r.URL.Query().Get("room_id"), limit, offset)
		if err != nil {
			metricHandQueryErrors.Add(1)
			log.Error().Err(err).Msg("list_hands_failed")
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}

type handDetailResponse struct {
	*store.Hand
	Actions []store.HandAction `json:"actions"`
	Awards  []store.PotAward   `json:"awards"`
}

func (h *HistoryHandlers) Hand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.history == nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "history_disabled")
			return
		}
		metricHandQueries.Add(1)
		handID := chi.URLParam(r, "hand_id")
		hand, err := h.history.GetHand(r.Context(), handID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "hand_not_found")
				return
			}
			h.internalError(w, err, handID)
			return
		}
		actions, err := h.history.ListHandActions(r.Context(), handID)
		if err != nil {
			h.internalError(w, err, handID)
			return
		}
		awards, err := h.history.ListPotAwards(r.Context(), handID)
		if err != nil {
			h.internalError(w, err, handID)
			return
		}
		writeJSON(w, handDetailResponse{Hand: hand, Actions: actions, Awards: awards})
	}
}

func (h *HistoryHandlers) internalError(w http.ResponseWriter, err error, handID string) {
	metricHandQueryErrors.Add(1)
	log.Error().Err(err).Str("hand_id", handID).Msg("get_hand_failed")
	WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
}
