package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"limit-holdem/internal/game"
	"limit-holdem/internal/game/viewmodel"
	"limit-holdem/internal/handrank"
	"limit-holdem/internal/store"
)

var (
	ErrRoomClosed   = errors.New("room_closed")
	ErrTooManyRooms = errors.New("too_many_rooms")
)

// Sender delivers one message to one connection. Implementations must not
// block the room for long; the websocket transport queues per connection.
type Sender interface {
	Send(connID string, msg any)
}

type Options struct {
	Rules    game.Rules
	Sender   Sender
	Ranker   game.Ranker
	Recorder Recorder
	// NewDeck supplies the deck for each hand; nil shuffles a fresh one.
	NewDeck       func() *game.Deck
	InboxSize     int
	RecordTimeout time.Duration
	// MaxRooms caps how many rooms a Manager runs at once; zero is unlimited.
	MaxRooms      int
}

type Info struct {
	ID         string `json:"id"`
	Phase      string `json:"phase"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
	HandNumber int    `json:"hand_number"`
}

// Room owns one GameState. Every event goes through the inbox and is applied
// by the Run goroutine alone, so state is never touched concurrently.
type Room struct {
	id            string
	state         *game.GameState
	sender        Sender
	ranker        game.Ranker
	recorder      Recorder
	newDeck       func() *game.Deck
	recordTimeout time.Duration
	maxPlayers    int
	logger        zerolog.Logger

	inbox    chan Event
	stopping chan struct{}
	done     chan struct{}
	snapshot atomic.Pointer[viewmodel.PublicStateView]

	// mu orders Submit against stop: once closed is set nothing else can
	// reach the inbox.
	mu     sync.RWMutex
	closed bool

	// release, when set, is called from Run once the room sits empty in the
	// lobby; Run then stops.
	release func()

	handID    string
	actionSeq int
}

func New(id string, opts Options) *Room {
	if opts.Ranker == nil {
		opts.Ranker = handrank.New()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = 64
	}
	if opts.RecordTimeout <= 0 {
		opts.RecordTimeout = 2 * time.Second
	}
	r := &Room{
		id:            id,
		state:         game.NewGameState(opts.Rules),
		sender:        opts.Sender,
		ranker:        opts.Ranker,
		recorder:      opts.Recorder,
		newDeck:       opts.NewDeck,
		recordTimeout: opts.RecordTimeout,
		maxPlayers:    opts.Rules.MaxPlayers,
		logger:        log.With().Str("room_id", id).Logger(),
		inbox:         make(chan Event, opts.InboxSize),
		stopping:      make(chan struct{}),
		done:          make(chan struct{}),
	}
	r.publish()
	return r
}

func (r *Room) ID() string {
	return r.id
}

// Submit queues ev in arrival order. It blocks while the inbox is full.
func (r *Room) Submit(ctx context.Context, ev Event) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrRoomClosed
	}
	select {
	case r.inbox <- ev:
		return nil
	case <-r.stopping:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes events until ctx is cancelled or, for managed rooms, the last
// seat leaves the lobby.
func (r *Room) Run(ctx context.Context) {
	defer close(r.done)
	r.logger.Info().Msg("room_started")
	for {
		select {
		case <-ctx.Done():
			r.stop()
			r.logger.Info().Msg("room_stopped")
			return
		case ev := <-r.inbox:
			r.handle(ctx, ev)
			if r.release != nil && r.idle() {
				r.release()
				r.stop()
				r.logger.Info().Msg("room_reaped")
				return
			}
		}
	}
}

func (r *Room) idle() bool {
	return r.state.Phase == game.PhaseLobby && len(r.state.Players) == 0
}

// stop refuses every event still queued. Joins waiting on a result learn the
// room is gone and can retry elsewhere.
func (r *Room) stop() {
	close(r.stopping)
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	for {
		select {
		case ev := <-r.inbox:
			if e, ok := ev.(JoinEvent); ok {
				e.reply(ErrRoomClosed)
			}
		default:
			return
		}
	}
}

// Done is closed once Run returns.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Snapshot returns the public view as of the last processed event.
func (r *Room) Snapshot() viewmodel.PublicStateView {
	return *r.snapshot.Load()
}

func (r *Room) Info() Info {
	v := r.snapshot.Load()
	return Info{
		ID:         r.id,
		Phase:      v.Phase,
		Players:    len(v.Seats),
		MaxPlayers: r.maxPlayers,
		HandNumber: v.HandNumber,
	}
}

func (r *Room) handle(ctx context.Context, ev Event) {
	defer r.publish()

	var err error
	switch e := ev.(type) {
	case JoinEvent:
		err = r.join(e)
		e.reply(err)
	case StartGameEvent:
		err = r.startGame(ctx, e)
	case ActionEvent:
		err = r.action(ctx, e)
	case NewHandEvent:
		err = r.newHand(ctx, e)
	case DisconnectEvent:
		r.disconnect(ctx, e)
		return
	default:
		r.logger.Warn().Str("event", fmt.Sprintf("%T", ev)).Msg("unknown_event")
		return
	}
	if err != nil {
		r.logger.Debug().Err(err).Str("conn_id", ev.connID()).Str("event", fmt.Sprintf("%T", ev)).Msg("event_rejected")
		r.send(ev.connID(), errorMessage(err))
		return
	}
	r.broadcastState()
}

func (r *Room) join(e JoinEvent) error {
	if p := r.state.PlayerByConn(e.ConnID); p != nil {
		return fmt.Errorf("connection already seated as %s: %w", p.Name, game.ErrInvalidMessage)
	}

	if e.Token != "" {
		p, err := game.Reconnect(r.state, e.Token, e.ConnID)
		if err != nil {
			return err
		}
		r.send(e.ConnID, WelcomeMessage{
			Type:            "welcome",
			ProtocolVersion: ProtocolVersion,
			RoomID:          r.id,
			PlayerID:        p.ID,
			Token:           p.Token,
			Reconnected:     true,
		})
		r.broadcast(PlayerJoinedMessage{
			Type:            "player_joined",
			ProtocolVersion: ProtocolVersion,
			PlayerID:        p.ID,
			Name:            p.Name,
			SeatIndex:       r.state.PlayerIndex(p.ID),
			Reconnected:     true,
		})
		r.logger.Info().Str("player_id", p.ID).Msg("player_reconnected")
		return nil
	}

	p, err := game.Join(r.state, game.JoinRequest{
		PlayerID: store.NewID(),
		Name:     e.Name,
		Token:    uuid.NewString(),
		ConnID:   e.ConnID,
	})
	if err != nil {
		return err
	}
	r.send(e.ConnID, WelcomeMessage{
		Type:            "welcome",
		ProtocolVersion: ProtocolVersion,
		RoomID:          r.id,
		PlayerID:        p.ID,
		Token:           p.Token,
	})
	r.broadcast(PlayerJoinedMessage{
		Type:            "player_joined",
		ProtocolVersion: ProtocolVersion,
		PlayerID:        p.ID,
		Name:            p.Name,
		SeatIndex:       r.state.PlayerIndex(p.ID),
	})
	r.logger.Info().Str("player_id", p.ID).Str("name", p.Name).Int("seats", len(r.state.Players)).Msg("player_joined")
	return nil
}

func (r *Room) startGame(ctx context.Context, e StartGameEvent) error {
	if r.state.PlayerByConn(e.ConnID) == nil {
		return game.ErrUnknownPlayer
	}
	if r.state.Phase != game.PhaseLobby {
		return game.ErrGameStarted
	}
	return r.startHand(ctx)
}

func (r *Room) newHand(ctx context.Context, e NewHandEvent) error {
	if r.state.PlayerByConn(e.ConnID) == nil {
		return game.ErrUnknownPlayer
	}
	return r.startHand(ctx)
}

func (r *Room) startHand(ctx context.Context) error {
	var deck *game.Deck
	if r.newDeck != nil {
		deck = r.newDeck()
	}
	if err := game.StartHand(r.state, deck); err != nil {
		return err
	}
	metricHandsStarted.Add(1)
	r.actionSeq = 0

	rctx, cancel := r.recordContext(ctx)
	handID, err := r.recorder.HandStarted(rctx, r.id, r.state)
	cancel()
	if err != nil {
		r.logger.Error().Err(err).Int("hand_no", r.state.HandNumber).Msg("record_hand_start_failed")
	}
	r.handID = handID

	r.logger.Info().
		Int("hand_no", r.state.HandNumber).
		Str("hand_id", handID).
		Int("dealer", r.state.DealerIndex).
		Int("players", len(r.state.Players)).
		Msg("hand_start")

	// Short stacks can be all-in from the blinds alone.
	r.progress(ctx)
	return nil
}

func (r *Room) action(ctx context.Context, e ActionEvent) error {
	p := r.state.PlayerByConn(e.ConnID)
	if p == nil {
		return game.ErrUnknownPlayer
	}
	street := r.state.Phase
	res, err := game.ApplyAction(r.state, p.ID, e.Action)
	if err != nil {
		metricActionsRejected.Add(1)
		return err
	}
	metricActionsApplied.Add(1)
	r.actionApplied(ctx, p, street, res, false)
	r.progress(ctx)
	return nil
}

func (r *Room) disconnect(ctx context.Context, e DisconnectEvent) {
	street := r.state.Phase
	res, err := game.Disconnect(r.state, e.ConnID)
	if err != nil {
		// Connection never held a seat, or was already replaced by a reconnect.
		r.logger.Debug().Str("conn_id", e.ConnID).Msg("disconnect_without_seat")
		return
	}
	p := res.Player
	switch {
	case res.Removed:
		r.broadcast(PlayerLeftMessage{
			Type:            "player_left",
			ProtocolVersion: ProtocolVersion,
			PlayerID:        p.ID,
			Name:            p.Name,
			Reason:          "disconnected",
		})
		r.logger.Info().Str("player_id", p.ID).Msg("seat_removed")
	case res.Folded:
		metricActionsApplied.Add(1)
		r.actionApplied(ctx, p, street, game.ApplyResult{PlayerID: p.ID, Type: game.ActionFold}, true)
		r.logger.Info().Str("player_id", p.ID).Bool("was_active", res.WasActive).Msg("disconnect_fold")
		r.progress(ctx)
	default:
		r.logger.Info().Str("player_id", p.ID).Msg("player_disconnected")
	}
	r.broadcastState()
}

func (r *Room) actionApplied(ctx context.Context, p *game.Player, street game.Phase, res game.ApplyResult, auto bool) {
	r.actionSeq++
	r.broadcast(ActionTakenMessage{
		Type:            "action_taken",
		ProtocolVersion: ProtocolVersion,
		PlayerID:        p.ID,
		Name:            p.Name,
		Action:          string(res.Type),
		Amount:          res.Paid,
		Phase:           string(street),
		Auto:            auto,
	})
	r.logger.Info().
		Int("hand_no", r.state.HandNumber).
		Str("player_id", p.ID).
		Str("action", string(res.Type)).
		Int64("amount", res.Paid).
		Int64("pot", r.state.PotTotal()).
		Msg("action_applied")

	if r.handID == "" {
		return
	}
	rctx, cancel := r.recordContext(ctx)
	defer cancel()
	if err := r.recorder.ActionApplied(rctx, r.handID, r.actionSeq, street, res); err != nil {
		r.logger.Error().Err(err).Str("hand_id", r.handID).Msg("record_action_failed")
	}
}

// progress closes finished rounds: it deals the next street, or settles the
// hand once betting cannot continue.
func (r *Room) progress(ctx context.Context) {
	st := r.state
	for st.Phase.Betting() && game.IsRoundComplete(st) {
		if game.BettingClosed(st) {
			r.showdown(ctx)
			return
		}
		if err := game.AdvanceStreet(st); err != nil {
			r.logger.Error().Err(err).Int("hand_no", st.HandNumber).Msg("advance_street_failed")
			r.voidHand(ctx, err)
			return
		}
		r.logger.Debug().Int("hand_no", st.HandNumber).Str("phase", string(st.Phase)).Msg("street_advanced")
		if st.Phase == game.PhaseShowdown {
			r.showdown(ctx)
			return
		}
	}
}

// showdown runs inside the actor, so no other event is applied until the
// ranking finishes. Cancellation of the room does not abort it.
func (r *Room) showdown(ctx context.Context) {
	st := r.state
	res, err := game.Showdown(context.WithoutCancel(ctx), st, r.ranker)
	if err != nil {
		r.logger.Error().Err(err).Int("hand_no", st.HandNumber).Msg("showdown_failed")
		r.voidHand(ctx, err)
		return
	}
	metricShowdowns.Add(1)
	r.broadcast(showdownMessage(st, res))
	r.broadcast(handCompleteMessage(st, res))

	winner, _ := res.Winner()
	r.logger.Info().
		Int("hand_no", st.HandNumber).
		Bool("fold_win", res.FoldWin).
		Str("winner_id", winner.PlayerID).
		Str("category", winner.Category).
		Int64("pot", res.PotTotal).
		Msg("showdown")

	if r.handID != "" {
		rctx, cancel := r.recordContext(ctx)
		if err := r.recorder.HandFinished(rctx, r.handID, st, res); err != nil {
			r.logger.Error().Err(err).Str("hand_id", r.handID).Msg("record_hand_end_failed")
		}
		cancel()
	}
	r.finishHand()
}

// voidHand refunds every contribution when a hand cannot be settled.
func (r *Room) voidHand(ctx context.Context, cause error) {
	metricHandsVoided.Add(1)
	refunds := game.VoidHand(r.state)
	r.logger.Warn().Err(cause).Int("hand_no", r.state.HandNumber).Interface("refunds", refunds).Msg("hand_voided")
	r.broadcast(errorMessage(fmt.Errorf("%w: %v", game.ErrHandVoided, cause)))
	if r.handID != "" {
		rctx, cancel := r.recordContext(ctx)
		if err := r.recorder.HandFinished(rctx, r.handID, r.state, &game.ShowdownResult{Winnings: refunds}); err != nil {
			r.logger.Error().Err(err).Str("hand_id", r.handID).Msg("record_hand_end_failed")
		}
		cancel()
	}
	r.finishHand()
}

func (r *Room) finishHand() {
	st := r.state
	if total := game.ChipTotal(st); total != st.HandStartChips {
		r.logger.Error().
			Int("hand_no", st.HandNumber).
			Int64("expected", st.HandStartChips).
			Int64("actual", total).
			Msg("chip_conservation_violation")
	}

	removed := game.FinishHand(st)
	for _, p := range removed {
		reason := "disconnected"
		if p.Chips <= 0 {
			reason = "busted"
		}
		msg := PlayerLeftMessage{
			Type:            "player_left",
			ProtocolVersion: ProtocolVersion,
			PlayerID:        p.ID,
			Name:            p.Name,
			Reason:          reason,
		}
		if p.Connected && p.ConnID != "" {
			r.send(p.ConnID, msg)
		}
		r.broadcast(msg)
		r.logger.Info().Str("player_id", p.ID).Str("reason", reason).Msg("seat_removed")
	}
	r.logger.Info().Int("hand_no", st.HandNumber).Int("players", len(st.Players)).Str("phase", string(st.Phase)).Msg("hand_end")
	r.handID = ""
}

func (r *Room) recordContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), r.recordTimeout)
}

func (r *Room) send(connID string, msg any) {
	if r.sender == nil || connID == "" {
		return
	}
	r.sender.Send(connID, msg)
}

func (r *Room) broadcast(msg any) {
	for _, p := range r.state.Players {
		if p.Connected {
			r.send(p.ConnID, msg)
		}
	}
}

// broadcastState sends each seated connection its own view of the table.
func (r *Room) broadcastState() {
	for _, p := range r.state.Players {
		if !p.Connected {
			continue
		}
		r.send(p.ConnID, GameStateMessage{
			Type:            "game_state",
			ProtocolVersion: ProtocolVersion,
			RoomID:          r.id,
			State:           viewmodel.BuildPlayerState(r.state, p.ID),
		})
	}
}

func (r *Room) publish() {
	v := viewmodel.BuildPublicState(r.state)
	r.snapshot.Store(&v)
}
