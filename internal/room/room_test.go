package room

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limit-holdem/internal/game"
)

type sentMessage struct {
	connID string
	msg    any
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (s *recordingSender) Send(connID string, msg any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{connID: connID, msg: msg})
}

func (s *recordingSender) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}

func (s *recordingSender) to(connID string) []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []any{}
	for _, m := range s.sent {
		if m.connID == connID {
			out = append(out, m.msg)
		}
	}
	return out
}

func messagesOf[T any](s *recordingSender, connID string) []T {
	out := []T{}
	for _, m := range s.to(connID) {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func lastOf[T any](t *testing.T, s *recordingSender, connID string) T {
	t.Helper()
	msgs := messagesOf[T](s, connID)
	require.NotEmpty(t, msgs, "no %T sent to %s", *new(T), connID)
	return msgs[len(msgs)-1]
}

// Heads-up deck: alice (dealer) gets As Ad, bob gets 7c 2d, board Kh 9s 4c 3h Jd.
const headsUpDeck = "7c As 2d Ad 5s Kh 9s 4c 6s 3h 8h Jd"

func newTestRoom(t *testing.T, deck string) (*Room, *recordingSender) {
	t.Helper()
	sender := &recordingSender{}
	opts := Options{Rules: game.DefaultRules(), Sender: sender}
	if deck != "" {
		opts.NewDeck = func() *game.Deck { return game.NewStackedDeck(game.MustParseCards(deck)) }
	}
	return New("test", opts), sender
}

func seatTwo(t *testing.T, r *Room, s *recordingSender) (alice, bob WelcomeMessage) {
	t.Helper()
	ctx := context.Background()
	r.handle(ctx, JoinEvent{ConnID: "c1", Name: "alice"})
	r.handle(ctx, JoinEvent{ConnID: "c2", Name: "bob"})
	return lastOf[WelcomeMessage](t, s, "c1"), lastOf[WelcomeMessage](t, s, "c2")
}

func act(r *Room, connID string, typ game.ActionType) {
	r.handle(context.Background(), ActionEvent{ConnID: connID, Action: game.Action{Type: typ}})
}

func TestJoinSendsWelcomeAndBroadcasts(t *testing.T) {
	r, s := newTestRoom(t, "")
	alice, bob := seatTwo(t, r, s)

	assert.Equal(t, ProtocolVersion, alice.ProtocolVersion)
	assert.Equal(t, "test", alice.RoomID)
	assert.NotEmpty(t, alice.PlayerID)
	assert.NotEmpty(t, alice.Token)
	assert.NotEqual(t, alice.Token, bob.Token)
	assert.False(t, alice.Reconnected)

	joined := messagesOf[PlayerJoinedMessage](s, "c1")
	require.Len(t, joined, 2)
	assert.Equal(t, "bob", joined[1].Name)
	assert.Equal(t, 1, joined[1].SeatIndex)

	state := lastOf[GameStateMessage](t, s, "c2")
	assert.Equal(t, "lobby", state.State.Phase)
	assert.Len(t, state.State.Seats, 2)
	assert.Equal(t, bob.PlayerID, state.State.YourPlayerID)

	info := r.Info()
	assert.Equal(t, 2, info.Players)
	assert.Equal(t, 9, info.MaxPlayers)
}

func TestJoinErrorGoesOnlyToRequester(t *testing.T) {
	r, s := newTestRoom(t, "")
	seatTwo(t, r, s)
	s.reset()

	r.handle(context.Background(), JoinEvent{ConnID: "c3", Name: "Alice"})

	errs := messagesOf[ErrorMessage](s, "c3")
	require.Len(t, errs, 1)
	assert.Equal(t, "name_taken", errs[0].Code)
	assert.Empty(t, s.to("c1"))
	assert.Empty(t, s.to("c2"))
}

func TestSecondJoinOnSameConnectionIsRejected(t *testing.T) {
	r, s := newTestRoom(t, "")
	seatTwo(t, r, s)

	r.handle(context.Background(), JoinEvent{ConnID: "c1", Name: "carol"})

	assert.Equal(t, "invalid_message", lastOf[ErrorMessage](t, s, "c1").Code)
	assert.Equal(t, 2, r.Info().Players)
}

func TestStartGameScopesHoleCards(t *testing.T) {
	r, s := newTestRoom(t, headsUpDeck)
	alice, bob := seatTwo(t, r, s)

	r.handle(context.Background(), StartGameEvent{ConnID: "c1"})

	aliceView := lastOf[GameStateMessage](t, s, "c1").State
	bobView := lastOf[GameStateMessage](t, s, "c2").State
	assert.Equal(t, "preflop", aliceView.Phase)
	assert.Equal(t, []string{"As", "Ad"}, aliceView.HoleCards)
	assert.Equal(t, []string{"7c", "2d"}, bobView.HoleCards)

	// Heads-up the dealer posts the small blind and acts first.
	assert.Equal(t, alice.PlayerID, aliceView.ActivePlayerID)
	require.NotNil(t, aliceView.LegalActions)
	assert.True(t, aliceView.LegalActions.CanCall)
	assert.Equal(t, int64(5), aliceView.LegalActions.CallAmount)
	if bobView.LegalActions != nil {
		assert.False(t, bobView.LegalActions.Any())
	}
	assert.Equal(t, bob.PlayerID, bobView.YourPlayerID)

	snap := r.Snapshot()
	assert.Equal(t, int64(15), snap.PotTotal)
	assert.Equal(t, 1, snap.HandNumber)
}

func TestStartGameOutsideLobbyIsRejected(t *testing.T) {
	r, s := newTestRoom(t, headsUpDeck)
	seatTwo(t, r, s)
	r.handle(context.Background(), StartGameEvent{ConnID: "c1"})

	r.handle(context.Background(), StartGameEvent{ConnID: "c2"})

	assert.Equal(t, "game_already_started", lastOf[ErrorMessage](t, s, "c2").Code)
	assert.Equal(t, 1, r.Snapshot().HandNumber)
}

func TestStartGameNeedsTwoPlayers(t *testing.T) {
	r, s := newTestRoom(t, "")
	r.handle(context.Background(), JoinEvent{ConnID: "c1", Name: "alice"})

	r.handle(context.Background(), StartGameEvent{ConnID: "c1"})

	assert.Equal(t, "not_enough_players", lastOf[ErrorMessage](t, s, "c1").Code)
	assert.Equal(t, "lobby", r.Snapshot().Phase)
}

func TestUnseatedConnectionCannotAct(t *testing.T) {
	r, s := newTestRoom(t, headsUpDeck)
	seatTwo(t, r, s)
	r.handle(context.Background(), StartGameEvent{ConnID: "c1"})

	act(r, "stranger", game.ActionCall)

	assert.Equal(t, "unknown_player", lastOf[ErrorMessage](t, s, "stranger").Code)
}

func TestOutOfTurnActionIsRejected(t *testing.T) {
	r, s := newTestRoom(t, headsUpDeck)
	seatTwo(t, r, s)
	r.handle(context.Background(), StartGameEvent{ConnID: "c1"})
	before := r.Snapshot()

	act(r, "c2", game.ActionCheck)

	assert.Equal(t, "not_your_turn", lastOf[ErrorMessage](t, s, "c2").Code)
	assert.Equal(t, before, r.Snapshot())
	assert.Empty(t, messagesOf[ErrorMessage](s, "c1"))
}

func TestActionIsBroadcast(t *testing.T) {
	r, s := newTestRoom(t, headsUpDeck)
	alice, _ := seatTwo(t, r, s)
	r.handle(context.Background(), StartGameEvent{ConnID: "c1"})

	act(r, "c1", game.ActionCall)

	for _, conn := range []string{"c1", "c2"} {
		taken := lastOf[ActionTakenMessage](t, s, conn)
		assert.Equal(t, alice.PlayerID, taken.PlayerID)
		assert.Equal(t, "call", taken.Action)
		assert.Equal(t, int64(5), taken.Amount)
		assert.Equal(t, "preflop", taken.Phase)
		assert.False(t, taken.Auto)
	}
	assert.Equal(t, int64(20), r.Snapshot().PotTotal)
}

func TestCheckedDownHandReachesShowdown(t *testing.T) {
	r, s := newTestRoom(t, headsUpDeck)
	alice, bob := seatTwo(t, r, s)
	r.handle(context.Background(), StartGameEvent{ConnID: "c1"})

	act(r, "c1", game.ActionCall)
	act(r, "c2", game.ActionCheck)
	// Postflop the big blind acts first heads-up.
	for _, street := range []string{"flop", "turn", "river"} {
		require.Equal(t, street, r.Snapshot().Phase)
		act(r, "c2", game.ActionCheck)
		act(r, "c1", game.ActionCheck)
	}

	show := lastOf[ShowdownMessage](t, s, "c2")
	assert.False(t, show.FoldWin)
	assert.Equal(t, []string{"Kh", "9s", "4c", "3h", "Jd"}, show.CommunityCards)
	require.Len(t, show.Results, 2)
	assert.Equal(t, alice.PlayerID, show.Results[0].PlayerID)
	assert.Equal(t, "Pair", show.Results[0].Category)
	assert.Equal(t, []string{"As", "Ad"}, show.Results[0].HoleCards)
	assert.Equal(t, int64(20), show.Results[0].Won)
	assert.Equal(t, bob.PlayerID, show.Results[1].PlayerID)

	done := lastOf[HandCompleteMessage](t, s, "c1")
	assert.Equal(t, alice.PlayerID, done.WinnerID)
	assert.Equal(t, "alice", done.WinnerName)
	assert.Equal(t, "Pair", done.HandCategory)
	assert.Equal(t, int64(20), done.PotAmount)

	snap := r.Snapshot()
	assert.Equal(t, "showdown", snap.Phase)
	require.Len(t, snap.Seats, 2)
	assert.Equal(t, int64(1010), snap.Seats[0].Chips)
	assert.Equal(t, int64(990), snap.Seats[1].Chips)
	assert.Equal(t, int64(2000), snap.Seats[0].Chips+snap.Seats[1].Chips)
}

func TestFoldWinIsUncontested(t *testing.T) {
	r, s := newTestRoom(t, headsUpDeck)
	_, bob := seatTwo(t, r, s)
	r.handle(context.Background(), StartGameEvent{ConnID: "c1"})

	act(r, "c1", game.ActionFold)

	show := lastOf[ShowdownMessage](t, s, "c1")
	assert.True(t, show.FoldWin)
	require.Len(t, show.Results, 1)
	assert.Empty(t, show.Results[0].HoleCards)

	done := lastOf[HandCompleteMessage](t, s, "c1")
	assert.Equal(t, bob.PlayerID, done.WinnerID)
	assert.Equal(t, "Uncontested", done.HandCategory)
	assert.Equal(t, int64(15), done.PotAmount)
}

func TestNewHandMovesButton(t *testing.T) {
	r, s := newTestRoom(t, headsUpDeck)
	_, bob := seatTwo(t, r, s)
	r.handle(context.Background(), StartGameEvent{ConnID: "c1"})
	act(r, "c1", game.ActionFold)

	r.handle(context.Background(), NewHandEvent{ConnID: "c2"})

	snap := r.Snapshot()
	assert.Equal(t, 2, snap.HandNumber)
	assert.Equal(t, "preflop", snap.Phase)
	assert.Equal(t, 1, snap.DealerIndex)
	assert.Equal(t, bob.PlayerID, snap.ActivePlayerID)
}

func TestNewHandDuringHandIsRejected(t *testing.T) {
	r, s := newTestRoom(t, headsUpDeck)
	seatTwo(t, r, s)
	r.handle(context.Background(), StartGameEvent{ConnID: "c1"})

	r.handle(context.Background(), NewHandEvent{ConnID: "c2"})

	assert.Equal(t, "hand_in_progress", lastOf[ErrorMessage](t, s, "c2").Code)
}

func TestAllInPreflopRunsOutBoard(t *testing.T) {
	r, s := newTestRoom(t, headsUpDeck)
	seatTwo(t, r, s)
	r.handle(context.Background(), StartGameEvent{ConnID: "c1"})

	act(r, "c1", game.ActionAllIn)
	act(r, "c2", game.ActionCall)

	show := lastOf[ShowdownMessage](t, s, "c2")
	assert.Len(t, show.CommunityCards, 5)

	// Bob busts and is removed, leaving alice alone in the lobby.
	left := lastOf[PlayerLeftMessage](t, s, "c2")
	assert.Equal(t, "busted", left.Reason)
	snap := r.Snapshot()
	assert.Equal(t, "lobby", snap.Phase)
	require.Len(t, snap.Seats, 1)
	assert.Equal(t, int64(2000), snap.Seats[0].Chips)
}

func TestDisconnectOfActivePlayerFolds(t *testing.T) {
	r, s := newTestRoom(t, headsUpDeck)
	alice, bob := seatTwo(t, r, s)
	r.handle(context.Background(), StartGameEvent{ConnID: "c1"})
	s.reset()

	r.handle(context.Background(), DisconnectEvent{ConnID: "c1"})

	taken := lastOf[ActionTakenMessage](t, s, "c2")
	assert.Equal(t, alice.PlayerID, taken.PlayerID)
	assert.Equal(t, "fold", taken.Action)
	assert.True(t, taken.Auto)

	done := lastOf[HandCompleteMessage](t, s, "c2")
	assert.Equal(t, bob.PlayerID, done.WinnerID)

	left := lastOf[PlayerLeftMessage](t, s, "c2")
	assert.Equal(t, alice.PlayerID, left.PlayerID)
	assert.Equal(t, "disconnected", left.Reason)

	assert.Empty(t, s.to("c1"))
	snap := r.Snapshot()
	assert.Equal(t, "lobby", snap.Phase)
	require.Len(t, snap.Seats, 1)
	assert.Equal(t, int64(1005), snap.Seats[0].Chips)
}

func TestDisconnectInLobbyRemovesSeat(t *testing.T) {
	r, s := newTestRoom(t, "")
	alice, _ := seatTwo(t, r, s)

	r.handle(context.Background(), DisconnectEvent{ConnID: "c1"})

	left := lastOf[PlayerLeftMessage](t, s, "c2")
	assert.Equal(t, alice.PlayerID, left.PlayerID)
	assert.Equal(t, 1, r.Info().Players)
}

func TestDisconnectWithoutSeatIsIgnored(t *testing.T) {
	r, s := newTestRoom(t, "")
	seatTwo(t, r, s)
	s.reset()

	r.handle(context.Background(), DisconnectEvent{ConnID: "nobody"})

	assert.Empty(t, s.to("c1"))
	assert.Equal(t, 2, r.Info().Players)
}

func TestReconnectWithTokenKeepsSeat(t *testing.T) {
	r, s := newTestRoom(t, headsUpDeck)
	alice, _ := seatTwo(t, r, s)
	r.handle(context.Background(), StartGameEvent{ConnID: "c1"})

	r.handle(context.Background(), JoinEvent{ConnID: "c1b", Token: alice.Token})

	welcome := lastOf[WelcomeMessage](t, s, "c1b")
	assert.True(t, welcome.Reconnected)
	assert.Equal(t, alice.PlayerID, welcome.PlayerID)
	view := lastOf[GameStateMessage](t, s, "c1b").State
	assert.Equal(t, []string{"As", "Ad"}, view.HoleCards)

	// The old connection no longer owns the seat.
	r.handle(context.Background(), DisconnectEvent{ConnID: "c1"})
	assert.Equal(t, "preflop", r.Snapshot().Phase)

	act(r, "c1b", game.ActionCall)
	assert.Equal(t, "call", lastOf[ActionTakenMessage](t, s, "c2").Action)
}

func TestReconnectWithUnknownToken(t *testing.T) {
	r, s := newTestRoom(t, "")
	seatTwo(t, r, s)

	r.handle(context.Background(), JoinEvent{ConnID: "c9", Token: "nope"})

	assert.Equal(t, "unknown_token", lastOf[ErrorMessage](t, s, "c9").Code)
}

type fakeRecorder struct {
	started  int
	actions  []game.ApplyResult
	finished []*game.ShowdownResult
	failAll  bool
}

func (f *fakeRecorder) HandStarted(_ context.Context, roomID string, st *game.GameState) (string, error) {
	f.started++
	if f.failAll {
		return "", errors.New("db down")
	}
	return "hand-1", nil
}

func (f *fakeRecorder) ActionApplied(_ context.Context, handID string, seq int, street game.Phase, res game.ApplyResult) error {
	f.actions = append(f.actions, res)
	return nil
}

func (f *fakeRecorder) HandFinished(_ context.Context, handID string, st *game.GameState, res *game.ShowdownResult) error {
	f.finished = append(f.finished, res)
	return nil
}

func TestRecorderSeesWholeHand(t *testing.T) {
	rec := &fakeRecorder{}
	sender := &recordingSender{}
	r := New("test", Options{
		Rules:    game.DefaultRules(),
		Sender:   sender,
		Recorder: rec,
		NewDeck:  func() *game.Deck { return game.NewStackedDeck(game.MustParseCards(headsUpDeck)) },
	})
	seatTwo(t, r, sender)
	r.handle(context.Background(), StartGameEvent{ConnID: "c1"})
	act(r, "c1", game.ActionRaise)
	act(r, "c2", game.ActionFold)

	assert.Equal(t, 1, rec.started)
	require.Len(t, rec.actions, 2)
	assert.Equal(t, game.ActionRaise, rec.actions[0].Type)
	assert.Equal(t, int64(15), rec.actions[0].Paid)
	require.Len(t, rec.finished, 1)
	assert.True(t, rec.finished[0].FoldWin)
}

func TestRecorderFailureDoesNotStopHand(t *testing.T) {
	rec := &fakeRecorder{failAll: true}
	sender := &recordingSender{}
	r := New("test", Options{Rules: game.DefaultRules(), Sender: sender, Recorder: rec})
	seatTwo(t, r, sender)

	r.handle(context.Background(), StartGameEvent{ConnID: "c1"})
	act(r, "c1", game.ActionFold)

	assert.Empty(t, messagesOf[ErrorMessage](sender, "c1"))
	assert.Empty(t, rec.actions)
	assert.Empty(t, rec.finished)
	assert.Equal(t, "showdown", r.Snapshot().Phase)
}

func TestRankerFailureVoidsHand(t *testing.T) {
	sender := &recordingSender{}
	r := New("test", Options{
		Rules:   game.DefaultRules(),
		Sender:  sender,
		NewDeck: func() *game.Deck { return game.NewStackedDeck(game.MustParseCards(headsUpDeck)) },
		Ranker: game.RankerFunc(func(context.Context, []game.Card) (game.HandRank, error) {
			return game.HandRank{}, errors.New("ranker offline")
		}),
	})
	seatTwo(t, r, sender)
	r.handle(context.Background(), StartGameEvent{ConnID: "c1"})

	act(r, "c1", game.ActionAllIn)
	act(r, "c2", game.ActionCall)

	assert.Equal(t, "hand_voided", lastOf[ErrorMessage](t, sender, "c2").Code)
	assert.Empty(t, messagesOf[ShowdownMessage](sender, "c2"))
	snap := r.Snapshot()
	require.Len(t, snap.Seats, 2)
	assert.Equal(t, int64(1000), snap.Seats[0].Chips)
	assert.Equal(t, int64(1000), snap.Seats[1].Chips)
}

func TestSubmitAfterStopFails(t *testing.T) {
	r, _ := newTestRoom(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)
	cancel()
	<-r.Done()

	err := r.Submit(context.Background(), JoinEvent{ConnID: "c1", Name: "alice"})
	assert.ErrorIs(t, err, ErrRoomClosed)
}
