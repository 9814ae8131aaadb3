package room

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limit-holdem/internal/game"
)

// tableWatcher is both the Sender and the Recorder of a running room. The
// room calls it only from its own goroutine, so overlapping calls mean two
// events were being applied at once.
type tableWatcher struct {
	inFlight atomic.Int32
	overlaps atomic.Int32

	mu       sync.Mutex
	latest   map[string]GameStateMessage
	started  int
	finished int
	problems []string
}

func newTableWatcher() *tableWatcher {
	return &tableWatcher{latest: map[string]GameStateMessage{}}
}

func (w *tableWatcher) enter() func() {
	if w.inFlight.Add(1) > 1 {
		w.overlaps.Add(1)
	}
	return func() { w.inFlight.Add(-1) }
}

func (w *tableWatcher) problem(format string, args ...any) {
	w.problems = append(w.problems, fmt.Sprintf(format, args...))
}

func (w *tableWatcher) Send(connID string, msg any) {
	defer w.enter()()
	m, ok := msg.(GameStateMessage)
	if !ok {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	st := m.State
	if st.LegalActions != nil && st.ActivePlayerID != st.YourPlayerID {
		w.problem("hand %d: %s offered actions while %s is to act", st.HandNumber, st.YourPlayerID, st.ActivePlayerID)
	}
	if st.ActivePlayerID != "" {
		i := st.ActivePlayerIndex
		if i < 0 || i >= len(st.Seats) || st.Seats[i].PlayerID != st.ActivePlayerID {
			w.problem("hand %d: active index %d does not hold %s", st.HandNumber, i, st.ActivePlayerID)
		} else if st.Seats[i].Folded || st.Seats[i].AllIn {
			w.problem("hand %d: active seat %d cannot act", st.HandNumber, i)
		}
	}
	w.latest[connID] = m
}

func (w *tableWatcher) HandStarted(context.Context, string, *game.GameState) (string, error) {
	defer w.enter()()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.started++
	return fmt.Sprintf("hand-%d", w.started), nil
}

func (w *tableWatcher) ActionApplied(context.Context, string, int, game.Phase, game.ApplyResult) error {
	defer w.enter()()
	return nil
}

func (w *tableWatcher) HandFinished(_ context.Context, handID string, st *game.GameState, _ *game.ShowdownResult) error {
	defer w.enter()()
	w.mu.Lock()
	defer w.mu.Unlock()
	if total := game.ChipTotal(st); total != st.HandStartChips {
		w.problem("%s: %d chips on the table, hand started with %d", handID, total, st.HandStartChips)
	}
	w.finished++
	return nil
}

// turn returns the legal actions offered to connID in its latest state.
func (w *tableWatcher) turn(connID string) (game.LegalActions, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.latest[connID]
	if !ok || m.State.LegalActions == nil {
		return game.LegalActions{}, false
	}
	return *m.State.LegalActions, true
}

func (w *tableWatcher) handsFinished() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finished
}

func TestConcurrentSubmitsAreSerialized(t *testing.T) {
	const (
		players    = 6
		leavers    = 2
		wantHands  = 8
		leaveAfter = 2
	)
	w := newTableWatcher()
	r := New("busy", Options{Rules: game.DefaultRules(), Sender: w, Recorder: w})
	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)
	defer func() {
		cancel()
		<-r.Done()
	}()

	submit := func(ev Event) {
		sctx, scancel := context.WithTimeout(context.Background(), time.Second)
		defer scancel()
		_ = r.Submit(sctx, ev)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := fmt.Sprintf("c%d", i)
			submit(JoinEvent{ConnID: conn, Name: fmt.Sprintf("p%d", i)})
			for {
				select {
				case <-stop:
					return
				default:
				}
				if i < leavers && w.handsFinished() >= leaveAfter {
					submit(DisconnectEvent{ConnID: conn})
					return
				}
				if la, ok := w.turn(conn); ok {
					typ := game.ActionFold
					switch {
					case la.CanCheck:
						typ = game.ActionCheck
					case la.CanCall:
						typ = game.ActionCall
					}
					submit(ActionEvent{ConnID: conn, Action: game.Action{Type: typ}})
				} else if i%2 == 0 {
					submit(StartGameEvent{ConnID: conn})
				} else {
					submit(NewHandEvent{ConnID: conn})
				}
				time.Sleep(time.Millisecond)
			}
		}(i)
	}

	require.Eventually(t, func() bool {
		return w.handsFinished() >= wantHands
	}, 10*time.Second, 5*time.Millisecond, "table stalled")
	close(stop)
	wg.Wait()

	assert.Zero(t, w.overlaps.Load(), "room handled events concurrently")
	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Empty(t, w.problems)
	assert.GreaterOrEqual(t, w.started, w.finished)
}
