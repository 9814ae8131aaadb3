package room

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"limit-holdem/internal/game"
)

const maxRoomIDLength = 64

// Manager creates rooms on demand and runs each on its own goroutine. Rooms
// share nothing but the Options they were created with. A room that empties
// in the lobby is stopped and forgotten; the next join recreates it.
type Manager struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options

	mu     sync.Mutex
	rooms  map[string]*Room
	closed bool
	wg     sync.WaitGroup
}

func NewManager(ctx context.Context, opts Options) *Manager {
	ctx, cancel := context.WithCancel(ctx)
	return &Manager{
		ctx:    ctx,
		cancel: cancel,
		opts:   opts,
		rooms:  map[string]*Room{},
	}
}

// GetOrCreate returns the room with id, starting it if needed. It fails with
// ErrTooManyRooms once Options.MaxRooms rooms are running.
func (m *Manager) GetOrCreate(id string) (*Room, error) {
	if id == "" || utf8.RuneCountInString(id) > maxRoomIDLength {
		return nil, fmt.Errorf("room id %q: %w", id, game.ErrInvalidMessage)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrRoomClosed
	}
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	if m.opts.MaxRooms > 0 && len(m.rooms) >= m.opts.MaxRooms {
		return nil, fmt.Errorf("room %q: %w", id, ErrTooManyRooms)
	}
	r := New(id, m.opts)
	r.release = func() { m.remove(r) }
	m.rooms[id] = r
	metricRoomsActive.Add(1)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer metricRoomsActive.Add(-1)
		r.Run(m.ctx)
	}()
	log.Info().Str("room_id", id).Msg("room_created")
	return r, nil
}

func (m *Manager) remove(r *Room) {
	m.mu.Lock()
	if m.rooms[r.id] == r {
		delete(m.rooms, r.id)
	}
	m.mu.Unlock()
}

func (m *Manager) Get(id string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	return r, ok
}

// List describes every room, ordered by id.
func (m *Manager) List() []Info {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.Unlock()

	out := make([]Info, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Close stops every room and waits for their goroutines to exit.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cancel()
	m.wg.Wait()
}
