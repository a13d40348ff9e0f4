// Package registry owns the mapping from room code to live room, plus
// the binding from connection id to the room it currently occupies. It is
// the single in-process authority for room existence; per-room state is
// guarded by each room's own lock.
package registry

import (
	"math/rand"
	"strconv"
	"sync"

	"github.com/aniparty/server/internal/domain"
)

const (
	codeMin   = 10000
	codeMax   = 99999
	codeSpace = codeMax - codeMin + 1

	// Collision retries are capped so a saturated code space fails
	// with ErrCodeSpaceExhausted instead of looping forever.
	maxCodeAttempts = 1000
)

// Registry tracks live rooms and connection bindings.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*domain.Room
	bindings map[string]string // connection id -> room code
}

func New() *Registry {
	return &Registry{
		rooms:    make(map[string]*domain.Room),
		bindings: make(map[string]string),
	}
}

// CreateRoom allocates a free room code, creates the room with the
// creator as sole member and host, and binds the connection to it.
func (g *Registry) CreateRoom(connID, nickname string) (*domain.Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, bound := g.bindings[connID]; bound {
		return nil, domain.ErrAlreadyInRoom
	}

	code, err := g.generateCodeLocked()
	if err != nil {
		return nil, err
	}

	room := domain.NewRoom(code, connID, nickname)
	g.rooms[code] = room
	g.bindings[connID] = code
	return room, nil
}

// Lookup returns the room for a code.
func (g *Registry) Lookup(code string) (*domain.Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	room, ok := g.rooms[code]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// Delete removes a room from the registry. Idempotent.
func (g *Registry) Delete(code string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, code)
}

// Bind associates a connection with a room. A connection may occupy at
// most one room at a time.
func (g *Registry) Bind(connID, code string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, bound := g.bindings[connID]; bound {
		return domain.ErrAlreadyInRoom
	}
	g.bindings[connID] = code
	return nil
}

// Resolve returns the room code a connection is bound to, if any.
func (g *Registry) Resolve(connID string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	code, ok := g.bindings[connID]
	return code, ok
}

// Unbind clears a connection's binding. Idempotent.
func (g *Registry) Unbind(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.bindings, connID)
}

// RoomFor resolves the room a connection currently occupies.
func (g *Registry) RoomFor(connID string) (*domain.Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	code, ok := g.bindings[connID]
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	room, ok := g.rooms[code]
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	return room, nil
}

// RoomCount returns the number of live rooms.
func (g *Registry) RoomCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

func (g *Registry) generateCodeLocked() (string, error) {
	if len(g.rooms) >= codeSpace {
		return "", domain.ErrCodeSpaceExhausted
	}
	for i := 0; i < maxCodeAttempts; i++ {
		code := strconv.Itoa(codeMin + rand.Intn(codeSpace))
		if _, taken := g.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", domain.ErrCodeSpaceExhausted
}
