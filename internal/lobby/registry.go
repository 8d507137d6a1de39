// internal/lobby/registry.go
package lobby

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Registry is the process-wide mapping from lobby code to Lobby. Lobbies
// are created on first join and deleted once empty; an empty lobby never
// sits in the map.
type Registry struct {
	mu      sync.Mutex
	lobbies map[string]*Lobby
	log     *logrus.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *logrus.Logger) *Registry {
	return &Registry{
		lobbies: make(map[string]*Lobby),
		log:     logger,
	}
}

// GetOrCreate returns the lobby for code, building it with create on first
// use. The second return reports whether a new lobby was created; callers
// wire OnEmpty/broadcast plumbing inside create.
func (r *Registry) GetOrCreate(code string, create func(code string) *Lobby) (*Lobby, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.lobbies[code]; ok {
		return l, false
	}
	l := create(code)
	r.lobbies[code] = l
	r.log.Infof("Registry: created lobby %s", code)
	return l, true
}

// Get retrieves a lobby by code.
func (r *Registry) Get(code string) (*Lobby, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lobbies[code]
	return l, ok
}

// Delete removes a lobby from the registry. Typically invoked via the
// lobby's OnEmpty callback after its last member leaves.
func (r *Registry) Delete(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lobbies[code]; ok {
		delete(r.lobbies, code)
		r.log.Infof("Registry: deleted lobby %s", code)
	}
}

// Len reports the number of active lobbies.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lobbies)
}

// Disconnect removes the connection from every lobby it belongs to. Empty
// lobbies delete themselves through OnEmpty; the iteration works on a
// snapshot so deletions during the sweep are safe.
func (r *Registry) Disconnect(connID uuid.UUID) {
	r.mu.Lock()
	snapshot := make([]*Lobby, 0, len(r.lobbies))
	for _, l := range r.lobbies {
		snapshot = append(snapshot, l)
	}
	r.mu.Unlock()

	for _, l := range snapshot {
		l.RemoveParticipant(connID)
	}
}
