// internal/handlers/server.go
package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/spellrush/spellrush/internal/history"
	"github.com/spellrush/spellrush/internal/lobby"
	"github.com/spellrush/spellrush/internal/words"
)

// Server is the connection gateway: it owns the lobby registry, the word
// source, and the room fan-out that relays lobby events back to sockets.
type Server struct {
	Registry    *lobby.Registry
	Words       *words.Source
	Logger      *logrus.Logger
	History     *history.Publisher // nil when no queue is configured
	SettleDelay time.Duration

	mu      sync.Mutex
	clients map[uuid.UUID]*client
	rooms   map[string]map[uuid.UUID]*client
}

// NewServer wires a gateway around the given registry and word source.
func NewServer(reg *lobby.Registry, ws *words.Source, logger *logrus.Logger) *Server {
	return &Server{
		Registry:    reg,
		Words:       ws,
		Logger:      logger,
		SettleDelay: lobby.DefaultSettleDelay,
		clients:     make(map[uuid.UUID]*client),
		rooms:       make(map[string]map[uuid.UUID]*client),
	}
}

// newLobby builds a lobby bound to this gateway's broadcast plumbing.
// Passed to Registry.GetOrCreate on first join.
func (s *Server) newLobby(code string) *lobby.Lobby {
	l := lobby.New(code, s.Words, s.Logger)
	l.SettleDelay = s.SettleDelay
	l.BroadcastFn = func(ev lobby.Event) { s.broadcast(code, ev) }
	l.UnicastFn = func(connID uuid.UUID, ev lobby.Event) { s.unicast(connID, ev) }
	l.OnEmpty = func(code string) {
		s.Registry.Delete(code)
		s.dropRoom(code)
	}
	if s.History != nil {
		l.OnGameOver = func(summary lobby.GameSummary) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.History.Publish(ctx, summary); err != nil {
				s.Logger.Warnf("history publish for lobby %s failed: %v", summary.LobbyCode, err)
			}
		}
	}
	return l
}

func (s *Server) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.id] = c
}

// removeClient drops the connection from the client table and every room.
func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c.id)
	for code, room := range s.rooms {
		delete(room, c.id)
		if len(room) == 0 {
			delete(s.rooms, code)
		}
	}
}

// joinRoom subscribes the connection to a lobby's broadcasts. Joining
// before lobby.Join runs means the joiner sees its own snapshot.
func (s *Server) joinRoom(code string, c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[code]
	if !ok {
		room = make(map[uuid.UUID]*client)
		s.rooms[code] = room
	}
	room[c.id] = c
}

func (s *Server) dropRoom(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

// broadcast fans an event out to every connection in a lobby's room. Sends
// are non-blocking channel pushes, so per-lobby emission order is
// preserved through each connection's out queue.
func (s *Server) broadcast(code string, ev lobby.Event) {
	s.mu.Lock()
	targets := make([]*client, 0, len(s.rooms[code]))
	for _, c := range s.rooms[code] {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		c.send(ev)
	}
}

// unicast delivers an event to a single connection.
func (s *Server) unicast(connID uuid.UUID, ev lobby.Event) {
	s.mu.Lock()
	c, ok := s.clients[connID]
	s.mu.Unlock()
	if ok {
		c.send(ev)
	}
}
