// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/spellrush/spellrush/internal/lobby"
	"github.com/spellrush/spellrush/internal/middleware"
	"github.com/spellrush/spellrush/internal/words"
)

// client is one live WebSocket connection with its ephemeral identity.
type client struct {
	id     uuid.UUID
	out    chan lobby.Event
	cancel func()
	logger *logrus.Logger
}

// send pushes an event onto the out channel without blocking. A full or
// closed channel drops the event; the write pump owns draining.
func (c *client) send(ev lobby.Event) {
	select {
	case c.out <- ev:
	default:
		c.logger.Warnf("conn %s: out channel full, dropped %s event", c.id, ev.Type)
	}
}

// command is the inbound wire envelope. Fields are populated per Type;
// irrelevant ones stay at their zero value.
type command struct {
	Type        string   `json:"type"`
	LobbyCode   string   `json:"lobbyCode"`
	ScreenName  string   `json:"screenName"`
	AvatarSeed  string   `json:"avatarSeed"`
	AvatarStyle string   `json:"avatarStyle"`
	MaxRounds   int      `json:"maxRounds"`
	Seconds     int      `json:"seconds"`
	Words       []string `json:"words"`
	Difficulty  string   `json:"difficulty"`
	WordReveal  bool     `json:"wordReveal"`
	Guess       string   `json:"guess"`
}

// WSHandler upgrades the connection and runs the read pump until the
// client goes away, then sweeps it out of every lobby.
func WSHandler(logger *logrus.Logger, s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"spellrush"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer conn.Close(websocket.StatusInternalError, "handler finished")

		if conn.Subprotocol() != "spellrush" {
			conn.Close(BadSubprotocolError, "client must speak the spellrush subprotocol")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		c := &client{
			id:     uuid.New(),
			out:    make(chan lobby.Event, 16),
			cancel: cancel,
			logger: logger,
		}
		s.addClient(c)
		middleware.LogWebSocketConnect(logger, remoteAddr, r.URL.Path)

		go writePump(ctx, conn, c, logger)
		readPump(ctx, conn, c, s, logger)

		// Implicit disconnect: drop the participant from every lobby it
		// joined, then unregister the socket.
		s.Registry.Disconnect(c.id)
		s.removeClient(c)
		cancel()
		middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, nil)
	}
}

// readPump decodes inbound frames and dispatches commands until the
// connection closes.
func readPump(ctx context.Context, conn *websocket.Conn, c *client, s *Server, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		typ, msg, err := conn.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				logger.Infof("conn %s: websocket closed normally", c.id)
			} else if !strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("conn %s: read error: %v (CloseStatus: %d)", c.id, err, closeStatus)
			}
			return
		}
		if typ != websocket.MessageText {
			logger.Warnf("conn %s: ignoring non-text message type %d", c.id, typ)
			continue
		}

		var cmd command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			logger.Warnf("conn %s: invalid json: %v", c.id, err)
			continue
		}
		s.dispatch(c, cmd)
	}
}

// dispatch routes one command into the target lobby's serialized handlers.
// Commands naming an unknown lobby are dropped; only join_lobby creates.
func (s *Server) dispatch(c *client, cmd command) {
	code := strings.TrimSpace(cmd.LobbyCode)
	if code == "" {
		return
	}

	if cmd.Type == "join_lobby" {
		name := strings.TrimSpace(cmd.ScreenName)
		if name == "" {
			name = fmt.Sprintf("Player_%s", c.id.String()[:4])
		}
		seed := cmd.AvatarSeed
		if seed == "" {
			seed = "default"
		}
		style := cmd.AvatarStyle
		if style == "" {
			style = "pixelArtNeutral"
		}

		lob, _ := s.Registry.GetOrCreate(code, s.newLobby)
		s.joinRoom(code, c)
		lob.Join(&lobby.Participant{
			ID:          c.id,
			Name:        name,
			AvatarSeed:  seed,
			AvatarStyle: style,
		})
		return
	}

	lob, ok := s.Registry.Get(code)
	if !ok {
		return
	}

	switch cmd.Type {
	case "set_rounds":
		lob.SetRounds(c.id, cmd.MaxRounds)
	case "set_round_time":
		lob.SetRoundTime(c.id, cmd.Seconds)
	case "set_custom_words":
		lob.SetCustomWords(c.id, cmd.Words)
	case "set_difficulty":
		tier, _ := words.Parse(cmd.Difficulty)
		lob.SetDifficulty(c.id, tier)
	case "set_word_reveal":
		lob.SetWordReveal(c.id, cmd.WordReveal)
	case "start_game":
		lob.StartGame(c.id)
	case "submit_guess":
		lob.SubmitGuess(c.id, cmd.Guess)
	case "end_game":
		lob.EndGame(c.id)
	default:
		s.Logger.Warnf("conn %s: unknown command type %q", c.id, cmd.Type)
	}
}

// writePump drains the out channel onto the socket and keeps the
// connection alive with periodic pings.
func writePump(ctx context.Context, conn *websocket.Conn, c *client, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.out:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("conn %s: failed to marshal %s event: %v", c.id, ev.Type, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("conn %s: write failed: %v", c.id, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("conn %s: ping failed, assuming disconnect: %v", c.id, err)
				return
			}
		}
	}
}
