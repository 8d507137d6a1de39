// internal/lobby/events.go
package lobby

import "github.com/google/uuid"

// EventType is an enum-like type for outbound lobby events.
type EventType string

const (
	EventLobbyUsers   EventType = "lobby_users"
	EventGameStarted  EventType = "game_started"
	EventCorrectGuess EventType = "correct_guess"
	EventGameEnded    EventType = "game_ended"
	EventGameOver     EventType = "game_over"
)

// Event is the envelope relayed by the gateway to clients. Data holds one
// of the payload structs below depending on Type.
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// BroadcastFunc sends an event to every member of the lobby's room.
type BroadcastFunc func(ev Event)

// UnicastFunc sends an event to a single connection.
type UnicastFunc func(connID uuid.UUID, ev Event)

// UserInfo is one member entry inside a LobbyUsers snapshot.
type UserInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	AvatarSeed  string    `json:"avatarSeed"`
	AvatarStyle string    `json:"avatarStyle"`
	Score       int       `json:"score"`
}

// LobbyUsers is the full membership snapshot, broadcast after every
// membership or round-count change.
type LobbyUsers struct {
	Users     []UserInfo `json:"users"`
	HostID    uuid.UUID  `json:"hostId"`
	MaxRounds int        `json:"maxRounds"`
}

// GameStarted announces a new round to the lobby.
type GameStarted struct {
	Word       string `json:"word"`
	Round      int    `json:"round"`
	RoundTime  int    `json:"roundTime"`
	WordReveal bool   `json:"wordReveal"`
}

// CorrectGuess is the private acknowledgment sent to a guesser.
type CorrectGuess struct {
	Name string `json:"name"`
}

// GameEnded announces the end of a single round.
type GameEnded struct {
	CorrectGuesser string `json:"correctGuesser"`
	Word           string `json:"word"`
	Definition     string `json:"definition"`
	IsCustom       bool   `json:"isCustom"`
}

// TestedWord is one entry in the post-game summary.
type TestedWord struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
}

// GameOver carries the post-game summary. TestedWords is empty when the
// game ran on a custom word list.
type GameOver struct {
	TestedWords  []TestedWord `json:"testedWords"`
	IsCustomMode bool         `json:"isCustomMode"`
}

// GameSummary is handed to the OnGameOver callback for external consumers
// (e.g. the history queue). It is not sent to clients.
type GameSummary struct {
	LobbyCode  string         `json:"lobbyCode"`
	Rounds     int            `json:"rounds"`
	Words      []TestedWord   `json:"words"`
	Scores     map[string]int `json:"scores"`
	FinishedAt int64          `json:"finishedAt"`
}
