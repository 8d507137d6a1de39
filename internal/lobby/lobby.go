// internal/lobby/lobby.go
package lobby

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/spellrush/spellrush/internal/words"
)

// Game configuration bounds. Out-of-range values are clamped, not rejected.
const (
	MinRounds      = 1
	MaxRoundsLimit = 100
	MinRoundTime   = 5
	MaxRoundTime   = 300
	MaxCustomWords = 100

	DefaultMaxRounds = 10
	DefaultRoundTime = 20

	PointsPerCorrectGuess = 10
)

// DefaultSettleDelay is the pause between a round ending (word revealed)
// and the next round starting.
const DefaultSettleDelay = 3 * time.Second

// state tracks the lobby's position in the game lifecycle.
type state int

const (
	stateLobby state = iota
	stateRoundActive
	stateRoundEnding
	stateGameOver
)

// Participant is one connection that has joined the lobby.
type Participant struct {
	ID          uuid.UUID
	Name        string
	AvatarSeed  string
	AvatarStyle string

	Score            int
	CorrectThisRound bool
}

// WordSource yields round words and definitions by difficulty tier.
type WordSource interface {
	PickRandom(tier words.Difficulty) (string, bool)
	Definition(word string, tier words.Difficulty) string
}

// Lobby is an ephemeral game session identified by a short client-chosen
// code. All command handlers serialize on mu; timers re-acquire it and
// verify they are still current before acting, so a cancelled timer never
// mutates state.
type Lobby struct {
	Code   string
	HostID uuid.UUID

	// Users is kept in join order; order decides host fallback only.
	Users []*Participant

	CurrentWord       string
	Round             int
	MaxRounds         int
	RoundTimeSeconds  int
	Difficulty        words.Difficulty
	CustomWords       []string
	TestedWords       []TestedWord
	WordRevealEnabled bool

	SettleDelay time.Duration

	Words       WordSource
	BroadcastFn BroadcastFunc
	UnicastFn   UnicastFunc

	// OnEmpty is invoked after the last member leaves, typically wired to
	// Registry.Delete by the code that created the lobby.
	OnEmpty func(code string)

	// OnGameOver receives a summary of every finished game, for external
	// consumers like the history queue. Called on its own goroutine.
	OnGameOver func(summary GameSummary)

	log *logrus.Logger

	mu    sync.Mutex
	st    state
	timer *time.Timer

	// tick is the unit behind RoundTimeSeconds, one second in production.
	// Tests shrink it so timer paths run in milliseconds.
	tick time.Duration
}

// New creates a lobby with default settings. The first Join sets the host.
func New(code string, ws WordSource, logger *logrus.Logger) *Lobby {
	return &Lobby{
		Code:              code,
		MaxRounds:         DefaultMaxRounds,
		RoundTimeSeconds:  DefaultRoundTime,
		Difficulty:        words.All,
		WordRevealEnabled: true,
		SettleDelay:       DefaultSettleDelay,
		Words:             ws,
		BroadcastFn:       func(Event) {},
		UnicastFn:         func(uuid.UUID, Event) {},
		log:               logger,
		tick:              time.Second,
	}
}

// Join appends a participant and broadcasts the membership snapshot. The
// lobby's first member becomes host.
func (l *Lobby) Join(p *Participant) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p.Score = 0
	p.CorrectThisRound = false
	l.Users = append(l.Users, p)
	if len(l.Users) == 1 {
		l.HostID = p.ID
	}
	l.log.Infof("Lobby %s: %s (%s) joined, %d member(s)", l.Code, p.Name, p.ID, len(l.Users))
	l.broadcastUsersUnsafe()
}

// SetRounds stores a host-configured round count, clamped to [1,100]. The
// stored value is kept even while a custom word list overrides it, so
// clearing the list restores it.
func (l *Lobby) SetRounds(requesterID uuid.UUID, n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isHostUnsafe(requesterID) {
		return
	}
	l.MaxRounds = clamp(n, MinRounds, MaxRoundsLimit)
	l.broadcastUsersUnsafe()
}

// SetRoundTime stores the per-round duration, clamped to [5,300] seconds.
// Takes effect from the next round.
func (l *Lobby) SetRoundTime(requesterID uuid.UUID, seconds int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isHostUnsafe(requesterID) {
		return
	}
	l.RoundTimeSeconds = clamp(seconds, MinRoundTime, MaxRoundTime)
}

// SetCustomWords replaces the custom word list: entries are trimmed,
// lower-cased, empties dropped, and the list truncated to 100. A non-empty
// list overrides the numeric round count with its length.
func (l *Lobby) SetCustomWords(requesterID uuid.UUID, list []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isHostUnsafe(requesterID) {
		return
	}
	cleaned := make([]string, 0, len(list))
	for _, w := range list {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		cleaned = append(cleaned, w)
		if len(cleaned) == MaxCustomWords {
			break
		}
	}
	l.CustomWords = cleaned
	l.broadcastUsersUnsafe()
}

// SetDifficulty stores the tier; it has no effect while a custom word list
// is active.
func (l *Lobby) SetDifficulty(requesterID uuid.UUID, tier words.Difficulty) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isHostUnsafe(requesterID) {
		return
	}
	l.Difficulty = tier
}

// SetWordReveal toggles progressive letter reveal for future rounds.
func (l *Lobby) SetWordReveal(requesterID uuid.UUID, enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isHostUnsafe(requesterID) {
		return
	}
	l.WordRevealEnabled = enabled
}

// StartGame resets scores and history and kicks off round one. Host-only;
// ignored while a game is already running.
func (l *Lobby) StartGame(requesterID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isHostUnsafe(requesterID) {
		return
	}
	if l.st == stateRoundActive || l.st == stateRoundEnding {
		return
	}
	for _, p := range l.Users {
		p.Score = 0
		p.CorrectThisRound = false
	}
	l.Round = 0
	l.TestedWords = nil
	l.st = stateLobby
	l.log.Infof("Lobby %s: game started by host %s", l.Code, requesterID)
	l.startNewRoundUnsafe()
}

// SubmitGuess checks a guess against the active word. A participant scores
// at most once per round; when every member has guessed correctly the
// round short-circuits without waiting for the timer.
func (l *Lobby) SubmitGuess(participantID uuid.UUID, guess string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.st != stateRoundActive || l.CurrentWord == "" {
		return
	}
	p := l.findUnsafe(participantID)
	if p == nil || p.CorrectThisRound {
		return
	}
	if !strings.EqualFold(strings.TrimSpace(guess), l.CurrentWord) {
		return
	}

	p.Score += PointsPerCorrectGuess
	p.CorrectThisRound = true
	l.UnicastFn(p.ID, Event{Type: EventCorrectGuess, Data: CorrectGuess{Name: p.Name}})
	l.broadcastUsersUnsafe()

	for _, u := range l.Users {
		if !u.CorrectThisRound {
			return
		}
	}
	l.log.Infof("Lobby %s: all %d member(s) guessed %q, ending round early", l.Code, len(l.Users), l.CurrentWord)
	l.stopTimerUnsafe()
	l.endRoundUnsafe()
}

// EndGame forces a transition to game over, cancelling any pending timer
// and emitting the tested-word summary. Host-only.
func (l *Lobby) EndGame(requesterID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isHostUnsafe(requesterID) {
		return
	}
	l.stopTimerUnsafe()
	l.CurrentWord = ""
	l.gameOverUnsafe()
	l.Round = 0
}

// RemoveParticipant drops a member, reassigning the host role to the
// earliest remaining joiner when needed. Returns true if the participant
// was a member. An in-progress round is left running for the others; an
// empty lobby stops its timer and fires OnEmpty.
func (l *Lobby) RemoveParticipant(participantID uuid.UUID) bool {
	l.mu.Lock()

	idx := -1
	for i, p := range l.Users {
		if p.ID == participantID {
			idx = i
			break
		}
	}
	if idx == -1 {
		l.mu.Unlock()
		return false
	}

	removed := l.Users[idx]
	l.Users = append(l.Users[:idx], l.Users[idx+1:]...)
	l.log.Infof("Lobby %s: %s (%s) left, %d member(s) remain", l.Code, removed.Name, removed.ID, len(l.Users))

	if len(l.Users) == 0 {
		l.stopTimerUnsafe()
		l.st = stateLobby
		l.CurrentWord = ""
		onEmpty := l.OnEmpty
		l.mu.Unlock()
		if onEmpty != nil {
			onEmpty(l.Code)
		}
		return true
	}

	if l.HostID == participantID {
		l.HostID = l.Users[0].ID
		l.log.Infof("Lobby %s: host left, %s (%s) is the new host", l.Code, l.Users[0].Name, l.HostID)
	}
	l.broadcastUsersUnsafe()
	l.mu.Unlock()
	return true
}

// MemberCount reports the current member count.
func (l *Lobby) MemberCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Users)
}

// EffectiveMaxRounds is the custom list length when one is set, else the
// configured numeric round count.
func (l *Lobby) EffectiveMaxRounds() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.effectiveMaxRoundsUnsafe()
}

func (l *Lobby) effectiveMaxRoundsUnsafe() int {
	if len(l.CustomWords) > 0 {
		return len(l.CustomWords)
	}
	return l.MaxRounds
}

func (l *Lobby) isHostUnsafe(id uuid.UUID) bool {
	// Non-host commands are dropped silently: an authorization gate, not
	// a reported failure.
	return id == l.HostID && l.findUnsafe(id) != nil
}

func (l *Lobby) findUnsafe(id uuid.UUID) *Participant {
	for _, p := range l.Users {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (l *Lobby) broadcastUsersUnsafe() {
	users := make([]UserInfo, 0, len(l.Users))
	for _, p := range l.Users {
		users = append(users, UserInfo{
			ID:          p.ID,
			Name:        p.Name,
			AvatarSeed:  p.AvatarSeed,
			AvatarStyle: p.AvatarStyle,
			Score:       p.Score,
		})
	}
	l.BroadcastFn(Event{Type: EventLobbyUsers, Data: LobbyUsers{
		Users:     users,
		HostID:    l.HostID,
		MaxRounds: l.effectiveMaxRoundsUnsafe(),
	}})
}

// startNewRoundUnsafe runs the round-start procedure. Assumes lock held.
func (l *Lobby) startNewRoundUnsafe() {
	l.stopTimerUnsafe()

	if l.Round >= l.effectiveMaxRoundsUnsafe() {
		l.CurrentWord = ""
		l.gameOverUnsafe()
		return
	}

	var word string
	if len(l.CustomWords) > 0 {
		word = l.CustomWords[l.Round]
	} else {
		picked, ok := l.Words.PickRandom(l.Difficulty)
		if !ok {
			l.log.Warnf("Lobby %s: no words available for difficulty %s", l.Code, l.Difficulty)
			l.CurrentWord = ""
			l.gameOverUnsafe()
			return
		}
		word = picked
	}

	l.TestedWords = append(l.TestedWords, TestedWord{Word: word})
	l.CurrentWord = word
	l.Round++
	for _, p := range l.Users {
		p.CorrectThisRound = false
	}
	l.st = stateRoundActive

	l.broadcastUsersUnsafe()
	l.BroadcastFn(Event{Type: EventGameStarted, Data: GameStarted{
		Word:       word,
		Round:      l.Round,
		RoundTime:  l.RoundTimeSeconds,
		WordReveal: l.WordRevealEnabled,
	}})
	l.log.Infof("Lobby %s: round %d/%d started, word %q, %ds", l.Code, l.Round, l.effectiveMaxRoundsUnsafe(), word, l.RoundTimeSeconds)

	l.armTimerUnsafe(time.Duration(l.RoundTimeSeconds)*l.tick, stateRoundActive, func() {
		l.endRoundUnsafe()
	})
}

// endRoundUnsafe runs the round-end procedure. Assumes lock held and a
// round in progress.
func (l *Lobby) endRoundUnsafe() {
	word := l.CurrentWord
	isCustom := len(l.CustomWords) > 0

	winner := ""
	for _, p := range l.Users {
		if p.CorrectThisRound {
			winner = p.Name
			break
		}
	}

	definition := ""
	if !isCustom {
		definition = l.Words.Definition(word, l.Difficulty)
	}
	if n := len(l.TestedWords); n > 0 {
		l.TestedWords[n-1].Definition = definition
	}

	l.BroadcastFn(Event{Type: EventGameEnded, Data: GameEnded{
		CorrectGuesser: winner,
		Word:           word,
		Definition:     definition,
		IsCustom:       isCustom,
	}})

	l.CurrentWord = ""
	l.st = stateRoundEnding
	l.armTimerUnsafe(l.SettleDelay, stateRoundEnding, func() {
		l.startNewRoundUnsafe()
	})
}

// gameOverUnsafe emits the summary and marks the lobby finished. Assumes
// lock held and CurrentWord already cleared.
func (l *Lobby) gameOverUnsafe() {
	isCustom := len(l.CustomWords) > 0
	tested := []TestedWord{}
	if !isCustom {
		tested = append(tested, l.TestedWords...)
	}
	l.st = stateGameOver
	l.BroadcastFn(Event{Type: EventGameOver, Data: GameOver{
		TestedWords:  tested,
		IsCustomMode: isCustom,
	}})
	l.log.Infof("Lobby %s: game over after %d round(s)", l.Code, l.Round)

	if l.OnGameOver != nil {
		scores := make(map[string]int, len(l.Users))
		for _, p := range l.Users {
			scores[p.Name] = p.Score
		}
		summary := GameSummary{
			LobbyCode:  l.Code,
			Rounds:     l.Round,
			Words:      tested,
			Scores:     scores,
			FinishedAt: time.Now().Unix(),
		}
		go l.OnGameOver(summary)
	}
}

// armTimerUnsafe schedules the lobby's single outstanding timer, replacing
// any previous one. The callback only runs if the firing timer is still
// current and the lobby is still in the state it was armed for.
func (l *Lobby) armTimerUnsafe(d time.Duration, armedFor state, fn func()) {
	l.stopTimerUnsafe()
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.timer != t || l.st != armedFor {
			return // cancelled or superseded while firing
		}
		l.timer = nil
		fn()
	})
	l.timer = t
}

func (l *Lobby) stopTimerUnsafe() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
