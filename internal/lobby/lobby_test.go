// internal/lobby/lobby_test.go
package lobby

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spellrush/spellrush/internal/words"
)

// mockGateway collects events instead of sending them over WS.
type mockGateway struct {
	mu       sync.Mutex
	events   []Event
	unicasts map[uuid.UUID][]Event
}

func newMockGateway() *mockGateway {
	return &mockGateway{unicasts: make(map[uuid.UUID][]Event)}
}

func (m *mockGateway) broadcastFn(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *mockGateway) unicastFn(connID uuid.UUID, ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unicasts[connID] = append(m.unicasts[connID], ev)
}

func (m *mockGateway) ofType(t EventType) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, ev := range m.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (m *mockGateway) lastOfType(t EventType) (Event, bool) {
	evs := m.ofType(t)
	if len(evs) == 0 {
		return Event{}, false
	}
	return evs[len(evs)-1], true
}

func (m *mockGateway) unicastsTo(connID uuid.UUID) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.unicasts[connID]...)
}

func (m *mockGateway) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
	m.unicasts = make(map[uuid.UUID][]Event)
}

var testNames = []string{"Alice", "Bob", "Carol", "Dave"}

// setupTestLobby builds a lobby with n joined participants and timers
// shrunk to milliseconds so timeout paths run fast.
func setupTestLobby(t *testing.T, n int) (*Lobby, []*Participant, *mockGateway) {
	t.Helper()
	require.LessOrEqual(t, n, len(testNames))

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	l := New("abc123", words.New(words.Builtin(), 1), logger)
	l.tick = time.Millisecond
	l.SettleDelay = 5 * time.Millisecond

	mg := newMockGateway()
	l.BroadcastFn = mg.broadcastFn
	l.UnicastFn = mg.unicastFn

	participants := make([]*Participant, n)
	for i := 0; i < n; i++ {
		participants[i] = &Participant{
			ID:          uuid.New(),
			Name:        testNames[i],
			AvatarSeed:  "seed",
			AvatarStyle: "pixelArtNeutral",
		}
		l.Join(participants[i])
	}
	return l, participants, mg
}

func currentWord(l *Lobby) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.CurrentWord
}

func score(l *Lobby, id uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p := l.findUnsafe(id); p != nil {
		return p.Score
	}
	return -1
}

func TestJoinAssignsHostAndBroadcastsSnapshot(t *testing.T) {
	l, ps, mg := setupTestLobby(t, 2)

	assert.Equal(t, ps[0].ID, l.HostID, "first joiner becomes host")

	ev, ok := mg.lastOfType(EventLobbyUsers)
	require.True(t, ok)
	snap := ev.Data.(LobbyUsers)
	require.Len(t, snap.Users, 2)
	assert.Equal(t, "Alice", snap.Users[0].Name)
	assert.Equal(t, "Bob", snap.Users[1].Name)
	assert.Equal(t, ps[0].ID, snap.HostID)
	assert.Equal(t, DefaultMaxRounds, snap.MaxRounds)
}

func TestSetRoundsClampsAndReportsInSnapshot(t *testing.T) {
	l, ps, mg := setupTestLobby(t, 1)
	host := ps[0].ID

	l.SetRounds(host, 42)
	ev, _ := mg.lastOfType(EventLobbyUsers)
	assert.Equal(t, 42, ev.Data.(LobbyUsers).MaxRounds)

	l.SetRounds(host, 0)
	ev, _ = mg.lastOfType(EventLobbyUsers)
	assert.Equal(t, MinRounds, ev.Data.(LobbyUsers).MaxRounds)

	l.SetRounds(host, 9999)
	ev, _ = mg.lastOfType(EventLobbyUsers)
	assert.Equal(t, MaxRoundsLimit, ev.Data.(LobbyUsers).MaxRounds)
}

func TestHostOnlyCommandsSilentlyDroppedForNonHost(t *testing.T) {
	l, ps, mg := setupTestLobby(t, 2)
	nonHost := ps[1].ID
	mg.clear()

	l.SetRounds(nonHost, 3)
	l.SetRoundTime(nonHost, 60)
	l.SetCustomWords(nonHost, []string{"apple"})
	l.SetWordReveal(nonHost, false)
	l.StartGame(nonHost)
	l.EndGame(nonHost)

	assert.Equal(t, DefaultMaxRounds, l.EffectiveMaxRounds())
	assert.Empty(t, mg.ofType(EventGameStarted))
	assert.Empty(t, mg.ofType(EventGameOver))
	assert.Empty(t, currentWord(l))
}

func TestCustomWordsOverrideAndRestoreRoundCount(t *testing.T) {
	l, ps, mg := setupTestLobby(t, 1)
	host := ps[0].ID

	l.SetCustomWords(host, []string{" Apple ", "KIWI", "", "  "})
	assert.Equal(t, []string{"apple", "kiwi"}, l.CustomWords)
	ev, _ := mg.lastOfType(EventLobbyUsers)
	assert.Equal(t, 2, ev.Data.(LobbyUsers).MaxRounds, "custom list length overrides round count")

	// The numeric value is still stored while the list is active.
	l.SetRounds(host, 7)
	assert.Equal(t, 2, l.EffectiveMaxRounds())

	// Clearing the list restores the last explicitly set count.
	l.SetCustomWords(host, nil)
	assert.Equal(t, 7, l.EffectiveMaxRounds())
}

func TestCustomWordsTruncatedToLimit(t *testing.T) {
	l, ps, _ := setupTestLobby(t, 1)
	list := make([]string, MaxCustomWords+20)
	for i := range list {
		list[i] = "word"
	}
	l.SetCustomWords(ps[0].ID, list)
	assert.Len(t, l.CustomWords, MaxCustomWords)
}

func TestStartGameEmitsSnapshotThenRoundStart(t *testing.T) {
	l, ps, mg := setupTestLobby(t, 2)
	l.tick = time.Second // keep round 1 from expiring mid-assertion
	mg.clear()

	l.StartGame(ps[0].ID)

	started, ok := mg.lastOfType(EventGameStarted)
	require.True(t, ok)
	round := started.Data.(GameStarted)
	assert.NotEmpty(t, round.Word)
	assert.Equal(t, 1, round.Round)
	assert.Equal(t, DefaultRoundTime, round.RoundTime)
	assert.True(t, round.WordReveal)
	assert.Equal(t, round.Word, currentWord(l))

	// Membership snapshot precedes the round start.
	mg.mu.Lock()
	first := mg.events[0].Type
	mg.mu.Unlock()
	assert.Equal(t, EventLobbyUsers, first)
}

func TestSetRoundTimeTakesEffectNextRound(t *testing.T) {
	l, ps, mg := setupTestLobby(t, 1)
	l.SetRoundTime(ps[0].ID, 15)
	l.StartGame(ps[0].ID)

	started, ok := mg.lastOfType(EventGameStarted)
	require.True(t, ok)
	assert.Equal(t, 15, started.Data.(GameStarted).RoundTime)
}

func TestSubmitGuessScoresOncePerRound(t *testing.T) {
	l, ps, mg := setupTestLobby(t, 2)
	alice, bob := ps[0], ps[1]
	l.SetRoundTime(alice.ID, MaxRoundTime)
	l.StartGame(alice.ID)
	started, _ := mg.lastOfType(EventGameStarted)
	word := started.Data.(GameStarted).Word

	l.SubmitGuess(alice.ID, "definitely-wrong")
	assert.Equal(t, 0, score(l, alice.ID))
	assert.Empty(t, mg.unicastsTo(alice.ID))

	// Case-insensitive match with surrounding whitespace.
	l.SubmitGuess(alice.ID, "  "+word+"  ")
	assert.Equal(t, PointsPerCorrectGuess, score(l, alice.ID))

	acks := mg.unicastsTo(alice.ID)
	require.Len(t, acks, 1)
	assert.Equal(t, EventCorrectGuess, acks[0].Type)
	assert.Equal(t, "Alice", acks[0].Data.(CorrectGuess).Name)

	// A second correct submission in the same round is ignored.
	l.SubmitGuess(alice.ID, word)
	assert.Equal(t, PointsPerCorrectGuess, score(l, alice.ID))
	assert.Len(t, mg.unicastsTo(alice.ID), 1)

	// Bob has not guessed yet, so the round is still running.
	assert.NotEmpty(t, currentWord(l))
	assert.Equal(t, 0, score(l, bob.ID))
}

func TestAllCorrectShortCircuitsRound(t *testing.T) {
	l, ps, mg := setupTestLobby(t, 2)
	// Long round so only the short-circuit can end it within the test.
	l.SetRoundTime(ps[0].ID, MaxRoundTime)
	l.StartGame(ps[0].ID)
	started, _ := mg.lastOfType(EventGameStarted)
	word := started.Data.(GameStarted).Word

	l.SubmitGuess(ps[1].ID, word)
	assert.Empty(t, mg.ofType(EventGameEnded), "round continues until everyone is correct")

	l.SubmitGuess(ps[0].ID, word)
	ended, ok := mg.lastOfType(EventGameEnded)
	require.True(t, ok, "round ends immediately once all members are correct")

	payload := ended.Data.(GameEnded)
	assert.Equal(t, "Alice", payload.CorrectGuesser, "winner is earliest joiner among correct guessers")
	assert.Equal(t, word, payload.Word)
	assert.NotEmpty(t, payload.Definition)
	assert.False(t, payload.IsCustom)
	assert.Empty(t, currentWord(l))

	// Next round starts after the settle delay.
	require.Eventually(t, func() bool {
		ev, ok := mg.lastOfType(EventGameStarted)
		return ok && ev.Data.(GameStarted).Round == 2
	}, time.Second, time.Millisecond)
}

func TestRoundTimerFiresWithNoWinner(t *testing.T) {
	l, ps, mg := setupTestLobby(t, 1)
	l.SetRoundTime(ps[0].ID, MinRoundTime) // 5 ticks = 5ms in tests
	l.StartGame(ps[0].ID)

	require.Eventually(t, func() bool {
		_, ok := mg.lastOfType(EventGameEnded)
		return ok
	}, time.Second, time.Millisecond)

	ended, _ := mg.lastOfType(EventGameEnded)
	assert.Empty(t, ended.Data.(GameEnded).CorrectGuesser)
}

func TestGameOverAfterEffectiveMaxRounds(t *testing.T) {
	l, ps, mg := setupTestLobby(t, 1)
	host := ps[0].ID
	l.SetRounds(host, 2)
	l.SetRoundTime(host, MaxRoundTime)
	l.StartGame(host)

	for round := 1; round <= 2; round++ {
		started, _ := mg.lastOfType(EventGameStarted)
		require.Equal(t, round, started.Data.(GameStarted).Round)
		l.SubmitGuess(host, started.Data.(GameStarted).Word)
		if round < 2 {
			require.Eventually(t, func() bool {
				ev, ok := mg.lastOfType(EventGameStarted)
				return ok && ev.Data.(GameStarted).Round == round+1
			}, time.Second, time.Millisecond)
		}
	}

	require.Eventually(t, func() bool {
		_, ok := mg.lastOfType(EventGameOver)
		return ok
	}, time.Second, time.Millisecond)

	over, _ := mg.lastOfType(EventGameOver)
	summary := over.Data.(GameOver)
	assert.False(t, summary.IsCustomMode)
	require.Len(t, summary.TestedWords, 2)
	for _, tw := range summary.TestedWords {
		assert.NotEmpty(t, tw.Word)
		assert.NotEmpty(t, tw.Definition)
	}
	assert.Empty(t, currentWord(l))
	assert.Equal(t, PointsPerCorrectGuess*2, score(l, host))
}

func TestCustomWordsServedInOrderWithoutDefinitions(t *testing.T) {
	l, ps, mg := setupTestLobby(t, 1)
	host := ps[0].ID
	l.SetCustomWords(host, []string{"apple", "kiwi"})
	l.SetRoundTime(host, MaxRoundTime)
	l.StartGame(host)

	started, _ := mg.lastOfType(EventGameStarted)
	require.Equal(t, "apple", started.Data.(GameStarted).Word)

	l.SubmitGuess(host, "APPLE")
	ended, _ := mg.lastOfType(EventGameEnded)
	assert.True(t, ended.Data.(GameEnded).IsCustom)
	assert.Empty(t, ended.Data.(GameEnded).Definition)

	require.Eventually(t, func() bool {
		ev, ok := mg.lastOfType(EventGameStarted)
		return ok && ev.Data.(GameStarted).Word == "kiwi"
	}, time.Second, time.Millisecond)

	l.SubmitGuess(host, "kiwi")
	require.Eventually(t, func() bool {
		_, ok := mg.lastOfType(EventGameOver)
		return ok
	}, time.Second, time.Millisecond)

	over, _ := mg.lastOfType(EventGameOver)
	assert.True(t, over.Data.(GameOver).IsCustomMode)
	assert.Empty(t, over.Data.(GameOver).TestedWords, "summary suppressed in custom mode")
}

func TestEndGameCancelsTimersAndResetsRound(t *testing.T) {
	l, ps, mg := setupTestLobby(t, 1)
	host := ps[0].ID
	l.StartGame(host)
	mg.clear()

	l.EndGame(host)

	_, ok := mg.lastOfType(EventGameOver)
	require.True(t, ok)
	assert.Empty(t, currentWord(l))

	l.mu.Lock()
	assert.Equal(t, 0, l.Round)
	assert.Nil(t, l.timer)
	l.mu.Unlock()

	// Any previously armed round timer must never fire its callback.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, mg.ofType(EventGameEnded))
	assert.Empty(t, mg.ofType(EventGameStarted))
}

func TestGuessIgnoredOutsideActiveRound(t *testing.T) {
	l, ps, mg := setupTestLobby(t, 1)
	l.SubmitGuess(ps[0].ID, "anything")
	assert.Equal(t, 0, score(l, ps[0].ID))
	assert.Empty(t, mg.unicastsTo(ps[0].ID))
}

func TestHostDisconnectPromotesEarliestRemainingJoiner(t *testing.T) {
	l, ps, mg := setupTestLobby(t, 3)
	mg.clear()

	require.True(t, l.RemoveParticipant(ps[0].ID))
	assert.Equal(t, ps[1].ID, l.HostID, "earliest remaining joiner becomes host")

	ev, ok := mg.lastOfType(EventLobbyUsers)
	require.True(t, ok)
	assert.Equal(t, ps[1].ID, ev.Data.(LobbyUsers).HostID)

	// A non-host leaving does not move the host role.
	require.True(t, l.RemoveParticipant(ps[2].ID))
	assert.Equal(t, ps[1].ID, l.HostID)

	assert.False(t, l.RemoveParticipant(uuid.New()), "unknown participant is a no-op")
}

func TestLastMemberLeavingFiresOnEmpty(t *testing.T) {
	l, ps, _ := setupTestLobby(t, 1)
	var emptied string
	l.OnEmpty = func(code string) { emptied = code }

	l.RemoveParticipant(ps[0].ID)
	assert.Equal(t, "abc123", emptied)
	assert.Zero(t, l.MemberCount())
}

func TestDisconnectDoesNotInterruptRound(t *testing.T) {
	l, ps, mg := setupTestLobby(t, 2)
	l.SetRoundTime(ps[0].ID, MaxRoundTime)
	l.StartGame(ps[0].ID)
	word := currentWord(l)
	require.NotEmpty(t, word)

	l.RemoveParticipant(ps[1].ID)
	assert.Equal(t, word, currentWord(l), "round keeps running for remaining players")
	assert.Empty(t, mg.ofType(EventGameEnded))
}

// Full spec scenario: two configured rounds, solo host, early-correct
// rounds, summary at the end.
func TestTwoRoundGameScenario(t *testing.T) {
	l, ps, mg := setupTestLobby(t, 1)
	alice := ps[0].ID
	l.SetRounds(alice, 2)
	l.SetRoundTime(alice, MaxRoundTime)

	var summary GameSummary
	done := make(chan struct{})
	l.OnGameOver = func(s GameSummary) {
		summary = s
		close(done)
	}

	l.StartGame(alice)
	started, _ := mg.lastOfType(EventGameStarted)
	w1 := started.Data.(GameStarted).Word
	l.SubmitGuess(alice, w1)

	acks := mg.unicastsTo(alice)
	require.NotEmpty(t, acks)
	assert.Equal(t, "Alice", acks[0].Data.(CorrectGuess).Name)

	ended, _ := mg.lastOfType(EventGameEnded)
	assert.Equal(t, "Alice", ended.Data.(GameEnded).CorrectGuesser)

	require.Eventually(t, func() bool {
		ev, ok := mg.lastOfType(EventGameStarted)
		return ok && ev.Data.(GameStarted).Round == 2
	}, time.Second, time.Millisecond)

	started, _ = mg.lastOfType(EventGameStarted)
	l.SubmitGuess(alice, started.Data.(GameStarted).Word)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for game over summary")
	}

	over, _ := mg.lastOfType(EventGameOver)
	assert.Len(t, over.Data.(GameOver).TestedWords, 2)

	assert.Equal(t, "abc123", summary.LobbyCode)
	assert.Equal(t, 2, summary.Rounds)
	assert.Equal(t, PointsPerCorrectGuess*2, summary.Scores["Alice"])
}
