package game

import (
	"time"

	"github.com/3jesters/opentcg-server-go/internal/game/state"
)

// MatchState is the top-level lifecycle state of a match.
type MatchState string

const (
	MatchCreated             MatchState = "CREATED"
	MatchWaitingForPlayers   MatchState = "WAITING_FOR_PLAYERS"
	MatchDeckValidation      MatchState = "DECK_VALIDATION"
	MatchApproval            MatchState = "MATCH_APPROVAL"
	MatchDrawingCards        MatchState = "DRAWING_CARDS"
	MatchSetPrizeCards       MatchState = "SET_PRIZE_CARDS"
	MatchSelectActivePokemon MatchState = "SELECT_ACTIVE_POKEMON"
	MatchSelectBenchPokemon  MatchState = "SELECT_BENCH_POKEMON"
	MatchFirstPlayerSelection MatchState = "FIRST_PLAYER_SELECTION"
	MatchPlayerTurn          MatchState = "PLAYER_TURN"
	MatchBetweenTurns        MatchState = "BETWEEN_TURNS"
	MatchEnded               MatchState = "MATCH_ENDED"
	MatchCancelled           MatchState = "CANCELLED"
)

// Terminal reports whether the state is absorbing.
func (s MatchState) Terminal() bool {
	return s == MatchEnded || s == MatchCancelled
}

// SetupProgress tracks one player's progress through the pre-game flow.
type SetupProgress struct {
	DeckValidated  bool `json:"deckValidated,omitempty"`
	Approved       bool `json:"approved,omitempty"`
	ActiveSelected bool `json:"activeSelected,omitempty"`
	BenchConfirmed bool `json:"benchConfirmed,omitempty"`
}

// Match is the mutable aggregate root. The orchestrator is its single
// logical writer; every mutator checks the current state before
// transitioning and fails fast on illegal calls.
type Match struct {
	ID string `json:"id"`

	PlayerOneID     string `json:"playerOneId"`
	PlayerTwoID     string `json:"playerTwoId,omitempty"`
	PlayerOneDeckID string `json:"playerOneDeckId"`
	PlayerTwoDeckID string `json:"playerTwoDeckId,omitempty"`

	State MatchState `json:"state"`

	// FirstPlayer and CurrentPlayer are unset until the coin toss runs.
	FirstPlayer   state.PlayerIdentifier `json:"firstPlayer,omitempty"`
	CurrentPlayer state.PlayerIdentifier `json:"currentPlayer,omitempty"`

	SetupPlayerOne SetupProgress `json:"setupPlayerOne,omitempty"`
	SetupPlayerTwo SetupProgress `json:"setupPlayerTwo,omitempty"`

	WinnerID  string `json:"winnerId,omitempty"`
	EndReason string `json:"endReason,omitempty"`

	// FlipCount is the match's position in its deterministic flip
	// stream; every generated flip advances it.
	FlipCount int `json:"flipCount"`

	// CoinTossDone guards the once-only first-player toss.
	CoinTossDone bool `json:"coinTossDone"`

	// Version supports the storage adapter's optimistic concurrency
	// check; the engine never touches it.
	Version int `json:"version"`

	Game state.GameState `json:"gameState"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewMatch creates a match owned by its first player.
func NewMatch(id, playerOneID, deckID string, now time.Time) *Match {
	return &Match{
		ID:              id,
		PlayerOneID:     playerOneID,
		PlayerOneDeckID: deckID,
		State:           MatchCreated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// requireState guards a transition on the current state.
func (m *Match) requireState(states ...MatchState) error {
	for _, s := range states {
		if m.State == s {
			return nil
		}
	}
	return illegalTransitionf("match %s is %s, expected one of %v", m.ID, m.State, states)
}

// SeatOf resolves a player id to its seat.
func (m *Match) SeatOf(playerID string) (state.PlayerIdentifier, error) {
	switch playerID {
	case m.PlayerOneID:
		return state.PlayerOne, nil
	case m.PlayerTwoID:
		if m.PlayerTwoID == "" {
			break
		}
		return state.PlayerTwo, nil
	}
	return "", validationf("player %s is not part of match %s", playerID, m.ID)
}

// PlayerID returns the player id seated at the given side.
func (m *Match) PlayerID(seat state.PlayerIdentifier) string {
	if seat == state.PlayerOne {
		return m.PlayerOneID
	}
	return m.PlayerTwoID
}

func (m *Match) setupFor(seat state.PlayerIdentifier) *SetupProgress {
	if seat == state.PlayerOne {
		return &m.SetupPlayerOne
	}
	return &m.SetupPlayerTwo
}

// Join seats the second player. Legal while the match waits for
// players.
func (m *Match) Join(playerID, deckID string) error {
	if err := m.requireState(MatchCreated, MatchWaitingForPlayers); err != nil {
		return err
	}
	if playerID == m.PlayerOneID {
		return validationf("player %s is already in match %s", playerID, m.ID)
	}
	if m.PlayerTwoID != "" {
		return illegalTransitionf("match %s already has two players", m.ID)
	}
	m.PlayerTwoID = playerID
	m.PlayerTwoDeckID = deckID
	m.State = MatchDeckValidation
	return nil
}

// Open moves a freshly created match into the waiting room.
func (m *Match) Open() error {
	if err := m.requireState(MatchCreated); err != nil {
		return err
	}
	m.State = MatchWaitingForPlayers
	return nil
}

// MarkDeckValidated records deck-legality approval for one seat; when
// both decks pass, the match moves to approval.
func (m *Match) MarkDeckValidated(seat state.PlayerIdentifier) error {
	if err := m.requireState(MatchDeckValidation); err != nil {
		return err
	}
	m.setupFor(seat).DeckValidated = true
	if m.SetupPlayerOne.DeckValidated && m.SetupPlayerTwo.DeckValidated {
		m.State = MatchApproval
	}
	return nil
}

// Approve records a player's consent to start; both approvals move the
// match into the card-drawing step.
func (m *Match) Approve(seat state.PlayerIdentifier) error {
	if err := m.requireState(MatchApproval); err != nil {
		return err
	}
	m.setupFor(seat).Approved = true
	if m.SetupPlayerOne.Approved && m.SetupPlayerTwo.Approved {
		m.State = MatchDrawingCards
	}
	return nil
}

// SetInitialGameState installs the game state produced by the initial
// draw and advances to prize placement.
func (m *Match) SetInitialGameState(gs state.GameState) error {
	if err := m.requireState(MatchDrawingCards); err != nil {
		return err
	}
	m.Game = gs
	m.State = MatchSetPrizeCards
	return nil
}

// PlacePrizes moves the top prizeCount cards of each deck face down to
// the prize row and advances to active selection.
func (m *Match) PlacePrizes(prizeCount int) error {
	if err := m.requireState(MatchSetPrizeCards); err != nil {
		return err
	}
	gs := m.Game
	for _, seat := range []state.PlayerIdentifier{state.PlayerOne, state.PlayerTwo} {
		player := gs.Player(seat)
		if len(player.Deck) < prizeCount {
			return validationf("player %s deck has %d cards, cannot place %d prizes",
				m.PlayerID(seat), len(player.Deck), prizeCount)
		}
		prizes := append([]string(nil), player.Deck[:prizeCount]...)
		player.Deck = append([]string(nil), player.Deck[prizeCount:]...)
		player = player.WithPrizes(prizes)
		gs = gs.WithPlayer(seat, player)
	}
	m.Game = gs
	m.State = MatchSelectActivePokemon
	return nil
}

// MarkActiveSelected records that a seat placed its starting active
// Pokémon; both selections advance to bench selection.
func (m *Match) MarkActiveSelected(seat state.PlayerIdentifier) error {
	if err := m.requireState(MatchSelectActivePokemon); err != nil {
		return err
	}
	m.setupFor(seat).ActiveSelected = true
	if m.SetupPlayerOne.ActiveSelected && m.SetupPlayerTwo.ActiveSelected {
		m.State = MatchSelectBenchPokemon
	}
	return nil
}

// ConfirmBench records that a seat finished (possibly empty) bench
// placement; both confirmations advance to the first-player coin toss.
func (m *Match) ConfirmBench(seat state.PlayerIdentifier) error {
	if err := m.requireState(MatchSelectBenchPokemon); err != nil {
		return err
	}
	m.setupFor(seat).BenchConfirmed = true
	if m.SetupPlayerOne.BenchConfirmed && m.SetupPlayerTwo.BenchConfirmed {
		m.State = MatchFirstPlayerSelection
	}
	return nil
}

// TossCoin runs the deterministic first-player toss. It may run exactly
// once, and only while no current player is set; a second call is an
// invariant violation.
func (m *Match) TossCoin() (state.PlayerIdentifier, error) {
	if err := m.requireState(MatchFirstPlayerSelection); err != nil {
		return "", err
	}
	if m.CoinTossDone || m.CurrentPlayer != "" {
		return "", invariantf("coin toss already performed for match %s", m.ID)
	}

	flips := FlipSequence(m.ID, m.FlipCount, 1)
	m.FlipCount++
	first := state.PlayerTwo
	if flips[0] {
		first = state.PlayerOne
	}

	m.CoinTossDone = true
	m.FirstPlayer = first
	m.CurrentPlayer = first
	m.Game = m.Game.WithCurrentPlayer(first).WithPhase(state.PhaseDraw)
	m.State = MatchPlayerTurn
	return first, nil
}

// BeginBetweenTurns moves an in-progress turn into between-turns
// processing.
func (m *Match) BeginBetweenTurns() error {
	if err := m.requireState(MatchPlayerTurn); err != nil {
		return err
	}
	m.State = MatchBetweenTurns
	return nil
}

// BeginNextTurn hands the turn to the given player and resumes play.
func (m *Match) BeginNextTurn(next state.PlayerIdentifier) error {
	if err := m.requireState(MatchBetweenTurns); err != nil {
		return err
	}
	m.CurrentPlayer = next
	m.State = MatchPlayerTurn
	return nil
}

// End finishes the match with a winner. Legal from any in-game state;
// terminal states are absorbing.
func (m *Match) End(winnerID, reason string) error {
	if m.State.Terminal() {
		return illegalTransitionf("match %s already ended", m.ID)
	}
	if err := m.requireState(MatchPlayerTurn, MatchBetweenTurns); err != nil {
		return err
	}
	m.WinnerID = winnerID
	m.EndReason = reason
	m.State = MatchEnded
	return nil
}

// Cancel aborts a match that has not ended. Legal from any non-terminal
// state.
func (m *Match) Cancel(reason string) error {
	if m.State.Terminal() {
		return illegalTransitionf("match %s already ended", m.ID)
	}
	m.EndReason = reason
	m.State = MatchCancelled
	return nil
}
