package game

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3jesters/opentcg-server-go/internal/catalog"
	"github.com/3jesters/opentcg-server-go/internal/game/state"
)

// matchStore is a minimal in-memory MatchRepository. The real stores
// live in internal/repository, which imports this package and so cannot
// be used from its in-package tests.
type matchStore struct {
	matches map[string]*Match
}

func newMatchStore() *matchStore {
	return &matchStore{matches: make(map[string]*Match)}
}

func (s *matchStore) Create(_ context.Context, m *Match) error {
	if _, ok := s.matches[m.ID]; ok {
		return fmt.Errorf("match %s already exists", m.ID)
	}
	m.Version = 1
	s.matches[m.ID] = m
	return nil
}

func (s *matchStore) Get(_ context.Context, id string) (*Match, error) {
	m, ok := s.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s not found", id)
	}
	return m, nil
}

func (s *matchStore) Update(_ context.Context, m *Match) error {
	if _, ok := s.matches[m.ID]; !ok {
		return fmt.Errorf("match %s not found", m.ID)
	}
	m.Version++
	s.matches[m.ID] = m
	return nil
}

// deckStore is a map-backed DeckSource.
type deckStore struct {
	decks map[string][]string
}

func newDeckStore() *deckStore {
	return &deckStore{decks: make(map[string][]string)}
}

func (s *deckStore) Deck(_ context.Context, deckID string) ([]string, error) {
	cards, ok := s.decks[deckID]
	if !ok {
		return nil, fmt.Errorf("deck %s not found", deckID)
	}
	return append([]string(nil), cards...), nil
}

func (s *deckStore) save(deckID string, cards []string) {
	s.decks[deckID] = append([]string(nil), cards...)
}

// testRules keeps decks small so setup fixtures stay readable.
var testRules = Rules{DeckSize: 10, PrizeCount: 2, HandSize: 5}

func testCards() *catalog.MemoryCatalog {
	return catalog.NewMemoryCatalog(
		catalog.CardMetadata{
			ID:        "machop",
			Name:      "Machop",
			Supertype: catalog.SupertypePokemon,
			Type:      catalog.EnergyFighting,
			HP:        40,
			Stage:     catalog.StageBasic,
			Weakness:  &catalog.TypeModifier{Type: catalog.EnergyFighting, Modifier: "×2"},
			Ability:   &catalog.Ability{Name: "Stun Gas", Text: "The Defending Pokémon is now Paralyzed."},
			AbilityEffects: []catalog.EffectSpec{
				{Kind: "STATUS_CONDITION", Condition: "PARALYZED"},
			},
			Attacks: []catalog.Attack{
				{
					Name:   "Low Kick",
					Cost:   []catalog.EnergyType{catalog.EnergyFighting},
					Damage: "20",
				},
				{
					Name:   "Fury Attack",
					Cost:   []catalog.EnergyType{catalog.EnergyFighting},
					Damage: "10×",
					Text:   "Flip 2 coins. This attack does 10 damage times the number of heads.",
				},
			},
		},
		catalog.CardMetadata{
			ID:          "machoke",
			Name:        "Machoke",
			Supertype:   catalog.SupertypePokemon,
			Type:        catalog.EnergyFighting,
			HP:          80,
			Stage:       catalog.StageOne,
			EvolvesFrom: "Machop",
		},
		catalog.CardMetadata{
			ID:          "machamp",
			Name:        "Machamp",
			Supertype:   catalog.SupertypePokemon,
			Type:        catalog.EnergyFighting,
			HP:          120,
			Stage:       catalog.StageTwo,
			EvolvesFrom: "Machoke",
		},
		// A deliberately broken evolution line: names Machop but sits two
		// stages above it.
		catalog.CardMetadata{
			ID:          "machop-x",
			Name:        "Machop X",
			Supertype:   catalog.SupertypePokemon,
			Type:        catalog.EnergyFighting,
			HP:          100,
			Stage:       catalog.StageTwo,
			EvolvesFrom: "Machop",
		},
		catalog.CardMetadata{
			ID:             "fighting-energy",
			Name:           "Fighting Energy",
			Supertype:      catalog.SupertypeEnergy,
			ProvidesEnergy: catalog.EnergyFighting,
		},
	)
}

// testDeck deals the two Machop and the evolution cards into the
// opening hand; everything after is energy.
func testDeck() []string {
	deck := []string{"machop", "machop", "machoke", "machamp", "machop-x"}
	for len(deck) < testRules.DeckSize {
		deck = append(deck, "fighting-energy")
	}
	return deck
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *deckStore) {
	t.Helper()
	decks := newDeckStore()
	decks.save("deck-a", testDeck())
	decks.save("deck-b", testDeck())
	return NewOrchestrator(newMatchStore(), decks, testCards(), testRules, nil), decks
}

// setupToMainPhase drives a fresh match to the first player's main
// phase, with an active and one benched Machop per side. Returns the
// match plus the first and second players' ids.
func setupToMainPhase(t *testing.T, o *Orchestrator) (*Match, string, string) {
	t.Helper()
	ctx := context.Background()

	m, err := o.CreateMatch(ctx, "alice", "deck-a")
	require.NoError(t, err)
	matchID := m.ID

	m, err = o.JoinMatch(ctx, matchID, "bob", "deck-b")
	require.NoError(t, err)
	assert.Equal(t, MatchApproval, m.State)

	_, err = o.ApproveMatch(ctx, matchID, "alice")
	require.NoError(t, err)
	m, err = o.ApproveMatch(ctx, matchID, "bob")
	require.NoError(t, err)
	assert.Equal(t, MatchSelectActivePokemon, m.State)
	assert.Len(t, m.Game.PlayerOne.Hand, testRules.HandSize)
	assert.Len(t, m.Game.PlayerOne.Prizes, testRules.PrizeCount)

	for _, playerID := range []string{"alice", "bob"} {
		_, err = o.ExecuteAction(ctx, matchID, playerID, state.ActionSetActivePokemon, ActionData{CardID: "machop"})
		require.NoError(t, err)
	}
	for _, playerID := range []string{"alice", "bob"} {
		_, err = o.ExecuteAction(ctx, matchID, playerID, state.ActionPlayPokemon, ActionData{CardID: "machop"})
		require.NoError(t, err)
		_, err = o.ExecuteAction(ctx, matchID, playerID, state.ActionConfirmSetup, ActionData{})
		require.NoError(t, err)
	}

	m, err = o.Match(ctx, matchID)
	require.NoError(t, err)
	require.Equal(t, MatchFirstPlayerSelection, m.State)

	m, err = o.ExecuteAction(ctx, matchID, "alice", state.ActionGenerateCoinFlip, ActionData{})
	require.NoError(t, err)
	require.Equal(t, MatchPlayerTurn, m.State)
	require.Equal(t, state.PhaseMain, m.Game.Phase, "the turn-opening draw runs automatically")

	firstID := m.PlayerID(m.CurrentPlayer)
	secondID := m.PlayerID(m.CurrentPlayer.Opponent())
	// The first player drew their turn-opening card.
	assert.Len(t, m.Game.Player(m.CurrentPlayer).Hand, 4, "5 dealt - 2 placed + 1 drawn")
	return m, firstID, secondID
}

func TestFullMatchFlowWithKnockoutAndPrize(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()
	m, firstID, secondID := setupToMainPhase(t, o)
	matchID := m.ID
	firstSeat := m.CurrentPlayer
	secondSeat := firstSeat.Opponent()

	activeID := m.Game.Player(firstSeat).Active.InstanceID
	m, err := o.ExecuteAction(ctx, matchID, firstID, state.ActionAttachEnergy, ActionData{
		CardID:           "fighting-energy",
		TargetInstanceID: activeID,
	})
	require.NoError(t, err)
	assert.True(t, m.Game.Player(firstSeat).HasAttachedEnergyThisTurn)

	// Low Kick does 20, doubled by the mirror weakness: a one-hit knockout.
	defenderID := m.Game.Player(secondSeat).Active.InstanceID
	m, err = o.ExecuteAction(ctx, matchID, firstID, state.ActionAttack, ActionData{AttackName: "Low Kick"})
	require.NoError(t, err)
	assert.Equal(t, state.PhaseEnd, m.Game.Phase)
	assert.Nil(t, m.Game.Player(secondSeat).Active, "knocked-out pokemon leaves play")
	assert.Contains(t, m.Game.Player(secondSeat).Discard, "machop")

	last := m.Game.LastAction
	require.NotNil(t, last)
	assert.Equal(t, 40, last.Data["damage"])
	assert.True(t, last.Bool("isKnockedOut"))
	assert.Equal(t, defenderID, last.String("knockedOutInstanceId"))

	// The attacker owes a prize pick, the defender an active replacement,
	// and the turn cannot end until both resolve.
	_, err = o.ExecuteAction(ctx, matchID, firstID, state.ActionEndTurn, ActionData{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalTransition))

	m, err = o.ExecuteAction(ctx, matchID, firstID, state.ActionSelectPrize, ActionData{PrizeIndex: 0})
	require.NoError(t, err)
	assert.Len(t, m.Game.Player(firstSeat).Prizes, 1)

	benchID := m.Game.Player(secondSeat).Bench[0].InstanceID
	m, err = o.ExecuteAction(ctx, matchID, secondID, state.ActionSetActivePokemon, ActionData{InstanceID: benchID})
	require.NoError(t, err)
	require.NotNil(t, m.Game.Player(secondSeat).Active)
	assert.Equal(t, benchID, m.Game.Player(secondSeat).Active.InstanceID)
	assert.Empty(t, m.Game.Player(secondSeat).Bench)

	m, err = o.ExecuteAction(ctx, matchID, firstID, state.ActionEndTurn, ActionData{})
	require.NoError(t, err)
	assert.Equal(t, MatchPlayerTurn, m.State)
	assert.Equal(t, 2, m.Game.TurnNumber)
	assert.Equal(t, secondSeat, m.CurrentPlayer)
	assert.Equal(t, state.PhaseMain, m.Game.Phase)
	assert.False(t, m.Game.Player(firstSeat).HasAttachedEnergyThisTurn, "attachment flag resets at end of turn")
}

func TestCoinFlipAttackResolvesInTwoSteps(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()
	m, firstID, _ := setupToMainPhase(t, o)
	matchID := m.ID
	firstSeat := m.CurrentPlayer

	activeID := m.Game.Player(firstSeat).Active.InstanceID
	_, err := o.ExecuteAction(ctx, matchID, firstID, state.ActionAttachEnergy, ActionData{
		CardID:           "fighting-energy",
		TargetInstanceID: activeID,
	})
	require.NoError(t, err)

	// First ATTACK stages the flip.
	m, err = o.ExecuteAction(ctx, matchID, firstID, state.ActionAttack, ActionData{AttackName: "Fury Attack"})
	require.NoError(t, err)
	require.NotNil(t, m.Game.CoinFlip)
	assert.Equal(t, state.CoinFlipReady, m.Game.CoinFlip.Status)
	assert.Equal(t, state.CoinFlipForAttack, m.Game.CoinFlip.Context)
	assert.Equal(t, 2, m.Game.CoinFlip.FlipsRequired)
	assert.Equal(t, state.PhaseAttack, m.Game.Phase)

	// The flip stream already spent one flip on the first-player toss.
	expected := FlipSequence(matchID, 1, 2)
	m, err = o.ExecuteAction(ctx, matchID, firstID, state.ActionGenerateCoinFlip, ActionData{})
	require.NoError(t, err)
	require.NotNil(t, m.Game.CoinFlip)
	assert.Equal(t, state.CoinFlipResolved, m.Game.CoinFlip.Status)
	assert.Equal(t, expected, m.Game.CoinFlip.Results)

	heads := 0
	for _, f := range expected {
		if f {
			heads++
		}
	}
	wantDamage := heads * 10
	if wantDamage > 0 {
		wantDamage *= 2 // mirror weakness
	}

	m, err = o.ExecuteAction(ctx, matchID, firstID, state.ActionAttack, ActionData{AttackName: "Fury Attack"})
	require.NoError(t, err)
	require.NotNil(t, m.Game.LastAction)
	assert.Equal(t, wantDamage, m.Game.LastAction.Data["damage"])
	assert.Nil(t, m.Game.CoinFlip, "resolved flip is consumed")
	assert.Equal(t, state.PhaseEnd, m.Game.Phase)
}

func TestAttachEnergyOncePerTurn(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()
	m, firstID, _ := setupToMainPhase(t, o)
	activeID := m.Game.Player(m.CurrentPlayer).Active.InstanceID

	_, err := o.ExecuteAction(ctx, m.ID, firstID, state.ActionAttachEnergy, ActionData{
		CardID:           "fighting-energy",
		TargetInstanceID: activeID,
	})
	require.NoError(t, err)

	_, err = o.ExecuteAction(ctx, m.ID, firstID, state.ActionAttachEnergy, ActionData{
		CardID:           "fighting-energy",
		TargetInstanceID: activeID,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalTransition))
}

func TestOutOfTurnActionsAreRejected(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()
	m, _, secondID := setupToMainPhase(t, o)

	_, err := o.ExecuteAction(ctx, m.ID, secondID, state.ActionAttack, ActionData{AttackName: "Low Kick"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalTransition))

	_, err = o.ExecuteAction(ctx, m.ID, "mallory", state.ActionEndTurn, ActionData{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestConcedeDuringPlayEndsMatch(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()
	m, firstID, secondID := setupToMainPhase(t, o)

	m, err := o.ExecuteAction(ctx, m.ID, secondID, state.ActionConcede, ActionData{})
	require.NoError(t, err)
	assert.Equal(t, MatchEnded, m.State)
	assert.Equal(t, firstID, m.WinnerID)
	assert.Equal(t, "concession", m.EndReason)

	_, err = o.ExecuteAction(ctx, m.ID, firstID, state.ActionEndTurn, ActionData{})
	require.Error(t, err)
}

func TestCreateMatchValidatesDeck(t *testing.T) {
	o, decks := newTestOrchestrator(t)
	ctx := context.Background()

	short := []string{"machop", "fighting-energy"}
	decks.save("deck-short", short)
	_, err := o.CreateMatch(ctx, "alice", "deck-short")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	noBasics := make([]string, testRules.DeckSize)
	for i := range noBasics {
		noBasics[i] = "fighting-energy"
	}
	decks.save("deck-no-basics", noBasics)
	_, err = o.CreateMatch(ctx, "alice", "deck-no-basics")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = o.CreateMatch(ctx, "alice", "deck-missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestStatusKnockoutAwardsPrizeAndReplacement(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()
	m, firstID, secondID := setupToMainPhase(t, o)
	matchID := m.ID
	firstSeat := m.CurrentPlayer
	secondSeat := firstSeat.Opponent()

	// Poison the defender one tick away from zero; the END_TURN status
	// sweep finishes it off.
	defender := *m.Game.Player(secondSeat).Active
	koID := defender.InstanceID
	poisoned := defender.WithDamage(30).WithStatus(state.StatusPoisoned)
	player, err := m.Game.Player(secondSeat).WithPokemonReplaced(poisoned)
	require.NoError(t, err)
	m.Game = m.Game.WithPlayer(secondSeat, player)

	m, err = o.ExecuteAction(ctx, matchID, firstID, state.ActionEndTurn, ActionData{})
	require.NoError(t, err)
	assert.Equal(t, MatchBetweenTurns, m.State)
	assert.Nil(t, m.Game.Player(secondSeat).Active, "status knockout leaves play")
	assert.Contains(t, m.Game.Player(secondSeat).Discard, "machop")
	assert.Equal(t, state.PhaseSelectActive, m.Game.Phase)

	last := m.Game.LastAction
	require.NotNil(t, last)
	assert.True(t, last.Bool("isKnockedOut"))
	assert.Equal(t, state.KnockoutSourceStatusEffect, last.String("knockoutSource"))
	assert.Equal(t, koID, last.String("instanceId"))
	assert.Equal(t, firstSeat, last.Player, "the prize goes to the opponent of the poisoned side")

	// The opponent takes the prize, the owner promotes from the bench,
	// and only then does the next turn open.
	m, err = o.ExecuteAction(ctx, matchID, firstID, state.ActionSelectPrize, ActionData{PrizeIndex: 0})
	require.NoError(t, err)
	assert.Len(t, m.Game.Player(firstSeat).Prizes, 1)

	benchID := m.Game.Player(secondSeat).Bench[0].InstanceID
	m, err = o.ExecuteAction(ctx, matchID, secondID, state.ActionSetActivePokemon, ActionData{InstanceID: benchID})
	require.NoError(t, err)

	assert.Equal(t, MatchPlayerTurn, m.State)
	assert.Equal(t, 2, m.Game.TurnNumber)
	assert.Equal(t, secondSeat, m.CurrentPlayer, "the turn passes to the opponent of whoever ended the last one")
	assert.Equal(t, state.PhaseMain, m.Game.Phase, "the turn-opening draw runs automatically")
}

func TestStatusKnockoutOfLastPokemonEndsMatch(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()
	m, firstID, _ := setupToMainPhase(t, o)
	firstSeat := m.CurrentPlayer
	secondSeat := firstSeat.Opponent()

	// Strip the bench so the poisoned active is the last Pokémon.
	player := m.Game.Player(secondSeat)
	player, _, err := player.WithBenchRemoved(player.Bench[0].InstanceID)
	require.NoError(t, err)
	poisoned := player.Active.WithDamage(30).WithStatus(state.StatusPoisoned)
	player, err = player.WithPokemonReplaced(poisoned)
	require.NoError(t, err)
	m.Game = m.Game.WithPlayer(secondSeat, player)

	m, err = o.ExecuteAction(ctx, m.ID, firstID, state.ActionEndTurn, ActionData{})
	require.NoError(t, err)
	assert.Equal(t, MatchEnded, m.State)
	assert.Equal(t, firstID, m.WinnerID)
	assert.Equal(t, "opponent has no pokemon in play", m.EndReason)
	assert.Contains(t, m.Game.Player(secondSeat).Discard, "machop")
}

func TestAbilityParalysisBlocksAttackUntilExpiry(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()
	m, firstID, secondID := setupToMainPhase(t, o)
	matchID := m.ID
	firstSeat := m.CurrentPlayer
	secondSeat := firstSeat.Opponent()

	attackerID := m.Game.Player(firstSeat).Active.InstanceID
	defenderID := m.Game.Player(secondSeat).Active.InstanceID

	m, err := o.ExecuteAction(ctx, matchID, firstID, state.ActionUseAbility, ActionData{InstanceID: attackerID})
	require.NoError(t, err)
	require.True(t, m.Game.Player(secondSeat).Active.HasStatus(state.StatusParalyzed))

	last := m.Game.LastAction
	require.NotNil(t, last)
	assert.Equal(t, string(state.StatusParalyzed), last.String("statusApplied"))
	assert.Equal(t, defenderID, last.String("targetInstanceId"))

	_, err = o.ExecuteAction(ctx, matchID, firstID, state.ActionEndTurn, ActionData{})
	require.NoError(t, err)

	// The paralyzed side may still attach energy, but not attack.
	m, err = o.ExecuteAction(ctx, matchID, secondID, state.ActionAttachEnergy, ActionData{
		CardID:           "fighting-energy",
		TargetInstanceID: defenderID,
	})
	require.NoError(t, err)
	_, err = o.ExecuteAction(ctx, matchID, secondID, state.ActionAttack, ActionData{AttackName: "Low Kick"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "paralyzed")

	// Two turn boundaries later the condition has expired and the same
	// attack goes through.
	_, err = o.ExecuteAction(ctx, matchID, secondID, state.ActionEndTurn, ActionData{})
	require.NoError(t, err)
	_, err = o.ExecuteAction(ctx, matchID, firstID, state.ActionEndTurn, ActionData{})
	require.NoError(t, err)

	m, err = o.ExecuteAction(ctx, matchID, secondID, state.ActionAttack, ActionData{AttackName: "Low Kick"})
	require.NoError(t, err)
	require.NotNil(t, m.Game.LastAction)
	assert.Equal(t, 40, m.Game.LastAction.Data["damage"], "20 doubled by the mirror weakness")
	assert.False(t, m.Game.Player(secondSeat).Active.HasStatus(state.StatusParalyzed))
}

func TestEvolutionThroughOrchestrator(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()
	m, firstID, secondID := setupToMainPhase(t, o)
	matchID := m.ID
	firstSeat := m.CurrentPlayer

	activeID := m.Game.Player(firstSeat).Active.InstanceID

	// The evolvesFrom name must match the current card exactly.
	_, err := o.ExecuteAction(ctx, matchID, firstID, state.ActionEvolvePokemon, ActionData{
		CardID:     "machamp",
		InstanceID: activeID,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "does not evolve from")

	// A matching name does not excuse skipping a stage.
	_, err = o.ExecuteAction(ctx, matchID, firstID, state.ActionEvolvePokemon, ActionData{
		CardID:     "machop-x",
		InstanceID: activeID,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "one stage above")

	// Damage on the basic carries over into the evolution.
	damaged := m.Game.Player(firstSeat).Active.WithDamage(10)
	player, err := m.Game.Player(firstSeat).WithPokemonReplaced(damaged)
	require.NoError(t, err)
	m.Game = m.Game.WithPlayer(firstSeat, player)

	m, err = o.ExecuteAction(ctx, matchID, firstID, state.ActionEvolvePokemon, ActionData{
		CardID:     "machoke",
		InstanceID: activeID,
	})
	require.NoError(t, err)
	evolved := m.Game.Player(firstSeat).Active
	assert.Equal(t, "machoke", evolved.CardID)
	assert.Equal(t, activeID, evolved.InstanceID, "instance identity survives evolution")
	assert.Equal(t, 70, evolved.CurrentHP, "80 max minus the 10 damage carried over")

	// The same instance cannot evolve twice in one turn.
	_, err = o.ExecuteAction(ctx, matchID, firstID, state.ActionEvolvePokemon, ActionData{
		CardID:     "machamp",
		InstanceID: activeID,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "already evolved this turn")

	// After the END_TURN boundary on each side it can evolve again.
	_, err = o.ExecuteAction(ctx, matchID, firstID, state.ActionEndTurn, ActionData{})
	require.NoError(t, err)
	_, err = o.ExecuteAction(ctx, matchID, secondID, state.ActionEndTurn, ActionData{})
	require.NoError(t, err)

	m, err = o.ExecuteAction(ctx, matchID, firstID, state.ActionEvolvePokemon, ActionData{
		CardID:     "machamp",
		InstanceID: activeID,
	})
	require.NoError(t, err)
	assert.Equal(t, "machamp", m.Game.Player(firstSeat).Active.CardID)
}

func TestDeckExhaustionLosesMatch(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()
	m, firstID, secondID := setupToMainPhase(t, o)
	matchID := m.ID

	// Each side starts the main phase with 2 cards left in the deck.
	// Alternate bare END_TURNs until someone cannot draw.
	current, opponent := firstID, secondID
	for turn := 0; turn < 10; turn++ {
		m, err := o.ExecuteAction(ctx, matchID, current, state.ActionEndTurn, ActionData{})
		require.NoError(t, err)
		if m.State == MatchEnded {
			assert.Equal(t, "deck exhausted", m.EndReason)
			assert.Equal(t, current, m.WinnerID, "the player whose opponent decked out wins")
			return
		}
		current, opponent = opponent, current
	}
	t.Fatal("match never ended by deck exhaustion")
}
