package game

import (
	"time"

	"github.com/3jesters/opentcg-server-go/internal/game/state"
)

// MatchView is the complete match state as one player is allowed to
// see it: outside the initial-setup reveal window the opponent's hand
// stays hidden, prize pools stay face down, and card counts are always
// visible.
type MatchView struct {
	MatchID       string                   `json:"matchId"`
	State         MatchState               `json:"state"`
	TurnNumber    int                      `json:"turnNumber"`
	Phase         state.TurnPhase          `json:"turnPhase"`
	CurrentPlayer string                   `json:"currentPlayerId,omitempty"`
	FirstPlayer   string                   `json:"firstPlayerId,omitempty"`
	WinnerID      string                   `json:"winnerId,omitempty"`
	EndReason     string                   `json:"endReason,omitempty"`
	You           PlayerView               `json:"you"`
	Opponent      PlayerView               `json:"opponent"`
	CoinFlip      *state.CoinFlipState     `json:"coinFlipState,omitempty"`
	LastAction    *state.ActionSummary     `json:"lastAction,omitempty"`
	LegalActions  []state.PlayerActionType `json:"legalActions,omitempty"`
	UpdatedAt     time.Time                `json:"updatedAt"`
}

// PlayerView is one side of the board. Hand holds card ids for the
// requesting player, and for the opponent only during the setup reveal
// window; otherwise it stays empty and HandCount carries the
// information.
type PlayerView struct {
	PlayerID     string        `json:"playerId"`
	Hand         []string      `json:"hand,omitempty"`
	HandCount    int           `json:"handCount"`
	DeckCount    int           `json:"deckCount"`
	PrizeCount   int           `json:"prizeCount"`
	Discard      []string      `json:"discard,omitempty"`
	Active       *PokemonView  `json:"active,omitempty"`
	Bench        []PokemonView `json:"bench,omitempty"`
	EnergyPlayed bool          `json:"energyPlayedThisTurn"`
}

// PokemonView is an in-play Pokémon as both players see it. Board
// state is public, so nothing here is redacted.
type PokemonView struct {
	InstanceID     string              `json:"instanceId"`
	CardID         string              `json:"cardId"`
	Position       state.BoardPosition `json:"position"`
	CurrentHP      int                 `json:"currentHp"`
	MaxHP          int                 `json:"maxHp"`
	DamageCounters int                 `json:"damageCounters"`
	AttachedEnergy []string            `json:"attachedEnergy,omitempty"`
	StatusEffects  []state.StatusEffect `json:"statusEffects,omitempty"`
	EvolutionChain []string            `json:"evolutionChain,omitempty"`
}

// ViewFor builds the redacted view of the match for one player.
func ViewFor(m *Match, playerID string) (MatchView, error) {
	seat, err := m.SeatOf(playerID)
	if err != nil {
		return MatchView{}, err
	}
	view := MatchView{
		MatchID:      m.ID,
		State:        m.State,
		TurnNumber:   m.Game.TurnNumber,
		Phase:        m.Game.Phase,
		WinnerID:     m.WinnerID,
		EndReason:    m.EndReason,
		You:          buildPlayerView(m, seat, true),
		Opponent:     buildPlayerView(m, seat.Opponent(), false),
		CoinFlip:     m.Game.CoinFlip,
		LastAction:   m.Game.LastAction,
		LegalActions: LegalActions(m, seat),
		UpdatedAt:    m.UpdatedAt,
	}
	if m.CurrentPlayer.Valid() {
		view.CurrentPlayer = m.PlayerID(m.CurrentPlayer)
	}
	if m.FirstPlayer.Valid() {
		view.FirstPlayer = m.PlayerID(m.FirstPlayer)
	}
	return view, nil
}

func buildPlayerView(m *Match, seat state.PlayerIdentifier, owner bool) PlayerView {
	player := m.Game.Player(seat)
	view := PlayerView{
		PlayerID:     m.PlayerID(seat),
		HandCount:    len(player.Hand),
		DeckCount:    len(player.Deck),
		PrizeCount:   len(player.Prizes),
		Discard:      append([]string(nil), player.Discard...),
		EnergyPlayed: player.HasAttachedEnergyThisTurn,
	}
	// Hand contents are the owner's alone once play starts; during the
	// initial board setup both hands are open information.
	if owner || setupRevealWindow(m) {
		view.Hand = append([]string(nil), player.Hand...)
	}
	if player.Active != nil {
		active := buildPokemonView(*player.Active)
		view.Active = &active
	}
	for _, instance := range player.Bench {
		view.Bench = append(view.Bench, buildPokemonView(instance))
	}
	return view
}

// setupRevealWindow reports whether the match is in the initial board
// setup, during which both players place from open hands.
func setupRevealWindow(m *Match) bool {
	switch m.State {
	case MatchSelectActivePokemon, MatchSelectBenchPokemon:
		return true
	default:
		return false
	}
}

func buildPokemonView(instance state.CardInstance) PokemonView {
	return PokemonView{
		InstanceID:     instance.InstanceID,
		CardID:         instance.CardID,
		Position:       instance.Position,
		CurrentHP:      instance.CurrentHP,
		MaxHP:          instance.MaxHP,
		DamageCounters: instance.DamageCounters(),
		AttachedEnergy: append([]string(nil), instance.AttachedEnergy...),
		StatusEffects:  append([]state.StatusEffect(nil), instance.StatusEffects...),
		EvolutionChain: append([]string(nil), instance.EvolutionChain...),
	}
}
