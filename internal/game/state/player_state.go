package state

import "fmt"

// PlayerGameState is one player's side of the board. It is an immutable
// value: every mutation goes through a With producer returning a copy.
// The deck is ordered with the draw position at the head.
type PlayerGameState struct {
	Deck    []string       `json:"deck"`
	Hand    []string       `json:"hand"`
	Active  *CardInstance  `json:"activePokemon,omitempty"`
	Bench   []CardInstance `json:"bench,omitempty"`
	Prizes  []string       `json:"prizeCards,omitempty"`
	Discard []string       `json:"discardPile,omitempty"`

	HasAttachedEnergyThisTurn bool `json:"hasAttachedEnergyThisTurn,omitempty"`
}

// NewPlayerGameState creates a player state holding the given deck order.
func NewPlayerGameState(deck []string) PlayerGameState {
	return PlayerGameState{Deck: append([]string(nil), deck...)}
}

func (p PlayerGameState) clone() PlayerGameState {
	out := p
	out.Deck = append([]string(nil), p.Deck...)
	out.Hand = append([]string(nil), p.Hand...)
	out.Prizes = append([]string(nil), p.Prizes...)
	out.Discard = append([]string(nil), p.Discard...)
	out.Bench = make([]CardInstance, len(p.Bench))
	for i := range p.Bench {
		out.Bench[i] = p.Bench[i].clone()
	}
	if p.Active != nil {
		active := p.Active.clone()
		out.Active = &active
	}
	return out
}

// WithDrawnCards returns a copy with n cards moved from the top of the
// deck to the hand, along with the drawn ids. Drawing from an empty
// deck is an error (deck-out is the caller's win-condition concern).
func (p PlayerGameState) WithDrawnCards(n int) (PlayerGameState, []string, error) {
	if n > len(p.Deck) {
		return p, nil, fmt.Errorf("cannot draw %d cards: deck has %d", n, len(p.Deck))
	}
	out := p.clone()
	drawn := out.Deck[:n]
	out.Hand = append(out.Hand, drawn...)
	out.Deck = out.Deck[n:]
	return out, append([]string(nil), drawn...), nil
}

// WithCardRemovedFromHand returns a copy with the first occurrence of
// cardID removed from the hand.
func (p PlayerGameState) WithCardRemovedFromHand(cardID string) (PlayerGameState, error) {
	out := p.clone()
	var ok bool
	out.Hand, ok = removeFirst(out.Hand, cardID)
	if !ok {
		return p, fmt.Errorf("card %s is not in hand", cardID)
	}
	return out, nil
}

// WithCardsAddedToHand returns a copy with the ids appended to the hand.
func (p PlayerGameState) WithCardsAddedToHand(cardIDs ...string) PlayerGameState {
	out := p.clone()
	out.Hand = append(out.Hand, cardIDs...)
	return out
}

// WithCardRemovedFromDeck returns a copy with the first occurrence of
// cardID removed from the deck (deck searches).
func (p PlayerGameState) WithCardRemovedFromDeck(cardID string) (PlayerGameState, error) {
	out := p.clone()
	var ok bool
	out.Deck, ok = removeFirst(out.Deck, cardID)
	if !ok {
		return p, fmt.Errorf("card %s is not in deck", cardID)
	}
	return out, nil
}

// WithCardRemovedFromDiscard returns a copy with the first occurrence
// of cardID removed from the discard pile.
func (p PlayerGameState) WithCardRemovedFromDiscard(cardID string) (PlayerGameState, error) {
	out := p.clone()
	var ok bool
	out.Discard, ok = removeFirst(out.Discard, cardID)
	if !ok {
		return p, fmt.Errorf("card %s is not in the discard pile", cardID)
	}
	return out, nil
}

// WithDiscarded returns a copy with the ids appended to the discard pile.
func (p PlayerGameState) WithDiscarded(cardIDs ...string) PlayerGameState {
	out := p.clone()
	out.Discard = append(out.Discard, cardIDs...)
	return out
}

// WithPrizes returns a copy with the given prize cards set.
func (p PlayerGameState) WithPrizes(cardIDs []string) PlayerGameState {
	out := p.clone()
	out.Prizes = append([]string(nil), cardIDs...)
	return out
}

// WithPrizeTaken returns a copy with the prize at index removed and the
// taken card id.
func (p PlayerGameState) WithPrizeTaken(index int) (PlayerGameState, string, error) {
	if index < 0 || index >= len(p.Prizes) {
		return p, "", fmt.Errorf("prize index %d out of range [0,%d)", index, len(p.Prizes))
	}
	out := p.clone()
	taken := out.Prizes[index]
	out.Prizes = append(out.Prizes[:index], out.Prizes[index+1:]...)
	return out, taken, nil
}

// WithActive returns a copy with the active Pokémon replaced.
func (p PlayerGameState) WithActive(instance *CardInstance) PlayerGameState {
	out := p.clone()
	if instance == nil {
		out.Active = nil
		return out
	}
	active := instance.clone()
	active.Position = PositionActive
	out.Active = &active
	return out
}

// WithBenchAdded returns a copy with the instance placed on the first
// open bench slot.
func (p PlayerGameState) WithBenchAdded(instance CardInstance) (PlayerGameState, error) {
	if len(p.Bench) >= BenchSize {
		return p, fmt.Errorf("bench is full (%d Pokémon)", BenchSize)
	}
	out := p.clone()
	pos, err := BenchPosition(len(out.Bench))
	if err != nil {
		return p, err
	}
	out.Bench = append(out.Bench, instance.WithPosition(pos))
	return out, nil
}

// WithBenchRemoved returns a copy with the benched instance removed and
// the remaining bench positions renumbered, plus the removed instance.
func (p PlayerGameState) WithBenchRemoved(instanceID string) (PlayerGameState, CardInstance, error) {
	idx := -1
	for i := range p.Bench {
		if p.Bench[i].InstanceID == instanceID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return p, CardInstance{}, fmt.Errorf("instance %s is not on the bench", instanceID)
	}
	out := p.clone()
	removed := out.Bench[idx]
	out.Bench = append(out.Bench[:idx], out.Bench[idx+1:]...)
	for i := range out.Bench {
		pos, err := BenchPosition(i)
		if err != nil {
			return p, CardInstance{}, err
		}
		out.Bench[i].Position = pos
	}
	return out, removed, nil
}

// WithPokemonReplaced returns a copy with the in-play instance matching
// updated.InstanceID replaced, wherever it sits.
func (p PlayerGameState) WithPokemonReplaced(updated CardInstance) (PlayerGameState, error) {
	out := p.clone()
	if out.Active != nil && out.Active.InstanceID == updated.InstanceID {
		replacement := updated.clone()
		replacement.Position = PositionActive
		out.Active = &replacement
		return out, nil
	}
	for i := range out.Bench {
		if out.Bench[i].InstanceID == updated.InstanceID {
			replacement := updated.clone()
			replacement.Position = out.Bench[i].Position
			out.Bench[i] = replacement
			return out, nil
		}
	}
	return p, fmt.Errorf("instance %s is not in play", updated.InstanceID)
}

// WithAttachedEnergyFlag returns a copy with the once-per-turn energy
// attachment flag set.
func (p PlayerGameState) WithAttachedEnergyFlag(attached bool) PlayerGameState {
	out := p.clone()
	out.HasAttachedEnergyThisTurn = attached
	return out
}

// PokemonAt returns the in-play instance at the position, if any.
func (p PlayerGameState) PokemonAt(position BoardPosition) (CardInstance, bool) {
	if position == PositionActive {
		if p.Active == nil {
			return CardInstance{}, false
		}
		return *p.Active, true
	}
	for _, b := range p.Bench {
		if b.Position == position {
			return b, true
		}
	}
	return CardInstance{}, false
}

// PokemonByInstanceID returns the in-play instance with the given id.
func (p PlayerGameState) PokemonByInstanceID(instanceID string) (CardInstance, bool) {
	if p.Active != nil && p.Active.InstanceID == instanceID {
		return *p.Active, true
	}
	for _, b := range p.Bench {
		if b.InstanceID == instanceID {
			return b, true
		}
	}
	return CardInstance{}, false
}

// AllPokemon returns the active Pokémon (first, when present) followed
// by the bench.
func (p PlayerGameState) AllPokemon() []CardInstance {
	out := make([]CardInstance, 0, 1+len(p.Bench))
	if p.Active != nil {
		out = append(out, *p.Active)
	}
	out = append(out, p.Bench...)
	return out
}

// HasPokemonInPlay reports whether the player has any Pokémon in play.
func (p PlayerGameState) HasPokemonInPlay() bool {
	return p.Active != nil || len(p.Bench) > 0
}
