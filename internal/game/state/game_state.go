package state

import "time"

// ActionSummary is one entry of the append-only action log. It is the
// authoritative record for "did X already happen this turn" queries and
// for replay.
type ActionSummary struct {
	ActionID   string           `json:"actionId"`
	Player     PlayerIdentifier `json:"player"`
	ActionType PlayerActionType `json:"actionType"`
	Timestamp  time.Time        `json:"timestamp"`

	// Data is the opaque per-action payload (instance ids, damage dealt,
	// knockout markers, flip results).
	Data map[string]any `json:"actionData,omitempty"`
}

// Bool reads a boolean value from the action payload.
func (a ActionSummary) Bool(key string) bool {
	v, ok := a.Data[key].(bool)
	return ok && v
}

// String reads a string value from the action payload.
func (a ActionSummary) String(key string) string {
	v, _ := a.Data[key].(string)
	return v
}

// CoinFlipStatus tracks whether a pending flip has been generated.
type CoinFlipStatus string

const (
	CoinFlipReady    CoinFlipStatus = "READY_TO_FLIP"
	CoinFlipResolved CoinFlipStatus = "RESOLVED"
)

// CoinFlipContext records what the pending flip is for.
type CoinFlipContext string

const (
	CoinFlipForAttack      CoinFlipContext = "ATTACK"
	CoinFlipForStatusCheck CoinFlipContext = "STATUS_CHECK"
)

// CoinFlipState is the in-progress coin flip attached to the game state
// while an action waits on flip results.
type CoinFlipState struct {
	Status        CoinFlipStatus  `json:"status"`
	Context       CoinFlipContext `json:"context"`
	FlipsRequired int             `json:"flipsRequired"`
	Results       []bool          `json:"results,omitempty"`
}

// Heads returns the number of heads among the results.
func (c CoinFlipState) Heads() int {
	n := 0
	for _, r := range c.Results {
		if r {
			n++
		}
	}
	return n
}

// GameState is the complete in-play state of a match, replaced
// wholesale on each mutation. LastAction is always the tail of
// ActionHistory once any action has been recorded.
type GameState struct {
	TurnNumber    int              `json:"turnNumber"`
	Phase         TurnPhase        `json:"turnPhase"`
	CurrentPlayer PlayerIdentifier `json:"currentPlayer"`

	PlayerOne PlayerGameState `json:"playerOne"`
	PlayerTwo PlayerGameState `json:"playerTwo"`

	LastAction    *ActionSummary  `json:"lastAction,omitempty"`
	ActionHistory []ActionSummary `json:"actionHistory,omitempty"`

	CoinFlip *CoinFlipState `json:"coinFlipState,omitempty"`

	// DamagePrevention and DamageReduction map defending instance ids to
	// amounts applied against the next attack, populated by effects.
	DamagePrevention map[string]int `json:"damagePrevention,omitempty"`
	DamageReduction  map[string]int `json:"damageReduction,omitempty"`

	// AttackBoosts maps attacking instance ids to bonus damage added to
	// their next attack before weakness/resistance.
	AttackBoosts map[string]int `json:"attackBoosts,omitempty"`
}

// NewGameState creates the state for turn 1 with both decks loaded.
func NewGameState(playerOne, playerTwo PlayerGameState, first PlayerIdentifier) GameState {
	return GameState{
		TurnNumber:    1,
		Phase:         PhaseDraw,
		CurrentPlayer: first,
		PlayerOne:     playerOne,
		PlayerTwo:     playerTwo,
	}
}

// Player returns the state of the given seat.
func (g GameState) Player(id PlayerIdentifier) PlayerGameState {
	if id == PlayerOne {
		return g.PlayerOne
	}
	return g.PlayerTwo
}

func (g GameState) clone() GameState {
	out := g
	out.PlayerOne = g.PlayerOne.clone()
	out.PlayerTwo = g.PlayerTwo.clone()
	out.ActionHistory = append([]ActionSummary(nil), g.ActionHistory...)
	if g.LastAction != nil {
		last := *g.LastAction
		out.LastAction = &last
	}
	if g.CoinFlip != nil {
		flip := *g.CoinFlip
		flip.Results = append([]bool(nil), g.CoinFlip.Results...)
		out.CoinFlip = &flip
	}
	out.DamagePrevention = cloneIntMap(g.DamagePrevention)
	out.DamageReduction = cloneIntMap(g.DamageReduction)
	out.AttackBoosts = cloneIntMap(g.AttackBoosts)
	return out
}

func cloneIntMap(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// WithPlayer returns a copy with the given seat's state replaced.
func (g GameState) WithPlayer(id PlayerIdentifier, ps PlayerGameState) GameState {
	out := g.clone()
	if id == PlayerOne {
		out.PlayerOne = ps.clone()
	} else {
		out.PlayerTwo = ps.clone()
	}
	return out
}

// WithPlayers returns a copy with both seats replaced.
func (g GameState) WithPlayers(one, two PlayerGameState) GameState {
	out := g.clone()
	out.PlayerOne = one.clone()
	out.PlayerTwo = two.clone()
	return out
}

// WithPhase returns a copy in the given turn phase.
func (g GameState) WithPhase(phase TurnPhase) GameState {
	out := g.clone()
	out.Phase = phase
	return out
}

// WithCurrentPlayer returns a copy with the turn owner changed.
func (g GameState) WithCurrentPlayer(id PlayerIdentifier) GameState {
	out := g.clone()
	out.CurrentPlayer = id
	return out
}

// WithTurnAdvanced returns a copy with the turn number incremented.
func (g GameState) WithTurnAdvanced() GameState {
	out := g.clone()
	out.TurnNumber++
	return out
}

// WithAction returns a copy with the summary appended to the history
// and recorded as the last action.
func (g GameState) WithAction(summary ActionSummary) GameState {
	out := g.clone()
	out.ActionHistory = append(out.ActionHistory, summary)
	last := summary
	out.LastAction = &last
	return out
}

// WithCoinFlip returns a copy carrying the pending coin flip state
// (nil clears it).
func (g GameState) WithCoinFlip(flip *CoinFlipState) GameState {
	out := g.clone()
	if flip == nil {
		out.CoinFlip = nil
		return out
	}
	copied := *flip
	copied.Results = append([]bool(nil), flip.Results...)
	out.CoinFlip = &copied
	return out
}

// WithDamagePrevention returns a copy with a prevention amount recorded
// for the instance.
func (g GameState) WithDamagePrevention(instanceID string, amount int) GameState {
	out := g.clone()
	if out.DamagePrevention == nil {
		out.DamagePrevention = make(map[string]int)
	}
	out.DamagePrevention[instanceID] = amount
	return out
}

// WithDamageReduction returns a copy with a reduction amount recorded
// for the instance.
func (g GameState) WithDamageReduction(instanceID string, amount int) GameState {
	out := g.clone()
	if out.DamageReduction == nil {
		out.DamageReduction = make(map[string]int)
	}
	out.DamageReduction[instanceID] = amount
	return out
}

// WithAttackBoost returns a copy with bonus damage recorded for the
// attacking instance's next attack.
func (g GameState) WithAttackBoost(instanceID string, amount int) GameState {
	out := g.clone()
	if out.AttackBoosts == nil {
		out.AttackBoosts = make(map[string]int)
	}
	out.AttackBoosts[instanceID] = amount
	return out
}

// WithoutDamageModifiers returns a copy with the prevention, reduction
// and boost entries touching the given instances cleared (consumed by
// an attack).
func (g GameState) WithoutDamageModifiers(attackerID, defenderID string) GameState {
	out := g.clone()
	delete(out.DamagePrevention, defenderID)
	delete(out.DamageReduction, defenderID)
	delete(out.AttackBoosts, attackerID)
	return out
}

// ActionsThisTurn returns the history entries after the most recent
// END_TURN boundary, newest first. Actions before the boundary never
// count for "happened this turn" queries.
func (g GameState) ActionsThisTurn() []ActionSummary {
	out := make([]ActionSummary, 0, 8)
	for i := len(g.ActionHistory) - 1; i >= 0; i-- {
		entry := g.ActionHistory[i]
		if entry.ActionType == ActionEndTurn {
			break
		}
		out = append(out, entry)
	}
	return out
}

// HasEvolvedThisTurn reports whether the instance already evolved since
// the most recent END_TURN boundary. The last action is checked first
// as a fast path before scanning the bounded log.
func (g GameState) HasEvolvedThisTurn(instanceID string) bool {
	if g.LastAction != nil &&
		g.LastAction.ActionType == ActionEvolvePokemon &&
		g.LastAction.String("instanceId") == instanceID {
		return true
	}
	for _, entry := range g.ActionsThisTurn() {
		if entry.ActionType == ActionEvolvePokemon && entry.String("instanceId") == instanceID {
			return true
		}
	}
	return false
}

// PlayerWhoEndedLastTurn walks the history backward to the most recent
// END_TURN entry and returns its acting player. Used to derive the next
// turn owner after a between-turns knockout instead of assuming board
// structure.
func (g GameState) PlayerWhoEndedLastTurn() (PlayerIdentifier, bool) {
	for i := len(g.ActionHistory) - 1; i >= 0; i-- {
		if g.ActionHistory[i].ActionType == ActionEndTurn {
			return g.ActionHistory[i].Player, true
		}
	}
	return "", false
}
