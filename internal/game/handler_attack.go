package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/3jesters/opentcg-server-go/internal/catalog"
	"github.com/3jesters/opentcg-server-go/internal/game/damage"
	"github.com/3jesters/opentcg-server-go/internal/game/energy"
	"github.com/3jesters/opentcg-server-go/internal/game/state"
	"github.com/3jesters/opentcg-server-go/internal/game/text"
)

// ConfusionSelfDamage is dealt to a confused Pokémon whose attack check
// lands tails.
const ConfusionSelfDamage = 30

// maxUntilTailsFlips bounds flip-until-tails sequences so a degenerate
// stream cannot run unbounded.
const maxUntilTailsFlips = 64

// AttackHandler resolves the active Pokémon's attack. Attacks whose
// text calls for coin flips resolve in two steps: the first ATTACK
// stages a pending flip, GENERATE_COIN_FLIP resolves it, and the second
// ATTACK consumes the results. Sleep and confusion interpose a
// status-check flip before the attack itself.
type AttackHandler struct {
	catalog    catalog.CardCatalog
	calculator *damage.Calculator
	logger     *zap.Logger
}

func (h AttackHandler) Handle(ctx context.Context, m *Match, seat state.PlayerIdentifier, data ActionData) (state.GameState, map[string]any, error) {
	if err := requireTurn(m, seat); err != nil {
		return m.Game, nil, err
	}
	if err := requirePhase(m, state.PhaseMain, state.PhaseAttack); err != nil {
		return m.Game, nil, err
	}
	gs := m.Game
	player := gs.Player(seat)
	if player.Active == nil {
		return gs, nil, validationf("no active pokemon to attack with")
	}
	attacker := *player.Active

	gs, attacker, blocked, summary, err := h.checkConditions(m, gs, seat, attacker)
	if err != nil || blocked {
		return gs, summary, err
	}

	defenderSeat := seat.Opponent()
	defenderPlayer := gs.Player(defenderSeat)
	if defenderPlayer.Active == nil {
		return gs, nil, validationf("no defending pokemon")
	}
	defender := *defenderPlayer.Active

	meta, err := h.catalog.Get(ctx, attacker.CardID)
	if err != nil {
		return gs, nil, invariantf("in-play card %s missing from catalog: %v", attacker.CardID, err)
	}
	attack, ok := meta.AttackByName(data.AttackName)
	if !ok {
		return gs, nil, validationf("%s has no attack named %q", meta.Name, data.AttackName)
	}
	attached, err := attachedEnergyTypes(ctx, h.catalog, attacker)
	if err != nil {
		return gs, nil, err
	}
	if err := energy.ValidateCost(attack.Cost, attached); err != nil {
		return gs, nil, validationf("cannot use %s: %v", attack.Name, err)
	}

	// Stage a pending flip when the attack text calls for one and no
	// resolved attack-context flip is waiting.
	var flips []bool
	if text.HasCoinFlip(attack.Text) {
		flip := gs.CoinFlip
		if flip == nil || flip.Context != state.CoinFlipForAttack {
			cfg, ok := text.ParseCoinFlip(attack.Text)
			if !ok {
				return gs, nil, validationf("attack %s has unrecognized coin flip text", attack.Name)
			}
			gs = gs.WithCoinFlip(&state.CoinFlipState{
				Status:        state.CoinFlipReady,
				Context:       state.CoinFlipForAttack,
				FlipsRequired: cfg.Count,
			}).WithPhase(state.PhaseAttack)
			m.Game = gs
			return gs, summaryData("attackName", attack.Name, "coinFlipRequired", true), nil
		}
		if flip.Status != state.CoinFlipResolved {
			return gs, nil, illegalTransitionf("coin flip for %s has not been generated", attack.Name)
		}
		flips = flip.Results
	}

	defenderMeta, err := h.catalog.Get(ctx, defender.CardID)
	if err != nil {
		return gs, nil, invariantf("in-play card %s missing from catalog: %v", defender.CardID, err)
	}
	res, err := h.calculator.Calculate(damage.Input{
		Attacker:       attacker,
		AttackerType:   meta.Type,
		Attack:         attack,
		AttachedEnergy: attached,
		Defender:       defender,
		DefenderMeta:   defenderMeta,
		FlipResults:    flips,
		Game:           gs,
	})
	if err != nil {
		return gs, nil, err
	}

	if h.logger != nil {
		h.logger.Debug("attack resolved",
			zap.String("match_id", m.ID),
			zap.String("attack", attack.Name),
			zap.Int("damage", res.Total),
			zap.Bool("nothing", res.Nothing))
	}

	summary = summaryData(
		"attackName", attack.Name,
		"instanceId", attacker.InstanceID,
		"targetInstanceId", defender.InstanceID,
		"damage", res.Total,
	)
	if len(flips) > 0 {
		summary["coinFlipResults"] = flips
	}
	gs = gs.WithCoinFlip(nil).WithoutDamageModifiers(attacker.InstanceID, defender.InstanceID)

	if res.Nothing {
		summary["attackMissed"] = true
		gs = gs.WithPhase(state.PhaseEnd)
		m.Game = gs
		return gs, summary, nil
	}

	defender = defender.WithDamage(res.Total)
	gs, err = replaceInPlay(gs, defenderSeat, defender)
	if err != nil {
		return gs, nil, err
	}

	// Text-driven riders: a condition on the defender and recoil on the
	// attacker, each gated on heads when the text says so.
	headsGate := !text.HasCoinFlip(attack.Text) || countHeads(flips) > 0
	if name, ok := text.ParseStatusInfliction(attack.Text); ok && headsGate && !defender.IsKnockedOut() {
		condition := state.StatusEffect(name)
		defender = defender.WithStatus(condition)
		gs, err = replaceInPlay(gs, defenderSeat, defender)
		if err != nil {
			return gs, nil, err
		}
		summary["statusApplied"] = string(condition)
	}
	if recoil, ok := text.ParseSelfDamage(attack.Text); ok {
		attacker = attacker.WithDamage(recoil)
		gs, err = replaceInPlay(gs, seat, attacker)
		if err != nil {
			return gs, nil, err
		}
		summary["selfDamage"] = recoil
	}

	if defender.IsKnockedOut() {
		gs, err = discardKnockedOut(gs, defenderSeat, defender)
		if err != nil {
			return gs, nil, err
		}
		summary["isKnockedOut"] = true
		summary["knockoutSource"] = state.KnockoutSourceAttack
		summary["knockedOutPlayer"] = string(defenderSeat)
		summary["knockedOutInstanceId"] = defender.InstanceID
		summary["knockedOutCardId"] = defender.CardID
	}
	if attacker.IsKnockedOut() {
		gs, err = h.recordSelfKnockout(gs, m, seat, attacker)
		if err != nil {
			return gs, nil, err
		}
	}

	gs = gs.WithPhase(state.PhaseEnd)
	m.Game = gs
	return gs, summary, nil
}

// checkConditions handles sleep, paralysis and confusion at the point
// of attack. It returns blocked=true when the attack cannot proceed
// this call, with the summary payload to record (nil when the caller
// should surface the error instead).
func (h AttackHandler) checkConditions(m *Match, gs state.GameState, seat state.PlayerIdentifier, attacker state.CardInstance) (state.GameState, state.CardInstance, bool, map[string]any, error) {
	if attacker.HasStatus(state.StatusParalyzed) {
		if statusAppliedRecently(gs, attacker.InstanceID, state.StatusParalyzed) {
			return gs, attacker, true, nil, validationf("cannot attack while paralyzed")
		}
		attacker = attacker.WithoutStatus(state.StatusParalyzed)
		var err error
		gs, err = replaceInPlay(gs, seat, attacker)
		if err != nil {
			return gs, attacker, true, nil, err
		}
	}

	checked := state.StatusEffect("")
	switch {
	case attacker.HasStatus(state.StatusAsleep):
		if !statusAppliedRecently(gs, attacker.InstanceID, state.StatusAsleep) {
			attacker = attacker.WithoutStatus(state.StatusAsleep)
			var err error
			gs, err = replaceInPlay(gs, seat, attacker)
			return gs, attacker, err != nil, nil, err
		}
		checked = state.StatusAsleep
	case attacker.HasStatus(state.StatusConfused):
		checked = state.StatusConfused
	default:
		return gs, attacker, false, nil, nil
	}

	flip := gs.CoinFlip
	if flip == nil || flip.Context != state.CoinFlipForStatusCheck {
		gs = gs.WithCoinFlip(&state.CoinFlipState{
			Status:        state.CoinFlipReady,
			Context:       state.CoinFlipForStatusCheck,
			FlipsRequired: 1,
		}).WithPhase(state.PhaseAttack)
		m.Game = gs
		return gs, attacker, true, summaryData("coinFlipRequired", true, "statusChecked", string(checked)), nil
	}
	if flip.Status != state.CoinFlipResolved {
		return gs, attacker, true, nil, illegalTransitionf("status check coin flip has not been generated")
	}

	heads := flip.Heads() > 0
	gs = gs.WithCoinFlip(nil)
	if heads {
		if checked == state.StatusAsleep {
			attacker = attacker.WithoutStatus(state.StatusAsleep)
			var err error
			gs, err = replaceInPlay(gs, seat, attacker)
			if err != nil {
				return gs, attacker, true, nil, err
			}
		}
		m.Game = gs
		return gs, attacker, false, nil, nil
	}

	// Tails: asleep stays asleep and the attack simply fails; confusion
	// turns the attack into self damage.
	summary := summaryData("statusCheckFailed", string(checked))
	if checked == state.StatusConfused {
		attacker = attacker.WithDamage(ConfusionSelfDamage)
		var err error
		gs, err = replaceInPlay(gs, seat, attacker)
		if err != nil {
			return gs, attacker, true, nil, err
		}
		summary["selfDamage"] = ConfusionSelfDamage
		if attacker.IsKnockedOut() {
			gs, err = h.recordSelfKnockout(gs, m, seat, attacker)
			if err != nil {
				return gs, attacker, true, nil, err
			}
		}
	}
	gs = gs.WithPhase(state.PhaseEnd)
	m.Game = gs
	return gs, attacker, true, summary, nil
}

// recordSelfKnockout discards a self-knocked-out attacker and appends a
// synthetic log entry attributed to the opponent, who draws the prize.
func (h AttackHandler) recordSelfKnockout(gs state.GameState, m *Match, owner state.PlayerIdentifier, instance state.CardInstance) (state.GameState, error) {
	gs, err := discardKnockedOut(gs, owner, instance)
	if err != nil {
		return gs, err
	}
	gs = gs.WithAction(state.ActionSummary{
		ActionID:   uuid.New().String(),
		Player:     owner.Opponent(),
		ActionType: state.ActionAttack,
		Timestamp:  time.Now().UTC(),
		Data: map[string]any{
			"isKnockedOut":         true,
			"knockoutSource":       state.KnockoutSourceAttack,
			"knockedOutPlayer":     string(owner),
			"knockedOutInstanceId": instance.InstanceID,
			"knockedOutCardId":     instance.CardID,
			"selfKnockout":         true,
		},
	})
	return gs, nil
}

// GenerateCoinFlipHandler produces deterministic flip results: the
// first-player toss during setup, or the pending flip staged by an
// attack or status check.
type GenerateCoinFlipHandler struct{}

func (GenerateCoinFlipHandler) Handle(_ context.Context, m *Match, seat state.PlayerIdentifier, _ ActionData) (state.GameState, map[string]any, error) {
	if m.State == MatchFirstPlayerSelection {
		first, err := m.TossCoin()
		if err != nil {
			return m.Game, nil, err
		}
		return m.Game, summaryData("firstPlayer", string(first)), nil
	}

	if err := requireTurn(m, seat); err != nil {
		return m.Game, nil, err
	}
	flip := m.Game.CoinFlip
	if flip == nil || flip.Status != state.CoinFlipReady {
		return m.Game, nil, illegalTransitionf("no coin flip is pending")
	}

	var results []bool
	if flip.FlipsRequired > 0 {
		results = FlipSequence(m.ID, m.FlipCount, flip.FlipsRequired)
	} else {
		results = FlipUntilTails(m.ID, m.FlipCount, maxUntilTailsFlips)
	}
	m.FlipCount += len(results)

	resolved := &state.CoinFlipState{
		Status:        state.CoinFlipResolved,
		Context:       flip.Context,
		FlipsRequired: flip.FlipsRequired,
		Results:       results,
	}
	gs := m.Game.WithCoinFlip(resolved)
	m.Game = gs
	return gs, summaryData(
		"context", string(flip.Context),
		"results", results,
		"heads", resolved.Heads(),
	), nil
}

func countHeads(flips []bool) int {
	n := 0
	for _, f := range flips {
		if f {
			n++
		}
	}
	return n
}
