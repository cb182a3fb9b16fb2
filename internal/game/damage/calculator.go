// Package damage computes final attack damage by composing the printed
// damage string, coin-flip results, text-derived bonus/malus rules,
// weakness/resistance and in-state damage modifiers, in a fixed order.
package damage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/3jesters/opentcg-server-go/internal/catalog"
	"github.com/3jesters/opentcg-server-go/internal/game/energy"
	"github.com/3jesters/opentcg-server-go/internal/game/state"
	"github.com/3jesters/opentcg-server-go/internal/game/text"
	"go.uber.org/zap"
)

// Input carries everything one damage computation needs. AttachedEnergy
// holds the resolved energy types attached to the attacker; FlipResults
// holds the already-generated coin flips when the attack text calls for
// them.
type Input struct {
	Attacker       state.CardInstance
	AttackerType   catalog.EnergyType
	Attack         catalog.Attack
	AttachedEnergy []catalog.EnergyType
	Defender       state.CardInstance
	DefenderMeta   catalog.CardMetadata
	FlipResults    []bool
	Game           state.GameState
}

// Result is the computed damage with its intermediate components, kept
// for logging and action summaries.
type Result struct {
	Total             int
	Base              int
	CoinDamage        int
	EnergyBonus       int
	Reduction         int
	WeaknessApplied   bool
	ResistanceApplied bool

	// Nothing is set when an all-or-nothing coin flip failed; Total is 0
	// and no side effects of the attack apply.
	Nothing bool
}

// Calculator composes the damage pipeline.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator creates a damage calculator.
func NewCalculator(logger *zap.Logger) *Calculator {
	return &Calculator{logger: logger}
}

// Calculate runs the pipeline in strict order: base parse, coin flips,
// "+" bonus (capped), "-" malus (clamped), weakness, resistance,
// in-state prevention/reduction, final clamp at zero. Energy bonus and
// malus resolve before weakness so weakness multiplies the fully
// adjusted value.
func (c *Calculator) Calculate(in Input) (Result, error) {
	base, modifier, err := text.ParseDamage(in.Attack.Damage)
	if err != nil {
		return Result{}, err
	}
	res := Result{Base: base}
	running := base

	if cfg, ok := text.ParseCoinFlip(in.Attack.Text); ok {
		running, res, err = c.applyCoinFlip(cfg, modifier, running, res, in)
		if err != nil {
			return Result{}, err
		}
		if res.Nothing {
			return res, nil
		}
	}

	switch modifier {
	case text.DamagePlus:
		bonus, err := c.energyBonus(in)
		if err != nil {
			return Result{}, err
		}
		res.EnergyBonus = bonus
		running += bonus
	case text.DamageMinus:
		rule, ok := text.ParseReduction(in.Attack.Text)
		if !ok {
			return Result{}, fmt.Errorf("attack %q has '-' damage but no recognized reduction rule", in.Attack.Name)
		}
		reduction := in.Attacker.DamageCounters() * rule.PerCounter
		if reduction > running {
			reduction = running
		}
		res.Reduction = reduction
		running -= reduction
	}

	if boost, ok := in.Game.AttackBoosts[in.Attacker.InstanceID]; ok && running > 0 {
		running += boost
	}

	if in.DefenderMeta.Weakness != nil && in.DefenderMeta.Weakness.Type == in.AttackerType && running > 0 {
		running, err = applyTypeModifier(running, in.DefenderMeta.Weakness.Modifier)
		if err != nil {
			return Result{}, fmt.Errorf("weakness modifier: %w", err)
		}
		res.WeaknessApplied = true
	}

	if in.DefenderMeta.Resistance != nil && in.DefenderMeta.Resistance.Type == in.AttackerType && running > 0 {
		running, err = applyTypeModifier(running, in.DefenderMeta.Resistance.Modifier)
		if err != nil {
			return Result{}, fmt.Errorf("resistance modifier: %w", err)
		}
		res.ResistanceApplied = true
	}

	if prevented, ok := in.Game.DamagePrevention[in.Defender.InstanceID]; ok {
		running -= prevented
	}
	if reduced, ok := in.Game.DamageReduction[in.Defender.InstanceID]; ok {
		running -= reduced
	}

	if running < 0 {
		running = 0
	}
	res.Total = running

	if c.logger != nil {
		c.logger.Debug("damage computed",
			zap.String("attack", in.Attack.Name),
			zap.Int("base", res.Base),
			zap.Int("coin_damage", res.CoinDamage),
			zap.Int("energy_bonus", res.EnergyBonus),
			zap.Int("reduction", res.Reduction),
			zap.Bool("weakness", res.WeaknessApplied),
			zap.Bool("resistance", res.ResistanceApplied),
			zap.Int("total", res.Total),
		)
	}
	return res, nil
}

// applyCoinFlip folds resolved flips into the running damage.
func (c *Calculator) applyCoinFlip(cfg text.CoinFlipConfig, modifier text.DamageModifier, running int, res Result, in Input) (int, Result, error) {
	switch cfg.Kind {
	case text.KindUnrecognized:
		return 0, res, fmt.Errorf("attack %q has unrecognized coin flip text: %s", in.Attack.Name, cfg.Text)
	case text.KindEffectOnly:
		// Flip gates an effect, not the damage number.
		return running, res, nil
	}

	if len(in.FlipResults) == 0 {
		return 0, res, fmt.Errorf("attack %q requires coin flip results before damage resolution", in.Attack.Name)
	}
	heads := 0
	for _, r := range in.FlipResults {
		if r {
			heads++
		}
	}

	switch cfg.Kind {
	case text.KindFixedCount, text.KindUntilTails:
		perHeads := cfg.DamagePerHeads
		if perHeads == 0 && modifier == text.DamageTimes {
			perHeads = running
		}
		res.CoinDamage = heads * perHeads
		if modifier == text.DamageTimes {
			running = res.CoinDamage
		} else {
			running += res.CoinDamage
		}
	case text.KindAllOrNothing:
		if heads == 0 {
			res.Nothing = true
			res.Total = 0
			return 0, res, nil
		}
	case text.KindBonusOnHeads:
		if heads == len(in.FlipResults) {
			res.CoinDamage = cfg.BonusOnHeads
			running += cfg.BonusOnHeads
		}
	}
	return running, res, nil
}

// energyBonus computes the "+" attack bonus: qualifying surplus energy
// capped at the attack's declared bonus cap, times the per-unit damage.
func (c *Calculator) energyBonus(in Input) (int, error) {
	rule, ok := text.ParseBonus(in.Attack.Text)
	if !ok {
		return 0, fmt.Errorf("attack %q has '+' damage but no recognized bonus rule", in.Attack.Name)
	}
	extra := energy.QualifyingExtra(in.Attack.Cost, in.AttachedEnergy, rule.EnergyType)
	if limit := in.Attack.EnergyBonusCap; limit > 0 && extra > limit {
		extra = limit
	}
	return extra * rule.PerUnit, nil
}

// applyTypeModifier applies a printed weakness/resistance modifier
// ("×2", "+10", "-30") to a damage value.
func applyTypeModifier(damage int, modifier string) (int, error) {
	m := strings.TrimSpace(modifier)
	if m == "" {
		return damage * 2, nil // bare weakness defaults to double
	}
	switch {
	case strings.HasPrefix(m, "×"), strings.HasPrefix(m, "x"), strings.HasPrefix(m, "X"):
		factor, err := strconv.Atoi(strings.TrimLeft(m, "×xX"))
		if err != nil {
			return 0, fmt.Errorf("unparseable multiplier %q", modifier)
		}
		return damage * factor, nil
	case strings.HasPrefix(m, "+"):
		add, err := strconv.Atoi(strings.TrimPrefix(m, "+"))
		if err != nil {
			return 0, fmt.Errorf("unparseable additive modifier %q", modifier)
		}
		return damage + add, nil
	case strings.HasPrefix(m, "-"):
		sub, err := strconv.Atoi(strings.TrimPrefix(m, "-"))
		if err != nil {
			return 0, fmt.Errorf("unparseable subtractive modifier %q", modifier)
		}
		damage -= sub
		if damage < 0 {
			damage = 0
		}
		return damage, nil
	default:
		return 0, fmt.Errorf("unknown type modifier %q", modifier)
	}
}
