package text

import (
	"regexp"
	"strconv"
	"strings"
)

// CoinFlipKind is the closed set of recognized coin-flip patterns.
// Coin-flip language that matches none of the known patterns parses to
// KindUnrecognized so that missing coverage shows up in tests instead
// of silently doing nothing.
type CoinFlipKind string

const (
	KindFixedCount   CoinFlipKind = "FIXED_COUNT"    // flip N coins, damage per heads
	KindUntilTails   CoinFlipKind = "UNTIL_TAILS"    // flip until tails, damage per heads
	KindAllOrNothing CoinFlipKind = "ALL_OR_NOTHING" // if tails, the attack does nothing
	KindBonusOnHeads CoinFlipKind = "BONUS_ON_HEADS" // if heads, extra damage
	KindEffectOnly   CoinFlipKind = "EFFECT_ONLY"    // flip gates an effect, not damage
	KindUnrecognized CoinFlipKind = "UNRECOGNIZED"
)

// CoinFlipConfig is the structured description of a coin-flip rule.
type CoinFlipConfig struct {
	Kind           CoinFlipKind
	Count          int // flips required for fixed-count patterns
	DamagePerHeads int // folded into damage per heads
	BonusOnHeads   int // added once when the flip shows heads
	Text           string
}

var (
	flipCountRe      = regexp.MustCompile(`(?i)flip (\d+|a) coins?`)
	untilTailsRe     = regexp.MustCompile(`(?i)flip a coin until you get tails`)
	perHeadsDamageRe = regexp.MustCompile(`(?i)(\d+) damage (?:times|for each) (?:the number of )?heads`)
	doesNothingRe    = regexp.MustCompile(`(?i)if tails, (?:this attack|it) does nothing`)
	bonusOnHeadsRe   = regexp.MustCompile(`(?i)if heads, this attack does (\d+) more damage`)
)

// HasCoinFlip reports whether the text contains coin-flip language at all.
func HasCoinFlip(text string) bool {
	return strings.Contains(strings.ToLower(text), "flip")
}

// ParseCoinFlip interprets the coin-flip portion of an attack's rules
// text. The second return is false when the text contains no coin-flip
// language.
func ParseCoinFlip(text string) (CoinFlipConfig, bool) {
	if !HasCoinFlip(text) {
		return CoinFlipConfig{}, false
	}

	cfg := CoinFlipConfig{Text: text, Count: 1}

	if untilTailsRe.MatchString(text) {
		cfg.Kind = KindUntilTails
		cfg.Count = 0 // open-ended
		if m := perHeadsDamageRe.FindStringSubmatch(text); m != nil {
			cfg.DamagePerHeads, _ = strconv.Atoi(m[1])
		}
		return cfg, true
	}

	if m := flipCountRe.FindStringSubmatch(text); m != nil {
		if strings.EqualFold(m[1], "a") {
			cfg.Count = 1
		} else {
			cfg.Count, _ = strconv.Atoi(m[1])
		}
	}

	if m := perHeadsDamageRe.FindStringSubmatch(text); m != nil {
		cfg.Kind = KindFixedCount
		cfg.DamagePerHeads, _ = strconv.Atoi(m[1])
		return cfg, true
	}

	if doesNothingRe.MatchString(text) {
		cfg.Kind = KindAllOrNothing
		return cfg, true
	}

	if m := bonusOnHeadsRe.FindStringSubmatch(text); m != nil {
		cfg.Kind = KindBonusOnHeads
		cfg.BonusOnHeads, _ = strconv.Atoi(m[1])
		return cfg, true
	}

	if strings.Contains(strings.ToLower(text), "if heads") {
		// Heads gates a non-damage effect (status, discard, ...).
		cfg.Kind = KindEffectOnly
		return cfg, true
	}

	cfg.Kind = KindUnrecognized
	return cfg, true
}
