package text

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	defendingStatusRe = regexp.MustCompile(`(?i)defending pok[eé]mon is now (poisoned|burned|asleep|paralyzed|confused)`)
	selfDamageRe      = regexp.MustCompile(`(?i)does (\d+) damage to itself`)
)

// ParseStatusInfliction recognizes the "the Defending Pokémon is now X"
// clause and returns the condition name in its canonical upper-case
// form. Whether the clause is gated on a coin flip is the caller's
// concern; this only extracts the condition.
func ParseStatusInfliction(s string) (string, bool) {
	m := defendingStatusRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

// ParseSelfDamage recognizes the "does N damage to itself" recoil
// clause and returns N.
func ParseSelfDamage(s string) (int, bool) {
	m := selfDamageRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, _ := strconv.Atoi(m[1])
	return n, true
}
