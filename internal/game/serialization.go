package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/3jesters/opentcg-server-go/internal/game/state"
)

// SerializationChecksum is a deterministic fingerprint of a match
// snapshot. Checksums guard against divergent states across replays,
// storage round trips and network transmission.
type SerializationChecksum struct {
	Hash      string `json:"hash"`
	Timestamp string `json:"timestamp"`
	Version   int    `json:"version"`
}

const checksumVersion = 1

// ComputeChecksum hashes the deterministic representation of the
// match. Timestamps, action ids and other non-deterministic fields are
// excluded, so two matches that replayed the same actions produce the
// same hash.
func (m *Match) ComputeChecksum() (*SerializationChecksum, error) {
	data := m.buildDeterministicRepresentation()
	hash := sha256.New()
	if _, err := hash.Write([]byte(data)); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}
	return &SerializationChecksum{
		Hash:      hex.EncodeToString(hash.Sum(nil)),
		Timestamp: m.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		Version:   checksumVersion,
	}, nil
}

// buildDeterministicRepresentation renders the match as a canonical
// string independent of map iteration order and wall-clock values.
func (m *Match) buildDeterministicRepresentation() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "MATCH:%s|%s|%s|%s|%s|%t|%d\n",
		m.ID, m.State, m.FirstPlayer, m.CurrentPlayer, m.WinnerID, m.CoinTossDone, m.FlipCount)
	fmt.Fprintf(&buf, "TURN:%d|%s|%s\n",
		m.Game.TurnNumber, m.Game.Phase, m.Game.CurrentPlayer)

	for _, seat := range []state.PlayerIdentifier{state.PlayerOne, state.PlayerTwo} {
		player := m.Game.Player(seat)
		fmt.Fprintf(&buf, "PLAYER:%s|%d|%d|%d|%d|%t\n",
			seat, len(player.Deck), len(player.Hand), len(player.Prizes),
			len(player.Discard), player.HasAttachedEnergyThisTurn)
		buf.WriteString("  HAND:")
		buf.WriteString(strings.Join(sortedCopy(player.Hand), ","))
		buf.WriteString("\n")
		// Deck and prize order carry gameplay meaning, so they are not
		// sorted.
		buf.WriteString("  DECK:")
		buf.WriteString(strings.Join(player.Deck, ","))
		buf.WriteString("\n")
		buf.WriteString("  PRIZES:")
		buf.WriteString(strings.Join(player.Prizes, ","))
		buf.WriteString("\n")
		buf.WriteString("  DISCARD:")
		buf.WriteString(strings.Join(sortedCopy(player.Discard), ","))
		buf.WriteString("\n")
		for _, instance := range player.AllPokemon() {
			writeInstance(&buf, instance)
		}
	}

	buf.WriteString("HISTORY:")
	for i, entry := range m.Game.ActionHistory {
		fmt.Fprintf(&buf, "%d:%s|%s;", i, entry.Player, entry.ActionType)
	}
	buf.WriteString("\n")

	if flip := m.Game.CoinFlip; flip != nil {
		fmt.Fprintf(&buf, "COINFLIP:%s|%s|%d|%v\n",
			flip.Status, flip.Context, flip.FlipsRequired, flip.Results)
	}
	writeModifierMap(&buf, "PREVENTION", m.Game.DamagePrevention)
	writeModifierMap(&buf, "REDUCTION", m.Game.DamageReduction)
	writeModifierMap(&buf, "BOOSTS", m.Game.AttackBoosts)

	return buf.String()
}

func writeInstance(buf *bytes.Buffer, instance state.CardInstance) {
	fmt.Fprintf(buf, "  POKEMON:%s|%s|%s|%d|%d|%d\n",
		instance.InstanceID, instance.CardID, instance.Position,
		instance.CurrentHP, instance.MaxHP, instance.EvolvedAt)
	buf.WriteString("    ENERGY:")
	buf.WriteString(strings.Join(sortedCopy(instance.AttachedEnergy), ","))
	buf.WriteString("\n")
	statuses := make([]string, len(instance.StatusEffects))
	for i, s := range instance.StatusEffects {
		statuses[i] = string(s)
	}
	sort.Strings(statuses)
	buf.WriteString("    STATUS:")
	buf.WriteString(strings.Join(statuses, ","))
	buf.WriteString("\n")
	buf.WriteString("    CHAIN:")
	buf.WriteString(strings.Join(instance.EvolutionChain, ","))
	buf.WriteString("\n")
}

func writeModifierMap(buf *bytes.Buffer, label string, values map[string]int) {
	if len(values) == 0 {
		return
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(buf, "%s:", label)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s=%d;", k, values[k])
	}
	buf.WriteString("\n")
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

// VerifyChecksum reports whether the match's computed checksum matches
// the expected one.
func (m *Match) VerifyChecksum(expected *SerializationChecksum) (bool, error) {
	computed, err := m.ComputeChecksum()
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}
	return computed.Hash == expected.Hash, nil
}

// SerializeToBytes renders the match as JSON. JSON keeps the persisted
// form readable and lets the storage layer store it in a jsonb column.
func (m *Match) SerializeToBytes() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode match: %w", err)
	}
	return data, nil
}

// DeserializeFromBytes restores a match from its JSON form.
func DeserializeFromBytes(data []byte) (*Match, error) {
	var m Match
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode match: %w", err)
	}
	return &m, nil
}

// ValidateSerializationRoundtrip checks that a match survives a
// serialize/deserialize cycle without data loss by comparing checksums.
func ValidateSerializationRoundtrip(m *Match) error {
	originalChecksum, err := m.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute original checksum: %w", err)
	}
	data, err := m.SerializeToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}
	restored, err := DeserializeFromBytes(data)
	if err != nil {
		return fmt.Errorf("failed to deserialize: %w", err)
	}
	restoredChecksum, err := restored.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute restored checksum: %w", err)
	}
	if originalChecksum.Hash != restoredChecksum.Hash {
		return fmt.Errorf("checksum mismatch: original=%s, restored=%s",
			originalChecksum.Hash, restoredChecksum.Hash)
	}
	return nil
}
