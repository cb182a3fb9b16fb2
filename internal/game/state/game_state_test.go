package state

import "testing"

func entry(player PlayerIdentifier, actionType PlayerActionType, data map[string]any) ActionSummary {
	return ActionSummary{
		ActionID:   "a",
		Player:     player,
		ActionType: actionType,
		Data:       data,
	}
}

func TestActionsThisTurnStopsAtEndTurnBoundary(t *testing.T) {
	gs := GameState{}
	gs = gs.WithAction(entry(PlayerOne, ActionAttachEnergy, nil))
	gs = gs.WithAction(entry(PlayerOne, ActionEndTurn, nil))
	gs = gs.WithAction(entry(PlayerTwo, ActionPlayPokemon, nil))
	gs = gs.WithAction(entry(PlayerTwo, ActionAttack, nil))

	actions := gs.ActionsThisTurn()
	if len(actions) != 2 {
		t.Fatalf("Expected 2 actions this turn, got %d", len(actions))
	}
	// Newest first.
	if actions[0].ActionType != ActionAttack || actions[1].ActionType != ActionPlayPokemon {
		t.Errorf("Unexpected order: %s, %s", actions[0].ActionType, actions[1].ActionType)
	}
}

func TestHasEvolvedThisTurn(t *testing.T) {
	gs := GameState{}
	gs = gs.WithAction(entry(PlayerOne, ActionEvolvePokemon, map[string]any{"instanceId": "inst-1"}))

	if !gs.HasEvolvedThisTurn("inst-1") {
		t.Error("Expected evolution detected via last action")
	}
	if gs.HasEvolvedThisTurn("inst-2") {
		t.Error("Other instances did not evolve")
	}

	gs = gs.WithAction(entry(PlayerOne, ActionEndTurn, nil))
	if gs.HasEvolvedThisTurn("inst-1") {
		t.Error("END_TURN boundary should reset the evolution check")
	}
}

func TestPlayerWhoEndedLastTurn(t *testing.T) {
	gs := GameState{}
	if _, ok := gs.PlayerWhoEndedLastTurn(); ok {
		t.Error("Expected no END_TURN in empty history")
	}

	gs = gs.WithAction(entry(PlayerOne, ActionEndTurn, nil))
	gs = gs.WithAction(entry(PlayerTwo, ActionAttack, nil))
	gs = gs.WithAction(entry(PlayerTwo, ActionEndTurn, nil))
	gs = gs.WithAction(entry(PlayerOne, ActionAttachEnergy, nil))

	player, ok := gs.PlayerWhoEndedLastTurn()
	if !ok || player != PlayerTwo {
		t.Errorf("Expected PlayerTwo ended the last turn, got %s (ok=%v)", player, ok)
	}
}

func TestWithActionKeepsLastActionAtTail(t *testing.T) {
	gs := GameState{}
	gs = gs.WithAction(entry(PlayerOne, ActionAttachEnergy, nil))
	gs = gs.WithAction(entry(PlayerOne, ActionAttack, nil))

	if gs.LastAction == nil || gs.LastAction.ActionType != ActionAttack {
		t.Fatal("LastAction should be the newest history entry")
	}
	if len(gs.ActionHistory) != 2 {
		t.Errorf("Expected 2 history entries, got %d", len(gs.ActionHistory))
	}
}

func TestWithoutDamageModifiersClearsConsumedEntries(t *testing.T) {
	gs := GameState{}
	gs = gs.WithDamagePrevention("def-1", 20)
	gs = gs.WithDamageReduction("def-1", 10)
	gs = gs.WithAttackBoost("atk-1", 30)
	gs = gs.WithAttackBoost("atk-2", 40)

	gs = gs.WithoutDamageModifiers("atk-1", "def-1")

	if _, ok := gs.DamagePrevention["def-1"]; ok {
		t.Error("Prevention should be consumed")
	}
	if _, ok := gs.DamageReduction["def-1"]; ok {
		t.Error("Reduction should be consumed")
	}
	if _, ok := gs.AttackBoosts["atk-1"]; ok {
		t.Error("Attacker's boost should be consumed")
	}
	if gs.AttackBoosts["atk-2"] != 40 {
		t.Error("Unrelated boost must survive")
	}
}

func TestCopyOnWriteIsolation(t *testing.T) {
	base := GameState{}
	base = base.WithAction(entry(PlayerOne, ActionAttachEnergy, nil))

	modified := base.WithAction(entry(PlayerOne, ActionAttack, nil))

	if len(base.ActionHistory) != 1 {
		t.Errorf("Base state mutated: expected 1 entry, got %d", len(base.ActionHistory))
	}
	if len(modified.ActionHistory) != 2 {
		t.Errorf("Expected 2 entries in the copy, got %d", len(modified.ActionHistory))
	}
}
