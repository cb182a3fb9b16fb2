package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/3jesters/opentcg-server-go/internal/catalog"
	"github.com/3jesters/opentcg-server-go/internal/game/damage"
	"github.com/3jesters/opentcg-server-go/internal/game/effects"
	"github.com/3jesters/opentcg-server-go/internal/game/state"
	"github.com/3jesters/opentcg-server-go/internal/game/status"
)

// MatchRepository is the persistence port the orchestrator drives.
// Update must reject writes against a stale Version.
type MatchRepository interface {
	Create(ctx context.Context, m *Match) error
	Get(ctx context.Context, id string) (*Match, error)
	Update(ctx context.Context, m *Match) error
}

// DeckSource resolves deck ids to ordered card id lists.
type DeckSource interface {
	Deck(ctx context.Context, deckID string) ([]string, error)
}

// Rules holds the table-stakes numbers of the format.
type Rules struct {
	DeckSize   int
	PrizeCount int
	HandSize   int
}

// DefaultRules returns the standard format numbers.
func DefaultRules() Rules {
	return Rules{DeckSize: 60, PrizeCount: 6, HandSize: 7}
}

// Orchestrator is the single entry point for match mutations: it loads
// the match, checks seat and legality, dispatches to the action
// handler, appends exactly one log entry for the action, runs
// between-turns and win-condition processing, and persists the result.
type Orchestrator struct {
	repo     MatchRepository
	decks    DeckSource
	catalog  catalog.CardCatalog
	status   *status.Processor
	handlers map[state.PlayerActionType]ActionHandler
	rules    Rules
	logger   *zap.Logger
	now      func() time.Time
	recorder *ReplayRecorder
}

// SetReplayRecorder enables replay recording for matches the
// orchestrator drives.
func (o *Orchestrator) SetReplayRecorder(rr *ReplayRecorder) {
	o.recorder = rr
}

// NewOrchestrator wires the engine together.
func NewOrchestrator(repo MatchRepository, decks DeckSource, cat catalog.CardCatalog, rules Rules, logger *zap.Logger) *Orchestrator {
	calc := damage.NewCalculator(logger)
	handlers := map[state.PlayerActionType]ActionHandler{
		state.ActionAttack:           AttackHandler{catalog: cat, calculator: calc, logger: logger},
		state.ActionEvolvePokemon:    EvolvePokemonHandler{catalog: cat},
		state.ActionAttachEnergy:     AttachEnergyHandler{catalog: cat},
		state.ActionPlayPokemon:      PlayPokemonHandler{catalog: cat},
		state.ActionRetreat:          RetreatHandler{catalog: cat},
		state.ActionSetActivePokemon: SetActivePokemonHandler{catalog: cat},
		state.ActionSelectPrize:      SelectPrizeHandler{},
		state.ActionEndTurn:          EndTurnHandler{},
		state.ActionGenerateCoinFlip: GenerateCoinFlipHandler{},
		state.ActionUseAbility:       UseAbilityHandler{catalog: cat, executor: effects.NewAbilityExecutor(cat, logger)},
		state.ActionUseTrainer:       UseTrainerHandler{catalog: cat, executor: effects.NewTrainerExecutor(cat, logger)},
		state.ActionConcede:          ConcedeHandler{},
		state.ActionConfirmSetup:     ConfirmSetupHandler{},
	}
	return &Orchestrator{
		repo:     repo,
		decks:    decks,
		catalog:  cat,
		status:   status.NewProcessor(logger),
		handlers: handlers,
		rules:    rules,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateMatch opens a new match for its first player.
func (o *Orchestrator) CreateMatch(ctx context.Context, playerID, deckID string) (*Match, error) {
	if playerID == "" || deckID == "" {
		return nil, validationf("playerId and deckId are required")
	}
	if err := o.validateDeck(ctx, deckID); err != nil {
		return nil, err
	}
	m := NewMatch(uuid.New().String(), playerID, deckID, o.now().UTC())
	if err := m.Open(); err != nil {
		return nil, err
	}
	if err := o.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	if o.recorder != nil {
		o.recorder.StartRecording(m.ID)
	}
	if o.logger != nil {
		o.logger.Info("match created",
			zap.String("match_id", m.ID),
			zap.String("player_id", playerID))
	}
	return m, nil
}

// JoinMatch seats the second player and runs deck validation for both
// decks, advancing to mutual approval when both pass.
func (o *Orchestrator) JoinMatch(ctx context.Context, matchID, playerID, deckID string) (*Match, error) {
	m, err := o.repo.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if err := o.validateDeck(ctx, deckID); err != nil {
		return nil, err
	}
	if err := m.Join(playerID, deckID); err != nil {
		return nil, err
	}
	for _, seat := range []state.PlayerIdentifier{state.PlayerOne, state.PlayerTwo} {
		if err := m.MarkDeckValidated(seat); err != nil {
			return nil, err
		}
	}
	return o.persist(ctx, m)
}

// ApproveMatch records one player's approval; the second approval deals
// opening hands, places prizes and opens active selection.
func (o *Orchestrator) ApproveMatch(ctx context.Context, matchID, playerID string) (*Match, error) {
	m, err := o.repo.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	seat, err := m.SeatOf(playerID)
	if err != nil {
		return nil, err
	}
	if err := m.Approve(seat); err != nil {
		return nil, err
	}
	if m.State == MatchDrawingCards {
		if err := o.dealOpeningState(ctx, m); err != nil {
			return nil, err
		}
	}
	return o.persist(ctx, m)
}

// ExecuteAction runs one player action end to end. On success exactly
// one ActionSummary for the action is appended; failed actions leave
// the match untouched.
func (o *Orchestrator) ExecuteAction(ctx context.Context, matchID, playerID string, actionType state.PlayerActionType, data ActionData) (*Match, error) {
	m, err := o.repo.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.State.Terminal() {
		return nil, illegalTransitionf("match %s is over", matchID)
	}
	seat, err := m.SeatOf(playerID)
	if err != nil {
		return nil, err
	}
	handler, ok := o.handlers[actionType]
	if !ok {
		return nil, validationf("unknown action type %s", actionType)
	}
	if !isActionLegal(m, seat, actionType) {
		return nil, illegalTransitionf("action %s is not legal for %s in state %s phase %s",
			actionType, playerID, m.State, m.Game.Phase)
	}

	gs, payload, err := handler.Handle(ctx, m, seat, data)
	if err != nil {
		if o.logger != nil {
			o.logger.Debug("action rejected",
				zap.String("match_id", matchID),
				zap.String("action", string(actionType)),
				zap.Error(err))
		}
		return nil, err
	}
	m.Game = gs.WithAction(state.ActionSummary{
		ActionID:   uuid.New().String(),
		Player:     seat,
		ActionType: actionType,
		Timestamp:  o.now().UTC(),
		Data:       payload,
	})

	if err := o.postProcess(ctx, m, actionType); err != nil {
		return nil, err
	}
	if o.recorder != nil {
		o.recorder.RecordState(m.ID, m.Game)
		if m.State.Terminal() {
			if err := o.recorder.SaveReplay(m.ID); err != nil && o.logger != nil {
				o.logger.Warn("failed to save replay",
					zap.String("match_id", m.ID),
					zap.Error(err))
			}
		}
	}
	return o.persist(ctx, m)
}

// postProcess runs everything an action triggers beyond its own
// mutation: between-turns status ticks after END_TURN, the turn
// handover once pending selections drain, the automatic draw whenever a
// turn opens, and the win-condition sweep.
func (o *Orchestrator) postProcess(ctx context.Context, m *Match, actionType state.PlayerActionType) error {
	if actionType == state.ActionEndTurn && m.State == MatchBetweenTurns {
		if err := o.processBetweenTurns(m); err != nil {
			return err
		}
	}
	if m.State == MatchBetweenTurns &&
		(actionType == state.ActionSelectPrize || actionType == state.ActionSetActivePokemon) &&
		!hasPendingSelections(m) {
		if err := o.advanceTurn(m); err != nil {
			return err
		}
	}
	if m.State == MatchPlayerTurn && m.Game.Phase == state.PhaseDraw {
		if err := o.performDraw(m); err != nil {
			return err
		}
	}
	o.checkWinConditions(m)
	return nil
}

// processBetweenTurns ticks poison and burn, discards status knockouts
// and either redirects into active replacement or hands the turn over.
// A knockout redirects the phase to END before the replacement
// selection opens, so the phase sequence matches an attack knockout's.
func (o *Orchestrator) processBetweenTurns(m *Match) error {
	gs, knockouts := o.status.ProcessEndOfTurn(m.Game, o.now().UTC())
	m.Game = gs
	for _, ko := range knockouts {
		instance, ok := m.Game.Player(ko.Owner).PokemonByInstanceID(ko.InstanceID)
		if !ok {
			return invariantf("status knockout %s is not in play for %s", ko.InstanceID, ko.Owner)
		}
		gs, err := discardKnockedOut(m.Game, ko.Owner, instance)
		if err != nil {
			return err
		}
		m.Game = gs
	}
	if len(knockouts) > 0 {
		m.Game = m.Game.WithPhase(state.PhaseEnd)
		if o.logger != nil {
			o.logger.Info("status knockouts",
				zap.String("match_id", m.ID),
				zap.Int("count", len(knockouts)))
		}
	}
	o.checkWinConditions(m)
	if m.State.Terminal() {
		return nil
	}
	if needsActiveReplacement(m.Game, state.PlayerOne) || needsActiveReplacement(m.Game, state.PlayerTwo) {
		m.Game = m.Game.WithPhase(state.PhaseSelectActive)
	}
	if hasPendingSelections(m) {
		return nil
	}
	return o.advanceTurn(m)
}

// advanceTurn hands the turn to the opponent of whoever ended the last
// one. The next turn opens in the draw phase; performDraw finishes it.
func (o *Orchestrator) advanceTurn(m *Match) error {
	next := m.CurrentPlayer.Opponent()
	if ender, ok := m.Game.PlayerWhoEndedLastTurn(); ok {
		next = ender.Opponent()
	}
	if err := m.BeginNextTurn(next); err != nil {
		return err
	}
	m.Game = m.Game.WithTurnAdvanced().WithCurrentPlayer(next).WithPhase(state.PhaseDraw)
	return nil
}

// performDraw draws the turn-opening card. An empty deck loses the
// match on the spot.
func (o *Orchestrator) performDraw(m *Match) error {
	seat := m.Game.CurrentPlayer
	player, _, err := m.Game.Player(seat).WithDrawnCards(1)
	if err != nil {
		winner := m.PlayerID(seat.Opponent())
		if o.logger != nil {
			o.logger.Info("deck exhausted",
				zap.String("match_id", m.ID),
				zap.String("player_id", m.PlayerID(seat)))
		}
		return m.End(winner, "deck exhausted")
	}
	m.Game = m.Game.WithPlayer(seat, player).WithPhase(state.PhaseMain)
	return nil
}

// checkWinConditions ends the match when a player has taken all prizes
// or the opponent has no Pokémon left in play.
func (o *Orchestrator) checkWinConditions(m *Match) {
	if !m.CoinTossDone || m.State.Terminal() {
		return
	}
	for _, seat := range []state.PlayerIdentifier{state.PlayerOne, state.PlayerTwo} {
		opponent := seat.Opponent()
		if len(m.Game.Player(seat).Prizes) == 0 {
			_ = m.End(m.PlayerID(seat), "all prizes taken")
			return
		}
		if !m.Game.Player(opponent).HasPokemonInPlay() {
			_ = m.End(m.PlayerID(seat), "opponent has no pokemon in play")
			return
		}
	}
}

// dealOpeningState builds both players' zones from their decks, draws
// opening hands and places the prize cards.
func (o *Orchestrator) dealOpeningState(ctx context.Context, m *Match) error {
	deckOne, err := o.decks.Deck(ctx, m.PlayerOneDeckID)
	if err != nil {
		return err
	}
	deckTwo, err := o.decks.Deck(ctx, m.PlayerTwoDeckID)
	if err != nil {
		return err
	}
	playerOne := state.NewPlayerGameState(deckOne)
	playerTwo := state.NewPlayerGameState(deckTwo)
	playerOne, _, err = playerOne.WithDrawnCards(o.rules.HandSize)
	if err != nil {
		return err
	}
	playerTwo, _, err = playerTwo.WithDrawnCards(o.rules.HandSize)
	if err != nil {
		return err
	}
	gs := state.NewGameState(playerOne, playerTwo, state.PlayerOne)
	if err := m.SetInitialGameState(gs); err != nil {
		return err
	}
	return m.PlacePrizes(o.rules.PrizeCount)
}

// validateDeck checks deck size, that every card resolves in the
// catalog, and that the deck can field a starting Pokémon.
func (o *Orchestrator) validateDeck(ctx context.Context, deckID string) error {
	cards, err := o.decks.Deck(ctx, deckID)
	if err != nil {
		return validationf("deck %s: %v", deckID, err)
	}
	if o.rules.DeckSize > 0 && len(cards) != o.rules.DeckSize {
		return validationf("deck %s has %d cards, want %d", deckID, len(cards), o.rules.DeckSize)
	}
	hasBasic := false
	for _, cardID := range cards {
		meta, err := o.catalog.Get(ctx, cardID)
		if err != nil {
			return validationf("deck %s contains unknown card %s", deckID, cardID)
		}
		if meta.IsBasic() {
			hasBasic = true
		}
	}
	if !hasBasic {
		return validationf("deck %s has no basic pokemon", deckID)
	}
	return nil
}

// Match returns the current match without mutating it.
func (o *Orchestrator) Match(ctx context.Context, matchID string) (*Match, error) {
	return o.repo.Get(ctx, matchID)
}

func (o *Orchestrator) persist(ctx context.Context, m *Match) (*Match, error) {
	m.UpdatedAt = o.now().UTC()
	if err := o.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
