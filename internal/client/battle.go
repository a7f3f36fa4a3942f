package client

import (
	"context"
	"sync"
	"time"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/config"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/service"
	"go.uber.org/zap"
)

// BattleAPI is the slice of the REST client the battle flow needs.
type BattleAPI interface {
	StartBattle(ctx context.Context, gameID, oracleID uint) (*service.BattleStart, error)
	BattleAction(ctx context.Context, gameID, oracleID uint, action string) (*service.BattleTurn, error)
	ConfirmDefeat(ctx context.Context, gameID, oracleID uint) (*service.DefeatResult, error)
}

// BattleController drives a battle from the client side. On victory it
// confirms the oracle's defeat with the server exactly once and then
// returns to the menu; on defeat it returns to the menu without
// touching the server again.
type BattleController struct {
	api          BattleAPI
	store        *Store
	outcomeDelay time.Duration
	log          *zap.Logger

	mu       sync.Mutex
	finished bool
}

// NewBattleController wires the battle flow to the store.
func NewBattleController(api BattleAPI, store *Store, cfg *config.ClientConfig, log *zap.Logger) *BattleController {
	return &BattleController{
		api:          api,
		store:        store,
		outcomeDelay: cfg.BattleOutcomeDelay,
		log:          log,
	}
}

// Start opens the battle and moves the store to the battle screen.
func (b *BattleController) Start(ctx context.Context, oracleID uint) error {
	start, err := b.api.StartBattle(ctx, b.store.GameID(), oracleID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.finished = false
	b.mu.Unlock()

	b.store.EnterBattle(oracleID, start)
	return nil
}

// Act executes one turn. When the turn decides the battle, the outcome
// handling runs and further Act calls are refused server side.
func (b *BattleController) Act(ctx context.Context, action string) error {
	oracleID := b.store.OracleID()
	turn, err := b.api.BattleAction(ctx, b.store.GameID(), oracleID, action)
	if err != nil {
		return err
	}

	b.store.ApplyTurn(turn)

	switch turn.Status {
	case "victory":
		b.handleVictory(ctx, oracleID)
	case "defeat":
		b.handleDefeat()
	}
	return nil
}

func (b *BattleController) handleVictory(ctx context.Context, oracleID uint) {
	b.mu.Lock()
	if b.finished {
		b.mu.Unlock()
		return
	}
	b.finished = true
	b.mu.Unlock()

	b.store.SetNotification("Victory! The oracle yields.")

	result, err := b.api.ConfirmDefeat(ctx, b.store.GameID(), oracleID)
	if err != nil {
		b.log.Warn("defeat confirmation failed",
			zap.Uint("oracle_id", oracleID),
			zap.Error(err))
	} else {
		b.store.ApplyProgress(result.Progress.OraclesDefeated,
			result.Progress.CurrentStage, result.Progress.GameCompleted)
	}

	// the battle screen keeps showing the final state under the
	// notification until the delay runs out
	time.AfterFunc(b.outcomeDelay, b.store.ReturnToMenu)
}

func (b *BattleController) handleDefeat() {
	b.mu.Lock()
	if b.finished {
		b.mu.Unlock()
		return
	}
	b.finished = true
	b.mu.Unlock()

	b.store.SetNotification("Defeat! Your army has fallen.")
	time.AfterFunc(b.outcomeDelay, b.store.ReturnToMenu)
}
