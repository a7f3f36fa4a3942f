package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/config"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/service"
	"go.uber.org/zap"
)

// PuzzleAPI is the slice of the REST client the puzzle flow needs.
type PuzzleAPI interface {
	GetPuzzle(ctx context.Context, gameID, oracleID uint) (*service.Puzzle, error)
	SolvePuzzle(ctx context.Context, gameID uint, req service.PuzzleSolutionRequest) (*service.PuzzleResult, error)
}

// PuzzleController drives the riddle screen. Blank submissions are
// rejected locally, hints are rate limited, and timed riddles run a
// one second countdown that stops with the screen.
type PuzzleController struct {
	api        PuzzleAPI
	store      *Store
	solveDelay time.Duration
	cooldown   time.Duration
	tick       time.Duration
	onSolved   func(oracleID uint)
	log        *zap.Logger

	mu        sync.Mutex
	remaining int
	stopTick  chan struct{}
	hintIdx   int
	lastHint  time.Time
	solved    bool
}

// NewPuzzleController wires the puzzle flow to the store. onSolved runs
// once after a correct answer, delayed so the player can read the
// oracle's reaction.
func NewPuzzleController(api PuzzleAPI, store *Store, cfg *config.ClientConfig, onSolved func(oracleID uint), log *zap.Logger) *PuzzleController {
	return &PuzzleController{
		api:        api,
		store:      store,
		solveDelay: cfg.PuzzleSolveDelay,
		cooldown:   cfg.HintCooldown,
		tick:       cfg.PuzzleTickInterval,
		onSolved:   onSolved,
		log:        log,
	}
}

// Open fetches the oracle's riddle and moves to the puzzle screen.
// Timed riddles start their countdown immediately.
func (p *PuzzleController) Open(ctx context.Context, oracleID uint) error {
	puzzle, err := p.api.GetPuzzle(ctx, p.store.GameID(), oracleID)
	if err != nil {
		return err
	}

	p.store.EnterPuzzle(oracleID, puzzle)

	p.mu.Lock()
	p.hintIdx = 0
	p.lastHint = time.Time{}
	p.solved = false
	p.mu.Unlock()

	if puzzle.TimeLimit > 0 {
		p.startCountdown(puzzle.TimeLimit)
	}
	return nil
}

// Submit sends a solution attempt. Blank input never reaches the
// server.
func (p *PuzzleController) Submit(ctx context.Context, solution string) error {
	if strings.TrimSpace(solution) == "" {
		p.store.SetNotification("Please enter a solution")
		return nil
	}

	puzzle, ok := p.store.Puzzle()
	if !ok {
		return nil
	}

	attempt, err := p.api.SolvePuzzle(ctx, p.store.GameID(), service.PuzzleSolutionRequest{
		OracleStateID: puzzle.OracleStateID,
		Solution:      solution,
	})
	if err != nil {
		return err
	}

	if !attempt.Correct {
		p.store.SetNotification(attempt.Message)
		return nil
	}

	p.mu.Lock()
	if p.solved {
		p.mu.Unlock()
		return nil
	}
	p.solved = true
	p.mu.Unlock()

	p.StopCountdown()
	p.store.SetNotification(attempt.Message)

	oracleID := p.store.OracleID()
	time.AfterFunc(p.solveDelay, func() {
		if p.onSolved != nil {
			p.onSolved(oracleID)
		}
	})
	return nil
}

// NextHint reveals the next hint, or reports false while the cooldown
// since the previous one is still running or the hints are spent.
func (p *PuzzleController) NextHint() (string, bool) {
	puzzle, ok := p.store.Puzzle()
	if !ok {
		return "", false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hintIdx >= len(puzzle.Hints) {
		return "", false
	}
	if !p.lastHint.IsZero() && time.Since(p.lastHint) < p.cooldown {
		return "", false
	}

	hint := puzzle.Hints[p.hintIdx]
	p.hintIdx++
	p.lastHint = time.Now()
	return hint, true
}

// Remaining returns the countdown in seconds, zero for untimed riddles.
func (p *PuzzleController) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remaining
}

func (p *PuzzleController) startCountdown(seconds int) {
	p.StopCountdown()

	stop := make(chan struct{})
	p.mu.Lock()
	p.remaining = seconds
	p.stopTick = stop
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(p.tick)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				p.mu.Lock()
				if p.remaining > 0 {
					p.remaining--
				}
				expired := p.remaining == 0
				p.mu.Unlock()
				if expired {
					p.expire()
					return
				}
			}
		}
	}()
}

// expire handles the countdown reaching zero. Running out of time is
// not a failure, the battle simply starts without the riddle's edge.
func (p *PuzzleController) expire() {
	p.mu.Lock()
	if p.solved {
		p.mu.Unlock()
		return
	}
	p.solved = true
	p.stopTick = nil
	p.mu.Unlock()

	p.store.SetNotification("Time is up! The oracle seizes the advantage")
	oracleID := p.store.OracleID()
	if p.onSolved != nil {
		p.onSolved(oracleID)
	}
}

// StopCountdown cancels the countdown, if one is running.
func (p *PuzzleController) StopCountdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopTick != nil {
		close(p.stopTick)
		p.stopTick = nil
	}
}
