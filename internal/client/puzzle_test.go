package client

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/config"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePuzzleAPI struct {
	puzzle     *service.Puzzle
	answer     string
	solveCalls int32
	attempts   int32
}

func (f *fakePuzzleAPI) GetPuzzle(ctx context.Context, gameID, oracleID uint) (*service.Puzzle, error) {
	return f.puzzle, nil
}

func (f *fakePuzzleAPI) SolvePuzzle(ctx context.Context, gameID uint, req service.PuzzleSolutionRequest) (*service.PuzzleResult, error) {
	atomic.AddInt32(&f.solveCalls, 1)
	attempts := int(atomic.AddInt32(&f.attempts, 1))
	if req.Solution == f.answer {
		return &service.PuzzleResult{Correct: true, Attempts: attempts, Message: "The oracle bows"}, nil
	}
	return &service.PuzzleResult{Correct: false, Attempts: attempts, Message: "The oracle shakes its head"}, nil
}

func puzzleTestConfig() *config.ClientConfig {
	return &config.ClientConfig{
		PuzzleSolveDelay:    20 * time.Millisecond,
		HintCooldown:        50 * time.Millisecond,
		PuzzleTickInterval:  10 * time.Millisecond,
		NotificationTimeout: time.Second,
	}
}

func newPuzzleFixture(puzzle *service.Puzzle, answer string) (*fakePuzzleAPI, *Store, *PuzzleController, *int32) {
	api := &fakePuzzleAPI{puzzle: puzzle, answer: answer}
	store := NewStore(time.Second)
	store.SetSnapshot(&service.GameSnapshot{GameID: 1})

	var solvedFires int32
	ctrl := NewPuzzleController(api, store, puzzleTestConfig(), func(oracleID uint) {
		atomic.AddInt32(&solvedFires, 1)
	}, zap.NewNop())
	return api, store, ctrl, &solvedFires
}

func TestPuzzleBlankSubmitStaysLocal(t *testing.T) {
	api, store, ctrl, _ := newPuzzleFixture(&service.Puzzle{OracleStateID: 7, Description: "riddle"}, "tomorrow")
	require.NoError(t, ctrl.Open(context.Background(), 3))

	require.NoError(t, ctrl.Submit(context.Background(), "   "))

	assert.Equal(t, "Please enter a solution", store.Notification())
	assert.Equal(t, int32(0), atomic.LoadInt32(&api.solveCalls))
}

func TestPuzzleWrongAnswerShowsMessage(t *testing.T) {
	api, store, ctrl, solved := newPuzzleFixture(&service.Puzzle{OracleStateID: 7}, "tomorrow")
	require.NoError(t, ctrl.Open(context.Background(), 3))

	require.NoError(t, ctrl.Submit(context.Background(), "yesterday"))

	assert.Equal(t, int32(1), atomic.LoadInt32(&api.solveCalls))
	assert.Equal(t, "The oracle shakes its head", store.Notification())
	assert.Equal(t, PhasePuzzle, store.Phase())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(solved))
}

func TestPuzzleCorrectAnswerAdvancesAfterDelay(t *testing.T) {
	_, _, ctrl, solved := newPuzzleFixture(&service.Puzzle{OracleStateID: 7}, "tomorrow")
	require.NoError(t, ctrl.Open(context.Background(), 3))

	require.NoError(t, ctrl.Submit(context.Background(), "tomorrow"))

	// the reaction lingers before the battle opens
	assert.Equal(t, int32(0), atomic.LoadInt32(solved))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(solved) == 1
	}, time.Second, 5*time.Millisecond)

	// a duplicate correct submission never advances twice
	require.NoError(t, ctrl.Submit(context.Background(), "tomorrow"))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(solved))
}

func TestPuzzleHintCooldown(t *testing.T) {
	puzzle := &service.Puzzle{OracleStateID: 7, Hints: []string{"one", "two"}}
	_, _, ctrl, _ := newPuzzleFixture(puzzle, "tomorrow")
	require.NoError(t, ctrl.Open(context.Background(), 3))

	hint, ok := ctrl.NextHint()
	require.True(t, ok)
	assert.Equal(t, "one", hint)

	_, ok = ctrl.NextHint()
	assert.False(t, ok)

	time.Sleep(60 * time.Millisecond)
	hint, ok = ctrl.NextHint()
	require.True(t, ok)
	assert.Equal(t, "two", hint)

	// spent
	time.Sleep(60 * time.Millisecond)
	_, ok = ctrl.NextHint()
	assert.False(t, ok)
}

func TestPuzzleCountdownTicksAndStops(t *testing.T) {
	puzzle := &service.Puzzle{OracleStateID: 7, TimeLimit: 100}
	_, _, ctrl, _ := newPuzzleFixture(puzzle, "tomorrow")
	require.NoError(t, ctrl.Open(context.Background(), 3))

	assert.Eventually(t, func() bool {
		return ctrl.Remaining() < 100
	}, time.Second, 5*time.Millisecond)

	ctrl.StopCountdown()
	frozen := ctrl.Remaining()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, frozen, ctrl.Remaining())
}

// blockingPuzzleAPI holds each solve call until its solution's release
// channel is closed, so responses can be delivered out of order.
type blockingPuzzleAPI struct {
	puzzle   *service.Puzzle
	attempts int32
	release  map[string]chan struct{}
}

func (f *blockingPuzzleAPI) GetPuzzle(ctx context.Context, gameID, oracleID uint) (*service.Puzzle, error) {
	return f.puzzle, nil
}

func (f *blockingPuzzleAPI) SolvePuzzle(ctx context.Context, gameID uint, req service.PuzzleSolutionRequest) (*service.PuzzleResult, error) {
	attempts := int(atomic.AddInt32(&f.attempts, 1))
	<-f.release[req.Solution]
	return &service.PuzzleResult{
		Correct:  false,
		Attempts: attempts,
		Message:  "rejected: " + req.Solution,
	}, nil
}

func TestPuzzleDoubleSubmitLastResponseWins(t *testing.T) {
	api := &blockingPuzzleAPI{
		puzzle: &service.Puzzle{OracleStateID: 7},
		release: map[string]chan struct{}{
			"alpha": make(chan struct{}),
			"beta":  make(chan struct{}),
		},
	}
	store := NewStore(time.Second)
	store.SetSnapshot(&service.GameSnapshot{GameID: 1})
	ctrl := NewPuzzleController(api, store, puzzleTestConfig(), nil, zap.NewNop())
	require.NoError(t, ctrl.Open(context.Background(), 3))

	var wg sync.WaitGroup
	for _, solution := range []string{"alpha", "beta"} {
		wg.Add(1)
		go func(s string) {
			defer wg.Done()
			assert.NoError(t, ctrl.Submit(context.Background(), s))
		}(solution)
	}

	// both submissions are in flight before either resolves
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&api.attempts) == 2
	}, time.Second, 5*time.Millisecond)

	// resolve out of order: beta lands first, alpha last
	close(api.release["beta"])
	assert.Eventually(t, func() bool {
		return store.Notification() == "rejected: beta"
	}, time.Second, 5*time.Millisecond)

	close(api.release["alpha"])
	wg.Wait()

	// last response wins, and exactly two attempts were counted
	assert.Equal(t, "rejected: alpha", store.Notification())
	assert.Equal(t, int32(2), atomic.LoadInt32(&api.attempts))
}

func TestPuzzleTimeoutForcesBattle(t *testing.T) {
	puzzle := &service.Puzzle{OracleStateID: 7, TimeLimit: 3}
	_, store, ctrl, solved := newPuzzleFixture(puzzle, "tomorrow")
	require.NoError(t, ctrl.Open(context.Background(), 3))

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(solved) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, store.Notification(), "Time is up")

	// solving after the timeout never advances a second time
	require.NoError(t, ctrl.Submit(context.Background(), "tomorrow"))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(solved))
}

func TestPuzzleUntimedHasNoCountdown(t *testing.T) {
	_, _, ctrl, _ := newPuzzleFixture(&service.Puzzle{OracleStateID: 7}, "tomorrow")
	require.NoError(t, ctrl.Open(context.Background(), 3))

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, ctrl.Remaining())
}
