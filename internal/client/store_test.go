package client

import (
	"testing"
	"time"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePhasePayloadsTravelTogether(t *testing.T) {
	store := NewStore(0)
	assert.Equal(t, PhaseMenu, store.Phase())

	store.SetSnapshot(&service.GameSnapshot{GameID: 11})
	assert.Equal(t, uint(11), store.GameID())

	store.EnterPuzzle(3, &service.Puzzle{OracleStateID: 9, Description: "riddle"})
	assert.Equal(t, PhasePuzzle, store.Phase())

	puzzle, ok := store.Puzzle()
	require.True(t, ok)
	assert.Equal(t, uint(9), puzzle.OracleStateID)

	// no battle view exists on the puzzle screen
	_, ok = store.Battle()
	assert.False(t, ok)

	store.EnterBattle(3, &service.BattleStart{PlayerHealth: 1000, EnemyHealth: 800})
	assert.Equal(t, PhaseBattle, store.Phase())

	// the riddle is gone the moment the battle starts
	_, ok = store.Puzzle()
	assert.False(t, ok)

	battle, ok := store.Battle()
	require.True(t, ok)
	assert.Equal(t, 1000, battle.PlayerHealth)
	assert.Equal(t, 800, battle.EnemyHealth)
	assert.Equal(t, 1, battle.Turn)
}

func TestStoreApplyTurn(t *testing.T) {
	store := NewStore(0)
	store.EnterBattle(5, &service.BattleStart{PlayerHealth: 500, EnemyHealth: 400})

	store.ApplyTurn(&service.BattleTurn{
		Turn:         2,
		PlayerHealth: 450,
		EnemyHealth:  310,
		Status:       "in_progress",
		BattleLog:    []string{"Turn 1: Player dealt 90 damage"},
	})

	battle, ok := store.Battle()
	require.True(t, ok)
	assert.Equal(t, 2, battle.Turn)
	assert.Equal(t, 450, battle.PlayerHealth)
	assert.Equal(t, 310, battle.EnemyHealth)
	assert.Len(t, battle.Log, 1)
}

func TestStoreReturnToMenuClearsEncounter(t *testing.T) {
	store := NewStore(0)
	store.EnterPuzzle(4, &service.Puzzle{OracleStateID: 2})
	store.EnterBattle(4, &service.BattleStart{PlayerHealth: 100, EnemyHealth: 100})

	store.ReturnToMenu()

	assert.Equal(t, PhaseMenu, store.Phase())
	assert.Zero(t, store.OracleID())
	_, ok := store.Puzzle()
	assert.False(t, ok)
	_, ok = store.Battle()
	assert.False(t, ok)
}

func TestStoreNotificationLastWriteWins(t *testing.T) {
	store := NewStore(60 * time.Millisecond)

	store.SetNotification("first")
	time.Sleep(30 * time.Millisecond)
	store.SetNotification("second")

	// the first message's clear timer fires now but must not wipe the
	// newer message
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, "second", store.Notification())

	assert.Eventually(t, func() bool {
		return store.Notification() == ""
	}, time.Second, 10*time.Millisecond)
}
