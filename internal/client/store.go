package client

import (
	"sync"
	"time"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/service"
)

// Phase is the screen the client is currently on.
type Phase int

const (
	PhaseMenu Phase = iota
	PhasePuzzle
	PhaseBattle
	PhaseConfrontation
)

func (p Phase) String() string {
	switch p {
	case PhasePuzzle:
		return "puzzle"
	case PhaseBattle:
		return "battle"
	case PhaseConfrontation:
		return "confrontation"
	default:
		return "menu"
	}
}

// BattleView is the client's view of the running battle, folded from
// the opening state and every turn since.
type BattleView struct {
	OracleID     uint
	Turn         int
	PlayerHealth int
	EnemyHealth  int
	Status       string
	Log          []string
}

// Store holds the client state. Phase changes carry their payload in
// the same lock so a reader never sees a battle phase without battle
// data.
type Store struct {
	mu           sync.RWMutex
	phase        Phase
	gameID       uint
	oracleID     uint
	snapshot     *service.GameSnapshot
	puzzle       *service.Puzzle
	battle       *BattleView
	notification string
	notifSeq     uint64
	notifTimeout time.Duration
}

// NewStore builds a store. Notifications clear themselves after
// notifTimeout.
func NewStore(notifTimeout time.Duration) *Store {
	return &Store{notifTimeout: notifTimeout}
}

// Phase returns the current screen.
func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// SetSnapshot replaces the campaign snapshot and remembers the game id.
func (s *Store) SetSnapshot(snap *service.GameSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	if snap != nil {
		s.gameID = snap.GameID
	}
}

// Snapshot returns the last campaign snapshot, nil before any load.
func (s *Store) Snapshot() *service.GameSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// GameID returns the active campaign id, zero before any load.
func (s *Store) GameID() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gameID
}

// OracleID returns the oracle of the active encounter, zero on the menu.
func (s *Store) OracleID() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.oracleID
}

// EnterPuzzle switches to the puzzle screen with its riddle.
func (s *Store) EnterPuzzle(oracleID uint, puzzle *service.Puzzle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhasePuzzle
	s.oracleID = oracleID
	s.puzzle = puzzle
	s.battle = nil
}

// Puzzle returns the riddle when on the puzzle screen.
func (s *Store) Puzzle() (*service.Puzzle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != PhasePuzzle || s.puzzle == nil {
		return nil, false
	}
	return s.puzzle, true
}

// EnterBattle switches to the battle screen seeded from the opening
// state.
func (s *Store) EnterBattle(oracleID uint, start *service.BattleStart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseBattle
	s.oracleID = oracleID
	s.puzzle = nil
	s.battle = &BattleView{
		OracleID:     oracleID,
		Turn:         1,
		PlayerHealth: start.PlayerHealth,
		EnemyHealth:  start.EnemyHealth,
		Status:       "in_progress",
	}
}

// ApplyTurn folds one resolved turn into the battle view.
func (s *Store) ApplyTurn(turn *service.BattleTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.battle == nil {
		return
	}
	s.battle.Turn = turn.Turn
	s.battle.PlayerHealth = turn.PlayerHealth
	s.battle.EnemyHealth = turn.EnemyHealth
	s.battle.Status = turn.Status
	s.battle.Log = turn.BattleLog
}

// Battle returns a copy of the battle view when on the battle screen.
func (s *Store) Battle() (BattleView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != PhaseBattle || s.battle == nil {
		return BattleView{}, false
	}
	return *s.battle, true
}

// ApplyProgress folds confirmed campaign progress into the snapshot.
func (s *Store) ApplyProgress(oraclesDefeated, currentStage int, completed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return
	}
	s.snapshot.OraclesDefeated = oraclesDefeated
	s.snapshot.CurrentStage = currentStage
	s.snapshot.IsCompleted = completed
}

// EnterConfrontation switches to the confrontation screen, keeping the
// encounter's oracle.
func (s *Store) EnterConfrontation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseConfrontation
	s.puzzle = nil
	s.battle = nil
}

// ReturnToMenu drops all encounter state and goes back to the menu.
func (s *Store) ReturnToMenu() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseMenu
	s.oracleID = 0
	s.puzzle = nil
	s.battle = nil
}

// SetNotification shows a transient message. A newer message replaces
// an older one, and the clear timer only clears the message it was
// armed for.
func (s *Store) SetNotification(msg string) {
	s.mu.Lock()
	s.notification = msg
	s.notifSeq++
	seq := s.notifSeq
	timeout := s.notifTimeout
	s.mu.Unlock()

	if timeout <= 0 {
		return
	}
	time.AfterFunc(timeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.notifSeq == seq {
			s.notification = ""
		}
	})
}

// Notification returns the current transient message, empty when none.
func (s *Store) Notification() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notification
}
