package repository

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/errors"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/models"
	"gorm.io/gorm"
)

// GameRepository handles campaign state persistence.
type GameRepository interface {
	BaseRepository
	Create(ctx context.Context, game *models.GameState) error
	Update(ctx context.Context, game *models.GameState) error
	FindByID(ctx context.Context, id uint) (*models.GameState, error)
	FindByIDFull(ctx context.Context, id uint) (*models.GameState, error)
	FindByPlayer(ctx context.Context, playerID uint, pagination *Pagination) ([]*models.GameState, error)
	TouchSave(ctx context.Context, id uint) error

	CreateDominion(ctx context.Context, dominion *models.DominionState) error
	FindDominion(ctx context.Context, gameID uint, oracleName string) (*models.DominionState, error)
	UpdateDominion(ctx context.Context, dominion *models.DominionState) error
	ListDominions(ctx context.Context, gameID uint) ([]*models.DominionState, error)
}

type gameRepo struct {
	*BaseRepo
}

// NewGameRepository builds a GameRepository.
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// WithTx binds the repository to a transaction.
func (r *gameRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &gameRepo{BaseRepo: &BaseRepo{db: tx}}
}

func (r *gameRepo) Create(ctx context.Context, game *models.GameState) error {
	return r.db.WithContext(ctx).Create(game).Error
}

func (r *gameRepo) Update(ctx context.Context, game *models.GameState) error {
	return r.db.WithContext(ctx).Save(game).Error
}

func (r *gameRepo) FindByID(ctx context.Context, id uint) (*models.GameState, error) {
	var game models.GameState
	err := r.db.WithContext(ctx).First(&game, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrGameNotFound)
		}
		return nil, err
	}
	return &game, nil
}

// FindByIDFull loads the game with all encounter, dominion, and army rows.
func (r *gameRepo) FindByIDFull(ctx context.Context, id uint) (*models.GameState, error) {
	var game models.GameState
	err := r.db.WithContext(ctx).
		Preload("OracleStates").
		Preload("OracleStates.Oracle").
		Preload("DominionStates").
		Preload("PlayerArmies").
		Preload("PlayerArmies.UnitType").
		First(&game, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrGameNotFound)
		}
		return nil, err
	}
	return &game, nil
}

func (r *gameRepo) FindByPlayer(ctx context.Context, playerID uint, pagination *Pagination) ([]*models.GameState, error) {
	var games []*models.GameState
	query := r.db.WithContext(ctx).Where("player_id = ?", playerID).Order("created_at DESC")

	if pagination != nil {
		if err := query.Model(&models.GameState{}).Count(&pagination.Total).Error; err != nil {
			return nil, err
		}
		query = query.Scopes(Paginate(pagination))
	}

	if err := query.Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

func (r *gameRepo) TouchSave(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.GameState{}).
		Where("id = ?", id).
		Update("last_save", time.Now()).Error
}

func (r *gameRepo) CreateDominion(ctx context.Context, dominion *models.DominionState) error {
	return r.db.WithContext(ctx).Create(dominion).Error
}

func (r *gameRepo) FindDominion(ctx context.Context, gameID uint, oracleName string) (*models.DominionState, error) {
	var dominion models.DominionState
	err := r.db.WithContext(ctx).
		Where("game_state_id = ? AND oracle_name = ?", gameID, oracleName).
		First(&dominion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &dominion, nil
}

func (r *gameRepo) UpdateDominion(ctx context.Context, dominion *models.DominionState) error {
	return r.db.WithContext(ctx).Save(dominion).Error
}

func (r *gameRepo) ListDominions(ctx context.Context, gameID uint) ([]*models.DominionState, error) {
	var dominions []*models.DominionState
	err := r.db.WithContext(ctx).
		Where("game_state_id = ?", gameID).
		Find(&dominions).Error
	if err != nil {
		return nil, err
	}
	return dominions, nil
}
