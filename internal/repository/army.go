package repository

import (
	"context"
	"errors"

	apperrors "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/errors"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/models"
	"gorm.io/gorm"
)

// ArmyRepository handles unit templates and player army stacks.
type ArmyRepository interface {
	BaseRepository
	FindUnitByName(ctx context.Context, name string) (*models.ArmyUnit, error)
	ListUnits(ctx context.Context) ([]*models.ArmyUnit, error)

	CreateStack(ctx context.Context, stack *models.PlayerArmy) error
	UpdateStack(ctx context.Context, stack *models.PlayerArmy) error
	ListStacks(ctx context.Context, gameID uint) ([]*models.PlayerArmy, error)
	ListDeployed(ctx context.Context, gameID uint) ([]*models.PlayerArmy, error)
}

type armyRepo struct {
	*BaseRepo
}

// NewArmyRepository builds an ArmyRepository.
func NewArmyRepository(db *gorm.DB) ArmyRepository {
	return &armyRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// WithTx binds the repository to a transaction.
func (r *armyRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &armyRepo{BaseRepo: &BaseRepo{db: tx}}
}

func (r *armyRepo) FindUnitByName(ctx context.Context, name string) (*models.ArmyUnit, error) {
	var unit models.ArmyUnit
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&unit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &unit, nil
}

func (r *armyRepo) ListUnits(ctx context.Context) ([]*models.ArmyUnit, error) {
	var units []*models.ArmyUnit
	err := r.db.WithContext(ctx).Find(&units).Error
	if err != nil {
		return nil, err
	}
	return units, nil
}

func (r *armyRepo) CreateStack(ctx context.Context, stack *models.PlayerArmy) error {
	return r.db.WithContext(ctx).Create(stack).Error
}

func (r *armyRepo) UpdateStack(ctx context.Context, stack *models.PlayerArmy) error {
	return r.db.WithContext(ctx).Save(stack).Error
}

func (r *armyRepo) ListStacks(ctx context.Context, gameID uint) ([]*models.PlayerArmy, error) {
	var stacks []*models.PlayerArmy
	err := r.db.WithContext(ctx).
		Preload("UnitType").
		Where("game_state_id = ?", gameID).
		Find(&stacks).Error
	if err != nil {
		return nil, err
	}
	return stacks, nil
}

func (r *armyRepo) ListDeployed(ctx context.Context, gameID uint) ([]*models.PlayerArmy, error) {
	var stacks []*models.PlayerArmy
	err := r.db.WithContext(ctx).
		Preload("UnitType").
		Where("game_state_id = ? AND is_deployed = ?", gameID, true).
		Find(&stacks).Error
	if err != nil {
		return nil, err
	}
	return stacks, nil
}
