package repository

import (
	"context"
	"errors"

	apperrors "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/errors"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/models"
	"gorm.io/gorm"
)

// OracleRepository handles oracle definitions and per-run encounter state.
type OracleRepository interface {
	BaseRepository
	FindByID(ctx context.Context, id uint) (*models.Oracle, error)
	FindByName(ctx context.Context, name string) (*models.Oracle, error)
	ListAll(ctx context.Context) ([]*models.Oracle, error)

	CreateState(ctx context.Context, state *models.OracleState) error
	FindState(ctx context.Context, gameID, oracleID uint) (*models.OracleState, error)
	UpdateState(ctx context.Context, state *models.OracleState) error
	ListStates(ctx context.Context, gameID uint) ([]*models.OracleState, error)
}

type oracleRepo struct {
	*BaseRepo
}

// NewOracleRepository builds an OracleRepository.
func NewOracleRepository(db *gorm.DB) OracleRepository {
	return &oracleRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// WithTx binds the repository to a transaction.
func (r *oracleRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &oracleRepo{BaseRepo: &BaseRepo{db: tx}}
}

func (r *oracleRepo) FindByID(ctx context.Context, id uint) (*models.Oracle, error) {
	var oracle models.Oracle
	err := r.db.WithContext(ctx).First(&oracle, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrOracleNotFound)
		}
		return nil, err
	}
	return &oracle, nil
}

func (r *oracleRepo) FindByName(ctx context.Context, name string) (*models.Oracle, error) {
	var oracle models.Oracle
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&oracle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrOracleNotFound)
		}
		return nil, err
	}
	return &oracle, nil
}

func (r *oracleRepo) ListAll(ctx context.Context) ([]*models.Oracle, error) {
	var oracles []*models.Oracle
	err := r.db.WithContext(ctx).Order("unlock_order ASC").Find(&oracles).Error
	if err != nil {
		return nil, err
	}
	return oracles, nil
}

func (r *oracleRepo) CreateState(ctx context.Context, state *models.OracleState) error {
	return r.db.WithContext(ctx).Create(state).Error
}

func (r *oracleRepo) FindState(ctx context.Context, gameID, oracleID uint) (*models.OracleState, error) {
	var state models.OracleState
	err := r.db.WithContext(ctx).
		Where("game_state_id = ? AND oracle_id = ?", gameID, oracleID).
		First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrOracleNotFound)
		}
		return nil, err
	}
	return &state, nil
}

func (r *oracleRepo) UpdateState(ctx context.Context, state *models.OracleState) error {
	return r.db.WithContext(ctx).Save(state).Error
}

func (r *oracleRepo) ListStates(ctx context.Context, gameID uint) ([]*models.OracleState, error) {
	var states []*models.OracleState
	err := r.db.WithContext(ctx).
		Preload("Oracle").
		Where("game_state_id = ?", gameID).
		Find(&states).Error
	if err != nil {
		return nil, err
	}
	return states, nil
}
