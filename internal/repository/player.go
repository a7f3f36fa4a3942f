package repository

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/errors"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/models"
	"gorm.io/gorm"
)

// PlayerRepository handles player account persistence.
type PlayerRepository interface {
	BaseRepository
	Create(ctx context.Context, player *models.Player) error
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*models.Player, error)
	FindByUsername(ctx context.Context, username string) (*models.Player, error)
	FindByEmail(ctx context.Context, email string) (*models.Player, error)
	UpdateLastLogin(ctx context.Context, playerID uint) error
	IncrementStats(ctx context.Context, playerID uint, column string, delta int) error
}

type playerRepo struct {
	*BaseRepo
}

// NewPlayerRepository builds a PlayerRepository.
func NewPlayerRepository(db *gorm.DB) PlayerRepository {
	return &playerRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// WithTx binds the repository to a transaction.
func (r *playerRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &playerRepo{BaseRepo: &BaseRepo{db: tx}}
}

func (r *playerRepo) Create(ctx context.Context, player *models.Player) error {
	return r.db.WithContext(ctx).Create(player).Error
}

func (r *playerRepo) Update(ctx context.Context, player *models.Player) error {
	return r.db.WithContext(ctx).Save(player).Error
}

func (r *playerRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Player{}, id).Error
}

func (r *playerRepo) FindByID(ctx context.Context, id uint) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).First(&player, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &player, nil
}

func (r *playerRepo) FindByUsername(ctx context.Context, username string) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &player, nil
}

func (r *playerRepo) FindByEmail(ctx context.Context, email string) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &player, nil
}

func (r *playerRepo) UpdateLastLogin(ctx context.Context, playerID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("id = ?", playerID).
		Update("last_login", time.Now()).Error
}

func (r *playerRepo) IncrementStats(ctx context.Context, playerID uint, column string, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("id = ?", playerID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

// SessionRepository tracks issued token sessions.
type SessionRepository interface {
	BaseRepository
	Create(ctx context.Context, session *models.PlayerSession) error
	FindByJTI(ctx context.Context, jti string) (*models.PlayerSession, error)
	Touch(ctx context.Context, jti string) error
	DeleteByJTI(ctx context.Context, jti string) error
	DeleteExpired(ctx context.Context) (int64, error)
	DeleteByPlayer(ctx context.Context, playerID uint) error
}

type sessionRepo struct {
	*BaseRepo
}

// NewSessionRepository builds a SessionRepository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// WithTx binds the repository to a transaction.
func (r *sessionRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &sessionRepo{BaseRepo: &BaseRepo{db: tx}}
}

func (r *sessionRepo) Create(ctx context.Context, session *models.PlayerSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepo) FindByJTI(ctx context.Context, jti string) (*models.PlayerSession, error) {
	var session models.PlayerSession
	err := r.db.WithContext(ctx).Where("token_jti = ?", jti).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrTokenInvalid)
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) Touch(ctx context.Context, jti string) error {
	return r.db.WithContext(ctx).
		Model(&models.PlayerSession{}).
		Where("token_jti = ?", jti).
		Update("last_activity", time.Now()).Error
}

func (r *sessionRepo) DeleteByJTI(ctx context.Context, jti string) error {
	return r.db.WithContext(ctx).
		Where("token_jti = ?", jti).
		Delete(&models.PlayerSession{}).Error
}

func (r *sessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.PlayerSession{})
	return result.RowsAffected, result.Error
}

func (r *sessionRepo) DeleteByPlayer(ctx context.Context, playerID uint) error {
	return r.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Delete(&models.PlayerSession{}).Error
}
