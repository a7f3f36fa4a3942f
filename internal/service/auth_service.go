package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/errors"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/models"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/repository"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("account already exists")
	ErrAccountDisabled    = errors.New("account is disabled")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,50}$`)

type authService struct {
	db          *gorm.DB
	playerRepo  repository.PlayerRepository
	sessionRepo repository.SessionRepository
	jwtManager  *utils.JWTManager
	log         *zap.Logger
}

// NewAuthService builds the auth service.
func NewAuthService(
	db *gorm.DB,
	playerRepo repository.PlayerRepository,
	sessionRepo repository.SessionRepository,
	jwtManager *utils.JWTManager,
	log *zap.Logger,
) AuthService {
	return &authService{
		db:          db,
		playerRepo:  playerRepo,
		sessionRepo: sessionRepo,
		jwtManager:  jwtManager,
		log:         log,
	}
}

// Register creates an account and issues an initial token pair.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := s.validateRegisterRequest(req); err != nil {
		return nil, err
	}

	if player, _ := s.playerRepo.FindByUsername(ctx, req.Username); player != nil {
		return nil, ErrUserExists
	}
	if player, _ := s.playerRepo.FindByEmail(ctx, req.Email); player != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal, "failed to hash password")
	}

	player := &models.Player{
		Username:       req.Username,
		Email:          strings.ToLower(req.Email),
		HashedPassword: hashedPassword,
		DisplayName:    req.DisplayName,
		IsActive:       true,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := s.playerRepo.WithTx(tx).(repository.PlayerRepository).Create(ctx, player); err != nil {
		tx.Rollback()
		s.log.Error("failed to create player", zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "failed to create player")
	}

	resp, err := s.issueTokens(ctx, tx, player, req.IP, req.UserAgent)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTransaction, "failed to commit registration")
	}

	s.log.Info("player registered",
		zap.Uint("player_id", player.ID),
		zap.String("username", player.Username),
	)

	return resp, nil
}

// Login checks credentials and issues a fresh token pair.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	player, err := s.playerRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !player.CanLogin() {
		return nil, ErrAccountDisabled
	}

	ok, err := utils.VerifyPassword(req.Password, player.HashedPassword)
	if err != nil || !ok {
		s.log.Warn("failed login attempt",
			zap.String("username", req.Username),
			zap.String("ip", req.IP),
		)
		return nil, ErrInvalidCredentials
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	resp, err := s.issueTokens(ctx, tx, player, req.IP, req.UserAgent)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTransaction, "failed to commit login")
	}

	if err := s.playerRepo.UpdateLastLogin(ctx, player.ID); err != nil {
		s.log.Warn("failed to update last login", zap.Error(err))
	}

	s.log.Info("player logged in",
		zap.Uint("player_id", player.ID),
		zap.String("username", player.Username),
	)

	return resp, nil
}

// issueTokens creates the session row and signs the token pair.
func (s *authService) issueTokens(ctx context.Context, tx *gorm.DB, player *models.Player, ip, userAgent string) (*AuthResponse, error) {
	accessToken, jti, err := s.jwtManager.GenerateAccessToken(player.ID, player.Username, player.Email)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal, "failed to sign access token")
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(player.ID, jti)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal, "failed to sign refresh token")
	}

	session := &models.PlayerSession{
		PlayerID:     player.ID,
		TokenJTI:     jti,
		IPAddress:    ip,
		UserAgent:    userAgent,
		ExpiresAt:    time.Now().Add(s.jwtManager.GetTokenExpiry("refresh")),
		LastActivity: time.Now(),
	}

	if err := s.sessionRepo.WithTx(tx).(repository.SessionRepository).Create(ctx, session); err != nil {
		s.log.Error("failed to create session", zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "failed to create session")
	}

	return &AuthResponse{
		Player:       player,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.GetTokenExpiry("access").Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// Logout drops the session for the given jti.
func (s *authService) Logout(ctx context.Context, jti string) error {
	return s.sessionRepo.DeleteByJTI(ctx, jti)
}

// RefreshToken rotates the token pair, replacing the session row.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateToken(refreshToken)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTokenInvalid, "invalid refresh token")
	}

	if claims.TokenType != "refresh" {
		return nil, apperrors.New(apperrors.ErrTokenInvalid)
	}

	session, err := s.sessionRepo.FindByJTI(ctx, claims.JTI())
	if err != nil {
		return nil, apperrors.New(apperrors.ErrSessionExpired)
	}
	if session.IsExpired() {
		_ = s.sessionRepo.DeleteByJTI(ctx, claims.JTI())
		return nil, apperrors.New(apperrors.ErrSessionExpired)
	}

	player, err := s.playerRepo.FindByID(ctx, claims.PlayerID)
	if err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := s.sessionRepo.WithTx(tx).(repository.SessionRepository).DeleteByJTI(ctx, claims.JTI()); err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseDelete, "failed to rotate session")
	}

	resp, err := s.issueTokens(ctx, tx, player, session.IPAddress, session.UserAgent)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTransaction, "failed to commit token refresh")
	}

	return resp, nil
}

// ValidateToken verifies the signature and that the session is still live.
func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTokenInvalid, "invalid token")
	}

	session, err := s.sessionRepo.FindByJTI(ctx, claims.JTI())
	if err != nil {
		return nil, apperrors.New(apperrors.ErrSessionExpired)
	}
	if session.IsExpired() {
		_ = s.sessionRepo.DeleteByJTI(ctx, claims.JTI())
		return nil, apperrors.New(apperrors.ErrSessionExpired)
	}

	if err := s.sessionRepo.Touch(ctx, claims.JTI()); err != nil {
		s.log.Warn("failed to touch session", zap.Error(err))
	}

	result := &TokenClaims{
		PlayerID: claims.PlayerID,
		Username: claims.Username,
		Email:    claims.Email,
		JTI:      claims.JTI(),
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Unix()
	}

	return result, nil
}

// CurrentPlayer loads the profile for an authenticated player.
func (s *authService) CurrentPlayer(ctx context.Context, playerID uint) (*models.Player, error) {
	return s.playerRepo.FindByID(ctx, playerID)
}

// RevokeAllSessions drops every session for the player.
func (s *authService) RevokeAllSessions(ctx context.Context, playerID uint) error {
	return s.sessionRepo.DeleteByPlayer(ctx, playerID)
}

// CleanupExpiredSessions removes stale session rows.
func (s *authService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx)
}

func (s *authService) validateRegisterRequest(req *RegisterRequest) error {
	if !usernamePattern.MatchString(req.Username) {
		return apperrors.Newf(apperrors.ErrInvalidParam, "username must be 3-50 characters of letters, digits, underscore or dash")
	}
	if len(req.Password) < 8 {
		return apperrors.Newf(apperrors.ErrInvalidParam, "password must be at least 8 characters")
	}
	if !strings.Contains(req.Email, "@") {
		return apperrors.Newf(apperrors.ErrInvalidParam, "invalid email address")
	}
	return nil
}
