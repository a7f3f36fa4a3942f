package models

import (
	"time"

	"gorm.io/gorm"
)

// Player account and lifetime stats.
type Player struct {
	BaseModel
	Username        string     `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email           string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	HashedPassword  string     `gorm:"size:255;not null" json:"-"`
	DisplayName     string     `gorm:"size:100" json:"display_name"`
	IsActive        bool       `gorm:"default:true" json:"is_active"`
	IsAdmin         bool       `gorm:"default:false" json:"is_admin"`
	TotalGames      int        `gorm:"default:0" json:"total_games"`
	GamesWon        int        `gorm:"default:0" json:"games_won"`
	OraclesDefeated int        `gorm:"default:0" json:"oracles_defeated"`
	LastLogin       *time.Time `json:"last_login,omitempty"`

	Sessions   []PlayerSession `gorm:"foreignKey:PlayerID" json:"-"`
	GameStates []GameState     `gorm:"foreignKey:PlayerID" json:"-"`
}

// PlayerSession tracks issued tokens by their jti claim.
type PlayerSession struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PlayerID     uint      `gorm:"index;not null" json:"player_id"`
	TokenJTI     string    `gorm:"uniqueIndex;size:64;not null" json:"token_jti"`
	IPAddress    string    `gorm:"size:45" json:"ip_address"`
	UserAgent    string    `gorm:"size:255" json:"user_agent"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	LastActivity time.Time `json:"last_activity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName maps Player to its table.
func (Player) TableName() string {
	return "players"
}

// TableName maps PlayerSession to its table.
func (PlayerSession) TableName() string {
	return "player_sessions"
}

// BeforeCreate fills profile defaults.
func (p *Player) BeforeCreate(tx *gorm.DB) error {
	if p.DisplayName == "" {
		p.DisplayName = p.Username
	}
	return nil
}

// CanLogin reports whether the account may authenticate.
func (p *Player) CanLogin() bool {
	return p.IsActive
}

// UpdateLoginInfo stamps the last successful login.
func (p *Player) UpdateLoginInfo() {
	now := time.Now()
	p.LastLogin = &now
}

// IsExpired reports whether the session token is past its expiry.
func (s *PlayerSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
