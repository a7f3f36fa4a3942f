package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the root configuration tree.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Game      GameConfig      `mapstructure:"game"`
	Client    ClientConfig    `mapstructure:"client"`
	Log       LogConfig       `mapstructure:"log"`
	Security  SecurityConfig  `mapstructure:"security"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds the gorm connection settings.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	SeedOracles     bool          `mapstructure:"seed_oracles"`
}

// WebSocketConfig holds the realtime hub settings.
type WebSocketConfig struct {
	Path              string        `mapstructure:"path"`
	ReadBufferSize    int           `mapstructure:"read_buffer_size"`
	WriteBufferSize   int           `mapstructure:"write_buffer_size"`
	MaxMessageSize    int64         `mapstructure:"max_message_size"`
	PingInterval      time.Duration `mapstructure:"ping_interval"`
	PongTimeout       time.Duration `mapstructure:"pong_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	EnableCompression bool          `mapstructure:"enable_compression"`
}

// GameConfig holds the game rule settings.
type GameConfig struct {
	StartingGold            int          `mapstructure:"starting_gold"`
	StartingInsightTokens   int          `mapstructure:"starting_insight_tokens"`
	StartingHealingDraughts int          `mapstructure:"starting_healing_draughts"`
	StartingWeapon          string       `mapstructure:"starting_weapon"`
	DefeatGoldReward        int          `mapstructure:"defeat_gold_reward"`
	DefeatInsightReward     int          `mapstructure:"defeat_insight_reward"`
	Combat                  CombatConfig `mapstructure:"combat"`
	Puzzle                  PuzzleConfig `mapstructure:"puzzle"`
}

// CombatConfig holds turn resolution parameters.
type CombatConfig struct {
	PlayerDamageMin   int     `mapstructure:"player_damage_min"`
	PlayerDamageMax   int     `mapstructure:"player_damage_max"`
	EnemyDamageMin    int     `mapstructure:"enemy_damage_min"`
	EnemyDamageMax    int     `mapstructure:"enemy_damage_max"`
	DefendReduction   float64 `mapstructure:"defend_reduction"`
	SpecialMultiplier float64 `mapstructure:"special_multiplier"`
	LogTail           int     `mapstructure:"log_tail"`
}

// PuzzleConfig holds puzzle generation parameters.
type PuzzleConfig struct {
	ChronosTimeLimit time.Duration `mapstructure:"chronos_time_limit"`
	MaxHints         int           `mapstructure:"max_hints"`
}

// ClientConfig holds the embedded game client settings.
type ClientConfig struct {
	BaseURL              string        `mapstructure:"base_url"`
	WSURL                string        `mapstructure:"ws_url"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout"`
	ReconnectBaseDelay   time.Duration `mapstructure:"reconnect_base_delay"`
	ReconnectMaxAttempts int           `mapstructure:"reconnect_max_attempts"`
	NotificationTimeout  time.Duration `mapstructure:"notification_timeout"`
	BattleOutcomeDelay   time.Duration `mapstructure:"battle_outcome_delay"`
	PuzzleSolveDelay     time.Duration `mapstructure:"puzzle_solve_delay"`
	HintCooldown         time.Duration `mapstructure:"hint_cooldown"`
	PuzzleTickInterval   time.Duration `mapstructure:"puzzle_tick_interval"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level   string            `mapstructure:"level"`
	Format  string            `mapstructure:"format"`
	Output  string            `mapstructure:"output"`
	File    LogFileConfig     `mapstructure:"file"`
	Modules map[string]string `mapstructure:"modules"`
}

// LogFileConfig holds log rotation settings.
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// SecurityConfig holds auth settings.
type SecurityConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

// JWTConfig holds token settings.
type JWTConfig struct {
	Secret        string        `mapstructure:"secret"`
	AccessExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshExpiry time.Duration `mapstructure:"refresh_expiry"`
}

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
	v    *viper.Viper
)

// Init loads the configuration from file, env, and defaults.
func Init(configPath string) error {
	var err error
	once.Do(func() {
		v = viper.New()

		if configPath != "" {
			v.SetConfigFile(configPath)
		} else {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath("./config")
			v.AddConfigPath(".")
		}

		v.SetEnvPrefix("ORACLES")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		setDefaults(v)

		if err = v.ReadInConfig(); err != nil {
			// Missing file falls back to defaults.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return
			}
			err = nil
		}

		cfg = &Config{}
		err = v.Unmarshal(cfg)
	})

	return err
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./data/astraeum.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.log_level", "info")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.seed_oracles", true)

	v.SetDefault("websocket.path", "/ws/game")
	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("websocket.max_message_size", 8192)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_timeout", "60s")
	v.SetDefault("websocket.write_timeout", "10s")
	v.SetDefault("websocket.enable_compression", true)

	v.SetDefault("game.starting_gold", 100)
	v.SetDefault("game.starting_insight_tokens", 1)
	v.SetDefault("game.starting_healing_draughts", 1)
	v.SetDefault("game.starting_weapon", "Mortal Spear")
	v.SetDefault("game.defeat_gold_reward", 500)
	v.SetDefault("game.defeat_insight_reward", 2)
	v.SetDefault("game.combat.player_damage_min", 50)
	v.SetDefault("game.combat.player_damage_max", 150)
	v.SetDefault("game.combat.enemy_damage_min", 40)
	v.SetDefault("game.combat.enemy_damage_max", 120)
	v.SetDefault("game.combat.defend_reduction", 0.5)
	v.SetDefault("game.combat.special_multiplier", 1.5)
	v.SetDefault("game.combat.log_tail", 5)
	v.SetDefault("game.puzzle.chronos_time_limit", "180s")
	v.SetDefault("game.puzzle.max_hints", 3)

	v.SetDefault("client.base_url", "http://localhost:8000/api/v1")
	v.SetDefault("client.ws_url", "ws://localhost:8000/ws/game")
	v.SetDefault("client.request_timeout", "15s")
	v.SetDefault("client.reconnect_base_delay", "1s")
	v.SetDefault("client.reconnect_max_attempts", 5)
	v.SetDefault("client.notification_timeout", "3s")
	v.SetDefault("client.battle_outcome_delay", "3s")
	v.SetDefault("client.puzzle_solve_delay", "2s")
	v.SetDefault("client.hint_cooldown", "5s")
	v.SetDefault("client.puzzle_tick_interval", "1s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "both")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "astraeum.log")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("security.jwt.secret", "change-me-in-production")
	v.SetDefault("security.jwt.access_expiry", "24h")
	v.SetDefault("security.jwt.refresh_expiry", "168h")
}

// Get returns the loaded configuration.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Watch reloads the configuration on file change.
func Watch(callback func(*Config)) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		mu.Lock()
		defer mu.Unlock()

		newCfg := &Config{}
		if err := v.Unmarshal(newCfg); err != nil {
			fmt.Printf("config reload failed: %v\n", err)
			return
		}

		cfg = newCfg

		if callback != nil {
			callback(cfg)
		}
	})
}

// GetString reads a raw string value.
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt reads a raw int value.
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool reads a raw bool value.
func GetBool(key string) bool {
	return v.GetBool(key)
}

// GetDuration reads a raw duration value.
func GetDuration(key string) time.Duration {
	return v.GetDuration(key)
}

// IsSet reports whether the key is present.
func IsSet(key string) bool {
	return v.IsSet(key)
}
