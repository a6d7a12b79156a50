// Package config loads the server configuration from YAML
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/orchestrators/encounter"
	"github.com/KirkDiggler/endguard/internal/redis"
)

// Persistence drivers
const (
	DriverNone  = "none"
	DriverFile  = "file"
	DriverRedis = "redis"
)

// Config is the whole server configuration
type Config struct {
	TickRate       int    `yaml:"tick_rate"`
	DefinitionsDir string `yaml:"definitions_dir"`
	LogLevel       string `yaml:"log_level"`

	Respawn     RespawnConfig     `yaml:"respawn"`
	Death       DeathConfig       `yaml:"death"`
	Persistence PersistenceConfig `yaml:"persistence"`
	History     HistoryConfig     `yaml:"history"`
	Server      ServerConfig      `yaml:"server"`

	// Worlds seeds the in-memory host
	Worlds []WorldConfig `yaml:"worlds"`
}

// RespawnConfig controls when and how dragons come back
type RespawnConfig struct {
	OnDeath          bool    `yaml:"on_death"`
	OnJoin           bool    `yaml:"on_join"`
	DeathDelay       int     `yaml:"death_delay"`
	JoinDelay        int     `yaml:"join_delay"`
	CountdownMessage string  `yaml:"countdown_message"`
	AnnounceRadius   float64 `yaml:"announce_radius"`
	AbandonedMessage string  `yaml:"abandoned_message"`
	SafeguardSeconds int     `yaml:"safeguard_seconds"`
}

// DeathConfig controls the death sequence
type DeathConfig struct {
	AnimationThresholdTicks int     `yaml:"animation_threshold_ticks"`
	MaxTicks                int     `yaml:"max_ticks"`
	LightningStrikes        int     `yaml:"lightning_strikes"`
	DefaultShape            string  `yaml:"default_shape"`
	StartHeight             float64 `yaml:"start_height"`
}

// PersistenceConfig selects where session snapshots live
type PersistenceConfig struct {
	Driver   string      `yaml:"driver"`
	FilePath string      `yaml:"file_path"`
	Redis    RedisConfig `yaml:"redis"`
}

// RedisConfig locates the redis backing snapshots and loot history
type RedisConfig struct {
	Addrs       []string      `yaml:"addrs"`
	MasterName  string        `yaml:"master_name"`
	PoolSize    int           `yaml:"pool_size"`
	MaxRetries  int           `yaml:"max_retries"`
	TLS         bool          `yaml:"tls"`
	SnapshotTTL time.Duration `yaml:"snapshot_ttl"`
}

// HistoryConfig bounds the loot history
type HistoryConfig struct {
	Enabled   bool          `yaml:"enabled"`
	TTL       time.Duration `yaml:"ttl"`
	MaxLength int           `yaml:"max_length"`
}

// ServerConfig configures the gRPC listener
type ServerConfig struct {
	GRPCPort int `yaml:"grpc_port"`
}

// WorldConfig is a world with a portal
type WorldConfig struct {
	Name   string            `yaml:"name"`
	Portal entities.Position `yaml:"portal"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		TickRate:       20,
		DefinitionsDir: "definitions",
		LogLevel:       "info",
		Respawn: RespawnConfig{
			OnDeath:          true,
			OnJoin:           false,
			DeathDelay:       300,
			JoinDelay:        60,
			CountdownMessage: "The dragon returns in %formatted-time%",
			AbandonedMessage: "The ritual was disrupted!",
			SafeguardSeconds: 30,
		},
		Death: DeathConfig{
			AnimationThresholdTicks: 185,
			MaxTicks:                1200,
			LightningStrikes:        3,
			StartHeight:             encounter.DefaultDeathStartHeight,
		},
		Persistence: PersistenceConfig{
			Driver:   DriverFile,
			FilePath: "data/sessions.json",
		},
		History: HistoryConfig{
			Enabled:   true,
			TTL:       7 * 24 * time.Hour,
			MaxLength: 100,
		},
		Server: ServerConfig{GRPCPort: 50051},
		Worlds: []WorldConfig{{
			Name:   "world_the_end",
			Portal: entities.Position{X: 0, Y: 64, Z: 0},
		}},
	}
}

// Load reads path over the defaults and validates the result. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to read config file")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.ParseError(path, "", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", path)
	}
	return cfg, nil
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidatePositive("tick_rate", c.TickRate, vb)
	errors.ValidateRequired("definitions_dir", c.DefinitionsDir, vb)
	errors.ValidateEnum("log_level", c.LogLevel, []string{"debug", "info", "warn", "error"}, vb)

	if c.Respawn.DeathDelay < 0 {
		vb.Field("respawn.death_delay", "must not be negative")
	}
	if c.Respawn.JoinDelay < 0 {
		vb.Field("respawn.join_delay", "must not be negative")
	}
	if c.Respawn.AnnounceRadius < 0 {
		vb.Field("respawn.announce_radius", "must not be negative")
	}
	if c.Respawn.SafeguardSeconds < 0 {
		vb.Field("respawn.safeguard_seconds", "must not be negative")
	}
	if c.Death.LightningStrikes < 0 {
		vb.Field("death.lightning_strikes", "must not be negative")
	}
	if c.Death.AnimationThresholdTicks < 0 {
		vb.Field("death.animation_threshold_ticks", "must not be negative")
	}

	errors.ValidateEnum("persistence.driver", c.Persistence.Driver, []string{DriverNone, DriverFile, DriverRedis}, vb)
	switch c.Persistence.Driver {
	case DriverFile:
		errors.ValidateRequired("persistence.file_path", c.Persistence.FilePath, vb)
	case DriverRedis:
		if len(c.Persistence.Redis.Addrs) == 0 {
			vb.RequiredField("persistence.redis.addrs")
		}
	}

	if c.History.MaxLength < 0 {
		vb.Field("history.max_length", "must not be negative")
	}
	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		vb.Fieldf("server.grpc_port", "must be between 1 and 65535, got %d", c.Server.GRPCPort)
	}

	seen := make(map[string]bool, len(c.Worlds))
	for i, w := range c.Worlds {
		if w.Name == "" {
			vb.Fieldf("worlds", "world %d has no name", i)
			continue
		}
		if seen[w.Name] {
			vb.Fieldf("worlds", "world %s is listed twice", w.Name)
		}
		seen[w.Name] = true
	}

	return vb.Build()
}

// EncounterSettings maps the respawn and death sections onto the orchestrator
func (c *Config) EncounterSettings() encounter.Settings {
	return encounter.Settings{
		TicksPerSecond:      c.TickRate,
		RespawnOnDeath:      c.Respawn.OnDeath,
		RespawnOnJoin:       c.Respawn.OnJoin,
		DeathDelaySeconds:   c.Respawn.DeathDelay,
		JoinDelaySeconds:    c.Respawn.JoinDelay,
		CountdownMessage:    c.Respawn.CountdownMessage,
		AnnounceRadius:      c.Respawn.AnnounceRadius,
		AbandonedMessage:    c.Respawn.AbandonedMessage,
		SafeguardSeconds:    c.Respawn.SafeguardSeconds,
		DeathThresholdTicks: c.Death.AnimationThresholdTicks,
		DeathMaxTicks:       c.Death.MaxTicks,
		LightningStrikes:    c.Death.LightningStrikes,
		DefaultShape:        c.Death.DefaultShape,
		DeathStartHeight:    c.Death.StartHeight,
	}
}

// RedisEndpoint maps the redis section onto a dial target
func (c *Config) RedisEndpoint() (redis.Endpoint, *redis.Options) {
	r := c.Persistence.Redis
	return redis.Endpoint{Addrs: r.Addrs, MasterName: r.MasterName}, &redis.Options{
		PoolSize:   r.PoolSize,
		MaxRetries: r.MaxRetries,
		UseTLS:     r.TLS,
	}
}
