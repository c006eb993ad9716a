// Package config provides YAML-based server configuration loading.
package config

import (
	"time"

	"github.com/blockduel/blockduel-go/internal/protocol"
	"github.com/blockduel/blockduel-go/internal/services/snapshot"
)

// Config is the top-level server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Transport TransportConfig `yaml:"transport"`
	Sync      SyncConfig      `yaml:"sync"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig defines HTTP listener parameters.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	// Type is one of "memory", "redis", or "sqlite".
	Type string `yaml:"type"`

	Redis  RedisConfig  `yaml:"redis"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// RedisConfig defines Redis connection parameters.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	MatchTTL     time.Duration `yaml:"match_ttl"`
	SnapshotTTL  time.Duration `yaml:"snapshot_ttl"`
}

// SQLiteConfig defines SQLite file storage parameters.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// TransportConfig selects the event relay fabric. With "memory" events only
// reach clients connected to this process; "redis" fans out across replicas.
type TransportConfig struct {
	Type string `yaml:"type"`
	URL  string `yaml:"url"`
}

// SyncConfig tunes the match synchronization protocol.
type SyncConfig struct {
	HeartbeatInterval    time.Duration `yaml:"heartbeat_interval"`
	SilenceThreshold     time.Duration `yaml:"silence_threshold"`
	GraceWindow          time.Duration `yaml:"grace_window"`
	SnapshotLockInterval int           `yaml:"snapshot_lock_interval"`
	SnapshotTimeInterval time.Duration `yaml:"snapshot_time_interval"`
}

// LogConfig defines logging parameters.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", or "error".
	Level string `yaml:"level"`
	// Format is "json" or "text".
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Type: "memory",
			Redis: RedisConfig{
				URL:         "redis://localhost:6379",
				MatchTTL:    24 * time.Hour,
				SnapshotTTL: time.Hour,
			},
			SQLite: SQLiteConfig{
				Path: "~/.blockduel/blockduel.db",
			},
		},
		Transport: TransportConfig{
			Type: "memory",
			URL:  "redis://localhost:6379",
		},
		Sync: SyncConfig{
			HeartbeatInterval:    protocol.DefaultHeartbeatInterval,
			SilenceThreshold:     protocol.DefaultSilenceThreshold,
			GraceWindow:          protocol.DefaultGraceWindow,
			SnapshotLockInterval: snapshot.DefaultLockInterval,
			SnapshotTimeInterval: snapshot.DefaultTimeInterval,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
