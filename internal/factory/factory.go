// Package factory wires application components from configuration.
package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/blockduel/blockduel-go/internal/dependencies/clock"
	"github.com/blockduel/blockduel-go/internal/dependencies/random"
	"github.com/blockduel/blockduel-go/internal/services/match"
	"github.com/blockduel/blockduel-go/internal/services/snapshot"
	"github.com/blockduel/blockduel-go/internal/storage"
	"github.com/blockduel/blockduel-go/internal/storage/memory"
	redisstorage "github.com/blockduel/blockduel-go/internal/storage/redis"
	sqlitestorage "github.com/blockduel/blockduel-go/internal/storage/sqlite"
	"github.com/blockduel/blockduel-go/internal/transport"
	memorytransport "github.com/blockduel/blockduel-go/internal/transport/memory"
	redistransport "github.com/blockduel/blockduel-go/internal/transport/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// Transport type constants
const (
	TransportTypeMemory = "memory"
	TransportTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Event relay
	Transport transport.Transport

	// Services
	MatchController *match.Controller
	SnapshotService *snapshot.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file path (required if StorageType is "sqlite")
	SQLitePath string
	// TransportType selects the event relay ("memory" or "redis")
	// If empty, defaults to "memory"
	TransportType string
	// TransportRedisURL is the Redis URL for the relay (required if TransportType is "redis")
	TransportRedisURL string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	tr, err := newTransport(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, tr, clk, rnd, logger), nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlitestorage.Open(cfg.SQLitePath)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}
}

func newTransport(cfg Config, logger *slog.Logger) (transport.Transport, error) {
	transportType := cfg.TransportType
	if transportType == "" {
		transportType = TransportTypeMemory
	}

	switch transportType {
	case TransportTypeMemory:
		return memorytransport.New(logger), nil
	case TransportTypeRedis:
		if cfg.TransportRedisURL == "" {
			return nil, errors.New("TransportRedisURL required when TransportType is redis")
		}
		return redistransport.New(cfg.TransportRedisURL, logger)
	default:
		return nil, errors.New("invalid TransportType: must be 'memory' or 'redis'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, tr transport.Transport, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	matchController := match.NewController(store, clk, rnd)
	snapshotService := snapshot.NewService(store, clk, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Transport:       tr,
		MatchController: matchController,
		SnapshotService: snapshotService,
	}
}
