package injector

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/wire"

	"github.com/zeusync/futbolin/internal/config"
	"github.com/zeusync/futbolin/internal/core/events/bus"
	"github.com/zeusync/futbolin/internal/core/observability/log"
	"github.com/zeusync/futbolin/internal/core/systems/physics"
	"github.com/zeusync/futbolin/internal/game"
	"github.com/zeusync/futbolin/internal/server"
)

// ProviderSet builds config -> logger -> bus -> world -> match -> runner ->
// server.
var ProviderSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	bus.New,
	ProvideWorld,
	ProvideRandom,
	game.Build,
	ProvideRunner,
	server.NewServer,
	wire.Bind(new(server.Simulation), new(*game.Runner)),
	wire.Struct(new(App), "*"),
)

// App is everything cmd/futbolin runs.
type App struct {
	Config *config.Config
	Logger log.Log
	Match  *game.Match
	Runner *game.Runner
	Server *server.Server
}

// EnvFiles are the dotenv files read by ProvideConfig.
var EnvFiles = []string{".env"}

func ProvideConfig() (*config.Config, error) {
	return config.FromEnv(EnvFiles...)
}

// ProvideLogger returns the service logger and a cleanup that flushes it.
func ProvideLogger(cfg *config.Config) (log.Log, func(), error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	logger := log.New(level, log.WithFormat(cfg.Log.Format))
	return logger, func() { _ = logger.Sync() }, nil
}

func ProvideWorld(cfg *config.Config) physics.World {
	return game.NewWorld(cfg)
}

// ProvideRandom seeds the kickoff draw. A zero seed is replaced with the
// current time.
func ProvideRandom(cfg *config.Config) game.Random {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

func ProvideRunner(m *game.Match, cfg *config.Config, logger log.Log) *game.Runner {
	return game.NewRunner(m, cfg.Server, logger)
}
