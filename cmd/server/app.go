package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/endguard/internal/config"
	"github.com/KirkDiggler/endguard/internal/definitions"
	"github.com/KirkDiggler/endguard/internal/engine/memory"
	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/loot"
	"github.com/KirkDiggler/endguard/internal/orchestrators/encounter"
	"github.com/KirkDiggler/endguard/internal/particles"
	"github.com/KirkDiggler/endguard/internal/pkg/clock"
	"github.com/KirkDiggler/endguard/internal/pkg/expr"
	"github.com/KirkDiggler/endguard/internal/pkg/idgen"
	"github.com/KirkDiggler/endguard/internal/pkg/weighted"
	"github.com/KirkDiggler/endguard/internal/redis"
	loothistory "github.com/KirkDiggler/endguard/internal/repositories/loot_history"
	"github.com/KirkDiggler/endguard/internal/repositories/sessions"
	"github.com/KirkDiggler/endguard/internal/repositories/templates"
	"github.com/KirkDiggler/endguard/internal/services/announcer"
)

// appOptions tweaks the component graph for the command being run
type appOptions struct {
	// SpawnDelay is the in-memory host's resurrection delay in ticks
	SpawnDelay int

	// Seed makes template and loot draws reproducible when non-zero
	Seed uint64

	// Ephemeral keeps snapshots and history out of any configured backend
	Ephemeral bool
}

// app is the wired component graph shared by serve and simulate
type app struct {
	cfg        *config.Config
	host       *memory.Host
	bus        events.EventBus
	store      *definitions.Store
	loader     *definitions.Loader
	reloader   *definitions.Reloader
	history    loothistory.Repository
	encounters encounter.Service

	redisClient redis.Client
}

func buildApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	a := &app{cfg: cfg}

	source := weighted.DefaultSource()
	if opts.Seed != 0 {
		source = weighted.NewSeededSource(opts.Seed)
	}

	a.host = memory.NewHost(&memory.Config{SpawnDelay: opts.SpawnDelay})
	for _, w := range cfg.Worlds {
		a.host.AddWorld(w.Name, w.Portal)
	}

	a.bus = events.NewBus()
	if _, err := announcer.SubscribeAnnouncements(a.bus, a.host); err != nil {
		return nil, fmt.Errorf("failed to subscribe announcements: %w", err)
	}
	ann, err := announcer.New(&announcer.Config{EventBus: a.bus})
	if err != nil {
		return nil, fmt.Errorf("failed to create announcer: %w", err)
	}

	parser := expr.NewParser(expr.NewRegistry())
	templateRepo := templates.NewInMemory(source)
	a.store = definitions.NewStore(nil)

	a.loader, err = definitions.NewLoader(&definitions.LoaderConfig{
		Dir: cfg.DefinitionsDir,
		Compile: &particles.CompileConfig{
			Parser:     parser,
			Conditions: particles.NewConditionRegistry(),
		},
		LootSource: source,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create definitions loader: %w", err)
	}
	a.reloader, err = definitions.NewReloader(&definitions.ReloaderConfig{
		Loader:    a.loader,
		Store:     a.store,
		Templates: templateRepo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create definitions reloader: %w", err)
	}

	generator, err := loot.NewGenerator(&loot.GeneratorConfig{
		Host:   a.host,
		Roller: dice.DefaultRoller,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create loot generator: %w", err)
	}

	snapshots, err := a.buildRepositories(ctx, opts)
	if err != nil {
		a.close()
		return nil, err
	}

	a.encounters, err = encounter.NewOrchestrator(&encounter.Config{
		Host:        a.host,
		Announcer:   ann,
		Templates:   templateRepo,
		Definitions: a.store,
		Loot:        generator,
		Parser:      parser,
		History:     a.history,
		Snapshots:   snapshots,
		Settings:    cfg.EncounterSettings(),
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create encounter orchestrator: %w", err)
	}

	a.loadDefinitions(ctx)

	return a, nil
}

func (a *app) buildRepositories(ctx context.Context, opts appOptions) (sessions.Repository, error) {
	cfg := a.cfg
	clk := clock.New()
	ids := idgen.NewUUID("loot")

	driver := cfg.Persistence.Driver
	if opts.Ephemeral {
		driver = config.DriverNone
	}

	if driver == config.DriverRedis {
		endpoint, redisOpts := cfg.RedisEndpoint()
		client, err := redis.Dial(endpoint, redisOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		a.redisClient = client
		if err := redis.Ping(ctx, client, redis.DefaultPingTimeout); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	if cfg.History.Enabled {
		if a.redisClient != nil {
			repo, err := loothistory.NewRedisRepository(&loothistory.Config{
				Client:      a.redisClient,
				Clock:       clk,
				IDGenerator: ids,
				TTL:         cfg.History.TTL,
				MaxLength:   cfg.History.MaxLength,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create loot history repository: %w", err)
			}
			a.history = repo
		} else {
			a.history = loothistory.NewInMemory(clk, ids, cfg.History.MaxLength)
		}
	}

	switch driver {
	case config.DriverFile:
		repo, err := sessions.NewFileRepository(&sessions.FileConfig{
			Path:  cfg.Persistence.FilePath,
			Clock: clk,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create session repository: %w", err)
		}
		return repo, nil
	case config.DriverRedis:
		repo, err := sessions.NewRedisRepository(&sessions.RedisConfig{
			Client: a.redisClient,
			Clock:  clk,
			TTL:    cfg.Persistence.Redis.SnapshotTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create session repository: %w", err)
		}
		return repo, nil
	default:
		return nil, nil
	}
}

// loadDefinitions performs the startup load. A broken definitions directory
// leaves the catalog empty rather than stopping the server.
func (a *app) loadDefinitions(ctx context.Context) {
	out, err := a.reloader.Reload(ctx)
	if err != nil {
		slog.Warn("Definitions not loaded", "dir", a.loader.Dir(), "error", err)
		return
	}
	logReload(out)
}

func logReload(out *definitions.ReloadOutput) {
	for _, err := range out.Errors {
		file, fragment := errors.Location(err)
		slog.Warn("Skipped definition", "file", file, "fragment", fragment, "error", err)
	}
	slog.Info("Definitions loaded",
		"templates", out.Templates,
		"loot_tables", out.LootTables,
		"shapes", out.Shapes,
		"skipped", len(out.Errors),
	)
}

// step advances the host and the encounters by one tick
func (a *app) step(ctx context.Context) error {
	encounter.Dispatch(ctx, a.encounters, a.host.Tick())
	return a.encounters.Tick(ctx)
}

func (a *app) close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}
}
