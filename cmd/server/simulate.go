package main

import (
	"context"
	"fmt"
	"io"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/orchestrators/encounter"
	loothistory "github.com/KirkDiggler/endguard/internal/repositories/loot_history"
	"github.com/KirkDiggler/endguard/internal/services/announcer"
)

// simulatedSpawnDelay is how many host ticks the in-memory dragon takes to appear
const simulatedSpawnDelay = 20

var (
	simWorld      string
	simPlayer     string
	simDelay      int
	simTemplate   string
	simLootTable  string
	simSeed       uint64
	simMaxSeconds int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one full fight against the in-memory host",
	Long: `Simulate arms a respawn, waits for the dragon, kills it and follows the death
animation and loot generation. Ticks run as fast as possible. Examples:

  simulate --definitions ./definitions
  simulate --template inferno --seed 42`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simWorld, "world", "", "World to fight in (default: first configured world)")
	simulateCmd.Flags().StringVar(&simPlayer, "player", "Steve", "Name of the player landing the killing blow")
	simulateCmd.Flags().IntVar(&simDelay, "delay", 5, "Respawn countdown in seconds")
	simulateCmd.Flags().StringVar(&simTemplate, "template", "", "Template id; empty picks one by weight")
	simulateCmd.Flags().StringVar(&simLootTable, "loot", "", "Loot table override for this fight")
	simulateCmd.Flags().Uint64Var(&simSeed, "seed", 0, "Seed for reproducible draws; 0 is random")
	simulateCmd.Flags().IntVar(&simMaxSeconds, "max-seconds", 600, "Give up after this much simulated time")
}

type simulation struct {
	app   *app
	world string
	out   io.Writer
	ticks int
	rate  int
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogger(cfg.LogLevel)

	world := simWorld
	if world == "" && len(cfg.Worlds) > 0 {
		world = cfg.Worlds[0].Name
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := buildApp(ctx, cfg, appOptions{
		SpawnDelay: simulatedSpawnDelay,
		Seed:       simSeed,
		Ephemeral:  true,
	})
	if err != nil {
		return err
	}
	defer a.close()

	portal, ok := a.host.PortalLocation(world)
	if !ok {
		return fmt.Errorf("world %q is not configured", world)
	}

	sim := &simulation{app: a, world: world, out: cmd.OutOrStdout(), rate: cfg.TickRate}
	a.bus.SubscribeFunc(announcer.EventTypeStateChanged, 0, func(_ context.Context, event events.Event) error {
		w, from, to, ok := announcer.Change(event)
		if ok && w == world {
			fmt.Fprintf(sim.out, "[%7.2fs] %s -> %s\n", sim.seconds(), from, to)
		}
		return nil
	})

	player := &entities.Player{
		ID:       "simulated-player",
		Name:     simPlayer,
		Position: entities.Position{X: portal.X + 4, Y: portal.Y, Z: portal.Z + 4},
	}
	a.host.AddPlayer(world, player)

	started, err := a.encounters.StartRespawn(ctx, &encounter.StartRespawnInput{
		World:        world,
		DelaySeconds: simDelay,
		TemplateID:   simTemplate,
		LootTableID:  simLootTable,
	})
	if err != nil {
		return fmt.Errorf("failed to start respawn: %w", err)
	}
	if !started.Started {
		return fmt.Errorf("respawn rejected in %s", world)
	}
	fmt.Fprintf(sim.out, "Respawn armed in %s, countdown %ds\n", world, simDelay)

	limit := simMaxSeconds * sim.rate
	if err := sim.runUntil(ctx, limit, entities.SessionStateActive); err != nil {
		return err
	}

	status, err := sim.status(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(sim.out, "Dragon is up with template %q; %s lands the killing blow\n", status.ActiveTemplate, player.Name)
	a.host.KillDragon(world, player)

	if err := sim.runUntil(ctx, limit, entities.SessionStateRespawning, entities.SessionStateIdle); err != nil {
		return err
	}

	sim.report(ctx)

	return a.encounters.Shutdown(ctx)
}

func (s *simulation) seconds() float64 {
	return float64(s.ticks) / float64(s.rate)
}

func (s *simulation) status(ctx context.Context) (*encounter.WorldStatus, error) {
	out, err := s.app.encounters.GetWorldStatus(ctx, &encounter.GetWorldStatusInput{World: s.world})
	if err != nil {
		return nil, err
	}
	return out.Status, nil
}

// runUntil steps until the world reaches one of the wanted states. The first
// step always runs so pending host events are seen.
func (s *simulation) runUntil(ctx context.Context, limit int, want ...entities.SessionState) error {
	for i := 0; i < limit; i++ {
		if err := s.app.step(ctx); err != nil {
			return err
		}
		s.ticks++

		status, err := s.status(ctx)
		if err != nil {
			return err
		}
		for _, w := range want {
			if status.State == w {
				return nil
			}
		}
	}
	return fmt.Errorf("world %s did not reach %v within %ds", s.world, want, simMaxSeconds)
}

func (s *simulation) report(ctx context.Context) {
	status, err := s.status(ctx)
	if err == nil {
		fmt.Fprintf(s.out, "Fight over after %.2fs; state %s", s.seconds(), status.State)
		if status.SecondsUntilRespawn >= 0 {
			fmt.Fprintf(s.out, ", next dragon in %ds", status.SecondsUntilRespawn)
		}
		fmt.Fprintln(s.out)
	}

	if commands := s.app.host.Commands(); len(commands) > 0 {
		fmt.Fprintln(s.out, "Commands dispatched:")
		for _, c := range commands {
			fmt.Fprintf(s.out, "  /%s\n", c)
		}
	}

	if s.app.history == nil {
		return
	}
	// Shutdown flushes queued history, so read after it completes.
	if err := s.app.encounters.Shutdown(ctx); err != nil {
		return
	}
	out, err := s.app.history.List(ctx, &loothistory.ListInput{World: s.world, Limit: 1})
	if err != nil || len(out.Entries) == 0 {
		fmt.Fprintln(s.out, "No loot recorded")
		return
	}
	entry := out.Entries[0]
	fmt.Fprintf(s.out, "Loot from table %q (chest=%t egg=%t):\n", entry.TableID, entry.ChestPlaced, entry.EggPlaced)
	for _, item := range entry.Items {
		fmt.Fprintf(s.out, "  %dx %s\n", item.Amount, item.Material)
	}
}
