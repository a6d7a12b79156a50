package encounter

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/endguard/internal/engine"
)

// Dispatch routes host events to svc in the order the host reported them.
// Failures are logged; one bad event never blocks the rest.
func Dispatch(ctx context.Context, svc Service, events []engine.HostEvent) {
	for _, ev := range events {
		var err error
		switch ev.Kind {
		case engine.HostEventDragonSpawned:
			_, err = svc.HandleDragonSpawn(ctx, &HandleDragonSpawnInput{
				World:  ev.World,
				Dragon: ev.Dragon,
			})
		case engine.HostEventDragonDied:
			_, err = svc.HandleDragonDeath(ctx, &HandleDragonDeathInput{
				World:  ev.World,
				Dragon: ev.Dragon,
				Killer: ev.Player,
			})
		case engine.HostEventPlayerJoined:
			_, err = svc.HandlePlayerJoin(ctx, &HandlePlayerJoinInput{
				World:  ev.World,
				Player: ev.Player,
			})
		default:
			slog.Warn("unknown host event", "kind", string(ev.Kind), "world", ev.World)
		}
		if err != nil {
			slog.Error("failed to handle host event",
				"kind", string(ev.Kind),
				"world", ev.World,
				"error", err)
		}
	}
}
