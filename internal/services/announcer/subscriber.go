package announcer

import (
	"context"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/endguard/internal/engine"
	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/errors"
)

// AnnouncementPriority orders the announcement handler among bus subscribers
const AnnouncementPriority = 100

// SubscribeAnnouncements broadcasts a template's announcement lines when its
// battle commences. It returns the subscription id.
func SubscribeAnnouncements(bus events.EventBus, messenger engine.Messenger) (string, error) {
	if bus == nil {
		return "", errors.InvalidArgument("event bus is required")
	}
	if messenger == nil {
		return "", errors.InvalidArgument("messenger is required")
	}

	id := bus.SubscribeFunc(EventTypeStateChanged, AnnouncementPriority, func(_ context.Context, event events.Event) error {
		world, _, to, ok := Change(event)
		if !ok || to != entities.BattleStateBattleCommenced {
			return nil
		}

		template := TemplateOf(event)
		if template == nil || !template.Announce {
			return nil
		}

		for _, line := range template.Announcement {
			messenger.Broadcast(world, engine.Message{Text: line})
		}
		return nil
	})

	return id, nil
}
