// Package announcer publishes battle phase changes on the event bus and
// turns them into player-facing announcements.
package announcer

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/errors"
)

// EventTypeStateChanged is published at every battle phase boundary
const EventTypeStateChanged = "endguard.battle.state_changed"

// Keys set on the event context of a state change
const (
	ContextKeyWorld    = "world"
	ContextKeyPrevious = "previous"
	ContextKeyNext     = "next"
	ContextKeyTemplate = "template"

	// ContextKeyCancelled is set to true by a listener that objects to the
	// change. The change still happens.
	ContextKeyCancelled = "cancelled"
)

// Service publishes phase changes
type Service interface {
	// Transition publishes a phase change. Listeners may cancel the event but
	// the caller's side effect always proceeds.
	Transition(ctx context.Context, input *TransitionInput) (*TransitionOutput, error)
}

// TransitionInput describes one phase change
type TransitionInput struct {
	World    string
	From     entities.BattleState
	To       entities.BattleState
	Dragon   *entities.Dragon
	Template *entities.Template
}

// TransitionOutput reports how listeners reacted
type TransitionOutput struct {
	Cancelled bool
}

// Config holds the dependencies for the announcer
type Config struct {
	EventBus events.EventBus
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}

	return vb.Build()
}

type service struct {
	bus events.EventBus
}

// New creates an announcer publishing on cfg.EventBus
func New(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &service{bus: cfg.EventBus}, nil
}

func (s *service) Transition(ctx context.Context, input *TransitionInput) (*TransitionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.World == "" {
		return nil, errors.InvalidArgument("world is required")
	}
	if !entities.IsValidTransition(input.From, input.To) {
		return nil, errors.InvalidArgumentf("transition %s -> %s is not emitted", input.From, input.To)
	}

	var source core.Entity = &entities.WorldRef{Name: input.World}
	if input.Dragon != nil {
		source = input.Dragon
	}

	event := events.NewGameEvent(EventTypeStateChanged, source, nil)
	event.Context().Set(ContextKeyWorld, input.World)
	event.Context().Set(ContextKeyPrevious, input.From)
	event.Context().Set(ContextKeyNext, input.To)
	if input.Template != nil {
		event.Context().Set(ContextKeyTemplate, input.Template)
	}

	if err := s.bus.Publish(ctx, event); err != nil {
		return nil, errors.Wrapf(err, "failed to publish %s -> %s", input.From, input.To)
	}

	slog.Debug("battle state changed",
		"world", input.World,
		"previous", input.From.String(),
		"next", input.To.String())

	cancelled := Cancelled(event)
	if cancelled {
		slog.Info("battle state change cancelled by listener, proceeding",
			"world", input.World,
			"next", input.To.String())
	}

	return &TransitionOutput{Cancelled: cancelled}, nil
}

// Cancel marks a state change event as objected to by a listener
func Cancel(event events.Event) {
	event.Context().Set(ContextKeyCancelled, true)
}

// Cancelled reports whether a listener called Cancel on event
func Cancelled(event events.Event) bool {
	v, ok := event.Context().Get(ContextKeyCancelled)
	if !ok {
		return false
	}
	cancelled, _ := v.(bool)
	return cancelled
}

// Change extracts the phase change carried by a state change event
func Change(event events.Event) (world string, from, to entities.BattleState, ok bool) {
	if event == nil || event.Type() != EventTypeStateChanged {
		return "", 0, 0, false
	}
	w, okWorld := event.Context().Get(ContextKeyWorld)
	f, okFrom := event.Context().Get(ContextKeyPrevious)
	t, okTo := event.Context().Get(ContextKeyNext)
	if !okWorld || !okFrom || !okTo {
		return "", 0, 0, false
	}

	world, okWorld = w.(string)
	from, okFrom = f.(entities.BattleState)
	to, okTo = t.(entities.BattleState)
	return world, from, to, okWorld && okFrom && okTo
}

// TemplateOf returns the template attached to a state change event
func TemplateOf(event events.Event) *entities.Template {
	v, ok := event.Context().Get(ContextKeyTemplate)
	if !ok {
		return nil
	}
	t, _ := v.(*entities.Template)
	return t
}
