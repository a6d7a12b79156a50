// Package death plays the dragon death sequence: it waits for the host's own
// death animation to nearly finish, drives the particle descent and strikes
// lightning where it lands.
package death

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/endguard/internal/engine"
	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/particles"
	"github.com/KirkDiggler/endguard/internal/pkg/expr"
	"github.com/KirkDiggler/endguard/internal/services/announcer"
)

// Defaults applied when the config leaves them unset
const (
	DefaultThresholdTicks = 185
	DefaultMaxTicks       = 20 * 60
)

// Phase is the current step of a sequencer
type Phase int

// Sequencer phases
const (
	PhaseWaiting Phase = iota
	PhaseAnimating
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseAnimating:
		return "animating"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

// Config configures a death sequencer
type Config struct {
	World     string
	Host      engine.Host
	Announcer announcer.Service
	Parser    *expr.Parser

	Dragon   *entities.Dragon
	Template *entities.Template

	// Shape is the particle descent; nil skips straight to the lightning
	Shape *particles.Shape

	// Start is where the descent begins, StopY where it ends
	Start entities.Position
	StopY float64

	// ThresholdTicks is the host death animation time to wait for
	ThresholdTicks int

	// MaxTicks bounds the descent when no entry ever moves it
	MaxTicks int

	LightningStrikes int
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRequired("World", c.World, vb)
	if c.Host == nil {
		vb.RequiredField("Host")
	}
	if c.Announcer == nil {
		vb.RequiredField("Announcer")
	}
	if c.Shape != nil && c.Parser == nil {
		vb.RequiredField("Parser")
	}
	if c.LightningStrikes < 0 {
		vb.Field("LightningStrikes", "must not be negative")
	}

	return vb.Build()
}

// Sequencer is the death sequence of one world. It is advanced every host
// tick and is not safe for concurrent use.
type Sequencer struct {
	cfg       Config
	phase     Phase
	session   *particles.Session
	final     entities.Position
	cancelled bool
}

// New creates a sequencer waiting for the host death animation
func New(cfg *Config) (*Sequencer, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	c := *cfg
	if c.ThresholdTicks <= 0 {
		c.ThresholdTicks = DefaultThresholdTicks
	}
	if c.MaxTicks <= 0 {
		c.MaxTicks = DefaultMaxTicks
	}

	return &Sequencer{cfg: c, phase: PhaseWaiting, final: c.Start}, nil
}

// Tick advances the sequence and reports whether it finished during this call
func (s *Sequencer) Tick(ctx context.Context) bool {
	switch s.phase {
	case PhaseWaiting:
		if s.cfg.Host.DeathAnimationTicks(s.cfg.World) < s.cfg.ThresholdTicks {
			return false
		}
		s.begin(ctx)
		if s.session == nil {
			return s.finish()
		}
		return false

	case PhaseAnimating:
		s.session.Tick()
		if s.session.ShouldStop() || s.session.Ticks() >= s.cfg.MaxTicks {
			if !s.session.ShouldStop() {
				slog.Warn("particle descent exceeded its tick budget",
					"world", s.cfg.World,
					"shape", s.cfg.Shape.ID,
					"ticks", s.session.Ticks())
			}
			s.final = s.session.Position()
			return s.finish()
		}
		return false

	default:
		return false
	}
}

// Cancel stops the sequence without striking lightning. Cancelling twice is
// a no-op.
func (s *Sequencer) Cancel() {
	if s.phase == PhaseDone {
		return
	}
	if s.session != nil {
		s.session.Cancel()
	}
	s.cancelled = true
	s.phase = PhaseDone
}

// Phase reports the current phase
func (s *Sequencer) Phase() Phase {
	return s.phase
}

// Done reports whether the sequence finished or was cancelled
func (s *Sequencer) Done() bool {
	return s.phase == PhaseDone
}

// Cancelled reports whether the sequence was cancelled
func (s *Sequencer) Cancelled() bool {
	return s.cancelled
}

// FinalPosition is where the descent ended
func (s *Sequencer) FinalPosition() entities.Position {
	return s.final
}

// Dragon is the defeated dragon
func (s *Sequencer) Dragon() *entities.Dragon {
	return s.cfg.Dragon
}

// Template is the defeated variant
func (s *Sequencer) Template() *entities.Template {
	return s.cfg.Template
}

func (s *Sequencer) begin(ctx context.Context) {
	_, err := s.cfg.Announcer.Transition(ctx, &announcer.TransitionInput{
		World:    s.cfg.World,
		From:     entities.BattleStateBattleEnd,
		To:       entities.BattleStateParticlesStart,
		Dragon:   s.cfg.Dragon,
		Template: s.cfg.Template,
	})
	if err != nil {
		slog.Warn("failed to publish battle state", "world", s.cfg.World, "error", err)
	}

	s.phase = PhaseAnimating
	if s.cfg.Shape == nil {
		return
	}

	session, err := particles.NewSession(&particles.SessionConfig{
		World:   s.cfg.World,
		Shape:   s.cfg.Shape,
		Parser:  s.cfg.Parser,
		Effects: s.cfg.Host,
		Start:   s.cfg.Start,
		StopY:   s.cfg.StopY,
	})
	if err != nil {
		slog.Error("failed to start particle descent",
			"world", s.cfg.World,
			"shape", s.cfg.Shape.ID,
			"error", err)
		return
	}
	s.session = session
}

func (s *Sequencer) finish() bool {
	for i := 0; i < s.cfg.LightningStrikes; i++ {
		s.cfg.Host.StrikeLightning(s.cfg.World, s.final)
	}
	s.phase = PhaseDone

	slog.Info("death sequence complete",
		"world", s.cfg.World,
		"template", entities.TemplateID(s.cfg.Template),
		"position", s.final.String())
	return true
}
