package particles

import (
	"github.com/KirkDiggler/endguard/internal/engine"
	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/pkg/expr"
)

// Variable names bound into entry expressions
const (
	VarX     = "x"
	VarZ     = "z"
	VarTicks = "t"
	VarAngle = "angle"
	VarTheta = "theta"
)

type sessionEntry struct {
	Entry
	x *expr.Expression
	z *expr.Expression
}

// SessionConfig configures a particle session
type SessionConfig struct {
	World   string
	Shape   *Shape
	Parser  *expr.Parser
	Effects engine.Effects

	// Start is where the animation begins, usually the dragon's last position
	Start entities.Position

	// StopY is the height at which the animation ends, the portal's base
	StopY float64
}

// Validate validates the config
func (c *SessionConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("World", c.World, vb)
	if c.Shape == nil {
		vb.RequiredField("Shape")
	}
	if c.Parser == nil {
		vb.RequiredField("Parser")
	}
	if c.Effects == nil {
		vb.RequiredField("Effects")
	}
	return vb.Build()
}

// Session animates one descent. Sessions are single use.
type Session struct {
	world   string
	effects engine.Effects
	origin  entities.Position
	pos     entities.Position
	stopY   float64
	descent float64

	vars    expr.Variables
	entries []sessionEntry

	ticks     int
	angle     float64
	cancelled bool
}

// NewSession compiles the shape's expressions against a private variable
// binding and positions the session at cfg.Start.
func NewSession(cfg *SessionConfig) (*Session, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid session config")
	}

	s := &Session{
		world:   cfg.World,
		effects: cfg.Effects,
		origin:  cfg.Start,
		pos:     cfg.Start,
		stopY:   cfg.StopY,
		descent: cfg.Shape.DescentSpeed,
		vars:    expr.Variables{},
	}

	for _, entry := range cfg.Shape.Entries {
		x, err := cfg.Parser.Parse(entry.X, s.vars)
		if err != nil {
			return nil, errors.Wrapf(err, "shape %s", cfg.Shape.ID)
		}
		z, err := cfg.Parser.Parse(entry.Z, s.vars)
		if err != nil {
			return nil, errors.Wrapf(err, "shape %s", cfg.Shape.ID)
		}
		s.entries = append(s.entries, sessionEntry{Entry: entry, x: x, z: z})
	}

	return s, nil
}

// Tick advances the animation by one host tick
func (s *Session) Tick() {
	if s.ShouldStop() {
		return
	}

	s.ticks++

	entry := s.selectEntry()
	if entry == nil {
		return
	}

	s.angle += entry.AngleIncrement
	if s.ticks%entry.FrameInterval != 0 {
		return
	}

	base := s.pos
	base.Y -= s.descent
	if base.Y < s.stopY {
		base.Y = s.stopY
	}

	// Every stream sees the same x/z binding; streams differ only in angle.
	// The center moves to stream 0 once all streams are emitted.
	lead := base
	step := 360.0 / float64(entry.Streams)
	for stream := 0; stream < entry.Streams; stream++ {
		s.bind(s.angle + float64(stream)*step)

		next := base.Add(entry.x.Evaluate(), 0, entry.z.Evaluate())
		if stream == 0 {
			lead = next
		}

		s.effects.SpawnParticle(s.world, engine.ParticleEffect{
			Kind:     entry.Effect,
			Position: next,
			Count:    entry.Amount,
			OffsetX:  entry.OffsetX,
			OffsetY:  entry.OffsetY,
			OffsetZ:  entry.OffsetZ,
			Speed:    entry.Speed,
		})
	}
	s.pos = lead
}

// ShouldStop reports whether the descent reached the stop height or the
// session was cancelled.
func (s *Session) ShouldStop() bool {
	return s.cancelled || s.pos.Y <= s.stopY
}

// Cancel stops the session. Cancelling twice is a no-op.
func (s *Session) Cancel() {
	s.cancelled = true
}

// Position is the current center of the animation
func (s *Session) Position() entities.Position {
	return s.pos
}

// Ticks is the number of ticks the session has run
func (s *Session) Ticks() int {
	return s.ticks
}

// Angle is the accumulated angle in degrees
func (s *Session) Angle() float64 {
	return s.angle
}

func (s *Session) context() Context {
	return Context{
		X:     s.pos.X - s.origin.X,
		Z:     s.pos.Z - s.origin.Z,
		Ticks: s.ticks,
		Angle: s.angle,
		World: s.world,
	}
}

func (s *Session) selectEntry() *sessionEntry {
	ctx := s.context()
	for i := range s.entries {
		if AllMet(s.entries[i].Conditions, ctx) {
			return &s.entries[i]
		}
	}
	return nil
}

func (s *Session) bind(angle float64) {
	s.vars.Set(VarX, s.pos.X-s.origin.X)
	s.vars.Set(VarZ, s.pos.Z-s.origin.Z)
	s.vars.Set(VarTicks, float64(s.ticks))
	s.vars.Set(VarAngle, angle)
	s.vars.Set(VarTheta, angle)
}
