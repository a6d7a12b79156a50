// Package particles drives the descending particle animation played when a
// dragon dies. A Shape is a load-time definition; each death gets its own
// Session compiled from it.
package particles

import (
	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/pkg/expr"
)

// Default rendering parameters applied when an entry leaves them unset
const (
	DefaultEffect        = "dragon_breath"
	DefaultAmount        = 1
	DefaultFrameInterval = 1
	DefaultStreams       = 1
	DefaultDescentSpeed  = 0.1
)

// EntrySpec is the declarative form of an equation entry
type EntrySpec struct {
	X              string          `yaml:"x"`
	Z              string          `yaml:"z"`
	Conditions     []ConditionSpec `yaml:"conditions"`
	Effect         string          `yaml:"effect"`
	Amount         int             `yaml:"amount"`
	OffsetX        float64         `yaml:"offset_x"`
	OffsetY        float64         `yaml:"offset_y"`
	OffsetZ        float64         `yaml:"offset_z"`
	Speed          float64         `yaml:"speed"`
	FrameInterval  int             `yaml:"frame_interval"`
	AngleIncrement float64         `yaml:"angle_increment"`
	Streams        int             `yaml:"streams"`
}

// ShapeSpec is the declarative form of a shape
type ShapeSpec struct {
	ID           string      `yaml:"id"`
	DescentSpeed float64     `yaml:"descent_speed"`
	Entries      []EntrySpec `yaml:"entries"`
}

// Entry is a validated equation entry. Expressions are kept as source and
// compiled per session so sessions never share variable bindings.
type Entry struct {
	X              string
	Z              string
	Conditions     []Condition
	Effect         string
	Amount         int
	OffsetX        float64
	OffsetY        float64
	OffsetZ        float64
	Speed          float64
	FrameInterval  int
	AngleIncrement float64
	Streams        int
}

// Shape is a validated particle shape
type Shape struct {
	ID           string
	DescentSpeed float64
	Entries      []Entry
}

// CompileConfig holds the registries a shape is validated against
type CompileConfig struct {
	Parser     *expr.Parser
	Conditions *ConditionRegistry
}

// Validate validates the config
func (c *CompileConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Parser == nil {
		vb.RequiredField("Parser")
	}
	if c.Conditions == nil {
		vb.RequiredField("Conditions")
	}
	return vb.Build()
}

// Compile validates spec, applies defaults and resolves its conditions.
// The returned error names the offending fragment.
func Compile(cfg *CompileConfig, spec ShapeSpec) (*Shape, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid compile config")
	}
	if spec.ID == "" {
		return nil, errors.InvalidArgument("shape id is required")
	}
	if len(spec.Entries) == 0 {
		return nil, errors.InvalidArgumentf("shape %s has no entries", spec.ID)
	}

	shape := &Shape{
		ID:           spec.ID,
		DescentSpeed: spec.DescentSpeed,
		Entries:      make([]Entry, 0, len(spec.Entries)),
	}
	if shape.DescentSpeed <= 0 {
		shape.DescentSpeed = DefaultDescentSpeed
	}

	for i, es := range spec.Entries {
		entry, err := compileEntry(cfg, es)
		if err != nil {
			return nil, errors.Wrapf(err, "shape %s entry %d", spec.ID, i)
		}
		shape.Entries = append(shape.Entries, entry)
	}

	return shape, nil
}

func compileEntry(cfg *CompileConfig, es EntrySpec) (Entry, error) {
	for _, src := range []string{es.X, es.Z} {
		if src == "" {
			return Entry{}, errors.InvalidArgument("x and z expressions are required")
		}
		if _, err := cfg.Parser.Parse(src, nil); err != nil {
			return Entry{}, errors.WrapWithCode(err, errors.CodeInvalidArgument, src)
		}
	}

	entry := Entry{
		X:              es.X,
		Z:              es.Z,
		Effect:         es.Effect,
		Amount:         es.Amount,
		OffsetX:        es.OffsetX,
		OffsetY:        es.OffsetY,
		OffsetZ:        es.OffsetZ,
		Speed:          es.Speed,
		FrameInterval:  es.FrameInterval,
		AngleIncrement: es.AngleIncrement,
		Streams:        es.Streams,
	}
	if entry.Effect == "" {
		entry.Effect = DefaultEffect
	}
	if entry.Amount <= 0 {
		entry.Amount = DefaultAmount
	}
	if entry.FrameInterval <= 0 {
		entry.FrameInterval = DefaultFrameInterval
	}
	if entry.Streams <= 0 {
		entry.Streams = DefaultStreams
	}

	for _, cs := range es.Conditions {
		c, err := cfg.Conditions.Build(cs)
		if err != nil {
			return Entry{}, errors.Wrapf(err, "condition %q", cs.String())
		}
		entry.Conditions = append(entry.Conditions, c)
	}

	return entry, nil
}
