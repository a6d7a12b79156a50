package particles

import (
	"strconv"
	"strings"

	"github.com/KirkDiggler/endguard/internal/errors"
)

// Context is the read-only view of a session a condition is evaluated against
type Context struct {
	X     float64
	Z     float64
	Ticks int
	Angle float64
	World string
}

// ConditionKind selects the variant of a Condition
type ConditionKind int

// Condition kinds
const (
	ConditionAlways ConditionKind = iota
	ConditionNumber
	ConditionString
	ConditionFunc
)

// Operator compares a context field against a constant
type Operator string

// Supported operators. String conditions accept only equality.
const (
	OpLess         Operator = "<"
	OpGreater      Operator = ">"
	OpEqual        Operator = "="
	OpLessEqual    Operator = "<="
	OpGreaterEqual Operator = ">="
	OpNotEqual     Operator = "!="
)

// ConditionSpec is the declarative form of a condition as found in a shape
// definition file.
type ConditionSpec struct {
	Type     string `yaml:"type"`
	Field    string `yaml:"field"`
	Operator string `yaml:"op"`
	Value    string `yaml:"value"`
}

func (c ConditionSpec) String() string {
	return strings.TrimSpace(strings.Join([]string{c.Type, c.Field, c.Operator, c.Value}, " "))
}

// Condition is a predicate over a Context
type Condition struct {
	Kind     ConditionKind
	Field    string
	Operator Operator
	Number   float64
	Text     string

	// Predicate backs ConditionFunc conditions built by registered factories
	Predicate func(Context) bool
}

// IsMet evaluates the condition against ctx
func (c Condition) IsMet(ctx Context) bool {
	switch c.Kind {
	case ConditionAlways:
		return true
	case ConditionNumber:
		v, ok := numberField(ctx, c.Field)
		if !ok {
			return false
		}
		return compareNumber(v, c.Operator, c.Number)
	case ConditionString:
		v, ok := stringField(ctx, c.Field)
		if !ok {
			return false
		}
		switch c.Operator {
		case OpEqual:
			return v == c.Text
		case OpNotEqual:
			return v != c.Text
		}
		return false
	case ConditionFunc:
		return c.Predicate != nil && c.Predicate(ctx)
	default:
		return false
	}
}

// AllMet reports whether every condition holds. An empty list always holds.
func AllMet(conditions []Condition, ctx Context) bool {
	for _, c := range conditions {
		if !c.IsMet(ctx) {
			return false
		}
	}
	return true
}

func numberField(ctx Context, field string) (float64, bool) {
	switch field {
	case "x":
		return ctx.X, true
	case "z":
		return ctx.Z, true
	case "t", "ticks":
		return float64(ctx.Ticks), true
	case "angle", "theta":
		return ctx.Angle, true
	}
	return 0, false
}

func stringField(ctx Context, field string) (string, bool) {
	switch field {
	case "world":
		return ctx.World, true
	}
	return "", false
}

func compareNumber(v float64, op Operator, constant float64) bool {
	switch op {
	case OpLess:
		return v < constant
	case OpGreater:
		return v > constant
	case OpEqual:
		return v == constant
	case OpLessEqual:
		return v <= constant
	case OpGreaterEqual:
		return v >= constant
	case OpNotEqual:
		return v != constant
	}
	return false
}

func parseAlways(ConditionSpec) (Condition, error) {
	return Condition{Kind: ConditionAlways}, nil
}

func parseNumber(spec ConditionSpec) (Condition, error) {
	if _, ok := numberField(Context{}, spec.Field); !ok {
		return Condition{}, errors.InvalidArgumentf("unknown numeric field %q", spec.Field)
	}
	op := Operator(spec.Operator)
	switch op {
	case OpLess, OpGreater, OpEqual, OpLessEqual, OpGreaterEqual, OpNotEqual:
	default:
		return Condition{}, errors.InvalidArgumentf("unknown operator %q", spec.Operator)
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(spec.Value), 64)
	if err != nil {
		return Condition{}, errors.InvalidArgumentf("value %q is not a number", spec.Value)
	}
	return Condition{Kind: ConditionNumber, Field: spec.Field, Operator: op, Number: n}, nil
}

func parseString(spec ConditionSpec) (Condition, error) {
	if _, ok := stringField(Context{}, spec.Field); !ok {
		return Condition{}, errors.InvalidArgumentf("unknown string field %q", spec.Field)
	}
	op := Operator(spec.Operator)
	if op != OpEqual && op != OpNotEqual {
		return Condition{}, errors.InvalidArgumentf("operator %q not supported for strings", spec.Operator)
	}
	return Condition{Kind: ConditionString, Field: spec.Field, Operator: op, Text: spec.Value}, nil
}
