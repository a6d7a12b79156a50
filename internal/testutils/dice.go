package testutils

import (
	"github.com/KirkDiggler/rpg-toolkit/dice"
)

// ScriptedRoller is a dice.Roller returning queued results. Once the queue is
// drained it returns Fallback, clamped to the die size; a zero Fallback
// rolls the maximum.
type ScriptedRoller struct {
	Results  []int
	Fallback int
	Calls    []int
}

var _ dice.Roller = (*ScriptedRoller)(nil)

// NewScriptedRoller creates a roller that replays results in order
func NewScriptedRoller(results ...int) *ScriptedRoller {
	return &ScriptedRoller{Results: results}
}

// Roll implements dice.Roller
func (r *ScriptedRoller) Roll(size int) (int, error) {
	r.Calls = append(r.Calls, size)

	v := r.Fallback
	if len(r.Results) > 0 {
		v = r.Results[0]
		r.Results = r.Results[1:]
	}
	if v <= 0 || v > size {
		v = size
	}
	return v, nil
}

// RollN implements dice.Roller
func (r *ScriptedRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, 0, count)
	for i := 0; i < count; i++ {
		v, err := r.Roll(size)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
