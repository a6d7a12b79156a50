// Package weighted provides a cumulative-weight random sampler used for
// encounter template selection and loot pool rolls.
package weighted

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sort"
)

// Source supplies uniform floats in [0, 1)
type Source interface {
	Float64() float64
}

// NewSeededSource returns a reproducible source for the given seed
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, 0))
}

type cryptoSource struct{}

func (cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}

// DefaultSource returns a non-reproducible source backed by crypto/rand
func DefaultSource() Source { return cryptoSource{} }

type entry[T comparable] struct {
	cumulative float64
	weight     float64
	value      T
}

// Pool samples values proportionally to their weight.
//
// Entries are kept in insertion order with a running cumulative weight, so a
// draw is a ceiling search over the cumulative keys.
type Pool[T comparable] struct {
	source  Source
	entries []entry[T]
	total   float64
}

// NewPool creates an empty pool drawing from source. A nil source falls back
// to DefaultSource.
func NewPool[T comparable](source Source) *Pool[T] {
	if source == nil {
		source = DefaultSource()
	}
	return &Pool[T]{source: source}
}

// Add appends value with the given weight. Non-positive weights are rejected.
func (p *Pool[T]) Add(weight float64, value T) bool {
	if !(weight > 0) {
		return false
	}
	p.total += weight
	p.entries = append(p.entries, entry[T]{
		cumulative: p.total,
		weight:     weight,
		value:      value,
	})
	return true
}

// Next draws a value. The second return is false when the pool is empty.
func (p *Pool[T]) Next() (T, bool) {
	var zero T
	if len(p.entries) == 0 {
		return zero, false
	}

	draw := p.source.Float64() * p.total
	idx := sort.Search(len(p.entries), func(i int) bool {
		return p.entries[i].cumulative >= draw
	})
	if idx >= len(p.entries) {
		idx = len(p.entries) - 1
	}
	return p.entries[idx].value, true
}

// Remove drops every entry holding value and rebuilds the cumulative keys
func (p *Pool[T]) Remove(value T) {
	kept := p.entries[:0]
	var total float64
	for _, e := range p.entries {
		if e.value == value {
			continue
		}
		total += e.weight
		e.cumulative = total
		kept = append(kept, e)
	}
	p.entries = kept
	p.total = total
}

// Clear empties the pool
func (p *Pool[T]) Clear() {
	p.entries = nil
	p.total = 0
}

// Values returns the pooled values in insertion order
func (p *Pool[T]) Values() []T {
	values := make([]T, len(p.entries))
	for i, e := range p.entries {
		values[i] = e.value
	}
	return values
}

// Weight returns the weight registered for value, or 0 if absent
func (p *Pool[T]) Weight(value T) float64 {
	var w float64
	for _, e := range p.entries {
		if e.value == value {
			w += e.weight
		}
	}
	return w
}

// Total returns the sum of all weights
func (p *Pool[T]) Total() float64 {
	return p.total
}

// Len returns the number of entries
func (p *Pool[T]) Len() int {
	return len(p.entries)
}

// Copy returns a snapshot sharing the same random source
func (p *Pool[T]) Copy() *Pool[T] {
	entries := make([]entry[T], len(p.entries))
	copy(entries, p.entries)
	return &Pool[T]{
		source:  p.source,
		entries: entries,
		total:   p.total,
	}
}
