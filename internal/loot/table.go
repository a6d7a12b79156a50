// Package loot generates the rewards dropped when a dragon dies: an optional
// named chest, the egg, item pools and command pools.
package loot

import (
	"github.com/KirkDiggler/endguard/internal/pkg/weighted"
)

// DefaultChestName is used when a table does not name its chest
const DefaultChestName = "%dragon% Loot"

// Pool is an independently triggered, weighted, roll-bounded generator
type Pool struct {
	Name     string
	Chance   float64
	MinRolls int
	MaxRolls int
	Elements *weighted.Pool[*Element]
}

// NewPool creates an empty pool drawing elements from source
func NewPool(name string, chance float64, minRolls, maxRolls int, source weighted.Source) *Pool {
	if maxRolls < minRolls {
		maxRolls = minRolls
	}
	return &Pool{
		Name:     name,
		Chance:   chance,
		MinRolls: minRolls,
		MaxRolls: maxRolls,
		Elements: weighted.NewPool[*Element](source),
	}
}

// Add adds element under its own weight. Non-positive weights are rejected.
func (p *Pool) Add(element *Element) bool {
	if element == nil {
		return false
	}
	return p.Elements.Add(element.Weight, element)
}

// Table is a complete reward definition
type Table struct {
	ID           string
	ChestChance  float64
	ChestName    string
	Egg          *Element
	ItemPools    []*Pool
	CommandPools []*Pool
}
