package loot

import (
	"log/slog"

	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/pkg/weighted"
)

// ElementSpec is the declarative form of a pool element
type ElementSpec struct {
	Weight      float64  `yaml:"weight"`
	Material    string   `yaml:"material"`
	MinAmount   int      `yaml:"min_amount"`
	MaxAmount   int      `yaml:"max_amount"`
	DisplayName string   `yaml:"name"`
	Lore        []string `yaml:"lore"`
	Command     string   `yaml:"command"`
}

// PoolSpec is the declarative form of a pool
type PoolSpec struct {
	Name     string        `yaml:"name"`
	Chance   float64       `yaml:"chance"`
	MinRolls int           `yaml:"min_rolls"`
	MaxRolls int           `yaml:"max_rolls"`
	Elements []ElementSpec `yaml:"elements"`
}

// TableSpec is the declarative form of a table
type TableSpec struct {
	ID           string     `yaml:"id"`
	ChestChance  float64    `yaml:"chest_chance"`
	ChestName    string     `yaml:"chest_name"`
	EggChance    float64    `yaml:"egg_chance"`
	ItemPools    []PoolSpec `yaml:"item_pools"`
	CommandPools []PoolSpec `yaml:"command_pools"`
}

// Build validates spec and constructs a table whose pools draw from source.
// Elements with a non-positive weight are logged and skipped.
func Build(spec TableSpec, source weighted.Source) (*Table, error) {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("id", spec.ID, vb)
	errors.ValidatePercent("chest_chance", spec.ChestChance, vb)
	errors.ValidatePercent("egg_chance", spec.EggChance, vb)
	for _, ps := range append(append([]PoolSpec{}, spec.ItemPools...), spec.CommandPools...) {
		validatePool(ps, vb)
	}
	for _, ps := range spec.ItemPools {
		for _, es := range ps.Elements {
			if es.Material == "" {
				vb.Field("item_pools."+ps.Name, "element without material")
			}
		}
	}
	for _, ps := range spec.CommandPools {
		for _, es := range ps.Elements {
			if es.Command == "" {
				vb.Field("command_pools."+ps.Name, "element without command")
			}
		}
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	table := &Table{
		ID:          spec.ID,
		ChestChance: spec.ChestChance,
		ChestName:   spec.ChestName,
		Egg:         NewEgg(spec.EggChance),
	}

	for _, ps := range spec.ItemPools {
		pool := NewPool(ps.Name, ps.Chance, ps.MinRolls, ps.MaxRolls, source)
		for _, es := range ps.Elements {
			minAmount, maxAmount := es.MinAmount, es.MaxAmount
			if minAmount <= 0 {
				minAmount = 1
			}
			if maxAmount < minAmount {
				maxAmount = minAmount
			}
			element := NewItem(es.Weight, es.Material, minAmount, maxAmount)
			element.DisplayName = es.DisplayName
			element.Lore = es.Lore
			addElement(spec.ID, pool, element)
		}
		table.ItemPools = append(table.ItemPools, pool)
	}

	for _, ps := range spec.CommandPools {
		pool := NewPool(ps.Name, ps.Chance, ps.MinRolls, ps.MaxRolls, source)
		for _, es := range ps.Elements {
			addElement(spec.ID, pool, NewCommand(es.Weight, es.Command))
		}
		table.CommandPools = append(table.CommandPools, pool)
	}

	return table, nil
}

func validatePool(ps PoolSpec, vb *errors.ValidationBuilder) {
	field := "pools." + ps.Name
	if ps.Name == "" {
		vb.Field("pools", "pool name is required")
	}
	errors.ValidatePercent(field+".chance", ps.Chance, vb)
	if ps.MinRolls < 0 {
		vb.Field(field+".min_rolls", "must not be negative")
	}
	if ps.MaxRolls < ps.MinRolls {
		vb.Field(field+".max_rolls", "must be at least min_rolls")
	}
}

func addElement(tableID string, pool *Pool, element *Element) {
	if !pool.Add(element) {
		slog.Warn("skipping loot element with invalid weight",
			"table", tableID,
			"pool", pool.Name,
			"kind", element.Kind.String(),
			"weight", element.Weight)
	}
}
