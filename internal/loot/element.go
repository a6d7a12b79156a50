package loot

import (
	"github.com/KirkDiggler/endguard/internal/engine"
)

// ElementKind selects the variant of an Element
type ElementKind int

// Element kinds
const (
	ElementItem ElementKind = iota
	ElementCommand
	ElementEgg
)

func (k ElementKind) String() string {
	switch k {
	case ElementItem:
		return "item"
	case ElementCommand:
		return "command"
	case ElementEgg:
		return "egg"
	}
	return "unknown"
}

// Element is one reward a pool can produce. Only the fields of its Kind are set.
type Element struct {
	Kind   ElementKind
	Weight float64

	// Item
	Material    string
	MinAmount   int
	MaxAmount   int
	DisplayName string
	Lore        []string

	// Command
	Command string

	// Egg
	Chance float64
}

// NewItem creates an item element
func NewItem(weight float64, material string, minAmount, maxAmount int) *Element {
	return &Element{
		Kind:      ElementItem,
		Weight:    weight,
		Material:  material,
		MinAmount: minAmount,
		MaxAmount: maxAmount,
	}
}

// NewCommand creates a command element
func NewCommand(weight float64, command string) *Element {
	return &Element{Kind: ElementCommand, Weight: weight, Command: command}
}

// NewEgg creates the egg reward with its own spawn chance
func NewEgg(chance float64) *Element {
	return &Element{Kind: ElementEgg, Weight: 1, Chance: chance}
}

func (e *Element) itemStack(amount int, dragonName string) engine.ItemStack {
	stack := engine.ItemStack{
		Material:    e.Material,
		Amount:      amount,
		DisplayName: replaceDragon(e.DisplayName, dragonName),
	}
	for _, line := range e.Lore {
		stack.Lore = append(stack.Lore, replaceDragon(line, dragonName))
	}
	return stack
}
