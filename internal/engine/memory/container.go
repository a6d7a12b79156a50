package memory

import (
	"github.com/KirkDiggler/endguard/internal/engine"
	"github.com/KirkDiggler/endguard/internal/errors"
)

// ContainerSize is the slot count of a placed chest
const ContainerSize = 27

// Container is an in-memory chest
type Container struct {
	Name  string
	Slots []*engine.ItemStack
}

func newContainer(name string, size int) *Container {
	return &Container{Name: name, Slots: make([]*engine.ItemStack, size)}
}

var _ engine.Container = (*Container)(nil)

// Size implements engine.Container
func (c *Container) Size() int {
	return len(c.Slots)
}

// IsEmpty implements engine.Container
func (c *Container) IsEmpty(slot int) bool {
	if slot < 0 || slot >= len(c.Slots) {
		return false
	}
	return c.Slots[slot] == nil
}

// SetItem implements engine.Container
func (c *Container) SetItem(slot int, item engine.ItemStack) error {
	if slot < 0 || slot >= len(c.Slots) {
		return errors.InvalidArgumentf("slot %d out of range", slot)
	}
	c.Slots[slot] = &item
	return nil
}

// Items returns the occupied slots in slot order
func (c *Container) Items() []engine.ItemStack {
	var items []engine.ItemStack
	for _, item := range c.Slots {
		if item != nil {
			items = append(items, *item)
		}
	}
	return items
}
