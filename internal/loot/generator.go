package loot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/endguard/internal/engine"
	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/errors"
)

// Placeholders substituted into commands and item names
const (
	PlaceholderPlayer = "%player%"
	PlaceholderDragon = "%dragon%"
	PlaceholderWorld  = "%world%"
)

// Host is the part of the engine the generator places rewards through
type Host interface {
	engine.Blocks
	engine.Messenger
}

// GeneratorConfig configures a Generator
type GeneratorConfig struct {
	Host   Host
	Roller dice.Roller
}

// Validate validates the config
func (c *GeneratorConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Host == nil {
		vb.RequiredField("Host")
	}
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}
	return vb.Build()
}

// Generator materializes loot tables
type Generator struct {
	host   Host
	roller dice.Roller
}

// NewGenerator creates a loot generator
func NewGenerator(cfg *GeneratorConfig) (*Generator, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid generator config")
	}
	return &Generator{host: cfg.Host, roller: cfg.Roller}, nil
}

// GenerateInput is the death context rewards are generated for
type GenerateInput struct {
	World    string
	Location entities.Position
	Template *entities.Template
	Dragon   *entities.Dragon
	Killer   *entities.Player
}

// GenerateOutput summarizes what was produced
type GenerateOutput struct {
	TableID     string
	ChestPlaced bool
	EggPlaced   bool
	Items       []engine.ItemStack
	Commands    []string
}

// Generate runs table against input. Individual reward failures are logged
// and skipped; only a missing table or input is an error.
func (g *Generator) Generate(_ context.Context, table *Table, input *GenerateInput) (*GenerateOutput, error) {
	if table == nil {
		return nil, errors.InvalidArgument("table is required")
	}
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.World == "" {
		return nil, errors.InvalidArgument("world is required")
	}

	run := &generation{
		gen:    g,
		input:  input,
		dragon: input.Template.Name(),
		output: &GenerateOutput{TableID: table.ID},
	}
	if run.dragon == "" {
		run.dragon = "Ender Dragon"
	}

	g.host.ClearBlock(input.World, input.Location)

	if g.hit(table.ChestChance) {
		name := table.ChestName
		if name == "" {
			name = DefaultChestName
		}
		container, err := g.host.PlaceContainer(input.World, input.Location, replaceDragon(name, run.dragon))
		if err != nil {
			slog.Warn("failed to place loot chest",
				"world", input.World,
				"table", table.ID,
				"error", err)
		} else {
			run.container = container
			run.output.ChestPlaced = true
		}
	}

	if table.Egg != nil {
		run.materialize(table.Egg)
	}

	for _, pool := range table.ItemPools {
		run.roll(pool)
	}
	for _, pool := range table.CommandPools {
		run.roll(pool)
	}

	slog.Info("generated loot",
		"world", input.World,
		"table", table.ID,
		"chest", run.output.ChestPlaced,
		"egg", run.output.EggPlaced,
		"items", len(run.output.Items),
		"commands", len(run.output.Commands))

	return run.output, nil
}

// chanceFaces is the die a percentage chance is rolled on. Each face is
// 0.0001%, so fractional chances such as 0.5 or 50.5 keep their value.
const chanceFaces = 1_000_000

// hit rolls a percentage chance in [0, 100]
func (g *Generator) hit(chance float64) bool {
	if chance >= 100 {
		return true
	}
	if chance <= 0 {
		return false
	}
	roll, err := g.roller.Roll(chanceFaces)
	if err != nil {
		slog.Warn("chance roll failed", "error", err)
		return false
	}
	return float64(roll) <= chance*chanceFaces/100
}

// between draws uniformly from [lo, hi]
func (g *Generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	roll, err := g.roller.Roll(hi - lo + 1)
	if err != nil {
		slog.Warn("range roll failed", "error", err)
		return lo
	}
	return lo + roll - 1
}

type generation struct {
	gen       *Generator
	input     *GenerateInput
	dragon    string
	container engine.Container
	output    *GenerateOutput
}

func (r *generation) roll(pool *Pool) {
	if pool == nil || !r.gen.hit(pool.Chance) {
		return
	}

	rolls := r.gen.between(pool.MinRolls, pool.MaxRolls)
	for i := 0; i < rolls; i++ {
		element, ok := pool.Elements.Next()
		if !ok {
			slog.Warn("loot pool yielded no element",
				"world", r.input.World,
				"pool", pool.Name)
			continue
		}
		r.materialize(element)
	}
}

func (r *generation) materialize(element *Element) {
	switch element.Kind {
	case ElementItem:
		r.giveItem(element)
	case ElementCommand:
		r.runCommand(element)
	case ElementEgg:
		r.placeEgg(element)
	default:
		slog.Warn("unknown loot element", "kind", element.Kind.String())
	}
}

func (r *generation) giveItem(element *Element) {
	amount := r.gen.between(element.MinAmount, element.MaxAmount)
	if amount <= 0 {
		return
	}
	stack := element.itemStack(amount, r.dragon)
	r.deposit(stack)
	r.output.Items = append(r.output.Items, stack)
}

func (r *generation) runCommand(element *Element) {
	command := element.Command
	if strings.Contains(command, PlaceholderPlayer) {
		if r.input.Killer == nil {
			slog.Warn("skipping command reward without a killer", "command", command)
			return
		}
		command = strings.ReplaceAll(command, PlaceholderPlayer, r.input.Killer.Name)
	}
	command = strings.ReplaceAll(command, PlaceholderDragon, r.dragon)
	command = strings.ReplaceAll(command, PlaceholderWorld, r.input.World)

	if err := r.gen.host.DispatchCommand(command); err != nil {
		slog.Warn("command reward failed", "command", command, "error", err)
		return
	}
	r.output.Commands = append(r.output.Commands, command)
}

func (r *generation) placeEgg(element *Element) {
	if !r.gen.hit(element.Chance) {
		return
	}

	if r.container != nil {
		if r.insert(engine.ItemStack{Material: engine.MaterialDragonEgg, Amount: 1}) {
			r.output.EggPlaced = true
			return
		}
	}

	if err := r.gen.host.PlaceEgg(r.input.World, r.input.Location.Add(0, 1, 0)); err != nil {
		slog.Warn("failed to place egg", "world", r.input.World, "error", err)
		return
	}
	r.output.EggPlaced = true
}

// deposit puts stack in the chest when there is room, else drops it
func (r *generation) deposit(stack engine.ItemStack) {
	if r.container != nil && r.insert(stack) {
		return
	}
	r.gen.host.DropItem(r.input.World, r.input.Location.Add(0.5, 1, 0.5), stack)
}

// insert places stack in a random empty slot of the chest
func (r *generation) insert(stack engine.ItemStack) bool {
	var empty []int
	for slot := 0; slot < r.container.Size(); slot++ {
		if r.container.IsEmpty(slot) {
			empty = append(empty, slot)
		}
	}
	if len(empty) == 0 {
		return false
	}

	idx := r.gen.between(1, len(empty)) - 1
	if err := r.container.SetItem(empty[idx], stack); err != nil {
		slog.Warn("failed to fill chest slot", "slot", empty[idx], "error", err)
		return false
	}
	return true
}

func replaceDragon(s, dragon string) string {
	return strings.ReplaceAll(s, PlaceholderDragon, dragon)
}
