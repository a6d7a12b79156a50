package testutils

import (
	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/loot"
	"github.com/KirkDiggler/endguard/internal/particles"
)

// Fixture identifiers
const (
	TestWorld         = "the_end"
	TestTemplateID    = "ancient"
	TestLootTableID   = "ancient_loot"
	TestShapeID       = "spiral"
	TestPlayerID      = "player-1"
	TestPlayerName    = "Steve"
	TestPortalY       = 64.0
	TestDeathStartY   = 72.0
	TestChestName     = "%dragon% Hoard"
	TestDragonCommand = "give %player% experience_bottle 16"
)

// TestPortal is the portal location used by fixtures
var TestPortal = entities.Position{X: 0, Y: TestPortalY, Z: 0}

// CreateTestTemplate returns the ancient dragon template
func CreateTestTemplate() *entities.Template {
	return &entities.Template{
		ID:            TestTemplateID,
		DisplayName:   "Ancient Dragon",
		BarColor:      "purple",
		BarStyle:      "segmented_10",
		SpawnWeight:   1,
		Announce:      true,
		Announcement:  []string{"The Ancient Dragon awakens!"},
		LootTableID:   TestLootTableID,
		ParticleShape: TestShapeID,
	}
}

// CreateTestPlayer returns a player standing near the portal
func CreateTestPlayer() *entities.Player {
	return &entities.Player{
		ID:       TestPlayerID,
		Name:     TestPlayerName,
		World:    TestWorld,
		Position: TestPortal.Add(5, 0, 5),
	}
}

// CreateTestLootTableSpec returns a table with a guaranteed egg, no chest,
// an item pool and a command pool
func CreateTestLootTableSpec() loot.TableSpec {
	return loot.TableSpec{
		ID:          TestLootTableID,
		ChestChance: 0,
		ChestName:   TestChestName,
		EggChance:   100,
		ItemPools: []loot.PoolSpec{{
			Name:     "treasure",
			Chance:   100,
			MinRolls: 2,
			MaxRolls: 2,
			Elements: []loot.ElementSpec{
				{Weight: 3, Material: "diamond", MinAmount: 1, MaxAmount: 3},
				{Weight: 1, Material: "elytra", MinAmount: 1, MaxAmount: 1, DisplayName: "Wings of the %dragon%"},
			},
		}},
		CommandPools: []loot.PoolSpec{{
			Name:     "experience",
			Chance:   100,
			MinRolls: 1,
			MaxRolls: 1,
			Elements: []loot.ElementSpec{{Weight: 1, Command: TestDragonCommand}},
		}},
	}
}

// CreateTestShapeSpec returns a straight descent shape
func CreateTestShapeSpec() particles.ShapeSpec {
	return particles.ShapeSpec{
		ID:           TestShapeID,
		DescentSpeed: 1,
		Entries: []particles.EntrySpec{{
			X:              "cos(angle) * 0.1",
			Z:              "sin(angle) * 0.1",
			AngleIncrement: 15,
			Streams:        2,
		}},
	}
}
