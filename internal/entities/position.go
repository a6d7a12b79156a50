// Package entities provides the core data structures shared by endguard's
// orchestrators, repositories and host adapters.
package entities

import (
	"fmt"
	"math"
)

// Position represents a 3D coordinate in a world
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Add returns p offset by the given amounts
func (p Position) Add(x, y, z float64) Position {
	return Position{X: p.X + x, Y: p.Y + y, Z: p.Z + z}
}

// Distance returns the euclidean distance between two positions
func (p Position) Distance(o Position) float64 {
	dx, dy, dz := p.X-o.X, p.Y-o.Y, p.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Block returns the position floored onto the block grid
func (p Position) Block() Position {
	return Position{X: math.Floor(p.X), Y: math.Floor(p.Y), Z: math.Floor(p.Z)}
}

// ChunkKey identifies the 16x16 column containing p
func (p Position) ChunkKey() string {
	return fmt.Sprintf("%d,%d", int(math.Floor(p.X))>>4, int(math.Floor(p.Z))>>4)
}

func (p Position) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", p.X, p.Y, p.Z)
}

// CrystalAnchors are the offsets from the portal center where the summoning
// crystals stand.
var CrystalAnchors = [4]Position{
	{X: 3, Y: 1, Z: 0},
	{X: 0, Y: 1, Z: 3},
	{X: -3, Y: 1, Z: 0},
	{X: 0, Y: 1, Z: -3},
}

// AnchorPositions returns the four crystal positions around portal
func AnchorPositions(portal Position) [4]Position {
	var out [4]Position
	for i, offset := range CrystalAnchors {
		out[i] = portal.Add(offset.X+0.5, offset.Y, offset.Z+0.5)
	}
	return out
}
