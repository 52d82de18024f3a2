package shippf

import (
	"slices"

	"github.com/udisondev/waterpath/internal/terrain"
	"github.com/udisondev/waterpath/internal/tile"
)

// Ship is the vehicle state the pathfinder reads.
type Ship struct {
	ID       int
	Tile     tile.Index
	Trackdir tile.Trackdir
	Owner    terrain.Owner

	// Order: a station if DestStation is set, DestTile otherwise.
	DestTile    tile.Index
	DestStation terrain.StationID

	// Speed penalties as fractions of 256.
	CanalSpeedFrac uint8
	OceanSpeedFrac uint8
}

// PathCache holds the trackdirs a ship follows after the one just chosen.
// The zero value is an empty cache.
type PathCache struct {
	dirs []tile.Trackdir // next step last
}

// Len returns the number of cached steps.
func (c *PathCache) Len() int {
	return len(c.dirs)
}

// Clear drops every cached step.
func (c *PathCache) Clear() {
	c.dirs = c.dirs[:0]
}

// Pop removes and returns the next step.
func (c *PathCache) Pop() (tile.Trackdir, bool) {
	if len(c.dirs) == 0 {
		return tile.InvalidTrackdir, false
	}
	td := c.dirs[len(c.dirs)-1]
	c.dirs = c.dirs[:len(c.dirs)-1]
	return td, true
}

// Trackdirs returns the cached steps, next step first.
func (c *PathCache) Trackdirs() []tile.Trackdir {
	out := slices.Clone(c.dirs)
	slices.Reverse(out)
	return out
}

func (c *PathCache) push(td tile.Trackdir) {
	c.dirs = append(c.dirs, td)
}

func (c *PathCache) reverse() {
	slices.Reverse(c.dirs)
}

// Query describes one call of Choose.
type Query struct {
	Dests    []tile.Index
	AnyDepot bool // Dests are depots, any of them will do

	// Origin trackdirs on the ship's tile.
	Forward tile.TrackdirBits
	Reverse tile.TrackdirBits

	MaxPenalty int // 0 means unlimited
}

// Result is what Choose found out.
type Result struct {
	// Trackdir is the next step, or InvalidTrackdir when the ship should
	// reverse or when only a depot was searched for.
	Trackdir   tile.Trackdir
	PathFound  bool
	BestOrigin tile.Trackdir
	Depot      tile.Index
}

// Depot is the answer of FindNearestDepot.
type Depot struct {
	Tile    tile.Index
	Found   bool
	Reverse bool // the ship has to turn around to get there
}
