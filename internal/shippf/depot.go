package shippf

import (
	"math"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/udisondev/waterpath/internal/astar"
	"github.com/udisondev/waterpath/internal/regionpf"
	"github.com/udisondev/waterpath/internal/tile"
	"github.com/udisondev/waterpath/internal/waterregion"
)

// depotLocator finds depots from a fixed tile set on behalf of one ship.
type depotLocator struct {
	pf     *Pathfinder
	ship   *Ship
	tiles  []tile.Index
	depots mapset.Set[tile.Index]
}

func (pf *Pathfinder) newDepotLocator(v *Ship, tiles []tile.Index) *depotLocator {
	l := &depotLocator{pf: pf, ship: v, tiles: tiles, depots: mapset.New[tile.Index]()}
	for _, t := range tiles {
		l.depots.Put(t)
	}
	return l
}

// DepotInPatch returns the depot of the ship's owner inside current that is
// cheapest to reach when entering from parent, or tile.Invalid. With an
// invalid parent any depot of the patch is returned.
func (pf *Pathfinder) DepotInPatch(v *Ship, parent, current waterregion.PatchDesc) tile.Index {
	return pf.newDepotLocator(v, pf.m.DepotTiles(v.Owner)).DepotInPatch(parent, current)
}

// DepotRegionPath returns the patch route to the nearest patch holding a depot
// of the ship's owner, with real costs, or nil.
func (pf *Pathfinder) DepotRegionPath(v *Ship, maxPenalty int) []regionpf.HighNode {
	route, _ := pf.regions.FindShipDepotRegionPath(v.Tile, v.CanalSpeedFrac, maxPenalty, pf.newDepotLocator(v, pf.m.DepotTiles(v.Owner)))
	return route
}

// farDepot resolves a depot beyond the lookahead window by following the depot
// route of the region layer to its last patch.
func (pf *Pathfinder) farDepot(v *Ship, depots []tile.Index) tile.Index {
	l := pf.newDepotLocator(v, depots)
	route, _ := pf.regions.FindShipDepotRegionPath(v.Tile, v.CanalSpeedFrac, 0, l)
	if len(route) == 0 {
		return tile.Invalid
	}
	last := route[len(route)-1]
	return l.DepotInPatch(last.Parent, last.Current)
}

type entryPoint struct {
	tile tile.Index
	dist int // tiles between an aqueduct ramp and the region edge
}

// DepotInPatch implements regionpf.DepotLocator.
func (l *depotLocator) DepotInPatch(parent, current waterregion.PatchDesc) tile.Index {
	if !current.IsValid() {
		return tile.Invalid
	}
	ix := l.pf.index
	region := ix.Updated(current.Region())

	enter, adjacent := tile.InvalidDiagDir, false
	if parent.IsValid() {
		enter, adjacent = waterregion.DiagDirBetweenRegions(parent.Region(), current.Region())
	}

	first := tile.Invalid
	for ly := range waterregion.EdgeLength {
		for lx := range waterregion.EdgeLength {
			t := region.Tile(lx, ly)
			if region.Label(t) == current.Label && l.depots.Has(t) {
				first = t
				break
			}
		}
		if first != tile.Invalid {
			break
		}
	}
	if first == tile.Invalid || !enter.IsValid() {
		return first
	}

	entries := l.entryPoints(parent, current, region, enter, adjacent)
	exit := enter.Reverse()

	best, bestCost := tile.Invalid, math.MaxInt
	for _, e := range entries {
		dirs := l.pf.m.WaterTracks(e.tile).Trackdirs() & tile.DiagDirReachesTrackdirs(exit)
		depot, cost, ok := l.searchFrom(e.tile, dirs)
		if !ok {
			continue
		}
		if e.dist != 0 {
			cost += tile.TileLength * e.dist
			if frac := int(l.ship.CanalSpeedFrac); frac > 0 {
				cost += tile.TileLength * (1 + e.dist) * frac / (256 - frac)
			}
		}
		if cost >= bestCost {
			continue
		}
		best, bestCost = depot, cost
	}
	return best
}

// entryPoints collects the tiles of current a ship coming from parent can
// arrive on: shared edge tiles and ramps of aqueducts from parent.
func (l *depotLocator) entryPoints(parent, current waterregion.PatchDesc, region *waterregion.Region, enter tile.DiagDir, adjacent bool) []entryPoint {
	ix := l.pf.index
	parentRegion := ix.Updated(parent.Region())
	exit := enter.Reverse()

	var entries []entryPoint
	add := func(e entryPoint) {
		if !slices.Contains(entries, e) {
			entries = append(entries, e)
		}
	}

	if bits := region.EdgeBits(enter); adjacent && bits != 0 {
		for i := range waterregion.EdgeLength {
			if !bits.Has(i) {
				continue
			}
			edge := ix.EdgeTile(current.Region(), enter, i)
			if region.Label(edge) != current.Label {
				continue
			}
			if parentRegion.Label(ix.EdgeTile(parent.Region(), exit, i)) != parent.Label {
				continue
			}
			add(entryPoint{tile: edge})
		}
	}

	if region.HasCrossRegionAqueducts() {
		for i := range waterregion.EdgeLength {
			ramp, dist := ix.FindCrossRegionAqueductTile(current.Region(), enter, i)
			if ramp == tile.Invalid || region.Label(ramp) != current.Label {
				continue
			}
			if ix.PatchInfo(l.pf.m.OtherAqueductEnd(ramp)) != parent {
				continue
			}
			add(entryPoint{tile: ramp, dist: dist})
		}
	}
	return entries
}

// searchFrom runs an unlimited depot search from the given trackdirs of start.
func (l *depotLocator) searchFrom(start tile.Index, dirs tile.TrackdirBits) (tile.Index, int, bool) {
	p := l.pf.newTilePolicy(l.ship, Query{Dests: l.tiles, AnyDepot: true})
	s, outcome := p.run(start, dirs)
	if outcome != astar.Found {
		return tile.Invalid, 0, false
	}
	n := s.Node(s.Destination())
	return n.Key.Tile, n.Cost, true
}
