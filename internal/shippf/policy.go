package shippf

import (
	"math"

	"github.com/zyedidia/generic/mapset"

	"github.com/udisondev/waterpath/internal/astar"
	"github.com/udisondev/waterpath/internal/terrain"
	"github.com/udisondev/waterpath/internal/tile"
	"github.com/udisondev/waterpath/internal/waterregion"
)

// nodeKey identifies a fine search node. Two trackdirs leaving a tile through
// the same edge share a node.
type nodeKey struct {
	Tile tile.Index
	Exit tile.DiagDir
}

type (
	tileSearch = astar.Search[nodeKey, tile.Trackdir]
	tileNode   = astar.Node[nodeKey, tile.Trackdir]
)

// tilePolicy prices and expands tile moves for one ship. The destination is,
// in order of precedence, an intermediate patch, a station or a tile list.
type tilePolicy struct {
	pf      *Pathfinder
	ship    *Ship
	maxCost int

	dests    []tile.Index
	anyDepot bool
	depots   mapset.Set[tile.Index]
	station  terrain.StationID

	intermediate      bool
	intermediatePatch waterregion.PatchDesc
	intermediateTile  tile.Index

	restricted bool
	corridor   mapset.Set[waterregion.PatchDesc]

	// Follow result of the node being expanded.
	follow terrain.Follow
}

func (pf *Pathfinder) newTilePolicy(v *Ship, q Query) *tilePolicy {
	p := &tilePolicy{
		pf:       pf,
		ship:     v,
		maxCost:  q.MaxPenalty,
		dests:    q.Dests,
		anyDepot: q.AnyDepot,
		station:  terrain.InvalidStation,
	}
	if q.AnyDepot {
		p.depots = mapset.New[tile.Index]()
		for _, t := range q.Dests {
			p.depots.Put(t)
		}
	} else {
		p.station = v.DestStation
	}
	return p
}

func (p *tilePolicy) setIntermediate(patch waterregion.PatchDesc) {
	p.intermediate = true
	p.intermediatePatch = patch
	p.intermediateTile = p.pf.index.CenterTile(patch.Region())
}

// restrict confines expansion to tiles of the given patches.
func (p *tilePolicy) restrict(corridor []waterregion.PatchDesc) {
	p.restricted = true
	p.corridor = mapset.New[waterregion.PatchDesc]()
	for _, patch := range corridor {
		p.corridor.Put(patch)
	}
}

func (p *tilePolicy) curveCost(td1, td2 tile.Trackdir) int {
	switch {
	case td1.Crosses().Has(td2):
		return p.pf.cfg.Curve90Penalty
	case td2 != td1.Next():
		return p.pf.cfg.Curve45Penalty
	}
	return 0
}

func (p *tilePolicy) StepCost(s *tileSearch, n *tileNode) (int, bool) {
	parent := s.Parent(n)
	t, td := n.Key.Tile, n.Value

	c := tile.TileCornerLength
	if td.IsDiagonal() {
		c = tile.TileLength
	}
	c += p.curveCost(parent.Value, td)

	m := p.pf.m
	if m.IsDockingTile(t) {
		c += m.ShipsOn(t) * p.pf.cfg.DockingPenalty
	}

	skipped := p.follow.TilesSkipped
	c += tile.TileLength * skipped

	frac := int(p.ship.CanalSpeedFrac)
	if m.WaterClass(t) == terrain.WaterClassSea {
		frac = int(p.ship.OceanSpeedFrac)
	}
	if frac > 0 {
		c += tile.TileLength * (1 + skipped) * frac / (256 - frac)
	}

	if p.maxCost > 0 && parent.Cost+c > p.maxCost {
		return 0, false
	}
	return c, true
}

func (p *tilePolicy) IsDestination(_ *tileSearch, n *tileNode) bool {
	t := n.Key.Tile

	if p.intermediate {
		// Region lookup is cheaper than the patch label, try it first.
		if p.pf.index.RegionInfo(t) != p.intermediatePatch.Region() {
			return false
		}
		return p.pf.index.PatchInfo(t) == p.intermediatePatch
	}

	if p.station != terrain.InvalidStation {
		return p.pf.m.IsDockingTile(t) && p.pf.m.IsShipDestination(t, p.station)
	}

	if !p.anyDepot {
		return len(p.dests) > 0 && t == p.dests[0]
	}
	return p.depots.Has(t)
}

func (p *tilePolicy) Estimate(s *tileSearch, n *tileNode) (int, bool) {
	if p.IsDestination(s, n) {
		return n.Cost, true
	}
	if p.intermediate {
		return p.estimateTo(n, p.intermediateTile), true
	}
	best := math.MaxInt
	for _, t := range p.dests {
		best = min(best, p.estimateTo(n, t))
	}
	return best, true
}

// estimateTo measures in half tiles from the edge n leaves through, moving
// diagonally as far as possible and straight for the rest.
func (p *tilePolicy) estimateTo(n *tileNode, dest tile.Index) int {
	a := p.pf.m.Area()
	off := n.Value.ExitDir().Offset()
	x1 := 2*a.X(n.Key.Tile) + off[0]
	y1 := 2*a.Y(n.Key.Tile) + off[1]
	x2 := 2 * a.X(dest)
	y2 := 2 * a.Y(dest)

	dx, dy := abs(x1-x2), abs(y1-y2)
	dmin := min(dx, dy)
	dxy := abs(dx - dy)
	return n.Cost + dmin*tile.TileCornerLength + (dxy-1)*(tile.TileLength/2)
}

func (p *tilePolicy) Expand(s *tileSearch, id astar.NodeID) {
	n := s.Node(id)
	f, ok := p.pf.m.FollowTrack(n.Key.Tile, n.Value)
	if !ok {
		return
	}
	if p.restricted && !p.corridor.Has(p.pf.index.PatchInfo(f.NewTile)) {
		return
	}

	p.follow = f
	f.Trackdirs.Each(func(td tile.Trackdir) {
		s.AddSuccessor(id, nodeKey{Tile: f.NewTile, Exit: td.ExitDir()}, td)
	})
}

// run searches from the trackdirs dirs on origin.
func (p *tilePolicy) run(origin tile.Index, dirs tile.TrackdirBits) (*tileSearch, astar.Outcome) {
	s := astar.New[nodeKey, tile.Trackdir](p, p.pf.cfg.NodeBudget(waterregion.TilesPerRegion))
	dirs.Each(func(td tile.Trackdir) {
		s.AddStartup(nodeKey{Tile: origin, Exit: td.ExitDir()}, td)
	})
	return s, s.FindPath()
}

// originOf returns the startup node the chain of id begins with.
func originOf(s *tileSearch, id astar.NodeID) *tileNode {
	chain := s.Chain(id)
	return s.Node(chain[len(chain)-1])
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
