package regionpf

import (
	"github.com/udisondev/waterpath/internal/astar"
	"github.com/udisondev/waterpath/internal/tile"
	"github.com/udisondev/waterpath/internal/waterregion"
)

type (
	patchSearch = astar.Search[waterregion.PatchDesc, struct{}]
	patchNode   = astar.Node[waterregion.PatchDesc, struct{}]
)

// patchPolicy prices moves between patches. With depots set the destination is
// any patch holding a depot, otherwise the single patch dest.
type patchPolicy struct {
	finder         *Finder
	canalSpeedFrac uint8
	maxCost        int

	dest   waterregion.PatchDesc
	depots DepotLocator
}

func (p *patchPolicy) StepCost(s *patchSearch, n *patchNode) (int, bool) {
	parent := s.Parent(n)
	c := manhattan(n.Key, parent.Key)

	// Anything longer than one region is an aqueduct.
	if c > RegionLength && p.canalSpeedFrac > 0 {
		frac := int(p.canalSpeedFrac)
		c += c * frac / (256 - frac)
	}

	if grandparent := s.Parent(parent); grandparent != nil {
		prev, _ := waterregion.DiagDirBetweenRegions(parent.Key.Region(), grandparent.Key.Region())
		next, _ := waterregion.DiagDirBetweenRegions(n.Key.Region(), parent.Key.Region())
		if !turns90(prev, next) {
			c += p.finder.cfg.StraightPenalty
		}
	}

	if p.maxCost > 0 && parent.Cost+c > p.maxCost {
		return 0, false
	}
	return c, true
}

func (p *patchPolicy) IsDestination(s *patchSearch, n *patchNode) bool {
	if p.depots == nil {
		return n.Key == p.dest
	}
	parent := waterregion.InvalidPatch
	if pn := s.Parent(n); pn != nil {
		parent = pn.Key
	}
	return p.depots.DepotInPatch(parent, n.Key) != tile.Invalid
}

func (p *patchPolicy) Estimate(s *patchSearch, n *patchNode) (int, bool) {
	if p.depots != nil || p.IsDestination(s, n) {
		return n.Cost, true
	}
	return n.Cost + manhattan(n.Key, p.dest), true
}

func (p *patchPolicy) Expand(s *patchSearch, id astar.NodeID) {
	p.finder.index.VisitPatchNeighbors(s.Node(id).Key, func(next waterregion.PatchDesc) {
		s.AddSuccessor(id, next, struct{}{})
	})
}

func manhattan(a, b waterregion.PatchDesc) int {
	return (abs(a.X-b.X) + abs(a.Y-b.Y)) * RegionLength
}

func turns90(prev, next tile.DiagDir) bool {
	if !prev.IsValid() || !next.IsValid() {
		return false
	}
	d := prev.Difference(next)
	return d == tile.DiagDirDiff90Left || d == tile.DiagDirDiff90Right
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
