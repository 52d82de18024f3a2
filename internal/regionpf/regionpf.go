// Package regionpf searches paths over water region patches. The result is a
// short corridor of patches the tile level ship pathfinder can aim for.
package regionpf

import (
	"log/slog"

	"github.com/udisondev/waterpath/internal/astar"
	"github.com/udisondev/waterpath/internal/config"
	"github.com/udisondev/waterpath/internal/tile"
	"github.com/udisondev/waterpath/internal/waterregion"
)

// RegionLength is the cost of crossing one region.
const RegionLength = tile.TileLength * waterregion.EdgeLength

// HighNode is one step of a depot route: the patch, the patch it was entered
// from and the cost accumulated on arrival.
type HighNode struct {
	Parent  waterregion.PatchDesc
	Current waterregion.PatchDesc
	Cost    int
}

// DepotLocator finds a depot inside current when entering it from parent.
// An invalid parent means current is where the search starts.
type DepotLocator interface {
	DepotInPatch(parent, current waterregion.PatchDesc) tile.Index
}

// Finder runs region searches on one index.
type Finder struct {
	index  *waterregion.Index
	cfg    config.RegionSearch
	logger *slog.Logger
}

// New creates a Finder. A nil logger means slog.Default().
func New(index *waterregion.Index, cfg config.RegionSearch, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{index: index, cfg: cfg, logger: logger}
}

// MaxNodes returns the node budget for the current map.
func (f *Finder) MaxNodes() int {
	return min(f.index.Area().Size()*f.cfg.NodesPerRegion/waterregion.TilesPerRegion, f.cfg.MaxNodes)
}

// FindWaterRegionPath returns up to maxLen patches leading from the patch of
// start towards the patch of any destination tile. The start patch is always
// first. An empty path means no route; the outcome tells whether the search
// gave up on its budget.
func (f *Finder) FindWaterRegionPath(start tile.Index, dests []tile.Index, canalSpeedFrac uint8, maxLen int) ([]waterregion.PatchDesc, astar.Outcome) {
	startPatch := f.index.PatchInfo(start)

	p := &patchPolicy{finder: f, canalSpeedFrac: canalSpeedFrac, dest: startPatch}
	s := astar.New[waterregion.PatchDesc, struct{}](p, f.MaxNodes())

	origins := make(map[waterregion.PatchDesc]bool, len(dests))
	for _, t := range dests {
		if !f.index.Area().IsValid(t) {
			continue
		}
		origin := f.index.PatchInfo(t)
		if !origin.IsValid() || origins[origin] {
			continue
		}
		origins[origin] = true
		s.AddStartup(origin, struct{}{})
	}

	path := []waterregion.PatchDesc{startPatch}
	if origins[startPatch] {
		return path, astar.Found
	}

	outcome := s.FindPath()
	f.logger.Debug("region path search",
		"start", startPatch, "origins", len(origins), "outcome", outcome,
		"closed", s.ClosedCount(), "max_nodes", s.MaxNodes())
	if outcome != astar.Found {
		return nil, outcome
	}

	id := s.Best()
	for range maxLen - 1 {
		if id = s.Node(id).Parent; id == astar.NoNode {
			break
		}
		path = append(path, s.Node(id).Key)
	}
	return path, outcome
}

// FindShipDepotRegionPath searches from the patch of start for the nearest
// patch holding a depot, as seen by depots. The route is returned from start
// to the depot patch with real accumulated costs. A depot in the start patch
// yields a single node.
func (f *Finder) FindShipDepotRegionPath(start tile.Index, canalSpeedFrac uint8, maxPenalty int, depots DepotLocator) ([]HighNode, astar.Outcome) {
	startPatch := f.index.PatchInfo(start)
	if depots.DepotInPatch(waterregion.InvalidPatch, startPatch) != tile.Invalid {
		return []HighNode{{Parent: waterregion.InvalidPatch, Current: startPatch}}, astar.Found
	}

	p := &patchPolicy{finder: f, canalSpeedFrac: canalSpeedFrac, maxCost: maxPenalty, depots: depots}
	s := astar.New[waterregion.PatchDesc, struct{}](p, f.MaxNodes())
	if startPatch.IsValid() {
		s.AddStartup(startPatch, struct{}{})
	}

	outcome := s.FindPath()
	f.logger.Debug("depot region search",
		"start", startPatch, "outcome", outcome, "closed", s.ClosedCount(), "max_penalty", maxPenalty)
	if outcome != astar.Found {
		return nil, outcome
	}

	chain := s.Chain(s.Best())
	path := make([]HighNode, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		n := s.Node(chain[i])
		parent := waterregion.InvalidPatch
		if pn := s.Parent(n); pn != nil {
			parent = pn.Key
		}
		path = append(path, HighNode{Parent: parent, Current: n.Key, Cost: n.Cost})
	}
	return path, outcome
}
