// Package shippf chooses the tracks ships follow. A coarse search over water
// region patches picks a corridor, then a tile level search inside it finds
// the actual trackdirs.
package shippf

import (
	"log/slog"
	"math/rand/v2"

	"github.com/zyedidia/generic/mapset"

	"github.com/udisondev/waterpath/internal/astar"
	"github.com/udisondev/waterpath/internal/config"
	"github.com/udisondev/waterpath/internal/regionpf"
	"github.com/udisondev/waterpath/internal/terrain"
	"github.com/udisondev/waterpath/internal/tile"
	"github.com/udisondev/waterpath/internal/waterregion"
)

// Pathfinder answers route questions for ships on one map. It is not safe for
// concurrent use.
type Pathfinder struct {
	m       terrain.Map
	index   *waterregion.Index
	regions *regionpf.Finder
	cfg     config.ShipSearch
	rng     *rand.Rand
	logger  *slog.Logger
}

// New creates a Pathfinder over m using index for the region layer. A nil
// logger means slog.Default().
func New(m terrain.Map, index *waterregion.Index, regionCfg config.RegionSearch, cfg config.ShipSearch, logger *slog.Logger) *Pathfinder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pathfinder{
		m:       m,
		index:   index,
		regions: regionpf.New(index, regionCfg, logger),
		cfg:     cfg,
		rng:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
		logger:  logger,
	}
}

// Regions returns the coarse pathfinder.
func (pf *Pathfinder) Regions() *regionpf.Finder {
	return pf.regions
}

// DestinationTiles returns the tiles that satisfy the ship's order: the docking
// tiles of its station, or its destination tile.
func (pf *Pathfinder) DestinationTiles(v *Ship) []tile.Index {
	if v.DestStation == terrain.InvalidStation {
		return []tile.Index{v.DestTile}
	}
	var out []tile.Index
	for _, t := range pf.m.DockingTiles(v.DestStation) {
		if pf.m.IsShipDestination(t, v.DestStation) {
			out = append(out, t)
		}
	}
	return out
}

// ChooseTrack picks the next trackdir towards the ship's destination and
// refills cache with the steps after it.
func (pf *Pathfinder) ChooseTrack(v *Ship, cache *PathCache) Result {
	cache.Clear()
	return pf.Choose(v, Query{
		Dests:   pf.DestinationTiles(v),
		Forward: v.Trackdir.Bit(),
	}, cache)
}

// CheckReverse reports whether the ship reaches its destination sooner by
// turning around first.
func (pf *Pathfinder) CheckReverse(v *Ship) bool {
	reverse := v.Trackdir.Reverse()
	res := pf.Choose(v, Query{
		Dests:   pf.DestinationTiles(v),
		Forward: v.Trackdir.Bit(),
		Reverse: reverse.Bit(),
	}, &PathCache{})
	return res.PathFound && res.BestOrigin == reverse
}

// ChooseReverseTrackdir picks the trackdir a ship that cannot go on should turn
// into. Without a path it picks one at random.
func (pf *Pathfinder) ChooseReverseTrackdir(v *Ship) tile.Trackdir {
	entry := v.Trackdir.ExitDir().Reverse()
	dirs := tile.DiagDirReachesTrackdirs(entry) & pf.m.WaterTracks(v.Tile).Trackdirs()

	res := pf.Choose(v, Query{
		Dests:   pf.DestinationTiles(v),
		Reverse: dirs,
	}, &PathCache{})
	if res.PathFound && res.BestOrigin.IsValid() {
		return res.BestOrigin
	}
	return pf.randomTrackdir(dirs)
}

// FindNearestDepot looks for the closest depot of the ship's owner. With
// maxPenalty 0 both directions are tried and the distance is unlimited;
// otherwise only depots within maxPenalty reachable going forward count.
func (pf *Pathfinder) FindNearestDepot(v *Ship, maxPenalty int) Depot {
	depots := pf.depotTiles(v, maxPenalty/tile.TileLength)
	if len(depots) == 0 {
		return Depot{Tile: tile.Invalid}
	}

	reverse := v.Trackdir.Reverse()
	q := Query{
		Dests:      depots,
		AnyDepot:   true,
		Forward:    v.Trackdir.Bit(),
		MaxPenalty: maxPenalty,
	}
	if maxPenalty == 0 {
		q.Reverse = reverse.Bit()
	}

	res := pf.Choose(v, q, &PathCache{})
	if !res.PathFound {
		return Depot{Tile: tile.Invalid}
	}
	return Depot{Tile: res.Depot, Found: true, Reverse: res.BestOrigin == reverse}
}

// depotTiles lists the owner's depots, within maxDistance tiles if positive.
func (pf *Pathfinder) depotTiles(v *Ship, maxDistance int) []tile.Index {
	a := pf.m.Area()
	var out []tile.Index
	for _, t := range pf.m.DepotTiles(v.Owner) {
		if maxDistance > 0 && a.Manhattan(t, v.Tile) > maxDistance {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Choose runs the two layer search for q. A lost ship gets a short random
// path and PathFound false.
func (pf *Pathfinder) Choose(v *Ship, q Query, cache *PathCache) Result {
	res := Result{Trackdir: tile.InvalidTrackdir, BestOrigin: tile.InvalidTrackdir, Depot: tile.Invalid}
	lookahead := pf.cfg.LookaheadRegions

	highLevel, outcome := pf.regions.FindWaterRegionPath(v.Tile, q.Dests, v.CanalSpeedFrac, lookahead+1)
	if len(highLevel) == 0 {
		pf.logger.Info("ship is lost", "ship", v.ID, "tile", v.Tile, "region_search", outcome)
		res.Trackdir = pf.createRandomPath(v, cache, pf.cfg.LostPathLength)
		return res
	}

	automaticServicing := q.AnyDepot && q.MaxPenalty != 0
	span := highLevel[:min(len(highLevel), lookahead+1)]
	intermediate := len(span) >= lookahead+1
	if intermediate && automaticServicing {
		// A cost to an intermediate patch says nothing about the penalty limit.
		return res
	}

	for attempt := range 2 {
		p := pf.newTilePolicy(v, q)
		if intermediate {
			p.setIntermediate(span[len(span)-1])
		}
		if attempt > 0 {
			p.restrict(span)
		}

		s, outcome := p.run(v.Tile, q.Forward|q.Reverse)
		pf.logger.Debug("ship path search",
			"ship", v.ID, "attempt", attempt, "outcome", outcome,
			"closed", s.ClosedCount(), "max_nodes", s.MaxNodes(), "intermediate", intermediate)
		if outcome != astar.Found {
			if attempt == 0 {
				continue
			}
			pf.logger.Info("ship is lost", "ship", v.ID, "tile", v.Tile, "tile_search", outcome)
			res.Trackdir = pf.createRandomPath(v, cache, pf.cfg.LostPathLength)
			return res
		}

		best := s.Best()
		res.PathFound = true
		res.BestOrigin = originOf(s, best).Value

		if q.AnyDepot {
			res.Depot = s.Node(best).Key.Tile
			if intermediate {
				res.Depot = pf.farDepot(v, q.Dests)
				res.PathFound = res.Depot != tile.Invalid
			}
			return res
		}

		pf.fillCache(s, best, highLevel[0], span, intermediate, cache)

		if !q.Forward.Has(res.BestOrigin) {
			cache.Clear()
			return res
		}
		if cache.Len() == 0 {
			// Already at the destination; nudge the ship along.
			res.Trackdir = pf.createRandomPath(v, cache, 1)
			return res
		}

		res.Trackdir, _ = cache.Pop()
		if highLevel[0] == pf.index.PatchInfo(s.Node(best).Key.Tile) {
			// Final patch: leave room to pick another docking tile later.
			cache.Clear()
		}
		return res
	}
	return res
}

// fillCache stores the trackdirs from the origin to best, next step last.
// Only the part inside the start patch is kept when the goal is intermediate,
// and the cached path always ends in a patch of span.
func (pf *Pathfinder) fillCache(s *tileSearch, best astar.NodeID, start waterregion.PatchDesc, span []waterregion.PatchDesc, intermediate bool, cache *PathCache) {
	end := pf.index.PatchInfo(s.Node(best).Key.Tile)

	onPath := mapset.New[waterregion.PatchDesc]()
	for _, patch := range span {
		onPath.Put(patch)
	}

	chain := s.Chain(best)
	for _, id := range chain[:len(chain)-1] {
		n := s.Node(id)
		patch := pf.index.PatchInfo(n.Key.Tile)
		fullPath := !intermediate && patch != end
		if fullPath || !onPath.Has(patch) || patch == start {
			cache.push(n.Value)
		} else {
			cache.Clear()
		}
	}
}

// createRandomPath fills cache with up to length random steps that avoid 90
// degree turns and returns the first of them.
func (pf *Pathfinder) createRandomPath(v *Ship, cache *PathCache, length int) tile.Trackdir {
	t, td := v.Tile, v.Trackdir
	for range length {
		f, ok := pf.m.FollowTrack(t, td)
		if !ok {
			break
		}
		dirs := f.Trackdirs
		if straight := dirs &^ td.Crosses(); straight != tile.TrackdirBitNone {
			dirs = straight
		}
		t, td = f.NewTile, pf.randomTrackdir(dirs)
		cache.push(td)
	}

	cache.reverse()
	td, ok := cache.Pop()
	if !ok {
		return tile.InvalidTrackdir
	}
	return td
}

func (pf *Pathfinder) randomTrackdir(dirs tile.TrackdirBits) tile.Trackdir {
	n := dirs.Count()
	if n == 0 {
		return tile.InvalidTrackdir
	}
	return dirs.Nth(pf.rng.IntN(n))
}
