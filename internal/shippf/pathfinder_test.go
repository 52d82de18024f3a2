package shippf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/waterpath/internal/astar"
	"github.com/udisondev/waterpath/internal/config"
	"github.com/udisondev/waterpath/internal/regionpf"
	"github.com/udisondev/waterpath/internal/terrain"
	"github.com/udisondev/waterpath/internal/testutil"
	"github.com/udisondev/waterpath/internal/tile"
	"github.com/udisondev/waterpath/internal/waterregion"
)

func newPathfinder(t *testing.T, g *terrain.Grid) *Pathfinder {
	t.Helper()
	ix, err := waterregion.NewIndex(g, nil)
	require.NoError(t, err)
	g.OnChange(ix.InvalidateTile)
	return New(g, ix, config.DefaultRegionSearch(), config.DefaultShipSearch(), nil)
}

func newShip(a tile.Area, x, y int, td tile.Trackdir) *Ship {
	return &Ship{
		ID:          1,
		Tile:        a.XY(x, y),
		Trackdir:    td,
		DestTile:    tile.Invalid,
		DestStation: terrain.InvalidStation,
	}
}

func patch(x, y int) waterregion.PatchDesc {
	return waterregion.PatchDesc{X: x, Y: y, Label: waterregion.LabelFirst}
}

// walk moves the ship along steps, checking every step is a legal follow-up,
// and returns the last tile and trackdir.
func walk(t *testing.T, g *terrain.Grid, v *Ship, steps []tile.Trackdir) (tile.Index, tile.Trackdir) {
	t.Helper()
	cur, td := v.Tile, v.Trackdir
	for i, next := range steps {
		f, ok := g.FollowTrack(cur, td)
		require.True(t, ok, "step %d: cannot leave tile %d along %s", i, cur, td)
		require.True(t, f.Trackdirs.Has(next), "step %d: %s not available on tile %d", i, next, f.NewTile)
		cur, td = f.NewTile, next
	}
	return cur, td
}

// deadEnd is a one tile wide canal along y=8 from x=2 to x=13 with a depot of
// owner 0 at its west end (1,8).
func deadEnd(t *testing.T) *terrain.Grid {
	t.Helper()
	rows := testutil.Paint(testutil.Rows(16, 16, '.'), 2, 8, 13, 8, '=')
	g := testutil.GridFromRows(t, rows...)
	require.NoError(t, g.BuildDepot(1, 8, tile.AxisX, 0))
	return g
}

func TestChooseTrackOpenSea(t *testing.T) {
	g := testutil.SeaGrid(t, 64, 64)
	pf := newPathfinder(t, g)
	a := g.Area()

	v := newShip(a, 0, 0, tile.TrackdirXSW)
	v.DestTile = a.XY(63, 63)

	var cache PathCache
	res := pf.ChooseTrack(v, &cache)
	require.True(t, res.PathFound)
	require.True(t, res.Trackdir.IsValid())
	assert.Equal(t, tile.TrackdirXSW, res.BestOrigin)

	end, _ := walk(t, g, v, append([]tile.Trackdir{res.Trackdir}, cache.Trackdirs()...))
	assert.Equal(t, waterregion.RegionDesc{}, pf.index.RegionInfo(end), "only the start region is cached")
}

func TestChooseTrackThroughAqueduct(t *testing.T) {
	rows := testutil.Paint(testutil.Rows(32, 16, '~'), 16, 0, 16, 15, '.')
	g := testutil.GridFromRows(t, rows...)
	require.NoError(t, g.BuildAqueduct(15, 8, 17, 8))
	pf := newPathfinder(t, g)
	a := g.Area()

	path, _ := pf.Regions().FindWaterRegionPath(a.XY(2, 8), []tile.Index{a.XY(28, 8)}, 0, 5)
	require.Equal(t, []waterregion.PatchDesc{patch(0, 0), patch(1, 0)}, path)

	v := newShip(a, 2, 8, tile.TrackdirXSW)
	v.DestTile = a.XY(28, 8)

	var cache PathCache
	res := pf.ChooseTrack(v, &cache)
	require.True(t, res.PathFound)
	assert.Equal(t, tile.TrackdirXSW, res.Trackdir)

	end, td := walk(t, g, v, append([]tile.Trackdir{res.Trackdir}, cache.Trackdirs()...))
	assert.Equal(t, a.XY(15, 8), end, "cached path ends on the near ramp")

	f, ok := g.FollowTrack(end, td)
	require.True(t, ok)
	assert.True(t, f.Aqueduct)
	assert.Equal(t, a.XY(17, 8), f.NewTile)
}

func TestChooseRetriesInsideCorridor(t *testing.T) {
	// One tile wide canals lead from (2,8) up to row 0 and over to (40,8). An
	// open bay east of (15,8) is closer to the goal as the crow flies but never
	// reaches it.
	rows := testutil.Rows(48, 32, '.')
	rows = testutil.Paint(rows, 2, 8, 15, 8, '~')
	rows = testutil.Paint(rows, 14, 0, 14, 8, '~')
	rows = testutil.Paint(rows, 14, 0, 40, 0, '~')
	rows = testutil.Paint(rows, 40, 0, 40, 8, '~')
	rows = testutil.Paint(rows, 16, 2, 30, 15, '~')
	rows = testutil.Paint(rows, 16, 16, 31, 31, '~')
	g := testutil.GridFromRows(t, rows...)
	a := g.Area()

	ix, err := waterregion.NewIndex(g, nil)
	require.NoError(t, err)
	cfg := config.DefaultShipSearch()
	cfg.MaxNodes = 260
	pf := New(g, ix, config.DefaultRegionSearch(), cfg, nil)

	v := newShip(a, 2, 8, tile.TrackdirXSW)
	v.DestTile = a.XY(40, 8)
	corridor := []waterregion.PatchDesc{patch(0, 0), patch(1, 0), patch(2, 0)}

	highLevel, _ := pf.Regions().FindWaterRegionPath(v.Tile, []tile.Index{v.DestTile}, 0, cfg.LookaheadRegions+1)
	require.Equal(t, corridor, highLevel)

	q := Query{Dests: []tile.Index{v.DestTile}, Forward: v.Trackdir.Bit()}
	_, outcome := pf.newTilePolicy(v, q).run(v.Tile, q.Forward)
	require.Equal(t, astar.Exhausted, outcome, "the bay eats the budget of an unrestricted search")

	var cache PathCache
	res := pf.ChooseTrack(v, &cache)
	require.True(t, res.PathFound)
	assert.Equal(t, tile.TrackdirXSW, res.Trackdir)
	require.Positive(t, cache.Len())

	cur, td := v.Tile, v.Trackdir
	for i, next := range append([]tile.Trackdir{res.Trackdir}, cache.Trackdirs()...) {
		f, ok := g.FollowTrack(cur, td)
		require.True(t, ok, "step %d", i)
		require.True(t, f.Trackdirs.Has(next), "step %d", i)
		cur, td = f.NewTile, next
		assert.Contains(t, corridor, ix.PatchInfo(cur), "step %d leaves the corridor at tile %d", i, cur)
	}
	assert.Equal(t, 0, a.Y(cur), "the cached path climbs to the northern canal")
}

func TestChooseTrackAlreadyThere(t *testing.T) {
	g := testutil.SeaGrid(t, 16, 16)
	pf := newPathfinder(t, g)
	a := g.Area()

	v := newShip(a, 8, 8, tile.TrackdirXSW)
	v.DestTile = v.Tile

	var cache PathCache
	res := pf.ChooseTrack(v, &cache)
	assert.True(t, res.PathFound)
	assert.True(t, res.Trackdir.IsValid())
	assert.Zero(t, cache.Len())
}

func TestChooseTrackStation(t *testing.T) {
	t.Run("docking tiles in another region", func(t *testing.T) {
		g := testutil.SeaGrid(t, 32, 16)
		require.NoError(t, g.SetDocking(20, 3, 7))
		require.NoError(t, g.SetDocking(25, 12, 7))
		pf := newPathfinder(t, g)
		a := g.Area()

		v := newShip(a, 2, 8, tile.TrackdirXSW)
		v.DestStation = 7
		assert.Equal(t, []tile.Index{a.XY(20, 3), a.XY(25, 12)}, pf.DestinationTiles(v))

		var cache PathCache
		res := pf.ChooseTrack(v, &cache)
		assert.True(t, res.PathFound)
		assert.True(t, res.Trackdir.IsValid())
		assert.Positive(t, cache.Len())
	})

	t.Run("final patch is not cached", func(t *testing.T) {
		g := testutil.SeaGrid(t, 16, 16)
		require.NoError(t, g.SetDocking(8, 8, 3))
		pf := newPathfinder(t, g)
		a := g.Area()

		v := newShip(a, 2, 8, tile.TrackdirXSW)
		v.DestStation = 3

		var cache PathCache
		res := pf.ChooseTrack(v, &cache)
		assert.True(t, res.PathFound)
		assert.Equal(t, tile.TrackdirXSW, res.Trackdir)
		assert.Zero(t, cache.Len())
	})
}

func TestChooseTrackLostShip(t *testing.T) {
	rows := testutil.Paint(testutil.Rows(64, 32, '~'), 32, 0, 33, 31, '.')

	choose := func() (Result, []tile.Trackdir) {
		g := testutil.GridFromRows(t, rows...)
		pf := newPathfinder(t, g)
		a := g.Area()
		v := newShip(a, 16, 16, tile.TrackdirXSW)
		v.DestTile = a.XY(50, 16)

		var cache PathCache
		res := pf.ChooseTrack(v, &cache)
		walk(t, g, v, append([]tile.Trackdir{res.Trackdir}, cache.Trackdirs()...))
		return res, cache.Trackdirs()
	}

	res, steps := choose()
	assert.False(t, res.PathFound)
	assert.True(t, res.Trackdir.IsValid())
	assert.Len(t, steps, config.DefaultShipSearch().LostPathLength-1)

	again, againSteps := choose()
	assert.Equal(t, res.Trackdir, again.Trackdir, "same seed, same walk")
	assert.Equal(t, steps, againSteps)
}

func TestReverseToOnlyDepot(t *testing.T) {
	g := deadEnd(t)
	pf := newPathfinder(t, g)
	a := g.Area()
	depot := a.XY(1, 8)

	v := newShip(a, 8, 8, tile.TrackdirXSW)

	got := pf.FindNearestDepot(v, 0)
	assert.Equal(t, Depot{Tile: depot, Found: true, Reverse: true}, got)

	assert.False(t, pf.FindNearestDepot(v, 5000).Found, "forward only search hits the dead end")

	v.DestTile = depot
	assert.True(t, pf.CheckReverse(v))
	assert.Equal(t, tile.TrackdirXNE, pf.ChooseReverseTrackdir(v))

	v.DestTile = a.XY(12, 8)
	assert.False(t, pf.CheckReverse(v))
}

func TestFindNearestDepot(t *testing.T) {
	t.Run("no depots", func(t *testing.T) {
		g := testutil.SeaGrid(t, 16, 16)
		pf := newPathfinder(t, g)
		got := pf.FindNearestDepot(newShip(g.Area(), 2, 2, tile.TrackdirXSW), 0)
		assert.Equal(t, Depot{Tile: tile.Invalid}, got)
	})

	t.Run("out of range", func(t *testing.T) {
		g := testutil.SeaGrid(t, 32, 16)
		require.NoError(t, g.BuildDepot(30, 8, tile.AxisX, 0))
		pf := newPathfinder(t, g)
		got := pf.FindNearestDepot(newShip(g.Area(), 2, 8, tile.TrackdirXSW), 1000)
		assert.False(t, got.Found)
	})

	t.Run("other owner", func(t *testing.T) {
		g := testutil.SeaGrid(t, 32, 16)
		require.NoError(t, g.BuildDepot(20, 8, tile.AxisX, 1))
		pf := newPathfinder(t, g)
		got := pf.FindNearestDepot(newShip(g.Area(), 2, 8, tile.TrackdirXSW), 0)
		assert.False(t, got.Found)
	})

	t.Run("beyond lookahead", func(t *testing.T) {
		g := testutil.SeaGrid(t, 128, 16)
		require.NoError(t, g.BuildDepot(120, 8, tile.AxisX, 0))
		pf := newPathfinder(t, g)
		a := g.Area()
		v := newShip(a, 2, 8, tile.TrackdirXSW)

		assert.Equal(t, Depot{Tile: a.XY(120, 8), Found: true}, pf.FindNearestDepot(v, 0))
		assert.False(t, pf.FindNearestDepot(v, 20000).Found, "penalty limit needs a full path")
	})
}

func TestDepotInPatch(t *testing.T) {
	g := testutil.SeaGrid(t, 32, 16)
	require.NoError(t, g.BuildDepot(20, 1, tile.AxisX, 1))
	require.NoError(t, g.BuildDepot(30, 2, tile.AxisX, 0))
	require.NoError(t, g.BuildDepot(17, 12, tile.AxisX, 0))
	pf := newPathfinder(t, g)
	a := g.Area()
	v := newShip(a, 2, 8, tile.TrackdirXSW)

	assert.Equal(t, a.XY(30, 2), pf.DepotInPatch(v, waterregion.InvalidPatch, patch(1, 0)), "first in scan order")
	assert.Equal(t, a.XY(17, 12), pf.DepotInPatch(v, patch(0, 0), patch(1, 0)), "closest to the western edge")
	assert.Equal(t, tile.Invalid, pf.DepotInPatch(v, patch(1, 0), patch(0, 0)))

	route := pf.DepotRegionPath(v, 0)
	require.Len(t, route, 2)
	assert.Equal(t, patch(1, 0), route[1].Current)
	assert.Equal(t, patch(0, 0), route[1].Parent)
	assert.Equal(t, regionpf.RegionLength, route[1].Cost)
}

func TestDepotInPatchOverAqueduct(t *testing.T) {
	rows := testutil.Paint(testutil.Rows(32, 16, '~'), 16, 0, 16, 15, '.')
	g := testutil.GridFromRows(t, rows...)
	require.NoError(t, g.BuildAqueduct(15, 8, 17, 8))
	require.NoError(t, g.BuildDepot(24, 8, tile.AxisX, 0))
	pf := newPathfinder(t, g)
	a := g.Area()
	v := newShip(a, 2, 8, tile.TrackdirXSW)

	assert.Equal(t, a.XY(24, 8), pf.DepotInPatch(v, patch(0, 0), patch(1, 0)))
	assert.Equal(t, Depot{Tile: a.XY(24, 8), Found: true}, pf.FindNearestDepot(v, 0))
}

func TestCorridorRestriction(t *testing.T) {
	g := testutil.SeaGrid(t, 48, 16)
	pf := newPathfinder(t, g)
	a := g.Area()
	v := newShip(a, 2, 8, tile.TrackdirXSW)
	v.DestTile = a.XY(40, 8)
	q := Query{Dests: []tile.Index{v.DestTile}, Forward: v.Trackdir.Bit()}

	free := pf.newTilePolicy(v, q)
	_, outcome := free.run(v.Tile, q.Forward)
	require.Equal(t, astar.Found, outcome)

	corridor := []waterregion.PatchDesc{patch(0, 0), patch(1, 0)}
	restricted := pf.newTilePolicy(v, q)
	restricted.restrict(corridor)
	s, outcome := restricted.run(v.Tile, q.Forward)
	assert.Equal(t, astar.Unreachable, outcome)

	for id := range s.NodeCount() {
		n := s.Node(astar.NodeID(id))
		assert.Contains(t, corridor, pf.index.PatchInfo(n.Key.Tile), "node on tile %d", n.Key.Tile)
	}
}

func TestStepCostAndEstimate(t *testing.T) {
	g := testutil.SeaGrid(t, 16, 16)
	require.NoError(t, g.SetWater(4, 4, terrain.WaterClassCanal))
	require.NoError(t, g.SetDocking(5, 4, 9))
	require.NoError(t, g.AddShips(5, 4, 2))
	pf := newPathfinder(t, g)
	a := g.Area()
	v := newShip(a, 3, 4, tile.TrackdirXSW)
	v.CanalSpeedFrac = 128

	p := pf.newTilePolicy(v, Query{Dests: []tile.Index{a.XY(10, 4)}})
	s := astar.New[nodeKey, tile.Trackdir](p, 0)
	s.AddStartup(nodeKey{Tile: v.Tile, Exit: tile.DiagDirSW}, tile.TrackdirXSW)

	tests := []struct {
		name string
		x    int
		td   tile.Trackdir
		want int
	}{
		{"straight on canal at half speed", 4, tile.TrackdirXSW, 100 + 100},
		{"90 degree turn", 4, tile.TrackdirYSE, 100 + 600 + 100},
		{"45 degree turn", 4, tile.TrackdirRightS, 71 + 100 + 100},
		{"two ships on docking tile", 5, tile.TrackdirXSW, 100 + 2*300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &tileNode{Key: nodeKey{Tile: a.XY(tt.x, 4), Exit: tt.td.ExitDir()}, Value: tt.td, Parent: 0}
			got, ok := p.StepCost(s, n)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	p.maxCost = 150
	_, ok := p.StepCost(s, &tileNode{Key: nodeKey{Tile: a.XY(4, 4), Exit: tile.DiagDirSW}, Value: tile.TrackdirXSW, Parent: 0})
	assert.False(t, ok, "over the cost limit")

	n := &tileNode{Key: nodeKey{Tile: a.XY(0, 0), Exit: tile.DiagDirSW}, Value: tile.TrackdirXSW, Cost: 10}
	assert.Equal(t, 10+200, p.estimateTo(n, a.XY(3, 0)))
}

func TestStepCostOverAqueduct(t *testing.T) {
	g := testutil.SeaGrid(t, 16, 16)
	require.NoError(t, g.BuildAqueduct(3, 8, 7, 8))
	pf := newPathfinder(t, g)
	a := g.Area()

	// The jump skips the three tiles between the ramps; both ramps are canal.
	tests := []struct {
		name string
		frac uint8
		want int
	}{
		{"full speed", 0, 100 + 3*100},
		{"half speed", 128, 100 + 3*100 + 100*4},
		{"quarter speed", 192, 100 + 3*100 + 100*4*192/64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newShip(a, 3, 8, tile.TrackdirXSW)
			v.CanalSpeedFrac = tt.frac
			p := pf.newTilePolicy(v, Query{Dests: []tile.Index{a.XY(12, 8)}})
			s := astar.New[nodeKey, tile.Trackdir](p, 0)
			s.AddStartup(nodeKey{Tile: v.Tile, Exit: tile.DiagDirSW}, tile.TrackdirXSW)

			p.Expand(s, 0)
			require.Equal(t, 3, p.follow.TilesSkipped)
			require.Equal(t, 2, s.NodeCount(), "the far ramp is the only successor")

			n := s.Node(1)
			assert.Equal(t, a.XY(7, 8), n.Key.Tile)
			assert.Equal(t, tile.TrackdirXSW, n.Value)
			assert.Equal(t, tt.want, n.Cost)
		})
	}
}

func TestPathCache(t *testing.T) {
	var c PathCache
	_, ok := c.Pop()
	assert.False(t, ok)

	c.push(tile.TrackdirXSW)
	c.push(tile.TrackdirYSE)
	assert.Equal(t, []tile.Trackdir{tile.TrackdirYSE, tile.TrackdirXSW}, c.Trackdirs())

	td, ok := c.Pop()
	require.True(t, ok)
	assert.Equal(t, tile.TrackdirYSE, td)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Zero(t, c.Len())
}
