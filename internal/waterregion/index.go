package waterregion

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/udisondev/waterpath/internal/terrain"
	"github.com/udisondev/waterpath/internal/tile"
)

// ErrBadMapSize is returned when the map cannot be split into whole regions.
var ErrBadMapSize = errors.New("map size must be a positive multiple of the region edge length")

// RegionDesc identifies a region by its region coordinates.
type RegionDesc struct {
	X, Y int
}

// PatchDesc identifies one patch of one region. It is the node key of the
// region pathfinder.
type PatchDesc struct {
	X, Y  int
	Label Label
}

// InvalidPatch is the descriptor of "no patch".
var InvalidPatch = PatchDesc{X: -1, Y: -1, Label: LabelInvalid}

// Region returns the region the patch belongs to.
func (p PatchDesc) Region() RegionDesc {
	return RegionDesc{X: p.X, Y: p.Y}
}

// IsValid reports whether p names a real patch. Land tiles carry LabelNone
// and belong to no patch.
func (p PatchDesc) IsValid() bool {
	return p.X >= 0 && p.Y >= 0 && p.Label != LabelNone && p.Label != LabelInvalid
}

func (p PatchDesc) String() string {
	return fmt.Sprintf("(%d,%d)#%d", p.X, p.Y, p.Label)
}

// Index owns the regions of one map and refreshes them lazily.
// It is not safe for concurrent use.
type Index struct {
	ways    terrain.Waterways
	logger  *slog.Logger
	area    tile.Area
	width   int
	height  int
	regions []Region
}

// NewIndex allocates the regions covering the map of ways.
func NewIndex(ways terrain.Waterways, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ix := &Index{ways: ways, logger: logger}
	a := ways.Area()
	if err := ix.Allocate(a.Width, a.Height); err != nil {
		return nil, err
	}
	return ix, nil
}

// Allocate drops every region and creates fresh, uninitialized ones for a
// width x height map.
func (ix *Index) Allocate(width, height int) error {
	if width <= 0 || height <= 0 || width%EdgeLength != 0 || height%EdgeLength != 0 {
		return fmt.Errorf("allocate water regions for %dx%d: %w", width, height, ErrBadMapSize)
	}
	if a := ix.ways.Area(); a.Width != width || a.Height != height {
		return fmt.Errorf("allocate water regions for %dx%d on a %dx%d map: %w", width, height, a.Width, a.Height, ErrBadMapSize)
	}

	ix.area = tile.Area{Width: width, Height: height}
	ix.width = width / EdgeLength
	ix.height = height / EdgeLength
	ix.regions = make([]Region, 0, ix.width*ix.height)
	for ry := range ix.height {
		for rx := range ix.width {
			ix.regions = append(ix.regions, newRegion(RegionDesc{X: rx, Y: ry}, ix.area))
		}
	}

	ix.logger.Debug("allocated water regions", "regions_x", ix.width, "regions_y", ix.height)
	return nil
}

// Area returns the tile area covered by the index.
func (ix *Index) Area() tile.Area {
	return ix.area
}

// Waterways returns the map the index reads.
func (ix *Index) Waterways() terrain.Waterways {
	return ix.ways
}

// Size returns the number of regions along x and y.
func (ix *Index) Size() (int, int) {
	return ix.width, ix.height
}

// Contains reports whether the region coordinates are on the map.
func (ix *Index) Contains(rd RegionDesc) bool {
	return rd.X >= 0 && rd.Y >= 0 && rd.X < ix.width && rd.Y < ix.height
}

func (ix *Index) indexOf(rd RegionDesc) int {
	return rd.Y*ix.width + rd.X
}

// Region returns the region without refreshing it.
func (ix *Index) Region(rd RegionDesc) *Region {
	return &ix.regions[ix.indexOf(rd)]
}

// Updated returns the region after bringing its labels up to date.
func (ix *Index) Updated(rd RegionDesc) *Region {
	r := &ix.regions[ix.indexOf(rd)]
	if r.UpdateIfNotInitialized(ix.ways) {
		ix.logger.Debug("updated water region",
			"x", rd.X, "y", rd.Y,
			"patches", r.patches,
			"ne", r.crossings(tile.DiagDirNE), "se", r.crossings(tile.DiagDirSE),
			"sw", r.crossings(tile.DiagDirSW), "nw", r.crossings(tile.DiagDirNW),
			"cross_aqueducts", r.crossAqueducts)
	}
	return r
}

// UpdatedAt returns the up to date region holding t.
func (ix *Index) UpdatedAt(t tile.Index) *Region {
	return ix.Updated(ix.RegionInfo(t))
}

// RegionInfo returns the region holding t.
func (ix *Index) RegionInfo(t tile.Index) RegionDesc {
	return RegionDesc{X: ix.area.X(t) / EdgeLength, Y: ix.area.Y(t) / EdgeLength}
}

// PatchInfo returns the patch holding t, refreshing its region if needed.
func (ix *Index) PatchInfo(t tile.Index) PatchDesc {
	rd := ix.RegionInfo(t)
	return PatchDesc{X: rd.X, Y: rd.Y, Label: ix.Updated(rd).Label(t)}
}

// InvalidateTile marks the region holding t and its four neighbours stale.
// Tiles outside the map are ignored.
func (ix *Index) InvalidateTile(t tile.Index) {
	if !ix.area.IsValid(t) {
		return
	}
	rd := ix.RegionInfo(t)
	ix.Region(rd).Invalidate()
	for side := tile.DiagDirNE; side < tile.DiagDirEnd; side++ {
		off := side.Offset()
		n := RegionDesc{X: rd.X + off[0], Y: rd.Y + off[1]}
		if ix.Contains(n) {
			ix.Region(n).Invalidate()
		}
	}
	ix.logger.Debug("invalidated water region", "x", rd.X, "y", rd.Y, "tile", t)
}

// CenterTile returns the tile in the middle of a region.
func (ix *Index) CenterTile(rd RegionDesc) tile.Index {
	return ix.area.XY(rd.X*EdgeLength+EdgeLength/2, rd.Y*EdgeLength+EdgeLength/2)
}

// LocalTile returns the map tile at local coordinates of a region.
func (ix *Index) LocalTile(rd RegionDesc, lx, ly int) tile.Index {
	return ix.area.XY(rd.X*EdgeLength+lx, rd.Y*EdgeLength+ly)
}

// EdgeTile returns the tile at position i along side of a region.
func (ix *Index) EdgeTile(rd RegionDesc, side tile.DiagDir, i int) tile.Index {
	switch side {
	case tile.DiagDirNE:
		return ix.LocalTile(rd, 0, i)
	case tile.DiagDirSW:
		return ix.LocalTile(rd, EdgeLength-1, i)
	case tile.DiagDirNW:
		return ix.LocalTile(rd, i, 0)
	case tile.DiagDirSE:
		return ix.LocalTile(rd, i, EdgeLength-1)
	}
	panic(fmt.Sprintf("edge tile: invalid side %d", side))
}

// VisitPatchNeighbors calls fn for every patch reachable from p in one step:
// across each of the four region sides and over aqueducts leaving the region.
// A neighbour may be reported more than once.
func (ix *Index) VisitPatchNeighbors(p PatchDesc, fn func(PatchDesc)) {
	if !p.IsValid() {
		return
	}
	current := ix.Updated(p.Region())

	for side := tile.DiagDirNE; side < tile.DiagDirEnd; side++ {
		ix.visitAdjacent(p, current, side, fn)
	}

	if !current.HasCrossRegionAqueducts() {
		return
	}
	for ly := range EdgeLength {
		for lx := range EdgeLength {
			t := current.Tile(lx, ly)
			if !ix.ways.IsAqueduct(t) || current.Label(t) != p.Label {
				continue
			}
			other := ix.ways.OtherAqueductEnd(t)
			if ix.RegionInfo(other) != p.Region() {
				fn(ix.PatchInfo(other))
			}
		}
	}
}

func (ix *Index) visitAdjacent(p PatchDesc, current *Region, side tile.DiagDir, fn func(PatchDesc)) {
	off := side.Offset()
	nd := RegionDesc{X: p.X + off[0], Y: p.Y + off[1]}
	if !ix.Contains(nd) {
		return
	}
	neighbor := ix.Updated(nd)
	opposite := side.Reverse()

	crossable := current.EdgeBits(side) & neighbor.EdgeBits(opposite)
	if crossable == 0 {
		return
	}

	if current.NumberOfPatches() == 1 && neighbor.NumberOfPatches() == 1 {
		fn(PatchDesc{X: nd.X, Y: nd.Y, Label: LabelFirst})
		return
	}

	var labels []Label
	for i := range EdgeLength {
		if !crossable.Has(i) {
			continue
		}
		if current.Label(ix.EdgeTile(p.Region(), side, i)) != p.Label {
			continue
		}
		l := neighbor.Label(ix.EdgeTile(nd, opposite, i))
		if !slices.Contains(labels, l) {
			labels = append(labels, l)
		}
	}
	for _, l := range labels {
		fn(PatchDesc{X: nd.X, Y: nd.Y, Label: l})
	}
}

// DiagDirBetweenRegions returns the side of to that faces from, and whether the
// two regions are direct neighbours. Regions that are not in line yield
// InvalidDiagDir.
func DiagDirBetweenRegions(from, to RegionDesc) (tile.DiagDir, bool) {
	dx := from.X - to.X
	dy := from.Y - to.Y
	adjacent := (abs(dx) == 1 && dy == 0) || (abs(dy) == 1 && dx == 0)
	switch {
	case dx > 0 && dy == 0:
		return tile.DiagDirSW, adjacent
	case dx < 0 && dy == 0:
		return tile.DiagDirNE, adjacent
	case dx == 0 && dy > 0:
		return tile.DiagDirSE, adjacent
	case dx == 0 && dy < 0:
		return tile.DiagDirNW, adjacent
	}
	return tile.InvalidDiagDir, adjacent
}

// FindCrossRegionAqueductTile scans the row or column at position i, starting
// from side, for an aqueduct ramp pointing out through side to another region.
// It returns the ramp and its distance from the edge, or tile.Invalid.
func (ix *Index) FindCrossRegionAqueductTile(rd RegionDesc, side tile.DiagDir, i int) (tile.Index, int) {
	start, end, step := 0, EdgeLength, 1
	if side == tile.DiagDirSW || side == tile.DiagDirSE {
		start, end, step = EdgeLength-1, -1, -1
	}

	dist := 0
	for j := start; j != end; j += step {
		var t tile.Index
		if side == tile.DiagDirNE || side == tile.DiagDirSW {
			t = ix.LocalTile(rd, j, i)
		} else {
			t = ix.LocalTile(rd, i, j)
		}
		if ix.ways.IsAqueduct(t) &&
			ix.RegionInfo(ix.ways.OtherAqueductEnd(t)) != rd &&
			ix.ways.AqueductDirection(t) == side {
			return t, dist
		}
		dist++
	}
	return tile.Invalid, 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
