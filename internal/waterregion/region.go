// Package waterregion splits the map into fixed-size square regions and labels
// the connected water patches inside each of them.
package waterregion

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/udisondev/waterpath/internal/terrain"
	"github.com/udisondev/waterpath/internal/tile"
)

// Region geometry.
const (
	EdgeLength     = 16
	TilesPerRegion = EdgeLength * EdgeLength
)

// Label numbers a patch inside one region.
type Label uint8

const (
	LabelNone    Label = 0
	LabelFirst   Label = 1
	LabelInvalid Label = 0xFF
)

// EdgeBits holds one bit per tile along a region side.
type EdgeBits uint16

// Has reports whether the tile at position i along the side can be crossed.
func (b EdgeBits) Has(i int) bool {
	return b&(1<<i) != 0
}

// Region is one EdgeLength x EdgeLength square. Query methods do not refresh
// the region; go through Index.Updated to get current data.
type Region struct {
	desc   RegionDesc
	area   tile.Area
	labels [TilesPerRegion]Label

	edgeBits       [tile.DiagDirEnd]EdgeBits
	crossAqueducts bool
	patches        int
	initialized    bool
	updates        int
}

func newRegion(desc RegionDesc, area tile.Area) Region {
	return Region{desc: desc, area: area}
}

// Desc returns the region coordinates.
func (r *Region) Desc() RegionDesc {
	return r.desc
}

// IsInitialized reports whether labels are current.
func (r *Region) IsInitialized() bool {
	return r.initialized
}

// Updates counts how many times the labels were recomputed.
func (r *Region) Updates() int {
	return r.updates
}

// Invalidate marks the labels stale. Data is kept until the next update.
func (r *Region) Invalidate() {
	r.initialized = false
}

// EdgeBits returns the crossable tiles on side. For NE/SW the bit index is the
// local y, for NW/SE the local x.
func (r *Region) EdgeBits(side tile.DiagDir) EdgeBits {
	return r.edgeBits[side]
}

// NumberOfPatches returns the number of water patches; 0 means no water.
func (r *Region) NumberOfPatches() int {
	return r.patches
}

// HasCrossRegionAqueducts reports whether an aqueduct leads out of the region.
func (r *Region) HasCrossRegionAqueducts() bool {
	return r.crossAqueducts
}

// Contains reports whether t lies inside the region.
func (r *Region) Contains(t tile.Index) bool {
	if !r.area.IsValid(t) {
		return false
	}
	lx := r.area.X(t) - r.desc.X*EdgeLength
	ly := r.area.Y(t) - r.desc.Y*EdgeLength
	return lx >= 0 && ly >= 0 && lx < EdgeLength && ly < EdgeLength
}

// Label returns the patch label of t, which must lie inside the region.
func (r *Region) Label(t tile.Index) Label {
	return r.labels[r.localIndex(t)]
}

// Tile returns the map tile at local coordinates (lx, ly).
func (r *Region) Tile(lx, ly int) tile.Index {
	return r.area.XY(r.desc.X*EdgeLength+lx, r.desc.Y*EdgeLength+ly)
}

func (r *Region) localIndex(t tile.Index) int {
	return (r.area.X(t) - r.desc.X*EdgeLength) + EdgeLength*(r.area.Y(t)-r.desc.Y*EdgeLength)
}

// UpdateIfNotInitialized recomputes the labels when stale and reports whether it did.
func (r *Region) UpdateIfNotInitialized(w terrain.Waterways) bool {
	if r.initialized {
		return false
	}
	r.ForceUpdate(w)
	return true
}

// ForceUpdate relabels every water tile of the region with a stack based flood
// fill, recording plain edge crossings and aqueducts leaving the region.
func (r *Region) ForceUpdate(w terrain.Waterways) {
	r.crossAqueducts = false
	r.labels = [TilesPerRegion]Label{}
	r.edgeBits = [tile.DiagDirEnd]EdgeBits{}

	current := LabelFirst
	highest := LabelNone
	stack := make([]tile.Index, 0, TilesPerRegion)

	for ly := range EdgeLength {
		for lx := range EdgeLength {
			stack = append(stack[:0], r.Tile(lx, ly))
			assigned := false

			for len(stack) > 0 {
				t := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				dirs := w.WaterTracks(t).Trackdirs()
				if dirs == tile.TrackdirBitNone {
					continue
				}
				idx := r.localIndex(t)
				if r.labels[idx] != LabelNone {
					continue
				}
				r.labels[idx] = current
				highest = current
				assigned = true

				dirs.Each(func(td tile.Trackdir) {
					f, ok := w.FollowTrack(t, td)
					switch {
					case !ok:
					case r.Contains(f.NewTile):
						stack = append(stack, f.NewTile)
					case !f.Aqueduct:
						r.edgeBits[f.ExitDir] |= 1 << r.edgeOffset(t, f.ExitDir)
					default:
						r.crossAqueducts = true
					}
				})
			}

			if assigned {
				current++
			}
		}
	}

	r.patches = int(highest)
	r.initialized = true
	r.updates++
}

// edgeOffset returns the position of t along the given side.
func (r *Region) edgeOffset(t tile.Index, side tile.DiagDir) int {
	if side.Axis() == tile.AxisX {
		return r.area.Y(t) - r.desc.Y*EdgeLength
	}
	return r.area.X(t) - r.desc.X*EdgeLength
}

// Dump renders the labels surrounded by the edge bits of each side, NE on the
// right and NW on top, the way the map is drawn on screen.
func (r *Region) Dump() string {
	width := len(fmt.Sprint(r.patches))
	var b strings.Builder

	fmt.Fprintf(&b, "region %d,%d: %d patches, cross aqueducts %t\n", r.desc.X, r.desc.Y, r.patches, r.crossAqueducts)
	b.WriteString("    " + edgeRow(r.edgeBits[tile.DiagDirNW], width) + "\n")
	border := "  +" + strings.Repeat("-", EdgeLength*(width+1)+1) + "+\n"
	b.WriteString(border)
	for ly := range EdgeLength {
		var line string
		for lx := range EdgeLength {
			label := "."
			if l := r.labels[lx+ly*EdgeLength]; l != LabelNone {
				label = fmt.Sprint(l)
			}
			line = fmt.Sprintf("%*s ", width, label) + line
		}
		fmt.Fprintf(&b, "%d | %s| %d\n", bit(r.edgeBits[tile.DiagDirSW], ly), line, bit(r.edgeBits[tile.DiagDirNE], ly))
	}
	b.WriteString(border)
	b.WriteString("    " + edgeRow(r.edgeBits[tile.DiagDirSE], width) + "\n")
	return b.String()
}

func edgeRow(e EdgeBits, width int) string {
	cells := make([]string, EdgeLength)
	for i := range EdgeLength {
		cells[EdgeLength-1-i] = fmt.Sprintf("%*d", width, bit(e, i))
	}
	return strings.Join(cells, " ")
}

func bit(e EdgeBits, i int) int {
	return int(e>>i) & 1
}

// crossings returns the number of crossable tiles on side.
func (r *Region) crossings(side tile.DiagDir) int {
	return bits.OnesCount16(uint16(r.edgeBits[side]))
}
