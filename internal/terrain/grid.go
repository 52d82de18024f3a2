package terrain

import (
	"fmt"

	"github.com/udisondev/waterpath/internal/tile"
)

type cellKind uint8

const (
	cellLand cellKind = iota
	cellWater
	cellAqueduct
	cellDepot
)

type cell struct {
	kind    cellKind
	class   WaterClass
	tracks  tile.TrackBits
	aqDir   tile.DiagDir
	aqOther tile.Index
	station StationID
	owner   Owner
	ships   int
}

// Grid is a mutable in-memory map. Every edit that changes navigability
// notifies the registered observers with the edited tile.
type Grid struct {
	area      tile.Area
	cells     []cell
	observers []func(tile.Index)
}

// NewGrid creates a width x height map covered in land.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("new grid %dx%d: %w", width, height, ErrBadDimensions)
	}
	g := &Grid{
		area:  tile.Area{Width: width, Height: height},
		cells: make([]cell, width*height),
	}
	for i := range g.cells {
		g.cells[i] = cell{station: InvalidStation, owner: OwnerNone, aqOther: tile.Invalid, aqDir: tile.InvalidDiagDir}
	}
	return g, nil
}

// OnChange registers fn to be called after every navigability-relevant edit.
func (g *Grid) OnChange(fn func(tile.Index)) {
	g.observers = append(g.observers, fn)
}

func (g *Grid) notify(t tile.Index) {
	if t == tile.Invalid {
		return
	}
	for _, fn := range g.observers {
		fn(t)
	}
}

func (g *Grid) at(x, y int) (tile.Index, error) {
	if !g.area.Contains(x, y) {
		return tile.Invalid, fmt.Errorf("tile (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	return g.area.XY(x, y), nil
}

// SetWater turns (x, y) into open water of the given class with all tracks.
func (g *Grid) SetWater(x, y int, class WaterClass) error {
	t, err := g.at(x, y)
	if err != nil {
		return err
	}
	other := g.clearAqueduct(t)
	c := &g.cells[t]
	c.kind = cellWater
	c.class = class
	c.tracks = tile.TrackBitAll
	c.owner = OwnerNone
	g.notify(t)
	g.notify(other)
	return nil
}

// SetLand turns (x, y) into dry land. Docking flags are dropped.
func (g *Grid) SetLand(x, y int) error {
	t, err := g.at(x, y)
	if err != nil {
		return err
	}
	other := g.clearAqueduct(t)
	c := &g.cells[t]
	c.kind = cellLand
	c.tracks = tile.TrackBitNone
	c.station = InvalidStation
	c.owner = OwnerNone
	g.notify(t)
	g.notify(other)
	return nil
}

// SetTracks restricts a water tile to the given tracks, e.g. for coast tiles.
func (g *Grid) SetTracks(x, y int, tracks tile.TrackBits) error {
	t, err := g.at(x, y)
	if err != nil {
		return err
	}
	c := &g.cells[t]
	if c.kind != cellWater {
		return fmt.Errorf("set tracks on (%d,%d): not a water tile", x, y)
	}
	c.tracks = tracks
	g.notify(t)
	return nil
}

// BuildAqueduct places two aqueduct ramps facing each other. Tiles in between
// keep their contents.
func (g *Grid) BuildAqueduct(x1, y1, x2, y2 int) error {
	from, err := g.at(x1, y1)
	if err != nil {
		return err
	}
	to, err := g.at(x2, y2)
	if err != nil {
		return err
	}
	if x1 != x2 && y1 != y2 {
		return fmt.Errorf("aqueduct (%d,%d)-(%d,%d): %w", x1, y1, x2, y2, ErrNotAligned)
	}
	if g.area.Manhattan(from, to) < 2 {
		return fmt.Errorf("aqueduct (%d,%d)-(%d,%d): %w", x1, y1, x2, y2, ErrTooShort)
	}

	dir := directionTowards(x1, y1, x2, y2)
	oldFrom := g.clearAqueduct(from)
	oldTo := g.clearAqueduct(to)
	g.setRamp(from, to, dir)
	g.setRamp(to, from, dir.Reverse())
	g.notify(from)
	g.notify(to)
	g.notify(oldFrom)
	g.notify(oldTo)
	return nil
}

// RemoveAqueduct removes the aqueduct whose ramp sits at (x, y); both ramps become land.
func (g *Grid) RemoveAqueduct(x, y int) error {
	t, err := g.at(x, y)
	if err != nil {
		return err
	}
	if g.cells[t].kind != cellAqueduct {
		return fmt.Errorf("remove aqueduct at (%d,%d): %w", x, y, ErrNotAqueduct)
	}
	other := g.clearAqueduct(t)
	g.notify(t)
	g.notify(other)
	return nil
}

func (g *Grid) setRamp(t, other tile.Index, dir tile.DiagDir) {
	c := &g.cells[t]
	c.kind = cellAqueduct
	c.class = WaterClassCanal
	c.tracks = tile.DiagTrack(dir)
	c.aqDir = dir
	c.aqOther = other
	c.station = InvalidStation
}

// clearAqueduct demolishes both ramps if t is one of them and returns the
// partner ramp, or tile.Invalid if t was no ramp.
func (g *Grid) clearAqueduct(t tile.Index) tile.Index {
	if g.cells[t].kind != cellAqueduct {
		return tile.Invalid
	}
	other := g.cells[t].aqOther
	for _, r := range []tile.Index{t, other} {
		c := &g.cells[r]
		c.kind = cellLand
		c.tracks = tile.TrackBitNone
		c.aqDir = tile.InvalidDiagDir
		c.aqOther = tile.Invalid
	}
	return other
}

// SetDocking marks the water tile (x, y) as a docking tile of st.
func (g *Grid) SetDocking(x, y int, st StationID) error {
	t, err := g.at(x, y)
	if err != nil {
		return err
	}
	if g.cells[t].kind != cellWater {
		return fmt.Errorf("docking tile (%d,%d): not a water tile", x, y)
	}
	g.cells[t].station = st
	return nil
}

// BuildDepot places a ship depot on (x, y) oriented along axis.
func (g *Grid) BuildDepot(x, y int, axis tile.Axis, owner Owner) error {
	t, err := g.at(x, y)
	if err != nil {
		return err
	}
	other := g.clearAqueduct(t)
	c := &g.cells[t]
	c.kind = cellDepot
	c.class = WaterClassCanal
	if axis == tile.AxisX {
		c.tracks = tile.TrackBitX
	} else {
		c.tracks = tile.TrackBitY
	}
	c.owner = owner
	c.station = InvalidStation
	g.notify(t)
	g.notify(other)
	return nil
}

// AddShips changes the ship count on (x, y) by delta.
func (g *Grid) AddShips(x, y, delta int) error {
	t, err := g.at(x, y)
	if err != nil {
		return err
	}
	c := &g.cells[t]
	c.ships = max(0, c.ships+delta)
	return nil
}

// Area implements Waterways.
func (g *Grid) Area() tile.Area {
	return g.area
}

// WaterTracks implements Waterways.
func (g *Grid) WaterTracks(t tile.Index) tile.TrackBits {
	if !g.area.IsValid(t) {
		return tile.TrackBitNone
	}
	return g.cells[t].tracks
}

// IsAqueduct implements Waterways.
func (g *Grid) IsAqueduct(t tile.Index) bool {
	return g.area.IsValid(t) && g.cells[t].kind == cellAqueduct
}

// OtherAqueductEnd implements Waterways.
func (g *Grid) OtherAqueductEnd(t tile.Index) tile.Index {
	if !g.IsAqueduct(t) {
		return tile.Invalid
	}
	return g.cells[t].aqOther
}

// AqueductDirection implements Waterways.
func (g *Grid) AqueductDirection(t tile.Index) tile.DiagDir {
	if !g.IsAqueduct(t) {
		return tile.InvalidDiagDir
	}
	return g.cells[t].aqDir
}

// WaterClass implements Harbours.
func (g *Grid) WaterClass(t tile.Index) WaterClass {
	return g.cells[t].class
}

// IsDockingTile implements Harbours.
func (g *Grid) IsDockingTile(t tile.Index) bool {
	return g.area.IsValid(t) && g.cells[t].station != InvalidStation
}

// IsShipDestination implements Harbours.
func (g *Grid) IsShipDestination(t tile.Index, st StationID) bool {
	return g.IsDockingTile(t) && g.cells[t].station == st
}

// DockingTiles implements Harbours.
func (g *Grid) DockingTiles(st StationID) []tile.Index {
	var out []tile.Index
	for i := range g.cells {
		if g.cells[i].station == st {
			out = append(out, tile.Index(i))
		}
	}
	return out
}

// IsShipDepot implements Harbours.
func (g *Grid) IsShipDepot(t tile.Index) bool {
	return g.area.IsValid(t) && g.cells[t].kind == cellDepot
}

// Owner implements Harbours.
func (g *Grid) Owner(t tile.Index) Owner {
	return g.cells[t].owner
}

// DepotTiles implements Harbours.
func (g *Grid) DepotTiles(owner Owner) []tile.Index {
	var out []tile.Index
	for i := range g.cells {
		if g.cells[i].kind == cellDepot && g.cells[i].owner == owner {
			out = append(out, tile.Index(i))
		}
	}
	return out
}

// ShipsOn implements Harbours.
func (g *Grid) ShipsOn(t tile.Index) int {
	return g.cells[t].ships
}

func directionTowards(x1, y1, x2, y2 int) tile.DiagDir {
	switch {
	case x2 < x1:
		return tile.DiagDirNE
	case x2 > x1:
		return tile.DiagDirSW
	case y2 > y1:
		return tile.DiagDirSE
	default:
		return tile.DiagDirNW
	}
}
