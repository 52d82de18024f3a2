// Package terrain provides the tile queries the water pathfinders consume and an
// in-memory grid implementing them.
package terrain

import (
	"errors"

	"github.com/udisondev/waterpath/internal/tile"
)

// WaterClass distinguishes open sea from man-made waterways.
type WaterClass uint8

const (
	WaterClassSea WaterClass = iota
	WaterClassCanal
	WaterClassRiver
)

// Owner identifies the company owning a tile or a ship.
type Owner uint8

// OwnerNone marks unowned tiles.
const OwnerNone Owner = 0xFF

// StationID identifies a station with docks.
type StationID uint16

// InvalidStation marks "no station".
const InvalidStation StationID = 0xFFFF

// Sentinel errors for grid edits.
var (
	ErrOutOfBounds   = errors.New("tile out of map bounds")
	ErrNotAligned    = errors.New("aqueduct ends are not axis aligned")
	ErrTooShort      = errors.New("aqueduct ends must be at least two tiles apart")
	ErrNotAqueduct   = errors.New("tile is not an aqueduct ramp")
	ErrBadDimensions = errors.New("map dimensions must be positive")
)

// Follow describes the tile reached by following a trackdir off a tile.
type Follow struct {
	NewTile      tile.Index
	Trackdirs    tile.TrackdirBits // trackdirs available on NewTile
	ExitDir      tile.DiagDir
	Aqueduct     bool // crossed over an aqueduct, NewTile is the far ramp
	TilesSkipped int  // tiles jumped over by an aqueduct
}

// Waterways answers navigability questions. Implementations are read-only from
// the pathfinders' point of view.
type Waterways interface {
	Area() tile.Area
	// WaterTracks returns the tracks a ship may use on t.
	WaterTracks(t tile.Index) tile.TrackBits
	// FollowTrack resolves the tile reached when leaving t along td.
	FollowTrack(t tile.Index, td tile.Trackdir) (Follow, bool)
	IsAqueduct(t tile.Index) bool
	OtherAqueductEnd(t tile.Index) tile.Index
	// AqueductDirection returns the direction from t towards the other ramp.
	AqueductDirection(t tile.Index) tile.DiagDir
}

// Harbours answers questions about docks, depots and ship occupancy.
type Harbours interface {
	WaterClass(t tile.Index) WaterClass
	IsDockingTile(t tile.Index) bool
	IsShipDestination(t tile.Index, st StationID) bool
	DockingTiles(st StationID) []tile.Index
	IsShipDepot(t tile.Index) bool
	Owner(t tile.Index) Owner
	// DepotTiles lists ship depots owned by owner.
	DepotTiles(owner Owner) []tile.Index
	// ShipsOn counts visible ships currently on t.
	ShipsOn(t tile.Index) int
}

// Map is the full collaborator surface.
type Map interface {
	Waterways
	Harbours
}
