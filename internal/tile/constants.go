package tile

// DiagDir is one of the four directions crossing a tile edge.
// X grows towards SW, Y grows towards SE.
type DiagDir uint8

const (
	DiagDirNE DiagDir = iota
	DiagDirSE
	DiagDirSW
	DiagDirNW
	DiagDirEnd

	InvalidDiagDir DiagDir = 0xFF
)

// DiagDirDiff is the rotation between two diagonal directions.
type DiagDirDiff uint8

const (
	DiagDirDiffSame DiagDirDiff = iota
	DiagDirDiff90Right
	DiagDirDiffReverse
	DiagDirDiff90Left
)

// Axis is the map axis a diagonal direction runs along.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

// Track is one of the six track pieces a tile can carry.
type Track uint8

const (
	TrackX Track = iota
	TrackY
	TrackUpper
	TrackLower
	TrackLeft
	TrackRight
	TrackEnd

	InvalidTrack Track = 0xFF
)

// TrackBits is a set of tracks, bit i for Track i.
type TrackBits uint8

const (
	TrackBitNone  TrackBits = 0
	TrackBitX     TrackBits = 1 << TrackX
	TrackBitY     TrackBits = 1 << TrackY
	TrackBitUpper TrackBits = 1 << TrackUpper
	TrackBitLower TrackBits = 1 << TrackLower
	TrackBitLeft  TrackBits = 1 << TrackLeft
	TrackBitRight TrackBits = 1 << TrackRight

	TrackBitHorz TrackBits = TrackBitUpper | TrackBitLower
	TrackBitVert TrackBits = TrackBitLeft | TrackBitRight
	TrackBitAll  TrackBits = TrackBitX | TrackBitY | TrackBitHorz | TrackBitVert
)

// Trackdir is a track travelled in one direction.
// Values 0-5 run one way, 8-13 the opposite way; 6 and 7 are unused.
type Trackdir uint8

const (
	TrackdirXNE    Trackdir = 0
	TrackdirYSE    Trackdir = 1
	TrackdirUpperE Trackdir = 2
	TrackdirLowerE Trackdir = 3
	TrackdirLeftS  Trackdir = 4
	TrackdirRightS Trackdir = 5
	TrackdirXSW    Trackdir = 8
	TrackdirYNW    Trackdir = 9
	TrackdirUpperW Trackdir = 10
	TrackdirLowerW Trackdir = 11
	TrackdirLeftN  Trackdir = 12
	TrackdirRightN Trackdir = 13
	TrackdirEnd    Trackdir = 14

	InvalidTrackdir Trackdir = 0xFF
)

// TrackdirBits is a set of trackdirs, bit i for Trackdir i.
type TrackdirBits uint16

const (
	TrackdirBitNone TrackdirBits = 0
	TrackdirBitAll  TrackdirBits = 0x3F3F
)

// Pathfinder cost units.
const (
	TileLength       = 100
	TileCornerLength = 71
)
