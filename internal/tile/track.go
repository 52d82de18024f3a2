package tile

import "math/bits"

var trackdirToExitdir = [TrackdirEnd]DiagDir{
	DiagDirNE, DiagDirSE, DiagDirNE, DiagDirSE, DiagDirSW, DiagDirSE, DiagDirNE, DiagDirNE,
	DiagDirSW, DiagDirNW, DiagDirNW, DiagDirSW, DiagDirNW, DiagDirNE,
}

var exitdirReachesTrackdirs = [DiagDirEnd]TrackdirBits{
	TrackdirXNE.Bit() | TrackdirLowerE.Bit() | TrackdirLeftN.Bit(),
	TrackdirYSE.Bit() | TrackdirLeftS.Bit() | TrackdirUpperE.Bit(),
	TrackdirXSW.Bit() | TrackdirUpperW.Bit() | TrackdirRightS.Bit(),
	TrackdirYNW.Bit() | TrackdirRightN.Bit() | TrackdirLowerW.Bit(),
}

var trackCrossesTracks = [TrackEnd]TrackBits{
	TrackBitY,
	TrackBitX,
	TrackBitVert,
	TrackBitVert,
	TrackBitHorz,
	TrackBitHorz,
}

var nextTrackdir = [TrackdirEnd]Trackdir{
	TrackdirXNE, TrackdirYSE, TrackdirLowerE, TrackdirUpperE, TrackdirRightS, TrackdirLeftS, InvalidTrackdir, InvalidTrackdir,
	TrackdirXSW, TrackdirYNW, TrackdirLowerW, TrackdirUpperW, TrackdirRightN, TrackdirLeftN,
}

var trackdirNames = map[Trackdir]string{
	TrackdirXNE:    "x_ne",
	TrackdirYSE:    "y_se",
	TrackdirUpperE: "upper_e",
	TrackdirLowerE: "lower_e",
	TrackdirLeftS:  "left_s",
	TrackdirRightS: "right_s",
	TrackdirXSW:    "x_sw",
	TrackdirYNW:    "y_nw",
	TrackdirUpperW: "upper_w",
	TrackdirLowerW: "lower_w",
	TrackdirLeftN:  "left_n",
	TrackdirRightN: "right_n",
}

// IsValid reports whether td names a real trackdir.
func (td Trackdir) IsValid() bool {
	return td < TrackdirEnd && td&7 < 6
}

// Bit returns the single-element set holding td.
func (td Trackdir) Bit() TrackdirBits {
	return TrackdirBits(1) << td
}

// Track strips the direction from td.
func (td Trackdir) Track() Track {
	return Track(td & 7)
}

// Reverse returns the same track travelled the other way.
func (td Trackdir) Reverse() Trackdir {
	return td ^ 8
}

// ExitDir returns the tile edge a vehicle leaves through when following td.
func (td Trackdir) ExitDir() DiagDir {
	return trackdirToExitdir[td]
}

// Next returns the trackdir continuing td straight on the following tile.
func (td Trackdir) Next() Trackdir {
	return nextTrackdir[td]
}

// IsDiagonal reports whether td runs straight across the tile (X or Y track).
func (td Trackdir) IsDiagonal() bool {
	t := td.Track()
	return t == TrackX || t == TrackY
}

// Crosses returns the trackdirs at 90 degrees to td.
func (td Trackdir) Crosses() TrackdirBits {
	return trackCrossesTracks[td.Track()].Trackdirs()
}

func (td Trackdir) String() string {
	if name, ok := trackdirNames[td]; ok {
		return name
	}
	return "invalid"
}

// ParseTrackdir is the inverse of Trackdir.String.
func ParseTrackdir(name string) (Trackdir, bool) {
	for td, n := range trackdirNames {
		if n == name {
			return td, true
		}
	}
	return InvalidTrackdir, false
}

// Trackdirs expands a track set to both travel directions of every track.
func (b TrackBits) Trackdirs() TrackdirBits {
	return TrackdirBits(b) * 0x101
}

// DiagTrack returns the straight track along the axis of d.
func DiagTrack(d DiagDir) TrackBits {
	if d.Axis() == AxisX {
		return TrackBitX
	}
	return TrackBitY
}

// DiagDirReachesTrackdirs returns the trackdirs available after entering a tile
// while moving in direction d.
func DiagDirReachesTrackdirs(d DiagDir) TrackdirBits {
	return exitdirReachesTrackdirs[d]
}

// Has reports whether td is in the set.
func (b TrackdirBits) Has(td Trackdir) bool {
	return td.IsValid() && b&td.Bit() != 0
}

// Count returns the number of trackdirs in the set.
func (b TrackdirBits) Count() int {
	return bits.OnesCount16(uint16(b))
}

// First returns the lowest trackdir in the set or InvalidTrackdir.
func (b TrackdirBits) First() Trackdir {
	if b == 0 {
		return InvalidTrackdir
	}
	return Trackdir(bits.TrailingZeros16(uint16(b)))
}

// Each calls fn for every trackdir in the set in ascending order.
func (b TrackdirBits) Each(fn func(Trackdir)) {
	for b != 0 {
		td := b.First()
		b &^= td.Bit()
		fn(td)
	}
}

// Nth returns the n-th (0-based) trackdir of the set in ascending order.
func (b TrackdirBits) Nth(n int) Trackdir {
	for range n {
		b &^= b.First().Bit()
	}
	return b.First()
}
