package tile

// Index packs tile coordinates as y*width + x.
type Index uint32

// Invalid marks "no tile".
const Invalid Index = 0xFFFFFFFF

var diagDirOffsets = [DiagDirEnd][2]int{
	{-1, 0}, // NE
	{0, 1},  // SE
	{1, 0},  // SW
	{0, -1}, // NW
}

// Area is the rectangular tile space of one map.
type Area struct {
	Width  int
	Height int
}

// Size returns the number of tiles in the area.
func (a Area) Size() int {
	return a.Width * a.Height
}

// XY returns the tile index at (x, y). The caller guarantees the point is inside.
func (a Area) XY(x, y int) Index {
	return Index(y*a.Width + x)
}

// X returns the x coordinate of t.
func (a Area) X(t Index) int {
	return int(t) % a.Width
}

// Y returns the y coordinate of t.
func (a Area) Y(t Index) int {
	return int(t) / a.Width
}

// Contains reports whether (x, y) lies on the map.
func (a Area) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < a.Width && y < a.Height
}

// IsValid reports whether t addresses a tile of this area.
func (a Area) IsValid(t Index) bool {
	return t != Invalid && int(t) < a.Size()
}

// AddDiagDir returns the neighbour of t across edge d, or false at the map border.
func (a Area) AddDiagDir(t Index, d DiagDir) (Index, bool) {
	off := d.Offset()
	x, y := a.X(t)+off[0], a.Y(t)+off[1]
	if !a.Contains(x, y) {
		return Invalid, false
	}
	return a.XY(x, y), true
}

// Manhattan returns the manhattan distance between two tiles.
func (a Area) Manhattan(t1, t2 Index) int {
	return abs(a.X(t1)-a.X(t2)) + abs(a.Y(t1)-a.Y(t2))
}

// DiagDirBetween returns the direction from t1 to an orthogonally adjacent t2.
func (a Area) DiagDirBetween(t1, t2 Index) DiagDir {
	dx := a.X(t2) - a.X(t1)
	dy := a.Y(t2) - a.Y(t1)
	switch {
	case dx < 0 && dy == 0:
		return DiagDirNE
	case dx > 0 && dy == 0:
		return DiagDirSW
	case dx == 0 && dy > 0:
		return DiagDirSE
	case dx == 0 && dy < 0:
		return DiagDirNW
	}
	return InvalidDiagDir
}

// Offset returns the (dx, dy) step of d.
func (d DiagDir) Offset() [2]int {
	return diagDirOffsets[d]
}

// IsValid reports whether d is one of the four directions.
func (d DiagDir) IsValid() bool {
	return d < DiagDirEnd
}

// Reverse returns the opposite direction.
func (d DiagDir) Reverse() DiagDir {
	return d ^ 2
}

// Axis returns the axis d runs along.
func (d DiagDir) Axis() Axis {
	return Axis(d & 1)
}

// Difference returns the rotation from d to other.
func (d DiagDir) Difference(other DiagDir) DiagDirDiff {
	return DiagDirDiff((other - d) & 3)
}

func (d DiagDir) String() string {
	switch d {
	case DiagDirNE:
		return "NE"
	case DiagDirSE:
		return "SE"
	case DiagDirSW:
		return "SW"
	case DiagDirNW:
		return "NW"
	}
	return "invalid"
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
