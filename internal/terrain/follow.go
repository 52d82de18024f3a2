package terrain

import "github.com/udisondev/waterpath/internal/tile"

// FollowTrack implements Waterways with the rules ships play by:
// an aqueduct ramp followed in its own direction jumps to the far ramp, a ramp
// can only be entered along its direction, and the result keeps only the
// trackdirs reachable from the crossed edge.
func (g *Grid) FollowTrack(t tile.Index, td tile.Trackdir) (Follow, bool) {
	f := Follow{NewTile: tile.Invalid, ExitDir: td.ExitDir()}
	if !g.area.IsValid(t) {
		return f, false
	}

	if c := g.cells[t]; c.kind == cellAqueduct && c.aqDir == f.ExitDir {
		f.NewTile = c.aqOther
		f.Aqueduct = true
		f.TilesSkipped = g.area.Manhattan(t, c.aqOther) - 1
	} else {
		next, ok := g.area.AddDiagDir(t, f.ExitDir)
		if !ok {
			return f, false
		}
		f.NewTile = next
		if nc := g.cells[next]; nc.kind == cellAqueduct && nc.aqDir != f.ExitDir {
			return f, false
		}
	}

	f.Trackdirs = g.cells[f.NewTile].tracks.Trackdirs() & tile.DiagDirReachesTrackdirs(f.ExitDir)
	if f.Trackdirs == tile.TrackdirBitNone {
		return f, false
	}
	return f, true
}
