package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/waterpath/internal/config"
	"github.com/udisondev/waterpath/internal/shippf"
	"github.com/udisondev/waterpath/internal/terrain"
	"github.com/udisondev/waterpath/internal/tile"
	"github.com/udisondev/waterpath/internal/waterregion"
)

// Outcome is the answer to one query.
type Outcome struct {
	Scenario string
	Query    int
	Kind     string
	Ship     int

	Found    bool
	Trackdir string     // chosen trackdir, "" if none
	Tile     tile.Index // depot found, tile.Invalid if none
	Point    Point      // Tile as coordinates
	Reverse  bool
	Steps    int // cached steps or route patches
	Cost     int // depot_regions only
	Elapsed  time.Duration
}

// Runner executes scenarios. A Runner is safe for concurrent use: every
// scenario gets its own map, region index and pathfinder.
type Runner struct {
	ship   config.ShipSearch
	region config.RegionSearch
	dump   bool
	logger *slog.Logger
}

// NewRunner creates a Runner. With dump set the region labels of every
// scenario are logged at debug level after the map is built.
func NewRunner(ship config.ShipSearch, region config.RegionSearch, dump bool, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{ship: ship, region: region, dump: dump, logger: logger}
}

// Run builds the map of s and answers its queries in order. Edits attached to
// a query are applied before it runs and stay for the later ones.
func (r *Runner) Run(ctx context.Context, s *Scenario) ([]Outcome, error) {
	logger := r.logger.With("scenario", s.Name)

	g, err := Build(s)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", s.Name, err)
	}
	ix, err := waterregion.NewIndex(g, logger)
	if err != nil {
		return nil, fmt.Errorf("indexing %s: %w", s.Name, err)
	}
	g.OnChange(ix.InvalidateTile)
	pf := shippf.New(g, ix, r.region, r.ship, logger)

	if r.dump {
		dumpRegions(ix, logger)
	}

	area := g.Area()
	ships := make(map[int]shippf.Ship, len(s.Ships))
	for _, sh := range s.Ships {
		if sh.Dest != nil && !area.Contains(sh.Dest.X, sh.Dest.Y) {
			return nil, fmt.Errorf("%w: ship %d: destination %v off the map", ErrInvalid, sh.ID, *sh.Dest)
		}
		ships[sh.ID] = toShip(area, sh)
	}

	outcomes := make([]Outcome, 0, len(s.Queries))
	for i, q := range s.Queries {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		for _, e := range q.Edits {
			if err := applyEdit(g, e); err != nil {
				return outcomes, fmt.Errorf("query %d: %w", i, err)
			}
		}

		v := ships[q.Ship]
		if q.Dest != nil {
			if !area.Contains(q.Dest.X, q.Dest.Y) {
				return outcomes, fmt.Errorf("%w: query %d: destination %v off the map", ErrInvalid, i, *q.Dest)
			}
			v.DestTile, v.DestStation = area.XY(q.Dest.X, q.Dest.Y), terrain.InvalidStation
		}
		if q.Station != nil {
			v.DestTile, v.DestStation = tile.Invalid, terrain.StationID(*q.Station)
		}

		start := time.Now()
		o := answer(pf, &v, q)
		o.Elapsed = time.Since(start)
		o.Scenario, o.Query, o.Kind, o.Ship = s.Name, i, q.Kind, q.Ship
		if o.Tile != tile.Invalid {
			o.Point = Point{X: area.X(o.Tile), Y: area.Y(o.Tile)}
		} else {
			o.Point = Point{X: -1, Y: -1}
		}

		logger.Info("query answered",
			"query", i, "kind", q.Kind, "ship", q.Ship,
			"found", o.Found, "trackdir", o.Trackdir, "reverse", o.Reverse,
			"steps", o.Steps, "elapsed", o.Elapsed)
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

func answer(pf *shippf.Pathfinder, v *shippf.Ship, q Query) Outcome {
	o := Outcome{Tile: tile.Invalid}
	switch q.Kind {
	case KindChooseTrack:
		var cache shippf.PathCache
		res := pf.ChooseTrack(v, &cache)
		o.Found = res.PathFound
		o.Steps = cache.Len()
		if res.Trackdir.IsValid() {
			o.Trackdir = res.Trackdir.String()
		}
	case KindCheckReverse:
		o.Reverse = pf.CheckReverse(v)
	case KindReverseTrackdir:
		if td := pf.ChooseReverseTrackdir(v); td.IsValid() {
			o.Found = true
			o.Trackdir = td.String()
		}
	case KindNearestDepot:
		d := pf.FindNearestDepot(v, q.MaxPenalty)
		o.Found, o.Tile, o.Reverse = d.Found, d.Tile, d.Reverse
	case KindDepotRegions:
		route := pf.DepotRegionPath(v, q.MaxPenalty)
		o.Found = len(route) > 0
		o.Steps = len(route)
		if o.Found {
			last := route[len(route)-1]
			o.Cost = last.Cost
			o.Tile = pf.DepotInPatch(v, last.Parent, last.Current)
		}
	}
	return o
}

func toShip(area tile.Area, sh Ship) shippf.Ship {
	td, _ := tile.ParseTrackdir(sh.Trackdir)
	v := shippf.Ship{
		ID:             sh.ID,
		Tile:           area.XY(sh.Tile.X, sh.Tile.Y),
		Trackdir:       td,
		Owner:          terrain.Owner(sh.Owner),
		DestTile:       tile.Invalid,
		DestStation:    terrain.InvalidStation,
		CanalSpeedFrac: sh.CanalSpeedFrac,
		OceanSpeedFrac: sh.OceanSpeedFrac,
	}
	if sh.Dest != nil {
		v.DestTile = area.XY(sh.Dest.X, sh.Dest.Y)
	}
	if sh.Station != nil {
		v.DestStation = terrain.StationID(*sh.Station)
	}
	return v
}

func dumpRegions(ix *waterregion.Index, logger *slog.Logger) {
	w, h := ix.Size()
	for y := range h {
		for x := range w {
			rd := waterregion.RegionDesc{X: x, Y: y}
			logger.Debug("water region\n" + ix.Updated(rd).Dump())
		}
	}
}
