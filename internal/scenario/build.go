package scenario

import (
	"fmt"

	"github.com/udisondev/waterpath/internal/terrain"
	"github.com/udisondev/waterpath/internal/tile"
)

// Build creates the map of s. Rows use '~' for sea,
// '=' for canal and anything else for land.
func Build(s *Scenario) (*terrain.Grid, error) {
	rows := s.Rows
	if s.Generate != nil {
		rows = GenerateRows(*s.Generate)
	}

	g, err := terrain.NewGrid(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != len(rows[0]) {
			return nil, fmt.Errorf("%w: row %d has length %d, want %d", ErrInvalid, y, len(row), len(rows[0]))
		}
		for x, c := range row {
			switch c {
			case '~':
				err = g.SetWater(x, y, terrain.WaterClassSea)
			case '=':
				err = g.SetWater(x, y, terrain.WaterClassCanal)
			}
			if err != nil {
				return nil, err
			}
		}
	}

	for _, a := range s.Aqueducts {
		if err := g.BuildAqueduct(a.From.X, a.From.Y, a.To.X, a.To.Y); err != nil {
			return nil, fmt.Errorf("aqueduct %v-%v: %w", a.From, a.To, err)
		}
	}
	for _, st := range s.Stations {
		for _, p := range st.Docking {
			if err := g.SetDocking(p.X, p.Y, terrain.StationID(st.ID)); err != nil {
				return nil, fmt.Errorf("station %d: %w", st.ID, err)
			}
		}
	}
	for _, d := range s.Depots {
		axis := tile.AxisX
		if d.Axis == "y" {
			axis = tile.AxisY
		}
		if err := g.BuildDepot(d.Tile.X, d.Tile.Y, axis, terrain.Owner(d.Owner)); err != nil {
			return nil, fmt.Errorf("depot: %w", err)
		}
	}
	for _, sh := range s.Ships {
		if err := g.AddShips(sh.Tile.X, sh.Tile.Y, 1); err != nil {
			return nil, fmt.Errorf("ship %d: %w", sh.ID, err)
		}
	}
	return g, nil
}

// applyEdit changes one tile of g.
func applyEdit(g *terrain.Grid, e Edit) error {
	var err error
	switch e.To {
	case "land":
		err = g.SetLand(e.Tile.X, e.Tile.Y)
	case "sea":
		err = g.SetWater(e.Tile.X, e.Tile.Y, terrain.WaterClassSea)
	case "canal":
		err = g.SetWater(e.Tile.X, e.Tile.Y, terrain.WaterClassCanal)
	}
	if err != nil {
		return fmt.Errorf("edit %v to %s: %w", e.Tile, e.To, err)
	}
	return nil
}
