// Package scenario loads ship routing scenarios from YAML, builds their maps
// and runs their queries against the ship pathfinder.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/waterpath/internal/tile"
)

var (
	ErrInvalid     = errors.New("invalid scenario")
	ErrUnknownShip = errors.New("unknown ship")
)

// Query kinds.
const (
	KindChooseTrack     = "choose_track"
	KindCheckReverse    = "check_reverse"
	KindReverseTrackdir = "reverse_trackdir"
	KindNearestDepot    = "nearest_depot"
	KindDepotRegions    = "depot_regions"
)

var kinds = []string{KindChooseTrack, KindCheckReverse, KindReverseTrackdir, KindNearestDepot, KindDepotRegions}

// Point is a tile position written as [x, y].
type Point struct {
	X, Y int
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Point) UnmarshalYAML(n *yaml.Node) error {
	var xy []int
	if err := n.Decode(&xy); err != nil {
		return err
	}
	if len(xy) != 2 {
		return fmt.Errorf("line %d: point needs 2 coordinates, got %d", n.Line, len(xy))
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (p Point) MarshalYAML() (any, error) {
	return []int{p.X, p.Y}, nil
}

// Scenario is one map with ships and the questions asked about them.
type Scenario struct {
	Name string `yaml:"name"`

	// Map: explicit rows or noise generated.
	Rows     []string  `yaml:"rows"`
	Generate *Generate `yaml:"generate"`

	Aqueducts []Aqueduct `yaml:"aqueducts"`
	Stations  []Station  `yaml:"stations"`
	Depots    []Depot    `yaml:"depots"`
	Ships     []Ship     `yaml:"ships"`
	Queries   []Query    `yaml:"queries"`
}

// Aqueduct connects two ramps on one row or column.
type Aqueduct struct {
	From Point `yaml:"from"`
	To   Point `yaml:"to"`
}

// Station is a dock with its docking tiles.
type Station struct {
	ID      uint16  `yaml:"id"`
	Docking []Point `yaml:"docking"`
}

// Depot is a ship depot.
type Depot struct {
	Tile  Point  `yaml:"tile"`
	Axis  string `yaml:"axis"` // x or y
	Owner uint8  `yaml:"owner"`
}

// Ship places a ship and gives it an order.
type Ship struct {
	ID             int     `yaml:"id"`
	Tile           Point   `yaml:"tile"`
	Trackdir       string  `yaml:"trackdir"`
	Owner          uint8   `yaml:"owner"`
	CanalSpeedFrac uint8   `yaml:"canal_speed_frac"`
	OceanSpeedFrac uint8   `yaml:"ocean_speed_frac"`
	Dest           *Point  `yaml:"dest"`
	Station        *uint16 `yaml:"station"`
}

// Edit changes one tile before a query runs.
type Edit struct {
	Tile Point  `yaml:"tile"`
	To   string `yaml:"to"` // land, sea or canal
}

// Query asks the pathfinder one question about a ship. Dest and Station
// override the ship's order for this query only.
type Query struct {
	Kind       string  `yaml:"kind"`
	Ship       int     `yaml:"ship"`
	Dest       *Point  `yaml:"dest"`
	Station    *uint16 `yaml:"station"`
	MaxPenalty int     `yaml:"max_penalty"`
	Edits      []Edit  `yaml:"edits"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks references and names. Map geometry is checked by Build.
func (s *Scenario) Validate() error {
	if (len(s.Rows) == 0) == (s.Generate == nil) {
		return fmt.Errorf("%w: exactly one of rows and generate is required", ErrInvalid)
	}
	if s.Generate != nil {
		if err := s.Generate.validate(); err != nil {
			return err
		}
	}

	for _, d := range s.Depots {
		if d.Axis != "x" && d.Axis != "y" {
			return fmt.Errorf("%w: depot at %v: axis must be x or y, got %q", ErrInvalid, d.Tile, d.Axis)
		}
	}

	ids := make(map[int]bool, len(s.Ships))
	for _, sh := range s.Ships {
		if ids[sh.ID] {
			return fmt.Errorf("%w: duplicate ship id %d", ErrInvalid, sh.ID)
		}
		ids[sh.ID] = true
		if _, ok := tile.ParseTrackdir(sh.Trackdir); !ok {
			return fmt.Errorf("%w: ship %d: unknown trackdir %q", ErrInvalid, sh.ID, sh.Trackdir)
		}
	}

	for i, q := range s.Queries {
		if !slices.Contains(kinds, q.Kind) {
			return fmt.Errorf("%w: query %d: unknown kind %q", ErrInvalid, i, q.Kind)
		}
		if !ids[q.Ship] {
			return fmt.Errorf("query %d: ship %d: %w", i, q.Ship, ErrUnknownShip)
		}
		for _, e := range q.Edits {
			if e.To != "land" && e.To != "sea" && e.To != "canal" {
				return fmt.Errorf("%w: query %d: edit at %v: unknown tile kind %q", ErrInvalid, i, e.Tile, e.To)
			}
		}
	}
	return nil
}
