package config

// RegionSearch tunes the coarse search over water region patches.
type RegionSearch struct {
	NodesPerRegion  int `yaml:"nodes_per_region"` // node budget per region of map area
	MaxNodes        int `yaml:"max_nodes"`        // hard cap on the node budget
	StraightPenalty int `yaml:"straight_penalty"` // added when the path keeps its direction
}

// DefaultRegionSearch returns the budget of 4 nodes per region capped at 65536.
func DefaultRegionSearch() RegionSearch {
	return RegionSearch{
		NodesPerRegion:  4,
		MaxNodes:        65536,
		StraightPenalty: 16,
	}
}

// ShipSearch tunes the tile level ship pathfinder.
type ShipSearch struct {
	// Penalties
	Curve45Penalty int `yaml:"curve45_penalty"`
	Curve90Penalty int `yaml:"curve90_penalty"`
	DockingPenalty int `yaml:"docking_penalty"` // per ship waiting on a docking tile

	// Search shape
	LookaheadRegions int `yaml:"lookahead_regions"` // patches of the coarse path used as corridor
	MaxNodes         int `yaml:"max_nodes"`         // 0 derives the budget from the lookahead
	LostPathLength   int `yaml:"lost_path_length"`  // length of the aimless path of a lost ship

	// Seed of the random walk; equal seeds give equal walks.
	Seed uint64 `yaml:"seed"`
}

// DefaultShipSearch returns penalties in tile length units (one tile = 100).
func DefaultShipSearch() ShipSearch {
	return ShipSearch{
		Curve45Penalty:   100,
		Curve90Penalty:   600,
		DockingPenalty:   300,
		LookaheadRegions: 4,
		LostPathLength:   8,
		Seed:             1,
	}
}

// NodeBudget returns the closed node budget of one fine search: every tile of
// the lookahead regions entered through each of its four edges.
func (s ShipSearch) NodeBudget(tilesPerRegion int) int {
	if s.MaxNodes > 0 {
		return s.MaxNodes
	}
	return (s.LookaheadRegions + 1) * tilesPerRegion * 4
}
