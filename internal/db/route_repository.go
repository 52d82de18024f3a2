package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RouteRecord is one answered query of one shipnav run.
type RouteRecord struct {
	RunID    uuid.UUID
	Scenario string
	Query    int32
	Kind     string
	ShipID   int32

	Found    bool
	Trackdir string
	TileX    int32 // -1 without a tile
	TileY    int32
	Reverse  bool
	Steps    int32
	Cost     int32
	Elapsed  time.Duration
	Recorded time.Time // set by the database
}

// RunSummary aggregates the records of one run.
type RunSummary struct {
	Queries int
	Found   int
	Elapsed time.Duration
}

// RouteRepository manages the route_queries table.
type RouteRepository struct {
	db *pgxpool.Pool
}

// NewRouteRepository creates a new RouteRepository.
func NewRouteRepository(db *pgxpool.Pool) *RouteRepository {
	return &RouteRepository{db: db}
}

var routeColumns = []string{
	"run_id", "scenario", "query_idx", "kind", "ship_id",
	"found", "trackdir", "tile_x", "tile_y", "reverse", "steps", "cost", "elapsed_us",
}

// Insert stores records with a single COPY.
func (r *RouteRepository) Insert(ctx context.Context, records []RouteRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []any{
			rec.RunID, rec.Scenario, rec.Query, rec.Kind, rec.ShipID,
			rec.Found, rec.Trackdir, rec.TileX, rec.TileY, rec.Reverse, rec.Steps, rec.Cost,
			rec.Elapsed.Microseconds(),
		})
	}

	_, err := r.db.CopyFrom(ctx, pgx.Identifier{"route_queries"}, routeColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copying %d route records: %w", len(records), err)
	}
	return nil
}

// ListByRun returns the records of a run ordered by scenario and query.
func (r *RouteRepository) ListByRun(ctx context.Context, runID uuid.UUID) ([]RouteRecord, error) {
	query := `
		SELECT run_id, scenario, query_idx, kind, ship_id,
		       found, trackdir, tile_x, tile_y, reverse, steps, cost, elapsed_us, created_at
		FROM route_queries
		WHERE run_id = $1
		ORDER BY scenario, query_idx
	`

	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("querying route records of run %s: %w", runID, err)
	}
	defer rows.Close()

	var result []RouteRecord
	for rows.Next() {
		var rec RouteRecord
		var elapsedUS int64
		if err := rows.Scan(
			&rec.RunID, &rec.Scenario, &rec.Query, &rec.Kind, &rec.ShipID,
			&rec.Found, &rec.Trackdir, &rec.TileX, &rec.TileY, &rec.Reverse, &rec.Steps, &rec.Cost,
			&elapsedUS, &rec.Recorded,
		); err != nil {
			return nil, fmt.Errorf("scanning route record: %w", err)
		}
		rec.Elapsed = time.Duration(elapsedUS) * time.Microsecond
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating route records: %w", err)
	}
	return result, nil
}

// Summary counts the queries of a run and how many of them found something.
func (r *RouteRepository) Summary(ctx context.Context, runID uuid.UUID) (RunSummary, error) {
	var s RunSummary
	var elapsedUS int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*), count(*) FILTER (WHERE found), coalesce(sum(elapsed_us), 0)::bigint
		 FROM route_queries WHERE run_id = $1`, runID,
	).Scan(&s.Queries, &s.Found, &elapsedUS)
	if err != nil {
		return RunSummary{}, fmt.Errorf("summarizing run %s: %w", runID, err)
	}
	s.Elapsed = time.Duration(elapsedUS) * time.Microsecond
	return s, nil
}

// DeleteRun removes the records of a run and returns how many were dropped.
func (r *RouteRepository) DeleteRun(ctx context.Context, runID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM route_queries WHERE run_id = $1`, runID)
	if err != nil {
		return 0, fmt.Errorf("deleting run %s: %w", runID, err)
	}
	return tag.RowsAffected(), nil
}
