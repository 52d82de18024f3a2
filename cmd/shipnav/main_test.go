package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/waterpath/internal/config"
	"github.com/udisondev/waterpath/internal/db"
	"github.com/udisondev/waterpath/internal/testutil"
)

const openSea = `
name: open sea
rows:
%s
ships:
  - {id: 1, tile: [2, 2], trackdir: x_sw, dest: [28, 13]}
queries:
  - {kind: choose_track, ship: 1}
  - {kind: check_reverse, ship: 1}
`

func writeScenario(t *testing.T, dir string) string {
	t.Helper()
	var rows strings.Builder
	for range 16 {
		rows.WriteString(`  - "` + strings.Repeat("~", 32) + `"` + "\n")
	}
	path := filepath.Join(dir, "open_sea.yaml")
	body := strings.Replace(openSea, "%s\n", rows.String(), 1)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-dump", "-workers", "3", "a.yaml", "b.yaml"})
	require.NoError(t, err)
	assert.Equal(t, ConfigPath, opts.configPath)
	assert.True(t, opts.dump)
	assert.False(t, opts.record)
	assert.Equal(t, 3, opts.workers)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, opts.scenarios)

	t.Setenv("WATERPATH_CONFIG", "/etc/shipnav.yaml")
	opts, err = parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "/etc/shipnav.yaml", opts.configPath)

	_, err = parseFlags([]string{"-bogus"})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	scenarioPath := writeScenario(t, dir)

	var out bytes.Buffer
	err := run(testutil.ContextWithTimeout(t, time.Minute), []string{
		"-config", filepath.Join(dir, "missing.yaml"),
		"-workers", "2",
		scenarioPath, scenarioPath,
	}, &out)
	require.NoError(t, err)

	log := out.String()
	assert.Equal(t, 4, strings.Count(log, "query answered"))
	assert.Contains(t, log, "shipnav finished")
	assert.Contains(t, log, "scenario=\"open sea\"")
}

func TestRunNoScenarios(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, &out)
	assert.ErrorIs(t, err, errNoScenarios)
}

func TestRunMissingScenario(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-config", filepath.Join(t.TempDir(), "missing.yaml"),
		filepath.Join(t.TempDir(), "nope-*.yaml"),
	}, &out)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExecuteShippedScenarios(t *testing.T) {
	cfg := config.DefaultShipNav()
	cfg.Scenarios = []string{"../../scenarios/*.yaml"}

	rep, err := execute(testutil.ContextWithTimeout(t, time.Minute), cfg, false, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Len(t, rep.outcomes, 9)
}

func TestExecuteRecord(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}

	ctx := testutil.ContextWithTimeout(t, 2*time.Minute)
	cfg := config.DefaultShipNav()
	cfg.Database = testutil.SetupTestDB(t)
	cfg.Record = true
	cfg.Scenarios = []string{writeScenario(t, t.TempDir())}

	rep, err := execute(ctx, cfg, false, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.Len(t, rep.outcomes, 2)

	database, err := db.New(ctx, cfg.Database.DSN())
	require.NoError(t, err)
	defer database.Close()

	records, err := db.NewRouteRepository(database.Pool()).ListByRun(ctx, rep.runID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "open sea", records[0].Scenario)
	assert.Equal(t, "choose_track", records[0].Kind)
	assert.True(t, records[0].Found)
	assert.Equal(t, "check_reverse", records[1].Kind)
	assert.Equal(t, int32(-1), records[1].TileX)
}
