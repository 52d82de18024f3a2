package testutil

import (
	"strings"
	"testing"

	"github.com/udisondev/waterpath/internal/terrain"
)

// GridFromRows строит карту по ASCII-схеме: '~' море, '=' канал, остальное суша.
// Все строки должны быть одной длины.
func GridFromRows(tb testing.TB, rows ...string) *terrain.Grid {
	tb.Helper()

	if len(rows) == 0 {
		tb.Fatalf("grid needs at least one row")
	}
	g, err := terrain.NewGrid(len(rows[0]), len(rows))
	if err != nil {
		tb.Fatalf("creating grid: %v", err)
	}
	for y, row := range rows {
		if len(row) != len(rows[0]) {
			tb.Fatalf("row %d has length %d, want %d", y, len(row), len(rows[0]))
		}
		for x, c := range row {
			var err error
			switch c {
			case '~':
				err = g.SetWater(x, y, terrain.WaterClassSea)
			case '=':
				err = g.SetWater(x, y, terrain.WaterClassCanal)
			}
			if err != nil {
				tb.Fatalf("setting tile (%d,%d): %v", x, y, err)
			}
		}
	}
	return g
}

// SeaGrid возвращает карту width x height, целиком покрытую морем.
func SeaGrid(tb testing.TB, width, height int) *terrain.Grid {
	tb.Helper()
	return GridFromRows(tb, Rows(width, height, '~')...)
}

// Rows возвращает height одинаковых строк длины width из символа c.
func Rows(width, height int, c byte) []string {
	rows := make([]string, height)
	for y := range rows {
		rows[y] = strings.Repeat(string(c), width)
	}
	return rows
}

// Paint заменяет прямоугольник [x1..x2]x[y1..y2] в схеме символом c.
func Paint(rows []string, x1, y1, x2, y2 int, c byte) []string {
	out := make([]string, len(rows))
	for y, row := range rows {
		if y < y1 || y > y2 {
			out[y] = row
			continue
		}
		b := []byte(row)
		for x := x1; x <= x2 && x < len(b); x++ {
			b[x] = c
		}
		out[y] = string(b)
	}
	return out
}
