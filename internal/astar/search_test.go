package astar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct{ x, y int }

// gridPolicy walks a character grid with unit steps; '#' blocks.
type gridPolicy struct {
	rows     []string
	goal     point
	expanded []point
}

func (g *gridPolicy) StepCost(_ *Search[point, struct{}], n *Node[point, struct{}]) (int, bool) {
	if g.rows[n.Key.y][n.Key.x] == '#' {
		return 0, false
	}
	return 1, true
}

func (g *gridPolicy) IsDestination(_ *Search[point, struct{}], n *Node[point, struct{}]) bool {
	return n.Key == g.goal
}

func (g *gridPolicy) Estimate(_ *Search[point, struct{}], n *Node[point, struct{}]) (int, bool) {
	return n.Cost + abs(n.Key.x-g.goal.x) + abs(n.Key.y-g.goal.y), true
}

func (g *gridPolicy) Expand(s *Search[point, struct{}], id NodeID) {
	p := s.Node(id).Key
	g.expanded = append(g.expanded, p)
	for _, d := range []point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		q := point{p.x + d.x, p.y + d.y}
		if q.y < 0 || q.y >= len(g.rows) || q.x < 0 || q.x >= len(g.rows[q.y]) {
			continue
		}
		s.AddSuccessor(id, q, struct{}{})
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func keys(s *Search[point, struct{}], ids []NodeID) []point {
	out := make([]point, len(ids))
	for i, id := range ids {
		out[i] = s.Node(id).Key
	}
	return out
}

func TestFindPathAroundWall(t *testing.T) {
	p := &gridPolicy{
		rows: []string{
			".....",
			".###.",
			".....",
		},
		goal: point{2, 2},
	}
	s := New[point, struct{}](p, 0)
	s.AddStartup(point{2, 0}, struct{}{})

	require.Equal(t, Found, s.FindPath())

	best := s.Best()
	require.NotEqual(t, NoNode, best)
	assert.Equal(t, best, s.Destination())
	assert.Equal(t, 6, s.Node(best).Cost)

	chain := keys(s, s.Chain(best))
	assert.Len(t, chain, 7)
	assert.Equal(t, point{2, 2}, chain[0])
	assert.Equal(t, point{2, 0}, chain[len(chain)-1])
}

func TestFindPathUnreachable(t *testing.T) {
	p := &gridPolicy{
		rows: []string{
			"..#..",
			"..#..",
		},
		goal: point{4, 0},
	}
	s := New[point, struct{}](p, 100)
	s.AddStartup(point{0, 0}, struct{}{})

	assert.Equal(t, Unreachable, s.FindPath())
	assert.Equal(t, NoNode, s.Destination())
	assert.Equal(t, 4, s.ClosedCount())

	best := s.Best()
	require.NotEqual(t, NoNode, best, "the node closest to the goal is kept")
	assert.Equal(t, 1, s.Node(best).Key.x)
}

func TestFindPathExhaustsBudget(t *testing.T) {
	p := &gridPolicy{
		rows: []string{
			"..........",
			"..........",
			"..........",
		},
		goal: point{9, 2},
	}
	s := New[point, struct{}](p, 3)
	s.AddStartup(point{0, 0}, struct{}{})

	assert.Equal(t, Exhausted, s.FindPath())
	assert.Equal(t, 3, s.ClosedCount())
	assert.Len(t, p.expanded, 3, "no node beyond the budget is expanded")
	assert.NotEqual(t, NoNode, s.Best())
}

func TestUnboundedSearchKeepsNoIntermediate(t *testing.T) {
	p := &gridPolicy{rows: []string{".#."}, goal: point{2, 0}}
	s := New[point, struct{}](p, 0)
	s.AddStartup(point{0, 0}, struct{}{})

	assert.Equal(t, Unreachable, s.FindPath())
	assert.Equal(t, NoNode, s.Best())
}

func TestStartupNodeIsDestination(t *testing.T) {
	p := &gridPolicy{rows: []string{"..."}, goal: point{1, 0}}
	s := New[point, struct{}](p, 0)
	s.AddStartup(point{1, 0}, struct{}{})
	s.AddStartup(point{1, 0}, struct{}{})

	assert.Equal(t, 1, s.OpenCount(), "duplicate startup keys are ignored")
	require.Equal(t, Found, s.FindPath())
	assert.Empty(t, p.expanded)
	assert.Equal(t, 0, s.Node(s.Best()).Cost)
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		o    Outcome
		want string
	}{
		{Found, "found"},
		{Unreachable, "unreachable"},
		{Exhausted, "exhausted"},
		{Outcome(9), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.o.String())
		})
	}
}
