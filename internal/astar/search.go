// Package astar is a best-first search engine shared by the region and tile
// pathfinders. Callers plug in cost, destination and expansion policies; the
// engine owns the node arena, the open heap and the open/closed indices.
package astar

import "container/heap"

// Outcome tells how a search ended.
type Outcome uint8

const (
	// Found means a destination node was reached.
	Found Outcome = iota
	// Unreachable means the open list ran dry without reaching a destination.
	Unreachable
	// Exhausted means the closed-node budget ran out first.
	Exhausted
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Unreachable:
		return "unreachable"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// NodeID addresses a node inside one search's arena.
type NodeID int32

// NoNode is the parent of startup nodes.
const NoNode NodeID = -1

// Node is one search state. Estimate is the total expected cost (Cost plus the
// remaining distance), not the remaining distance alone.
type Node[K comparable, V any] struct {
	Key      K
	Value    V
	Parent   NodeID
	Cost     int
	Estimate int

	index int // position in the open heap, -1 once closed
}

// CostPolicy prices the step from n.Parent into n. Returning false rejects the step.
type CostPolicy[K comparable, V any] interface {
	StepCost(s *Search[K, V], n *Node[K, V]) (int, bool)
}

// DestinationPolicy recognises goal nodes and estimates the total cost through n.
type DestinationPolicy[K comparable, V any] interface {
	IsDestination(s *Search[K, V], n *Node[K, V]) bool
	Estimate(s *Search[K, V], n *Node[K, V]) (int, bool)
}

// Expander adds the successors of a node through Search.AddSuccessor.
type Expander[K comparable, V any] interface {
	Expand(s *Search[K, V], id NodeID)
}

// Policy bundles everything a search instance needs.
type Policy[K comparable, V any] interface {
	CostPolicy[K, V]
	DestinationPolicy[K, V]
	Expander[K, V]
}

// Search is a single-use search. Node pointers returned by Node stay valid only
// until the next AddStartup or AddSuccessor call.
type Search[K comparable, V any] struct {
	policy   Policy[K, V]
	maxNodes int

	nodes  []Node[K, V]
	open   map[K]NodeID
	closed map[K]NodeID
	heap   openHeap[K, V]

	dest             NodeID
	bestIntermediate NodeID
}

// New creates a search bounded to maxNodes closed nodes; 0 means unbounded.
func New[K comparable, V any](p Policy[K, V], maxNodes int) *Search[K, V] {
	s := &Search[K, V]{
		policy:           p,
		maxNodes:         maxNodes,
		nodes:            make([]Node[K, V], 0, 64),
		open:             make(map[K]NodeID, 64),
		closed:           make(map[K]NodeID, 64),
		dest:             NoNode,
		bestIntermediate: NoNode,
	}
	s.heap.s = s
	return s
}

// Node returns the node addressed by id.
func (s *Search[K, V]) Node(id NodeID) *Node[K, V] {
	return &s.nodes[id]
}

// Parent returns the parent of n or nil for startup nodes.
func (s *Search[K, V]) Parent(n *Node[K, V]) *Node[K, V] {
	if n.Parent == NoNode {
		return nil
	}
	return &s.nodes[n.Parent]
}

// ClosedCount returns the number of expanded nodes.
func (s *Search[K, V]) ClosedCount() int {
	return len(s.closed)
}

// OpenCount returns the number of nodes waiting for expansion.
func (s *Search[K, V]) OpenCount() int {
	return len(s.open)
}

// NodeCount returns the number of nodes created so far. Ids run from 0 to
// NodeCount()-1.
func (s *Search[K, V]) NodeCount() int {
	return len(s.nodes)
}

// MaxNodes returns the closed-node budget.
func (s *Search[K, V]) MaxNodes() int {
	return s.maxNodes
}

// AddStartup queues an origin with zero cost unless the key is already open.
func (s *Search[K, V]) AddStartup(key K, value V) {
	if _, ok := s.open[key]; ok {
		return
	}
	s.insertOpen(Node[K, V]{Key: key, Value: value, Parent: NoNode})
}

// AddSuccessor evaluates a candidate reached from parent and queues it if it
// improves on what the search already knows about key.
func (s *Search[K, V]) AddSuccessor(parent NodeID, key K, value V) {
	n := Node[K, V]{Key: key, Value: value, Parent: parent, index: -1}

	step, ok := s.policy.StepCost(s, &n)
	if !ok {
		return
	}
	n.Cost = s.nodes[parent].Cost + step
	if n.Estimate, ok = s.policy.Estimate(s, &n); !ok {
		return
	}

	setIntermediate := s.maxNodes > 0 && s.betterIntermediate(&n)

	if id, ok := s.open[key]; ok {
		old := &s.nodes[id]
		if n.Estimate < old.Estimate {
			idx := old.index
			*old = n
			old.index = idx
			heap.Fix(&s.heap, idx)
			if setIntermediate {
				s.bestIntermediate = id
			}
		}
		return
	}
	if _, ok := s.closed[key]; ok {
		return
	}

	id := s.insertOpen(n)
	if setIntermediate {
		s.bestIntermediate = id
	}
}

func (s *Search[K, V]) betterIntermediate(n *Node[K, V]) bool {
	if s.bestIntermediate == NoNode {
		return true
	}
	b := &s.nodes[s.bestIntermediate]
	return b.Estimate-b.Cost > n.Estimate-n.Cost
}

func (s *Search[K, V]) insertOpen(n Node[K, V]) NodeID {
	id := NodeID(len(s.nodes))
	s.nodes = append(s.nodes, n)
	s.open[n.Key] = id
	heap.Push(&s.heap, id)
	return id
}

// FindPath runs the search to completion and reports how it ended.
func (s *Search[K, V]) FindPath() Outcome {
	for s.heap.Len() > 0 {
		id := s.heap.ids[0]
		if s.policy.IsDestination(s, &s.nodes[id]) {
			s.dest = id
			return Found
		}

		if s.maxNodes > 0 && len(s.closed) >= s.maxNodes {
			return Exhausted
		}

		s.policy.Expand(s, id)
		heap.Remove(&s.heap, s.nodes[id].index)
		delete(s.open, s.nodes[id].Key)
		s.closed[s.nodes[id].Key] = id
	}
	return Unreachable
}

// Best returns the destination node if one was reached, else the node with the
// lowest remaining estimate, else NoNode.
func (s *Search[K, V]) Best() NodeID {
	if s.dest != NoNode {
		return s.dest
	}
	return s.bestIntermediate
}

// Destination returns the reached destination or NoNode.
func (s *Search[K, V]) Destination() NodeID {
	return s.dest
}

// Chain returns id followed by its ancestors up to the startup node.
func (s *Search[K, V]) Chain(id NodeID) []NodeID {
	var out []NodeID
	for ; id != NoNode; id = s.nodes[id].Parent {
		out = append(out, id)
	}
	return out
}

// openHeap is a min-heap of node ids ordered by estimate, then by creation order.
type openHeap[K comparable, V any] struct {
	s   *Search[K, V]
	ids []NodeID
}

func (h *openHeap[K, V]) Len() int { return len(h.ids) }

func (h *openHeap[K, V]) Less(i, j int) bool {
	a, b := &h.s.nodes[h.ids[i]], &h.s.nodes[h.ids[j]]
	if a.Estimate != b.Estimate {
		return a.Estimate < b.Estimate
	}
	return h.ids[i] < h.ids[j]
}

func (h *openHeap[K, V]) Swap(i, j int) {
	h.ids[i], h.ids[j] = h.ids[j], h.ids[i]
	h.s.nodes[h.ids[i]].index = i
	h.s.nodes[h.ids[j]].index = j
}

func (h *openHeap[K, V]) Push(x any) {
	id := x.(NodeID)
	h.s.nodes[id].index = len(h.ids)
	h.ids = append(h.ids, id)
}

func (h *openHeap[K, V]) Pop() any {
	n := len(h.ids)
	id := h.ids[n-1]
	h.ids = h.ids[:n-1]
	h.s.nodes[id].index = -1
	return id
}
