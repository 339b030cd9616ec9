package graph

import "math"

// Node is a vertex of the game board.
type Node struct {
	ID string `json:"id"`
}

// Edge is a directed weighted connection between two nodes. Weight is a
// capacity and never goes negative.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Graph is the shared game board. Its topology is fixed when the room is
// created; only edge weights change during play.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// EdgeKey identifies a directed edge.
type EdgeKey struct {
	Source string
	Target string
}

// Delta is one staged weight change on a directed edge.
type Delta struct {
	Source string
	Target string
	Change int
}

// NewComplete builds the starting board: both directed edges with weight 1.0
// for every unordered pair of nodes. The result is strongly connected, which
// keeps the stationary distribution well-defined at game start.
func NewComplete(playerNodes, neutralNodes []string) *Graph {
	names := make([]string, 0, len(playerNodes)+len(neutralNodes))
	names = append(names, playerNodes...)
	names = append(names, neutralNodes...)

	g := &Graph{Nodes: make([]Node, 0, len(names))}
	for _, n := range names {
		g.Nodes = append(g.Nodes, Node{ID: n})
	}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			g.Edges = append(g.Edges,
				Edge{Source: names[i], Target: names[j], Weight: 1.0},
				Edge{Source: names[j], Target: names[i], Weight: 1.0},
			)
		}
	}
	return g
}

// Clone returns an independent deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(c.Nodes, g.Nodes)
	copy(c.Edges, g.Edges)
	return c
}

// NodeIndex maps node id to its position in declaration order.
func (g *Graph) NodeIndex() map[string]int {
	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n.ID] = i
	}
	return index
}

// Consolidate nets staged changes per directed edge. Only the summed effect
// per edge matters, so submission order is irrelevant.
func Consolidate(deltas []Delta) map[EdgeKey]int {
	net := make(map[EdgeKey]int, len(deltas))
	for _, d := range deltas {
		net[EdgeKey{Source: d.Source, Target: d.Target}] += d.Change
	}
	return net
}

// ApplyDeltas commits net weight changes: new = max(0, round(old + delta)).
// Edges without a delta are untouched; deltas for edges not in the graph are
// ignored.
func (g *Graph) ApplyDeltas(deltas map[EdgeKey]int) {
	for i := range g.Edges {
		key := EdgeKey{Source: g.Edges[i].Source, Target: g.Edges[i].Target}
		if d, ok := deltas[key]; ok {
			w := math.Round(g.Edges[i].Weight + float64(d))
			if w < 0 {
				w = 0
			}
			g.Edges[i].Weight = w
		}
	}
}
