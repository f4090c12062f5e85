// Package matching solves min-cost max-flow problems on small bipartite
// graphs. Results are deterministic for a given edge insertion order.
package matching

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"
)

const infCost = math.MaxInt64

// Sentinel kinds for this package.
var (
	ErrNegativeCost = errors.New("negative edge cost")
	ErrBadNode      = errors.New("node out of range")
)

type edge struct {
	to   int
	rev  int // index of the reverse edge in edges
	cap  int
	cost int64
}

// Graph is a flow network over nodes 0..n-1.
type Graph struct {
	n     int
	edges []edge
	adj   [][]int
	// original capacity of forward edges, indexed by edge id
	orig map[int]int
}

// NewGraph returns an empty network with n nodes.
func NewGraph(n int) *Graph {
	return &Graph{
		n:    n,
		adj:  make([][]int, n),
		orig: make(map[int]int),
	}
}

// AddEdge adds a directed edge and returns its id for Flow lookups.
// Costs must be non-negative.
func (g *Graph) AddEdge(from, to, capacity int, cost int64) (int, error) {
	if from < 0 || from >= g.n || to < 0 || to >= g.n {
		return -1, fmt.Errorf("%w: %d->%d", ErrBadNode, from, to)
	}
	if cost < 0 {
		return -1, fmt.Errorf("%w: %d", ErrNegativeCost, cost)
	}
	id := len(g.edges)
	g.edges = append(g.edges,
		edge{to: to, rev: id + 1, cap: capacity, cost: cost},
		edge{to: from, rev: id, cap: 0, cost: -cost},
	)
	g.adj[from] = append(g.adj[from], id)
	g.adj[to] = append(g.adj[to], id+1)
	g.orig[id] = capacity
	return id, nil
}

// Flow returns the flow pushed through a forward edge.
func (g *Graph) Flow(id int) int {
	return g.orig[id] - g.edges[id].cap
}

// MinCostMaxFlow pushes the maximum flow from s to t at minimum total cost
// using successive shortest paths with Johnson potentials. ctx is checked
// between augmentations.
func (g *Graph) MinCostMaxFlow(ctx context.Context, s, t int) (int, int64, error) {
	if s < 0 || s >= g.n || t < 0 || t >= g.n {
		return 0, 0, fmt.Errorf("%w: s=%d t=%d", ErrBadNode, s, t)
	}

	potential := make([]int64, g.n)
	dist := make([]int64, g.n)
	prevEdge := make([]int, g.n)
	flow, cost := 0, int64(0)

	for {
		if err := ctx.Err(); err != nil {
			return flow, cost, err
		}
		if !g.shortestPath(s, t, potential, dist, prevEdge) {
			break
		}
		for v := 0; v < g.n; v++ {
			if dist[v] < infCost {
				potential[v] += dist[v]
			}
		}

		push := math.MaxInt
		for v := t; v != s; {
			e := g.edges[prevEdge[v]]
			if e.cap < push {
				push = e.cap
			}
			v = g.edges[e.rev].to
		}
		for v := t; v != s; {
			id := prevEdge[v]
			g.edges[id].cap -= push
			rev := g.edges[id].rev
			g.edges[rev].cap += push
			cost += int64(push) * g.edges[id].cost
			v = g.edges[rev].to
		}
		flow += push
	}

	return flow, cost, nil
}

// shortestPath runs Dijkstra on reduced costs. Ties resolve to the lower
// node index, and edges are relaxed in insertion order.
func (g *Graph) shortestPath(s, t int, potential, dist []int64, prevEdge []int) bool {
	for i := range dist {
		dist[i] = infCost
		prevEdge[i] = -1
	}
	dist[s] = 0
	pq := &nodeQueue{{node: s, dist: 0}}
	done := make([]bool, g.n)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(nodeItem)
		if done[cur.node] {
			continue
		}
		done[cur.node] = true
		for _, id := range g.adj[cur.node] {
			e := g.edges[id]
			if e.cap <= 0 || done[e.to] {
				continue
			}
			nd := cur.dist + e.cost + potential[cur.node] - potential[e.to]
			if nd < dist[e.to] {
				dist[e.to] = nd
				prevEdge[e.to] = id
				heap.Push(pq, nodeItem{node: e.to, dist: nd})
			}
		}
	}
	return dist[t] < infCost
}

type nodeItem struct {
	node int
	dist int64
}

type nodeQueue []nodeItem

func (q nodeQueue) Len() int { return len(q) }
func (q nodeQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}
func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x any)   { *q = append(*q, x.(nodeItem)) }
func (q *nodeQueue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}
