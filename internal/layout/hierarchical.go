package layout

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"mysteryweb/internal/graph"
)

// Layered is the built-in hierarchical layout: break cycles, assign ranks
// by longest path, order ranks by barycenter and space them out. Nodes
// whose metadata carries a rank keep it.
func Layered(nodes []graph.Node, edges []graph.Edge, cfg Config) []graph.Node {
	cfg = cfg.withDefaults()
	out := copyNodes(nodes)
	if len(out) == 0 {
		return out
	}

	index := make(map[string]int64, len(out))
	for i, n := range out {
		index[n.ID] = int64(i)
	}

	// forward edges only: anything closing a cycle is dropped for ranking
	dag := simple.NewDirectedGraph()
	for i := range out {
		dag.AddNode(simple.Node(int64(i)))
	}
	preds := make(map[int64][]int64)
	for _, e := range acyclicEdges(out, edges, index) {
		if dag.HasEdgeFromTo(e[0], e[1]) {
			continue
		}
		dag.SetEdge(simple.Edge{F: simple.Node(e[0]), T: simple.Node(e[1])})
		preds[e[1]] = append(preds[e[1]], e[0])
	}

	ranks := assignRanks(out, dag, preds)
	layers := orderLayers(out, ranks, preds)
	position(out, layers, cfg)
	return out
}

// acyclicEdges returns edge endpoints as indexes with back edges of a
// depth-first search removed.
func acyclicEdges(nodes []graph.Node, edges []graph.Edge, index map[string]int64) [][2]int64 {
	succ := make(map[int64][]int64)
	for _, e := range edges {
		s, okS := index[e.Source]
		t, okT := index[e.Target]
		if !okS || !okT || s == t {
			continue
		}
		succ[s] = append(succ[s], t)
	}

	const (
		unseen = iota
		active
		done
	)
	state := make([]int, len(nodes))
	var kept [][2]int64
	var visit func(n int64)
	visit = func(n int64) {
		state[n] = active
		for _, m := range succ[n] {
			switch state[m] {
			case active:
				continue
			case unseen:
				visit(m)
			}
			kept = append(kept, [2]int64{n, m})
		}
		state[n] = done
	}
	for i := range nodes {
		if state[i] == unseen {
			visit(int64(i))
		}
	}
	return kept
}

func assignRanks(nodes []graph.Node, dag *simple.DirectedGraph, preds map[int64][]int64) []int {
	ranks := make([]int, len(nodes))
	order, err := topo.Sort(dag)
	if err != nil {
		// unreachable once back edges are removed
		return ranks
	}
	fixed := make([]bool, len(nodes))
	for i, n := range nodes {
		if n.Data.Metadata.Rank != nil {
			ranks[i] = max(0, *n.Data.Metadata.Rank)
			fixed[i] = true
		}
	}
	for _, n := range order {
		id := n.ID()
		if fixed[id] {
			continue
		}
		for _, p := range preds[id] {
			if r := ranks[p] + 1; r > ranks[id] {
				ranks[id] = r
			}
		}
	}
	return ranks
}

// orderLayers groups nodes by rank and sorts each rank by the mean
// position of its predecessors in earlier ranks.
func orderLayers(nodes []graph.Node, ranks []int, preds map[int64][]int64) [][]int64 {
	maxRank := 0
	for _, r := range ranks {
		maxRank = max(maxRank, r)
	}
	layers := make([][]int64, maxRank+1)
	for i, r := range ranks {
		layers[r] = append(layers[r], int64(i))
	}

	slot := make(map[int64]float64, len(nodes))
	for _, layer := range layers {
		for pos, n := range layer {
			slot[n] = float64(pos)
		}
	}
	for r := 1; r < len(layers); r++ {
		layer := layers[r]
		bary := make(map[int64]float64, len(layer))
		for _, n := range layer {
			sum, count := 0.0, 0
			for _, p := range preds[n] {
				if ranks[p] < r {
					sum += slot[p]
					count++
				}
			}
			if count == 0 {
				bary[n] = slot[n]
				continue
			}
			bary[n] = sum / float64(count)
		}
		sort.SliceStable(layer, func(i, j int) bool {
			return bary[layer[i]] < bary[layer[j]]
		})
		for pos, n := range layer {
			slot[n] = float64(pos)
		}
	}
	return layers
}

func position(nodes []graph.Node, layers [][]int64, cfg Config) {
	across := cfg.NodeWidth + cfg.NodeSpacing
	along := cfg.NodeHeight + cfg.RankSpacing
	if cfg.Direction == LeftRight || cfg.Direction == RightLeft {
		across = cfg.NodeHeight + cfg.NodeSpacing
		along = cfg.NodeWidth + cfg.RankSpacing
	}

	widest := 0
	for _, layer := range layers {
		widest = max(widest, len(layer))
	}

	last := float64(len(layers) - 1)
	for r, layer := range layers {
		offset := 0.0
		switch cfg.Alignment {
		case "right":
			offset = float64(widest-len(layer)) * across
		case "left":
		default:
			offset = float64(widest-len(layer)) * across / 2
		}
		for i, n := range layer {
			a := offset + float64(i)*across
			b := float64(r) * along
			var x, y float64
			switch cfg.Direction {
			case LeftRight:
				x, y = b, a
			case RightLeft:
				x, y = (last-float64(r))*along, a
			case BottomTop:
				x, y = a, (last-float64(r))*along
			default:
				x, y = a, b
			}
			nodes[n].Position = graph.Position{X: x, Y: y}
			nodes[n].Data.Metadata = nodes[n].Data.Metadata.WithRank(r)
		}
	}
}
