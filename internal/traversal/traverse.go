package traversal

type Algorithm string

const (
	BFS Algorithm = "bfs"
	DFS Algorithm = "dfs"
)

type Options struct {
	// MaxDepth stops expansion of nodes at this depth. Zero or less means unlimited.
	MaxDepth  int
	Algorithm Algorithm
	// Directed ignores reverse direction on edges not flagged bidirectional.
	Directed bool
	// EarlyExit is checked as each node is processed; returning true ends
	// the traversal after recording that node.
	EarlyExit func(id string) bool
}

// Result records what a traversal reached. Depth and path are those of the
// first discovery of each node; with DFS or an early exit they need not be
// the shortest.
type Result struct {
	Visited        Set
	Paths          map[string][]string
	Depths         map[string]int
	Order          []string
	NodesProcessed int
}

func newResult() *Result {
	return &Result{
		Visited: make(Set),
		Paths:   make(map[string][]string),
		Depths:  make(map[string]int),
	}
}

func (r *Result) discover(id, parent string) {
	r.Visited[id] = struct{}{}
	if parent == "" {
		r.Depths[id] = 0
		r.Paths[id] = []string{id}
		return
	}
	r.Depths[id] = r.Depths[parent] + 1
	path := make([]string, len(r.Paths[parent]), len(r.Paths[parent])+1)
	copy(path, r.Paths[parent])
	r.Paths[id] = append(path, id)
}

// Traverse walks links from start. Unknown start ids yield a result holding
// only the start node.
func (e *Engine) Traverse(links []Link, start string, opts Options) *Result {
	res := newResult()
	if start == "" {
		return res
	}
	adj := e.BuildAdjacencyList(links, !opts.Directed)

	if opts.Algorithm == DFS {
		res.discover(start, "")
		e.dfs(adj, start, opts, res)
		return res
	}
	e.bfs(adj, start, opts, res)
	return res
}

func (e *Engine) bfs(adj Adjacency, start string, opts Options, res *Result) {
	res.discover(start, "")
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		res.Order = append(res.Order, current)
		res.NodesProcessed++
		if opts.EarlyExit != nil && opts.EarlyExit(current) {
			return
		}
		if opts.MaxDepth > 0 && res.Depths[current] >= opts.MaxDepth {
			continue
		}
		for _, next := range adj.Neighbors(current) {
			if res.Visited.Has(next) {
				continue
			}
			res.discover(next, current)
			queue = append(queue, next)
		}
	}
}

// dfs reports whether the traversal was stopped by EarlyExit.
func (e *Engine) dfs(adj Adjacency, current string, opts Options, res *Result) bool {
	res.Order = append(res.Order, current)
	res.NodesProcessed++
	if opts.EarlyExit != nil && opts.EarlyExit(current) {
		return true
	}
	if opts.MaxDepth > 0 && res.Depths[current] >= opts.MaxDepth {
		return false
	}
	for _, next := range adj.Neighbors(current) {
		if res.Visited.Has(next) {
			continue
		}
		res.discover(next, current)
		if e.dfs(adj, next, opts, res) {
			return true
		}
	}
	return false
}

// FindPath returns a path from start to end following edges in either
// direction, or nil when end is unreachable.
func (e *Engine) FindPath(links []Link, start, end string) []string {
	if start == "" || end == "" {
		return nil
	}
	if start == end {
		return []string{start}
	}
	res := e.Traverse(links, start, Options{
		Algorithm: BFS,
		EarlyExit: func(id string) bool { return id == end },
	})
	path, ok := res.Paths[end]
	if !ok {
		return nil
	}
	return path
}

const DefaultMaxPaths = 10

// FindAllPaths enumerates simple paths from start to end, up to maxPaths.
func (e *Engine) FindAllPaths(links []Link, start, end string, maxPaths int) [][]string {
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}
	if start == "" || end == "" {
		return nil
	}
	adj := e.BuildAdjacencyList(links, true)

	var paths [][]string
	onPath := map[string]bool{start: true}
	path := []string{start}

	var walk func(current string)
	walk = func(current string) {
		if len(paths) >= maxPaths {
			return
		}
		if current == end {
			found := make([]string, len(path))
			copy(found, path)
			paths = append(paths, found)
			return
		}
		for _, next := range adj.Neighbors(current) {
			if onPath[next] {
				continue
			}
			onPath[next] = true
			path = append(path, next)
			walk(next)
			path = path[:len(path)-1]
			onPath[next] = false
			if len(paths) >= maxPaths {
				return
			}
		}
	}
	walk(start)
	return paths
}

// DetectCycles treats links as strictly directed and returns the node
// sequence of each cycle closed during a depth-first search.
func (e *Engine) DetectCycles(links []Link) [][]string {
	adj := e.adjacency(links, modeStrict)

	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]int)
	var stack []string

	var visit func(id string)
	visit = func(id string) {
		visited[id] = true
		onStack[id] = len(stack)
		stack = append(stack, id)
		for _, next := range adj.Neighbors(id) {
			if idx, ok := onStack[next]; ok {
				cycle := make([]string, len(stack)-idx)
				copy(cycle, stack[idx:])
				cycles = append(cycles, cycle)
				continue
			}
			if !visited[next] {
				visit(next)
			}
		}
		stack = stack[:len(stack)-1]
		delete(onStack, id)
	}

	for _, id := range nodeOrder(links) {
		if !visited[id] {
			visit(id)
		}
	}
	if len(cycles) > 0 {
		e.log.Debug("detected cycles", "count", len(cycles))
	}
	return cycles
}

// GetConnectedComponents groups every endpoint into weakly connected
// components, in order of first appearance.
func (e *Engine) GetConnectedComponents(links []Link) []Set {
	adj := e.BuildAdjacencyList(links, true)
	seen := make(Set)
	var components []Set
	for _, id := range nodeOrder(links) {
		if seen.Has(id) {
			continue
		}
		component := make(Set)
		queue := []string{id}
		seen[id] = struct{}{}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			component[current] = struct{}{}
			for _, next := range adj.Neighbors(current) {
				if seen.Has(next) {
					continue
				}
				seen[next] = struct{}{}
				queue = append(queue, next)
			}
		}
		components = append(components, component)
	}
	return components
}
