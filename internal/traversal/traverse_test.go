package traversal

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain(ids ...string) []Link {
	var links []Link
	for i := 0; i+1 < len(ids); i++ {
		links = append(links, Link{Source: ids[i], Target: ids[i+1]})
	}
	return links
}

func TestBuildAdjacencyList(t *testing.T) {
	e := New(nil)
	links := []Link{{Source: "a", Target: "b"}, {Source: "b", Target: "c", Bidirectional: true}, {Source: "a", Target: "b"}}

	directed := e.BuildAdjacencyList(links, false)
	assert.Equal(t, []string{"b"}, directed.Neighbors("a"))
	assert.Equal(t, []string{"c"}, directed.Neighbors("b"))
	assert.Equal(t, []string{"b"}, directed.Neighbors("c"))

	both := e.BuildAdjacencyList(links, true)
	assert.ElementsMatch(t, []string{"a", "c"}, both.Neighbors("b"))
	assert.Nil(t, both.Neighbors("missing"))
}

func TestAdjacencyCache(t *testing.T) {
	e := New(nil)
	first := []Link{{Source: "a", Target: "b"}}
	second := []Link{{Source: "x", Target: "y"}}

	e.BuildAdjacencyList(first, true)
	e.BuildAdjacencyList(first, true)
	assert.Equal(t, 1, e.CacheSize())

	// equal length edge lists get separate entries
	adj := e.BuildAdjacencyList(second, true)
	assert.Equal(t, 2, e.CacheSize())
	assert.Equal(t, []string{"y"}, adj.Neighbors("x"))

	e.ClearCache()
	assert.Equal(t, 0, e.CacheSize())
}

func TestAdjacencyCacheLimit(t *testing.T) {
	e := New(nil, WithCacheLimit(2))
	for i := 0; i < 5; i++ {
		adj := e.BuildAdjacencyList([]Link{{Source: fmt.Sprintf("n%d", i), Target: "hub"}}, true)
		assert.Equal(t, []string{"hub"}, adj.Neighbors(fmt.Sprintf("n%d", i)))
	}
	assert.Equal(t, 2, e.CacheSize())

	// evicted entries are rebuilt on demand
	adj := e.BuildAdjacencyList([]Link{{Source: "n0", Target: "hub"}}, true)
	assert.Equal(t, []string{"n0"}, adj.Neighbors("hub"))
	assert.Equal(t, 2, e.CacheSize())

	uncached := New(nil, WithCacheLimit(0))
	uncached.BuildAdjacencyList(chain("a", "b"), true)
	assert.Equal(t, 0, uncached.CacheSize())
}

func TestAdjacencyCacheConcurrent(t *testing.T) {
	e := New(nil)
	links := chain("a", "b", "c", "d")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			adj := e.BuildAdjacencyList(links, true)
			assert.Len(t, adj, 4)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, e.CacheSize())
}

func TestTraverseBFS(t *testing.T) {
	e := New(nil)
	links := []Link{{Source: "a", Target: "b"}, {Source: "a", Target: "c"}, {Source: "b", Target: "d"}, {Source: "c", Target: "d"}}

	res := e.Traverse(links, "a", Options{})
	assert.Equal(t, []string{"a", "b", "c", "d"}, res.Order)
	assert.Equal(t, 2, res.Depths["d"])
	assert.Equal(t, []string{"a", "b", "d"}, res.Paths["d"])
	assert.Equal(t, 4, res.NodesProcessed)
}

func TestTraverseMaxDepth(t *testing.T) {
	e := New(nil)
	res := e.Traverse(chain("a", "b", "c", "d"), "a", Options{MaxDepth: 2})
	assert.True(t, res.Visited.Has("c"))
	assert.False(t, res.Visited.Has("d"))
}

func TestTraverseDirected(t *testing.T) {
	e := New(nil)
	links := chain("a", "b", "c")

	res := e.Traverse(links, "c", Options{Directed: true})
	assert.Len(t, res.Visited, 1)

	res = e.Traverse(links, "c", Options{})
	assert.Len(t, res.Visited, 3)
}

func TestTraverseDFS(t *testing.T) {
	e := New(nil)
	links := []Link{{Source: "a", Target: "b"}, {Source: "a", Target: "c"}, {Source: "b", Target: "d"}, {Source: "c", Target: "d"}}
	res := e.Traverse(links, "a", Options{Algorithm: DFS, Directed: true})
	assert.Equal(t, []string{"a", "b", "d", "c"}, res.Order)
	assert.Equal(t, []string{"a", "b", "d"}, res.Paths["d"])
}

func TestTraverseEarlyExit(t *testing.T) {
	e := New(nil)
	for _, algo := range []Algorithm{BFS, DFS} {
		t.Run(string(algo), func(t *testing.T) {
			res := e.Traverse(chain("a", "b", "c", "d"), "a", Options{
				Algorithm: algo,
				EarlyExit: func(id string) bool { return id == "b" },
			})
			assert.Equal(t, []string{"a", "b"}, res.Order)
			assert.False(t, res.Visited.Has("d"))
		})
	}
}

func TestTraverseUnknownStart(t *testing.T) {
	res := New(nil).Traverse(chain("a", "b"), "ghost", Options{})
	assert.Equal(t, []string{"ghost"}, res.Order)
	assert.Len(t, res.Visited, 1)
}

func TestFindPath(t *testing.T) {
	e := New(nil)
	links := chain("a", "b", "c")

	assert.Equal(t, []string{"a", "b", "c"}, e.FindPath(links, "a", "c"))
	assert.Equal(t, []string{"c", "b", "a"}, e.FindPath(links, "c", "a"))
	assert.Equal(t, []string{"a"}, e.FindPath(links, "a", "a"))
	assert.Nil(t, e.FindPath(links, "a", "z"))
	assert.Nil(t, e.FindPath(append(links, Link{Source: "x", Target: "y"}), "a", "y"))
}

func TestFindAllPaths(t *testing.T) {
	e := New(nil)
	links := []Link{{Source: "a", Target: "b"}, {Source: "b", Target: "d"}, {Source: "a", Target: "c"}, {Source: "c", Target: "d"}}

	paths := e.FindAllPaths(links, "a", "d", 0)
	assert.ElementsMatch(t, [][]string{{"a", "b", "d"}, {"a", "c", "d"}}, paths)

	capped := e.FindAllPaths(links, "a", "d", 1)
	assert.Len(t, capped, 1)

	for _, p := range paths {
		seen := make(map[string]bool)
		for _, id := range p {
			require.False(t, seen[id], "path %v revisits %s", p, id)
			seen[id] = true
		}
	}
}

func TestFindAllPathsDefaultCap(t *testing.T) {
	var links []Link
	for i := 0; i < 20; i++ {
		mid := fmt.Sprintf("m%d", i)
		links = append(links, Link{Source: "s", Target: mid}, Link{Source: mid, Target: "t"})
	}
	assert.Len(t, New(nil).FindAllPaths(links, "s", "t", 0), DefaultMaxPaths)
}

func TestDetectCycles(t *testing.T) {
	e := New(nil)

	cycles := e.DetectCycles([]Link{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}, {Source: "C", Target: "A"}})
	require.NotEmpty(t, cycles)
	found := false
	for _, c := range cycles {
		if len(c) == 3 {
			assert.ElementsMatch(t, []string{"A", "B", "C"}, c)
			found = true
		}
	}
	assert.True(t, found)

	assert.Empty(t, e.DetectCycles(chain("A", "B", "C")))

	// bidirectional flags do not create cycles in the strict view
	assert.Empty(t, e.DetectCycles([]Link{{Source: "A", Target: "B", Bidirectional: true}}))
}

func TestGetConnectedComponents(t *testing.T) {
	e := New(nil)
	links := []Link{{Source: "a", Target: "b"}, {Source: "c", Target: "b"}, {Source: "x", Target: "y"}}
	components := e.GetConnectedComponents(links)
	require.Len(t, components, 2)
	assert.Equal(t, []string{"a", "b", "c"}, components[0].Sorted())
	assert.Equal(t, []string{"x", "y"}, components[1].Sorted())

	assert.Empty(t, e.GetConnectedComponents(nil))
}

type testEdge struct{ from, to string }

func (e testEdge) Endpoints() (string, string, bool) { return e.from, e.to, false }

func TestLinks(t *testing.T) {
	links := Links([]testEdge{{"a", "b"}})
	assert.Equal(t, []Link{{Source: "a", Target: "b"}}, links)
}
