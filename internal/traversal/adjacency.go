package traversal

import (
	"encoding/binary"
	"hash/fnv"
	"strconv"
)

// Adjacency maps a node id to its neighbors in insertion order. Adjacency
// values returned by the engine are shared with its cache and must not be
// modified.
type Adjacency map[string][]string

// Neighbors returns the neighbors of id, or nil for unknown ids.
func (a Adjacency) Neighbors(id string) []string {
	return a[id]
}

type adjacencyMode uint8

const (
	// modeDirected follows edges forward, plus reverse for edges flagged bidirectional.
	modeDirected adjacencyMode = iota
	// modeBidirectional follows every edge both ways.
	modeBidirectional
	// modeStrict follows edges forward only and ignores per-edge flags.
	modeStrict
)

func buildAdjacency(links []Link, mode adjacencyMode) Adjacency {
	adj := make(Adjacency)
	seen := make(map[[2]string]struct{}, len(links)*2)
	add := func(from, to string) {
		key := [2]string{from, to}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		adj[from] = append(adj[from], to)
	}
	for _, l := range links {
		if l.Source == "" || l.Target == "" {
			continue
		}
		add(l.Source, l.Target)
		switch mode {
		case modeBidirectional:
			add(l.Target, l.Source)
		case modeDirected:
			if l.Bidirectional {
				add(l.Target, l.Source)
			}
		}
	}
	return adj
}

// cacheKey hashes the full edge structure, so two edge lists of equal
// length never share an entry.
func cacheKey(links []Link, mode adjacencyMode) string {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(links)))
	h.Write(buf[:])
	h.Write([]byte{byte(mode)})
	for _, l := range links {
		h.Write([]byte(l.Source))
		h.Write([]byte{0})
		h.Write([]byte(l.Target))
		if l.Bidirectional {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
