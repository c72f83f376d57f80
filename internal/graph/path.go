package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// neighbor is one adjacency entry, undirected.
type neighbor struct {
	key    string
	name   string
	weight float64
}

// FindPath searches the cache for a chain of edges connecting from and to
// within maxHops, treating edges as undirected. It runs a breadth-first
// search, so the result is always a shortest path; among shortest paths of
// equal hop count it prefers the one whose weakest edge is strongest, so a
// well-evidenced chain beats a weakly-evidenced one of the same length.
//
// A miss returns (nil, nil): no cached path is a legitimate negative, not
// an error.
func (s *Store) FindPath(ctx context.Context, from, to string, maxHops int) (*CachedPath, error) {
	fromKey, toKey := normalizeKey(from), normalizeKey(to)
	if fromKey == "" || toKey == "" {
		return nil, ErrEmptyArtist
	}
	if maxHops < 1 {
		maxHops = 1
	}
	if fromKey == toKey {
		return &CachedPath{Artists: []string{strings.TrimSpace(from)}}, nil
	}

	adj, names, err := s.loadAdjacency(ctx)
	if err != nil {
		return nil, err
	}
	if len(adj[fromKey]) == 0 {
		return nil, nil
	}

	type state struct {
		artists    []string
		weights    []float64
		bottleneck float64
	}

	fromName := names[fromKey]
	if fromName == "" {
		fromName = strings.TrimSpace(from)
	}

	visited := map[string]bool{fromKey: true}
	frontier := map[string]state{
		fromKey: {artists: []string{fromName}, bottleneck: 1},
	}

	for hop := 1; hop <= maxHops && len(frontier) > 0; hop++ {
		next := make(map[string]state)

		// Frontier keys are walked in sorted order and neighbors in
		// weight order, so equal-bottleneck ties resolve the same way
		// on every run.
		keys := make([]string, 0, len(frontier))
		for k := range frontier {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, nodeKey := range keys {
			st := frontier[nodeKey]
			for _, nb := range adj[nodeKey] {
				if visited[nb.key] {
					continue
				}
				bottleneck := st.bottleneck
				if nb.weight < bottleneck {
					bottleneck = nb.weight
				}
				if prev, ok := next[nb.key]; ok && prev.bottleneck >= bottleneck {
					continue
				}
				next[nb.key] = state{
					artists:    append(append([]string(nil), st.artists...), nb.name),
					weights:    append(append([]float64(nil), st.weights...), nb.weight),
					bottleneck: bottleneck,
				}
			}
		}

		if st, ok := next[toKey]; ok {
			return &CachedPath{
				Artists:    st.artists,
				Weights:    st.weights,
				Bottleneck: st.bottleneck,
			}, nil
		}
		for k := range next {
			visited[k] = true
		}
		frontier = next
	}

	return nil, nil
}

// loadAdjacency reads every edge into an undirected adjacency map with
// neighbors sorted by weight descending, plus a key to display-name map.
func (s *Store) loadAdjacency(ctx context.Context) (map[string][]neighbor, map[string]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT from_key, to_key, from_artist, to_artist, weight FROM edges`,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	adj := make(map[string][]neighbor)
	names := make(map[string]string)
	for rows.Next() {
		var fromKey, toKey, fromName, toName string
		var weight float64
		if err := rows.Scan(&fromKey, &toKey, &fromName, &toName, &weight); err != nil {
			return nil, nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		if names[fromKey] == "" {
			names[fromKey] = fromName
		}
		if names[toKey] == "" {
			names[toKey] = toName
		}
		adj[fromKey] = append(adj[fromKey], neighbor{key: toKey, name: toName, weight: weight})
		adj[toKey] = append(adj[toKey], neighbor{key: fromKey, name: fromName, weight: weight})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate edges: %w", err)
	}

	for key := range adj {
		nbs := adj[key]
		sort.Slice(nbs, func(i, j int) bool {
			if nbs[i].weight != nbs[j].weight {
				return nbs[i].weight > nbs[j].weight
			}
			return nbs[i].key < nbs[j].key
		})
	}
	return adj, names, nil
}
