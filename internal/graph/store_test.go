package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{Path: filepath.Join(t.TempDir(), "influence.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func edge(from, to string, weight float64) Edge {
	return Edge{From: from, To: to, Weight: weight, SourceType: "search", SourceName: "pitchfork.com"}
}

func TestEdge_Validate(t *testing.T) {
	tests := []struct {
		name    string
		edge    Edge
		wantErr error
	}{
		{name: "valid", edge: edge("Kraftwerk", "Depeche Mode", 0.8)},
		{name: "zero weight ok", edge: edge("A Tribe Called Quest", "De La Soul", 0)},
		{name: "full weight ok", edge: edge("Can", "Neu", 1)},
		{name: "empty from", edge: edge("", "Depeche Mode", 0.8), wantErr: ErrEmptyArtist},
		{name: "blank to", edge: edge("Kraftwerk", "   ", 0.8), wantErr: ErrEmptyArtist},
		{name: "self edge", edge: edge("Kraftwerk", "kraftwerk ", 0.8), wantErr: ErrSelfEdge},
		{name: "weight too high", edge: edge("Kraftwerk", "Depeche Mode", 1.1), wantErr: ErrWeightRange},
		{name: "weight negative", edge: edge("Kraftwerk", "Depeche Mode", -0.1), wantErr: ErrWeightRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.edge.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidEdge)
		})
	}
}

func TestStore_CacheEdgeMerge(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.CacheEdge(ctx, edge("Kraftwerk", "Depeche Mode", 0.8)))

	// A weaker write keeps the stored weight.
	weaker := edge("Kraftwerk", "Depeche Mode", 0.5)
	weaker.SourceName = "thequietus.com"
	require.NoError(t, store.CacheEdge(ctx, weaker))

	edges, err := store.LookupEdges(ctx, "Kraftwerk", 0)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, 0.8, edges[0].Weight)
	require.Len(t, edges[0].Sources, 2, "both provenance records survive the merge")

	// A stronger write raises it.
	require.NoError(t, store.CacheEdge(ctx, edge("Kraftwerk", "Depeche Mode", 0.9)))
	edges, err = store.LookupEdges(ctx, "Kraftwerk", 0)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, 0.9, edges[0].Weight)
	assert.Len(t, edges[0].Sources, 3)
}

func TestStore_CacheEdgeMergesReversedDirection(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.CacheEdge(ctx, edge("Kraftwerk", "Depeche Mode", 0.6)))
	require.NoError(t, store.CacheEdge(ctx, edge("Depeche Mode", "Kraftwerk", 0.7)))

	edges, err := store.LookupEdges(ctx, "Depeche Mode", 0)
	require.NoError(t, err)
	require.Len(t, edges, 1, "the unordered pair holds one logical edge")
	assert.Equal(t, 0.7, edges[0].Weight)
	// The first write's direction is preserved.
	assert.Equal(t, "Kraftwerk", edges[0].From)
	assert.Equal(t, "Depeche Mode", edges[0].To)
}

func TestStore_CacheEdgeRejectsInvalid(t *testing.T) {
	store := newStore(t)

	err := store.CacheEdge(context.Background(), edge("Kraftwerk", "Depeche Mode", 2))
	assert.ErrorIs(t, err, ErrInvalidEdge)

	edges, sources, statErr := store.Stats(context.Background())
	require.NoError(t, statErr)
	assert.Zero(t, edges)
	assert.Zero(t, sources)
}

func TestStore_CacheEdgesPartialSuccess(t *testing.T) {
	store := newStore(t)

	result, err := store.CacheEdges(context.Background(), []Edge{
		edge("Kraftwerk", "Depeche Mode", 0.8),
		edge("", "Nobody", 0.5),
		edge("Can", "Radiohead", 1.5),
		edge("Neu", "Stereolab", 0.6),
	})
	require.NoError(t, err, "a bad edge must not abort the batch")
	assert.Equal(t, 2, result.Written)
	require.Len(t, result.Rejected, 2)
	assert.Contains(t, result.Rejected[0].Reason, "required")
	assert.Contains(t, result.Rejected[1].Reason, "weight")
}

func TestStore_LookupEdgesUndirectedAndSorted(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.CacheEdges(ctx, []Edge{
		edge("Kraftwerk", "Depeche Mode", 0.5),
		edge("Neu", "Kraftwerk", 0.9),
		edge("Kraftwerk", "LCD Soundsystem", 0.7),
		edge("Can", "Faust", 0.8), // unrelated
	})
	require.NoError(t, err)

	edges, err := store.LookupEdges(ctx, "  kraftwerk ", 0)
	require.NoError(t, err)
	require.Len(t, edges, 3, "edges into the artist count alongside edges out of it")
	assert.Equal(t, []float64{0.9, 0.7, 0.5}, []float64{edges[0].Weight, edges[1].Weight, edges[2].Weight})
}

func TestStore_LookupEdgesMinWeight(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.CacheEdges(ctx, []Edge{
		edge("Kraftwerk", "Depeche Mode", 0.5),
		edge("Kraftwerk", "Neu", 0.9),
	})
	require.NoError(t, err)

	edges, err := store.LookupEdges(ctx, "Kraftwerk", 0.6)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, 0.9, edges[0].Weight)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "influence.db")

	store, err := Open(Config{Path: dbPath}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.CacheEdge(context.Background(), edge("Kraftwerk", "Depeche Mode", 0.8)))
	require.NoError(t, store.Close())

	reopened, err := Open(Config{Path: dbPath}, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	edges, err := reopened.LookupEdges(context.Background(), "Kraftwerk", 0)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, 0.8, edges[0].Weight)
	assert.Len(t, edges[0].Sources, 1)
}

func TestStore_Stats(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.CacheEdge(ctx, edge("Kraftwerk", "Depeche Mode", 0.8)))
	require.NoError(t, store.CacheEdge(ctx, edge("Kraftwerk", "Depeche Mode", 0.6)))
	require.NoError(t, store.CacheEdge(ctx, edge("Can", "Faust", 0.7)))

	edges, sources, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, edges)
	assert.Equal(t, 3, sources)
}
