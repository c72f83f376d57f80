package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Store provides persistence for the influence graph in a SQLite database.
// Every write is its own transaction, so concurrent readers never observe a
// half-merged edge and a batch holds no lock across entries.
type Store struct {
	conn   *sql.DB
	logger *zap.Logger
	dbPath string
}

// Open opens or creates the graph database at cfg.Path.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dbPath, err := expandPath(cfg.Path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create graph directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &Store{
		conn:   conn,
		logger: logger,
		dbPath: dbPath,
	}
	if err := store.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize graph schema: %w", err)
	}

	return store, nil
}

// initializeSchema creates the edge tables.
func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS edges (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pair_key TEXT NOT NULL UNIQUE,
			from_artist TEXT NOT NULL,
			to_artist TEXT NOT NULL,
			from_key TEXT NOT NULL,
			to_key TEXT NOT NULL,
			weight REAL NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_edges_from_key ON edges(from_key);
		CREATE INDEX IF NOT EXISTS idx_edges_to_key ON edges(to_key);

		CREATE TABLE IF NOT EXISTS edge_sources (
			id TEXT PRIMARY KEY,
			edge_id INTEGER NOT NULL REFERENCES edges(id) ON DELETE CASCADE,
			source_type TEXT NOT NULL,
			source_name TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sources_edge ON edge_sources(edge_id);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// CacheEdge validates and stores one edge, merging with any existing edge
// for the same unordered pair: the stored weight becomes the maximum of old
// and new, the direction of the first write is preserved, and the new
// provenance is appended. The cache accumulates evidence monotonically.
func (s *Store) CacheEdge(ctx context.Context, e Edge) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return s.writeEdge(ctx, e)
}

// CacheEdges stores a batch of edges with per-edge atomicity: each entry is
// its own transaction, and a bad edge is collected as rejected rather than
// aborting the rest.
func (s *Store) CacheEdges(ctx context.Context, edges []Edge) (BatchResult, error) {
	var result BatchResult
	for _, e := range edges {
		if err := e.Validate(); err != nil {
			result.Rejected = append(result.Rejected, RejectedEdge{Edge: e, Reason: err.Error()})
			continue
		}
		if err := s.writeEdge(ctx, e); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Rejected = append(result.Rejected, RejectedEdge{Edge: e, Reason: err.Error()})
			continue
		}
		result.Written++
	}
	return result, nil
}

// writeEdge performs the merge-on-write inside one transaction.
func (s *Store) writeEdge(ctx context.Context, e Edge) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	pk := pairKey(e.From, e.To)

	var edgeID int64
	var existing float64
	err = tx.QueryRowContext(ctx,
		`SELECT id, weight FROM edges WHERE pair_key = ?`, pk,
	).Scan(&edgeID, &existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			`INSERT INTO edges (pair_key, from_artist, to_artist, from_key, to_key, weight, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			pk, strings.TrimSpace(e.From), strings.TrimSpace(e.To),
			normalizeKey(e.From), normalizeKey(e.To), e.Weight, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert edge: %w", err)
		}
		edgeID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get edge id: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to query edge: %w", err)
	default:
		weight := existing
		if e.Weight > weight {
			weight = e.Weight
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE edges SET weight = ?, updated_at = ? WHERE id = ?`,
			weight, now, edgeID,
		); err != nil {
			return fmt.Errorf("failed to update edge: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO edge_sources (id, edge_id, source_type, source_name, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), edgeID, e.SourceType, e.SourceName, now,
	); err != nil {
		return fmt.Errorf("failed to insert edge source: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit edge: %w", err)
	}

	s.logger.Debug("edge cached",
		zap.String("from", e.From),
		zap.String("to", e.To),
		zap.Float64("weight", e.Weight))
	return nil
}

// LookupEdges returns every cached edge touching the artist with weight at
// or above minWeight, sorted by weight descending. The match is undirected:
// edges where the artist is the target are returned alongside those where
// it is the source.
func (s *Store) LookupEdges(ctx context.Context, artist string, minWeight float64) ([]Edge, error) {
	key := normalizeKey(artist)
	if key == "" {
		return nil, ErrEmptyArtist
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, from_artist, to_artist, weight, updated_at
		 FROM edges
		 WHERE (from_key = ? OR to_key = ?) AND weight >= ?
		 ORDER BY weight DESC, pair_key ASC`,
		key, key, minWeight,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	var edges []Edge
	var ids []int64
	for rows.Next() {
		var id int64
		var e Edge
		var updatedAt string
		if err := rows.Scan(&id, &e.From, &e.To, &e.Weight, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.UpdatedAt = parseTime(updatedAt)
		edges = append(edges, e)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate edges: %w", err)
	}

	for i, id := range ids {
		sources, err := s.loadSources(ctx, id)
		if err != nil {
			return nil, err
		}
		edges[i].Sources = sources
		if n := len(sources); n > 0 {
			edges[i].SourceType = sources[n-1].Type
			edges[i].SourceName = sources[n-1].Name
		}
	}
	return edges, nil
}

// loadSources returns an edge's provenance records, oldest first.
func (s *Store) loadSources(ctx context.Context, edgeID int64) ([]Source, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT source_type, source_name, recorded_at
		 FROM edge_sources
		 WHERE edge_id = ?
		 ORDER BY recorded_at ASC, id ASC`,
		edgeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query edge sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		var recordedAt string
		if err := rows.Scan(&src.Type, &src.Name, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan edge source: %w", err)
		}
		src.RecordedAt = parseTime(recordedAt)
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate edge sources: %w", err)
	}
	return sources, nil
}

// Stats reports the number of cached edges and provenance records.
func (s *Store) Stats(ctx context.Context) (edges, sources int, err error) {
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM edges`).Scan(&edges); err != nil {
		return 0, 0, fmt.Errorf("failed to count edges: %w", err)
	}
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM edge_sources`).Scan(&sources); err != nil {
		return 0, 0, fmt.Errorf("failed to count edge sources: %w", err)
	}
	return edges, sources, nil
}

// expandPath resolves the configured database path, expanding a leading "~"
// and defaulting to ~/.config/crate/influence.db.
func expandPath(path string) (string, error) {
	if path == "" {
		path = "~/.config/crate/influence.db"
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
