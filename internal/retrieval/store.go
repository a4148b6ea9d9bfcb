// Package retrieval persists per-document chunk embeddings and serves
// top-k semantic lookups used to ground chat answers.
package retrieval

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/podscribe/podscribe/internal/chunker"
	"github.com/podscribe/podscribe/internal/embedding"
	"github.com/podscribe/podscribe/internal/logger"
)

// DefaultTopK is the number of chunks returned when a query asks for none.
const DefaultTopK = 3

// Result is one retrieval hit, scored 1/(1+d) from cosine distance d so
// a perfect match scores 1 and scores fall toward 0 with distance.
type Result struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Store keeps one durable embedding collection per file identifier.
// Collections never share chunk space: a query against one file id never
// sees chunks ingested under another.
type Store struct {
	db        *sql.DB
	embedder  embedding.Embedder
	chunkSize int
	overlap   float64
}

// Option configures a Store.
type Option func(*Store)

// WithChunkSize overrides the target chunk size in words.
func WithChunkSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// NewStore opens or creates the collection database at dbPath.
func NewStore(dbPath string, e embedding.Embedder, opts ...Option) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{
		db:        db,
		embedder:  e,
		chunkSize: chunker.DefaultChunkSize,
		overlap:   chunker.DefaultOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		file_id    TEXT PRIMARY KEY,
		model      TEXT NOT NULL,
		dims       INTEGER NOT NULL,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS chunks (
		file_id   TEXT NOT NULL REFERENCES collections(file_id),
		chunk_id  TEXT NOT NULL,
		seq       INTEGER NOT NULL,
		text      TEXT NOT NULL,
		embedding BLOB NOT NULL,
		PRIMARY KEY (file_id, chunk_id)
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_file_seq ON chunks(file_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Ingest splits text into overlapping chunks, embeds each, and stores the
// pairs under fileID. Ingestion is idempotent: if a non-empty collection
// already exists for fileID, its stored chunks are returned unchanged and
// nothing is re-embedded, even if text differs. Chunk ids are "chunk_<i>"
// in creation order and are never re-assigned.
func (s *Store) Ingest(ctx context.Context, fileID, text string) ([]string, error) {
	existing, err := s.storedChunks(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		logger.Debug("collection %s already populated (%d chunks)", fileID, len(existing))
		return existing, nil
	}

	chunks := chunker.Split(text, s.chunkSize, s.overlap)
	logger.Info("embedding %d chunks for %s", len(chunks), fileID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO collections (file_id, model, dims) VALUES (?, ?, ?)`,
		fileID, s.embedder.Model(), s.embedder.Dims())
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	for i, c := range chunks {
		vec, err := s.embedder.Embed(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO chunks (file_id, chunk_id, seq, text, embedding) VALUES (?, ?, ?, ?, ?)`,
			fileID, fmt.Sprintf("chunk_%d", i), i, c, encodeVector(vec))
		if err != nil {
			return nil, fmt.Errorf("insert chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// Query embeds queryText and returns up to topK stored chunks for fileID
// ordered by descending relevance. A missing or empty collection is not
// an error: it returns no results, meaning nothing is indexed yet.
func (s *Store) Query(ctx context.Context, fileID, queryText string, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, text, embedding FROM chunks WHERE file_id = ? ORDER BY seq`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type scored struct {
		seq   int
		text  string
		score float64
	}
	var stored []scored
	var vectors []embedding.Vector
	for rows.Next() {
		var seq int
		var text string
		var blob []byte
		if err := rows.Scan(&seq, &text, &blob); err != nil {
			return nil, err
		}
		stored = append(stored, scored{seq: seq, text: text})
		vectors = append(vectors, decodeVector(blob))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		logger.Debug("no collection for %s", fileID)
		return nil, nil
	}

	qv, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	for i := range stored {
		d := embedding.CosineDistance(qv, vectors[i])
		stored[i].score = 1 / (1 + d)
	}
	sort.Slice(stored, func(i, j int) bool {
		if stored[i].score != stored[j].score {
			return stored[i].score > stored[j].score
		}
		return stored[i].seq < stored[j].seq
	})

	if topK > len(stored) {
		topK = len(stored)
	}
	results := make([]Result, topK)
	for i := 0; i < topK; i++ {
		results[i] = Result{Text: stored[i].text, Score: stored[i].score}
	}
	return results, nil
}

// Chunks returns the stored chunk texts for fileID in creation order.
func (s *Store) Chunks(ctx context.Context, fileID string) ([]string, error) {
	return s.storedChunks(ctx, fileID)
}

// Delete removes a document's collection and all of its chunks.
func (s *Store) Delete(ctx context.Context, fileID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE file_id = ?`, fileID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE file_id = ?`, fileID); err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) storedChunks(ctx context.Context, fileID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text FROM chunks WHERE file_id = ? ORDER BY seq`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		chunks = append(chunks, text)
	}
	return chunks, rows.Err()
}

// encodeVector serializes a vector as little-endian float32s.
func encodeVector(v embedding.Vector) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) embedding.Vector {
	v := make(embedding.Vector, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
