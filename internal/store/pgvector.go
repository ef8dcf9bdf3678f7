package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
)

// PGVectorStore keeps chunk vectors in Postgres with the pgvector
// extension, one table per collection.
type PGVectorStore struct {
	pool *pgxpool.Pool
}

func NewPGVectorStore(ctx context.Context, dsn string) (*PGVectorStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &PGVectorStore{pool: pool}, nil
}

func (s *PGVectorStore) EnsureCollection(ctx context.Context, name string, dims uint) error {
	table := pgx.Identifier{name}.Sanitize()

	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return pgError(err)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id uuid PRIMARY KEY,
		doc_id text NOT NULL,
		payload jsonb,
		embedding vector(%d)
	)`, table, dims)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return pgError(err)
	}

	idx := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (doc_id)",
		pgx.Identifier{name + "_doc_idx"}.Sanitize(), table)
	if _, err := s.pool.Exec(ctx, idx); err != nil {
		return pgError(err)
	}
	return nil
}

func (s *PGVectorStore) Upsert(ctx context.Context, collection string, points []*Point) error {
	table := pgx.Identifier{collection}.Sanitize()
	stmt := fmt.Sprintf(`INSERT INTO %s (id, doc_id, payload, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET doc_id = $2, payload = $3, embedding = $4`, table)

	batch := &pgx.Batch{}
	for _, point := range points {
		docID, _ := point.Payload["doc_id"].(string)
		payloadJSON, err := json.Marshal(point.Payload)
		if err != nil {
			return &Error{Kind: KindInvalid, Err: err}
		}
		batch.Queue(stmt, point.ID, docID, payloadJSON, pgvector.NewVector(point.Vector))
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range points {
		if _, err := br.Exec(); err != nil {
			return pgError(err)
		}
	}
	return nil
}

func (s *PGVectorStore) ListIDs(ctx context.Context, collection string, docID string) ([]string, error) {
	table := pgx.Identifier{collection}.Sanitize()

	rows, err := s.pool.Query(ctx,
		fmt.Sprintf("SELECT id::text FROM %s WHERE doc_id = $1", table), docID)
	if err != nil {
		return nil, pgError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, pgError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, pgError(err)
	}
	return ids, nil
}

func (s *PGVectorStore) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	table := pgx.Identifier{collection}.Sanitize()
	_, err := s.pool.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id::text = ANY($1)", table), ids)
	return pgError(err)
}

func (s *PGVectorStore) Close() error {
	s.pool.Close()
	return nil
}

func pgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		// connection-level failure
		return &Error{Kind: KindUnavailable, Err: err}
	}

	kind := KindInvalid
	for _, class := range []string{"08", "53", "57", "40"} {
		if strings.HasPrefix(pgErr.Code, class) {
			kind = KindUnavailable
			break
		}
	}
	return &Error{Kind: kind, Err: err}
}
