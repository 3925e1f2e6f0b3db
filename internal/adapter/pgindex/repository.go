// Package pgindex implements the vector index contract on PostgreSQL with
// the pgvector extension, for deployments that keep the corpus in-house.
package pgindex

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"legal-rag/internal/domain"
)

// Repository stores document chunks in the legal_chunks table.
type Repository struct {
	pool      *pgxpool.Pool
	dimension int
}

// NewRepository creates a pgvector-backed index. The dimension must match
// the embedding column definition.
func NewRepository(pool *pgxpool.Pool, dimension int) *Repository {
	return &Repository{pool: pool, dimension: dimension}
}

func (r *Repository) Search(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]domain.IndexMatch, error) {
	query := `
		SELECT id, content, source, category, 1 - (embedding <=> $1) AS score
		FROM legal_chunks
	`
	args := []interface{}{pgvector.NewVector(vector)}
	if category, ok := filter["category"]; ok && category != "" {
		query += ` WHERE category = $2`
		args = append(args, category)
	}
	query += fmt.Sprintf(` ORDER BY embedding <=> $1 LIMIT %d`, topK)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var matches []domain.IndexMatch
	for rows.Next() {
		var m domain.IndexMatch
		if err := rows.Scan(&m.ID, &m.Metadata.Text, &m.Metadata.Source, &m.Metadata.Category, &m.Score); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return matches, nil
}

func (r *Repository) Upsert(ctx context.Context, chunks []domain.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		batch.Queue(`
			INSERT INTO legal_chunks (id, content, source, category, embedding)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				content = EXCLUDED.content,
				source = EXCLUDED.source,
				category = EXCLUDED.category,
				embedding = EXCLUDED.embedding
		`, chunk.ID, chunk.Metadata.Text, chunk.Metadata.Source, chunk.Metadata.Category,
			pgvector.NewVector(chunk.Embedding))
	}

	results := r.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert chunk: %w", err)
		}
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM legal_chunks WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

func (r *Repository) Stats(ctx context.Context) (*domain.IndexStats, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM legal_chunks`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count chunks: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT DISTINCT category FROM legal_chunks WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var namespaces []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		namespaces = append(namespaces, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return &domain.IndexStats{
		TotalCount: total,
		Dimension:  r.dimension,
		Namespaces: namespaces,
	}, nil
}

var _ domain.VectorIndex = (*Repository)(nil)
