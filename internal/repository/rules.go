package repository

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/cloo-solutions/deckray/internal/domain"
)

// dbtx captures the pgx operations repositories need, satisfied by both
// *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var collectionNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// RulesRepository persists the rule corpus as vector records in a named
// Postgres table with a pgvector embedding column.
type RulesRepository struct {
	db         dbtx
	collection string
}

func NewRulesRepository(pool *pgxpool.Pool, collection string) (*RulesRepository, error) {
	if !collectionNamePattern.MatchString(collection) {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}
	return &RulesRepository{db: pool, collection: collection}, nil
}

// EnsureCollection creates the vector extension and the collection table if
// they do not exist. Safe to call multiple times.
func (r *RulesRepository) EnsureCollection(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	stmt := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			embedding VECTOR(%d) NOT NULL
		)`,
		pgx.Identifier{r.collection}.Sanitize(),
		domain.EmbeddingDimensions,
	)
	if _, err := r.db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create collection %s: %w", r.collection, err)
	}
	return nil
}

// Upsert stores the given vector records. Records with an explicit ID
// replace any existing record with that ID; records without one get a
// store-assigned identity.
func (r *RulesRepository) Upsert(ctx context.Context, records []*domain.VectorRecord) error {
	table := pgx.Identifier{r.collection}.Sanitize()

	for _, rec := range records {
		if err := domain.ValidateVectorRecord(rec); err != nil {
			return err
		}

		vec := pgvector.NewVector(rec.Vector)
		if rec.ID != nil {
			_, err := r.db.Exec(ctx,
				fmt.Sprintf(`INSERT INTO %s (id, content, embedding) VALUES ($1, $2, $3)
					ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content, embedding = EXCLUDED.embedding`, table),
				*rec.ID, rec.Payload, vec,
			)
			if err != nil {
				return fmt.Errorf("upsert record %d: %w", *rec.ID, err)
			}
			continue
		}

		_, err := r.db.Exec(ctx,
			fmt.Sprintf(`INSERT INTO %s (content, embedding) VALUES ($1, $2)`, table),
			rec.Payload, vec,
		)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	return nil
}

// Search returns up to limit passages nearest to the query vector, ordered
// by descending cosine similarity.
func (r *RulesRepository) Search(ctx context.Context, vector []float32, limit int) ([]*domain.RetrievedPassage, error) {
	table := pgx.Identifier{r.collection}.Sanitize()

	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT content, 1 - (embedding <=> $1) AS score
			FROM %s ORDER BY embedding <=> $1 LIMIT $2`, table),
		pgvector.NewVector(vector), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search collection %s: %w", r.collection, err)
	}
	defer rows.Close()

	passages := make([]*domain.RetrievedPassage, 0, limit)
	for rows.Next() {
		p := &domain.RetrievedPassage{}
		if err := rows.Scan(&p.Text, &p.Score); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		passages = append(passages, p)
	}
	return passages, rows.Err()
}

// Count returns the number of stored records.
func (r *RulesRepository) Count(ctx context.Context) (int64, error) {
	table := pgx.Identifier{r.collection}.Sanitize()

	var count int64
	err := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count collection %s: %w", r.collection, err)
	}
	return count, nil
}
