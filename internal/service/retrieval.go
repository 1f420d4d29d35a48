package service

import (
	"context"
	"sync"

	"github.com/cloo-solutions/deckray/internal/domain"
)

// RulesRepository defines the repository interface for the vector collection
type RulesRepository interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, records []*domain.VectorRecord) error
	Search(ctx context.Context, vector []float32, limit int) ([]*domain.RetrievedPassage, error)
}

// Embedder is the capability the retrieval service needs from the
// embedding layer.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// RetrievalService provides semantic lookup over a named vector collection.
// Initialize must succeed before documents can be added or queried; it is
// idempotent and safe under concurrent first use.
type RetrievalService struct {
	repo     RulesRepository
	embedder Embedder

	mu          sync.Mutex
	initialized bool
}

// NewRetrievalService creates a new RetrievalService instance
func NewRetrievalService(repo RulesRepository, embedder Embedder) *RetrievalService {
	return &RetrievalService{repo: repo, embedder: embedder}
}

// Initialize creates the backing collection if it does not exist. Calling
// it again after success is a no-op.
func (s *RetrievalService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if s.repo == nil {
		return domain.ErrMissingDatabaseURL
	}

	if err := s.repo.EnsureCollection(ctx); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to create collection", err)
	}

	s.initialized = true
	return nil
}

func (s *RetrievalService) isInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// AddDocuments embeds each document and upserts the resulting vector
// records. When ids is nil the store assigns identity; otherwise ids must
// align one-to-one with documents.
func (s *RetrievalService) AddDocuments(ctx context.Context, docs []string, ids []int64) (int, error) {
	if !s.isInitialized() {
		return 0, domain.ErrStoreNotInitialized
	}
	if len(docs) == 0 {
		return 0, domain.ErrNoDocuments
	}
	if ids != nil && len(ids) != len(docs) {
		return 0, domain.ErrIDCountMismatch
	}

	records := make([]*domain.VectorRecord, 0, len(docs))
	for i, doc := range docs {
		vec, err := s.embedder.EmbedText(ctx, doc)
		if err != nil {
			return 0, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to embed document", err)
		}

		rec := &domain.VectorRecord{Vector: vec, Payload: doc}
		if ids != nil {
			id := ids[i]
			rec.ID = &id
		}
		records = append(records, rec)
	}

	if err := s.repo.Upsert(ctx, records); err != nil {
		return 0, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to store documents", err)
	}

	return len(records), nil
}

// Query returns up to topK passages most similar to the query text, ordered
// by descending score. An empty collection yields an empty list.
func (s *RetrievalService) Query(ctx context.Context, text string, topK int) ([]*domain.RetrievedPassage, error) {
	if !s.isInitialized() {
		return nil, domain.ErrStoreNotInitialized
	}
	if topK < 1 {
		return nil, domain.ErrInvalidTopK
	}

	vec, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to embed query", err)
	}

	passages, err := s.repo.Search(ctx, vec, topK)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "search failed", err)
	}
	return passages, nil
}
