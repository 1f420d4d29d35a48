package domain

import "fmt"

// EmbeddingDimensions is the fixed dimensionality of every vector the
// retrieval store accepts. Vectors are unit-normalized before storage and
// query so that cosine similarity is well-defined and stable across runs.
const EmbeddingDimensions = 384

// RetrievedPassage is one nearest-neighbor hit from the retrieval store.
// Higher score means more relevant.
type RetrievedPassage struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// VectorRecord is the unit of durable state the retrieval store manages.
// Identity is the ID when supplied, otherwise store-assigned.
type VectorRecord struct {
	ID      *int64
	Vector  []float32
	Payload string
}

// ValidateVectorRecord validates a VectorRecord instance
func ValidateVectorRecord(r *VectorRecord) error {
	if r == nil {
		return fmt.Errorf("vector record cannot be nil")
	}
	if len(r.Vector) != EmbeddingDimensions {
		return fmt.Errorf("vector must have %d dimensions, got %d", EmbeddingDimensions, len(r.Vector))
	}
	return nil
}
