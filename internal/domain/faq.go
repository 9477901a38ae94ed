package domain

import "time"

// KnowledgeBaseEntry is a stored (problem, solution) pair with a precomputed
// embedding, used as a candidate answer during matching.
type KnowledgeBaseEntry struct {
	ID          string
	Topic       string
	Content     string
	Category    string
	Embedding   []float64
	SuccessRate float64
	LastUpdated time.Time
}
