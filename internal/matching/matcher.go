package matching

import (
	"errors"

	"github.com/spec-kit/ticket-intake/internal/domain"
)

// MatchType classifies a best-match score into a confidence tier.
type MatchType string

const (
	MatchPerfect MatchType = "PERFECT_MATCH"
	MatchPartial MatchType = "PARTIAL_MATCH"
	MatchNone    MatchType = "NO_MATCH"
)

// Tier thresholds. These values are a fixed policy shared with downstream
// automation; changing them breaks compatibility.
const (
	perfectThreshold = 0.90
	partialThreshold = 0.60
)

// ErrEmptyQueryEmbedding signals that the query vector was missing, which
// means embedding generation failed upstream.
var ErrEmptyQueryEmbedding = errors.New("query embedding is empty")

// Result is the outcome of a best-match scan. Best is set whenever at least
// one comparable candidate exists, even below the NO_MATCH threshold; callers
// decide what to do with it based on MatchType.
type Result struct {
	MatchType MatchType
	Score     float64
	Best      *domain.KnowledgeBaseEntry
}

// FindBestMatch linearly scans candidates for the highest cosine similarity
// against the query embedding. Candidates whose embedding length differs from
// the query's are skipped. Ties keep the first candidate encountered. The
// reported score is clamped to be non-negative.
func FindBestMatch(query []float64, candidates []domain.KnowledgeBaseEntry) (Result, error) {
	if len(query) == 0 {
		return Result{}, ErrEmptyQueryEmbedding
	}

	var best *domain.KnowledgeBaseEntry
	maxScore := -1.0

	for i := range candidates {
		if len(candidates[i].Embedding) != len(query) {
			continue
		}
		score := CosineSimilarity(query, candidates[i].Embedding)
		if score > maxScore {
			maxScore = score
			best = &candidates[i]
		}
	}

	result := Result{
		MatchType: MatchTypeForScore(maxScore),
		Best:      best,
	}
	if maxScore > 0 {
		result.Score = maxScore
	}
	return result, nil
}

// MatchTypeForScore applies the tier thresholds to a raw similarity score.
func MatchTypeForScore(score float64) MatchType {
	switch {
	case score >= perfectThreshold:
		return MatchPerfect
	case score >= partialThreshold:
		return MatchPartial
	default:
		return MatchNone
	}
}
