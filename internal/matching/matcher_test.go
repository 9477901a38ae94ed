package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-intake/internal/domain"
)

func entry(id string, embedding []float64) domain.KnowledgeBaseEntry {
	return domain.KnowledgeBaseEntry{ID: id, Topic: "topic-" + id, Content: "content-" + id, Embedding: embedding}
}

func TestMatchTypeThresholdBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  MatchType
	}{
		{0.90, MatchPerfect},
		{0.899999, MatchPartial},
		{0.60, MatchPartial},
		{0.599999, MatchNone},
		{1.0, MatchPerfect},
		{0, MatchNone},
		{-0.4, MatchNone},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MatchTypeForScore(tc.score), "score %v", tc.score)
	}
}

func TestFindBestMatchEmptyQuery(t *testing.T) {
	_, err := FindBestMatch(nil, []domain.KnowledgeBaseEntry{entry("a", []float64{1, 0})})
	require.ErrorIs(t, err, ErrEmptyQueryEmbedding)
}

func TestFindBestMatchNoCandidates(t *testing.T) {
	result, err := FindBestMatch([]float64{1, 0}, nil)
	require.NoError(t, err)
	assert.Equal(t, MatchNone, result.MatchType)
	assert.Equal(t, 0.0, result.Score)
	assert.Nil(t, result.Best)
}

func TestFindBestMatchPicksHighestScore(t *testing.T) {
	query := []float64{1, 0}
	candidates := []domain.KnowledgeBaseEntry{
		entry("orthogonal", []float64{0, 1}),
		entry("aligned", []float64{2, 0}),
		entry("diagonal", []float64{1, 1}),
	}
	result, err := FindBestMatch(query, candidates)
	require.NoError(t, err)
	require.NotNil(t, result.Best)
	assert.Equal(t, "aligned", result.Best.ID)
	assert.Equal(t, MatchPerfect, result.MatchType)
	assert.InDelta(t, 1.0, result.Score, 1e-9)
}

func TestFindBestMatchDeterministic(t *testing.T) {
	query := []float64{0.2, 0.8, 0.1}
	candidates := []domain.KnowledgeBaseEntry{
		entry("a", []float64{0.1, 0.9, 0.2}),
		entry("b", []float64{0.3, 0.7, 0.05}),
		entry("c", []float64{0.25, 0.75, 0.12}),
	}
	first, err := FindBestMatch(query, candidates)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := FindBestMatch(query, candidates)
		require.NoError(t, err)
		assert.Equal(t, first.Best.ID, again.Best.ID)
		assert.Equal(t, first.Score, again.Score)
		assert.Equal(t, first.MatchType, again.MatchType)
	}
}

func TestFindBestMatchTieKeepsFirst(t *testing.T) {
	query := []float64{1, 0}
	candidates := []domain.KnowledgeBaseEntry{
		entry("first", []float64{3, 0}),
		entry("second", []float64{5, 0}),
	}
	result, err := FindBestMatch(query, candidates)
	require.NoError(t, err)
	assert.Equal(t, "first", result.Best.ID)
}

func TestFindBestMatchSkipsMismatchedDimensions(t *testing.T) {
	query := []float64{1, 0}
	candidates := []domain.KnowledgeBaseEntry{
		// Would be a perfect match if it were comparable.
		entry("wrong-dims", []float64{1, 0, 0}),
		entry("weak", []float64{1, 1}),
	}
	result, err := FindBestMatch(query, candidates)
	require.NoError(t, err)
	require.NotNil(t, result.Best)
	assert.Equal(t, "weak", result.Best.ID)
	assert.Equal(t, MatchPartial, result.MatchType)
}

func TestFindBestMatchAllMismatchedDimensions(t *testing.T) {
	query := []float64{1, 0}
	candidates := []domain.KnowledgeBaseEntry{
		entry("a", []float64{1}),
		entry("b", []float64{1, 0, 0}),
	}
	result, err := FindBestMatch(query, candidates)
	require.NoError(t, err)
	assert.Equal(t, MatchNone, result.MatchType)
	assert.Equal(t, 0.0, result.Score)
	assert.Nil(t, result.Best)
}

func TestFindBestMatchClampsNegativeScore(t *testing.T) {
	query := []float64{1, 0}
	candidates := []domain.KnowledgeBaseEntry{
		entry("opposed", []float64{-1, 0}),
	}
	result, err := FindBestMatch(query, candidates)
	require.NoError(t, err)
	assert.Equal(t, MatchNone, result.MatchType)
	assert.Equal(t, 0.0, result.Score)
	require.NotNil(t, result.Best)
	assert.Equal(t, "opposed", result.Best.ID)
}
