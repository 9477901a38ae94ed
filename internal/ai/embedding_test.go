package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/ticket-intake/pkg/util"
)

func TestEmbedReturnsVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding": [0.1, 0.2, 0.3]}`))
	}))
	defer server.Close()

	client := NewEmbeddingClient(server.URL, time.Second, nil)
	vector, err := client.Embed(context.Background(), "reset password")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vector)
}

func TestEmbedMissingFieldIsDependencyFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": "ok"}`))
	}))
	defer server.Close()

	client := NewEmbeddingClient(server.URL, time.Second, nil)
	_, err := client.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, apperrors.IsDependencyFailure(err))
}

func TestEmbedServerErrorIsDependencyFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewEmbeddingClient(server.URL, time.Second, nil)
	_, err := client.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, apperrors.IsDependencyFailure(err))
}

func TestEmbedUnreachableIsDependencyFailure(t *testing.T) {
	client := NewEmbeddingClient("http://127.0.0.1:1/get-embedding", 100*time.Millisecond, nil)
	_, err := client.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, apperrors.IsDependencyFailure(err))
}

func TestCachedEmbedderWithoutRedisDelegates(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"embedding": [1, 0]}`))
	}))
	defer server.Close()

	embedder := NewCachedEmbedder(NewEmbeddingClient(server.URL, time.Second, nil), nil, time.Hour, nil)
	for i := 0; i < 3; i++ {
		vector, err := embedder.Embed(context.Background(), "same text")
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 0}, vector)
	}
	// No cache configured, so every call goes to the service.
	assert.Equal(t, 3, calls)
}
