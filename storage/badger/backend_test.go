package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborhealth/casesync/core"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackend_Close(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	// Double close should not panic
	assert.NoError(t, backend.Close())
}

func TestFindSimilarChunks_OrderingAndLimit(t *testing.T) {
	_, _, docRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	docID := core.ID(42)
	vectors := [][]float32{
		{1, 0, 0},
		{0.8, 0.6, 0},
		{0, 1, 0},
	}
	for i, vec := range vectors {
		_, err := docRepo.PutEmbeddingChunk(ctx, &core.EmbeddingChunk{
			DocumentId: docID,
			CaseId:     1,
			Index:      i,
			Text:       "chunk",
			Vector:     vec,
		})
		require.NoError(t, err)
	}

	matches, err := backend.FindSimilarChunks(ctx, []float32{1, 0, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].Chunk.Index)
	assert.Equal(t, 1, matches[1].Chunk.Index)
	assert.Greater(t, matches[0].Score, matches[1].Score)

	limited, err := backend.FindSimilarChunks(ctx, []float32{1, 0, 0}, 0.0, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
