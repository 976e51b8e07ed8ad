// Package mock provides a test double for the ai.Embedder interface.
//
// MockEmbedder returns deterministic vectors derived from a text hash, so
// tests run without an embedding service and identical text always embeds
// identically. Behavior can be overridden via function fields:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("embedding service down")
//	}
package mock
