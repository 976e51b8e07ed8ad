// Copyright 2025 Arbor Health Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/arborhealth/casesync/ai"
	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/docembed"
	"github.com/arborhealth/casesync/storage"
)

const (
	// DefaultMinSimilarity filters out weakly related chunks.
	DefaultMinSimilarity = 0.3

	// verbatimBoost is added to the score of chunks containing every
	// significant query word.
	verbatimBoost = 0.15
)

// Result is one search hit: a chunk, its owning case, and the final score.
type Result struct {
	Chunk *core.EmbeddingChunk
	Case  *core.Case // nil when the chunk's case no longer resolves
	Score float32
}

// Searcher provides semantic search over embedded document chunks.
type Searcher struct {
	docRepository  storage.DocumentRepository
	caseRepository storage.CaseRepository
	embedder       ai.Embedder
	minSimilarity  float32
	logger         *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithMinSimilarity sets the similarity floor for candidate chunks.
func WithMinSimilarity(min float32) Option {
	return func(s *Searcher) {
		s.minSimilarity = min
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	docRepository storage.DocumentRepository,
	caseRepository storage.CaseRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if docRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if caseRepository == nil {
		return nil, ErrCaseRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		docRepository:  docRepository,
		caseRepository: caseRepository,
		embedder:       embedder,
		minSimilarity:  DefaultMinSimilarity,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "search")

	return s, nil
}

// Search embeds the query and returns the best-matching chunks with their
// cases, highest score first.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = 10
	}

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	vector = docembed.NormalizeVector(vector)

	// Over-fetch so the verbatim boost can reorder before the cut
	matches, err := s.docRepository.FindSimilarChunks(ctx, vector, s.minSimilarity, limit*3)
	if err != nil {
		return nil, fmt.Errorf("similarity scan failed: %w", err)
	}

	results := make([]*Result, 0, len(matches))
	for _, match := range matches {
		score := match.Score
		if containsAllQueryWords(match.Chunk.Text, query) {
			score += verbatimBoost
		}

		result := &Result{Chunk: match.Chunk, Score: score}
		if match.Chunk.CaseId != 0 {
			c, err := s.caseRepository.GetCase(ctx, match.Chunk.CaseId)
			if err == nil {
				result.Case = c
			}
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}

	s.logger.Debug("search finished", "query", query, "results", len(results))
	return results, nil
}
