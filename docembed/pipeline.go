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


package docembed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arborhealth/casesync/ai"
	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/docproc"
	"github.com/arborhealth/casesync/helpdesk"
	"github.com/arborhealth/casesync/storage"
)

const (
	// DefaultAttachmentDelay paces attachment downloads against the external
	// API. The backfill loop adds its own longer per-ticket delay on top.
	DefaultAttachmentDelay = 500 * time.Millisecond

	// DefaultMaxAttempts bounds embedding retries per chunk.
	DefaultMaxAttempts = 3

	// DefaultRetryDelay is the base backoff delay for embedding retries.
	DefaultRetryDelay = time.Second
)

// Pipeline downloads qualifying medical attachments of a ticket, hands them
// to document processing, and embeds the extracted text chunk by chunk.
// Processing is strictly sequential: one attachment, then one chunk, at a
// time, with a fixed delay between attachments.
type Pipeline struct {
	source          helpdesk.Source
	processor       docproc.Processor
	embedder        ai.Embedder
	docRepository   storage.DocumentRepository
	maxChunkSize    int
	attachmentDelay time.Duration
	maxAttempts     int
	retryDelay      time.Duration
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMaxChunkSize sets the maximum chunk character length.
func WithMaxChunkSize(size int) Option {
	return func(p *Pipeline) {
		if size > 0 {
			p.maxChunkSize = size
		}
	}
}

// WithAttachmentDelay sets the fixed delay between attachments.
func WithAttachmentDelay(d time.Duration) Option {
	return func(p *Pipeline) {
		if d >= 0 {
			p.attachmentDelay = d
		}
	}
}

// WithRetry sets the embedding retry policy.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) {
		if maxAttempts > 0 {
			p.maxAttempts = maxAttempts
		}
		if baseDelay > 0 {
			p.retryDelay = baseDelay
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a document embedding pipeline.
func NewPipeline(
	source helpdesk.Source,
	processor docproc.Processor,
	embedder ai.Embedder,
	docRepository storage.DocumentRepository,
	opts ...Option,
) (*Pipeline, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if processor == nil {
		return nil, ErrProcessorRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if docRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}

	p := &Pipeline{
		source:          source,
		processor:       processor,
		embedder:        embedder,
		docRepository:   docRepository,
		maxChunkSize:    DefaultMaxChunkSize,
		attachmentDelay: DefaultAttachmentDelay,
		maxAttempts:     DefaultMaxAttempts,
		retryDelay:      DefaultRetryDelay,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "docembed")

	return p, nil
}

// Report summarizes attachment processing for one ticket. Errors holds
// per-attachment and per-chunk failures; their attachments were skipped but
// siblings continued.
type Report struct {
	Attachments int
	Qualified   int
	Processed   int
	Chunks      int
	Errors      []string
}

// ProcessTicketAttachments runs the embedding pipeline over every qualifying
// attachment of one external ticket. Only an unavailable source fails the
// call; per-attachment errors are accumulated in the report.
func (p *Pipeline) ProcessTicketAttachments(ctx context.Context, caseID, workerID core.ID, externalTicketID int64) (*Report, error) {
	if !p.source.IsAvailable() {
		return nil, helpdesk.ErrNotConfigured
	}

	attachments, err := p.source.GetTicketAttachments(ctx, externalTicketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments for ticket %d: %w", externalTicketID, err)
	}

	report := &Report{Attachments: len(attachments)}
	for i, attachment := range attachments {
		if i > 0 && p.attachmentDelay > 0 {
			// Fixed pause between downloads, the sole rate limit
			time.Sleep(p.attachmentDelay)
		}

		if !IsMedicalAttachment(attachment.Name, attachment.ContentType) {
			p.logger.Debug("attachment skipped by classifier",
				"ticketId", externalTicketID,
				"filename", attachment.Name,
				"contentType", attachment.ContentType)
			continue
		}
		report.Qualified++

		chunks, err := p.processAttachment(ctx, caseID, workerID, attachment)
		if err != nil {
			p.logger.Warn("attachment processing failed",
				"ticketId", externalTicketID,
				"filename", attachment.Name,
				"error", err)
			report.Errors = append(report.Errors, fmt.Sprintf("attachment %s: %v", attachment.Name, err))
			continue
		}

		report.Processed++
		report.Chunks += chunks
	}

	return report, nil
}

// processAttachment downloads one attachment, runs OCR, and embeds the
// extracted text. Returns the number of chunks stored.
func (p *Pipeline) processAttachment(ctx context.Context, caseID, workerID core.ID, attachment *helpdesk.Attachment) (int, error) {
	data, err := p.source.DownloadAttachment(ctx, attachment.URL)
	if err != nil {
		return 0, fmt.Errorf("download failed: %w", err)
	}

	result, err := p.processor.ProcessAttachment(ctx, &docproc.Request{
		CaseId:               caseID,
		WorkerId:             workerID,
		ExternalAttachmentId: attachment.Id,
		Filename:             attachment.Name,
		ContentType:          attachment.ContentType,
		Size:                 attachment.Size,
		Data:                 data,
	})
	if err != nil {
		return 0, fmt.Errorf("document processing failed: %w", err)
	}
	if !result.Success {
		return 0, fmt.Errorf("document processing rejected: %s", result.Message)
	}

	doc, err := p.docRepository.GetDocument(ctx, result.DocumentId)
	if err != nil {
		return 0, fmt.Errorf("failed to read processed document: %w", err)
	}

	// Some documents fail OCR; skipping them must not block siblings.
	if doc.ExtractedText == "" {
		p.logger.Info("no extracted text, skipping embedding",
			"documentId", doc.Id,
			"filename", attachment.Name)
		return 0, nil
	}

	return p.embedDocument(ctx, doc)
}

// embedDocument chunks the extracted text and stores one embedding chunk per
// piece. Existing chunks are cleared first so a shorter rerun cannot leave
// stale trailing chunks. A failed chunk is logged and skipped.
func (p *Pipeline) embedDocument(ctx context.Context, doc *core.MedicalDocument) (int, error) {
	if err := p.docRepository.DeleteChunks(ctx, doc.Id); err != nil {
		return 0, fmt.Errorf("failed to clear existing chunks: %w", err)
	}

	pieces := ChunkText(doc.ExtractedText, p.maxChunkSize)
	stored := 0
	for i, piece := range pieces {
		var vector []float32
		err := RetryWithBackoff(ctx, func() error {
			var embedErr error
			vector, embedErr = p.embedder.EmbedText(ctx, piece)
			return embedErr
		}, p.maxAttempts, p.retryDelay)
		if err != nil {
			p.logger.Warn("chunk embedding failed, skipping chunk",
				"documentId", doc.Id,
				"chunkIndex", i,
				"error", err)
			continue
		}

		_, err = p.docRepository.PutEmbeddingChunk(ctx, &core.EmbeddingChunk{
			DocumentId: doc.Id,
			CaseId:     doc.CaseId,
			Index:      i,
			Text:       piece,
			Vector:     NormalizeVector(vector),
			Filename:   doc.Filename,
			Kind:       doc.Kind,
		})
		if err != nil {
			p.logger.Warn("failed to store chunk",
				"documentId", doc.Id,
				"chunkIndex", i,
				"error", err)
			continue
		}
		stored++
	}

	p.logger.Info("document embedded",
		"documentId", doc.Id,
		"filename", doc.Filename,
		"chunks", stored)
	return stored, nil
}
