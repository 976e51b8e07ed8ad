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


package backfill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/docembed"
	"github.com/arborhealth/casesync/helpdesk"
	"github.com/arborhealth/casesync/storage"
)

// Config holds configuration for a backfill run.
type Config struct {
	// TicketDelay is the fixed pause between tickets. It is deliberately
	// longer than the pipeline's inter-attachment delay.
	TicketDelay time.Duration

	// ReportInterval is how often to report progress (number of tickets).
	ReportInterval int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		TicketDelay:    2 * time.Second,
		ReportInterval: 10,
	}
}

// Backfiller runs the document embedding pipeline over every case imported
// from the helpdesk, ticket by ticket. It is the batch driver for attachment
// processing; the webhook path is the real-time one.
type Backfiller struct {
	caseRepository storage.CaseRepository
	pipeline       *docembed.Pipeline
	config         *Config
	progress       io.Writer
	logger         *slog.Logger
}

// NewBackfiller creates a backfiller.
// progress: where to write progress output (typically os.Stderr)
func NewBackfiller(caseRepository storage.CaseRepository, pipeline *docembed.Pipeline, config *Config, progress io.Writer, logger *slog.Logger) (*Backfiller, error) {
	if caseRepository == nil {
		return nil, fmt.Errorf("case repository required")
	}
	if pipeline == nil {
		return nil, fmt.Errorf("document embedding pipeline required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Backfiller{
		caseRepository: caseRepository,
		pipeline:       pipeline,
		config:         config,
		progress:       progress,
		logger:         logger.With("component", "backfill"),
	}, nil
}

// Result summarizes a backfill run. Errors lists per-ticket and
// per-attachment failures; their tickets were skipped but the run continued.
type Result struct {
	Tickets     int
	Attachments int
	Qualified   int
	Processed   int
	Chunks      int
	Errors      []string
}

// Run processes the attachments of every case carrying an external ticket
// id, strictly one ticket at a time with a fixed delay in between. Only an
// unconfigured helpdesk aborts the run; per-ticket failures accumulate in
// the result.
func (b *Backfiller) Run(ctx context.Context) (*Result, error) {
	cases, err := b.caseRepository.GetCasesWithExternalIds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}

	result := &Result{Tickets: len(cases)}
	if len(cases) == 0 {
		fmt.Fprintf(b.progress, "No cases with helpdesk linkage found (0 tickets)\n")
		return result, nil
	}

	fmt.Fprintf(b.progress, "Starting attachment backfill for %d tickets\n", len(cases))
	tracker := NewProgressTracker(b.progress, len(cases), b.config.ReportInterval)
	tracker.Start()

	for i, c := range cases {
		if i > 0 && b.config.TicketDelay > 0 {
			time.Sleep(b.config.TicketDelay)
		}

		report, err := b.pipeline.ProcessTicketAttachments(ctx, c.Id, core.ID(c.RequesterId), c.ExternalTicketId)
		if err != nil {
			if errors.Is(err, helpdesk.ErrNotConfigured) {
				return nil, err
			}
			b.logger.Warn("ticket backfill failed",
				"caseId", c.Id,
				"externalTicketId", c.ExternalTicketId,
				"error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("ticket %d: %v", c.ExternalTicketId, err))
			tracker.Increment(1)
			continue
		}

		result.Attachments += report.Attachments
		result.Qualified += report.Qualified
		result.Processed += report.Processed
		result.Chunks += report.Chunks
		result.Errors = append(result.Errors, report.Errors...)
		tracker.Increment(1)
	}

	tracker.Finish()
	b.logger.Info("backfill finished",
		"tickets", result.Tickets,
		"processed", result.Processed,
		"chunks", result.Chunks,
		"errors", len(result.Errors),
		"elapsed", tracker.Elapsed())
	return result, nil
}
