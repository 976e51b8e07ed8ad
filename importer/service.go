package importer

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"

	"github.com/arborhealth/casesync/docembed"
)

// Service handles per-ticket webhook events: a synchronous case upsert
// followed by asynchronous attachment processing. The worker pool has
// exactly one worker, so attachment batches from successive events run
// strictly one after another and never fan out against the external API.
type Service struct {
	importer *Importer
	pipeline *docembed.Pipeline
	pool     *ants.Pool
	logger   *slog.Logger
}

// NewService creates a webhook service.
func NewService(importer *Importer, pipeline *docembed.Pipeline, logger *slog.Logger) (*Service, error) {
	if importer == nil {
		return nil, ErrImporterRequired
	}
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	return &Service{
		importer: importer,
		pipeline: pipeline,
		pool:     pool,
		logger:   logger.With("component", "webhook"),
	}, nil
}

// HandleTicketEvent syncs the ticket's case and, when the upsert succeeded
// and withAttachments is set, submits its attachments for background
// processing. The returned result reflects the synchronous upsert only;
// attachment errors are logged by the pipeline.
func (s *Service) HandleTicketEvent(ctx context.Context, ticketID int64, withAttachments bool) *SyncResult {
	result := s.importer.SyncTicket(ctx, ticketID)
	if !result.OK {
		s.logger.Warn("ticket event sync failed", "ticketId", ticketID, "reason", result.Reason)
		return result
	}

	if withAttachments {
		caseID, workerID := result.CaseId, result.WorkerId
		err := s.pool.Submit(func() {
			if _, err := s.pipeline.ProcessTicketAttachments(context.Background(), caseID, workerID, ticketID); err != nil {
				s.logger.Error("attachment processing failed", "ticketId", ticketID, "error", err)
			}
		})
		if err != nil {
			s.logger.Error("failed to queue attachment processing", "ticketId", ticketID, "error", err)
		}
	}

	return result
}

// Release shuts down the worker pool. Queued attachment work is abandoned.
func (s *Service) Release() {
	s.pool.Release()
}
