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


package casesync

import (
	"io"
	"log/slog"

	"github.com/arborhealth/casesync/ai"
	"github.com/arborhealth/casesync/ai/openai"
	"github.com/arborhealth/casesync/backfill"
	"github.com/arborhealth/casesync/docembed"
	"github.com/arborhealth/casesync/docproc"
	"github.com/arborhealth/casesync/helpdesk"
	"github.com/arborhealth/casesync/importer"
	"github.com/arborhealth/casesync/reconcile"
	"github.com/arborhealth/casesync/search"
	"github.com/arborhealth/casesync/storage"
	"github.com/arborhealth/casesync/storage/badger"
)

// System wires the storage backend, the helpdesk client, the embedding
// client and the document processor into the sync orchestrators. It is the
// single entry point the CLI builds everything from.
type System struct {
	backend        *badger.Backend
	orgRepo        storage.OrganizationRepository
	caseRepo       storage.CaseRepository
	docRepo        storage.DocumentRepository
	source         helpdesk.Source
	helpdeskConfig *helpdesk.Config
	embedder       ai.Embedder
	processor      docproc.Processor
	reconciler     *reconcile.Reconciler
	logger         *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	helpdeskConfig *helpdesk.Config
	aiConfig       *ai.Config
	docprocURL     string
	logger         *slog.Logger
}

// WithHelpdeskConfig sets the helpdesk connection configuration.
func WithHelpdeskConfig(config *helpdesk.Config) SystemOption {
	return func(o *systemOptions) {
		if config != nil {
			o.helpdeskConfig = config
		}
	}
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) SystemOption {
	return func(o *systemOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithDocprocURL sets the document processing service endpoint. Empty means
// not configured; attachment processing will be skipped.
func WithDocprocURL(url string) SystemOption {
	return func(o *systemOptions) {
		o.docprocURL = url
	}
}

// WithSystemLogger sets the logger used by all components.
func WithSystemLogger(logger *slog.Logger) SystemOption {
	return func(o *systemOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewSystem opens the storage backend at filePath and wires every component.
func NewSystem(filePath string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		helpdeskConfig: helpdesk.DefaultConfig(),
		aiConfig:       ai.DefaultConfig(),
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	orgRepo, err := badger.NewOrganizationRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	caseRepo, err := badger.NewCaseRepository(backend)
	if err != nil {
		orgRepo.Close()
		backend.Close()
		return nil, err
	}

	docRepo := badger.NewDocumentRepository(backend)

	embedder, err := openai.NewEmbedder(options.aiConfig)
	if err != nil {
		docRepo.Close()
		caseRepo.Close()
		orgRepo.Close()
		backend.Close()
		return nil, err
	}

	reconciler, err := reconcile.NewReconciler(orgRepo, caseRepo, options.logger)
	if err != nil {
		docRepo.Close()
		caseRepo.Close()
		orgRepo.Close()
		backend.Close()
		return nil, err
	}

	return &System{
		backend:        backend,
		orgRepo:        orgRepo,
		caseRepo:       caseRepo,
		docRepo:        docRepo,
		source:         helpdesk.NewClient(options.helpdeskConfig),
		helpdeskConfig: options.helpdeskConfig,
		embedder:       embedder,
		processor:      docproc.NewClient(options.docprocURL, docRepo),
		reconciler:     reconciler,
		logger:         options.logger,
	}, nil
}

// Close releases repositories and the storage backend.
func (s *System) Close() error {
	if err := s.docRepo.Close(); err != nil {
		s.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := s.caseRepo.Close(); err != nil {
		s.logger.Error("error closing case repository", "err", err)
		return err
	}
	if err := s.orgRepo.Close(); err != nil {
		s.logger.Error("error closing organization repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// OrganizationRepository exposes the organization repository.
func (s *System) OrganizationRepository() storage.OrganizationRepository {
	return s.orgRepo
}

// CaseRepository exposes the case repository.
func (s *System) CaseRepository() storage.CaseRepository {
	return s.caseRepo
}

// DocumentRepository exposes the document repository.
func (s *System) DocumentRepository() storage.DocumentRepository {
	return s.docRepo
}

// HelpdeskStatus reports the configured helpdesk connection without a
// network call.
func (s *System) HelpdeskStatus() helpdesk.ConnectionStatus {
	return s.helpdeskConfig.ConnectionStatus()
}

// NewImporter builds the import orchestrator.
func (s *System) NewImporter() (*importer.Importer, error) {
	return importer.NewImporter(s.source, s.reconciler, s.logger)
}

// NewPipeline builds the document embedding pipeline.
func (s *System) NewPipeline(opts ...docembed.Option) (*docembed.Pipeline, error) {
	opts = append([]docembed.Option{docembed.WithLogger(s.logger)}, opts...)
	return docembed.NewPipeline(s.source, s.processor, s.embedder, s.docRepo, opts...)
}

// NewWebhookService builds the per-ticket event service.
func (s *System) NewWebhookService() (*importer.Service, error) {
	imp, err := s.NewImporter()
	if err != nil {
		return nil, err
	}
	pipeline, err := s.NewPipeline()
	if err != nil {
		return nil, err
	}
	return importer.NewService(imp, pipeline, s.logger)
}

// NewBackfiller builds the batch attachment processor.
// progress: where to write progress output (typically os.Stderr)
func (s *System) NewBackfiller(config *backfill.Config, progress io.Writer, opts ...docembed.Option) (*backfill.Backfiller, error) {
	pipeline, err := s.NewPipeline(opts...)
	if err != nil {
		return nil, err
	}
	return backfill.NewBackfiller(s.caseRepo, pipeline, config, progress, s.logger)
}

// NewSearcher builds the chunk searcher.
func (s *System) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	opts = append([]search.Option{search.WithLogger(s.logger)}, opts...)
	return search.NewSearcher(s.docRepo, s.caseRepo, s.embedder, opts...)
}
