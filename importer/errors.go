package importer

import "errors"

var (
	// ErrSourceRequired is returned when a helpdesk source is not provided.
	ErrSourceRequired = errors.New("helpdesk source required")

	// ErrReconcilerRequired is returned when a reconciler is not provided.
	ErrReconcilerRequired = errors.New("reconciler required")

	// ErrImporterRequired is returned when an importer is not provided.
	ErrImporterRequired = errors.New("importer required")

	// ErrPipelineRequired is returned when a document embedding pipeline is not provided.
	ErrPipelineRequired = errors.New("document embedding pipeline required")
)
