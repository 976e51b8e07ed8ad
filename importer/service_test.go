package importer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/arborhealth/casesync/ai/mock"
	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/docembed"
	dpmock "github.com/arborhealth/casesync/docproc/mock"
	"github.com/arborhealth/casesync/helpdesk"
	hdmock "github.com/arborhealth/casesync/helpdesk/mock"
	"github.com/arborhealth/casesync/reconcile"
	"github.com/arborhealth/casesync/storage"
	"github.com/arborhealth/casesync/storage/badger"
)

func newServiceFixture(t *testing.T) (*Service, *hdmock.MockSource, storage.DocumentRepository) {
	t.Helper()
	orgRepo, caseRepo, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { docRepo.Close(); caseRepo.Close(); orgRepo.Close(); backend.Close() })

	reconciler, err := reconcile.NewReconciler(orgRepo, caseRepo, nil)
	require.NoError(t, err)

	source := hdmock.NewMockSource()
	imp, err := NewImporter(source, reconciler, nil)
	require.NoError(t, err)

	pipeline, err := docembed.NewPipeline(source, dpmock.NewMockProcessor(docRepo), aimock.NewMockEmbedder(), docRepo,
		docembed.WithAttachmentDelay(0))
	require.NoError(t, err)

	service, err := NewService(imp, pipeline, nil)
	require.NoError(t, err)
	t.Cleanup(service.Release)

	return service, source, docRepo
}

func TestService_SyncThenAttachments(t *testing.T) {
	service, source, docRepo := newServiceFixture(t)
	ctx := context.Background()

	source.Tickets = []*helpdesk.Ticket{
		{Id: 5001, Subject: "Medical renewal", Status: 2, Priority: 1, RequesterId: 31},
	}
	att := &helpdesk.Attachment{
		Id: 8801, Name: "medical-certificate.pdf", ContentType: "application/pdf", URL: "u1",
	}
	source.Attachments[5001] = []*helpdesk.Attachment{att}
	source.Downloads["u1"] = []byte("%PDF")

	result := service.HandleTicketEvent(ctx, 5001, true)
	require.True(t, result.OK, "reason: %s", result.Reason)

	// Attachment processing runs in the background on the single worker
	docID := core.DocumentIDFor(result.CaseId, 8801, "medical-certificate.pdf")
	require.Eventually(t, func() bool {
		chunks, err := docRepo.GetChunks(ctx, docID)
		return err == nil && len(chunks) > 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestService_FailedSyncSkipsAttachments(t *testing.T) {
	service, source, _ := newServiceFixture(t)

	result := service.HandleTicketEvent(context.Background(), 404, true)
	assert.False(t, result.OK)
	assert.Zero(t, source.DownloadCount())
}

func TestService_SyncWithoutAttachments(t *testing.T) {
	service, source, docRepo := newServiceFixture(t)
	ctx := context.Background()

	source.Tickets = []*helpdesk.Ticket{{Id: 5001, Subject: "Renewal", Status: 2, Priority: 1}}
	source.Attachments[5001] = []*helpdesk.Attachment{
		{Id: 1, Name: "medical.pdf", ContentType: "application/pdf", URL: "u1"},
	}
	source.Downloads["u1"] = []byte("x")

	result := service.HandleTicketEvent(ctx, 5001, false)
	require.True(t, result.OK)

	time.Sleep(50 * time.Millisecond)
	docID := core.DocumentIDFor(result.CaseId, 1, "medical.pdf")
	chunks, err := docRepo.GetChunks(ctx, docID)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
