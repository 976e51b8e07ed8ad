package backfill

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/arborhealth/casesync/ai/mock"
	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/docembed"
	dpmock "github.com/arborhealth/casesync/docproc/mock"
	"github.com/arborhealth/casesync/helpdesk"
	hdmock "github.com/arborhealth/casesync/helpdesk/mock"
	"github.com/arborhealth/casesync/storage"
	"github.com/arborhealth/casesync/storage/badger"
)

type backfillFixture struct {
	source     *hdmock.MockSource
	caseRepo   storage.CaseRepository
	docRepo    storage.DocumentRepository
	backfiller *Backfiller
	out        *bytes.Buffer
}

func newBackfillFixture(t *testing.T) *backfillFixture {
	t.Helper()
	orgRepo, caseRepo, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { docRepo.Close(); caseRepo.Close(); orgRepo.Close(); backend.Close() })

	source := hdmock.NewMockSource()
	pipeline, err := docembed.NewPipeline(source, dpmock.NewMockProcessor(docRepo), aimock.NewMockEmbedder(), docRepo,
		docembed.WithAttachmentDelay(0))
	require.NoError(t, err)

	out := &bytes.Buffer{}
	backfiller, err := NewBackfiller(caseRepo, pipeline, &Config{TicketDelay: 0, ReportInterval: 1}, out, nil)
	require.NoError(t, err)

	return &backfillFixture{source: source, caseRepo: caseRepo, docRepo: docRepo, backfiller: backfiller, out: out}
}

func (f *backfillFixture) seedCase(t *testing.T, ticketID int64, requesterID int64) core.ID {
	t.Helper()
	c, err := f.caseRepo.CreateCase(context.Background(), &core.Case{
		ExternalTicketId: ticketID,
		Subject:          "ticket",
		CaseType:         core.DefaultCaseType,
		Status:           core.StatusNew,
		Priority:         core.PriorityMedium,
		RequesterId:      requesterID,
	})
	require.NoError(t, err)
	return c.Id
}

func TestBackfill_Empty(t *testing.T) {
	f := newBackfillFixture(t)

	result, err := f.backfiller.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Tickets)
	assert.Contains(t, f.out.String(), "No cases")
}

func TestBackfill_ProcessesAllTickets(t *testing.T) {
	f := newBackfillFixture(t)
	ctx := context.Background()

	caseA := f.seedCase(t, 5001, 31)
	f.seedCase(t, 5002, 32)

	f.source.Attachments[5001] = []*helpdesk.Attachment{
		{Id: 1, Name: "medical-certificate.pdf", ContentType: "application/pdf", URL: "u1"},
	}
	f.source.Downloads["u1"] = []byte("%PDF")
	// Ticket 5002 has no attachments

	result, err := f.backfiller.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Tickets)
	assert.Equal(t, 1, result.Qualified)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Chunks)
	assert.Empty(t, result.Errors)

	chunks, err := f.docRepo.GetChunks(ctx, core.DocumentIDFor(caseA, 1, "medical-certificate.pdf"))
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
	assert.Contains(t, f.out.String(), "Progress")
}

func TestBackfill_TicketFailureIsolated(t *testing.T) {
	f := newBackfillFixture(t)

	f.seedCase(t, 5001, 31)
	f.seedCase(t, 5002, 32)

	f.source.GetTicketAttachmentsFunc = func(ctx context.Context, ticketID int64) ([]*helpdesk.Attachment, error) {
		if ticketID == 5001 {
			return nil, helpdesk.ErrUnavailable
		}
		return nil, nil
	}

	result, err := f.backfiller.Run(context.Background())
	require.NoError(t, err, "a failing ticket must not abort the run")
	assert.Equal(t, 2, result.Tickets)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "ticket 5001")
}

func TestBackfill_NotConfiguredIsFatal(t *testing.T) {
	f := newBackfillFixture(t)
	f.seedCase(t, 5001, 31)
	f.source.Available = false

	_, err := f.backfiller.Run(context.Background())
	assert.ErrorIs(t, err, helpdesk.ErrNotConfigured)
}
