package docproc_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/docproc"
	"github.com/arborhealth/casesync/storage/badger"
)

func TestClient_ProcessAttachment(t *testing.T) {
	_, _, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { docRepo.Close(); backend.Close() }()

	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/documents/process", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]any{
			"success":        true,
			"kind":           "medical_certificate",
			"extracted_text": "Cleared for duty.",
		})
	}))
	defer server.Close()

	client := docproc.NewClient(server.URL, docRepo)
	require.True(t, client.IsAvailable())

	result, err := client.ProcessAttachment(context.Background(), &docproc.Request{
		CaseId:               3,
		WorkerId:             12,
		ExternalAttachmentId: 8801,
		Filename:             "medical-report.pdf",
		ContentType:          "application/pdf",
		Size:                 4,
		Data:                 []byte("%PDF"),
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, core.DocumentIDFor(3, 8801, "medical-report.pdf"), result.DocumentId)

	// Attachment bytes travel base64-encoded
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF")), received["data"])
	assert.Equal(t, "medical-report.pdf", received["filename"])

	doc, err := docRepo.GetDocument(context.Background(), result.DocumentId)
	require.NoError(t, err)
	assert.Equal(t, "Cleared for duty.", doc.ExtractedText)
	assert.Equal(t, "medical_certificate", doc.Kind)
	assert.Equal(t, core.ID(3), doc.CaseId)
}

func TestClient_ProcessAttachment_Rejected(t *testing.T) {
	_, _, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { docRepo.Close(); backend.Close() }()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "unsupported file format",
		})
	}))
	defer server.Close()

	client := docproc.NewClient(server.URL, docRepo)
	result, err := client.ProcessAttachment(context.Background(), &docproc.Request{
		Filename: "notes.txt",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "unsupported file format", result.Message)
}

func TestClient_ProcessAttachment_ServerError(t *testing.T) {
	_, _, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { docRepo.Close(); backend.Close() }()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := docproc.NewClient(server.URL, docRepo)
	_, err = client.ProcessAttachment(context.Background(), &docproc.Request{Filename: "report.pdf"})
	assert.True(t, errors.Is(err, docproc.ErrUnavailable))
}

func TestClient_NotConfigured(t *testing.T) {
	client := docproc.NewClient("", nil)
	assert.False(t, client.IsAvailable())

	_, err := client.ProcessAttachment(context.Background(), &docproc.Request{})
	assert.True(t, errors.Is(err, docproc.ErrNotConfigured))
}
