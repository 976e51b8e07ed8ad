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


package docproc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/storage"
)

const defaultTimeout = 120 * time.Second

// Client submits attachments to the document processing service over HTTP
// and persists the resulting document records. OCR can take a while, so the
// request timeout is generous.
type Client struct {
	baseURL string
	docRepo storage.DocumentRepository
	client  *http.Client
}

var _ Processor = (*Client)(nil)

// NewClient creates a document processing client. baseURL may be empty, in
// which case the client reports unavailable and every call fails with
// ErrNotConfigured.
func NewClient(baseURL string, docRepo storage.DocumentRepository) *Client {
	return &Client{
		baseURL: baseURL,
		docRepo: docRepo,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// IsAvailable reports whether an endpoint is configured.
func (c *Client) IsAvailable() bool {
	return c.baseURL != ""
}

type processRequest struct {
	CaseId               uint64 `json:"case_id"`
	WorkerId             uint64 `json:"worker_id"`
	ExternalAttachmentId int64  `json:"external_attachment_id"`
	Filename             string `json:"filename"`
	ContentType          string `json:"content_type"`
	Size                 int64  `json:"size"`
	Data                 string `json:"data"`
}

type processResponse struct {
	Success       bool   `json:"success"`
	Kind          string `json:"kind"`
	ExtractedText string `json:"extracted_text"`
	Error         string `json:"error"`
}

// ProcessAttachment posts the attachment bytes for OCR and document-kind
// classification, then stores the resulting MedicalDocument under a
// deterministic id so reprocessing the same attachment overwrites rather
// than duplicates.
func (c *Client) ProcessAttachment(ctx context.Context, req *Request) (*Result, error) {
	if !c.IsAvailable() {
		return nil, ErrNotConfigured
	}

	body := &processRequest{
		CaseId:               uint64(req.CaseId),
		WorkerId:             uint64(req.WorkerId),
		ExternalAttachmentId: req.ExternalAttachmentId,
		Filename:             req.Filename,
		ContentType:          req.ContentType,
		Size:                 req.Size,
		Data:                 base64.StdEncoding.EncodeToString(req.Data),
	}

	var response processResponse
	url := fmt.Sprintf("%s/api/documents/process", c.baseURL)
	if err := c.doRequest(ctx, http.MethodPost, url, body, &response); err != nil {
		return nil, err
	}

	if !response.Success {
		return &Result{Success: false, Message: response.Error}, nil
	}

	docID := core.DocumentIDFor(req.CaseId, req.ExternalAttachmentId, req.Filename)
	doc := &core.MedicalDocument{
		Id:            docID,
		CaseId:        req.CaseId,
		WorkerId:      req.WorkerId,
		Filename:      req.Filename,
		Kind:          response.Kind,
		ExtractedText: response.ExtractedText,
	}
	if _, err := c.docRepo.PutDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to store processed document: %w", err)
	}

	return &Result{Success: true, DocumentId: docID}, nil
}

// doRequest performs an HTTP request with JSON encoding/decoding.
func (c *Client) doRequest(ctx context.Context, method, url string, body, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("document processing request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
