// Package docembed turns medical ticket attachments into searchable
// embedding chunks.
//
// The Pipeline type drives the workflow for one ticket: classify each
// attachment by content type and filename, download qualifying ones, hand
// them to document processing for OCR, chunk the extracted text along
// sentence boundaries, and embed each chunk with retry and vector
// normalization.
//
// Processing is strictly sequential with a fixed delay between attachments;
// the external APIs are rate limited and this pipeline is their only client.
// Per-attachment and per-chunk failures are logged and accumulated, never
// fatal to the surrounding batch.
package docembed
