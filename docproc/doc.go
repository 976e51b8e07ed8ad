// Package docproc is the boundary to the document processing service that
// performs OCR and document-kind classification on medical attachments.
//
// The embedding pipeline hands qualifying attachment bytes to a Processor
// and reads the extracted text back from storage afterwards. Client
// implements Processor over the service's REST API; docproc/mock writes
// documents with configurable extracted text directly into storage.
package docproc
