package docembed

import "testing"

func TestIsMedicalAttachment(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		want        bool
	}{
		{"pdf with medical keyword", "medical-certificate.pdf", "application/pdf", true},
		{"jpeg xray", "left-knee-xray.jpg", "image/jpeg", true},
		{"png mri scan", "MRI_Scan_2024.png", "image/png", true},
		{"legacy word report", "diagnosis-report.doc", "application/msword", true},
		{"modern word clearance", "fitness clearance.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", true},
		{"keyword match is case-insensitive", "MEDICAL-CERT.PDF", "application/pdf", true},
		{"allowed type without keyword", "invoice.pdf", "application/pdf", false},
		{"keyword with executable type", "mri-report.exe", "application/x-msdownload", false},
		{"allowed image without keyword", "holiday-photo.jpg", "image/jpeg", false},
		{"keyword with disallowed type", "medical-notes.txt", "text/plain", false},
		{"keyword with disallowed zip", "medical-report.zip", "application/zip", false},
		{"empty filename", "", "application/pdf", false},
		{"empty content type", "medical.pdf", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsMedicalAttachment(tt.filename, tt.contentType)
			if got != tt.want {
				t.Errorf("IsMedicalAttachment(%q, %q) = %v, want %v", tt.filename, tt.contentType, got, tt.want)
			}
		})
	}
}
