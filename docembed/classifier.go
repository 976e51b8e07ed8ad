package docembed

import "strings"

// Content types worth sending to OCR. Anything else is rejected regardless
// of filename.
var allowedContentTypes = map[string]struct{}{
	"application/pdf":    {},
	"image/jpeg":         {},
	"image/png":          {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// Filename vocabulary for medical paperwork. Matching is by substring over
// the lowercased filename. The filter is deliberately conservative: a missed
// medical document is acceptable, a false positive costs an OCR and
// embedding round-trip.
var medicalKeywords = []string{
	"medical",
	"certificate",
	"report",
	"diagnosis",
	"diagnostic",
	"xray",
	"x-ray",
	"mri",
	"scan",
	"fitness",
	"clearance",
	"assessment",
	"examination",
	"prescription",
	"radiology",
	"pathology",
}

// IsMedicalAttachment reports whether an attachment qualifies for document
// processing. Both the content-type allow-list and the filename keyword
// check must pass.
func IsMedicalAttachment(filename, contentType string) bool {
	if _, ok := allowedContentTypes[strings.ToLower(contentType)]; !ok {
		return false
	}

	lowered := strings.ToLower(filename)
	for _, keyword := range medicalKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
