package core

import (
	"fmt"
	"strings"
	"unicode"
)

// SlugForCompany derives a url-safe, collision-free slug for an organization
// reconciled from an external helpdesk company. The name is lowercased, runs
// of non-alphanumeric characters collapse to a single hyphen, and the
// external company id is appended so two companies sharing a display name
// still produce distinct slugs.
func SlugForCompany(name string, externalCompanyID int64) string {
	return fmt.Sprintf("%s-%d", Slugify(name), externalCompanyID)
}

// Slugify lowercases text and replaces every run of non-alphanumeric
// characters with a single hyphen, trimming leading and trailing hyphens.
func Slugify(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingHyphen := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		} else {
			pendingHyphen = true
		}
	}

	return b.String()
}
