package core

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "simple name", text: "Acme", want: "acme"},
		{name: "spaces collapse to hyphen", text: "Acme Corp", want: "acme-corp"},
		{name: "run of punctuation collapses", text: "Acme -- Corp!!", want: "acme-corp"},
		{name: "leading and trailing junk trimmed", text: "  (Acme Corp)  ", want: "acme-corp"},
		{name: "digits preserved", text: "Area 51 Logistics", want: "area-51-logistics"},
		{name: "empty input", text: "", want: ""},
		{name: "only punctuation", text: "!!!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.text); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSlugForCompany(t *testing.T) {
	got := SlugForCompany("Acme Health & Safety", 42)
	want := "acme-health-safety-42"
	if got != want {
		t.Errorf("SlugForCompany() = %q, want %q", got, want)
	}
}

func TestSlugForCompany_SameNameDistinctIDs(t *testing.T) {
	a := SlugForCompany("Acme", 10)
	b := SlugForCompany("Acme", 11)
	if a == b {
		t.Errorf("identical names with different external ids produced the same slug: %q", a)
	}
}
