// Package contacts pulls contact fields out of resume text with fixed
// regular expression patterns.
package contacts

import "regexp"

// Info holds the best-effort contact fields for one candidate. Any field
// may be empty when no match was found.
type Info struct {
	Email    string
	Phone    string
	LinkedIn string
}

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)

	// The same alternatives PyPDF-era resume tooling settles on: /in/ and
	// /pub/ profile URLs with and without a scheme, and the legacy
	// /profile/view?id= form.
	linkedinPattern = regexp.MustCompile(`(?i)` +
		`https?://(?:www\.)?linkedin\.com/in/[\w-]+/?` +
		`|https?://(?:www\.)?linkedin\.com/pub/[\w-]+(?:/[\w-]+){0,3}/?` +
		`|https?://(?:www\.)?linkedin\.com/profile/view\?id=\d+` +
		`|linkedin\.com/in/[\w-]+` +
		`|linkedin\.com/pub/[\w-]+(?:/[\w-]+){0,3}`)
)

// Extract returns the first email, phone and LinkedIn profile found in the
// given text and link URIs. The three extractions are independent.
func Extract(text string, links []string) Info {
	info := Info{
		Email: emailPattern.FindString(text),
		Phone: phonePattern.FindString(text),
	}

	if profiles := Profiles(text, links); len(profiles) > 0 {
		info.LinkedIn = profiles[0]
	}

	return info
}

// Profiles returns every LinkedIn profile candidate found in the text and
// the link URIs, deduplicated first-seen-wins: text matches in scan order
// first, then whole link URIs that contain a profile match, in link order.
// The order is deterministic across runs.
func Profiles(text string, links []string) []string {
	seen := make(map[string]struct{})
	var profiles []string

	add := func(candidate string) {
		if _, ok := seen[candidate]; ok {
			return
		}
		seen[candidate] = struct{}{}
		profiles = append(profiles, candidate)
	}

	for _, match := range linkedinPattern.FindAllString(text, -1) {
		add(match)
	}

	for _, link := range links {
		if linkedinPattern.MatchString(link) {
			add(link)
		}
	}

	return profiles
}
