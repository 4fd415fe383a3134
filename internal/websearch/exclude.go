// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package websearch

import (
	"net/url"
	"strings"
)

// ExcludedDomains lists low-signal hosts never returned as results:
// user-editable encyclopedias, social networks, and Q&A forums.
var ExcludedDomains = []string{
	"wikipedia.org",
	"wikimedia.org",
	"wiktionary.org",
	"wikihow.com",
	"reddit.com",
	"quora.com",
	"twitter.com",
	"facebook.com",
	"instagram.com",
}

// DomainOf returns the host part of rawURL, lowercased. An unparsable URL
// yields an empty string.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// matchesExcluded reports whether domain contains any excluded-domain
// token. Substring match on purpose: it catches subdomains like
// en.wikipedia.org.
func matchesExcluded(domain string, excluded []string) bool {
	if domain == "" {
		return false
	}
	for _, ex := range excluded {
		if ex != "" && strings.Contains(domain, ex) {
			return true
		}
	}
	return false
}

// officialTLDs are the domain suffixes the official-site heuristic accepts.
var officialTLDs = []string{".co.jp", ".com", ".jp", ".net"}

// IsOfficialSite reports whether rawURL heuristically belongs to the
// subject's own web presence: the domain must use a recognized TLD and
// contain a longer-than-two-character token of the subject name. Known to
// both false-positive and false-negative; kept as the documented heuristic.
func IsOfficialSite(rawURL, subject string) bool {
	domain := DomainOf(rawURL)
	if domain == "" {
		return false
	}

	recognized := false
	for _, tld := range officialTLDs {
		if strings.Contains(domain, tld) {
			recognized = true
			break
		}
	}
	if !recognized {
		return false
	}

	for _, part := range strings.Fields(strings.ToLower(subject)) {
		// Skip short fragments such as legal-form abbreviations.
		if len(part) > 2 && strings.Contains(domain, part) {
			return true
		}
	}
	return false
}
