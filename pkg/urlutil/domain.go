// Package urlutil provides the small URL-parsing helpers shared by the
// headline analyzer, URL analyzer, and policy engine — each needs the
// same normalized domain to match against keyword, allow, and block lists.
package urlutil

import (
	"net/url"
	"strings"
)

// Domain returns the lowercased host of rawURL, stripped of a leading
// "www." and any port, or "" if rawURL does not parse.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// ContainsFragment reports whether domain contains any of fragments as a
// substring — the matching rule used throughout the headline analyzer
// and policy engine for allow/block/low-risk domain lists.
func ContainsFragment(domain string, fragments []string) bool {
	for _, f := range fragments {
		if f != "" && strings.Contains(domain, f) {
			return true
		}
	}
	return false
}
