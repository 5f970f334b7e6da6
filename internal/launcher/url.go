package launcher

import (
	"net/url"
	"regexp"
	"strings"
)

var urlSchemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// looksLikeURL reports whether the submitted quick-launch text should be
// navigated to directly instead of searched.
func looksLikeURL(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" || strings.ContainsAny(input, " \t") {
		return false
	}

	if urlSchemeRe.MatchString(input) {
		u, err := url.Parse(input)
		return err == nil && u.Host != ""
	}

	// Bare domains like "example.com/path" count as URLs.
	host := input
	if idx := strings.IndexByte(host, '/'); idx >= 0 {
		host = host[:idx]
	}
	if !strings.Contains(host, ".") || strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return false
	}
	return !strings.ContainsAny(host, "?&=")
}

// normalizeURL adds a scheme to bare-domain input.
func normalizeURL(input string) string {
	input = strings.TrimSpace(input)
	if urlSchemeRe.MatchString(input) {
		return input
	}
	return "https://" + input
}
