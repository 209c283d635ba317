// Package realm turns whatever a user typed or pasted for a site into the
// realm string the derivation is salted with.
package realm

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	schemeSeparator = "://"
	defaultScheme   = "https://"
)

// Normalize returns the realm for raw input:
//   - URLs ("https://Example.com/login?x=1") reduce to their lowercase host name
//   - bare hosts with a path, port or userinfo ("example.com:8443/") are
//     parsed as if prefixed with https://
//   - anything that still has no host name is kept as typed, trimmed and
//     lowercased
//
// Normalize never fails and is idempotent.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	candidate := trimmed
	if !strings.Contains(candidate, schemeSeparator) {
		candidate = defaultScheme + candidate
	}

	if host, ok := hostname(candidate); ok {
		return host
	}

	return strings.ToLower(trimmed)
}

// hostname accepts a parsed host only when it parses back to itself.
// Hosts that url.Parse percent-decoded into something new, or into
// invalid UTF-8, are rejected so the caller keeps the input as typed.
func hostname(raw string) (string, bool) {
	host, ok := parseHost(raw)
	if !ok || strings.Contains(host, "%") || !utf8.ValidString(host) {
		return "", false
	}

	if again, ok := parseHost(defaultScheme + host); !ok || again != host {
		return "", false
	}

	return host, true
}

func parseHost(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}

	// keep IPv6 literals bracketed so they parse back to themselves
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	return host, true
}
