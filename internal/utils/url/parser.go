package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL checks that urlStr is an absolute http(s) URL with a host
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %s", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	return nil
}

// ResolveURL resolves a possibly-relative href against a base URL (RFC 3986).
// Absolute or unparsable hrefs are returned unchanged.
func ResolveURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(u).String()
}

// RouteFragment normalizes a dashboard route to its hash form, e.g. "status/Lamp" -> "#/status/Lamp"
func RouteFragment(route string) string {
	route = strings.TrimSpace(route)
	route = strings.TrimPrefix(route, "#")
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return "#" + route
}

// RouteMatches reports whether currentURL shows the given route
func RouteMatches(currentURL, route string) bool {
	want := strings.TrimPrefix(RouteFragment(route), "#")
	return strings.Contains(currentURL, want)
}
