package crawl

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// defaultPorts maps schemes to the port implied when a URL omits one.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}

// ResolveLink resolves link against baseURL and returns the absolute URL.
func ResolveLink(link, baseURL string) (*url.URL, error) {
	base, err := parseURL(baseURL)
	if err != nil {
		return nil, err
	}
	ref, err := parseURL(strings.TrimSpace(link))
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(ref), nil
}

// parseURL parses raw after decoding percent escapes in its host.
// net/url rejects escaped ASCII in hosts, which browsers accept.
func parseURL(raw string) (*url.URL, error) {
	return url.Parse(unescapeHost(raw))
}

// unescapeHost percent-decodes the host of a URL with an authority.
// Bracketed IP literals are left alone since their zone uses "%25".
func unescapeHost(raw string) string {
	i := strings.Index(raw, "//")
	if i < 0 {
		return raw
	}
	if scheme := raw[:i]; scheme != "" && (!strings.HasSuffix(scheme, ":") || strings.ContainsAny(scheme, "/?#")) {
		return raw
	}
	rest := raw[i+2:]
	end := strings.IndexAny(rest, "/?#")
	if end < 0 {
		end = len(rest)
	}
	authority := rest[:end]
	at := strings.LastIndex(authority, "@") + 1
	host := authority[at:]
	if !strings.Contains(host, "%") || strings.HasPrefix(host, "[") {
		return raw
	}
	decoded, err := url.PathUnescape(host)
	if err != nil || strings.ContainsAny(decoded, "/?#@[]\\") {
		return raw
	}
	return raw[:i+2] + authority[:at] + decoded + rest[end:]
}

// Origin returns the scheme://host:port origin of u, with the scheme
// lowercased, the host in its ASCII form and the default port made explicit.
// URLs without a host have no origin and yield "".
func Origin(u *url.URL) string {
	host := asciiHost(u.Hostname())
	if host == "" {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	port := u.Port()
	if port == "" {
		port = defaultPorts[scheme]
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return scheme + "://" + host + ":" + port
}

// asciiHost maps internationalized host names to their punycode form.
// IP literals and hosts the IDNA profile rejects are only lowercased.
func asciiHost(host string) string {
	if strings.Contains(host, ":") {
		return strings.ToLower(host)
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return strings.ToLower(host)
}

// IsInternal reports whether link, resolved against baseURL, has the same
// origin (scheme, host and port) as baseURL.
// Links that cannot be resolved are never internal.
func IsInternal(link, baseURL string) bool {
	base, err := parseURL(baseURL)
	if err != nil {
		return false
	}
	baseOrigin := Origin(base)
	if baseOrigin == "" {
		return false
	}
	resolved, err := ResolveLink(link, baseURL)
	if err != nil {
		return false
	}
	return Origin(resolved) == baseOrigin
}
