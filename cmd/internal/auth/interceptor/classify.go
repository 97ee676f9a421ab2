package interceptor

import (
	"net/url"
	"strings"
)

var authOnlyPaths = []string{"/auth/login", "/auth/refresh", "/auth/logout"}

// Classifier decides whether a URL targets the protected API and whether it is an auth-only endpoint.
type Classifier struct {
	base     *url.URL
	prefixes []string // normalized path prefixes, with and without /api
}

// NewClassifier builds a Classifier for apiBase (absolute http or https URL).
func NewClassifier(apiBase string) (Classifier, error) {
	u, err := url.Parse(strings.TrimSpace(apiBase))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Classifier{}, ErrInvalidAPIBase
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""

	p := u.Path
	alt := p + "/api"
	if strings.HasSuffix(p, "/api") {
		alt = strings.TrimSuffix(p, "/api")
	}

	return Classifier{base: u, prefixes: []string{p, alt}}, nil
}

// Base returns the normalized API base URL.
func (c Classifier) Base() string {
	if c.base == nil {
		return ""
	}
	return c.base.String()
}

// IsAPI reports whether u belongs to the API origin under one of the base prefixes.
func (c Classifier) IsAPI(u *url.URL) bool {
	_, ok := c.prefixOf(u)
	return ok
}

// prefixOf returns the longest base prefix that u falls under.
func (c Classifier) prefixOf(u *url.URL) (string, bool) {
	if c.base == nil || u == nil {
		return "", false
	}
	if !strings.EqualFold(u.Scheme, c.base.Scheme) || !strings.EqualFold(u.Host, c.base.Host) {
		return "", false
	}
	best, found := "", false
	for _, p := range c.prefixes {
		if p == "" || u.Path == p || strings.HasPrefix(u.Path, p+"/") {
			if !found || len(p) > len(best) {
				best, found = p, true
			}
		}
	}
	return best, found
}

// IsAuthEndpoint reports whether u is an API login, refresh or logout endpoint.
func (c Classifier) IsAuthEndpoint(u *url.URL) bool {
	if !c.IsAPI(u) {
		return false
	}
	p := strings.TrimRight(u.Path, "/")
	for _, suffix := range authOnlyPaths {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	return false
}

// URL joins path onto the API base.
func (c Classifier) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(c.Base(), "/") + path
}

// URLFor joins path onto the API prefix that u was sent under, so the /api
// variant of a request resolves to the /api variant of path. URLs outside the
// API fall back to the base.
func (c Classifier) URLFor(u *url.URL, path string) string {
	p, ok := c.prefixOf(u)
	if !ok {
		return c.URL(path)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	ref := *c.base
	ref.Path = p
	return strings.TrimRight(ref.String(), "/") + path
}
