package apiclient

import "strings"

// Candidates returns the ordered, de-duplicated URLs tried for path.
func (c *Client) Candidates(path string) []string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	out := make([]string, 0, 2+len(c.fallbacks))
	seen := map[string]struct{}{}
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	add(c.base + path)
	if c.cfg.TryAltPrefix {
		add(toggleAPIPrefix(c.base) + path)
	}
	for _, b := range c.fallbacks {
		add(b + path)
	}
	return out
}

// toggleAPIPrefix strips a trailing /api segment from base, or appends one.
func toggleAPIPrefix(base string) string {
	if strings.HasSuffix(base, "/api") {
		return strings.TrimSuffix(base, "/api")
	}
	return base + "/api"
}

func normalizeBase(b string) string {
	return strings.TrimRight(strings.TrimSpace(b), "/")
}
