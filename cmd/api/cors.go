package main

import (
	"net/url"
	"strings"
)

// matchCORSOrigin reports whether origin is allowed. Patterns are exact
// origins, "*", or wildcard-subdomain forms like
// "https://*.kartevonmorgen.org". A wildcard never matches the bare domain.
func matchCORSOrigin(origin string, patterns []string) bool {
	for _, p := range patterns {
		if p == "*" || p == origin {
			return true
		}
		if strings.Contains(p, "*") && matchWildcardOrigin(origin, p) {
			return true
		}
	}
	return false
}

func matchWildcardOrigin(origin, pattern string) bool {
	pu, err := url.Parse(strings.Replace(pattern, "*", "wildcard", 1))
	if err != nil {
		return false
	}
	ou, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if pu.Scheme == "" || pu.Scheme != ou.Scheme {
		return false
	}
	suffix := strings.TrimPrefix(pu.Host, "wildcard")
	if !strings.HasPrefix(suffix, ".") {
		return false
	}
	return strings.HasSuffix(ou.Host, suffix)
}
