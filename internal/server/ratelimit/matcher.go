package ratelimit

import "strings"

// MatchEndpoint resolves the endpoint configuration for a request path and
// method. Exact path matches win; otherwise the longest configured prefix
// (a Path ending in "/") applies. A nil result means the caller should
// fall back to the default limit.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		// Health probes are never throttled.
		return &EndpointConfig{}
	}

	var prefix *EndpointConfig
	for i := range configs {
		ec := &configs[i]
		if ec.Method != method {
			continue
		}
		if ec.Path == path {
			return ec
		}
		if strings.HasSuffix(ec.Path, "/") && strings.HasPrefix(path, ec.Path) {
			if prefix == nil || len(ec.Path) > len(prefix.Path) {
				prefix = ec
			}
		}
	}
	return prefix
}
