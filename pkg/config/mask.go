package config

import "strings"

// MaskURL replaces the credentials of a connection URL with "****".
func MaskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	scheme, rest, found := strings.Cut(url, "://")
	if !found {
		return url
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		return scheme + "://****@" + rest[at+1:]
	}
	return url
}
