// Package resourceurl converts native file-system paths into URLs under the
// app's custom local-resource scheme so viewers can stream files straight
// from disk.
package resourceurl

import "strings"

// Scheme is the custom protocol registered for streaming local files.
const Scheme = "local-resource"

// FromPath turns a native path (optionally carrying a ?query cache-buster)
// into a local-resource URL. The query string is split off before any
// encoding happens so reserved characters inside it (?, =, &) survive
// untouched; encoding the whole string used to break cache invalidation.
// Inputs that already use a blob or network scheme pass through unchanged.
func FromPath(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "blob:") || strings.HasPrefix(path, "http") {
		return path
	}

	query := ""
	if idx := strings.Index(path, "?"); idx >= 0 {
		query = path[idx:]
		path = path[:idx]
	}

	normalized := strings.ReplaceAll(path, "\\", "/")
	parts := strings.Split(normalized, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		segments = append(segments, encodeSegment(part))
	}

	return Scheme + ":///" + strings.Join(segments, "/") + query
}

const upperhex = "0123456789ABCDEF"

// encodeSegment percent-encodes everything outside the RFC 3986 unreserved
// set. Slashes never reach here, so path structure stays structural.
func encodeSegment(segment string) string {
	var b strings.Builder
	for i := 0; i < len(segment); i++ {
		c := segment[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~':
		return true
	}
	return false
}
