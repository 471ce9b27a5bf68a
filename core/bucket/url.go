package bucket

import "strings"

// JoinURL joins parts with delimiter. A trailing delimiter on any part but the
// last is dropped so configured base URLs may end in a slash.
func JoinURL(delimiter string, parts ...string) string {
	trimmed := make([]string, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 && delimiter != "" {
			p = strings.TrimSuffix(p, delimiter)
		}
		trimmed[i] = p
	}
	return strings.Join(trimmed, delimiter)
}

// PublicURL returns the unsigned URL of key. It assumes the object is publicly
// readable and does not check that it exists.
func (s *Service) PublicURL(key string) string {
	if s.publicURL != "" {
		return JoinURL(s.delimiter, s.publicURL, key)
	}
	return JoinURL(s.delimiter, s.endpoint, s.bucket, key)
}
