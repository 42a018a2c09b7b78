package records

import (
	"net/url"
	"strings"
)

// uploadsPathFromRef extracts the stable relative uploads path from a URL or
// path. Photos are stored as "/uploads/<name>" so network/IP changes won't
// break existing records.
func uploadsPathFromRef(ref string) string {
	s := strings.TrimSpace(ref)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "/uploads/") {
		return s
	}
	if strings.HasPrefix(s, "uploads/") {
		return "/" + s
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}
		if strings.HasPrefix(u.Path, "/uploads/") {
			return u.Path
		}
	}
	return ""
}

// NormalizeUploadRef rewrites a photo reference to its relative uploads form
// when possible, otherwise passes the trimmed original through. Empty input
// stays empty.
func NormalizeUploadRef(ref string) string {
	if p := uploadsPathFromRef(ref); p != "" {
		return p
	}
	return strings.TrimSpace(ref)
}

func normalizePhotoPath(ref *string) *string {
	if ref == nil {
		return nil
	}
	n := NormalizeUploadRef(*ref)
	if n == "" {
		return nil
	}
	return &n
}

func normalizePhotoList(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if n := NormalizeUploadRef(u); n != "" {
			out = append(out, n)
		}
	}
	return out
}
