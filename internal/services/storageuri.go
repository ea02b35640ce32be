package services

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeToGSURI rewrites a stored media URL into the gs:// form the
// video annotation API prefers. Three shapes are recognized:
//
//	gs://bucket/path                                      (passed through)
//	https://firebasestorage.googleapis.com/v0/b/B/o/P?..  (P is URL-encoded)
//	https://storage.googleapis.com/B/P
//
// Anything else falls back to the original URL unchanged; the annotation
// call decides whether it can fetch it. Only empty or unparseable input
// is an error.
func NormalizeToGSURI(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty media url")
	}
	if strings.HasPrefix(raw, "gs://") {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("unparseable media url %q: %w", raw, err)
	}
	if u.Scheme != "https" {
		return raw, nil
	}

	switch u.Host {
	case "firebasestorage.googleapis.com":
		// /v0/b/<bucket>/o/<url-encoded object path>
		parts := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
		if len(parts) < 4 || parts[0] != "v0" || parts[1] != "b" || parts[3] != "o" {
			return raw, nil
		}
		bucket := parts[2]
		encoded := strings.Join(parts[4:], "/")
		if bucket == "" || encoded == "" {
			return raw, nil
		}
		objectPath, err := url.PathUnescape(encoded)
		if err != nil {
			return raw, nil
		}
		return fmt.Sprintf("gs://%s/%s", bucket, objectPath), nil

	case "storage.googleapis.com":
		parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return raw, nil
		}
		objectPath, err := url.PathUnescape(parts[1])
		if err != nil {
			return raw, nil
		}
		return fmt.Sprintf("gs://%s/%s", parts[0], objectPath), nil
	}

	return raw, nil
}
