package logger

import (
	"strings"
	"testing"
)

func TestSanitizeValueHashesReviewIdentities(t *testing.T) {
	for _, key := range []string{"uploader_id", "actor_id", "created_by", "reviewed_by", "reviewer_id", "partner_id"} {
		got := sanitizeValue(key, "2f1c9a44-7d12-4c30-9f1e-0a8b6c1d2e3f")
		s, ok := got.(string)
		if !ok || !strings.HasPrefix(s, "hash:") {
			t.Fatalf("key %q: expected hashed value, got %v", key, got)
		}
	}
	if got := sanitizeValue("media_id", "abc"); got != "abc" {
		t.Fatalf("media_id should pass through, got %v", got)
	}
}

func TestSanitizeValueRedactsCredentialKeys(t *testing.T) {
	for _, key := range []string{"api_key", "gcs_credentials", "signature", "robot_token"} {
		if got := sanitizeValue(key, "hunter2"); got != "[REDACTED]" {
			t.Fatalf("key %q: expected redaction, got %v", key, got)
		}
	}
}

func TestStripSignedQuery(t *testing.T) {
	signed := "https://storage.googleapis.com/bkt/kitchen.mp4?X-Goog-Signature=deadbeef&X-Goog-Credential=svc"
	got, ok := stripSignedQuery(signed)
	if !ok || got != "https://storage.googleapis.com/bkt/kitchen.mp4?[SIGNED]" {
		t.Fatalf("unexpected strip result: %q %v", got, ok)
	}
	if _, ok := stripSignedQuery("https://storage.googleapis.com/bkt/kitchen.mp4"); ok {
		t.Fatal("plain URL should not be rewritten")
	}
	if _, ok := stripSignedQuery("gs://bkt/kitchen.mp4?generation=5"); ok {
		t.Fatal("non-signed query should not be rewritten")
	}
}
