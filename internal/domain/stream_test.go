package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"testing"
)

func TestStreamHashUsesSeparator(t *testing.T) {
	topic := "access-review"
	subject := "grant_42"
	payload := topic + "/" + subject
	sum := sha256.Sum256([]byte(payload))
	expected := hex.EncodeToString(sum[:])

	if got := StreamHash(topic, subject); got != expected {
		t.Fatalf("expected hash %q, got %q", expected, got)
	}
}

func TestStreamPathFlatLayout(t *testing.T) {
	topic := "access-review"
	subject := "grant_42"
	hash := StreamHash(topic, subject)
	expected := filepath.Join("evidence", topic, "REC_"+hash)

	if got := StreamPath(StreamLayoutFlat, topic, subject); got != expected {
		t.Fatalf("expected path %q, got %q", expected, got)
	}
}

func TestStreamPathShardedLayout(t *testing.T) {
	topic := "access-review"
	subject := "grant_42"
	hash := StreamHash(topic, subject)
	expected := filepath.Join("evidence", topic, hash[0:2], hash[2:4], "REC_"+hash)

	if got := StreamPath(StreamLayoutSharded, topic, subject); got != expected {
		t.Fatalf("expected path %q, got %q", expected, got)
	}
}
