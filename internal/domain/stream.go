package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const (
	EvidenceRoot    = "evidence"
	StateRoot       = "state"
	StreamSeparator = "/"

	StreamHeadFile   = "HEAD"
	EntriesDirName   = "entries"
	EntryFileExt     = ".rec"
	StateCurrentFile = "current" + EntryFileExt
)

// StreamHash derives the stable stream identifier for a topic/subject pair.
// The identifier never changes for a pair, so all entries about the same
// subject land in the same stream regardless of who appends them.
func StreamHash(topic, subject string) string {
	payload := topic + StreamSeparator + subject
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func StreamPath(layout StreamLayout, topic, subject string) string {
	layout = NormalizeStreamLayout(layout)
	hash := StreamHash(topic, subject)
	switch layout {
	case StreamLayoutSharded:
		return filepath.Join(EvidenceRoot, topic, hash[0:2], hash[2:4], "REC_"+hash)
	default:
		return filepath.Join(EvidenceRoot, topic, "REC_"+hash)
	}
}

func StatePath(layout StreamLayout, topic, subject string) string {
	layout = NormalizeStreamLayout(layout)
	hash := StreamHash(topic, subject)
	switch layout {
	case StreamLayoutSharded:
		return filepath.Join(StateRoot, topic, hash[0:2], hash[2:4], "REC_"+hash)
	default:
		return filepath.Join(StateRoot, topic, "REC_"+hash)
	}
}
