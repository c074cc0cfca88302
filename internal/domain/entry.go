package domain

import "errors"

type EntryKind int

const (
	EntryKindUnknown EntryKind = iota
	EntryKindDecision
	EntryKindExecution
	EntryKindAnnotation
	EntryKindRevocation
)

var (
	ErrEntryIDRequired   = errors.New("entry id is required")
	ErrTimestampRequired = errors.New("timestamp is required")
	ErrTopicRequired     = errors.New("topic is required")
	ErrSubjectRequired   = errors.New("subject id is required")
	ErrInvalidKind       = errors.New("invalid entry kind")
	ErrMissingPayload    = errors.New("payload is required")
	ErrUnexpectedPayload = errors.New("payload is not allowed")
)

// Entry is one record in an evidence stream. Payload holds the canonical
// JSON form of the recorded document; hashing and signing always operate
// on those exact bytes.
type Entry struct {
	EntryID       string
	Timestamp     int64
	Topic         string
	SubjectID     string
	Kind          EntryKind
	Payload       []byte
	ParentHash    string
	SchemaVersion string
}

func (k EntryKind) IsValid() bool {
	return k >= EntryKindDecision && k <= EntryKindRevocation
}

func (k EntryKind) String() string {
	switch k {
	case EntryKindDecision:
		return "decision"
	case EntryKindExecution:
		return "execution"
	case EntryKindAnnotation:
		return "annotation"
	case EntryKindRevocation:
		return "revocation"
	default:
		return "unknown"
	}
}

func ParseEntryKind(value string) (EntryKind, error) {
	switch value {
	case "decision":
		return EntryKindDecision, nil
	case "execution":
		return EntryKindExecution, nil
	case "annotation":
		return EntryKindAnnotation, nil
	case "revocation":
		return EntryKindRevocation, nil
	default:
		return EntryKindUnknown, ErrInvalidKind
	}
}

func (e Entry) Validate() error {
	if e.EntryID == "" {
		return ErrEntryIDRequired
	}
	if e.Timestamp == 0 {
		return ErrTimestampRequired
	}
	if e.Topic == "" {
		return ErrTopicRequired
	}
	if e.SubjectID == "" {
		return ErrSubjectRequired
	}
	if !e.Kind.IsValid() {
		return ErrInvalidKind
	}

	switch e.Kind {
	case EntryKindRevocation:
		if len(e.Payload) > 0 {
			return ErrUnexpectedPayload
		}
	default:
		if len(e.Payload) == 0 {
			return ErrMissingPayload
		}
	}

	return nil
}
