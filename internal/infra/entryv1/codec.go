package entryv1

import (
	"fmt"

	"github.com/attestly/policytrail/internal/domain"
	"google.golang.org/protobuf/encoding/protowire"
)

// Wire field numbers for the v1 entry envelope. The envelope is plain
// protobuf wire format written in ascending field order, so the same
// entry always encodes to the same bytes.
const (
	fieldEntryID       = 1
	fieldTimestamp     = 2
	fieldTopic         = 3
	fieldSubjectID     = 4
	fieldKind          = 5
	fieldPayload       = 6
	fieldParentHash    = 7
	fieldSchemaVersion = 8
)

type Encoder struct{}

func (Encoder) Encode(entry domain.Entry) ([]byte, error) {
	return Encode(entry)
}

type Decoder struct{}

func (Decoder) Decode(data []byte) (domain.Entry, error) {
	return Decode(data)
}

func Encode(entry domain.Entry) ([]byte, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	var buf []byte
	buf = protowire.AppendTag(buf, fieldEntryID, protowire.BytesType)
	buf = protowire.AppendString(buf, entry.EntryID)
	buf = protowire.AppendTag(buf, fieldTimestamp, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(entry.Timestamp))
	buf = protowire.AppendTag(buf, fieldTopic, protowire.BytesType)
	buf = protowire.AppendString(buf, entry.Topic)
	buf = protowire.AppendTag(buf, fieldSubjectID, protowire.BytesType)
	buf = protowire.AppendString(buf, entry.SubjectID)
	buf = protowire.AppendTag(buf, fieldKind, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(entry.Kind))
	if len(entry.Payload) > 0 {
		buf = protowire.AppendTag(buf, fieldPayload, protowire.BytesType)
		buf = protowire.AppendBytes(buf, entry.Payload)
	}
	if entry.ParentHash != "" {
		buf = protowire.AppendTag(buf, fieldParentHash, protowire.BytesType)
		buf = protowire.AppendString(buf, entry.ParentHash)
	}
	if entry.SchemaVersion != "" {
		buf = protowire.AppendTag(buf, fieldSchemaVersion, protowire.BytesType)
		buf = protowire.AppendString(buf, entry.SchemaVersion)
	}

	return buf, nil
}

func Decode(data []byte) (domain.Entry, error) {
	var entry domain.Entry

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return domain.Entry{}, fmt.Errorf("decode entry: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case typ == protowire.BytesType:
			value, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return domain.Entry{}, fmt.Errorf("decode entry field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]

			switch num {
			case fieldEntryID:
				entry.EntryID = string(value)
			case fieldTopic:
				entry.Topic = string(value)
			case fieldSubjectID:
				entry.SubjectID = string(value)
			case fieldPayload:
				entry.Payload = append([]byte(nil), value...)
			case fieldParentHash:
				entry.ParentHash = string(value)
			case fieldSchemaVersion:
				entry.SchemaVersion = string(value)
			}
		case typ == protowire.VarintType:
			value, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return domain.Entry{}, fmt.Errorf("decode entry field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]

			switch num {
			case fieldTimestamp:
				entry.Timestamp = int64(value)
			case fieldKind:
				entry.Kind = domain.EntryKind(value)
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return domain.Entry{}, fmt.Errorf("decode entry field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	if !entry.Kind.IsValid() {
		return domain.Entry{}, fmt.Errorf("decode entry: invalid kind %d", entry.Kind)
	}

	return entry, nil
}
