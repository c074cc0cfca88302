package cli

import (
	"errors"
	"fmt"
	"testing"

	evidenceapp "github.com/attestly/policytrail/internal/app/evidence"
	indexapp "github.com/attestly/policytrail/internal/app/index"
	inspectapp "github.com/attestly/policytrail/internal/app/inspect"
	"github.com/attestly/policytrail/internal/app/paths"
	topicapp "github.com/attestly/policytrail/internal/app/topic"
	"github.com/attestly/policytrail/internal/domain"
	"github.com/attestly/policytrail/pkg/jcs"
)

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantKind ErrorKind
	}{
		{err: evidenceapp.ErrStreamNotFound, wantCode: ExitNotFound, wantKind: KindNotFound},
		{err: indexapp.ErrRecordNotFound, wantCode: ExitNotFound, wantKind: KindNotFound},
		{err: inspectapp.ErrBlobNotFound, wantCode: ExitNotFound, wantKind: KindNotFound},
		{err: domain.ErrHeadChanged, wantCode: ExitConflict, wantKind: KindConflict},
		{err: evidenceapp.ErrSubjectRevoked, wantCode: ExitConflict, wantKind: KindConflict},
		{err: paths.ErrRepoPathRequired, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: evidenceapp.ErrInvalidTopic, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: evidenceapp.ErrSchemaViolation, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: topicapp.ErrSchemaInvalidJSON, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: indexapp.ErrEmptyLedger, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: inspectapp.ErrInvalidHash, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: jcs.ErrParse, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: jcs.ErrAmbiguousKey, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: domain.ErrMissingPayload, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: domain.ErrUnexpectedPayload, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: errors.New("boom"), wantCode: ExitInternal, wantKind: KindInternal},
	}

	for _, tt := range tests {
		got := NormalizeError(tt.err)
		if got.Code != tt.wantCode {
			t.Fatalf("expected code %d, got %d for %v", tt.wantCode, got.Code, tt.err)
		}
		if got.Kind != tt.wantKind {
			t.Fatalf("expected kind %s, got %s for %v", tt.wantKind, got.Kind, tt.err)
		}
	}
}

func TestNormalizeErrorUnwrapsWrapped(t *testing.T) {
	wrapped := fmt.Errorf("append entry: %w", domain.ErrHeadChanged)
	got := NormalizeError(wrapped)
	if got.Code != ExitConflict {
		t.Fatalf("expected conflict for wrapped head change, got %d", got.Code)
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Fatalf("expected ExitCode(nil) == 0")
	}

	custom := ExitError{Code: 9, Kind: KindInternal, Message: "custom"}
	if ExitCode(custom) != 9 {
		t.Fatalf("expected ExitCode(custom) == 9")
	}
}
