package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	evidenceapp "github.com/attestly/policytrail/internal/app/evidence"
	indexapp "github.com/attestly/policytrail/internal/app/index"
	inspectapp "github.com/attestly/policytrail/internal/app/inspect"
	"github.com/attestly/policytrail/internal/app/paths"
	topicapp "github.com/attestly/policytrail/internal/app/topic"
	"github.com/attestly/policytrail/internal/domain"
	"github.com/attestly/policytrail/pkg/jcs"
)

type ErrorKind string

const (
	KindInternal   ErrorKind = "internal"
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
)

const (
	ExitInternal = 1
	ExitInvalid  = 2
	ExitNotFound = 3
	ExitConflict = 4
)

type ExitError struct {
	Code    int
	Kind    ErrorKind
	Message string
	Err     error
}

func (e ExitError) Error() string {
	return errorMessage(e)
}

func NormalizeError(err error) ExitError {
	if err == nil {
		return ExitError{Code: 0}
	}
	var exitErr ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code == 0 {
			exitErr.Code = ExitInternal
		}
		return exitErr
	}

	switch {
	case errors.Is(err, evidenceapp.ErrStreamNotFound),
		errors.Is(err, indexapp.ErrRecordNotFound),
		errors.Is(err, inspectapp.ErrBlobNotFound):
		return ExitError{Code: ExitNotFound, Kind: KindNotFound, Err: err}
	case errors.Is(err, domain.ErrHeadChanged),
		errors.Is(err, evidenceapp.ErrSubjectRevoked):
		return ExitError{Code: ExitConflict, Kind: KindConflict, Err: err}
	case errors.Is(err, paths.ErrRepoPathRequired),
		errors.Is(err, evidenceapp.ErrTopicRequired),
		errors.Is(err, evidenceapp.ErrInvalidTopic),
		errors.Is(err, evidenceapp.ErrSubjectRequired),
		errors.Is(err, evidenceapp.ErrPayloadRequired),
		errors.Is(err, evidenceapp.ErrPatchRequired),
		errors.Is(err, evidenceapp.ErrSchemaViolation),
		errors.Is(err, topicapp.ErrTopicRequired),
		errors.Is(err, topicapp.ErrSchemaPathRequired),
		errors.Is(err, topicapp.ErrInvalidTopicName),
		errors.Is(err, topicapp.ErrSchemaInvalidJSON),
		errors.Is(err, indexapp.ErrEmptyLedger),
		errors.Is(err, indexapp.ErrTopicRequired),
		errors.Is(err, indexapp.ErrSubjectRequired),
		errors.Is(err, inspectapp.ErrHashRequired),
		errors.Is(err, inspectapp.ErrInvalidHash),
		errors.Is(err, jcs.ErrParse),
		errors.Is(err, jcs.ErrAmbiguousKey),
		errors.Is(err, jcs.ErrTooDeep),
		errors.Is(err, jcs.ErrNonFiniteNumber),
		errors.Is(err, jcs.ErrUnsupportedType),
		errors.Is(err, domain.ErrEntryIDRequired),
		errors.Is(err, domain.ErrTimestampRequired),
		errors.Is(err, domain.ErrTopicRequired),
		errors.Is(err, domain.ErrSubjectRequired),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrMissingPayload),
		errors.Is(err, domain.ErrUnexpectedPayload):
		return ExitError{Code: ExitInvalid, Kind: KindValidation, Err: err}
	default:
		return ExitError{Code: ExitInternal, Kind: KindInternal, Err: err}
	}
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return NormalizeError(err).Code
}

func writeCLIError(w io.Writer, exitErr ExitError, asJSON bool) error {
	if exitErr.Code == 0 {
		return nil
	}
	message := errorMessage(exitErr)
	if asJSON {
		payload := struct {
			Code    int    `json:"code"`
			Kind    string `json:"kind"`
			Message string `json:"message"`
		}{
			Code:    exitErr.Code,
			Kind:    string(exitErr.Kind),
			Message: message,
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	ui := newRenderer(w, false)
	prefix := "Error"
	if exitErr.Kind != "" {
		prefix = fmt.Sprintf("Error (%s)", exitErr.Kind)
	}
	prefix = ui.err(prefix)
	_, err := fmt.Fprintf(w, "%s: %s\n", prefix, message)
	return err
}

func errorMessage(exitErr ExitError) string {
	if exitErr.Message != "" {
		return exitErr.Message
	}
	if exitErr.Err != nil {
		return exitErr.Err.Error()
	}
	return "unknown error"
}
