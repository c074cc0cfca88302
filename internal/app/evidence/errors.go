package evidence

import "errors"

var ErrTopicRequired = errors.New("topic is required")
var ErrInvalidTopic = errors.New("invalid topic name")
var ErrSubjectRequired = errors.New("subject id is required")
var ErrPayloadRequired = errors.New("payload is required")
var ErrPatchRequired = errors.New("patch is required")
var ErrStreamNotFound = errors.New("evidence stream not found")
var ErrSubjectRevoked = errors.New("subject evidence revoked")
var ErrSchemaViolation = errors.New("payload violates topic schema")
