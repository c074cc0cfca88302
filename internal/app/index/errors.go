package index

import "errors"

var ErrEmptyLedger = errors.New("ledger has no commits")
var ErrRecordNotFound = errors.New("no indexed entry for subject")
var ErrTopicRequired = errors.New("topic is required")
var ErrSubjectRequired = errors.New("subject id is required")
