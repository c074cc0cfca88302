package policytrailsdk

import "errors"

var (
	ErrRepoPathRequired = errors.New("policytrail-sdk: ledger path required")
	ErrIndexNotOpen     = errors.New("policytrail-sdk: index database is not open")
	ErrWatchRunning     = errors.New("policytrail-sdk: index watch already running")
	ErrNotFound         = errors.New("policytrail-sdk: entry not found")
	ErrManifestMismatch = errors.New("policytrail-sdk: config does not match ledger manifest")
)
