package paths

import "errors"

var ErrRepoPathRequired = errors.New("ledger path is required")
