package domain

import "errors"

var ErrHeadChanged = errors.New("stream head changed")
