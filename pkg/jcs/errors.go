package jcs

import "errors"

var ErrNonFiniteNumber = errors.New("number is not finite")
var ErrUnsupportedType = errors.New("unsupported value type")
var ErrInvalidUTF8 = errors.New("string is not valid utf-8")
var ErrAmbiguousKey = errors.New("object keys collide under nfc normalization")
var ErrTooDeep = errors.New("nesting depth limit exceeded")
var ErrParse = errors.New("invalid json text")
