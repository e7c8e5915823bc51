package ir

import (
	"errors"
)

var (
	ErrParse       = errors.New("parse error")
	ErrCycle       = errors.New("cycle in value graph")
	ErrUnsupported = errors.New("unsupported value")
)
