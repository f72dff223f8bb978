package invoker

import "errors"

var (
	ErrNotFunction            = errors.New("member is not a function")
	ErrArityMismatch          = errors.New("argument count does not match function inputs")
	ErrUnsupportedOutputArity = errors.New("decoding of multiple return values is not supported")
	ErrTransport              = errors.New("transport failure")
)
