package codec

import (
	"errors"
	"fmt"
)

// ErrUnsupportedKind is returned by Encode when the requested kind is not one
// of the supported wire kinds or the native value cannot represent it.
var ErrUnsupportedKind = errors.New("codec: unsupported kind")

// DecodeError reports a wire value whose shape could not be reconciled with
// any tolerated variant. Required fields are never silently defaulted; they
// fail with this error instead.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "codec: decode: " + e.Reason
}

func decodeErrorf(format string, args ...any) *DecodeError {
	return &DecodeError{Reason: fmt.Sprintf(format, args...)}
}
