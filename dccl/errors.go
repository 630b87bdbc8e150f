// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Use errors.Is to test for a kind; the concrete
// error returned from a codec call always wraps one of these, and most
// also name the field or message that triggered it (a bit-stream
// truncation reports only the bit counts).
var (
	// ErrSchemaError is returned from Load when a descriptor fails
	// validation: bad codec options, an impossible size, or a malformed
	// predicate. A field with no matching codec is reported as
	// ErrUnknownCodec instead. Load makes no check for cyclic
	// required_if predicates.
	ErrSchemaError = errors.New("dccl: schema error")

	// ErrOversizeMessage is returned from Encode when the computed size
	// of a message exceeds the facade's configured payload limit.
	ErrOversizeMessage = errors.New("dccl: oversize message")

	// ErrRequiredFieldMissing is returned from Encode when a field whose
	// required_if predicate evaluates true has no value set.
	ErrRequiredFieldMissing = errors.New("dccl: required field missing")

	// ErrOutOfRange is returned when a numeric value falls outside the
	// field's declared [min, max], or an enum value was not declared.
	ErrOutOfRange = errors.New("dccl: value out of range")

	// ErrTruncatedMessage is returned from Decode when the bitstream
	// runs out of bits before the schema is fully consumed.
	ErrTruncatedMessage = errors.New("dccl: truncated message")

	// ErrInvalidEncoding is returned from Decode for an impossible union
	// case enumerator or an out-of-range decoded value.
	ErrInvalidEncoding = errors.New("dccl: invalid encoding")

	// ErrUnknownSchemaID is returned from Decode when the identity
	// prefix does not match any schema loaded into the facade.
	ErrUnknownSchemaID = errors.New("dccl: unknown schema id")

	// ErrPredicateType is returned when a dynamic condition referenced a
	// sibling or ancestor field that is missing or of the wrong type.
	ErrPredicateType = errors.New("dccl: predicate type error")

	// ErrUnknownCodec is returned from registry resolution when no field
	// codec matches a field's kind, group, and explicit codec name.
	ErrUnknownCodec = errors.New("dccl: unknown codec")
)

// fieldError wraps one of the sentinel kinds with the descriptor path
// that triggered it, the way ts/writer.go wraps its sticky Writer.err
// with a %q-formatted context.
type fieldError struct {
	kind  error
	path  string
	cause error
}

func (e *fieldError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%v: %s: %v", e.kind, e.path, e.cause)
	}
	return fmt.Sprintf("%v: %s", e.kind, e.path)
}

func (e *fieldError) Unwrap() error { return e.kind }

func wrapField(kind error, path string) error {
	return &fieldError{kind: kind, path: path}
}

func wrapFieldCause(kind error, path string, cause error) error {
	return &fieldError{kind: kind, path: path, cause: cause}
}
