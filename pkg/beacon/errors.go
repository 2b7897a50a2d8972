// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package beacon

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedVersion is reported for beacons whose version differs from Version.
	ErrUnsupportedVersion = errors.New("unsupported beacon version")

	// ErrMissingField is reported if the flags announce a field which is not present.
	ErrMissingField = errors.New("missing beacon field")

	// ErrMalformedEncoding is reported for structurally invalid CBOR, e.g., a wrong array length,
	// an unexpected major type or trailing data.
	ErrMalformedEncoding = errors.New("malformed beacon encoding")
)

// DecodeError describes why a beacon could not be decoded. Its Kind is one of the ErrUnsupportedVersion,
// ErrMissingField or ErrMalformedEncoding errors and can be checked by errors.Is.
type DecodeError struct {
	Kind  error
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Field)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is reports whether target is this DecodeError's Kind.
func (e *DecodeError) Is(target error) bool {
	return target == e.Kind
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func malformed(field string, err error) error {
	return &DecodeError{Kind: ErrMalformedEncoding, Field: field, Err: err}
}

func missing(field string) error {
	return &DecodeError{Kind: ErrMissingField, Field: field}
}
