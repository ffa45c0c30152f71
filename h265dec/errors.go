/*
DESCRIPTION
  errors.go provides the error kinds reported by the h265dec parsers.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package h265dec

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnexpectedEnd indicates a read ran off the end of the payload.
	ErrUnexpectedEnd = errors.New("unexpected end of data")

	// ErrInvalidStartCode indicates no start code could be found in a
	// non-empty byte stream.
	ErrInvalidStartCode = errors.New("no start code in byte stream")

	// ErrRBSPTrailingBits indicates the rbsp_trailing_bits structure was
	// malformed, i.e. no stop bit, or non-zero alignment bits.
	ErrRBSPTrailingBits = errors.New("malformed rbsp_trailing_bits")
)

// SyntaxError describes a syntax element whose parsed value fell outside the
// range mandated by the standard.
type SyntaxError struct {
	Field    string
	Value    int64
	Min, Max int64
}

// Error implements error.
func (e SyntaxError) Error() string {
	return fmt.Sprintf("%s value %d outside range [%d,%d]", e.Field, e.Value, e.Min, e.Max)
}

// MissingParamSetError describes a reference to a parameter set that is not
// present in the parser state.
type MissingParamSetError struct {
	Kind string // "VPS", "SPS" or "PPS".
	ID   uint64
}

// Error implements error.
func (e MissingParamSetError) Error() string {
	return fmt.Sprintf("%s with id %d not in parser state", e.Kind, e.ID)
}

// checkRange returns a SyntaxError if v is outside [min,max].
func checkRange(field string, v, min, max int64) error {
	if v < min || v > max {
		return SyntaxError{Field: field, Value: v, Min: min, Max: max}
	}
	return nil
}
