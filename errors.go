package zkrange

import "golang.org/x/xerrors"

var (
	// ErrConfiguration marks invalid static parameters passed to New.
	ErrConfiguration = xerrors.New("zkrange: invalid configuration")

	// ErrInvalidInput marks statements that are malformed before any
	// cryptographic work happens, such as min >= max or non-integer values.
	ErrInvalidInput = xerrors.New("zkrange: invalid input")

	// ErrEmptyBatch is returned when an aggregated proof is requested over
	// zero statements.
	ErrEmptyBatch = xerrors.New("zkrange: empty batch")

	// ErrMalformedData marks wire-level proof data that cannot be decoded.
	ErrMalformedData = xerrors.New("zkrange: malformed proof data")
)
