package bulletproof

import "golang.org/x/xerrors"

var (
	// ErrInvalidBitsize is returned when a prover is constructed with a bit
	// size outside the supported power-of-two set.
	ErrInvalidBitsize = xerrors.New("bulletproof: bit size must be one of 8, 16, 32, 64")

	// ErrValueOutOfRange is returned during proof generation when a value does
	// not fit the declared range. No proof is produced.
	ErrValueOutOfRange = xerrors.New("bulletproof: value out of range")

	// ErrEmptyBatch is returned when aggregation is attempted over zero
	// statements.
	ErrEmptyBatch = xerrors.New("bulletproof: empty statement batch")
)
