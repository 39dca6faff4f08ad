package zkrange

import (
	"strconv"

	"golang.org/x/xerrors"

	"github.com/openveil/zkrange/bulletproof"
)

// RangeProofInput is one statement to prove: a secret Value claimed to lie
// in the public interval [Min, Max].
type RangeProofInput struct {
	Value int64
	Min   int64
	Max   int64
}

// ParseRangeProofInput builds an input from decimal strings, for callers
// whose statements arrive over the wire. Anything that is not a base-10
// integer, "50.5" included, fails with ErrInvalidInput.
func ParseRangeProofInput(value, min, max string) (RangeProofInput, error) {
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return RangeProofInput{}, xerrors.Errorf("value %q is not an integer: %w", value, ErrInvalidInput)
	}
	lo, err := strconv.ParseInt(min, 10, 64)
	if err != nil {
		return RangeProofInput{}, xerrors.Errorf("min %q is not an integer: %w", min, ErrInvalidInput)
	}
	hi, err := strconv.ParseInt(max, 10, 64)
	if err != nil {
		return RangeProofInput{}, xerrors.Errorf("max %q is not an integer: %w", max, ErrInvalidInput)
	}
	return RangeProofInput{Value: v, Min: lo, Max: hi}, nil
}

func (in RangeProofInput) validate() error {
	if in.Min >= in.Max {
		return xerrors.Errorf("interval [%d, %d] is empty: %w", in.Min, in.Max, ErrInvalidInput)
	}
	if in.Value < in.Min || in.Value > in.Max {
		return xerrors.Errorf("value %d outside [%d, %d]: %w", in.Value, in.Min, in.Max, bulletproof.ErrValueOutOfRange)
	}
	return nil
}

// spread is the public width of the interval.
func (in RangeProofInput) spread() uint64 {
	return uint64(in.Max - in.Min)
}

// shifted maps the value into [0, spread], the quantity actually proven.
func (in RangeProofInput) shifted() uint64 {
	return uint64(in.Value - in.Min)
}
