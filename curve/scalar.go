// Package curve provides the scalar-field and group-element layer used by
// the range-proof engine. Scalars are integers modulo the prime order of the
// ristretto255 group; points are elements of that prime-order group with a
// canonical 32-byte compressed encoding.
package curve

import (
	"encoding/binary"
	"math/big"

	"github.com/bwesterb/go-ristretto"
	"golang.org/x/xerrors"
)

type Scalar = ristretto.Scalar

type Point = ristretto.Point

// Order is the prime order of the ristretto255 group,
// 2^252 + 27742317777372353535851937790883648493. It is the single modulus
// used for every scalar computation in this module.
var Order, _ = new(big.Int).SetString("7237005577332262213973186563042994240857116359379907606001950938285454250989", 10)

// ErrDeserialization is returned when externally supplied bytes cannot be
// parsed at all (bad hex, wrong length, out-of-range integer).
var ErrDeserialization = xerrors.New("curve: malformed serialized data")

// RandomScalar returns a uniform scalar in [1, Order) from a cryptographically
// secure source. Zero is rejected by resampling.
func RandomScalar() *Scalar {
	var s Scalar
	for {
		s.Rand()
		if s.IsNonZeroI() == 1 {
			return &s
		}
	}
}

func NewScalarFromUint64(v uint64) *Scalar {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	var s Scalar
	return s.SetBytes(&buf)
}

// NewScalarFromInt64 reduces a possibly negative integer into [0, Order).
func NewScalarFromInt64(v int64) *Scalar {
	if v >= 0 {
		return NewScalarFromUint64(uint64(v))
	}
	var s Scalar
	return s.SetBigInt(new(big.Int).Add(Order, big.NewInt(v)))
}

// ScalarFromBigInt parses a canonical scalar. Values outside [0, Order) are
// rejected rather than silently reduced, so that wire data has exactly one
// accepted representation.
func ScalarFromBigInt(x *big.Int) (*Scalar, error) {
	if x == nil || x.Sign() < 0 || x.Cmp(Order) >= 0 {
		return nil, xerrors.Errorf("scalar outside [0, order): %w", ErrDeserialization)
	}
	var s Scalar
	return s.SetBigInt(x), nil
}

func ScalarToBigInt(s *Scalar) *big.Int {
	return s.BigInt()
}

// ScalarPow computes x^e by square-and-multiply. The exponent is public in
// every call site, so variable time is acceptable.
func ScalarPow(x *Scalar, e uint64) *Scalar {
	var result, aux Scalar
	result.SetOne()
	aux.Set(x)
	for e > 0 {
		if e&1 == 1 {
			result.Mul(&result, &aux)
		}
		e >>= 1
		aux.Mul(&aux, &aux)
	}
	return &result
}

// InverseScalar returns x^-1 mod Order. It agrees with the Fermat inverse
// x^(Order-2); the inverse of zero is zero.
func InverseScalar(x *Scalar) *Scalar {
	var s Scalar
	return s.Inverse(x)
}

// ScalarFromWide reduces up to 64 uniform bytes into a scalar, for challenge
// derivation.
func ScalarFromWide(data []byte) *Scalar {
	var buf [64]byte
	copy(buf[:], data)
	var s Scalar
	return s.SetReduced(&buf)
}
