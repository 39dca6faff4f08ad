package curve

import (
	"encoding/hex"

	"golang.org/x/xerrors"
)

// ErrInvalidPoint is returned when bytes parse but do not encode a canonical
// group element.
var ErrInvalidPoint = xerrors.New("curve: invalid group element encoding")

// Identity returns the neutral element of the group.
func Identity() *Point {
	var p Point
	return p.SetZero()
}

// Base returns the fixed ristretto255 base point.
func Base() *Point {
	var p Point
	return p.SetBase()
}

// PointToHex encodes a point as the lowercase hex of its canonical 32-byte
// compressed form.
func PointToHex(p *Point) string {
	return hex.EncodeToString(p.Bytes())
}

// PointFromHex decodes a compressed point. PointFromHex(PointToHex(p))
// recovers p exactly. Malformed hex fails with ErrDeserialization; a
// well-formed buffer that is not a canonical group element fails with
// ErrInvalidPoint. Ristretto decoding only accepts elements of the prime-order
// group, so no separate subgroup check is needed.
func PointFromHex(s string) (*Point, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, xerrors.Errorf("point hex: %w", ErrDeserialization)
	}
	if len(raw) != 32 {
		return nil, xerrors.Errorf("point length %d: %w", len(raw), ErrDeserialization)
	}
	var buf [32]byte
	copy(buf[:], raw)
	var p Point
	if !p.SetBytes(&buf) {
		return nil, xerrors.Errorf("non-canonical point: %w", ErrInvalidPoint)
	}
	return &p, nil
}

// ValidatePoint reports whether p survives an encode/decode round trip, i.e.
// whether it is a canonical element of the prime-order group.
func ValidatePoint(p *Point) bool {
	if p == nil {
		return false
	}
	var buf [32]byte
	copy(buf[:], p.Bytes())
	var q Point
	return q.SetBytes(&buf) && q.Equals(p)
}
