package curve

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestPointHexRoundTrip(t *testing.T) {
	assert := assert.New(t)

	var p Point
	p.Rand()
	encoded := PointToHex(&p)
	assert.Len(encoded, 64)

	decoded, err := PointFromHex(encoded)
	require.NoError(t, err)
	assert.True(p.Equals(decoded))
}

func TestPointFromHexRejectsGarbage(t *testing.T) {
	assert := assert.New(t)

	_, err := PointFromHex("not hex at all")
	assert.True(xerrors.Is(err, ErrDeserialization))

	_, err = PointFromHex("abcd")
	assert.True(xerrors.Is(err, ErrDeserialization))

	// The field prime is a syntactically well-formed 32-byte string but not
	// a canonical encoding of any group element.
	_, err = PointFromHex("edffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff7f")
	assert.True(xerrors.Is(err, ErrInvalidPoint))
}

func TestValidatePoint(t *testing.T) {
	assert := assert.New(t)

	assert.True(ValidatePoint(Base()))
	assert.True(ValidatePoint(Identity()))
}

func TestRandomScalarNonZero(t *testing.T) {
	assert := assert.New(t)

	for i := 0; i < 32; i++ {
		s := RandomScalar()
		assert.Equal(1, s.BigInt().Sign())
		assert.True(ScalarToBigInt(s).Cmp(Order) < 0)
	}
}

func TestInverseMatchesFermat(t *testing.T) {
	assert := assert.New(t)

	x := RandomScalar()
	inv := InverseScalar(x)

	exp := new(big.Int).Sub(Order, big.NewInt(2))
	want := new(big.Int).Exp(ScalarToBigInt(x), exp, Order)
	assert.Equal(want, ScalarToBigInt(inv))

	var product Scalar
	product.Mul(x, inv)
	var one Scalar
	one.SetOne()
	assert.True(product.Equals(&one))
}

func TestSubtractionWrapsAtGroupOrder(t *testing.T) {
	assert := assert.New(t)

	var zero, one, diff Scalar
	zero.SetZero()
	one.SetOne()
	diff.Sub(&zero, &one)

	want := new(big.Int).Sub(Order, big.NewInt(1))
	assert.Equal(want, ScalarToBigInt(&diff))
}

func TestScalarFromBigIntBounds(t *testing.T) {
	assert := assert.New(t)

	_, err := ScalarFromBigInt(Order)
	assert.True(xerrors.Is(err, ErrDeserialization))

	_, err = ScalarFromBigInt(big.NewInt(-1))
	assert.True(xerrors.Is(err, ErrDeserialization))

	s, err := ScalarFromBigInt(big.NewInt(123456789))
	require.NoError(t, err)
	assert.Equal(big.NewInt(123456789), ScalarToBigInt(s))
}

func TestScalarPow(t *testing.T) {
	assert := assert.New(t)

	three := NewScalarFromUint64(3)
	assert.Equal(big.NewInt(243), ScalarToBigInt(ScalarPow(three, 5)))
	assert.Equal(big.NewInt(1), ScalarToBigInt(ScalarPow(three, 0)))
	assert.Equal(big.NewInt(3), ScalarToBigInt(ScalarPow(three, 1)))
}

func TestNewScalarFromInt64Negative(t *testing.T) {
	assert := assert.New(t)

	s := NewScalarFromInt64(-5)
	want := new(big.Int).Sub(Order, big.NewInt(5))
	assert.Equal(want, ScalarToBigInt(s))

	assert.Equal(big.NewInt(5), ScalarToBigInt(NewScalarFromInt64(5)))
}

func TestInnerProduct(t *testing.T) {
	assert := assert.New(t)

	a := []*Scalar{NewScalarFromUint64(1), NewScalarFromUint64(2), NewScalarFromUint64(3)}
	b := []*Scalar{NewScalarFromUint64(4), NewScalarFromUint64(5), NewScalarFromUint64(6)}
	assert.Equal(big.NewInt(32), ScalarToBigInt(InnerProduct(a, b)))
}

func TestMultiScalarMulMatchesNaive(t *testing.T) {
	assert := assert.New(t)

	scalars := make([]*Scalar, 4)
	points := make([]*Point, 4)
	for i := range scalars {
		scalars[i] = RandomScalar()
		var p Point
		p.Rand()
		points[i] = &p
	}

	var want Point
	want.SetZero()
	for i := range scalars {
		var term Point
		term.ScalarMult(points[i], scalars[i])
		want.Add(&want, &term)
	}
	assert.True(want.Equals(MultiScalarMul(scalars, points)))
}

func TestAddVectors(t *testing.T) {
	assert := assert.New(t)

	var nearOrder Scalar
	nearOrder.SetBigInt(new(big.Int).Sub(Order, big.NewInt(1)))
	a := []*Scalar{NewScalarFromUint64(1), &nearOrder}
	b := []*Scalar{NewScalarFromUint64(2), NewScalarFromUint64(3)}

	sum := AddVectors(a, b)
	assert.Equal(big.NewInt(3), ScalarToBigInt(sum[0]))
	// ℓ-1 + 3 wraps to 2.
	assert.Equal(big.NewInt(2), ScalarToBigInt(sum[1]))
}
