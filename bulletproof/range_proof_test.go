package bulletproof

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/openveil/zkrange/curve"
)

func testProtocol(t *testing.T, bitsize int64) *Protocol {
	p, err := NewProtocol(bitsize, NewPedersenGens(), NewBulletproofGens())
	require.NoError(t, err)
	return p
}

func TestNewProtocolBitsize(t *testing.T) {
	assert := assert.New(t)

	for _, bits := range []int64{8, 16, 32, 64} {
		_, err := NewProtocol(bits, NewPedersenGens(), NewBulletproofGens())
		assert.NoError(err)
	}
	for _, bits := range []int64{0, 1, 7, 12, 128, -8} {
		_, err := NewProtocol(bits, NewPedersenGens(), NewBulletproofGens())
		assert.True(xerrors.Is(err, ErrInvalidBitsize))
	}
}

func TestRangeProofEveryValueAt8Bits(t *testing.T) {
	assert := assert.New(t)

	protocol := testProtocol(t, 8)
	for v := uint64(0); v < 256; v++ {
		proof, commitments, err := protocol.Prove([]uint64{v}, []*curve.Scalar{curve.RandomScalar()})
		require.NoError(t, err)
		assert.True(protocol.Verify(commitments, proof), "value %d", v)
	}
}

func TestRangeProofRejectsOversizedValue(t *testing.T) {
	assert := assert.New(t)

	protocol := testProtocol(t, 8)
	_, _, err := protocol.Prove([]uint64{256}, []*curve.Scalar{curve.RandomScalar()})
	assert.True(xerrors.Is(err, ErrValueOutOfRange))

	protocol = testProtocol(t, 32)
	_, _, err = protocol.Prove([]uint64{1 << 32}, []*curve.Scalar{curve.RandomScalar()})
	assert.True(xerrors.Is(err, ErrValueOutOfRange))
}

func TestRangeProof64BitBoundary(t *testing.T) {
	assert := assert.New(t)

	protocol := testProtocol(t, 64)
	proof, commitments, err := protocol.Prove(
		[]uint64{^uint64(0)}, []*curve.Scalar{curve.RandomScalar()})
	require.NoError(t, err)
	assert.True(protocol.Verify(commitments, proof))
}

func TestRangeProofEmptyBatch(t *testing.T) {
	assert := assert.New(t)

	protocol := testProtocol(t, 8)
	_, _, err := protocol.Prove(nil, nil)
	assert.True(xerrors.Is(err, ErrEmptyBatch))
}

func TestRangeProofAggregatedWithPadding(t *testing.T) {
	assert := assert.New(t)

	protocol := testProtocol(t, 8)
	values := []uint64{1, 200, 255}
	blindings := []*curve.Scalar{curve.RandomScalar(), curve.RandomScalar(), curve.RandomScalar()}

	proof, commitments, err := protocol.Prove(values, blindings)
	require.NoError(t, err)
	// Padded to the next power of two with identity commitments.
	assert.Len(commitments, 4)
	assert.True(commitments[3].Equals(curve.Identity()))
	assert.True(protocol.Verify(commitments, proof))
}

func TestRangeProofCommitmentOpensCorrectly(t *testing.T) {
	assert := assert.New(t)

	pg := NewPedersenGens()
	protocol := testProtocol(t, 16)
	blinding := curve.RandomScalar()
	_, commitments, err := protocol.Prove([]uint64{40000}, []*curve.Scalar{blinding})
	require.NoError(t, err)
	assert.True(commitments[0].Equals(pg.Commit(curve.NewScalarFromUint64(40000), blinding)))
}

func TestRangeProofRejectsTampering(t *testing.T) {
	assert := assert.New(t)

	protocol := testProtocol(t, 8)
	values := []uint64{42, 117}
	blindings := []*curve.Scalar{curve.RandomScalar(), curve.RandomScalar()}
	proof, commitments, err := protocol.Prove(values, blindings)
	require.NoError(t, err)
	require.True(t, protocol.Verify(commitments, proof))

	var randPoint curve.Point
	randPoint.Rand()

	cases := map[string]func(p *RangeProof){
		"A":    func(p *RangeProof) { p.A = &randPoint },
		"S":    func(p *RangeProof) { p.S = &randPoint },
		"T1":   func(p *RangeProof) { p.T1 = &randPoint },
		"T2":   func(p *RangeProof) { p.T2 = &randPoint },
		"T":    func(p *RangeProof) { p.T = curve.RandomScalar() },
		"Taux": func(p *RangeProof) { p.Taux = curve.RandomScalar() },
		"Mu":   func(p *RangeProof) { p.Mu = curve.RandomScalar() },
		"ipp":  func(p *RangeProof) { p.InnerProduct.A = curve.RandomScalar() },
	}
	for name, mutate := range cases {
		tampered := *proof
		ippCopy := *proof.InnerProduct
		tampered.InnerProduct = &ippCopy
		mutate(&tampered)
		assert.False(protocol.Verify(commitments, &tampered), "field %s", name)
	}

	// Swapped commitment.
	swapped := []*curve.Point{commitments[1], commitments[0]}
	assert.False(protocol.Verify(swapped, proof))

	// Wrong batch size.
	assert.False(protocol.Verify(commitments[:1], proof))
	assert.False(protocol.Verify(nil, proof))
	assert.False(protocol.Verify(commitments, nil))
}

func TestRangeProofDifferentValueFails(t *testing.T) {
	assert := assert.New(t)

	pg := NewPedersenGens()
	protocol := testProtocol(t, 8)
	blinding := curve.RandomScalar()
	proof, _, err := protocol.Prove([]uint64{42}, []*curve.Scalar{blinding})
	require.NoError(t, err)

	// The proof is bound to the commitment of 42, not of 43.
	other := pg.Commit(curve.NewScalarFromUint64(43), blinding)
	assert.False(protocol.Verify([]*curve.Point{other}, proof))
}
