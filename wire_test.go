package zkrange

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/openveil/zkrange/curve"
)

func TestScalarWireRoundTrip(t *testing.T) {
	assert := assert.New(t)

	s := curve.RandomScalar()
	decoded, err := scalarFromWire(scalarToWire(s))
	require.NoError(t, err)
	assert.True(s.Equals(decoded))
}

func TestScalarFromWireRejectsBadInput(t *testing.T) {
	assert := assert.New(t)

	for _, raw := range []string{"", "abc", "-1", "12.5",
		"7237005577332262213973186563042994240857116359379907606001950938285454250989"} {
		_, err := scalarFromWire(raw)
		assert.True(xerrors.Is(err, ErrMalformedData), "input %q", raw)
	}
}

func TestSplitCommitmentsRejectsBadInput(t *testing.T) {
	assert := assert.New(t)

	_, err := splitCommitments("")
	assert.True(xerrors.Is(err, ErrMalformedData))

	_, err = splitCommitments("zzzz")
	assert.True(xerrors.Is(err, ErrMalformedData))

	var p curve.Point
	p.Rand()
	_, err = splitCommitments(curve.PointToHex(&p) + ",tooshort")
	assert.True(xerrors.Is(err, ErrMalformedData))

	points, err := splitCommitments(curve.PointToHex(&p))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.True(p.Equals(points[0]))
}

func TestUnmarshalEnvelopeRejectsBadInput(t *testing.T) {
	assert := assert.New(t)

	_, err := unmarshalEnvelope("!!! not base64 !!!")
	assert.True(xerrors.Is(err, ErrMalformedData))

	_, err = unmarshalEnvelope(base64.StdEncoding.EncodeToString([]byte("not json")))
	assert.True(xerrors.Is(err, ErrMalformedData))

	_, err = unmarshalEnvelope(base64.StdEncoding.EncodeToString([]byte(`{"buckets":[]}`)))
	assert.True(xerrors.Is(err, ErrMalformedData))

	_, err = unmarshalEnvelope(base64.StdEncoding.EncodeToString(
		[]byte(`{"buckets":[{"bitsize":8,"count":0}]}`)))
	assert.True(xerrors.Is(err, ErrMalformedData))
}

func TestProofRecordSurvivesWireCorruption(t *testing.T) {
	assert := assert.New(t)

	svc := newTestService(t, Options{})
	data, err := svc.GenerateRangeProof(RangeProofInput{Value: 25, Min: 0, Max: 50})
	require.NoError(t, err)
	require.True(t, svc.VerifyRangeProof(data))

	corrupt := *data
	corrupt.Proof = data.Proof[:len(data.Proof)-8]
	assert.False(svc.VerifyRangeProof(&corrupt))

	corrupt = *data
	corrupt.Proof = "AAAA" + data.Proof
	assert.False(svc.VerifyRangeProof(&corrupt))

	corrupt = *data
	corrupt.Commitment = data.Commitment[:32]
	assert.False(svc.VerifyRangeProof(&corrupt))

	corrupt = *data
	corrupt.PublicInputs = nil
	assert.False(svc.VerifyRangeProof(&corrupt))
}

func TestEnvelopeRoundTrip(t *testing.T) {
	assert := assert.New(t)

	svc := newTestService(t, Options{})
	data, err := svc.GenerateAggregatedProof([]RangeProofInput{
		{Value: 25, Min: 0, Max: 50},
		{Value: 75, Min: 50, Max: 100},
		{Value: 40000, Min: 0, Max: 60000},
	})
	require.NoError(t, err)

	buckets, err := unmarshalEnvelope(data.Proof)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(int64(8), buckets[0].Bitsize)
	assert.Equal(2, buckets[0].Count)
	assert.Equal(int64(16), buckets[1].Bitsize)
	assert.Equal(1, buckets[1].Count)

	commitments, err := splitCommitments(data.Commitment)
	require.NoError(t, err)
	assert.Len(commitments, 3)
}
