package zkrange

import (
	"encoding/base64"
	"encoding/json"
	"math/big"
	"strings"

	"golang.org/x/xerrors"

	"github.com/openveil/zkrange/bulletproof"
	"github.com/openveil/zkrange/curve"
)

// PublicInputs is the interval a commitment is claimed to lie in, carried
// alongside the proof in the same order as the commitments.
type PublicInputs struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// RangeProofData is the portable form of a proof: hex-encoded value
// commitments (comma-joined for aggregates), the base64 proof envelope, and
// the public intervals.
type RangeProofData struct {
	Commitment   string         `json:"commitment"`
	Proof        string         `json:"proof"`
	PublicInputs []PublicInputs `json:"publicInputs"`
}

type innerProductWire struct {
	L []string `json:"l"`
	R []string `json:"r"`
	A string   `json:"a"`
	B string   `json:"b"`
}

type proofWire struct {
	A            string           `json:"a"`
	S            string           `json:"s"`
	T1           string           `json:"t1"`
	T2           string           `json:"t2"`
	T            string           `json:"t"`
	Taux         string           `json:"taux"`
	Mu           string           `json:"mu"`
	InnerProduct innerProductWire `json:"innerProduct"`
}

type bucketWire struct {
	Bitsize int64     `json:"bitsize"`
	Count   int       `json:"count"`
	Proof   proofWire `json:"proof"`
}

type envelopeWire struct {
	Buckets []bucketWire `json:"buckets"`
}

func scalarToWire(s *curve.Scalar) string {
	return curve.ScalarToBigInt(s).String()
}

func scalarFromWire(s string) (*curve.Scalar, error) {
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, xerrors.Errorf("scalar %q: %w", s, ErrMalformedData)
	}
	sc, err := curve.ScalarFromBigInt(x)
	if err != nil {
		return nil, xerrors.Errorf("scalar %q: %w", s, ErrMalformedData)
	}
	return sc, nil
}

func pointsToWire(points []*curve.Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = curve.PointToHex(p)
	}
	return out
}

func pointsFromWire(encoded []string) ([]*curve.Point, error) {
	out := make([]*curve.Point, len(encoded))
	for i, s := range encoded {
		p, err := curve.PointFromHex(s)
		if err != nil {
			return nil, xerrors.Errorf("point %d: %w", i, ErrMalformedData)
		}
		out[i] = p
	}
	return out, nil
}

func proofToWire(p *bulletproof.RangeProof) proofWire {
	return proofWire{
		A:    curve.PointToHex(p.A),
		S:    curve.PointToHex(p.S),
		T1:   curve.PointToHex(p.T1),
		T2:   curve.PointToHex(p.T2),
		T:    scalarToWire(p.T),
		Taux: scalarToWire(p.Taux),
		Mu:   scalarToWire(p.Mu),
		InnerProduct: innerProductWire{
			L: pointsToWire(p.InnerProduct.LVec),
			R: pointsToWire(p.InnerProduct.RVec),
			A: scalarToWire(p.InnerProduct.A),
			B: scalarToWire(p.InnerProduct.B),
		},
	}
}

func proofFromWire(w proofWire) (*bulletproof.RangeProof, error) {
	points := make([]*curve.Point, 4)
	for i, s := range []string{w.A, w.S, w.T1, w.T2} {
		p, err := curve.PointFromHex(s)
		if err != nil {
			return nil, xerrors.Errorf("proof point: %w", ErrMalformedData)
		}
		points[i] = p
	}
	scalars := make([]*curve.Scalar, 3)
	for i, s := range []string{w.T, w.Taux, w.Mu} {
		sc, err := scalarFromWire(s)
		if err != nil {
			return nil, err
		}
		scalars[i] = sc
	}
	if len(w.InnerProduct.L) != len(w.InnerProduct.R) {
		return nil, xerrors.Errorf("inner product rounds mismatch: %w", ErrMalformedData)
	}
	lVec, err := pointsFromWire(w.InnerProduct.L)
	if err != nil {
		return nil, err
	}
	rVec, err := pointsFromWire(w.InnerProduct.R)
	if err != nil {
		return nil, err
	}
	ippA, err := scalarFromWire(w.InnerProduct.A)
	if err != nil {
		return nil, err
	}
	ippB, err := scalarFromWire(w.InnerProduct.B)
	if err != nil {
		return nil, err
	}
	return &bulletproof.RangeProof{
		A:    points[0],
		S:    points[1],
		T1:   points[2],
		T2:   points[3],
		T:    scalars[0],
		Taux: scalars[1],
		Mu:   scalars[2],
		InnerProduct: &bulletproof.InnerProductProof{
			LVec: lVec,
			RVec: rVec,
			A:    ippA,
			B:    ippB,
		},
	}, nil
}

// marshalEnvelope serializes the proof envelope, minus commitments, which
// travel separately in the Commitment field.
func marshalEnvelope(agg *bulletproof.AggregatedProof) (string, error) {
	env := envelopeWire{Buckets: make([]bucketWire, len(agg.Buckets))}
	for i, b := range agg.Buckets {
		env.Buckets[i] = bucketWire{
			Bitsize: b.Bitsize,
			Count:   b.Count,
			Proof:   proofToWire(b.Proof),
		}
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return "", xerrors.Errorf("marshal proof envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// decodedBucket is a deserialized bucket before its commitments are
// reattached from the Commitment field.
type decodedBucket struct {
	Bitsize int64
	Count   int
	Proof   *bulletproof.RangeProof
}

func unmarshalEnvelope(encoded string) ([]decodedBucket, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, xerrors.Errorf("proof base64: %w", ErrMalformedData)
	}
	var env envelopeWire
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, xerrors.Errorf("proof envelope: %w", ErrMalformedData)
	}
	if len(env.Buckets) == 0 {
		return nil, xerrors.Errorf("proof envelope has no buckets: %w", ErrMalformedData)
	}
	buckets := make([]decodedBucket, len(env.Buckets))
	for i, b := range env.Buckets {
		if b.Count <= 0 {
			return nil, xerrors.Errorf("bucket %d count %d: %w", i, b.Count, ErrMalformedData)
		}
		proof, err := proofFromWire(b.Proof)
		if err != nil {
			return nil, err
		}
		buckets[i] = decodedBucket{Bitsize: b.Bitsize, Count: b.Count, Proof: proof}
	}
	return buckets, nil
}

func joinCommitments(points []*curve.Point) string {
	return strings.Join(pointsToWire(points), ",")
}

func splitCommitments(s string) ([]*curve.Point, error) {
	if s == "" {
		return nil, xerrors.Errorf("empty commitment field: %w", ErrMalformedData)
	}
	return pointsFromWire(strings.Split(s, ","))
}

func nextPow2(n int) int {
	k := 1
	for k < n {
		k <<= 1
	}
	return k
}
