package bulletproof

import (
	"golang.org/x/xerrors"

	"github.com/openveil/zkrange/curve"
)

// RangeProof proves that every committed value in a batch lies in
// [0, 2^bitsize), without revealing the values. The structure is opaque and
// immutable once created.
type RangeProof struct {
	A  *curve.Point
	S  *curve.Point
	T1 *curve.Point
	T2 *curve.Point

	// T is the claimed value t(x) of the committed polynomial, Taux its
	// blinding, Mu the combined blinding of the bit commitments.
	T    *curve.Scalar
	Taux *curve.Scalar
	Mu   *curve.Scalar

	InnerProduct *InnerProductProof
}

// Protocol is a range-proof protocol instance fixed to one bit size. It is
// stateless apart from the shared read-only generator caches, so one instance
// may be used concurrently.
type Protocol struct {
	n      int64
	pcGens *PedersenGens
	bpGens *BulletproofGens
}

// NewProtocol fails fast with ErrInvalidBitsize unless bitsize is one of the
// supported powers of two.
func NewProtocol(bitsize int64, pc *PedersenGens, bp *BulletproofGens) (*Protocol, error) {
	switch bitsize {
	case 8, 16, 32, 64:
	default:
		return nil, xerrors.Errorf("bit size %d: %w", bitsize, ErrInvalidBitsize)
	}
	return &Protocol{n: bitsize, pcGens: pc, bpGens: bp}, nil
}

func (p *Protocol) Bitsize() int64 { return p.n }

// Prove generates one aggregated proof that every values[j] lies in
// [0, 2^bitsize), committed with blindings[j]. The batch is padded internally
// to the next power of two with zero values under zero blinding, whose
// commitments are the identity point; verifiers reconstruct that padding from
// the batch size alone. Returned commitments include the padding entries, in
// input order.
func (p *Protocol) Prove(values []uint64, blindings []*curve.Scalar) (*RangeProof, []*curve.Point, error) {
	if len(values) == 0 {
		return nil, nil, xerrors.Errorf("prove: %w", ErrEmptyBatch)
	}
	if len(values) != len(blindings) {
		return nil, nil, xerrors.Errorf("prove: %d values but %d blindings", len(values), len(blindings))
	}
	for _, v := range values {
		if p.n < 64 && v>>uint(p.n) != 0 {
			return nil, nil, xerrors.Errorf("value %d exceeds %d bits: %w", v, p.n, ErrValueOutOfRange)
		}
	}

	values = padValues(values)
	blindings = padBlindings(blindings, len(values))
	m := len(values)
	nm := int(p.n) * m

	gVec, hVec := p.bpGens.Vectors(nm)

	transcript := newTranscript()
	rangeproofDomainSep(transcript, p.n, int64(m))

	commitments := make([]*curve.Point, m)
	for j := range values {
		commitments[j] = p.pcGens.Commit(curve.NewScalarFromUint64(values[j]), blindings[j])
		appendPoint(transcript, "V", commitments[j])
	}

	// A = alpha*BBlinding + <aL, G> + <aR, H>. With aR = aL - 1 each bit
	// contributes G_k when set and -H_k when clear.
	alpha := curve.RandomScalar()
	var A curve.Point
	A.ScalarMult(p.pcGens.BBlinding, alpha)
	for j, v := range values {
		for i := 0; i < int(p.n); i++ {
			k := j*int(p.n) + i
			var term curve.Point
			if (v>>uint(i))&1 == 1 {
				term.Set(gVec[k])
			} else {
				term.Neg(hVec[k])
			}
			A.Add(&A, &term)
		}
	}

	sL := make([]*curve.Scalar, nm)
	sR := make([]*curve.Scalar, nm)
	for k := 0; k < nm; k++ {
		sL[k] = curve.RandomScalar()
		sR[k] = curve.RandomScalar()
	}
	rho := curve.RandomScalar()

	// S = rho*BBlinding + <sL, G> + <sR, H>
	sScalars := append([]*curve.Scalar{rho}, sL...)
	sScalars = append(sScalars, sR...)
	sPoints := append([]*curve.Point{p.pcGens.BBlinding}, gVec...)
	sPoints = append(sPoints, hVec...)
	S := curve.MultiScalarMul(sScalars, sPoints)

	appendPoint(transcript, "A", &A)
	appendPoint(transcript, "S", S)
	y := challengeScalar(transcript, "y")
	z := challengeScalar(transcript, "z")

	// l(X) = aL - z*1 + sL*X
	// r(X) = y^k o (aR + z*1 + sR*X) + z^(2+j)*2^i
	var zz curve.Scalar
	zz.Mul(z, z)
	lPoly := NewVecPoly1(nm)
	rPoly := NewVecPoly1(nm)
	expY := NewScalarExp(y)
	for j, v := range values {
		var offsetZZ curve.Scalar
		offsetZZ.Mul(&zz, curve.ScalarPow(z, uint64(j)))
		var exp2 curve.Scalar
		exp2.SetOne()
		for i := 0; i < int(p.n); i++ {
			k := j*int(p.n) + i
			aLk := curve.NewScalarFromUint64((v >> uint(i)) & 1)
			var one, aRk curve.Scalar
			one.SetOne()
			aRk.Sub(aLk, &one)

			lPoly.As[k].Sub(aLk, z)
			lPoly.Bs[k].Set(sL[k])

			yk := expY.Next()
			var t1, t2 curve.Scalar
			t1.Add(&aRk, z)
			t1.Mul(yk, &t1)
			t2.Mul(&offsetZZ, &exp2)
			rPoly.As[k].Add(&t1, &t2)
			rPoly.Bs[k].Mul(yk, sR[k])

			exp2.Add(&exp2, &exp2)
		}
	}

	tPoly := lPoly.InnerProduct(rPoly)
	tau1 := curve.RandomScalar()
	tau2 := curve.RandomScalar()
	T1 := p.pcGens.Commit(tPoly.B, tau1)
	T2 := p.pcGens.Commit(tPoly.C, tau2)

	appendPoint(transcript, "T_1", T1)
	appendPoint(transcript, "T_2", T2)
	x := challengeScalar(transcript, "x")

	// taux = tau1*x + tau2*x^2 + sum_j z^(2+j)*blinding_j
	var taux, xx curve.Scalar
	xx.Mul(x, x)
	taux.Mul(tau2, &xx)
	var t1x curve.Scalar
	t1x.Mul(tau1, x)
	taux.Add(&taux, &t1x)
	zExp := NewScalarExp(z)
	for j := range blindings {
		var term curve.Scalar
		term.Mul(&zz, zExp.Next())
		term.Mul(&term, blindings[j])
		taux.Add(&taux, &term)
	}

	var mu curve.Scalar
	mu.Mul(rho, x)
	mu.Add(alpha, &mu)

	tHat := tPoly.Eval(x)
	lVec := lPoly.Eval(x)
	rVec := rPoly.Eval(x)

	appendScalar(transcript, "t_x", tHat)
	appendScalar(transcript, "t_x_blinding", &taux)
	appendScalar(transcript, "e_blinding", &mu)
	w := challengeScalar(transcript, "w")
	var Q curve.Point
	Q.ScalarMult(p.pcGens.B, w)

	gFactors := make([]*curve.Scalar, nm)
	hFactors := make([]*curve.Scalar, nm)
	invY := curve.InverseScalar(y)
	expInvY := NewScalarExp(invY)
	for k := 0; k < nm; k++ {
		var one curve.Scalar
		gFactors[k] = one.SetOne()
		hFactors[k] = expInvY.Next()
	}
	ipp := CreateInnerProductProof(transcript, &Q, gFactors, hFactors, gVec, hVec, lVec, rVec)

	return &RangeProof{
		A:            &A,
		S:            S,
		T1:           T1,
		T2:           T2,
		T:            tHat,
		Taux:         &taux,
		Mu:           &mu,
		InnerProduct: ipp,
	}, commitments, nil
}

// Verify checks an aggregated range proof against the full (padded) list of
// value commitments. It is a pure function of the public transcript: it
// recomputes the challenges, checks the polynomial commitment equation
//
//	T*B + Taux*BBlinding == sum_j z^(2+j)*V_j + delta(y,z)*B + x*T1 + x^2*T2
//
// and then verifies the inner-product proof against the reconstructed
// commitment over the y^(-k)-scaled H generators. Malformed or tampered data
// yields false, never a panic.
func (p *Protocol) Verify(commitments []*curve.Point, proof *RangeProof) bool {
	if !wellFormed(commitments, proof) {
		return false
	}
	m := len(commitments)
	nm := int(p.n) * m
	gVec, hVec := p.bpGens.Vectors(nm)

	transcript := newTranscript()
	rangeproofDomainSep(transcript, p.n, int64(m))
	for j := range commitments {
		appendPoint(transcript, "V", commitments[j])
	}
	appendPoint(transcript, "A", proof.A)
	appendPoint(transcript, "S", proof.S)
	y := challengeScalar(transcript, "y")
	z := challengeScalar(transcript, "z")
	appendPoint(transcript, "T_1", proof.T1)
	appendPoint(transcript, "T_2", proof.T2)
	x := challengeScalar(transcript, "x")

	var zz, xx curve.Scalar
	zz.Mul(z, z)
	xx.Mul(x, x)

	// delta(y,z) = (z - z^2)*<1, y^(nm)> - z^3*<1, 2^n>*<1, z^m>
	two := curve.NewScalarFromUint64(2)
	var delta, zCubedTerm curve.Scalar
	delta.Sub(z, &zz)
	delta.Mul(&delta, sumOfPowers(y, nm))
	zCubedTerm.Mul(z, &zz)
	zCubedTerm.Mul(&zCubedTerm, sumOfPowers(two, int(p.n)))
	zCubedTerm.Mul(&zCubedTerm, sumOfPowers(z, m))
	delta.Sub(&delta, &zCubedTerm)

	lhs := p.pcGens.Commit(proof.T, proof.Taux)
	rhsScalars := make([]*curve.Scalar, 0, m+3)
	rhsPoints := make([]*curve.Point, 0, m+3)
	rhsScalars = append(rhsScalars, &delta, x, &xx)
	rhsPoints = append(rhsPoints, p.pcGens.B, proof.T1, proof.T2)
	zExp := NewScalarExp(z)
	for j := range commitments {
		var c curve.Scalar
		c.Mul(&zz, zExp.Next())
		rhsScalars = append(rhsScalars, &c)
		rhsPoints = append(rhsPoints, commitments[j])
	}
	if !lhs.Equals(curve.MultiScalarMul(rhsScalars, rhsPoints)) {
		return false
	}

	appendScalar(transcript, "t_x", proof.T)
	appendScalar(transcript, "t_x_blinding", proof.Taux)
	appendScalar(transcript, "e_blinding", proof.Mu)
	w := challengeScalar(transcript, "w")
	var Q curve.Point
	Q.ScalarMult(p.pcGens.B, w)

	// Scale H into H'_k = y^(-k)*H_k, the generator basis the prover folded.
	invY := curve.InverseScalar(y)
	expInvY := NewScalarExp(invY)
	for k := 0; k < nm; k++ {
		var scaled curve.Point
		scaled.ScalarMult(hVec[k], expInvY.Next())
		hVec[k] = &scaled
	}

	// P = A + x*S - z*sum(G) + sum_k (z*y^k + z^(2+j)*2^i)*H'_k
	//     - mu*BBlinding + T*Q
	pScalars := make([]*curve.Scalar, 0, 2*nm+4)
	pPoints := make([]*curve.Point, 0, 2*nm+4)
	var one, minusZ, minusMu curve.Scalar
	one.SetOne()
	minusZ.Neg(z)
	minusMu.Neg(proof.Mu)
	pScalars = append(pScalars, &one, x)
	pPoints = append(pPoints, proof.A, proof.S)
	for k := 0; k < nm; k++ {
		pScalars = append(pScalars, &minusZ)
		pPoints = append(pPoints, gVec[k])
	}
	expY := NewScalarExp(y)
	zExp = NewScalarExp(z)
	for j := 0; j < m; j++ {
		var offsetZZ curve.Scalar
		offsetZZ.Mul(&zz, zExp.Next())
		var exp2 curve.Scalar
		exp2.SetOne()
		for i := 0; i < int(p.n); i++ {
			k := j*int(p.n) + i
			var c, d curve.Scalar
			c.Mul(z, expY.Next())
			d.Mul(&offsetZZ, &exp2)
			c.Add(&c, &d)
			pScalars = append(pScalars, &c)
			pPoints = append(pPoints, hVec[k])
			exp2.Add(&exp2, &exp2)
		}
	}
	pScalars = append(pScalars, &minusMu, proof.T)
	pPoints = append(pPoints, p.pcGens.BBlinding, &Q)
	P := curve.MultiScalarMul(pScalars, pPoints)

	return proof.InnerProduct.Verify(transcript, &Q, gVec, hVec, P)
}

func wellFormed(commitments []*curve.Point, proof *RangeProof) bool {
	if proof == nil || proof.InnerProduct == nil {
		return false
	}
	if proof.A == nil || proof.S == nil || proof.T1 == nil || proof.T2 == nil {
		return false
	}
	if proof.T == nil || proof.Taux == nil || proof.Mu == nil {
		return false
	}
	if len(commitments) == 0 || !isPowerOfTwo(len(commitments)) {
		return false
	}
	for _, c := range commitments {
		if c == nil {
			return false
		}
	}
	return true
}

func padValues(values []uint64) []uint64 {
	padded := nextPowerOfTwo(len(values))
	for len(values) < padded {
		values = append(values, 0)
	}
	return values
}

func padBlindings(blindings []*curve.Scalar, total int) []*curve.Scalar {
	for len(blindings) < total {
		var zero curve.Scalar
		blindings = append(blindings, zero.SetZero())
	}
	return blindings
}
