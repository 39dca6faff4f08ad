package bulletproof

import (
	"fmt"
	"math/bits"

	"github.com/gtank/merlin"

	"github.com/openveil/zkrange/curve"
)

// InnerProductProof proves knowledge of vectors a, b with a claimed inner
// product, revealing only O(log n) group elements. LVec/RVec hold one left
// and right folding commitment per round; A and B are the fully folded
// scalars.
type InnerProductProof struct {
	LVec []*curve.Point
	RVec []*curve.Point
	A    *curve.Scalar
	B    *curve.Scalar
}

// CreateInnerProductProof compresses the vectors a, b into a logarithmic
// proof against the generator vectors gVec, hVec and the commitment base Q.
// gFactors and hFactors are per-generator coefficients folded into the first
// round, which lets the caller pass raw cached generators instead of
// materializing y^(-i)-scaled copies. All slices are rewritten in place, so
// callers pass clones. Length mismatches are programmer errors and panic.
func CreateInnerProductProof(transcript *merlin.Transcript, Q *curve.Point, gFactors, hFactors []*curve.Scalar, gVec, hVec []*curve.Point, aVec, bVec []*curve.Scalar) *InnerProductProof {
	n := len(gVec)
	if len(hVec) != n || len(aVec) != n || len(bVec) != n || len(gFactors) != n || len(hFactors) != n {
		panic(fmt.Sprintf("CreateInnerProductProof invalid vector lengths %d, %d, %d, %d, %d, %d",
			len(gVec), len(hVec), len(aVec), len(bVec), len(gFactors), len(hFactors)))
	}
	if bits.OnesCount(uint(n)) != 1 {
		panic(fmt.Sprintf("CreateInnerProductProof length %d is not a power of two", n))
	}

	innerproductDomainSep(transcript, uint64(n))

	G := gVec
	H := hVec
	a := aVec
	b := bVec

	var LVec, RVec []*curve.Point

	// First round: the generator factors are applied while the commitments
	// are formed, and disappear into the folded generators afterwards.
	if n != 1 {
		n = n / 2
		aL, aR := a[:n], a[n:]
		bL, bR := b[:n], b[n:]
		gL, gR := G[:n], G[n:]
		hL, hR := H[:n], H[n:]

		cL := curve.InnerProduct(aL, bR)
		cR := curve.InnerProduct(aR, bL)

		chainL := make([]*curve.Scalar, 0, 2*n+1)
		for i := range aL {
			var r curve.Scalar
			chainL = append(chainL, r.Mul(aL[i], gFactors[n+i]))
		}
		for i := range bR {
			var r curve.Scalar
			chainL = append(chainL, r.Mul(bR[i], hFactors[i]))
		}
		chainL = append(chainL, cL)
		baseL := make([]*curve.Point, 0, 2*n+1)
		baseL = append(baseL, gR...)
		baseL = append(baseL, hL...)
		baseL = append(baseL, Q)
		L := curve.MultiScalarMul(chainL, baseL)

		chainR := make([]*curve.Scalar, 0, 2*n+1)
		for i := range aR {
			var r curve.Scalar
			chainR = append(chainR, r.Mul(aR[i], gFactors[i]))
		}
		for i := range bL {
			var r curve.Scalar
			chainR = append(chainR, r.Mul(bL[i], hFactors[n+i]))
		}
		chainR = append(chainR, cR)
		baseR := make([]*curve.Point, 0, 2*n+1)
		baseR = append(baseR, gL...)
		baseR = append(baseR, hR...)
		baseR = append(baseR, Q)
		R := curve.MultiScalarMul(chainR, baseR)

		LVec = append(LVec, L)
		RVec = append(RVec, R)
		appendPoint(transcript, "L", L)
		appendPoint(transcript, "R", R)

		u := challengeScalar(transcript, "u")
		uInv := curve.InverseScalar(u)

		for i := 0; i < n; i++ {
			var r1, r2 curve.Scalar
			aL[i].Add(r1.Mul(aL[i], u), r2.Mul(uInv, aR[i]))
			var r3, r4 curve.Scalar
			bL[i].Add(r3.Mul(bL[i], uInv), r4.Mul(u, bR[i]))
			var f1, f2 curve.Scalar
			f1.Mul(uInv, gFactors[i])
			f2.Mul(u, gFactors[n+i])
			gL[i] = curve.MultiScalarMul([]*curve.Scalar{&f1, &f2}, []*curve.Point{gL[i], gR[i]})
			var f3, f4 curve.Scalar
			f3.Mul(u, hFactors[i])
			f4.Mul(uInv, hFactors[n+i])
			hL[i] = curve.MultiScalarMul([]*curve.Scalar{&f3, &f4}, []*curve.Point{hL[i], hR[i]})
		}

		a = aL
		b = bL
		G = gL
		H = hL
	}

	for n != 1 {
		n = n / 2
		aL, aR := a[:n], a[n:]
		bL, bR := b[:n], b[n:]
		gL, gR := G[:n], G[n:]
		hL, hR := H[:n], H[n:]

		cL := curve.InnerProduct(aL, bR)
		cR := curve.InnerProduct(aR, bL)

		chainL := make([]*curve.Scalar, 0, 2*n+1)
		chainL = append(chainL, aL...)
		chainL = append(chainL, bR...)
		chainL = append(chainL, cL)
		baseL := make([]*curve.Point, 0, 2*n+1)
		baseL = append(baseL, gR...)
		baseL = append(baseL, hL...)
		baseL = append(baseL, Q)
		L := curve.MultiScalarMul(chainL, baseL)

		chainR := make([]*curve.Scalar, 0, 2*n+1)
		chainR = append(chainR, aR...)
		chainR = append(chainR, bL...)
		chainR = append(chainR, cR)
		baseR := make([]*curve.Point, 0, 2*n+1)
		baseR = append(baseR, gL...)
		baseR = append(baseR, hR...)
		baseR = append(baseR, Q)
		R := curve.MultiScalarMul(chainR, baseR)

		LVec = append(LVec, L)
		RVec = append(RVec, R)
		appendPoint(transcript, "L", L)
		appendPoint(transcript, "R", R)

		u := challengeScalar(transcript, "u")
		uInv := curve.InverseScalar(u)

		for i := 0; i < n; i++ {
			var r1, r2 curve.Scalar
			aL[i].Add(r1.Mul(aL[i], u), r2.Mul(uInv, aR[i]))
			var r3, r4 curve.Scalar
			bL[i].Add(r3.Mul(bL[i], uInv), r4.Mul(u, bR[i]))
			gL[i] = curve.MultiScalarMul([]*curve.Scalar{uInv, u}, []*curve.Point{gL[i], gR[i]})
			hL[i] = curve.MultiScalarMul([]*curve.Scalar{u, uInv}, []*curve.Point{hL[i], hR[i]})
		}

		a = aL
		b = bL
		G = gL
		H = hL
	}

	return &InnerProductProof{
		LVec: LVec,
		RVec: RVec,
		A:    a[0],
		B:    b[0],
	}
}

// Verify replays the Fiat-Shamir challenges from the recorded L/R pairs,
// folds the generator vectors the same way the prover did (no secret values
// are needed for that), and checks that the commitment P, adjusted by
// u^2*L + u^-2*R per round, matches the reconstruction from the folded
// scalars. Any malformed input yields false, never a panic. gVec and hVec
// must be clones; they are rewritten during folding.
func (p *InnerProductProof) Verify(transcript *merlin.Transcript, Q *curve.Point, gVec, hVec []*curve.Point, P *curve.Point) bool {
	n := len(gVec)
	if n == 0 || len(hVec) != n || bits.OnesCount(uint(n)) != 1 {
		return false
	}
	if p == nil || p.A == nil || p.B == nil || Q == nil || P == nil {
		return false
	}
	rounds := bits.TrailingZeros(uint(n))
	if len(p.LVec) != rounds || len(p.RVec) != rounds {
		return false
	}
	for i := 0; i < rounds; i++ {
		if p.LVec[i] == nil || p.RVec[i] == nil {
			return false
		}
	}

	innerproductDomainSep(transcript, uint64(n))

	var acc curve.Point
	acc.Set(P)
	G := gVec
	H := hVec

	for k := 0; k < rounds; k++ {
		n = n / 2
		gL, gR := G[:n], G[n:]
		hL, hR := H[:n], H[n:]

		appendPoint(transcript, "L", p.LVec[k])
		appendPoint(transcript, "R", p.RVec[k])

		u := challengeScalar(transcript, "u")
		uInv := curve.InverseScalar(u)

		for i := 0; i < n; i++ {
			gL[i] = curve.MultiScalarMul([]*curve.Scalar{uInv, u}, []*curve.Point{gL[i], gR[i]})
			hL[i] = curve.MultiScalarMul([]*curve.Scalar{u, uInv}, []*curve.Point{hL[i], hR[i]})
		}
		G = gL
		H = hL

		var uSq, uInvSq curve.Scalar
		uSq.Mul(u, u)
		uInvSq.Mul(uInv, uInv)
		adj := curve.MultiScalarMul(
			[]*curve.Scalar{&uSq, &uInvSq},
			[]*curve.Point{p.LVec[k], p.RVec[k]},
		)
		acc.Add(&acc, adj)
	}

	var ab curve.Scalar
	ab.Mul(p.A, p.B)
	expected := curve.MultiScalarMul(
		[]*curve.Scalar{p.A, p.B, &ab},
		[]*curve.Point{G[0], H[0], Q},
	)
	return acc.Equals(expected)
}
