package bulletproof

import "github.com/openveil/zkrange/curve"

// ScalarExp yields the successive powers 1, x, x^2, ... of a scalar.
type ScalarExp struct {
	x    *curve.Scalar
	next *curve.Scalar
}

func NewScalarExp(x *curve.Scalar) *ScalarExp {
	var one curve.Scalar
	return &ScalarExp{x: x, next: one.SetOne()}
}

func (s *ScalarExp) Next() *curve.Scalar {
	var out curve.Scalar
	out.Set(s.next)
	s.next.Mul(s.next, s.x)
	return &out
}

// sumOfPowers computes 1 + x + ... + x^(n-1).
func sumOfPowers(x *curve.Scalar, n int) *curve.Scalar {
	var acc curve.Scalar
	acc.SetZero()
	exp := NewScalarExp(x)
	for i := 0; i < n; i++ {
		acc.Add(&acc, exp.Next())
	}
	return &acc
}

// VecPoly1 is a vector-valued degree-1 polynomial As + Bs*X.
type VecPoly1 struct {
	As []*curve.Scalar
	Bs []*curve.Scalar
}

func NewVecPoly1(n int) *VecPoly1 {
	v := &VecPoly1{
		As: make([]*curve.Scalar, n),
		Bs: make([]*curve.Scalar, n),
	}
	for i := 0; i < n; i++ {
		var a, b curve.Scalar
		v.As[i] = a.SetZero()
		v.Bs[i] = b.SetZero()
	}
	return v
}

// InnerProduct computes <l(X), r(X)> as a degree-2 polynomial, with the
// middle coefficient recovered as t1 = <l0+l1, r0+r1> - t0 - t2.
func (v *VecPoly1) InnerProduct(rhs *VecPoly1) *Poly2 {
	t0 := curve.InnerProduct(v.As, rhs.As)
	t2 := curve.InnerProduct(v.Bs, rhs.Bs)

	l0PlusL1 := curve.AddVectors(v.As, v.Bs)
	r0PlusR1 := curve.AddVectors(rhs.As, rhs.Bs)

	var t1 curve.Scalar
	t1.Sub(curve.InnerProduct(l0PlusL1, r0PlusR1), t0)
	t1.Sub(&t1, t2)

	return &Poly2{A: t0, B: &t1, C: t2}
}

func (v *VecPoly1) Eval(x *curve.Scalar) []*curve.Scalar {
	out := make([]*curve.Scalar, len(v.As))
	for i := range v.As {
		var r curve.Scalar
		r.Mul(v.Bs[i], x)
		out[i] = r.Add(v.As[i], &r)
	}
	return out
}

// Poly2 is a degree-2 polynomial A + B*X + C*X^2.
type Poly2 struct {
	A *curve.Scalar
	B *curve.Scalar
	C *curve.Scalar
}

func (p *Poly2) Eval(x *curve.Scalar) *curve.Scalar {
	var r curve.Scalar
	r.Mul(x, p.C)
	r.Add(p.B, &r)
	r.Mul(x, &r)
	return r.Add(p.A, &r)
}

func nextPowerOfTwo(v int) int {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	if v < 1 {
		return 1
	}
	return v
}

func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}
