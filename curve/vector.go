package curve

import "fmt"

// MultiScalarMul computes sum(scalars[i] * points[i]). The two slices must
// have equal length; a mismatch is a programmer error and panics.
func MultiScalarMul(scalars []*Scalar, points []*Point) *Point {
	if len(scalars) != len(points) {
		panic(fmt.Sprintf("MultiScalarMul length mismatch %d, %d", len(scalars), len(points)))
	}
	var r Point
	r.SetZero()
	for i := range scalars {
		var t Point
		t.ScalarMult(points[i], scalars[i])
		r.Add(&r, &t)
	}
	return &r
}

// InnerProduct computes sum(a[i] * b[i]).
func InnerProduct(a, b []*Scalar) *Scalar {
	if len(a) != len(b) {
		panic(fmt.Sprintf("InnerProduct length mismatch %d, %d", len(a), len(b)))
	}
	var acc Scalar
	acc.SetZero()
	for i := range a {
		var t Scalar
		acc.Add(&acc, t.Mul(a[i], b[i]))
	}
	return &acc
}

// AddVectors computes the componentwise sum a + b.
func AddVectors(a, b []*Scalar) []*Scalar {
	if len(a) != len(b) {
		panic(fmt.Sprintf("AddVectors length mismatch %d, %d", len(a), len(b)))
	}
	out := make([]*Scalar, len(a))
	for i := range a {
		var t Scalar
		out[i] = t.Add(a[i], b[i])
	}
	return out
}

// ClonePoints returns an independent copy of a point slice. The inner-product
// folding rewrites its generator slices in place, so shared caches hand out
// clones.
func ClonePoints(points []*Point) []*Point {
	out := make([]*Point, len(points))
	for i := range points {
		var p Point
		out[i] = p.Set(points[i])
	}
	return out
}
