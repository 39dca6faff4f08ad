package bulletproof

import (
	"sync"

	"github.com/dchest/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/openveil/zkrange/curve"
)

const pedersenBlindingDomainTag = "zkrange.pedersen.blinding"

// PedersenGens holds the two generators of the Pedersen commitment scheme.
// B commits the value, BBlinding the blinding factor. BBlinding is derived
// from B by hashing to the curve, so nobody knows a discrete-log relation
// between them.
type PedersenGens struct {
	B         *curve.Point
	BBlinding *curve.Point
}

func NewPedersenGens() *PedersenGens {
	base := curve.Base()
	return &PedersenGens{
		B:         base,
		BBlinding: hashToPoint(pedersenBlindingDomainTag, base.Bytes()),
	}
}

// Commit computes value*B + blinding*BBlinding. Commitments are additively
// homomorphic: Commit(v1,b1) + Commit(v2,b2) == Commit(v1+v2, b1+b2).
func (pg *PedersenGens) Commit(value, blinding *curve.Scalar) *curve.Point {
	return curve.MultiScalarMul(
		[]*curve.Scalar{value, blinding},
		[]*curve.Point{pg.B, pg.BBlinding},
	)
}

// hashToPoint maps bytes to a group element through blake2b-512 and two
// Elligator evaluations. The output has no known discrete log with respect to
// any other generator.
func hashToPoint(domainTag string, data []byte) *curve.Point {
	hash := blake2b.New512()
	hash.Write([]byte(domainTag))
	hash.Write(data)
	return pointFromUniformBytes(hash.Sum(nil))
}

func pointFromUniformBytes(key []byte) *curve.Point {
	var r1Bytes, r2Bytes [32]byte
	copy(r1Bytes[:], key[:32])
	copy(r2Bytes[:], key[32:])
	var r, r1, r2 curve.Point
	return r.Add(r1.SetElligator(&r1Bytes), r2.SetElligator(&r2Bytes))
}

// GeneratorsChain derives an unbounded deterministic sequence of orthogonal
// generators from a published label, by reading a SHAKE-256 stream and mapping
// each 64-byte block to the curve.
type GeneratorsChain struct {
	sha3.ShakeHash
}

func NewGeneratorsChain(label []byte) *GeneratorsChain {
	h := sha3.NewShake256()
	h.Write([]byte("GeneratorsChain"))
	h.Write(label)
	return &GeneratorsChain{h}
}

func (c *GeneratorsChain) FastForward(n int) {
	for i := 0; i < n; i++ {
		var data [64]byte
		c.Read(data[:])
	}
}

func (c *GeneratorsChain) Next() *curve.Point {
	var data [64]byte
	c.Read(data[:])
	return pointFromUniformBytes(data[:])
}

// BulletproofGens is the lazily built cache of the G and H generator vectors.
// It grows on demand and existing entries are never rewritten, so slices
// handed out before a growth step stay valid. Derivation is deterministic:
// two caches grown in any order hold byte-identical generators. The mutex only
// prevents duplicate derivation work by concurrent first builders.
type BulletproofGens struct {
	mu       sync.Mutex
	capacity int
	gVec     []*curve.Point
	hVec     []*curve.Point
}

func NewBulletproofGens() *BulletproofGens {
	return &BulletproofGens{}
}

// Vectors returns clones of the first n generators of each family, growing
// the cache if needed. Clones are returned because the inner-product folding
// rewrites its generator slices in place.
func (b *BulletproofGens) Vectors(n int) (gVec, hVec []*curve.Point) {
	b.mu.Lock()
	if b.capacity < n {
		chainG := NewGeneratorsChain([]byte("G"))
		chainG.FastForward(b.capacity)
		chainH := NewGeneratorsChain([]byte("H"))
		chainH.FastForward(b.capacity)
		for i := b.capacity; i < n; i++ {
			b.gVec = append(b.gVec, chainG.Next())
			b.hVec = append(b.hVec, chainH.Next())
		}
		b.capacity = n
	}
	gVec = curve.ClonePoints(b.gVec[:n])
	hVec = curve.ClonePoints(b.hVec[:n])
	b.mu.Unlock()
	return gVec, hVec
}
