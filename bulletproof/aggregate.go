package bulletproof

import (
	"sort"

	"golang.org/x/xerrors"

	"github.com/openveil/zkrange/curve"
)

// Entry is one shifted value admitted to an aggregated proof. Value is the
// amount above the lower bound of its interval and Spread is the width of
// that interval; both are public-side inputs to bucketing, while Blinding
// stays with the prover.
type Entry struct {
	Value    uint64
	Blinding *curve.Scalar
	Spread   uint64
}

// BucketProof is one aggregated range proof covering Count entries at a
// common Bitsize. Commitments are the padded commitment list the proof was
// generated over; the tail beyond Count is always the identity point.
type BucketProof struct {
	Bitsize     int64
	Count       int
	Commitments []*curve.Point
	Proof       *RangeProof
}

// AggregatedProof carries the bucket proofs for one batch, ordered by
// ascending bit size. Entries whose spreads differ too much to share padded
// generators land in separate buckets, so total proof size stays
// logarithmic per bucket instead of being dominated by the widest interval.
type AggregatedProof struct {
	Buckets []*BucketProof
}

// BitsizeFor picks the smallest supported proof width covering a spread.
func BitsizeFor(spread uint64) int64 {
	switch {
	case spread < 1<<8:
		return 8
	case spread < 1<<16:
		return 16
	case spread < 1<<32:
		return 32
	default:
		return 64
	}
}

type bucket struct {
	bitsize int64
	entries []Entry
}

// partition groups entries by the bit size their spread requires. Entries
// must already be sorted by ascending spread.
func partition(entries []Entry) []bucket {
	var buckets []bucket
	for _, e := range entries {
		bits := BitsizeFor(e.Spread)
		if len(buckets) == 0 || buckets[len(buckets)-1].bitsize != bits {
			buckets = append(buckets, bucket{bitsize: bits})
		}
		last := &buckets[len(buckets)-1]
		last.entries = append(last.entries, e)
	}
	return buckets
}

// Aggregate proves all entries in one pass, grouping them into buckets of
// equal bit size and producing one aggregated proof per bucket. Entries are
// sorted by spread first so the grouping is deterministic for any input
// order; a verifier repeats the same sort over the public spreads.
func Aggregate(entries []Entry, pc *PedersenGens, bp *BulletproofGens) (*AggregatedProof, error) {
	if len(entries) == 0 {
		return nil, xerrors.Errorf("aggregate: %w", ErrEmptyBatch)
	}
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Spread < sorted[j].Spread })

	agg := &AggregatedProof{}
	for _, b := range partition(sorted) {
		protocol, err := NewProtocol(b.bitsize, pc, bp)
		if err != nil {
			return nil, err
		}
		values := make([]uint64, len(b.entries))
		blindings := make([]*curve.Scalar, len(b.entries))
		for i, e := range b.entries {
			values[i] = e.Value
			blindings[i] = e.Blinding
		}
		proof, commitments, err := protocol.Prove(values, blindings)
		if err != nil {
			return nil, err
		}
		agg.Buckets = append(agg.Buckets, &BucketProof{
			Bitsize:     b.bitsize,
			Count:       len(b.entries),
			Commitments: commitments,
			Proof:       proof,
		})
	}
	return agg, nil
}

// VerifyBucket checks a single bucket proof. The padded commitment tail must
// be the identity point, since honest provers pad with zero values under
// zero blinding.
func VerifyBucket(b *BucketProof, pc *PedersenGens, bp *BulletproofGens) bool {
	if b == nil || b.Count <= 0 || b.Count > len(b.Commitments) {
		return false
	}
	if len(b.Commitments) != nextPowerOfTwo(b.Count) {
		return false
	}
	identity := curve.Identity()
	for _, c := range b.Commitments[b.Count:] {
		if c == nil || !c.Equals(identity) {
			return false
		}
	}
	protocol, err := NewProtocol(b.Bitsize, pc, bp)
	if err != nil {
		return false
	}
	return protocol.Verify(b.Commitments, b.Proof)
}

// LayoutValid checks that an aggregated proof's bucket structure is the one
// the claimed spreads dictate: ascending bit sizes with no duplicates, each
// bucket covering exactly the spreads in its class, total count matching
// the batch.
func LayoutValid(agg *AggregatedProof, spreads []uint64) bool {
	if agg == nil || len(agg.Buckets) == 0 {
		return false
	}
	sorted := make([]uint64, len(spreads))
	copy(sorted, spreads)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	offset := 0
	var prevBits int64
	for _, b := range agg.Buckets {
		if b == nil || b.Bitsize <= prevBits {
			return false
		}
		prevBits = b.Bitsize
		if offset+b.Count > len(sorted) {
			return false
		}
		for _, spread := range sorted[offset : offset+b.Count] {
			if BitsizeFor(spread) != b.Bitsize {
				return false
			}
		}
		offset += b.Count
	}
	return offset == len(sorted)
}

// VerifyAggregate checks the bucket layout against the claimed spreads and
// then every bucket proof.
func VerifyAggregate(agg *AggregatedProof, spreads []uint64, pc *PedersenGens, bp *BulletproofGens) bool {
	if !LayoutValid(agg, spreads) {
		return false
	}
	for _, b := range agg.Buckets {
		if !VerifyBucket(b, pc, bp) {
			return false
		}
	}
	return true
}
