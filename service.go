// Package zkrange proves and verifies that secret committed integers lie in
// public ranges, using Bulletproofs over the ristretto255 group. The Service
// type is the façade: it owns the generator caches and the verification
// worker pool, and exposes proving, aggregation and batch verification.
package zkrange

import (
	"runtime"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/xerrors"

	"github.com/openveil/zkrange/bulletproof"
	"github.com/openveil/zkrange/curve"
)

// Options configures a Service. The zero value is usable: 64-bit maximum
// ranges, half the CPUs as verification workers, parallel routing from four
// statements up, no logging.
type Options struct {
	// MaxBitsize caps the interval width a single statement may ask for.
	// One of 8, 16, 32, 64. Zero means 64.
	MaxBitsize int64

	// Workers sizes the verification pool. Zero means max(1, NumCPU/2).
	Workers int

	// ParallelThreshold is the statement count at which verification moves
	// from the serial to the parallel path. Zero means 4.
	ParallelThreshold int

	// Logger receives debug/warn events. Nil disables logging.
	Logger *zerolog.Logger
}

// Service is safe for concurrent use. Generator caches grow lazily under
// their own lock and are immutable once built; everything else is pure
// computation plus fresh randomness.
type Service struct {
	opts   Options
	log    zerolog.Logger
	pcGens *bulletproof.PedersenGens
	bpGens *bulletproof.BulletproofGens
	pv     *ParallelVerifier
}

// New validates the options and builds a service. Invalid static parameters
// fail with ErrConfiguration.
func New(opts Options) (*Service, error) {
	if opts.MaxBitsize == 0 {
		opts.MaxBitsize = 64
	}
	switch opts.MaxBitsize {
	case 8, 16, 32, 64:
	default:
		return nil, xerrors.Errorf("max bit size %d: %w", opts.MaxBitsize, ErrConfiguration)
	}
	if opts.Workers < 0 {
		return nil, xerrors.Errorf("workers %d: %w", opts.Workers, ErrConfiguration)
	}
	if opts.ParallelThreshold < 0 {
		return nil, xerrors.Errorf("parallel threshold %d: %w", opts.ParallelThreshold, ErrConfiguration)
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.NumCPU() / 2
		if opts.Workers < 1 {
			opts.Workers = 1
		}
	}
	if opts.ParallelThreshold == 0 {
		opts.ParallelThreshold = 4
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	pv, err := newParallelVerifier(opts.Workers, logger)
	if err != nil {
		return nil, err
	}
	return &Service{
		opts:   opts,
		log:    logger,
		pcGens: bulletproof.NewPedersenGens(),
		bpGens: bulletproof.NewBulletproofGens(),
		pv:     pv,
	}, nil
}

// Close releases the verification workers.
func (s *Service) Close() {
	s.pv.Release()
}

func (s *Service) checkInput(in RangeProofInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	if bulletproof.BitsizeFor(in.spread()) > s.opts.MaxBitsize {
		return xerrors.Errorf("interval [%d, %d] wider than %d bits: %w",
			in.Min, in.Max, s.opts.MaxBitsize, ErrInvalidInput)
	}
	return nil
}

// shiftCommitment moves a commitment between the published form, which
// commits to the value itself, and the proven form, which commits to the
// value minus the interval's lower bound. The shift is by delta times the
// Pedersen value generator.
func (s *Service) shiftCommitment(c *curve.Point, delta int64) *curve.Point {
	var term, out curve.Point
	term.ScalarMult(s.pcGens.B, curve.NewScalarFromInt64(delta))
	out.Add(c, &term)
	return &out
}

// GenerateRangeProof proves that input.Value lies in [input.Min, input.Max]
// and returns the portable proof record. The returned commitment is to the
// value itself; the range proof covers value minus Min under the
// homomorphic shift both sides apply.
func (s *Service) GenerateRangeProof(input RangeProofInput) (*RangeProofData, error) {
	return s.GenerateAggregatedProof([]RangeProofInput{input})
}

// GenerateAggregatedProof proves every statement in one sub-linear proof.
// All inputs are validated before any cryptographic work; a single invalid
// statement aborts the whole batch. Statements are ordered by interval
// width in the output so verifiers can reconstruct the bucketing from the
// public inputs alone.
func (s *Service) GenerateAggregatedProof(inputs []RangeProofInput) (*RangeProofData, error) {
	if len(inputs) == 0 {
		return nil, xerrors.Errorf("aggregate: %w", ErrEmptyBatch)
	}
	for _, in := range inputs {
		if err := s.checkInput(in); err != nil {
			return nil, err
		}
	}
	sorted := make([]RangeProofInput, len(inputs))
	copy(sorted, inputs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].spread() < sorted[j].spread() })

	entries := make([]bulletproof.Entry, len(sorted))
	for i, in := range sorted {
		entries[i] = bulletproof.Entry{
			Value:    in.shifted(),
			Blinding: curve.RandomScalar(),
			Spread:   in.spread(),
		}
	}
	agg, err := bulletproof.Aggregate(entries, s.pcGens, s.bpGens)
	if err != nil {
		return nil, err
	}

	// Published commitments commit to the unshifted values, one per real
	// statement; padding commitments stay off the wire.
	published := make([]*curve.Point, 0, len(sorted))
	publics := make([]PublicInputs, 0, len(sorted))
	idx := 0
	for _, b := range agg.Buckets {
		for _, c := range b.Commitments[:b.Count] {
			published = append(published, s.shiftCommitment(c, sorted[idx].Min))
			publics = append(publics, PublicInputs{Min: sorted[idx].Min, Max: sorted[idx].Max})
			idx++
		}
	}
	proof, err := marshalEnvelope(agg)
	if err != nil {
		return nil, err
	}
	s.log.Debug().
		Int("statements", len(sorted)).
		Int("buckets", len(agg.Buckets)).
		Msg("range proof generated")
	return &RangeProofData{
		Commitment:   joinCommitments(published),
		Proof:        proof,
		PublicInputs: publics,
	}, nil
}

// decodeStatement rebuilds the aggregated proof from a wire record: parses
// commitments and envelope, applies the min-shift, reconstructs identity
// padding. Any malformed field yields ok false.
func (s *Service) decodeStatement(data *RangeProofData) (agg *bulletproof.AggregatedProof, spreads []uint64, ok bool) {
	if data == nil {
		return nil, nil, false
	}
	commitments, err := splitCommitments(data.Commitment)
	if err != nil {
		s.log.Debug().Err(err).Msg("rejecting proof record")
		return nil, nil, false
	}
	if len(commitments) != len(data.PublicInputs) {
		return nil, nil, false
	}
	buckets, err := unmarshalEnvelope(data.Proof)
	if err != nil {
		s.log.Debug().Err(err).Msg("rejecting proof record")
		return nil, nil, false
	}

	spreads = make([]uint64, len(commitments))
	shifted := make([]*curve.Point, len(commitments))
	var prev uint64
	for i, pub := range data.PublicInputs {
		if pub.Min >= pub.Max {
			return nil, nil, false
		}
		spreads[i] = uint64(pub.Max - pub.Min)
		// Canonical records are ordered by spread.
		if spreads[i] < prev {
			return nil, nil, false
		}
		prev = spreads[i]
		shifted[i] = s.shiftCommitment(commitments[i], -pub.Min)
	}

	agg = &bulletproof.AggregatedProof{}
	offset := 0
	for _, b := range buckets {
		if offset+b.Count > len(shifted) {
			return nil, nil, false
		}
		padded := make([]*curve.Point, 0, nextPow2(b.Count))
		padded = append(padded, shifted[offset:offset+b.Count]...)
		for len(padded) < nextPow2(b.Count) {
			padded = append(padded, curve.Identity())
		}
		agg.Buckets = append(agg.Buckets, &bulletproof.BucketProof{
			Bitsize:     b.Bitsize,
			Count:       b.Count,
			Commitments: padded,
			Proof:       b.Proof,
		})
		offset += b.Count
	}
	if offset != len(shifted) {
		return nil, nil, false
	}
	return agg, spreads, true
}

// VerifyRangeProof checks a single-statement proof record. It never panics
// and never returns an error: any failure is false.
func (s *Service) VerifyRangeProof(data *RangeProofData) bool {
	agg, spreads, ok := s.decodeStatement(data)
	if !ok {
		return false
	}
	return bulletproof.VerifyAggregate(agg, spreads, s.pcGens, s.bpGens)
}

// VerifyAggregatedProof checks an aggregated record, fanning bucket
// verification out over the worker pool once the statement count reaches
// the configured threshold. Both paths return the same boolean.
func (s *Service) VerifyAggregatedProof(data *RangeProofData) bool {
	agg, spreads, ok := s.decodeStatement(data)
	if !ok {
		return false
	}
	if len(spreads) < s.opts.ParallelThreshold {
		return bulletproof.VerifyAggregate(agg, spreads, s.pcGens, s.bpGens)
	}
	if !bulletproof.LayoutValid(agg, spreads) {
		return false
	}
	tasks := make([]func() bool, len(agg.Buckets))
	for i, b := range agg.Buckets {
		b := b
		tasks[i] = func() bool {
			return bulletproof.VerifyBucket(b, s.pcGens, s.bpGens)
		}
	}
	return s.pv.VerifyAll(tasks)
}

// VerifyBatch verifies many independent proof records and returns true only
// if every one verifies. Small batches run serially; larger ones are fanned
// out over the worker pool.
func (s *Service) VerifyBatch(records []*RangeProofData) bool {
	if len(records) == 0 {
		return false
	}
	if len(records) < s.opts.ParallelThreshold {
		for _, r := range records {
			if !s.VerifyRangeProof(r) {
				return false
			}
		}
		return true
	}
	tasks := make([]func() bool, len(records))
	for i, r := range records {
		r := r
		tasks[i] = func() bool {
			return s.VerifyRangeProof(r)
		}
	}
	return s.pv.VerifyAll(tasks)
}
