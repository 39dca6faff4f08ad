package zkrange

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelVerifierAllPass(t *testing.T) {
	assert := assert.New(t)

	pv, err := newParallelVerifier(4, zerolog.Nop())
	require.NoError(t, err)
	defer pv.Release()

	tasks := make([]func() bool, 16)
	for i := range tasks {
		tasks[i] = func() bool { return true }
	}
	assert.True(pv.VerifyAll(tasks))
}

func TestParallelVerifierOneFailureFailsAll(t *testing.T) {
	assert := assert.New(t)

	pv, err := newParallelVerifier(4, zerolog.Nop())
	require.NoError(t, err)
	defer pv.Release()

	tasks := make([]func() bool, 16)
	for i := range tasks {
		tasks[i] = func() bool { return true }
	}
	tasks[7] = func() bool { return false }
	assert.False(pv.VerifyAll(tasks))
}

func TestParallelVerifierSurvivesPanic(t *testing.T) {
	assert := assert.New(t)

	pv, err := newParallelVerifier(2, zerolog.Nop())
	require.NoError(t, err)
	defer pv.Release()

	tasks := []func() bool{
		func() bool { return true },
		func() bool { panic("corrupted statement") },
		func() bool { return true },
	}
	assert.False(pv.VerifyAll(tasks))

	// The pool keeps working after a crash.
	assert.True(pv.VerifyAll([]func() bool{func() bool { return true }}))
}

func TestParallelVerifierEmpty(t *testing.T) {
	assert := assert.New(t)

	pv, err := newParallelVerifier(2, zerolog.Nop())
	require.NoError(t, err)
	defer pv.Release()

	assert.False(pv.VerifyAll(nil))
}

// The parallel and serial verification paths must agree for the same record.
func TestParallelSerialEquivalence(t *testing.T) {
	assert := assert.New(t)

	serial := newTestService(t, Options{ParallelThreshold: 100})
	parallel := newTestService(t, Options{ParallelThreshold: 1, Workers: 4})

	inputs := []RangeProofInput{
		{Value: 25, Min: 0, Max: 50},
		{Value: 40000, Min: 0, Max: 60000},
		{Value: 1 << 20, Min: 0, Max: 1 << 24},
		{Value: 7, Min: 0, Max: 10},
	}
	data, err := serial.GenerateAggregatedProof(inputs)
	require.NoError(t, err)

	assert.True(serial.VerifyAggregatedProof(data))
	assert.True(parallel.VerifyAggregatedProof(data))

	tampered := *data
	tampered.PublicInputs = append([]PublicInputs{}, data.PublicInputs...)
	tampered.PublicInputs[0].Min += 5
	assert.False(serial.VerifyAggregatedProof(&tampered))
	assert.False(parallel.VerifyAggregatedProof(&tampered))
}
