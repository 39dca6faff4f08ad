package bulletproof

import (
	"encoding/binary"

	"github.com/gtank/merlin"

	"github.com/openveil/zkrange/curve"
)

const proofDomainTag = "zkrange bulletproof v1"

func newTranscript() *merlin.Transcript {
	return merlin.NewTranscript(proofDomainTag)
}

func rangeproofDomainSep(t *merlin.Transcript, n, m int64) {
	t.AppendMessage([]byte("dom-sep"), []byte("rangeproof v1"))
	appendUint64(t, "n", uint64(n))
	appendUint64(t, "m", uint64(m))
}

func innerproductDomainSep(t *merlin.Transcript, n uint64) {
	t.AppendMessage([]byte("dom-sep"), []byte("ipp v1"))
	appendUint64(t, "n", n)
}

func appendUint64(t *merlin.Transcript, label string, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	t.AppendMessage([]byte(label), buf[:])
}

func appendPoint(t *merlin.Transcript, label string, p *curve.Point) {
	t.AppendMessage([]byte(label), p.Bytes())
}

func appendScalar(t *merlin.Transcript, label string, s *curve.Scalar) {
	t.AppendMessage([]byte(label), s.Bytes())
}

// challengeScalar squeezes 64 transcript bytes and reduces them mod the group
// order, the Fiat-Shamir step shared by prover and verifier.
func challengeScalar(t *merlin.Transcript, label string) *curve.Scalar {
	return curve.ScalarFromWide(t.ExtractBytes([]byte(label), 64))
}
