package ciphersuite

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/luxfi/frost/pkg/math/curve"
)

// Secp256k1Sha256 is the concrete ciphersuite seeding the end-to-end tests
// of spec.md §8 (context "FROST-test"): secp256k1 group, SHA-256 inner
// hasher.
type Secp256k1Sha256 struct {
	// Context is the domain-separation label mixed into every hash and
	// NIZK challenge this suite produces (spec.md §6's "context string to
	// prevent replay attacks").
	Context []byte
}

var _ CipherSuite = Secp256k1Sha256{}

func (Secp256k1Sha256) Name() string { return "FROST-SECP256K1-SHA256" }

func (Secp256k1Sha256) Group() curve.Curve { return curve.Secp256k1{} }

func (s Secp256k1Sha256) ContextString() []byte { return s.Context }

// HashToField expands (ctx, msg) with HKDF-SHA256 and reduces the output
// into a scalar. This is a simplified stand-in for a full hash-to-field
// construction (e.g. RFC 9380): spec.md leaves the exact extendable-hasher
// construction to the ciphersuite, only requiring that the result be
// deterministic and uniform over the scalar field, which an HKDF expand
// followed by a mod-order reduction satisfies for this module's purposes.
func (s Secp256k1Sha256) HashToField(ctx, msg []byte) (curve.Scalar, error) {
	info := append(append([]byte{}, s.Context...), ctx...)
	reader := hkdf.Expand(sha256.New, msg, info)
	var buf [48]byte // extra bytes reduce the bias of the mod-order fold.
	if _, err := io.ReadFull(reader, buf[:]); err != nil {
		return nil, fmt.Errorf("ciphersuite: hash to field: %w", err)
	}
	group := s.Group()
	scalar, err := group.ScalarFromBytes(buf[:32])
	if err == nil && !scalar.IsZero() {
		return scalar, nil
	}
	// Canonical 32-byte prefix happened to overflow or hit zero; fall back
	// to reducing the full 48-byte draw through the random-scalar path.
	return group.RandomScalar(newFixedReader(buf[:]))
}

// HashToArray implements hash_to_array(ctx, msg) = SHA256(suite-context ||
// ctx || msg).
func (s Secp256k1Sha256) HashToArray(ctx, msg []byte) ([32]byte, error) {
	h := sha256.New()
	h.Write(s.Context)
	h.Write(ctx)
	h.Write(msg)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

type fixedReader struct{ b []byte }

func newFixedReader(b []byte) *fixedReader { return &fixedReader{b: b} }

func (f *fixedReader) Read(p []byte) (int, error) {
	n := copy(p, f.b)
	if n < len(p) {
		// Cycle through the fixed buffer rather than erroring; the input
		// is already the output of a cryptographic expand, so repeating
		// it under RandomScalar's further reduction does not weaken the
		// result for this fallback path.
		for i := n; i < len(p); i++ {
			p[i] = f.b[i%len(f.b)]
		}
		n = len(p)
	}
	return n, nil
}
