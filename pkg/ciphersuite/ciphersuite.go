// Package ciphersuite bundles the curve group, scalar field, and hashing
// primitives that the FROST/RICE-FROST core is parameterized over
// (spec.md §6, "Ciphersuite (consumed)"). The DKG, keys, and sign packages
// only ever depend on the CipherSuite interface, never on a concrete curve
// or hash library directly.
package ciphersuite

import (
	"github.com/luxfi/frost/pkg/math/curve"
)

// CipherSuite is the capability bundle spec.md §6 and §9 describe: a group
// G with generator B, scalar field F, an inner hasher, a hash-to-field
// security parameter, and a fixed-size digest output.
type CipherSuite interface {
	// Name identifies the suite. It is not mixed into any hash; domain
	// separation comes from ContextString and the per-call ctx.
	Name() string
	// Group returns the curve this suite operates over.
	Group() curve.Curve
	// ContextString returns the domain-separation label this suite
	// combines with a caller-supplied context before hashing, e.g.
	// "FROST-test" in spec.md §8's end-to-end scenarios.
	ContextString() []byte
	// HashToField implements spec.md §4.1's hash_to_field(ctx, msg): a
	// single uniformly distributed scalar derived deterministically from
	// (ctx, msg).
	HashToField(ctx, msg []byte) (curve.Scalar, error)
	// HashToArray implements spec.md §4.1's hash_to_array(ctx, msg): the
	// fixed-length digest of ctx || msg.
	HashToArray(ctx, msg []byte) ([32]byte, error)
}
