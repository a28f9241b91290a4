// Package zeroize provides a best-effort byte-slice wipe. No package in
// this module imports it: pkg/frost/keys, pkg/frost/dkg, and pkg/frost/sign
// wipe their secret scalars through curve.Scalar.Zeroize instead.
//
// No Go package in the retrieved corpus wraps secret zeroing the way
// zeroize crates do in the original Rust source (original_source/src/keys.rs,
// precomputation.rs both derive `Zeroize`/`Drop`); this is the one place in
// the module that falls back to a hand-rolled helper over the standard
// library rather than an ecosystem dependency, because Go has no
// destructors to hang a Drop-equivalent off of regardless of which library
// is used, and a plain byte-overwrite loop is both auditable and exactly
// what the zeroize crate itself reduces to at the primitive level.
package zeroize

// Bytes overwrites b in place with zeroes.
func Bytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
