// Package frost implements a threshold Schnorr signature stack: a
// Pedersen/Feldman distributed key generation with RICE-FROST-style
// Diffie-Hellman share encryption (pkg/frost/dkg), long-lived key material
// (pkg/frost/keys), and a precomputed-nonce one-round signing core
// (pkg/frost/sign).
package frost

import "errors"

// Error taxonomy, per spec.md §7. Per-peer failures (a bad DH proof, a bad
// share, a bad PoK) are classified into a DKGParticipantList rather than
// returned through these sentinels; only failures that compromise the
// local run are surfaced to the caller.
var (
	// ErrInvalidParameters is returned when t > n, t == 0, or n == 0.
	ErrInvalidParameters = errors.New("frost: invalid threshold parameters")
	// ErrDuplicateIndex is returned when two participants share an index.
	ErrDuplicateIndex = errors.New("frost: duplicate participant index")
	// ErrInvalidProofOfKnowledge is returned when a Schnorr NIZK PoK fails
	// to verify, or when proof construction hits a degenerate randomness
	// draw.
	ErrInvalidProofOfKnowledge = errors.New("frost: invalid proof of knowledge")
	// ErrInvalidShare is returned when a partial signature or a final
	// signature fails verification. A decrypted DKG share that fails its
	// Feldman check is classified as misbehaving, not returned as this
	// error.
	ErrInvalidShare = errors.New("frost: invalid secret share")
	// ErrDecryptionError is returned when an encrypted share fails
	// authentication or decodes to a non-scalar.
	ErrDecryptionError = errors.New("frost: share decryption failed")
	// ErrInsufficientShares is returned when fewer than t valid dealer
	// contributions were accepted.
	ErrInsufficientShares = errors.New("frost: insufficient valid shares")
	// ErrShareVerificationError is returned when a reconstructed
	// IndividualVerifyingKey disagrees with the locally derived one.
	ErrShareVerificationError = errors.New("frost: share verification failed")
	// ErrDuplicateShares is returned when Lagrange interpolation is called
	// with repeated indices.
	ErrDuplicateShares = errors.New("frost: duplicate shares provided to Lagrange interpolation")
	// ErrSerializationError is returned when encoding a wire type fails.
	ErrSerializationError = errors.New("frost: serialization error")
	// ErrDeserializationError is returned when decoding a wire type fails
	// (short buffer, trailing bytes, non-canonical point, etc).
	ErrDeserializationError = errors.New("frost: deserialization error")
)
