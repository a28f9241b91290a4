// Package frosttest provides shared test/simulation fixtures, grounded on
// luxfi-threshold's internal/test package (referenced by, but not shipped
// with, pkg/math/polynomial/lagrange_test.go in the retrieved sources).
package frosttest

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PartyIDs returns the participant indices {1, ..., n}, matching spec.md
// §3's "nonzero 32-bit integer" indices (index 0 is never issued).
func PartyIDs(n int) []uint32 {
	ids := make([]uint32, n)
	for i := range ids {
		ids[i] = uint32(i + 1)
	}
	return ids
}

// RunConcurrently drives fn once per participant in parallel. Its only
// caller is cmd/frost-cli's simulate command; no package test uses it. The
// DKG/signing core itself never runs anything concurrently.
func RunConcurrently(ids []uint32, fn func(id uint32) error) error {
	g, _ := errgroup.WithContext(context.Background())
	for _, id := range ids {
		id := id
		g.Go(func() error { return fn(id) })
	}
	return g.Wait()
}
