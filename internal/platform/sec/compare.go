// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package sec

import "crypto/subtle"

// ConstantTimeEquals reports whether a and b are equal without leaking, via
// timing, the position of the first mismatching byte.
//
// Unequal-length operands are zero-padded to the longer length before the
// comparison so length differences never short-circuit; the padded comparison
// result is forced to false because padding never makes distinct secrets equal.
func ConstantTimeEquals(a, b string) bool {
	bufA := []byte(a)
	bufB := []byte(b)

	if len(bufA) == len(bufB) {
		return subtle.ConstantTimeCompare(bufA, bufB) == 1
	}

	maxLength := len(bufA)
	if len(bufB) > maxLength {
		maxLength = len(bufB)
	}

	paddedA := make([]byte, maxLength)
	paddedB := make([]byte, maxLength)
	copy(paddedA, bufA)
	copy(paddedB, bufB)

	// Burn the same work as the equal-length path, then reject: different
	// lengths can never be equal secrets.
	subtle.ConstantTimeCompare(paddedA, paddedB)
	return false
}
