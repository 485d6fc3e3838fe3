// Copyright (c) 2026 Centinela. All rights reserved.

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateNumericCode returns a zero-padded decimal code of the given length.
//
// # Security
//
// Codes are drawn from crypto/rand. A 6-digit code gives one million
// combinations, which is sufficient against online guessing within the
// 10-15 minute expiry windows used by the verification and 2FA flows.
func GenerateNumericCode(digits int) (string, error) {
	if digits < 1 {
		return "", fmt.Errorf("sec: code length must be positive, got %d", digits)
	}

	limit := big.NewInt(1)
	for i := 0; i < digits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}

	value, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("sec: failed to generate code: %w", err)
	}

	return fmt.Sprintf("%0*d", digits, value), nil
}
