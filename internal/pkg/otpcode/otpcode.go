package otpcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

// Generate returns a 6-digit decimal code sampled uniformly from
// [100000, 999999]. The code is the only secret in the OTP scheme, so it
// must come from crypto/rand, never a seeded PRNG.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
