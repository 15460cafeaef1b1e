package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// RefreshTokenByteLength is the entropy of generated refresh token values.
const RefreshTokenByteLength = 32

// GenerateSecureToken returns a base64 random string using the specified number of random bytes.
func GenerateSecureToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}
