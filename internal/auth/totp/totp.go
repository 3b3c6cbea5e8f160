// Package totp generates authenticator keys and one-time recovery codes for
// the two-factor tokens kept by the user store.
package totp

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	DefaultRecoveryCodeLength = 10
	DefaultNumRecoveryCodes   = 10
)

// Characters that are hard to confuse when typed back from paper.
const recoveryCharset = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateAuthenticatorKey creates a new TOTP key. key.Secret() is the base32
// secret stored as the authenticator key, key.URL() the otpauth URI.
func GenerateAuthenticatorKey(issuer, accountName string) (*otp.Key, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
		Period:      30,
		SecretSize:  20,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}
	return key, nil
}

// ValidateCode checks a passcode against a base32 authenticator key.
func ValidateCode(secret, passcode string) bool {
	return totp.Validate(strings.TrimSpace(passcode), strings.TrimSpace(secret))
}

// GenerateRecoveryCodes returns count distinct codes of the given length.
// Non-positive arguments fall back to the defaults.
func GenerateRecoveryCodes(count, length int) ([]string, error) {
	if count <= 0 {
		count = DefaultNumRecoveryCodes
	}
	if length <= 0 {
		length = DefaultRecoveryCodeLength
	}

	codes := make([]string, 0, count)
	seen := make(map[string]bool, count)
	for len(codes) < count {
		b := make([]byte, length)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("failed to read random bytes for recovery code: %w", err)
		}
		for j := range b {
			b[j] = recoveryCharset[int(b[j])%len(recoveryCharset)]
		}
		code := string(b)
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes, nil
}
