package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// PKCE challenge methods per RFC 7636.
const (
	PKCEMethodS256  = "S256"
	PKCEMethodPlain = "plain"
)

var (
	// ErrPKCEMismatch reports a verifier that does not satisfy the stored
	// challenge. Callers surface this as invalid_grant.
	ErrPKCEMismatch = errors.New("cryptox: pkce verifier mismatch")

	// ErrPKCEMethod reports an unknown or disallowed challenge method.
	ErrPKCEMethod = errors.New("cryptox: unsupported pkce method")
)

// ValidatePKCE checks a code_verifier against a stored code_challenge.
//
// For S256 the challenge must equal base64url(sha256(verifier)) without
// padding. The plain method compares directly and is only accepted when the
// client record explicitly allows it. Every comparison is constant-time.
func ValidatePKCE(method, challenge, verifier string, plainAllowed bool) error {
	challenge = strings.TrimSpace(challenge)
	verifier = strings.TrimSpace(verifier)
	if challenge == "" || verifier == "" {
		return ErrPKCEMismatch
	}

	switch {
	case strings.EqualFold(method, PKCEMethodS256):
		if subtle.ConstantTimeCompare([]byte(challenge), []byte(ChallengeS256(verifier))) != 1 {
			return ErrPKCEMismatch
		}
		return nil

	case strings.EqualFold(method, PKCEMethodPlain):
		if !plainAllowed {
			return ErrPKCEMethod
		}
		if subtle.ConstantTimeCompare([]byte(challenge), []byte(verifier)) != 1 {
			return ErrPKCEMismatch
		}
		return nil

	default:
		return ErrPKCEMethod
	}
}

// ChallengeS256 computes the S256 code_challenge for a verifier.
func ChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// NewCodeVerifier produces a code_verifier for first-party confidential
// clients driving the authorization-code flow on their own behalf: 32
// random bytes, hex encoded, then base64url encoded, yielding a fixed
// length string.
func NewCodeVerifier() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate code verifier: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString([]byte(hex.EncodeToString(buf))), nil
}
