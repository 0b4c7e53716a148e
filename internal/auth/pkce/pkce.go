// Package pkce generates PKCE (Proof Key for Code Exchange) credentials for the
// OAuth2 authorization code flow, following RFC 7636 with the S256 method.
package pkce

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
)

// VerifierBytes is the number of random bytes behind a code verifier.
// 32 bytes encode to a 43 character verifier, the RFC 7636 minimum.
const VerifierBytes = 32

// Method is the code_challenge_method sent alongside the challenge.
const Method = "S256"

// PKCECodes holds a code verifier and the challenge derived from it.
type PKCECodes struct {
	// CodeVerifier is the secret kept by the client until the token exchange.
	CodeVerifier string `json:"code_verifier"`
	// CodeChallenge is sent in the authorization request.
	CodeChallenge string `json:"code_challenge"`
}

// GeneratePKCECodes generates a new verifier/challenge pair.
//
// Returns:
//   - *PKCECodes: The generated codes
//   - error: An error if the random source failed
func GeneratePKCECodes() (*PKCECodes, error) {
	codeVerifier, err := GenerateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}

	return &PKCECodes{
		CodeVerifier:  codeVerifier,
		CodeChallenge: DeriveCodeChallenge(codeVerifier),
	}, nil
}

// GenerateCodeVerifier reads VerifierBytes from crypto/rand and encodes them
// as URL-safe base64 without padding.
func GenerateCodeVerifier() (string, error) {
	bytes := make([]byte, VerifierBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// DeriveCodeChallenge returns base64url(SHA-256(verifier)) without padding.
// The hash covers the encoded verifier string, not the raw random bytes.
func DeriveCodeChallenge(codeVerifier string) string {
	return oauth2.S256ChallengeFromVerifier(codeVerifier)
}
