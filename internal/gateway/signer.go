package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// SignatureField is the parameter carrying the request MAC. It is excluded
// from the canonical signature input.
const SignatureField = "hashExtended"

var (
	// ErrNoSecret means no shared secret is configured; signing capability
	// is unavailable and checkout must not proceed.
	ErrNoSecret = errors.New("gateway shared secret is not configured")
)

// Signer computes the keyed MAC the gateway verifies. The shared secret
// stays inside this process; callers only ever see finished signatures.
type Signer struct {
	algorithm string
	secret    []byte
}

// NewSigner acquires signing capability. It fails up front when the secret
// is missing or the algorithm is not one the gateway accepts, so the failure
// surfaces at startup rather than mid-checkout.
func NewSigner(algorithm, secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if algorithm != "HMACSHA256" {
		return nil, fmt.Errorf("unsupported gateway hash algorithm: %s", algorithm)
	}
	return &Signer{algorithm: algorithm, secret: []byte(secret)}, nil
}

// Algorithm returns the gateway's name for the MAC algorithm.
func (s *Signer) Algorithm() string {
	return s.algorithm
}

// Sign returns the base64-encoded HMAC-SHA256 of the canonical input.
func (s *Signer) Sign(canonicalInput string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(canonicalInput))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
