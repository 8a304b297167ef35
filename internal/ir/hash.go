package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainAxiom  = "aspectswrl/axiom/v1"
	DomainAspect = "aspectswrl/aspect/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// AxiomID computes the content-addressed identity of an axiom.
// Asserting the same triple twice yields the same ID, which is what makes
// re-assertion a no-op in the stores.
func AxiomID(ax Axiom) (string, error) {
	canonical, err := MarshalCanonical(ax.Encode())
	if err != nil {
		return "", fmt.Errorf("AxiomID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAxiom, canonical), nil
}

// AspectID computes the content-addressed identity of an aspect's class expression.
func AspectID(a Aspect) (string, error) {
	if a.Expression == nil {
		return "", fmt.Errorf("AspectID: aspect has no class expression")
	}
	canonical, err := MarshalCanonical(a.Expression.Encode())
	if err != nil {
		return "", fmt.Errorf("AspectID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAspect, canonical), nil
}

// MustAxiomID is like AxiomID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustAxiomID(ax Axiom) string {
	id, err := AxiomID(ax)
	if err != nil {
		panic(err)
	}
	return id
}
