// Package sign produces the hash and detached signature over a canonical
// fiscal day payload. Both operations are pure functions of the payload and
// the device key; a retried close over the same counters yields the same
// artifact.
package sign

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"

	"github.com/fiscalware/fiscalway/internal/fiscal/domain"
)

// Hash returns the base64 encoding of the SHA-256 digest of the payload's
// UTF-8 bytes.
func Hash(payload string) string {
	digest := sha256.Sum256([]byte(payload))
	return base64.StdEncoding.EncodeToString(digest[:])
}

// Payload signs the payload with the device private key (SHA256withRSA) and
// returns the base64-encoded signature.
func Payload(payload string, key *rsa.PrivateKey) (string, error) {
	if key == nil {
		return "", domain.ErrMissingPrivateKey
	}
	digest := sha256.Sum256([]byte(payload))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// ParsePrivateKey decodes a PEM-encoded RSA private key in either PKCS#1 or
// PKCS#8 form.
func ParsePrivateKey(pemData string) (*rsa.PrivateKey, error) {
	if pemData == "" {
		return nil, domain.ErrMissingPrivateKey
	}
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", domain.ErrMissingPrivateKey)
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMissingPrivateKey, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", domain.ErrMissingPrivateKey)
	}
	return key, nil
}
