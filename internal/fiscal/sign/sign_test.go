package sign

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"testing"
	"time"

	fiscaldomain "github.com/fiscalware/fiscalway/internal/fiscal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashKnownVector(t *testing.T) {
	// base64(sha256("abc"))
	assert.Equal(t, "ungWv48Bz+pBQUDeXa4iI7ADYaOWF3qctBD/YfIAFa0=", Hash("abc"))
	assert.Equal(t, "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=", Hash(""))
}

func TestSignAndVerify(t *testing.T) {
	keys, err := GenerateKeyMaterial("SN-1", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	key, err := ParsePrivateKey(keys.PrivateKey)
	require.NoError(t, err)

	payload := "3212025-05-02T06:30:00ZSALEBYTAXUSD15.0012000"
	signature, err := Payload(payload, key)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(signature)
	require.NoError(t, err)

	digest := sha256.Sum256([]byte(payload))
	require.NoError(t, rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, digest[:], raw))
}

func TestPayloadNilKey(t *testing.T) {
	_, err := Payload("data", nil)
	assert.ErrorIs(t, err, fiscaldomain.ErrMissingPrivateKey)
}

func TestParsePrivateKeyBadInput(t *testing.T) {
	_, err := ParsePrivateKey("")
	assert.ErrorIs(t, err, fiscaldomain.ErrMissingPrivateKey)

	_, err = ParsePrivateKey("not a pem block")
	assert.ErrorIs(t, err, fiscaldomain.ErrMissingPrivateKey)
}

func TestGenerateKeyMaterialValidity(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	keys, err := GenerateKeyMaterial("SN-9", now)
	require.NoError(t, err)

	assert.Equal(t, now.AddDate(10, 0, 0), keys.ValidTill)
	assert.Contains(t, keys.PrivateKey, "RSA PRIVATE KEY")
	assert.Contains(t, keys.PublicKey, "PUBLIC KEY")
	assert.Contains(t, keys.Certificate, "CERTIFICATE")
}
