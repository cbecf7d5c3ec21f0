package sign

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"
)

const deviceKeyBits = 2048

// KeyMaterial is the PEM-encoded identity generated for a new device.
type KeyMaterial struct {
	PrivateKey  string
	PublicKey   string
	Certificate string
	ValidTill   time.Time
}

// GenerateKeyMaterial creates a fresh RSA key pair and a self-signed
// certificate for a device. The certificate covers ten years; the revenue
// authority re-issues it out of band before expiry.
func GenerateKeyMaterial(serialNo string, now time.Time) (*KeyMaterial, error) {
	key, err := rsa.GenerateKey(rand.Reader, deviceKeyBits)
	if err != nil {
		return nil, fmt.Errorf("generate device key: %w", err)
	}

	validTill := now.AddDate(10, 0, 0)
	template := x509.Certificate{
		SerialNumber: big.NewInt(now.UnixNano()),
		Subject: pkix.Name{
			CommonName: serialNo,
		},
		NotBefore:   now,
		NotAfter:    validTill,
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("create device certificate: %w", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("marshal device public key: %w", err)
	}

	return &KeyMaterial{
		PrivateKey:  encodePEM("RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key)),
		PublicKey:   encodePEM("PUBLIC KEY", pubDER),
		Certificate: encodePEM("CERTIFICATE", certDER),
		ValidTill:   validTill,
	}, nil
}

func encodePEM(blockType string, der []byte) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der}))
}
