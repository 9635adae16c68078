package certmanager

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"

	"github.com/alternatefutures/akash-agent/certstore"
	"github.com/alternatefutures/akash-agent/interfaces"
)

// identityValidity is how long a generated certificate is usable. Providers
// reject expired client certificates, at which point the operator regenerates.
const identityValidity = 365 * 24 * time.Hour

// Generate creates a fresh self-signed TLS identity for an account. The
// certificate's common name is the account address, which providers match
// against the on-chain certificate record during the mTLS handshake. All PEM
// fields are normalized before return so byte-identical content reaches both
// the chain broadcast and the local store.
func Generate(addr interfaces.AccountAddress) (interfaces.Identity, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("failed to generate key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("failed to generate serial: %w", err)
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName: addr.String(),
		},
		NotBefore:             now,
		NotAfter:              now.Add(identityValidity),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDataEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template,
		privateKey.Public(), privateKey)
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("failed to create certificate: %w", err)
	}

	pubkeyDER, err := x509.MarshalPKIXPublicKey(privateKey.Public())
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("failed to encode public key: %w", err)
	}

	privkeyDER, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("failed to encode private key: %w", err)
	}

	id := interfaces.Identity{
		Cert:       string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})),
		PublicKey:  string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubkeyDER})),
		PrivateKey: string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privkeyDER})),
	}
	return certstore.NormalizeIdentity(id), nil
}
