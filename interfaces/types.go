// Package interfaces defines the core types and contracts shared across the
// agent. It provides the boundary between components without implementation
// details: domain identifiers, the TLS identity model, and the chain
// query/transaction interfaces consumed by the rest of the repository.
package interfaces

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
)

// AccountAddress is a bech32-encoded account address on the marketplace chain.
type AccountAddress string

// NewAccountAddress validates and wraps a bech32 account address string.
func NewAccountAddress(addr string) (AccountAddress, error) {
	if err := AccountAddress(addr).Validate(); err != nil {
		return "", err
	}
	return AccountAddress(addr), nil
}

// Validate performs a shallow shape check: non-empty, lowercase, and carrying
// a bech32 separator. Full checksum validation happens where addresses are
// derived, not where they are merely routed.
func (a AccountAddress) Validate() error {
	s := string(a)
	if s == "" {
		return errors.New("empty account address")
	}
	if strings.ToLower(s) != s {
		return fmt.Errorf("account address must be lowercase: %s", s)
	}
	if !strings.Contains(s, "1") {
		return fmt.Errorf("malformed bech32 account address: %s", s)
	}
	return nil
}

// String returns the raw bech32 string.
func (a AccountAddress) String() string {
	return string(a)
}

// Identity is a client TLS identity: a self-signed certificate, its public
// key, and the matching private key, all PEM-encoded. All three fields must
// use canonical line endings (single \n, no carriage returns) before being
// used for TLS negotiation or chain broadcast; both are byte-sensitive.
type Identity struct {
	Cert       string `json:"cert"`
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

// TLSCertificate builds the client credential presented to providers.
func (id Identity) TLSCertificate() (tls.Certificate, error) {
	return tls.X509KeyPair([]byte(id.Cert), []byte(id.PrivateKey))
}

// CertificateState is the on-chain lifecycle state of a certificate record.
type CertificateState string

const (
	CertificateValid   CertificateState = "valid"
	CertificateRevoked CertificateState = "revoked"
)

// CertificateRecord is the on-chain view of one broadcast certificate. Many
// records may exist per owner over time; only valid ones are usable for
// provider authentication.
type CertificateRecord struct {
	Serial string           `json:"serial"`
	State  CertificateState `json:"state"`
	Cert   []byte           `json:"cert"`
	Pubkey []byte           `json:"pubkey"`
}

// DeploymentID identifies one deployment: owner plus sequence number.
type DeploymentID struct {
	Owner AccountAddress `json:"owner"`
	DSeq  uint64         `json:"dseq"`
}

// String renders the canonical owner/dseq form used for escrow account ids.
func (id DeploymentID) String() string {
	return fmt.Sprintf("%s/%d", id.Owner, id.DSeq)
}

// LeaseID uniquely addresses one lease and is used to construct every
// provider-facing request path.
type LeaseID struct {
	Owner    AccountAddress `json:"owner"`
	DSeq     uint64         `json:"dseq"`
	GSeq     uint32         `json:"gseq"`
	OSeq     uint32         `json:"oseq"`
	Provider AccountAddress `json:"provider"`
}

// Validate checks that every component of the lease id is set.
func (id LeaseID) Validate() error {
	if err := id.Owner.Validate(); err != nil {
		return fmt.Errorf("lease owner: %w", err)
	}
	if err := id.Provider.Validate(); err != nil {
		return fmt.Errorf("lease provider: %w", err)
	}
	if id.DSeq == 0 {
		return errors.New("lease dseq must be positive")
	}
	if id.GSeq == 0 || id.OSeq == 0 {
		return errors.New("lease gseq and oseq must be positive")
	}
	return nil
}

// BidID identifies a provider's bid on one deployment order. It shares the
// lease id shape; a lease is created by accepting exactly one bid.
type BidID = LeaseID

// Attribute is one key/value pair of a provider's advertised attributes.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ProviderInfo is a provider's on-chain registration: its account, the
// endpoint tenants connect to, and its advertised attributes.
type ProviderInfo struct {
	Owner      AccountAddress `json:"owner"`
	HostURI    string         `json:"hostUri"`
	Attributes []Attribute    `json:"attributes,omitempty"`
}

// Coin is an amount of one denomination, both kept as strings to avoid
// precision loss on large chain values.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Deployment is the partial on-chain deployment view the agent consumes.
type Deployment struct {
	ID        DeploymentID `json:"id"`
	State     string       `json:"state"`
	Hash      []byte       `json:"hash,omitempty"`
	CreatedAt int64        `json:"createdAt,omitempty"`
}

// Group is one resource group of a deployment.
type Group struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// EscrowAccount funds a deployment's ongoing cost.
type EscrowAccount struct {
	Balance     Coin `json:"balance"`
	Transferred Coin `json:"transferred"`
}

// DeploymentInfo bundles a deployment with its groups and escrow account, the
// shape returned by the chain's deployment info query.
type DeploymentInfo struct {
	Deployment Deployment     `json:"deployment"`
	Groups     []Group        `json:"groups"`
	Escrow     *EscrowAccount `json:"escrowAccount,omitempty"`
}

// Bid is a provider's offer for one deployment order.
type Bid struct {
	ID        BidID  `json:"id"`
	State     string `json:"state"`
	Price     Coin   `json:"price"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

// Lease is the binding contract between a deployment group and a provider bid.
type Lease struct {
	ID    LeaseID `json:"id"`
	State string  `json:"state"`
	Price Coin    `json:"price"`
}

// TxResult is the outcome of a broadcast and confirmed transaction.
type TxResult struct {
	Hash   string `json:"hash"`
	Code   uint32 `json:"code"`
	Height int64  `json:"height"`
	RawLog string `json:"rawLog,omitempty"`
}

// EscrowScope selects the kind of escrow account a deposit targets.
type EscrowScope int32

// EscrowScopeDeployment is the deployment escrow scope; the xid is owner/dseq.
const EscrowScopeDeployment EscrowScope = 1
