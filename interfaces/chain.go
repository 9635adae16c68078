package interfaces

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrProviderNotFound is returned when the chain has no registered endpoint
// for a provider account.
var ErrProviderNotFound = errors.New("provider not found")

// ErrDeploymentNotFound is returned when a deployment query matches nothing.
var ErrDeploymentNotFound = errors.New("deployment not found")

// ErrNoIdentity is returned by the identity store when no identity is
// persisted for an account. It is an expected condition, not a failure.
var ErrNoIdentity = errors.New("no identity persisted for account")

// QueryClient reads marketplace state from a chain node. Implementations must
// not cache: provider endpoints and certificate sets change between calls and
// staleness causes silent connection failures.
type QueryClient interface {
	// Balances returns all spendable balances of an account.
	Balances(ctx context.Context, addr AccountAddress) ([]Coin, error)

	// Deployment returns a deployment with its groups and escrow account.
	// Returns ErrDeploymentNotFound if no such deployment exists.
	Deployment(ctx context.Context, id DeploymentID) (*DeploymentInfo, error)

	// Bids lists bids placed on a deployment.
	Bids(ctx context.Context, owner AccountAddress, dseq uint64) ([]Bid, error)

	// Leases lists leases for a deployment, optionally filtered by provider.
	Leases(ctx context.Context, owner AccountAddress, dseq uint64, provider AccountAddress) ([]Lease, error)

	// Provider returns a provider's registration.
	// Returns ErrProviderNotFound if the account has none.
	Provider(ctx context.Context, owner AccountAddress) (*ProviderInfo, error)

	// Certificates lists certificate records for an owner. serial and state
	// are optional filters; empty values match everything.
	Certificates(ctx context.Context, owner AccountAddress, serial string, state CertificateState) ([]CertificateRecord, error)

	// LatestHeight returns the current block height, used as the sequence
	// number for new deployments.
	LatestHeight(ctx context.Context) (uint64, error)
}

// TxClient broadcasts signed marketplace transactions and waits for their
// inclusion. Signing itself is outside this repository; implementations
// delegate to whatever holds the key.
type TxClient interface {
	// CreateDeployment broadcasts a deployment creation with its resource
	// groups, manifest version hash, and initial escrow deposit.
	CreateDeployment(ctx context.Context, id DeploymentID, groups json.RawMessage, hash []byte, deposit Coin) (*TxResult, error)

	// UpdateDeployment broadcasts a new manifest version hash for an existing
	// deployment.
	UpdateDeployment(ctx context.Context, id DeploymentID, hash []byte) (*TxResult, error)

	// CloseDeployment closes a deployment and releases its escrow.
	CloseDeployment(ctx context.Context, id DeploymentID) (*TxResult, error)

	// CreateLease accepts a bid, binding the deployment group to the provider.
	CreateLease(ctx context.Context, bid BidID) (*TxResult, error)

	// DepositEscrow adds funds to an escrow account.
	DepositEscrow(ctx context.Context, scope EscrowScope, xid string, amount Coin) (*TxResult, error)

	// CreateCertificate registers a client TLS certificate on chain. cert and
	// pubkey are the PEM bytes exactly as they will be presented to providers.
	CreateCertificate(ctx context.Context, owner AccountAddress, cert, pubkey []byte) (*TxResult, error)

	// RevokeCertificate revokes one certificate serial owned by owner.
	RevokeCertificate(ctx context.Context, owner AccountAddress, serial string) (*TxResult, error)
}
