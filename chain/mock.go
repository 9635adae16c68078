package chain

import (
	"context"
	"encoding/json"

	"github.com/alternatefutures/akash-agent/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockQueryClient mocks the interfaces.QueryClient interface
type MockQueryClient struct {
	mock.Mock
}

// Balances mocks the Balances method
func (m *MockQueryClient) Balances(ctx context.Context, addr interfaces.AccountAddress) ([]interfaces.Coin, error) {
	args := m.Called(ctx, addr)
	return args.Get(0).([]interfaces.Coin), args.Error(1)
}

// Deployment mocks the Deployment method
func (m *MockQueryClient) Deployment(ctx context.Context, id interfaces.DeploymentID) (*interfaces.DeploymentInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.DeploymentInfo), args.Error(1)
}

// Bids mocks the Bids method
func (m *MockQueryClient) Bids(ctx context.Context, owner interfaces.AccountAddress, dseq uint64) ([]interfaces.Bid, error) {
	args := m.Called(ctx, owner, dseq)
	return args.Get(0).([]interfaces.Bid), args.Error(1)
}

// Leases mocks the Leases method
func (m *MockQueryClient) Leases(ctx context.Context, owner interfaces.AccountAddress, dseq uint64, provider interfaces.AccountAddress) ([]interfaces.Lease, error) {
	args := m.Called(ctx, owner, dseq, provider)
	return args.Get(0).([]interfaces.Lease), args.Error(1)
}

// Provider mocks the Provider method
func (m *MockQueryClient) Provider(ctx context.Context, owner interfaces.AccountAddress) (*interfaces.ProviderInfo, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.ProviderInfo), args.Error(1)
}

// Certificates mocks the Certificates method
func (m *MockQueryClient) Certificates(ctx context.Context, owner interfaces.AccountAddress, serial string, state interfaces.CertificateState) ([]interfaces.CertificateRecord, error) {
	args := m.Called(ctx, owner, serial, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interfaces.CertificateRecord), args.Error(1)
}

// LatestHeight mocks the LatestHeight method
func (m *MockQueryClient) LatestHeight(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

// MockTxClient mocks the interfaces.TxClient interface
type MockTxClient struct {
	mock.Mock
}

// CreateDeployment mocks the CreateDeployment method
func (m *MockTxClient) CreateDeployment(ctx context.Context, id interfaces.DeploymentID, groups json.RawMessage, hash []byte, deposit interfaces.Coin) (*interfaces.TxResult, error) {
	args := m.Called(ctx, id, groups, hash, deposit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.TxResult), args.Error(1)
}

// UpdateDeployment mocks the UpdateDeployment method
func (m *MockTxClient) UpdateDeployment(ctx context.Context, id interfaces.DeploymentID, hash []byte) (*interfaces.TxResult, error) {
	args := m.Called(ctx, id, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.TxResult), args.Error(1)
}

// CloseDeployment mocks the CloseDeployment method
func (m *MockTxClient) CloseDeployment(ctx context.Context, id interfaces.DeploymentID) (*interfaces.TxResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.TxResult), args.Error(1)
}

// CreateLease mocks the CreateLease method
func (m *MockTxClient) CreateLease(ctx context.Context, bid interfaces.BidID) (*interfaces.TxResult, error) {
	args := m.Called(ctx, bid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.TxResult), args.Error(1)
}

// DepositEscrow mocks the DepositEscrow method
func (m *MockTxClient) DepositEscrow(ctx context.Context, scope interfaces.EscrowScope, xid string, amount interfaces.Coin) (*interfaces.TxResult, error) {
	args := m.Called(ctx, scope, xid, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.TxResult), args.Error(1)
}

// CreateCertificate mocks the CreateCertificate method
func (m *MockTxClient) CreateCertificate(ctx context.Context, owner interfaces.AccountAddress, cert, pubkey []byte) (*interfaces.TxResult, error) {
	args := m.Called(ctx, owner, cert, pubkey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.TxResult), args.Error(1)
}

// RevokeCertificate mocks the RevokeCertificate method
func (m *MockTxClient) RevokeCertificate(ctx context.Context, owner interfaces.AccountAddress, serial string) (*interfaces.TxResult, error) {
	args := m.Called(ctx, owner, serial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.TxResult), args.Error(1)
}
