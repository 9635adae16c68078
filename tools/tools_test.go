package tools

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alternatefutures/akash-agent/certmanager"
	"github.com/alternatefutures/akash-agent/certstore"
	"github.com/alternatefutures/akash-agent/chain"
	"github.com/alternatefutures/akash-agent/common"
	"github.com/alternatefutures/akash-agent/interfaces"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const (
	testAddr     = interfaces.AccountAddress("akash1qqqsyqcyq5rqwzqfpg9scrgwpugpzysnrujsuw")
	testProvider = interfaces.AccountAddress("akash1provider00000000000000000000000000000")
)

type stubSigner struct{}

func (stubSigner) Address() interfaces.AccountAddress { return testAddr }

func newTestProvider(t *testing.T, query *chain.MockQueryClient, tx *chain.MockTxClient) *Provider {
	t.Helper()
	store := certstore.New(t.TempDir(), testLogger())
	certs := certmanager.New(store, testLogger())
	safety := common.ProviderSafety{
		ProxyProvider:     string(testProvider),
		ProxyProviderName: "ProxyHost",
		KnownProviders: map[string]common.KnownProvider{
			string(testProvider): {Name: "ProxyHost", Notes: "hosts the SSL proxy"},
		},
	}
	return NewProvider(stubSigner{}, query, tx, store, certs, safety, testLogger())
}

func newTestContext(t *testing.T, query *chain.MockQueryClient, tx *chain.MockTxClient) *Context {
	t.Helper()
	c, err := newTestProvider(t, query, tx).NewContext()
	require.NoError(t, err)
	return c
}

func TestNewContextWithoutSignerFails(t *testing.T) {
	store := certstore.New(t.TempDir(), testLogger())
	certs := certmanager.New(store, testLogger())
	p := NewProvider(nil, new(chain.MockQueryClient), new(chain.MockTxClient),
		store, certs, common.ProviderSafety{}, testLogger())

	_, err := p.NewContext()
	assert.ErrorIs(t, err, ErrNoAccount)
}

func TestNewContextReloadsIdentityFromStore(t *testing.T) {
	query := new(chain.MockQueryClient)
	tx := new(chain.MockTxClient)
	p := newTestProvider(t, query, tx)

	first, err := p.NewContext()
	require.NoError(t, err)
	assert.Empty(t, first.Identity.Cert)

	id, err := certmanager.Generate(testAddr)
	require.NoError(t, err)
	require.NoError(t, p.store.Save(testAddr, id))

	second, err := p.NewContext()
	require.NoError(t, err)
	assert.Equal(t, id, second.Identity, "a context built after a save must see the new identity")
}

func TestAccountAddress(t *testing.T) {
	c := newTestContext(t, new(chain.MockQueryClient), new(chain.MockTxClient))
	assert.Equal(t, testAddr, c.AccountAddress().Address)
}

func TestBalancesRejectsMalformedAddress(t *testing.T) {
	c := newTestContext(t, new(chain.MockQueryClient), new(chain.MockTxClient))

	_, err := c.Balances(context.Background(), "NOT-AN-ADDRESS")
	require.Error(t, err)
}

func TestBalances(t *testing.T) {
	query := new(chain.MockQueryClient)
	query.On("Balances", mock.Anything, testAddr).
		Return([]interfaces.Coin{{Denom: "uakt", Amount: "42"}}, nil).Once()

	c := newTestContext(t, query, new(chain.MockTxClient))

	res, err := c.Balances(context.Background(), testAddr)
	require.NoError(t, err)
	require.Len(t, res.Balances, 1)
	assert.Equal(t, "42", res.Balances[0].Amount)
}

func TestAddFundsValidatesDeploymentFirst(t *testing.T) {
	query := new(chain.MockQueryClient)
	query.On("Deployment", mock.Anything, interfaces.DeploymentID{Owner: testAddr, DSeq: 7}).
		Return(nil, interfaces.ErrDeploymentNotFound).Once()

	tx := new(chain.MockTxClient)
	c := newTestContext(t, query, tx)

	_, err := c.AddFunds(context.Background(), testAddr, 7, interfaces.Coin{Denom: "uakt", Amount: "10"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	tx.AssertNotCalled(t, "DepositEscrow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddFundsDepositsIntoDeploymentEscrow(t *testing.T) {
	id := interfaces.DeploymentID{Owner: testAddr, DSeq: 7}

	query := new(chain.MockQueryClient)
	query.On("Deployment", mock.Anything, id).
		Return(&interfaces.DeploymentInfo{}, nil).Once()

	tx := new(chain.MockTxClient)
	tx.On("DepositEscrow", mock.Anything, interfaces.EscrowScopeDeployment, id.String(),
		interfaces.Coin{Denom: "uakt", Amount: "10"}).
		Return(&interfaces.TxResult{Hash: "h"}, nil).Once()

	c := newTestContext(t, query, tx)

	res, err := c.AddFunds(context.Background(), testAddr, 7, interfaces.Coin{Denom: "uakt", Amount: "10"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	tx.AssertExpectations(t)
}

func TestGetDeploymentNotFound(t *testing.T) {
	query := new(chain.MockQueryClient)
	query.On("Deployment", mock.Anything, mock.Anything).
		Return(nil, interfaces.ErrDeploymentNotFound).Once()

	c := newTestContext(t, query, new(chain.MockTxClient))

	_, err := c.GetDeployment(context.Background(), 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deployment 99 not found")
}

func TestCreateDeploymentUsesBlockHeightAsSequence(t *testing.T) {
	rawManifest := json.RawMessage(`{"services": {"web": {}}}`)
	canonical := []byte(`{"services":{"web":{}}}`)
	wantHash := sha256.Sum256(canonical)

	query := new(chain.MockQueryClient)
	query.On("LatestHeight", mock.Anything).Return(uint64(5500), nil).Once()

	tx := new(chain.MockTxClient)
	tx.On("CreateDeployment", mock.Anything,
		interfaces.DeploymentID{Owner: testAddr, DSeq: 5500},
		mock.Anything, wantHash[:], interfaces.Coin{Denom: "uakt", Amount: "5000000"}).
		Return(&interfaces.TxResult{Hash: "h"}, nil).Once()

	c := newTestContext(t, query, tx)

	res, err := c.CreateDeployment(context.Background(), rawManifest, json.RawMessage(`[]`),
		interfaces.Coin{Denom: "uakt", Amount: "5000000"})
	require.NoError(t, err)
	assert.Equal(t, uint64(5500), res.DSeq)
	assert.Equal(t, testAddr, res.Owner)
	tx.AssertExpectations(t)
}

func TestCreateDeploymentRejectsInvalidManifest(t *testing.T) {
	tx := new(chain.MockTxClient)
	c := newTestContext(t, new(chain.MockQueryClient), tx)

	_, err := c.CreateDeployment(context.Background(), json.RawMessage(`{broken`),
		json.RawMessage(`[]`), interfaces.Coin{})
	require.Error(t, err)
	tx.AssertNotCalled(t, "CreateDeployment",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateDeploymentRequiresLease(t *testing.T) {
	query := new(chain.MockQueryClient)
	query.On("Leases", mock.Anything, testAddr, uint64(7), testProvider).
		Return([]interfaces.Lease{}, nil).Once()

	tx := new(chain.MockTxClient)
	c := newTestContext(t, query, tx)

	_, err := c.UpdateDeployment(context.Background(), 7, testProvider, json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no leases found")
	tx.AssertNotCalled(t, "UpdateDeployment", mock.Anything, mock.Anything, mock.Anything)
}

func TestCloseDeployment(t *testing.T) {
	tx := new(chain.MockTxClient)
	tx.On("CloseDeployment", mock.Anything, interfaces.DeploymentID{Owner: testAddr, DSeq: 3}).
		Return(&interfaces.TxResult{Hash: "closed"}, nil).Once()

	c := newTestContext(t, new(chain.MockQueryClient), tx)

	res, err := c.CloseDeployment(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "closed", res.Result.Hash)
}

func TestGetBidsEnrichmentIsBestEffort(t *testing.T) {
	goodProvider := interfaces.AccountAddress("akash1good")
	badProvider := interfaces.AccountAddress("akash1bad")

	bids := []interfaces.Bid{
		{ID: interfaces.BidID{Owner: testAddr, DSeq: 1, GSeq: 1, OSeq: 1, Provider: goodProvider}, State: "open"},
		{ID: interfaces.BidID{Owner: testAddr, DSeq: 1, GSeq: 1, OSeq: 1, Provider: badProvider}, State: "open"},
	}

	query := new(chain.MockQueryClient)
	query.On("Bids", mock.Anything, testAddr, uint64(1)).Return(bids, nil).Once()
	query.On("Provider", mock.Anything, goodProvider).
		Return(&interfaces.ProviderInfo{Owner: goodProvider, HostURI: "https://good:8443"}, nil).Once()
	query.On("Provider", mock.Anything, badProvider).
		Return(nil, errors.New("node unavailable")).Once()

	c := newTestContext(t, query, new(chain.MockTxClient))

	res, err := c.GetBids(context.Background(), testAddr, 1)
	require.NoError(t, err)
	require.Len(t, res.Bids, 2)

	require.NotNil(t, res.Bids[0].Provider)
	assert.Equal(t, "https://good:8443", res.Bids[0].Provider.HostURI)
	assert.Empty(t, res.Bids[0].ProviderError)

	assert.Nil(t, res.Bids[1].Provider)
	assert.Equal(t, "could not fetch provider details", res.Bids[1].ProviderError)
}

func TestCreateLeaseValidatesBid(t *testing.T) {
	tx := new(chain.MockTxClient)
	c := newTestContext(t, new(chain.MockQueryClient), tx)

	_, err := c.CreateLease(context.Background(), interfaces.BidID{Owner: testAddr})
	require.Error(t, err)
	tx.AssertNotCalled(t, "CreateLease", mock.Anything, mock.Anything)
}

func TestExecCommandRequiresCommand(t *testing.T) {
	c := newTestContext(t, new(chain.MockQueryClient), new(chain.MockTxClient))

	lease := interfaces.LeaseID{Owner: testAddr, DSeq: 1, GSeq: 1, OSeq: 1, Provider: testProvider}
	_, err := c.ExecCommand(context.Background(), lease, "", "", false, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command must not be empty")
}

func TestRevokeCertificateRequiresSerial(t *testing.T) {
	c := newTestContext(t, new(chain.MockQueryClient), new(chain.MockTxClient))

	_, err := c.RevokeCertificate(context.Background(), "")
	require.Error(t, err)
}

func TestRevokeAllCertificatesEmptyMessage(t *testing.T) {
	query := new(chain.MockQueryClient)
	query.On("Certificates", mock.Anything, testAddr, "", interfaces.CertificateValid).
		Return([]interfaces.CertificateRecord{}, nil).Once()

	c := newTestContext(t, query, new(chain.MockTxClient))

	res, err := c.RevokeAllCertificates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "No certificates found to revoke", res.Message)
}

func TestRevokeAllCertificatesCountsInMessage(t *testing.T) {
	query := new(chain.MockQueryClient)
	query.On("Certificates", mock.Anything, testAddr, "", interfaces.CertificateValid).
		Return([]interfaces.CertificateRecord{
			{Serial: "1", State: interfaces.CertificateValid},
			{Serial: "2", State: interfaces.CertificateValid},
		}, nil).Once()

	tx := new(chain.MockTxClient)
	tx.On("RevokeCertificate", mock.Anything, testAddr, "1").Return(&interfaces.TxResult{}, nil).Once()
	tx.On("RevokeCertificate", mock.Anything, testAddr, "2").Return(nil, errors.New("boom")).Once()

	c := newTestContext(t, query, tx)

	res, err := c.RevokeAllCertificates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Revoked 1 of 2 certificates", res.Message)
	assert.Len(t, res.Errors, 1)
}

func TestRegenerateCertificateReportsPathAndCount(t *testing.T) {
	query := new(chain.MockQueryClient)
	query.On("Certificates", mock.Anything, testAddr, "", interfaces.CertificateValid).
		Return([]interfaces.CertificateRecord{{Serial: "old", State: interfaces.CertificateValid}}, nil).Once()

	tx := new(chain.MockTxClient)
	tx.On("RevokeCertificate", mock.Anything, testAddr, "old").Return(&interfaces.TxResult{}, nil).Once()
	tx.On("CreateCertificate", mock.Anything, testAddr, mock.Anything, mock.Anything).
		Return(&interfaces.TxResult{}, nil).Once()

	c := newTestContext(t, query, tx)

	res, err := c.RegenerateCertificate(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.RevokedCount)
	assert.Equal(t, c.store.Path(testAddr), res.IdentityPath)
	assert.Contains(t, res.Message, "Revoked 1 old certificate(s)")
}
