// Package tools implements the operator-facing operations of the agent:
// deployment lifecycle, bid and lease inspection, escrow funding, the TLS
// identity lifecycle, and provider-facing calls (manifest push, service
// status, log tail, remote exec).
//
// Every invocation runs inside a fresh Context built by the Provider. The
// identity handle is explicit and reloaded from the store during context
// construction, since a prior regenerate operation may have replaced it. No
// operation may hold a cached credential across invocations.
package tools

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alternatefutures/akash-agent/certmanager"
	"github.com/alternatefutures/akash-agent/certstore"
	"github.com/alternatefutures/akash-agent/common"
	"github.com/alternatefutures/akash-agent/interfaces"
	"github.com/alternatefutures/akash-agent/provider"
)

// ErrNoAccount is returned when no signing account is configured. This is a
// configuration error, fatal to the invocation.
var ErrNoAccount = errors.New("no account available")

// Signer is the wallet surface the tools need: just the account address.
// Transaction signing happens behind the TxClient.
type Signer interface {
	Address() interfaces.AccountAddress
}

// Provider builds per-invocation execution contexts.
type Provider struct {
	signer Signer
	query  interfaces.QueryClient
	tx     interfaces.TxClient
	store  *certstore.Store
	certs  *certmanager.Manager
	safety common.ProviderSafety
	log    *slog.Logger

	// Stream timeout overrides; zero means the engine defaults.
	LogTimeout  time.Duration
	ExecTimeout time.Duration
}

// NewProvider wires the tool context provider. signer may be nil when no
// mnemonic is configured; operations that need an account then fail with
// ErrNoAccount.
func NewProvider(signer Signer, query interfaces.QueryClient, tx interfaces.TxClient, store *certstore.Store, certs *certmanager.Manager, safety common.ProviderSafety, log *slog.Logger) *Provider {
	return &Provider{
		signer: signer,
		query:  query,
		tx:     tx,
		store:  store,
		certs:  certs,
		safety: safety,
		log:    log,
	}
}

// Context is one invocation's execution context. The Identity field holds
// whatever the store contained at construction time; provider-facing
// operations re-ensure it instead of using it directly.
type Context struct {
	Address  interfaces.AccountAddress
	Identity interfaces.Identity
	Query    interfaces.QueryClient
	Tx       interfaces.TxClient

	store  *certstore.Store
	certs  *certmanager.Manager
	safety common.ProviderSafety
	log    *slog.Logger

	logTimeout  time.Duration
	execTimeout time.Duration
}

// NewContext builds a fresh context, re-reading the identity store. The
// reload is a required construction step, not an optional side channel: a
// concurrent regenerate may have replaced the identity since the last call.
func (p *Provider) NewContext() (*Context, error) {
	if p.signer == nil {
		return nil, ErrNoAccount
	}
	addr := p.signer.Address()

	identity, err := p.store.Load(addr)
	if err != nil && err != interfaces.ErrNoIdentity {
		return nil, err
	}

	return &Context{
		Address:     addr,
		Identity:    identity,
		Query:       p.query,
		Tx:          p.tx,
		store:       p.store,
		certs:       p.certs,
		safety:      p.safety,
		log:         p.log,
		logTimeout:  p.LogTimeout,
		execTimeout: p.ExecTimeout,
	}, nil
}

// providerClient ensures a chain-registered identity exists and builds the
// mTLS client for provider-facing calls.
func (c *Context) providerClient(ctx context.Context) (*provider.Client, error) {
	id, err := c.certs.Ensure(ctx, c.Address, c.Tx)
	if err != nil {
		return nil, err
	}
	c.Identity = id

	client, err := provider.NewClient(id, c.log)
	if err != nil {
		return nil, err
	}
	if c.logTimeout > 0 {
		client.LogTimeout = c.logTimeout
	}
	if c.execTimeout > 0 {
		client.ExecTimeout = c.execTimeout
	}
	return client, nil
}
