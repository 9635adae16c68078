// Package certmanager owns the client TLS identity lifecycle: it guarantees
// that when a provider-facing call is made the account has exactly one local
// identity whose certificate is registered and valid on chain.
//
// The ordering invariant throughout is broadcast-before-persist: a fresh
// identity is never written to disk until the chain has accepted it, so a
// failed broadcast can not leave the local store ahead of chain state.
package certmanager

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alternatefutures/akash-agent/certstore"
	"github.com/alternatefutures/akash-agent/interfaces"
)

// alreadyExistsMsg is the chain's rejection text for a duplicate certificate.
// Matching is substring-based because the message arrives wrapped in
// transaction logs.
const alreadyExistsMsg = "certificate already exists"

// Manager drives identity creation, regeneration, and revocation against the
// identity store and the chain.
type Manager struct {
	store *certstore.Store
	log   *slog.Logger
}

// New creates a lifecycle manager backed by the given identity store.
func New(store *certstore.Store, log *slog.Logger) *Manager {
	return &Manager{store: store, log: log}
}

// RevokeResult reports the outcome of a batch revocation. Partial failure is
// expected: callers see exactly which serials were revoked and which were not.
type RevokeResult struct {
	Revoked int      `json:"revoked"`
	Total   int      `json:"total"`
	Serials []string `json:"revokedSerials,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Ensure returns a usable identity for the account, creating and broadcasting
// one if none is persisted.
//
// The fast path trusts the local store without an on-chain check: if a
// persisted identity exists it is returned as-is. A certificate revoked out
// of band therefore keeps being returned until an explicit Regenerate; the
// recovery path for 401s from providers is the regenerate operation.
func (m *Manager) Ensure(ctx context.Context, addr interfaces.AccountAddress, tx interfaces.TxClient) (interfaces.Identity, error) {
	id, err := m.store.Load(addr)
	if err == nil {
		return id, nil
	}
	if err != interfaces.ErrNoIdentity {
		return interfaces.Identity{}, err
	}

	id, err = Generate(addr)
	if err != nil {
		return interfaces.Identity{}, err
	}

	_, err = tx.CreateCertificate(ctx, addr, []byte(id.Cert), []byte(id.PublicKey))
	if err != nil {
		if !strings.Contains(err.Error(), alreadyExistsMsg) {
			return interfaces.Identity{}, fmt.Errorf("could not create certificate: %w", err)
		}
		// The chain already holds this record; treat create as idempotent.
		m.log.Warn("Certificate already registered on chain, persisting locally",
			slog.String("address", addr.String()))
	}

	if err := m.store.Save(addr, id); err != nil {
		return interfaces.Identity{}, err
	}

	m.log.Info("Created and registered new TLS identity",
		slog.String("address", addr.String()))

	return id, nil
}

// Regenerate replaces the account's identity wholesale: it best-effort
// revokes every valid on-chain certificate, deletes the local identity,
// generates new material, and broadcasts it. Unlike Ensure, a broadcast
// failure here is fatal even when the chain reports "already exists": that
// would mean the cleanup left a stale record in place and the new material is
// not the one in effect.
//
// Returns the new identity and how many old certificates were revoked.
func (m *Manager) Regenerate(ctx context.Context, addr interfaces.AccountAddress, query interfaces.QueryClient, tx interfaces.TxClient) (interfaces.Identity, int, error) {
	revoked := 0

	records, err := query.Certificates(ctx, addr, "", interfaces.CertificateValid)
	if err != nil {
		// Keep going: a failed listing must not block regeneration.
		m.log.Warn("Failed to query existing certificates",
			slog.String("address", addr.String()), "err", err)
	}
	for _, record := range records {
		if record.Serial == "" {
			continue
		}
		if _, err := tx.RevokeCertificate(ctx, addr, record.Serial); err != nil {
			m.log.Warn("Failed to revoke certificate, continuing",
				slog.String("serial", record.Serial), "err", err)
			continue
		}
		revoked++
	}

	if err := m.store.Delete(addr); err != nil {
		return interfaces.Identity{}, revoked, fmt.Errorf("failed to delete local identity: %w", err)
	}

	id, err := Generate(addr)
	if err != nil {
		return interfaces.Identity{}, revoked, err
	}

	if _, err := tx.CreateCertificate(ctx, addr, []byte(id.Cert), []byte(id.PublicKey)); err != nil {
		return interfaces.Identity{}, revoked, fmt.Errorf("failed to broadcast certificate: %w", err)
	}

	if err := m.store.Save(addr, id); err != nil {
		return interfaces.Identity{}, revoked, err
	}

	m.log.Info("Regenerated TLS identity",
		slog.String("address", addr.String()),
		slog.Int("revoked", revoked))

	return id, revoked, nil
}

// RevokeAll revokes every valid certificate of the account, independently per
// serial. Failures are collected, never fatal to the batch.
func (m *Manager) RevokeAll(ctx context.Context, addr interfaces.AccountAddress, query interfaces.QueryClient, tx interfaces.TxClient) (*RevokeResult, error) {
	records, err := query.Certificates(ctx, addr, "", interfaces.CertificateValid)
	if err != nil {
		return nil, fmt.Errorf("failed to query certificates: %w", err)
	}

	result := &RevokeResult{Total: len(records)}
	for _, record := range records {
		if record.Serial == "" {
			continue
		}
		if _, err := tx.RevokeCertificate(ctx, addr, record.Serial); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("serial %s: %s", record.Serial, err))
			continue
		}
		result.Serials = append(result.Serials, record.Serial)
		result.Revoked++
	}

	return result, nil
}

// RevokeOne revokes a single certificate serial owned by the account.
func (m *Manager) RevokeOne(ctx context.Context, addr interfaces.AccountAddress, serial string, tx interfaces.TxClient) (*interfaces.TxResult, error) {
	res, err := tx.RevokeCertificate(ctx, addr, serial)
	if err != nil {
		return nil, fmt.Errorf("failed to revoke certificate %s: %w", serial, err)
	}
	return res, nil
}
