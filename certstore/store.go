// Package certstore persists one TLS identity per account address on disk.
// Identities are stored as a JSON object of three PEM strings and are
// normalized to Unix line endings on every load: provider TLS stacks and the
// chain's signature checks are both sensitive to byte-exact PEM content.
package certstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alternatefutures/akash-agent/interfaces"
)

// Store is a directory of address-keyed identity files.
type Store struct {
	dir string
	log *slog.Logger
}

// New creates a store rooted at dir. The directory is created lazily on the
// first Save, not here, so constructing a store never touches the filesystem.
func New(dir string, log *slog.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// Path returns the identity file path for an account address.
func (s *Store) Path(addr interfaces.AccountAddress) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.json", addr))
}

// Load reads and normalizes the persisted identity for an address. Returns
// interfaces.ErrNoIdentity if no file exists; a missing identity is an
// expected state, not a failure.
func (s *Store) Load(addr interfaces.AccountAddress) (interfaces.Identity, error) {
	path := s.Path(addr)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return interfaces.Identity{}, interfaces.ErrNoIdentity
	} else if err != nil {
		return interfaces.Identity{}, fmt.Errorf("failed to read identity file: %w", err)
	}

	var id interfaces.Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return interfaces.Identity{}, fmt.Errorf("failed to parse identity file %s: %w", path, err)
	}

	s.log.Debug("Loaded identity from disk",
		slog.String("address", addr.String()),
		slog.String("path", path))

	return NormalizeIdentity(id), nil
}

// Save writes the identity verbatim to the address-keyed location, creating
// the store directory if absent. Any prior file for the address is
// overwritten without backup. Callers must normalize before saving.
func (s *Store) Save(addr interfaces.AccountAddress, id interfaces.Identity) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create identity directory: %w", err)
	}

	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}

	path := s.Path(addr)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write identity file: %w", err)
	}

	s.log.Debug("Saved identity to disk",
		slog.String("address", addr.String()),
		slog.String("path", path))

	return nil
}

// Delete removes the persisted identity for an address. Deleting an absent
// identity is a no-op.
func (s *Store) Delete(addr interfaces.AccountAddress) error {
	err := os.Remove(s.Path(addr))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// NormalizePEM converts all CR-LF and lone-CR sequences to LF. Idempotent.
func NormalizePEM(pem string) string {
	pem = strings.ReplaceAll(pem, "\r\n", "\n")
	return strings.ReplaceAll(pem, "\r", "\n")
}

// NormalizeIdentity normalizes line endings in all three PEM fields.
func NormalizeIdentity(id interfaces.Identity) interfaces.Identity {
	return interfaces.Identity{
		Cert:       NormalizePEM(id.Cert),
		PublicKey:  NormalizePEM(id.PublicKey),
		PrivateKey: NormalizePEM(id.PrivateKey),
	}
}
