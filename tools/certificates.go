package tools

import (
	"context"
	"fmt"

	"github.com/alternatefutures/akash-agent/certmanager"
	"github.com/alternatefutures/akash-agent/interfaces"
)

// RevokeCertificateResult reports a single revocation.
type RevokeCertificateResult struct {
	Success bool                 `json:"success"`
	Serial  string               `json:"serial"`
	Result  *interfaces.TxResult `json:"result"`
}

// RevokeCertificate revokes one certificate serial owned by the signing
// account.
func (c *Context) RevokeCertificate(ctx context.Context, serial string) (*RevokeCertificateResult, error) {
	if serial == "" {
		return nil, fmt.Errorf("serial must not be empty")
	}
	res, err := c.certs.RevokeOne(ctx, c.Address, serial, c.Tx)
	if err != nil {
		return nil, err
	}
	return &RevokeCertificateResult{Success: true, Serial: serial, Result: res}, nil
}

// RevokeAllResult reports a batch revocation, successes and failures both.
type RevokeAllResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	certmanager.RevokeResult
}

// RevokeAllCertificates revokes every valid on-chain certificate of the
// signing account. Used to clean up stale records when providers return 401.
func (c *Context) RevokeAllCertificates(ctx context.Context) (*RevokeAllResult, error) {
	res, err := c.certs.RevokeAll(ctx, c.Address, c.Query, c.Tx)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Revoked %d of %d certificates", res.Revoked, res.Total)
	if res.Total == 0 {
		msg = "No certificates found to revoke"
	}
	return &RevokeAllResult{Success: true, Message: msg, RevokeResult: *res}, nil
}

// RegenerateResult reports a full identity regeneration.
type RegenerateResult struct {
	Success      bool                      `json:"success"`
	Message      string                    `json:"message"`
	Address      interfaces.AccountAddress `json:"address"`
	IdentityPath string                    `json:"certPath"`
	RevokedCount int                       `json:"revokedCount"`
}

// RegenerateCertificate replaces the account's TLS identity wholesale:
// revoke old records, delete the local file, generate, broadcast, persist.
// The operator's remedy for 401s on manifest send.
func (c *Context) RegenerateCertificate(ctx context.Context) (*RegenerateResult, error) {
	_, revoked, err := c.certs.Regenerate(ctx, c.Address, c.Query, c.Tx)
	if err != nil {
		return nil, err
	}

	return &RegenerateResult{
		Success: true,
		Message: fmt.Sprintf("Certificate regenerated successfully. Revoked %d old certificate(s). "+
			"You can now retry sending the manifest.", revoked),
		Address:      c.Address,
		IdentityPath: c.store.Path(c.Address),
		RevokedCount: revoked,
	}, nil
}
