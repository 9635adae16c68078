package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alternatefutures/akash-agent/interfaces"
)

// TxClient broadcasts marketplace transactions through a signing sidecar:
// the sidecar holds the account key, signs the message it receives, and
// broadcasts it, returning the confirmed transaction result. Chain-level
// rejections come back as the response body text, so messages like
// "certificate already exists" are visible to callers verbatim.
type TxClient struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewTxClient creates a transaction client for a signing sidecar endpoint.
func NewTxClient(baseURL string, log *slog.Logger) *TxClient {
	return &TxClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		log:     log,
	}
}

// CreateDeployment broadcasts a deployment creation.
func (c *TxClient) CreateDeployment(ctx context.Context, id interfaces.DeploymentID, groups json.RawMessage, hash []byte, deposit interfaces.Coin) (*interfaces.TxResult, error) {
	return c.broadcast(ctx, "create-deployment", map[string]any{
		"id":      id,
		"groups":  groups,
		"hash":    hash,
		"deposit": deposit,
	})
}

// UpdateDeployment broadcasts a new manifest version hash.
func (c *TxClient) UpdateDeployment(ctx context.Context, id interfaces.DeploymentID, hash []byte) (*interfaces.TxResult, error) {
	return c.broadcast(ctx, "update-deployment", map[string]any{
		"id":   id,
		"hash": hash,
	})
}

// CloseDeployment closes a deployment.
func (c *TxClient) CloseDeployment(ctx context.Context, id interfaces.DeploymentID) (*interfaces.TxResult, error) {
	return c.broadcast(ctx, "close-deployment", map[string]any{
		"id": id,
	})
}

// CreateLease accepts a bid.
func (c *TxClient) CreateLease(ctx context.Context, bid interfaces.BidID) (*interfaces.TxResult, error) {
	return c.broadcast(ctx, "create-lease", map[string]any{
		"bidId": bid,
	})
}

// DepositEscrow adds funds to an escrow account.
func (c *TxClient) DepositEscrow(ctx context.Context, scope interfaces.EscrowScope, xid string, amount interfaces.Coin) (*interfaces.TxResult, error) {
	return c.broadcast(ctx, "deposit-escrow", map[string]any{
		"scope":  scope,
		"xid":    xid,
		"amount": amount,
	})
}

// CreateCertificate registers a client TLS certificate on chain.
func (c *TxClient) CreateCertificate(ctx context.Context, owner interfaces.AccountAddress, cert, pubkey []byte) (*interfaces.TxResult, error) {
	return c.broadcast(ctx, "create-certificate", map[string]any{
		"owner":  owner,
		"cert":   cert,
		"pubkey": pubkey,
	})
}

// RevokeCertificate revokes one certificate serial.
func (c *TxClient) RevokeCertificate(ctx context.Context, owner interfaces.AccountAddress, serial string) (*interfaces.TxResult, error) {
	return c.broadcast(ctx, "revoke-certificate", map[string]any{
		"owner":  owner,
		"serial": serial,
	})
}

// broadcast posts one message to the sidecar and decodes the tx result.
func (c *TxClient) broadcast(ctx context.Context, msg string, payload map[string]any) (*interfaces.TxResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("could not encode %s message: %w", msg, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/tx/%s", c.baseURL, msg), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach signing sidecar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s rejected: %s", msg, strings.TrimSpace(string(respBody)))
	}

	var result interfaces.TxResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("could not parse %s result: %w", msg, err)
	}

	c.log.Debug("Transaction confirmed",
		slog.String("msg", msg),
		slog.String("hash", result.Hash),
		slog.Int64("height", result.Height))

	return &result, nil
}
