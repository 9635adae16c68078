package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alternatefutures/akash-agent/interfaces"
	"github.com/alternatefutures/akash-agent/manifest"
)

// GetDeployment fetches a deployment owned by the signing account, with its
// groups and escrow account.
func (c *Context) GetDeployment(ctx context.Context, dseq uint64) (*interfaces.DeploymentInfo, error) {
	id := interfaces.DeploymentID{Owner: c.Address, DSeq: dseq}
	info, err := c.Query.Deployment(ctx, id)
	if err != nil {
		if err == interfaces.ErrDeploymentNotFound {
			return nil, fmt.Errorf("deployment %d not found for owner %s", dseq, c.Address)
		}
		return nil, err
	}
	return info, nil
}

// CreateDeploymentResult reports a created deployment: the sequence number
// callers need for every follow-up operation.
type CreateDeploymentResult struct {
	Success bool                      `json:"success"`
	DSeq    uint64                    `json:"dseq"`
	Owner   interfaces.AccountAddress `json:"owner"`
	Result  *interfaces.TxResult      `json:"result"`
}

// CreateDeployment creates a new deployment. The raw manifest JSON is
// canonicalized and hashed here; the current block height becomes the
// deployment sequence number.
func (c *Context) CreateDeployment(ctx context.Context, rawManifest, groups json.RawMessage, deposit interfaces.Coin) (*CreateDeploymentResult, error) {
	canonical, err := manifest.Canonical(rawManifest)
	if err != nil {
		return nil, err
	}

	height, err := c.Query.LatestHeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch block height: %w", err)
	}

	id := interfaces.DeploymentID{Owner: c.Address, DSeq: height}
	res, err := c.Tx.CreateDeployment(ctx, id, groups, manifest.Version(canonical), deposit)
	if err != nil {
		return nil, fmt.Errorf("failed to create deployment: %w", err)
	}

	return &CreateDeploymentResult{
		Success: true,
		DSeq:    height,
		Owner:   c.Address,
		Result:  res,
	}, nil
}

// UpdateDeploymentResult reports a deployment update.
type UpdateDeploymentResult struct {
	Success bool                 `json:"success"`
	Result  *interfaces.TxResult `json:"result"`
}

// UpdateDeployment broadcasts a new manifest version for an existing
// deployment and pushes the manifest to the provider holding its lease.
func (c *Context) UpdateDeployment(ctx context.Context, dseq uint64, providerAddr interfaces.AccountAddress, rawManifest json.RawMessage) (*UpdateDeploymentResult, error) {
	canonical, err := manifest.Canonical(rawManifest)
	if err != nil {
		return nil, err
	}

	leases, err := c.Query.Leases(ctx, c.Address, dseq, providerAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to query leases: %w", err)
	}
	if len(leases) == 0 {
		return nil, fmt.Errorf("no leases found for deployment %d", dseq)
	}

	id := interfaces.DeploymentID{Owner: c.Address, DSeq: dseq}
	res, err := c.Tx.UpdateDeployment(ctx, id, manifest.Version(canonical))
	if err != nil {
		return nil, fmt.Errorf("failed to update deployment: %w", err)
	}

	if _, err := c.SendManifest(ctx, leases[0].ID, rawManifest); err != nil {
		return nil, err
	}

	return &UpdateDeploymentResult{Success: true, Result: res}, nil
}

// CloseDeploymentResult reports a closed deployment.
type CloseDeploymentResult struct {
	Success bool                 `json:"success"`
	Result  *interfaces.TxResult `json:"result"`
}

// CloseDeployment closes a deployment owned by the signing account.
func (c *Context) CloseDeployment(ctx context.Context, dseq uint64) (*CloseDeploymentResult, error) {
	id := interfaces.DeploymentID{Owner: c.Address, DSeq: dseq}
	res, err := c.Tx.CloseDeployment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to close deployment: %w", err)
	}
	return &CloseDeploymentResult{Success: true, Result: res}, nil
}
