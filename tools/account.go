package tools

import (
	"context"
	"fmt"

	"github.com/alternatefutures/akash-agent/interfaces"
)

// AddressResult reports the agent's signing account address.
type AddressResult struct {
	Address interfaces.AccountAddress `json:"address"`
}

// AccountAddress returns the configured signing account address.
func (c *Context) AccountAddress() *AddressResult {
	return &AddressResult{Address: c.Address}
}

// BalancesResult lists an account's spendable balances.
type BalancesResult struct {
	Balances []interfaces.Coin `json:"balances"`
}

// Balances fetches all balances of an account address.
func (c *Context) Balances(ctx context.Context, addr interfaces.AccountAddress) (*BalancesResult, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	coins, err := c.Query.Balances(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balances: %w", err)
	}
	return &BalancesResult{Balances: coins}, nil
}

// AddFundsResult reports an escrow deposit.
type AddFundsResult struct {
	Success bool                 `json:"success"`
	Result  *interfaces.TxResult `json:"result"`
}

// AddFunds deposits additional funds into a deployment's escrow account. The
// deployment is validated first so a typoed dseq fails before any funds move.
func (c *Context) AddFunds(ctx context.Context, addr interfaces.AccountAddress, dseq uint64, amount interfaces.Coin) (*AddFundsResult, error) {
	id := interfaces.DeploymentID{Owner: addr, DSeq: dseq}
	if _, err := c.Query.Deployment(ctx, id); err != nil {
		if err == interfaces.ErrDeploymentNotFound {
			return nil, fmt.Errorf("deployment with owner %s and dseq %d not found", addr, dseq)
		}
		return nil, err
	}

	res, err := c.Tx.DepositEscrow(ctx, interfaces.EscrowScopeDeployment, id.String(), amount)
	if err != nil {
		return nil, fmt.Errorf("failed to add funds to deployment: %w", err)
	}
	return &AddFundsResult{Success: true, Result: res}, nil
}
