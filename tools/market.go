package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alternatefutures/akash-agent/interfaces"
)

// BidView is one bid enriched with the bidding provider's registration.
// Provider enrichment is best-effort: a failed provider lookup annotates the
// bid instead of failing the listing.
type BidView struct {
	BidID         interfaces.BidID         `json:"bidId"`
	State         string                   `json:"state"`
	Price         interfaces.Coin          `json:"price"`
	CreatedAt     int64                    `json:"createdAt,omitempty"`
	Provider      *interfaces.ProviderInfo `json:"provider,omitempty"`
	ProviderError string                   `json:"providerError,omitempty"`
}

// BidsResult lists bids on a deployment.
type BidsResult struct {
	Bids []BidView `json:"bids"`
}

// GetBids lists bids placed on a deployment, each enriched with the
// provider's endpoint and attributes so callers can pick one to lease from.
func (c *Context) GetBids(ctx context.Context, owner interfaces.AccountAddress, dseq uint64) (*BidsResult, error) {
	bids, err := c.Query.Bids(ctx, owner, dseq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bids: %w", err)
	}

	views := make([]BidView, 0, len(bids))
	for _, bid := range bids {
		view := BidView{
			BidID:     bid.ID,
			State:     bid.State,
			Price:     bid.Price,
			CreatedAt: bid.CreatedAt,
		}
		info, err := c.Query.Provider(ctx, bid.ID.Provider)
		if err != nil {
			c.log.Warn("Could not fetch provider for bid",
				slog.String("provider", bid.ID.Provider.String()), "err", err)
			view.ProviderError = "could not fetch provider details"
		} else {
			view.Provider = info
		}
		views = append(views, view)
	}

	return &BidsResult{Bids: views}, nil
}

// CreateLeaseResult reports an accepted bid.
type CreateLeaseResult struct {
	Success bool                 `json:"success"`
	Result  *interfaces.TxResult `json:"result"`
}

// CreateLease accepts a bid, creating the lease that binds the deployment
// group to the provider.
func (c *Context) CreateLease(ctx context.Context, bid interfaces.BidID) (*CreateLeaseResult, error) {
	if err := bid.Validate(); err != nil {
		return nil, err
	}
	res, err := c.Tx.CreateLease(ctx, bid)
	if err != nil {
		return nil, fmt.Errorf("failed to create lease: %w", err)
	}
	return &CreateLeaseResult{Success: true, Result: res}, nil
}
