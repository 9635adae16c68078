// Package chain implements the remote procedure boundary to the marketplace
// chain: a read-only query client speaking the node's REST (gRPC-gateway)
// mapping, and a transaction client delegating signing and broadcast to a
// sidecar. The rest of the repository consumes these only through the
// interfaces package.
package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alternatefutures/akash-agent/interfaces"
)

// QueryClient reads marketplace state from a chain node's REST endpoint.
// It never caches.
type QueryClient struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewQueryClient creates a query client for a node REST endpoint, e.g.
// "https://rest.akashnet.example:1317".
func NewQueryClient(baseURL string, log *slog.Logger) *QueryClient {
	return &QueryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		log:     log,
	}
}

// uint64String handles the REST mapping's habit of encoding 64-bit integers
// as JSON strings.
type uint64String uint64

func (u *uint64String) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*u = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid uint64 value %q: %w", s, err)
	}
	*u = uint64String(v)
	return nil
}

type restCoin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

func (c restCoin) coin() interfaces.Coin {
	return interfaces.Coin{Denom: c.Denom, Amount: c.Amount}
}

type restLeaseID struct {
	Owner    string       `json:"owner"`
	DSeq     uint64String `json:"dseq"`
	GSeq     uint32       `json:"gseq"`
	OSeq     uint32       `json:"oseq"`
	Provider string       `json:"provider"`
}

func (id restLeaseID) leaseID() interfaces.LeaseID {
	return interfaces.LeaseID{
		Owner:    interfaces.AccountAddress(id.Owner),
		DSeq:     uint64(id.DSeq),
		GSeq:     id.GSeq,
		OSeq:     id.OSeq,
		Provider: interfaces.AccountAddress(id.Provider),
	}
}

// Balances returns all spendable balances of an account.
func (c *QueryClient) Balances(ctx context.Context, addr interfaces.AccountAddress) ([]interfaces.Coin, error) {
	var out struct {
		Balances []restCoin `json:"balances"`
	}
	path := fmt.Sprintf("/cosmos/bank/v1beta1/balances/%s", addr)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}

	coins := make([]interfaces.Coin, 0, len(out.Balances))
	for _, b := range out.Balances {
		coins = append(coins, b.coin())
	}
	return coins, nil
}

// LatestHeight returns the current block height.
func (c *QueryClient) LatestHeight(ctx context.Context) (uint64, error) {
	var out struct {
		Block struct {
			Header struct {
				Height uint64String `json:"height"`
			} `json:"header"`
		} `json:"block"`
	}
	if err := c.get(ctx, "/cosmos/base/tendermint/v1beta1/blocks/latest", nil, &out); err != nil {
		return 0, err
	}
	return uint64(out.Block.Header.Height), nil
}

// Deployment returns a deployment with its groups and escrow account.
func (c *QueryClient) Deployment(ctx context.Context, id interfaces.DeploymentID) (*interfaces.DeploymentInfo, error) {
	var out struct {
		Deployment struct {
			ID struct {
				Owner string       `json:"owner"`
				DSeq  uint64String `json:"dseq"`
			} `json:"id"`
			State     string `json:"state"`
			Hash      []byte `json:"hash"`
			CreatedAt int64  `json:"created_at,string"`
		} `json:"deployment"`
		Groups []struct {
			Spec struct {
				Name string `json:"name"`
			} `json:"group_spec"`
			State string `json:"state"`
		} `json:"groups"`
		Escrow *struct {
			Balance     restCoin `json:"balance"`
			Transferred restCoin `json:"transferred"`
		} `json:"escrow_account"`
	}

	params := url.Values{}
	params.Set("id.owner", id.Owner.String())
	params.Set("id.dseq", strconv.FormatUint(id.DSeq, 10))
	err := c.get(ctx, "/akash/deployment/v1beta4/deployments/info", params, &out)
	if err != nil {
		if isNotFound(err) {
			return nil, interfaces.ErrDeploymentNotFound
		}
		return nil, err
	}

	info := &interfaces.DeploymentInfo{
		Deployment: interfaces.Deployment{
			ID: interfaces.DeploymentID{
				Owner: interfaces.AccountAddress(out.Deployment.ID.Owner),
				DSeq:  uint64(out.Deployment.ID.DSeq),
			},
			State:     out.Deployment.State,
			Hash:      out.Deployment.Hash,
			CreatedAt: out.Deployment.CreatedAt,
		},
	}
	for _, g := range out.Groups {
		info.Groups = append(info.Groups, interfaces.Group{Name: g.Spec.Name, State: g.State})
	}
	if out.Escrow != nil {
		info.Escrow = &interfaces.EscrowAccount{
			Balance:     out.Escrow.Balance.coin(),
			Transferred: out.Escrow.Transferred.coin(),
		}
	}
	return info, nil
}

// Bids lists bids placed on a deployment.
func (c *QueryClient) Bids(ctx context.Context, owner interfaces.AccountAddress, dseq uint64) ([]interfaces.Bid, error) {
	var out struct {
		Bids []struct {
			Bid struct {
				ID        restLeaseID `json:"id"`
				State     string      `json:"state"`
				Price     restCoin    `json:"price"`
				CreatedAt int64       `json:"created_at,string"`
			} `json:"bid"`
		} `json:"bids"`
	}

	params := url.Values{}
	params.Set("filters.owner", owner.String())
	params.Set("filters.dseq", strconv.FormatUint(dseq, 10))
	if err := c.get(ctx, "/akash/market/v1beta5/bids/list", params, &out); err != nil {
		return nil, err
	}

	bids := make([]interfaces.Bid, 0, len(out.Bids))
	for _, b := range out.Bids {
		bids = append(bids, interfaces.Bid{
			ID:        b.Bid.ID.leaseID(),
			State:     b.Bid.State,
			Price:     b.Bid.Price.coin(),
			CreatedAt: b.Bid.CreatedAt,
		})
	}
	return bids, nil
}

// Leases lists leases for a deployment, optionally filtered by provider.
func (c *QueryClient) Leases(ctx context.Context, owner interfaces.AccountAddress, dseq uint64, provider interfaces.AccountAddress) ([]interfaces.Lease, error) {
	var out struct {
		Leases []struct {
			Lease struct {
				ID    restLeaseID `json:"id"`
				State string      `json:"state"`
				Price restCoin    `json:"price"`
			} `json:"lease"`
		} `json:"leases"`
	}

	params := url.Values{}
	params.Set("filters.owner", owner.String())
	params.Set("filters.dseq", strconv.FormatUint(dseq, 10))
	if provider != "" {
		params.Set("filters.provider", provider.String())
	}
	if err := c.get(ctx, "/akash/market/v1beta5/leases/list", params, &out); err != nil {
		return nil, err
	}

	leases := make([]interfaces.Lease, 0, len(out.Leases))
	for _, l := range out.Leases {
		leases = append(leases, interfaces.Lease{
			ID:    l.Lease.ID.leaseID(),
			State: l.Lease.State,
			Price: l.Lease.Price.coin(),
		})
	}
	return leases, nil
}

// Provider returns a provider's registration, or ErrProviderNotFound.
func (c *QueryClient) Provider(ctx context.Context, owner interfaces.AccountAddress) (*interfaces.ProviderInfo, error) {
	var out struct {
		Provider *struct {
			Owner      string `json:"owner"`
			HostURI    string `json:"host_uri"`
			Attributes []struct {
				Key   string `json:"key"`
				Value string `json:"value"`
			} `json:"attributes"`
		} `json:"provider"`
	}

	path := fmt.Sprintf("/akash/provider/v1beta4/providers/%s", owner)
	err := c.get(ctx, path, nil, &out)
	if err != nil {
		if isNotFound(err) {
			return nil, interfaces.ErrProviderNotFound
		}
		return nil, err
	}
	if out.Provider == nil {
		return nil, interfaces.ErrProviderNotFound
	}

	info := &interfaces.ProviderInfo{
		Owner:   interfaces.AccountAddress(out.Provider.Owner),
		HostURI: out.Provider.HostURI,
	}
	for _, a := range out.Provider.Attributes {
		info.Attributes = append(info.Attributes, interfaces.Attribute{Key: a.Key, Value: a.Value})
	}
	return info, nil
}

// Certificates lists certificate records for an owner, optionally filtered by
// serial and state.
func (c *QueryClient) Certificates(ctx context.Context, owner interfaces.AccountAddress, serial string, state interfaces.CertificateState) ([]interfaces.CertificateRecord, error) {
	var out struct {
		Certificates []struct {
			Serial      string `json:"serial"`
			Certificate struct {
				State  string `json:"state"`
				Cert   []byte `json:"cert"`
				Pubkey []byte `json:"pubkey"`
			} `json:"certificate"`
		} `json:"certificates"`
	}

	params := url.Values{}
	params.Set("filter.owner", owner.String())
	params.Set("filter.serial", serial)
	params.Set("filter.state", string(state))
	if err := c.get(ctx, "/akash/cert/v1/certificates/list", params, &out); err != nil {
		return nil, err
	}

	records := make([]interfaces.CertificateRecord, 0, len(out.Certificates))
	for _, rec := range out.Certificates {
		records = append(records, interfaces.CertificateRecord{
			Serial: rec.Serial,
			State:  interfaces.CertificateState(strings.ToLower(rec.Certificate.State)),
			Cert:   rec.Certificate.Cert,
			Pubkey: rec.Certificate.Pubkey,
		})
	}
	return records, nil
}

// notFoundError marks a 404 from the REST endpoint so callers can map it to
// the domain sentinel for their query.
type notFoundError struct {
	path string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.path)
}

func isNotFound(err error) bool {
	_, ok := err.(*notFoundError)
	return ok
}

// get performs one GET and decodes the JSON response. Non-200 responses carry
// the body text in the error.
func (c *QueryClient) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach chain node: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return &notFoundError{path: path}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chain node returned %d for %s: %s", resp.StatusCode, path, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not parse chain response for %s: %w", path, err)
	}
	return nil
}
