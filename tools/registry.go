package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alternatefutures/akash-agent/interfaces"
)

// Handler executes one named operation with JSON-encoded parameters. The
// returned value is always marshalable; errors are turned into structured
// {error} results by the dispatch layer, never raised to the caller.
type Handler func(ctx context.Context, params json.RawMessage) (any, error)

// leaseParams is the shared parameter shape of lease-addressed operations.
type leaseParams struct {
	Owner    interfaces.AccountAddress `json:"owner"`
	DSeq     uint64                    `json:"dseq"`
	GSeq     uint32                    `json:"gseq"`
	OSeq     uint32                    `json:"oseq"`
	Provider interfaces.AccountAddress `json:"provider"`
}

func (p leaseParams) leaseID() interfaces.LeaseID {
	return interfaces.LeaseID{
		Owner:    p.Owner,
		DSeq:     p.DSeq,
		GSeq:     p.GSeq,
		OSeq:     p.OSeq,
		Provider: p.Provider,
	}
}

// Handlers returns every operation by name. Each call builds a fresh Context
// (reloading the identity store) before running the operation.
func (p *Provider) Handlers() map[string]Handler {
	run := func(op func(ctx context.Context, c *Context, params json.RawMessage) (any, error)) Handler {
		return func(ctx context.Context, params json.RawMessage) (any, error) {
			c, err := p.NewContext()
			if err != nil {
				return nil, err
			}
			if len(params) == 0 {
				params = json.RawMessage("{}")
			}
			return op(ctx, c, params)
		}
	}

	decode := func(params json.RawMessage, into any) error {
		if err := json.Unmarshal(params, into); err != nil {
			return fmt.Errorf("invalid parameters: %w", err)
		}
		return nil
	}

	return map[string]Handler{
		"get-account-address": run(func(ctx context.Context, c *Context, _ json.RawMessage) (any, error) {
			return c.AccountAddress(), nil
		}),

		"get-balances": run(func(ctx context.Context, c *Context, params json.RawMessage) (any, error) {
			var in struct {
				Address interfaces.AccountAddress `json:"address"`
			}
			if err := decode(params, &in); err != nil {
				return nil, err
			}
			if in.Address == "" {
				in.Address = c.Address
			}
			return c.Balances(ctx, in.Address)
		}),

		"get-deployment": run(func(ctx context.Context, c *Context, params json.RawMessage) (any, error) {
			var in struct {
				DSeq uint64 `json:"dseq"`
			}
			if err := decode(params, &in); err != nil {
				return nil, err
			}
			return c.GetDeployment(ctx, in.DSeq)
		}),

		"create-deployment": run(func(ctx context.Context, c *Context, params json.RawMessage) (any, error) {
			var in struct {
				Manifest json.RawMessage `json:"manifest"`
				Groups   json.RawMessage `json:"groups"`
				Deposit  string          `json:"deposit"`
				Denom    string          `json:"denom"`
			}
			if err := decode(params, &in); err != nil {
				return nil, err
			}
			if in.Denom == "" {
				in.Denom = "uakt"
			}
			deposit := interfaces.Coin{Denom: in.Denom, Amount: in.Deposit}
			return c.CreateDeployment(ctx, in.Manifest, in.Groups, deposit)
		}),

		"update-deployment": run(func(ctx context.Context, c *Context, params json.RawMessage) (any, error) {
			var in struct {
				DSeq     uint64                    `json:"dseq"`
				Provider interfaces.AccountAddress `json:"provider"`
				Manifest json.RawMessage           `json:"manifest"`
			}
			if err := decode(params, &in); err != nil {
				return nil, err
			}
			return c.UpdateDeployment(ctx, in.DSeq, in.Provider, in.Manifest)
		}),

		"close-deployment": run(func(ctx context.Context, c *Context, params json.RawMessage) (any, error) {
			var in struct {
				DSeq uint64 `json:"dseq"`
			}
			if err := decode(params, &in); err != nil {
				return nil, err
			}
			return c.CloseDeployment(ctx, in.DSeq)
		}),

		"get-bids": run(func(ctx context.Context, c *Context, params json.RawMessage) (any, error) {
			var in struct {
				Owner interfaces.AccountAddress `json:"owner"`
				DSeq  uint64                    `json:"dseq"`
			}
			if err := decode(params, &in); err != nil {
				return nil, err
			}
			if in.Owner == "" {
				in.Owner = c.Address
			}
			return c.GetBids(ctx, in.Owner, in.DSeq)
		}),

		"create-lease": run(func(ctx context.Context, c *Context, params json.RawMessage) (any, error) {
			var in leaseParams
			if err := decode(params, &in); err != nil {
				return nil, err
			}
			return c.CreateLease(ctx, in.leaseID())
		}),

		"add-funds": run(func(ctx context.Context, c *Context, params json.RawMessage) (any, error) {
			var in struct {
				Address interfaces.AccountAddress `json:"address"`
				DSeq    uint64                    `json:"dseq"`
				Amount  string                    `json:"amount"`
			}
			if err := decode(params, &in); err != nil {
				return nil, err
			}
			if in.Address == "" {
				in.Address = c.Address
			}
			return c.AddFunds(ctx, in.Address, in.DSeq, interfaces.Coin{Denom: "uakt", Amount: in.Amount})
		}),

		"send-manifest": run(func(ctx context.Context, c *Context, params json.RawMessage) (any, error) {
			var in struct {
				leaseParams
				Manifest json.RawMessage `json:"manifest"`
			}
			if err := decode(params, &in); err != nil {
				return nil, err
			}
			return c.SendManifest(ctx, in.leaseID(), in.Manifest)
		}),

		"get-services": run(func(ctx context.Context, c *Context, params json.RawMessage) (any, error) {
			var in leaseParams
			if err := decode(params, &in); err != nil {
				return nil, err
			}
			return c.GetServices(ctx, in.leaseID())
		}),

		"get-logs": run(func(ctx context.Context, c *Context, params json.RawMessage) (any, error) {
			var in struct {
				leaseParams
				Service string `json:"service"`
				Tail    int    `json:"tail"`
			}
			if err := decode(params, &in); err != nil {
				return nil, err
			}
			return c.GetLogs(ctx, in.leaseID(), in.Service, in.Tail)
		}),

		"exec-command": run(func(ctx context.Context, c *Context, params json.RawMessage) (any, error) {
			var in struct {
				leaseParams
				Service string `json:"service"`
				Command string `json:"command"`
				Stdin   bool   `json:"stdin"`
				TTY     *bool  `json:"tty"`
			}
			if err := decode(params, &in); err != nil {
				return nil, err
			}
			tty := true
			if in.TTY != nil {
				tty = *in.TTY
			}
			return c.ExecCommand(ctx, in.leaseID(), in.Service, in.Command, in.Stdin, tty)
		}),

		"revoke-certificate": run(func(ctx context.Context, c *Context, params json.RawMessage) (any, error) {
			var in struct {
				Serial string `json:"serial"`
			}
			if err := decode(params, &in); err != nil {
				return nil, err
			}
			return c.RevokeCertificate(ctx, in.Serial)
		}),

		"revoke-all-certificates": run(func(ctx context.Context, c *Context, _ json.RawMessage) (any, error) {
			return c.RevokeAllCertificates(ctx)
		}),

		"regenerate-certificate": run(func(ctx context.Context, c *Context, _ json.RawMessage) (any, error) {
			return c.RegenerateCertificate(ctx)
		}),

		"check-provider-safety": run(func(ctx context.Context, c *Context, params json.RawMessage) (any, error) {
			var in struct {
				Provider    string      `json:"provider"`
				ServiceType ServiceType `json:"serviceType"`
			}
			if err := decode(params, &in); err != nil {
				return nil, err
			}
			return c.CheckProviderSafety(in.Provider, in.ServiceType)
		}),
	}
}
