package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alternatefutures/akash-agent/interfaces"
	"github.com/alternatefutures/akash-agent/manifest"
	"github.com/alternatefutures/akash-agent/provider"
)

// SendManifestResult reports a manifest push.
type SendManifestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendManifest canonicalizes the manifest and pushes it to the provider
// holding the lease.
func (c *Context) SendManifest(ctx context.Context, lease interfaces.LeaseID, rawManifest json.RawMessage) (*SendManifestResult, error) {
	if err := lease.Validate(); err != nil {
		return nil, err
	}
	canonical, err := manifest.Canonical(rawManifest)
	if err != nil {
		return nil, err
	}

	client, err := c.providerClient(ctx)
	if err != nil {
		return nil, err
	}
	endpoint, err := provider.ResolveEndpoint(ctx, c.Query, lease.Provider)
	if err != nil {
		return nil, err
	}

	if err := client.SendManifest(ctx, endpoint, lease, canonical); err != nil {
		return nil, err
	}
	return &SendManifestResult{Success: true, Message: "Manifest sent successfully"}, nil
}

// GetServices fetches the services and their URIs for a lease from the
// provider's status endpoint.
func (c *Context) GetServices(ctx context.Context, lease interfaces.LeaseID) (*provider.LeaseStatus, error) {
	if err := lease.Validate(); err != nil {
		return nil, err
	}

	client, err := c.providerClient(ctx)
	if err != nil {
		return nil, err
	}
	endpoint, err := provider.ResolveEndpoint(ctx, c.Query, lease.Provider)
	if err != nil {
		return nil, err
	}

	return client.FetchLeaseStatus(ctx, endpoint, lease)
}

// LogsResult carries the collected log output of a lease.
type LogsResult struct {
	Logs string `json:"logs"`
}

// GetLogs tails container logs for a lease. service optionally filters to one
// service; tail bounds the number of trailing lines.
func (c *Context) GetLogs(ctx context.Context, lease interfaces.LeaseID, service string, tail int) (*LogsResult, error) {
	if err := lease.Validate(); err != nil {
		return nil, err
	}
	if tail <= 0 {
		tail = 100
	}

	client, err := c.providerClient(ctx)
	if err != nil {
		return nil, err
	}
	endpoint, err := provider.ResolveEndpoint(ctx, c.Query, lease.Provider)
	if err != nil {
		return nil, err
	}

	logs, err := client.FetchLogs(ctx, endpoint, lease, service, tail)
	if err != nil {
		return nil, fmt.Errorf("error getting logs: %w", err)
	}
	return &LogsResult{Logs: logs}, nil
}

// ExecResult carries the collected output of a remote command.
type ExecResult struct {
	Output string `json:"output"`
}

// ExecCommand runs a shell command inside a lease's container. The command
// string passes through `sh -c`, so pipes and globs work.
func (c *Context) ExecCommand(ctx context.Context, lease interfaces.LeaseID, service, command string, stdin, tty bool) (*ExecResult, error) {
	if err := lease.Validate(); err != nil {
		return nil, err
	}
	if command == "" {
		return nil, fmt.Errorf("command must not be empty")
	}

	client, err := c.providerClient(ctx)
	if err != nil {
		return nil, err
	}
	endpoint, err := provider.ResolveEndpoint(ctx, c.Query, lease.Provider)
	if err != nil {
		return nil, err
	}

	output, err := client.Exec(ctx, endpoint, lease, service, command, stdin, tty)
	if err != nil {
		return nil, fmt.Errorf("error executing command: %w", err)
	}
	return &ExecResult{Output: output}, nil
}
