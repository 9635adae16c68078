package provider

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/alternatefutures/akash-agent/interfaces"
)

// defaultPort is used when a provider's registered host URI carries no port.
const defaultPort = "8443"

// ResolveEndpoint looks up a provider's network endpoint from its on-chain
// registration. Always a fresh query, never cached: provider URIs change
// between calls and staleness here causes silent connection failures.
func ResolveEndpoint(ctx context.Context, query interfaces.QueryClient, owner interfaces.AccountAddress) (*url.URL, error) {
	info, err := query.Provider(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("could not find provider %s: %w", owner, err)
	}

	uri, err := url.Parse(info.HostURI)
	if err != nil {
		return nil, fmt.Errorf("provider %s has malformed host URI %q: %w", owner, info.HostURI, err)
	}
	if uri.Hostname() == "" {
		return nil, fmt.Errorf("provider %s has host URI without hostname: %q", owner, info.HostURI)
	}
	if uri.Port() == "" {
		uri.Host = net.JoinHostPort(uri.Hostname(), defaultPort)
	}

	return uri, nil
}
