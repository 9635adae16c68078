// Package provider implements the tenant side of the provider communication
// protocol: single-shot mutually-authenticated HTTPS requests (manifest push,
// lease status) and duplex websocket streams (log tail, remote exec) against
// an endpoint resolved from chain state.
//
// Providers multiplex two TLS behaviors on one port: when the SNI value
// matches the provider's public hostname the public certificate path is
// served, and when it does not match the client-certificate (mTLS) path is
// served. Every connection here therefore presents the fixed sentinel SNI
// "localhost" to force the mTLS path, and skips server certificate
// verification: providers self-sign, and the endpoint resolved from the
// chain is the authentication anchor instead of the TLS chain of trust.
package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/alternatefutures/akash-agent/interfaces"
)

// sentinelServerName is the deliberately mismatched SNI value (and Host
// header) that selects the provider's mTLS request-handling path.
const sentinelServerName = "localhost"

// Default idle timeouts for the two stream operations, measured from stream
// open. Commands get a longer window than a log tail.
const (
	DefaultLogTimeout  = 10 * time.Second
	DefaultExecTimeout = 30 * time.Second
)

// StatusError is a provider protocol error: the provider was reachable and
// answered, but with a non-200 status. Transport failures (DNS, TCP, TLS
// handshake) surface as ordinary wrapped errors instead.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error formats the status code and response body text.
func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Body)
}

// Client issues authenticated requests against provider endpoints using one
// TLS identity. Clients are cheap; the tool context builds a fresh one per
// invocation so the credential is never ambient.
type Client struct {
	tlsConfig   *tls.Config
	log         *slog.Logger
	LogTimeout  time.Duration
	ExecTimeout time.Duration
}

// NewClient builds a provider client from a TLS identity. Fails if the
// identity's certificate and private key do not form a usable keypair.
func NewClient(id interfaces.Identity, log *slog.Logger) (*Client, error) {
	keypair, err := id.TLSCertificate()
	if err != nil {
		return nil, fmt.Errorf("invalid TLS identity: %w", err)
	}

	return &Client{
		tlsConfig: &tls.Config{
			Certificates:       []tls.Certificate{keypair},
			InsecureSkipVerify: true,
			ServerName:         sentinelServerName,
		},
		log:         log,
		LogTimeout:  DefaultLogTimeout,
		ExecTimeout: DefaultExecTimeout,
	}, nil
}

// ServiceStatus is one service's reachable URIs in a lease status response.
type ServiceStatus struct {
	URIs []string `json:"uris"`
}

// LeaseStatus is the provider's status report for one lease.
type LeaseStatus struct {
	Services map[string]ServiceStatus `json:"services"`
}

// SendManifest pushes the canonical manifest bytes for a deployment to the
// provider. Success is exactly HTTP 200; any other status is a StatusError
// carrying the response body.
func (c *Client) SendManifest(ctx context.Context, endpoint *url.URL, lease interfaces.LeaseID, manifest []byte) error {
	path := fmt.Sprintf("/deployment/%d/manifest", lease.DSeq)

	_, err := c.send(ctx, endpoint, http.MethodPut, path, manifest)
	if err != nil {
		return fmt.Errorf("could not send manifest: %w", err)
	}

	c.log.Debug("Manifest sent",
		slog.Uint64("dseq", lease.DSeq),
		slog.String("provider", lease.Provider.String()),
		slog.Int("bytes", len(manifest)))

	return nil
}

// FetchLeaseStatus retrieves the services and their URIs for one lease.
func (c *Client) FetchLeaseStatus(ctx context.Context, endpoint *url.URL, lease interfaces.LeaseID) (*LeaseStatus, error) {
	path := fmt.Sprintf("/lease/%d/%d/%d/status", lease.DSeq, lease.GSeq, lease.OSeq)

	body, err := c.send(ctx, endpoint, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("could not query lease status: %w", err)
	}

	var status LeaseStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("could not parse lease status: %w", err)
	}
	return &status, nil
}

// send performs one mTLS request and fully buffers the response. No internal
// timeout: callers impose deadlines through ctx.
func (c *Client) send(ctx context.Context, endpoint *url.URL, method, path string, body []byte) ([]byte, error) {
	reqURL := *endpoint
	reqURL.Scheme = "https"
	reqURL.Path = path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Host = sentinelServerName

	client := &http.Client{
		Transport: &http.Transport{TLSClientConfig: c.tlsConfig},
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach provider: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}
