package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alternatefutures/akash-agent/certmanager"
	"github.com/alternatefutures/akash-agent/interfaces"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testAddr = interfaces.AccountAddress("akash1qqqsyqcyq5rqwzqfpg9scrgwpugpzysnrujsuw")

var testLease = interfaces.LeaseID{
	Owner:    testAddr,
	DSeq:     42,
	GSeq:     1,
	OSeq:     1,
	Provider: interfaces.AccountAddress("akash1provider00000000000000000000000000000"),
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	id, err := certmanager.Generate(testAddr)
	require.NoError(t, err)

	client, err := NewClient(id, testLogger())
	require.NoError(t, err)
	return client
}

func testEndpoint(t *testing.T, srv *httptest.Server) *url.URL {
	t.Helper()
	endpoint, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return endpoint
}

func TestNewClientRejectsBrokenIdentity(t *testing.T) {
	_, err := NewClient(interfaces.Identity{Cert: "garbage", PrivateKey: "garbage"}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid TLS identity")
}

func TestSendManifest(t *testing.T) {
	var gotMethod, gotPath, gotHost string
	var gotBody []byte

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotHost = r.Host
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(t)
	manifest := []byte(`{"services":{}}`)

	err := client.SendManifest(context.Background(), testEndpoint(t, srv), testLease, manifest)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/deployment/42/manifest", gotPath)
	assert.Equal(t, "localhost", gotHost, "requests must carry the sentinel host")
	assert.Equal(t, manifest, gotBody)
}

func TestSendManifestNon200IsStatusError(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("certificate not found on chain"))
	}))
	defer srv.Close()

	client := newTestClient(t)

	err := client.SendManifest(context.Background(), testEndpoint(t, srv), testLease, []byte("{}"))
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "certificate not found")
}

func TestSendManifestTransportErrorIsNotStatusError(t *testing.T) {
	client := newTestClient(t)

	endpoint := &url.URL{Host: "127.0.0.1:1"}
	err := client.SendManifest(context.Background(), endpoint, testLease, []byte("{}"))
	require.Error(t, err)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestFetchLeaseStatus(t *testing.T) {
	var gotPath string

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"services":{"web":{"uris":["http://web.example.com"]}}}`))
	}))
	defer srv.Close()

	client := newTestClient(t)

	status, err := client.FetchLeaseStatus(context.Background(), testEndpoint(t, srv), testLease)
	require.NoError(t, err)

	assert.Equal(t, "/lease/42/1/1/status", gotPath)
	require.Contains(t, status.Services, "web")
	assert.Equal(t, []string{"http://web.example.com"}, status.Services["web"].URIs)
}

func TestFetchLeaseStatusMalformedResponse(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := newTestClient(t)

	_, err := client.FetchLeaseStatus(context.Background(), testEndpoint(t, srv), testLease)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not parse lease status")
}
