package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alternatefutures/akash-agent/chain"
	"github.com/alternatefutures/akash-agent/interfaces"
)

func TestResolveEndpoint(t *testing.T) {
	query := new(chain.MockQueryClient)
	query.On("Provider", mock.Anything, interfaces.AccountAddress("akash1provider")).
		Return(&interfaces.ProviderInfo{
			Owner:   "akash1provider",
			HostURI: "https://provider.example.com:9443",
		}, nil).Once()

	endpoint, err := ResolveEndpoint(context.Background(), query, "akash1provider")
	require.NoError(t, err)
	assert.Equal(t, "provider.example.com:9443", endpoint.Host)
}

func TestResolveEndpointDefaultsPort(t *testing.T) {
	query := new(chain.MockQueryClient)
	query.On("Provider", mock.Anything, mock.Anything).
		Return(&interfaces.ProviderInfo{HostURI: "https://provider.example.com"}, nil).Once()

	endpoint, err := ResolveEndpoint(context.Background(), query, "akash1provider")
	require.NoError(t, err)
	assert.Equal(t, "provider.example.com:8443", endpoint.Host)
}

func TestResolveEndpointUnknownProvider(t *testing.T) {
	query := new(chain.MockQueryClient)
	query.On("Provider", mock.Anything, mock.Anything).
		Return(nil, interfaces.ErrProviderNotFound).Once()

	_, err := ResolveEndpoint(context.Background(), query, "akash1missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrProviderNotFound)
	assert.Contains(t, err.Error(), "could not find provider akash1missing")
}

func TestResolveEndpointMalformedHostURI(t *testing.T) {
	query := new(chain.MockQueryClient)
	query.On("Provider", mock.Anything, mock.Anything).
		Return(&interfaces.ProviderInfo{HostURI: "not a uri"}, nil).Once()

	_, err := ResolveEndpoint(context.Background(), query, "akash1provider")
	require.Error(t, err)
}
