package tools

import (
	"fmt"
)

// ServiceType classifies a planned deployment for the provider safety check.
type ServiceType string

const (
	// ServiceTypeProxy is the SSL proxy itself.
	ServiceTypeProxy ServiceType = "proxy"
	// ServiceTypeBackend routes through the SSL proxy.
	ServiceTypeBackend ServiceType = "backend"
	// ServiceTypeStandalone is directly reachable, no proxy involved.
	ServiceTypeStandalone ServiceType = "standalone"
)

// SafetyResult reports whether a provider can host a planned service.
type SafetyResult struct {
	Safe          bool   `json:"safe"`
	Provider      string `json:"provider"`
	ProviderName  string `json:"providerName"`
	ProviderNotes string `json:"providerNotes,omitempty"`
	Reason        string `json:"reason"`
}

// CheckProviderSafety guards against the NAT hairpin: services routed
// through the SSL proxy must not be deployed on the proxy's own provider,
// because the proxy cannot reach that provider's public ingress from inside
// its network. The proxy provider and known-provider table come from
// configuration.
func (c *Context) CheckProviderSafety(providerAddr string, serviceType ServiceType) (*SafetyResult, error) {
	switch serviceType {
	case ServiceTypeProxy, ServiceTypeBackend, ServiceTypeStandalone:
	case "":
		serviceType = ServiceTypeBackend
	default:
		return nil, fmt.Errorf("unknown service type %q", serviceType)
	}

	name := "Unknown"
	notes := ""
	if known, ok := c.safety.KnownProviders[providerAddr]; ok {
		name = known.Name
		notes = known.Notes
	}

	result := &SafetyResult{
		Safe:          true,
		Provider:      providerAddr,
		ProviderName:  name,
		ProviderNotes: notes,
	}

	switch serviceType {
	case ServiceTypeProxy:
		result.Reason = "Proxy can be deployed on any provider with IP leases"
	case ServiceTypeStandalone:
		result.Reason = "Standalone services do not route through the proxy"
	case ServiceTypeBackend:
		if c.safety.ProxyProvider != "" && providerAddr == c.safety.ProxyProvider {
			proxyName := c.safety.ProxyProviderName
			if proxyName == "" {
				proxyName = c.safety.ProxyProvider
			}
			result.Safe = false
			result.Reason = fmt.Sprintf("NAT HAIRPIN ISSUE: Provider %s is hosting the SSL proxy. "+
				"Services routed through the proxy cannot be deployed here - "+
				"the proxy cannot reach its own provider's public ingress from within the provider's network.",
				proxyName)
			return result, nil
		}
		result.Reason = "Provider is different from proxy provider - safe for backend services"
	}

	return result, nil
}
