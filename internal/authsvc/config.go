// Package authsvc implements the auth service: exchanges an OIDC
// authorization code (or a pre-shared server secret) for a NATS user/server
// JWT scoped to one network's outbox/inbox subjects.
package authsvc

import (
	"os"
	"strconv"
	"strings"

	"github.com/pluce/openlink/model"
)

const (
	defaultListenPort = 3001
	oidcPrefix        = "OIDC_"
	oidcSuffix        = "_TOKEN_URL"
	networksFileEnv   = "AUTH_NETWORKS_FILE"
)

// OidcProviderConfig holds one network's OIDC token endpoint.
type OidcProviderConfig struct {
	TokenURL string
}

// AppConfig is the auth service's full configuration: one OIDC provider per
// network from the environment, the HTTP listen port, and the optional path
// to a hot-reloadable YAML network registry file.
type AppConfig struct {
	Networks         map[model.NetworkId]OidcProviderConfig
	ListenPort       int
	NetworksFilePath string
}

// FromEnv builds an AppConfig by scanning the process environment for every
// OIDC_{NETWORK}_TOKEN_URL variable, registering one provider per network
// found. Unlike the original implementation, no network (e.g. "vatsim") is
// ever registered implicitly; every network the auth service should serve
// must appear explicitly as an env var, or via the optional AUTH_NETWORKS_FILE.
func FromEnv() AppConfig {
	listenPort := defaultListenPort
	if v, ok := os.LookupEnv("AUTH_PORT"); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			listenPort = parsed
		}
	}

	networks := make(map[model.NetworkId]OidcProviderConfig)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if !strings.HasPrefix(name, oidcPrefix) || !strings.HasSuffix(name, oidcSuffix) {
			continue
		}
		network := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(name, oidcPrefix), oidcSuffix))
		if network == "" {
			continue
		}
		networks[model.NetworkId(network)] = OidcProviderConfig{TokenURL: value}
	}

	return AppConfig{Networks: networks, ListenPort: listenPort, NetworksFilePath: os.Getenv(networksFileEnv)}
}

// ProviderFor looks up the OIDC provider configured for network.
func (c AppConfig) ProviderFor(network model.NetworkId) (OidcProviderConfig, bool) {
	p, ok := c.Networks[network]
	return p, ok
}

// NewNetworkRegistry builds the live NetworkRegistry for this config's
// env-sourced networks; the caller starts a NetworkRegistryWatcher
// separately if NetworksFilePath is set.
func (c AppConfig) NewNetworkRegistry() *NetworkRegistry {
	return NewNetworkRegistry(c.Networks)
}
