package authsvc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pluce/openlink/model"
	"github.com/stretchr/testify/require"
)

func writeNetworksFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestLoadNetworkRegistryFileParsesNetworks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "networks.yaml")
	writeNetworksFile(t, path, `
networks:
  vatsim:
    token_url: http://localhost:4000/token
  ivao:
    token_url: http://localhost:4001/token
`)

	networks, err := loadNetworkRegistryFile(path)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:4000/token", networks[model.NetworkId("vatsim")].TokenURL)
	require.Equal(t, "http://localhost:4001/token", networks[model.NetworkId("ivao")].TokenURL)
}

func TestNetworkRegistryEnvTakesPrecedenceOverFile(t *testing.T) {
	registry := NewNetworkRegistry(map[model.NetworkId]OidcProviderConfig{
		"vatsim": {TokenURL: "http://env/token"},
	})
	registry.setFileNetworks(map[model.NetworkId]OidcProviderConfig{
		"vatsim": {TokenURL: "http://file/token"},
		"ivao":   {TokenURL: "http://file-ivao/token"},
	})

	vatsim, ok := registry.ProviderFor("vatsim")
	require.True(t, ok)
	require.Equal(t, "http://env/token", vatsim.TokenURL)

	ivao, ok := registry.ProviderFor("ivao")
	require.True(t, ok)
	require.Equal(t, "http://file-ivao/token", ivao.TokenURL)

	_, ok = registry.ProviderFor("unknown")
	require.False(t, ok)
}

func TestNetworkRegistryWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "networks.yaml")
	writeNetworksFile(t, path, "networks:\n  vatsim:\n    token_url: http://localhost:4000/token\n")

	registry := NewNetworkRegistry(map[model.NetworkId]OidcProviderConfig{})
	watcher, err := NewNetworkRegistryWatcher(path, registry)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- watcher.Start(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := registry.ProviderFor("vatsim")
		return ok
	}, time.Second, 10*time.Millisecond)

	writeNetworksFile(t, path, "networks:\n  vatsim:\n    token_url: http://localhost:9999/token\n")

	require.Eventually(t, func() bool {
		p, ok := registry.ProviderFor("vatsim")
		return ok && p.TokenURL == "http://localhost:9999/token"
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}
}
