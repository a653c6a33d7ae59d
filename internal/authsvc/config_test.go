package authsvc

import (
	"testing"

	"github.com/pluce/openlink/model"
	"github.com/stretchr/testify/require"
)

func TestFromEnvRegistersEachNetworkTokenUrl(t *testing.T) {
	t.Setenv("OIDC_VATSIM_TOKEN_URL", "http://localhost:4000/token")
	t.Setenv("OIDC_IVAO_TOKEN_URL", "http://localhost:4001/token")
	t.Setenv("AUTH_PORT", "4100")

	cfg := FromEnv()

	require.Equal(t, 4100, cfg.ListenPort)
	vatsim, ok := cfg.ProviderFor(model.NetworkId("vatsim"))
	require.True(t, ok)
	require.Equal(t, "http://localhost:4000/token", vatsim.TokenURL)

	ivao, ok := cfg.ProviderFor(model.NetworkId("ivao"))
	require.True(t, ok)
	require.Equal(t, "http://localhost:4001/token", ivao.TokenURL)

	_, ok = cfg.ProviderFor(model.NetworkId("unknown"))
	require.False(t, ok)
}

func TestFromEnvDefaultListenPort(t *testing.T) {
	cfg := FromEnv()
	require.Equal(t, defaultListenPort, cfg.ListenPort)
}
