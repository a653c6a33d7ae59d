package authsvc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nats-io/nkeys"
	"github.com/pluce/openlink/model"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T, tokenURL string) *State {
	t.Helper()
	kp, err := nkeys.CreateAccount()
	require.NoError(t, err)
	return &State{
		AccountKP:    kp,
		Networks:     NewNetworkRegistry(map[model.NetworkId]OidcProviderConfig{}),
		ServerSecret: "top-secret",
	}
}

func TestExchangeUnknownNetworkReturns400(t *testing.T) {
	state := newTestState(t, "")
	mux := NewMux(state)

	body := strings.NewReader(`{"oidc_code":"abc","user_nkey_public":"UKEY","network":"nowhere"}`)
	req := httptest.NewRequest(http.MethodPost, "/exchange", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExchangeSuccess(t *testing.T) {
	mockOidc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "vatsim_777"})
	}))
	defer mockOidc.Close()

	state := newTestState(t, mockOidc.URL)
	state.Networks = NewNetworkRegistry(map[model.NetworkId]OidcProviderConfig{"vatsim": {TokenURL: mockOidc.URL}})
	mux := NewMux(state)

	body := strings.NewReader(`{"oidc_code":"abc","user_nkey_public":"UKEY","network":"vatsim"}`)
	req := httptest.NewRequest(http.MethodPost, "/exchange", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp exchangeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "777", resp.CID)
	require.Equal(t, "vatsim", resp.Network)
	require.Len(t, strings.Split(resp.JWT, "."), 3)
}

func TestExchangeServerRejectsWrongSecret(t *testing.T) {
	state := newTestState(t, "")
	mux := NewMux(state)

	body := strings.NewReader(`{"server_secret":"wrong","user_nkey_public":"UKEY","network":"vatsim"}`)
	req := httptest.NewRequest(http.MethodPost, "/exchange-server", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExchangeServerSuccess(t *testing.T) {
	state := newTestState(t, "")
	mux := NewMux(state)

	body := strings.NewReader(`{"server_secret":"top-secret","user_nkey_public":"UKEY","network":"vatsim"}`)
	req := httptest.NewRequest(http.MethodPost, "/exchange-server", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp exchangeServerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "vatsim", resp.Network)
}

func TestPublicKeyEndpoint(t *testing.T) {
	state := newTestState(t, "")
	mux := NewMux(state)

	req := httptest.NewRequest(http.MethodGet, "/public-key", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.String())
}
