package authsvc

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/nats-io/nkeys"
	"github.com/pluce/openlink/internal/olerr"
	"github.com/pluce/openlink/model"
	"github.com/rs/zerolog/log"
)

// State is the auth service's shared dependencies, constructed once at
// startup and passed to every handler.
type State struct {
	AccountKP    nkeys.KeyPair
	Networks     *NetworkRegistry
	ServerSecret string
}

type exchangeRequest struct {
	OidcCode       string `json:"oidc_code"`
	UserNkeyPublic string `json:"user_nkey_public"`
	Network        string `json:"network"`
}

type exchangeResponse struct {
	JWT     string `json:"jwt"`
	CID     string `json:"cid"`
	Network string `json:"network"`
}

type exchangeServerRequest struct {
	ServerSecret   string `json:"server_secret"`
	UserNkeyPublic string `json:"user_nkey_public"`
	Network        string `json:"network"`
}

type exchangeServerResponse struct {
	JWT     string `json:"jwt"`
	Network string `json:"network"`
}

// handlePublicKey serves GET /public-key: the NATS account public key,
// so clients or monitoring can confirm which auth service they reached.
func (s *State) handlePublicKey(w http.ResponseWriter, r *http.Request) {
	pub, err := s.AccountKP.PublicKey()
	if err != nil {
		writeError(w, olerr.Serialization("read account public key", err))
		return
	}
	w.Write([]byte(pub))
}

// handleExchange serves POST /exchange: validates the OIDC code, signs a
// user JWT scoped to the authenticated CID's own subjects.
func (s *State) handleExchange(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, olerr.Serialization("decode exchange request", err))
		return
	}
	if req.Network == "" {
		writeError(w, olerr.Configuration("network is required", nil))
		return
	}
	network := model.NetworkId(req.Network)

	provider, ok := s.Networks.ProviderFor(network)
	if !ok {
		writeError(w, olerr.Configuration("unknown network: "+req.Network, nil))
		return
	}

	log.Info().Str("network", req.Network).Msg("exchange request received")

	cid, err := exchangeCode(r.Context(), provider, req.OidcCode)
	if err != nil {
		writeError(w, err)
		return
	}
	log.Info().Str("network", req.Network).Str("cid", cid).Msg("oidc authentication successful")

	jwtToken, err := signUserJwt(s.AccountKP, req.UserNkeyPublic, cid, network, userJwtTTL)
	if err != nil {
		writeError(w, err)
		return
	}
	log.Info().Str("network", req.Network).Str("cid", cid).Msg("jwt issued")

	writeJSON(w, http.StatusOK, exchangeResponse{JWT: jwtToken, CID: cid, Network: req.Network})
}

// handleExchangeServer serves POST /exchange-server: verifies the shared
// server secret with a constant-time comparison and signs a wildcard
// server JWT for the requested network.
func (s *State) handleExchangeServer(w http.ResponseWriter, r *http.Request) {
	var req exchangeServerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, olerr.Serialization("decode exchange-server request", err))
		return
	}
	if req.Network == "" {
		writeError(w, olerr.Configuration("network is required", nil))
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.ServerSecret), []byte(s.ServerSecret)) != 1 {
		writeError(w, olerr.Authentication("invalid server secret", nil))
		return
	}

	network := model.NetworkId(req.Network)
	log.Info().Str("network", req.Network).Msg("server token request")

	jwtToken, err := signServerJwt(s.AccountKP, req.UserNkeyPublic, network, serverJwtTTL)
	if err != nil {
		writeError(w, err)
		return
	}
	log.Info().Str("network", req.Network).Msg("server jwt issued")

	writeJSON(w, http.StatusOK, exchangeServerResponse{JWT: jwtToken, Network: req.Network})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an olerr.Kind to the HTTP status the auth service
// reports: unknown-network/missing-field failures are client errors,
// authentication failures are 401, upstream OIDC transport failures are
// 502, and anything else (serialization, NKey signing) is a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch olerr.Of(err) {
	case olerr.KindConfiguration:
		status = http.StatusBadRequest
	case olerr.KindAuthentication:
		status = http.StatusUnauthorized
	case olerr.KindTransport:
		status = http.StatusBadGateway
	}
	log.Error().Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
