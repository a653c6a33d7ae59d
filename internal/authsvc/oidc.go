package authsvc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pluce/openlink/internal/olerr"
)

const exchangeTimeout = 10 * time.Second

// exchangeCode sends code to provider's token endpoint and extracts the
// user's CID from the returned access token. A production identity
// provider would instead validate the id_token JWT and read its sub
// claim; the mock-oidc provider this targets returns the CID encoded
// directly in the access token.
func exchangeCode(ctx context.Context, provider OidcProviderConfig, code string) (string, error) {
	form := url.Values{"code": {code}, "grant_type": {"authorization_code"}}

	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", olerr.Transport("build oidc exchange request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", olerr.Transport("reach identity provider", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", olerr.Authentication("provider returned error: "+string(body), nil)
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", olerr.Serialization("decode oidc token response", err)
	}
	if parsed.AccessToken == "" {
		return "", olerr.Authentication("missing access_token", nil)
	}

	return extractCIDFromToken(parsed.AccessToken)
}

// extractCIDFromToken parses the mock-oidc access token format
// "{provider}_{cid}", returning everything after the last underscore.
func extractCIDFromToken(token string) (string, error) {
	idx := strings.LastIndex(token, "_")
	if idx == -1 {
		if token == "" {
			return "", olerr.Authentication("unexpected access_token format: "+token, nil)
		}
		return token, nil
	}
	cid := token[idx+1:]
	if cid == "" {
		return "", olerr.Authentication("unexpected access_token format: "+token, nil)
	}
	return cid, nil
}
