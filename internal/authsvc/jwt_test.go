package authsvc

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nats-io/nkeys"
	"github.com/pluce/openlink/model"
	"github.com/stretchr/testify/require"
)

func testAccountKP(t *testing.T) nkeys.KeyPair {
	t.Helper()
	kp, err := nkeys.CreateAccount()
	require.NoError(t, err)
	return kp
}

func decodeBody(t *testing.T, jwtToken string) map[string]any {
	t.Helper()
	parts := strings.Split(jwtToken, ".")
	require.Len(t, parts, 3)
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestUserJwtHasThreeParts(t *testing.T) {
	kp := testAccountKP(t)
	jwtToken, err := signUserJwt(kp, "UABC123", "42", model.NetworkId("vatsim"), time.Hour)
	require.NoError(t, err)
	require.Len(t, strings.Split(jwtToken, "."), 3)
}

func TestUserJwtBodyContainsScopedPermissions(t *testing.T) {
	kp := testAccountKP(t)
	jwtToken, err := signUserJwt(kp, "UABC123", "42", model.NetworkId("vatsim"), time.Hour)
	require.NoError(t, err)

	body := decodeBody(t, jwtToken)
	nats := body["nats"].(map[string]any)
	perms := nats["permissions"].(map[string]any)
	publish := perms["publish"].(map[string]any)["allow"].([]any)
	subscribe := perms["subscribe"].(map[string]any)["allow"].([]any)

	require.Equal(t, "openlink.v1.vatsim.outbox.42", publish[0])
	require.Equal(t, "openlink.v1.vatsim.inbox.42", subscribe[0])
}

func TestUserJwtSubMatchesUserNkey(t *testing.T) {
	kp := testAccountKP(t)
	jwtToken, err := signUserJwt(kp, "UTEST_PUBLIC_KEY", "99", model.NetworkId("icao"), time.Hour)
	require.NoError(t, err)

	body := decodeBody(t, jwtToken)
	require.Equal(t, "UTEST_PUBLIC_KEY", body["sub"])
	require.Equal(t, "99", body["name"])
}

func TestUserJwtIssuerIsAccountPublicKey(t *testing.T) {
	kp := testAccountKP(t)
	expected, err := kp.PublicKey()
	require.NoError(t, err)

	jwtToken, err := signUserJwt(kp, "UKEY", "1", model.NetworkId("vatsim"), time.Hour)
	require.NoError(t, err)

	body := decodeBody(t, jwtToken)
	require.Equal(t, expected, body["iss"])
}

func TestUserJwtExpiryMatchesTtl(t *testing.T) {
	kp := testAccountKP(t)
	ttl := 2 * time.Hour
	jwtToken, err := signUserJwt(kp, "UKEY", "1", model.NetworkId("vatsim"), ttl)
	require.NoError(t, err)

	body := decodeBody(t, jwtToken)
	iat := int64(body["iat"].(float64))
	exp := int64(body["exp"].(float64))
	require.Equal(t, int64(ttl.Seconds()), exp-iat)
}

func TestServerJwtHasWildcardPermissions(t *testing.T) {
	kp := testAccountKP(t)
	jwtToken, err := signServerJwt(kp, "USERVER", model.NetworkId("vatsim"), time.Hour)
	require.NoError(t, err)

	body := decodeBody(t, jwtToken)
	nats := body["nats"].(map[string]any)
	perms := nats["permissions"].(map[string]any)
	publish := toStrings(perms["publish"].(map[string]any)["allow"].([]any))
	subscribe := toStrings(perms["subscribe"].(map[string]any)["allow"].([]any))

	require.Contains(t, publish, "openlink.v1.vatsim.inbox.>")
	require.Contains(t, publish, "$JS.API.>")
	require.Contains(t, subscribe, "openlink.v1.vatsim.outbox.>")
	require.Contains(t, subscribe, "$JS.API.>")
}

func TestServerJwtNameContainsNetwork(t *testing.T) {
	kp := testAccountKP(t)
	jwtToken, err := signServerJwt(kp, "USERVER", model.NetworkId("icao"), time.Hour)
	require.NoError(t, err)

	body := decodeBody(t, jwtToken)
	require.Equal(t, "openlink-server-icao", body["name"])
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = v.(string)
	}
	return out
}
