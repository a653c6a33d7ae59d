package authsvc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nkeys"
	"github.com/pluce/openlink/internal/olerr"
	"github.com/pluce/openlink/model"
	"github.com/pluce/openlink/subjects"
)

const (
	userJwtTTL   = time.Hour
	serverJwtTTL = 24 * time.Hour
)

type natsPermissionList struct {
	Allow []string `json:"allow"`
}

type natsPermissions struct {
	Publish   natsPermissionList `json:"publish"`
	Subscribe natsPermissionList `json:"subscribe"`
}

type natsClaims struct {
	Permissions natsPermissions `json:"permissions"`
	ClaimType   string          `json:"type"`
	Version     int             `json:"version"`
}

type natsUserClaims struct {
	Jti  string     `json:"jti"`
	Iat  int64      `json:"iat"`
	Exp  int64      `json:"exp"`
	Iss  string      `json:"iss"`
	Name string     `json:"name"`
	Sub  string     `json:"sub"`
	Nats natsClaims `json:"nats"`
}

// signUserJwt signs a NATS user JWT scoped to cid's own outbox/inbox
// subjects on network: publish on its outbox, subscribe on its inbox.
func signUserJwt(accountKP nkeys.KeyPair, userNkeyPublic, cid string, network model.NetworkId, ttl time.Duration) (string, error) {
	address := model.NetworkAddress(cid)
	now := time.Now().UTC()
	claims := natsUserClaims{
		Jti:  uuid.NewString(),
		Iat:  now.Unix(),
		Exp:  now.Add(ttl).Unix(),
		Name: cid,
		Sub:  userNkeyPublic,
		Nats: natsClaims{
			ClaimType: "user",
			Version:   2,
			Permissions: natsPermissions{
				Publish:   natsPermissionList{Allow: []string{subjects.Outbox(network, address)}},
				Subscribe: natsPermissionList{Allow: []string{subjects.Inbox(network, address)}},
			},
		},
	}
	return encodeAndSign(accountKP, claims)
}

// signServerJwt signs a NATS JWT granting server-level wildcard access on
// network: subscribe every outbox, publish every inbox, plus JetStream API
// and inbox-reply access.
func signServerJwt(accountKP nkeys.KeyPair, userNkeyPublic string, network model.NetworkId, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := natsUserClaims{
		Jti:  uuid.NewString(),
		Iat:  now.Unix(),
		Exp:  now.Add(ttl).Unix(),
		Name: "openlink-server-" + string(network),
		Sub:  userNkeyPublic,
		Nats: natsClaims{
			ClaimType: "user",
			Version:   2,
			Permissions: natsPermissions{
				Publish:   natsPermissionList{Allow: []string{subjects.InboxWildcard(network), "$JS.API.>", "_INBOX.>"}},
				Subscribe: natsPermissionList{Allow: []string{subjects.OutboxWildcard(network), "$JS.API.>", "_INBOX.>"}},
			},
		},
	}
	return encodeAndSign(accountKP, claims)
}

// encodeAndSign builds the three base64url, no-padding segments of a NATS
// JWT (header.body.signature), signing header.body with accountKP.
func encodeAndSign(accountKP nkeys.KeyPair, claims natsUserClaims) (string, error) {
	claims.Iss = accountKPPublicKey(accountKP)

	header := map[string]string{"typ": "JWT", "alg": "ed25519-nkey"}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", olerr.Serialization("encode jwt header", err)
	}
	bodyJSON, err := json.Marshal(claims)
	if err != nil {
		return "", olerr.Serialization("encode jwt body", err)
	}

	enc := base64.RawURLEncoding
	signingInput := enc.EncodeToString(headerJSON) + "." + enc.EncodeToString(bodyJSON)

	sig, err := accountKP.Sign([]byte(signingInput))
	if err != nil {
		// Left untagged so writeError reports it as a 500, not a 401.
		return "", fmt.Errorf("sign jwt: %w", err)
	}

	return signingInput + "." + enc.EncodeToString(sig), nil
}

func accountKPPublicKey(kp nkeys.KeyPair) string {
	pub, err := kp.PublicKey()
	if err != nil {
		return ""
	}
	return pub
}
