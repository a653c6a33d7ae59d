package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/pluce/openlink/internal/olerr"
	"github.com/pluce/openlink/model"
	"github.com/pluce/openlink/subjects"
)

// Client is a connected OpenLink participant bound to one network and one
// address (its CID for user-mode clients; server-mode clients from
// ConnectAsServer have an empty address).
type Client struct {
	nc      *nats.Conn
	network model.NetworkId
	address model.NetworkAddress
	creds   Credentials
}

// exchangeResponse mirrors the auth service's /exchange and
// /exchange-server JSON body.
type exchangeResponse struct {
	JWT     string `json:"jwt"`
	CID     string `json:"cid"`
	Network string `json:"network"`
}

type exchangeErrorBody struct {
	Error string `json:"error"`
}

// ConnectWithAuthorizationCode runs the full connection sequence: generate
// an ephemeral key-pair, exchange the OIDC code with the auth service for a
// JWT + CID, then open the broker connection signing the NKey challenge.
func ConnectWithAuthorizationCode(ctx context.Context, brokerURL, authURL, oidcCode string, network model.NetworkId) (*Client, error) {
	kp, err := GenerateUserKeyPair()
	if err != nil {
		return nil, olerr.Authentication("generate key pair", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, olerr.Authentication("read public key", err)
	}

	body := map[string]string{
		"oidc_code":        oidcCode,
		"user_nkey_public": pub,
		"network":          string(network),
	}
	resp, err := postExchange(ctx, authURL+"/exchange", body)
	if err != nil {
		return nil, err
	}

	seed, err := kp.Seed()
	if err != nil {
		return nil, olerr.Authentication("read seed", err)
	}
	creds := Credentials{Seed: seed, JWT: resp.JWT, CID: resp.CID}

	return connectBroker(ctx, brokerURL, creds, network, model.NetworkAddress(resp.CID))
}

// ConnectAsServer exchanges a pre-shared server secret for a server-scoped
// JWT, then opens the broker connection as the network's relay server.
func ConnectAsServer(ctx context.Context, brokerURL, authURL, serverSecret string, network model.NetworkId) (*Client, error) {
	kp, err := GenerateUserKeyPair()
	if err != nil {
		return nil, olerr.Authentication("generate key pair", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, olerr.Authentication("read public key", err)
	}

	body := map[string]string{
		"server_secret":    serverSecret,
		"user_nkey_public": pub,
		"network":          string(network),
	}
	resp, err := postExchange(ctx, authURL+"/exchange-server", body)
	if err != nil {
		return nil, err
	}

	seed, err := kp.Seed()
	if err != nil {
		return nil, olerr.Authentication("read seed", err)
	}
	creds := Credentials{Seed: seed, JWT: resp.JWT, CID: resp.CID}

	return connectBroker(ctx, brokerURL, creds, network, "")
}

// Connect opens the broker connection using previously-persisted
// credentials, skipping the auth-service round trip.
func Connect(ctx context.Context, brokerURL string, creds Credentials, network model.NetworkId) (*Client, error) {
	return connectBroker(ctx, brokerURL, creds, network, model.NetworkAddress(creds.CID))
}

func postExchange(ctx context.Context, url string, body map[string]string) (*exchangeResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, olerr.Serialization("encode exchange request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, olerr.Configuration("build exchange request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, olerr.Transport("exchange request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var eb exchangeErrorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return nil, olerr.Authentication(fmt.Sprintf("exchange rejected (%d): %s", resp.StatusCode, eb.Error), nil)
	}

	var out exchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, olerr.Serialization("decode exchange response", err)
	}
	return &out, nil
}

func connectBroker(ctx context.Context, brokerURL string, creds Credentials, network model.NetworkId, address model.NetworkAddress) (*Client, error) {
	if _, err := KeyPairFromSeed(creds.Seed); err != nil {
		return nil, olerr.Authentication("load seed", err)
	}

	opts := []nats.Option{
		// UserJWTAndSeed wires the NKey challenge-response handler: the
		// broker's nonce is signed with the seed's private key on connect.
		nats.UserJWTAndSeed(creds.JWT, creds.Seed),
		nats.Timeout(10 * time.Second),
		nats.Secure(),
	}

	nc, err := nats.Connect(brokerURL, opts...)
	if err != nil {
		return nil, olerr.Transport("connect to broker", err)
	}

	return &Client{nc: nc, network: network, address: address, creds: creds}, nil
}

// Network returns the network this client is bound to.
func (c *Client) Network() model.NetworkId { return c.network }

// Address returns this client's network address (its CID for user-mode
// clients).
func (c *Client) Address() model.NetworkAddress { return c.address }

// CID returns the connection id from this client's credentials.
func (c *Client) CID() string { return c.creds.CID }

// Credentials returns the credentials this client connected with, suitable
// for persisting and reusing via Connect.
func (c *Client) Credentials() Credentials { return c.creds }

// NatsConn is an escape hatch exposing the underlying broker connection for
// JetStream admin operations the high-level API doesn't cover.
func (c *Client) NatsConn() *nats.Conn { return c.nc }

// PublishEnvelope is the low-level raw publish: marshal, publish on
// subject, then flush before returning so the caller observes a completed
// send rather than a buffered one.
func (c *Client) PublishEnvelope(subject string, env model.OpenLinkEnvelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return olerr.Serialization("encode envelope", err)
	}
	if err := c.nc.Publish(subject, payload); err != nil {
		return olerr.Transport("publish envelope", err)
	}
	if err := c.nc.FlushTimeout(5 * time.Second); err != nil {
		return olerr.Transport("flush after publish", err)
	}
	return nil
}

// SendToServer wraps payload as an envelope addressed from this client to
// the network server and publishes it on this client's outbox.
func (c *Client) SendToServer(payload model.Payload) error {
	env := model.OpenLinkEnvelope{
		Id:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Routing: model.Routing{
			Source:      model.AddressRouting(c.network, c.address),
			Destination: model.ServerRouting(c.network),
		},
		Token:   c.creds.JWT,
		Payload: payload,
	}
	return c.PublishEnvelope(subjects.Outbox(c.network, c.address), env)
}

// SendToStation publishes env directly on a station's inbox, bypassing the
// server. Used by server-mode clients to forward a rewritten envelope.
func (c *Client) SendToStation(address model.NetworkAddress, env model.OpenLinkEnvelope) error {
	return c.PublishEnvelope(subjects.Inbox(c.network, address), env)
}

// SubscribeInbox streams raw messages addressed to this client.
func (c *Client) SubscribeInbox() (*nats.Subscription, error) {
	sub, err := c.nc.SubscribeSync(subjects.Inbox(c.network, c.address))
	if err != nil {
		return nil, olerr.Transport("subscribe inbox", err)
	}
	return sub, nil
}

// SubscribeAllOutbox streams every publish on the network's outbox
// wildcard; only a server-scoped token authorizes this subscription.
func (c *Client) SubscribeAllOutbox() (*nats.Subscription, error) {
	sub, err := c.nc.SubscribeSync(subjects.OutboxWildcard(c.network))
	if err != nil {
		return nil, olerr.Transport("subscribe outbox wildcard", err)
	}
	return sub, nil
}

// Close closes the broker connection immediately; subscriptions are not
// drained first.
func (c *Client) Close() {
	c.nc.Close()
}
