package relay

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/pluce/openlink/model"
	"github.com/pluce/openlink/subjects"
)

// NatsTransport adapts a server-scoped *nats.Conn to the Transport
// interface.
type NatsTransport struct {
	nc      *nats.Conn
	network model.NetworkId
}

// NewNatsTransport wraps an already-connected server-mode NATS connection.
func NewNatsTransport(nc *nats.Conn, network model.NetworkId) *NatsTransport {
	return &NatsTransport{nc: nc, network: network}
}

func (t *NatsTransport) Publish(subject string, data []byte) error {
	return t.nc.Publish(subject, data)
}

func (t *NatsTransport) SubscribeOutboxWildcard() (Subscription, error) {
	sub, err := t.nc.SubscribeSync(subjects.OutboxWildcard(t.network))
	if err != nil {
		return nil, err
	}
	return &natsSubscription{sub: sub}, nil
}

type natsSubscription struct {
	sub *nats.Subscription
}

func (s *natsSubscription) NextMsg(ctx context.Context) ([]byte, string, error) {
	msg, err := s.sub.NextMsgWithContext(ctx)
	if err != nil {
		return nil, "", err
	}
	return msg.Data, msg.Subject, nil
}
