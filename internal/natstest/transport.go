package natstest

import (
	"context"
	"errors"

	"github.com/pluce/openlink/internal/relay"
)

// BrokerTransport adapts Broker to the relay package's Transport interface.
// internal/relay never imports internal/natstest, so this one-directional
// dependency introduces no cycle.
type BrokerTransport struct {
	broker         *Broker
	outboxWildcard string
}

// NewBrokerTransport wraps broker, subscribing SubscribeOutboxWildcard to
// outboxWildcard (e.g. "openlink.v1.vatsim.outbox.>").
func NewBrokerTransport(broker *Broker, outboxWildcard string) *BrokerTransport {
	return &BrokerTransport{broker: broker, outboxWildcard: outboxWildcard}
}

func (t *BrokerTransport) Publish(subject string, data []byte) error {
	t.broker.Publish(subject, data)
	return nil
}

func (t *BrokerTransport) SubscribeOutboxWildcard() (relay.Subscription, error) {
	ch := t.broker.Subscribe(t.outboxWildcard)
	return &memSubscription{ch: ch}, nil
}

type memSubscription struct {
	ch <-chan Msg
}

func (s *memSubscription) NextMsg(ctx context.Context) ([]byte, string, error) {
	select {
	case m, ok := <-s.ch:
		if !ok {
			return nil, "", errors.New("subscription closed")
		}
		return m.Data, m.Subject, nil
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}
}
