package relay

import "context"

// Publisher is the narrow broker capability the relay server needs to
// forward envelopes and fan out snapshots.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Subscription yields successive messages published on a subscribed
// subject or wildcard pattern. NextMsg blocks until a message arrives or
// ctx is done, in which case it returns ctx.Err().
type Subscription interface {
	NextMsg(ctx context.Context) (data []byte, subject string, err error)
}

// Transport bundles the publish and subscribe capabilities the main loop
// and presence sweeper need, decoupling the orchestration logic in
// server.go from whichever broker client backs it (a real *nats.Conn in
// production, an in-memory natstest.Broker in tests).
type Transport interface {
	Publisher
	SubscribeOutboxWildcard() (Subscription, error)
}
