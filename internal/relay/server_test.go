package relay_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pluce/openlink/internal/natstest"
	"github.com/pluce/openlink/internal/registry"
	"github.com/pluce/openlink/internal/relay"
	"github.com/pluce/openlink/internal/session"
	"github.com/pluce/openlink/model"
	"github.com/pluce/openlink/subjects"
	"github.com/stretchr/testify/require"
)

const testNetwork = model.NetworkId("vatsim")

func newTestServer(t *testing.T) (*relay.Server, *natstest.Broker) {
	t.Helper()
	broker := natstest.NewBroker()
	transport := natstest.NewBrokerTransport(broker, subjects.OutboxWildcard(testNetwork))

	ctx := context.Background()
	reg, err := registry.New(ctx, natstest.NewMemoryStore(), time.Hour, false)
	require.NoError(t, err)
	store, err := session.NewStore(ctx, natstest.NewMemoryStore(), model.DefaultCatalog(), false)
	require.NoError(t, err)

	return relay.NewServer(testNetwork, transport, reg, store, time.Hour, false), broker
}

func publish(broker *natstest.Broker, subject string, v any) {
	data, _ := json.Marshal(v)
	broker.Publish(subject, data)
}

func recvEnvelope(t *testing.T, ch <-chan natstest.Msg, timeout time.Duration) model.OpenLinkEnvelope {
	t.Helper()
	select {
	case msg := <-ch:
		var env model.OpenLinkEnvelope
		require.NoError(t, json.Unmarshal(msg.Data, &env))
		return env
	case <-time.After(timeout):
		t.Fatal("timed out waiting for envelope")
		return model.OpenLinkEnvelope{}
	}
}

func TestServerRegistersStationAndForwardsLogonRequest(t *testing.T) {
	srv, broker := newTestServer(t)

	aircraftInbox := broker.Subscribe(subjects.Inbox(testNetwork, "A001"))
	stationInbox := broker.Subscribe(subjects.Inbox(testNetwork, "lfpg-net"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)

	stationEndpoint := model.AcarsRoutingEndpoint{Callsign: "LFPG", Address: "LFPG-ACARS"}
	statusMeta, err := model.NewStationStatusMeta(model.StationStatus{
		Station:  "LFPG",
		Status:   model.StationOnline,
		Endpoint: stationEndpoint,
	})
	require.NoError(t, err)
	publish(broker, subjects.Outbox(testNetwork, "lfpg-net"), model.OpenLinkEnvelope{
		Id:        "status-1",
		Timestamp: time.Now().UTC(),
		Routing: model.Routing{
			Source:      model.AddressRouting(testNetwork, "lfpg-net"),
			Destination: model.ServerRouting(testNetwork),
		},
		Payload: model.MetaPayload(statusMeta),
	})
	time.Sleep(10 * time.Millisecond)

	// Aircraft-initiated LogonRequest, matching the documented scenario: the
	// aircraft publishes on its own outbox, naming the target station in the
	// message body (not the envelope source, which is the aircraft itself).
	fpOrigin, err := model.NewICAOAirportCode("EGLL")
	require.NoError(t, err)
	fpDest, err := model.NewICAOAirportCode("LFPG")
	require.NoError(t, err)
	logon := model.MetaEnvelope("AFR123", "LFPG", model.LogonRequestMeta("LFPG", fpOrigin, fpDest))
	publish(broker, subjects.Outbox(testNetwork, "A001"), model.OpenLinkEnvelope{
		Id:        "logon-1",
		Timestamp: time.Now().UTC(),
		Routing: model.Routing{
			Source:      model.AddressRouting(testNetwork, "A001"),
			Destination: model.ServerRouting(testNetwork),
		},
		Payload: model.AcarsPayload(model.AcarsEnvelope{
			Aircraft: model.AcarsRoutingEndpoint{Callsign: "AFR123", Address: "A001"},
			Message:  logon,
		}),
	})

	forwarded := recvEnvelope(t, stationInbox, time.Second)
	require.False(t, forwarded.Routing.Destination.IsServer())
	require.Equal(t, model.NetworkAddress("lfpg-net"), forwarded.Routing.Destination.Address)
	require.NotNil(t, forwarded.Payload.Acars)
	require.Equal(t, model.AcarsEndpointCallsign("AFR123"), forwarded.Payload.Acars.Message.Source)

	stationSessionUpdate := recvEnvelope(t, stationInbox, time.Second)
	require.NotNil(t, stationSessionUpdate.Payload.Acars)
	require.Equal(t, model.MetaSessionUpdate, stationSessionUpdate.Payload.Acars.Message.Meta.Kind)

	aircraftSessionUpdate := recvEnvelope(t, aircraftInbox, time.Second)
	require.NotNil(t, aircraftSessionUpdate.Payload.Acars)
	require.Equal(t, model.MetaSessionUpdate, aircraftSessionUpdate.Payload.Acars.Message.Meta.Kind)
}
