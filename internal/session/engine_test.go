package session

import (
	"testing"

	"github.com/pluce/openlink/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lfpg() model.AcarsRoutingEndpoint {
	return model.AcarsRoutingEndpoint{Callsign: "LFPG", Address: "S001"}
}

func egll() model.AcarsRoutingEndpoint {
	return model.AcarsRoutingEndpoint{Callsign: "EGLL", Address: "S002"}
}

func TestCpdlcSessionLogonConnectExchangeEnd(t *testing.T) {
	s := model.NewSession("AFR123", "A001")

	LogonRequest(s, lfpg())
	require.NotNil(t, s.ActiveConnection)
	assert.Equal(t, model.PhaseLogonPending, s.ActiveConnection.Phase())

	LogonResponse(s, "LFPG", true)
	assert.Equal(t, model.PhaseLoggedOn, s.ActiveConnection.Phase())

	ConnectionRequest(s, lfpg())
	ConnectionResponse(s, "LFPG", true)
	assert.Equal(t, model.PhaseConnected, s.ActiveConnection.Phase())

	cat := model.DefaultCatalog()
	msg := &model.CpdlcApplicationMessage{Elements: []model.MessageElement{
		{Id: "UM20", Args: []model.CpdlcArgument{{Kind: model.ArgLevel, Level: 350}}},
	}}
	ApplyApplicationMessage(s, cat, false, "LFPG", msg)
	assert.Equal(t, 0, msg.Min)
	require.Len(t, s.Dialogues, 1)
	assert.Equal(t, model.DialogueOpen, s.Dialogues[0].State)

	reply := &model.CpdlcApplicationMessage{Mrn: intPtr(0), Elements: []model.MessageElement{{Id: "DM0"}}}
	ApplyApplicationMessage(s, cat, true, "AFR123", reply)
	assert.Equal(t, model.DialogueClosed, s.Dialogues[0].State)

	EndService(s, "LFPG")
	assert.Nil(t, s.ActiveConnection)
	assert.Nil(t, s.InactiveConnection)
	assert.True(t, s.IsEmpty())
}

func TestCpdlcSessionSwitch(t *testing.T) {
	s := model.NewSession("AFR123", "A001")
	LogonRequest(s, lfpg())
	LogonRequest(s, egll())

	require.NotNil(t, s.ActiveConnection)
	require.NotNil(t, s.InactiveConnection)
	assert.Equal(t, model.AcarsEndpointCallsign("LFPG"), s.ActiveConnection.Station.Callsign)
	assert.Equal(t, model.AcarsEndpointCallsign("EGLL"), s.InactiveConnection.Station.Callsign)
}

func TestCpdlcSessionWithoutLogon(t *testing.T) {
	s := model.NewSession("AFR123", "A001")
	ConnectionRequest(s, lfpg())
	assert.Nil(t, s.ActiveConnection)

	ConnectionResponse(s, "LFPG", true)
	assert.Nil(t, s.ActiveConnection)
}

func TestCpdlcSessionWithNda(t *testing.T) {
	s := model.NewSession("AFR123", "A001")
	LogonRequest(s, lfpg())
	LogonResponse(s, "LFPG", true)
	ConnectionRequest(s, lfpg())
	ConnectionResponse(s, "LFPG", true)

	eg := egll()
	NextDataAuthority(s, eg)
	require.NotNil(t, s.NextDataAuthority)
	assert.Equal(t, model.AcarsEndpointCallsign("EGLL"), s.NextDataAuthority.Callsign)

	// EGLL requests connection: implicit logged-on connection created.
	ConnectionRequest(s, eg)
	require.NotNil(t, s.InactiveConnection)
	assert.Equal(t, model.AcarsEndpointCallsign("EGLL"), s.InactiveConnection.Station.Callsign)
	assert.True(t, s.InactiveConnection.Logon)
	assert.False(t, s.InactiveConnection.Connection)
}

func TestCpdlcSessionWithNdaTransfer(t *testing.T) {
	s := model.NewSession("AFR123", "A001")
	LogonRequest(s, lfpg())
	LogonResponse(s, "LFPG", true)
	ConnectionRequest(s, lfpg())
	ConnectionResponse(s, "LFPG", true)

	eg := egll()
	NextDataAuthority(s, eg)
	ConnectionRequest(s, eg)
	ConnectionResponse(s, "EGLL", true)
	assert.Equal(t, model.PhaseConnected, s.InactiveConnection.Phase())

	// Aircraft's view shows both; LFPG's view shows only its own.
	aircraftView := s.ToAircraftView()
	assert.NotNil(t, aircraftView.ActiveConnection)
	assert.NotNil(t, aircraftView.InactiveConnection)

	lfpgView := s.ToStationView("LFPG")
	assert.NotNil(t, lfpgView.ActiveConnection)
	assert.Nil(t, lfpgView.InactiveConnection)

	// LFPG ends service: EGLL (inactive) is promoted to active, NDA clears.
	EndService(s, "LFPG")
	require.NotNil(t, s.ActiveConnection)
	assert.Equal(t, model.AcarsEndpointCallsign("EGLL"), s.ActiveConnection.Station.Callsign)
	assert.Nil(t, s.InactiveConnection)
	assert.Nil(t, s.NextDataAuthority)
}

func intPtr(v int) *int { return &v }
