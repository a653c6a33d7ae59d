package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionPhase(t *testing.T) {
	c := &CPDLCConnection{}
	assert.Equal(t, PhaseLogonPending, c.Phase())

	c.Logon = true
	assert.Equal(t, PhaseLoggedOn, c.Phase())

	c.Connection = true
	assert.Equal(t, PhaseConnected, c.Phase())

	var nilConn *CPDLCConnection
	assert.Equal(t, PhaseTerminated, nilConn.Phase())
}

func TestMinCountersWrapModulo64(t *testing.T) {
	s := NewSession("AFR123", "A001")
	var last int
	for i := 0; i < 65; i++ {
		last = s.NextAircraftMin()
	}
	first := 0
	assert.Equal(t, first, last)
	assert.Equal(t, 1, s.MinCounterAircraft)
}

func TestDialogueOpenCloseAndStandby(t *testing.T) {
	s := NewSession("AFR123", "A001")
	s.OpenDialogue(0, "LFPG", RespondWilcoUnable)

	// STANDBY never closes even when it references the open min.
	closedByStandby := false
	if IsStandby("DM2") {
		// simulate: handler would skip CloseDialogue call entirely
	} else {
		closedByStandby = s.CloseDialogue(0)
	}
	assert.False(t, closedByStandby)
	assert.Equal(t, DialogueOpen, s.Dialogues[0].State)

	ok := s.CloseDialogue(0)
	assert.True(t, ok)
	assert.Equal(t, DialogueClosed, s.Dialogues[0].State)
}

func TestDialogueGarbageCollectionKeepsOpenAndLast16Closed(t *testing.T) {
	s := NewSession("AFR123", "A001")
	for i := 0; i < 20; i++ {
		s.OpenDialogue(i, "LFPG", RespondWilcoUnable)
		s.CloseDialogue(i)
	}
	s.OpenDialogue(99, "LFPG", RespondWilcoUnable)

	closed := 0
	openFound := false
	for _, d := range s.Dialogues {
		if d.State == DialogueClosed {
			closed++
		}
		if d.State == DialogueOpen && d.InitiatorMin == 99 {
			openFound = true
		}
	}
	assert.Equal(t, 16, closed)
	assert.True(t, openFound)
}

func TestSessionViewsIsolateStations(t *testing.T) {
	s := NewSession("AFR123", "A001")
	s.ActiveConnection = &CPDLCConnection{
		Station: AcarsRoutingEndpoint{Callsign: "LFPG", Address: "S001"},
		Logon:   true, Connection: true,
	}
	s.InactiveConnection = &CPDLCConnection{
		Station: AcarsRoutingEndpoint{Callsign: "EGLL", Address: "S002"},
		Logon:   true,
	}

	aircraftView := s.ToAircraftView()
	assert.NotNil(t, aircraftView.ActiveConnection)
	assert.NotNil(t, aircraftView.InactiveConnection)

	lfpgView := s.ToStationView("LFPG")
	assert.NotNil(t, lfpgView.ActiveConnection)
	assert.Nil(t, lfpgView.InactiveConnection)

	eglView := s.ToStationView("EGLL")
	assert.Nil(t, eglView.ActiveConnection)
	assert.NotNil(t, eglView.InactiveConnection)
}
