package model

// ConnectionPhase is the derived, read-only phase of a CPDLCConnection.
type ConnectionPhase string

const (
	PhaseTerminated   ConnectionPhase = "terminated"
	PhaseLogonPending ConnectionPhase = "logon_pending"
	PhaseLoggedOn     ConnectionPhase = "logged_on"
	PhaseConnected    ConnectionPhase = "connected"
)

// CPDLCConnection is one side's relationship to a station: whether a logon
// handshake and a connection handshake have each completed.
type CPDLCConnection struct {
	Station    AcarsRoutingEndpoint `json:"station"`
	Logon      bool                 `json:"logon"`
	Connection bool                 `json:"connection"`
}

// Phase derives this connection's phase from its logon/connection flags.
func (c *CPDLCConnection) Phase() ConnectionPhase {
	if c == nil {
		return PhaseTerminated
	}
	switch {
	case c.Logon && c.Connection:
		return PhaseConnected
	case c.Logon:
		return PhaseLoggedOn
	default:
		return PhaseLogonPending
	}
}

// DialogueState is whether a dialogue is still awaiting its closing response.
type DialogueState string

const (
	DialogueOpen   DialogueState = "open"
	DialogueClosed DialogueState = "closed"
)

// CpdlcDialogue tracks one application message that opened a dialogue
// (its effective response attribute was not N nor NE) until a later message
// closes it by referencing its initiator min as an mrn.
type CpdlcDialogue struct {
	InitiatorMin      int               `json:"initiator_min"`
	InitiatorCallsign AcarsEndpointCallsign `json:"initiator_callsign"`
	State             DialogueState     `json:"state"`
	ResponseAttr      ResponseAttribute `json:"response_attr"`
}

// maxClosedDialogues bounds how many closed dialogues a session retains;
// open dialogues are never collected.
const maxClosedDialogues = 16

// CPDLCSession is the authoritative per-aircraft record the session engine
// mutates under KV compare-and-swap.
type CPDLCSession struct {
	Aircraft           AcarsEndpointCallsign `json:"aircraft"`
	AircraftAddress    AcarsEndpointAddress  `json:"aircraft_address"`
	ActiveConnection   *CPDLCConnection      `json:"active_connection,omitempty"`
	InactiveConnection *CPDLCConnection      `json:"inactive_connection,omitempty"`
	NextDataAuthority  *AcarsRoutingEndpoint `json:"next_data_authority,omitempty"`
	MinCounterAircraft int                   `json:"min_counter_aircraft"`
	MinCounterStation  int                   `json:"min_counter_station"`
	Dialogues          []CpdlcDialogue       `json:"dialogues"`
}

// NewSession creates an empty session for the given aircraft.
func NewSession(aircraft AcarsEndpointCallsign, address AcarsEndpointAddress) *CPDLCSession {
	return &CPDLCSession{Aircraft: aircraft, AircraftAddress: address}
}

// IsEmpty reports whether the session has no connections left and can be
// deleted from the store.
func (s *CPDLCSession) IsEmpty() bool {
	return s.ActiveConnection == nil && s.InactiveConnection == nil
}

// NextAircraftMin returns the next MIN for an aircraft-originated message
// and advances the counter modulo 64.
func (s *CPDLCSession) NextAircraftMin() int {
	v := s.MinCounterAircraft
	s.MinCounterAircraft = (s.MinCounterAircraft + 1) % 64
	return v
}

// NextStationMin returns the next MIN for a station-originated message and
// advances the counter modulo 64.
func (s *CPDLCSession) NextStationMin() int {
	v := s.MinCounterStation
	s.MinCounterStation = (s.MinCounterStation + 1) % 64
	return v
}

// connectionFor returns whichever connection (active or inactive) matches
// the given station callsign, or nil.
func (s *CPDLCSession) connectionFor(station AcarsEndpointCallsign) *CPDLCConnection {
	if s.ActiveConnection != nil && s.ActiveConnection.Station.Callsign == station {
		return s.ActiveConnection
	}
	if s.InactiveConnection != nil && s.InactiveConnection.Station.Callsign == station {
		return s.InactiveConnection
	}
	return nil
}

// OpenDialogue appends a new open dialogue and runs garbage collection over
// closed ones.
func (s *CPDLCSession) OpenDialogue(min int, initiator AcarsEndpointCallsign, attr ResponseAttribute) {
	s.Dialogues = append(s.Dialogues, CpdlcDialogue{
		InitiatorMin:      min,
		InitiatorCallsign: initiator,
		State:             DialogueOpen,
		ResponseAttr:      attr,
	})
	s.gcDialogues()
}

// CloseDialogue closes the open dialogue whose initiator min equals mrn, if
// one exists, and reports whether it found and closed one.
func (s *CPDLCSession) CloseDialogue(mrn int) bool {
	for i := range s.Dialogues {
		if s.Dialogues[i].InitiatorMin == mrn && s.Dialogues[i].State == DialogueOpen {
			s.Dialogues[i].State = DialogueClosed
			s.gcDialogues()
			return true
		}
	}
	return false
}

// gcDialogues drops the oldest closed dialogues once more than
// maxClosedDialogues have accumulated. Open dialogues are never dropped.
func (s *CPDLCSession) gcDialogues() {
	closedCount := 0
	for _, d := range s.Dialogues {
		if d.State == DialogueClosed {
			closedCount++
		}
	}
	if closedCount <= maxClosedDialogues {
		return
	}
	toDrop := closedCount - maxClosedDialogues
	out := make([]CpdlcDialogue, 0, len(s.Dialogues))
	for _, d := range s.Dialogues {
		if d.State == DialogueClosed && toDrop > 0 {
			toDrop--
			continue
		}
		out = append(out, d)
	}
	s.Dialogues = out
}

// CPDLCConnectionView is the observer-facing projection of a connection.
type CPDLCConnectionView struct {
	Station AcarsRoutingEndpoint `json:"station"`
	Phase   ConnectionPhase      `json:"phase"`
}

func viewOf(c *CPDLCConnection) *CPDLCConnectionView {
	if c == nil {
		return nil
	}
	return &CPDLCConnectionView{Station: c.Station, Phase: c.Phase()}
}

// CpdlcSessionView is the participant-specific projection of a session
// delivered as a SessionUpdate.
type CpdlcSessionView struct {
	Aircraft           AcarsEndpointCallsign `json:"aircraft"`
	AircraftAddress    AcarsEndpointAddress  `json:"aircraft_address"`
	ActiveConnection   *CPDLCConnectionView  `json:"active_connection,omitempty"`
	InactiveConnection *CPDLCConnectionView  `json:"inactive_connection,omitempty"`
	NextDataAuthority  *AcarsRoutingEndpoint `json:"next_data_authority,omitempty"`
}

// ToAircraftView projects the full session for the aircraft itself: both
// connections are visible.
func (s *CPDLCSession) ToAircraftView() CpdlcSessionView {
	return CpdlcSessionView{
		Aircraft:           s.Aircraft,
		AircraftAddress:    s.AircraftAddress,
		ActiveConnection:   viewOf(s.ActiveConnection),
		InactiveConnection: viewOf(s.InactiveConnection),
		NextDataAuthority:  s.NextDataAuthority,
	}
}

// ToStationView projects the session for a specific observing station:
// only the connection(s) belonging to that station are included.
func (s *CPDLCSession) ToStationView(observer AcarsEndpointCallsign) CpdlcSessionView {
	v := CpdlcSessionView{Aircraft: s.Aircraft, AircraftAddress: s.AircraftAddress}
	if s.ActiveConnection != nil && s.ActiveConnection.Station.Callsign == observer {
		v.ActiveConnection = viewOf(s.ActiveConnection)
	}
	if s.InactiveConnection != nil && s.InactiveConnection.Station.Callsign == observer {
		v.InactiveConnection = viewOf(s.InactiveConnection)
	}
	if s.NextDataAuthority != nil && s.NextDataAuthority.Callsign == observer {
		v.NextDataAuthority = s.NextDataAuthority
	}
	return v
}

// InvolvesStation reports whether the given station callsign currently
// occupies either connection slot of the session.
func (s *CPDLCSession) InvolvesStation(station AcarsEndpointCallsign) bool {
	return s.connectionFor(station) != nil
}
