// Package session implements the authoritative per-aircraft CPDLC state
// machine: logon/connection/handover/termination transitions, MIN
// allocation, dialogue tracking and session view projection. engine.go
// holds the pure transition logic; store.go wraps it with KV load/CAS/save.
package session

import (
	"github.com/pluce/openlink/model"
	"github.com/rs/zerolog/log"
)

// assignToSlot places a new connection into the active slot if empty,
// otherwise the inactive slot (displacing whatever was there, matching the
// source's connection-churn model: a session persists across a new station
// taking over while the old one has not yet formally ended).
func assignToSlot(s *model.CPDLCSession, conn *model.CPDLCConnection) {
	if s.ActiveConnection == nil {
		s.ActiveConnection = conn
		return
	}
	s.InactiveConnection = conn
}

func connectionFor(s *model.CPDLCSession, station model.AcarsEndpointCallsign) *model.CPDLCConnection {
	if s.ActiveConnection != nil && s.ActiveConnection.Station.Callsign == station {
		return s.ActiveConnection
	}
	if s.InactiveConnection != nil && s.InactiveConnection.Station.Callsign == station {
		return s.InactiveConnection
	}
	return nil
}

// LogonRequest handles a station's LogonRequest. It builds a new connection
// (logon=false, connection=false), placing it in the active slot if empty
// else the inactive slot. Callers create the session itself (store.go) on
// first reference, since this function operates on an already-resolved
// session value.
func LogonRequest(s *model.CPDLCSession, station model.AcarsRoutingEndpoint) {
	assignToSlot(s, &model.CPDLCConnection{Station: station})
}

// LogonResponse sets logon=true on the matching connection when accepted.
// A rejected response or a missing matching connection changes nothing; a
// rejection is reported to the caller as informational, not a failure.
func LogonResponse(s *model.CPDLCSession, station model.AcarsEndpointCallsign, accepted bool) {
	if !accepted {
		log.Info().Str("station", string(station)).Msg("cpdlc logon rejected")
		return
	}
	conn := connectionFor(s, station)
	if conn == nil {
		log.Warn().Str("station", string(station)).Msg("logon response for unknown connection")
		return
	}
	conn.Logon = true
}

// ConnectionRequest handles a station's ConnectionRequest. If the
// requesting station is the session's next data authority and has no
// connection yet, an implicit logged-on connection is created for it
// first (the NDA handover shortcut), mirroring spec.md's handover rule.
// Otherwise a matching connection must already exist; a request from an
// unrecognized station is a no-op failure per spec.md's session-engine
// failure semantics.
func ConnectionRequest(s *model.CPDLCSession, station model.AcarsRoutingEndpoint) {
	conn := connectionFor(s, station.Callsign)
	if conn == nil {
		if s.NextDataAuthority != nil && s.NextDataAuthority.Callsign == station.Callsign {
			assignToSlot(s, &model.CPDLCConnection{Station: station, Logon: true})
			return
		}
		log.Warn().Str("station", string(station.Callsign)).Msg("connection request with no matching logon")
		return
	}
}

// ConnectionResponse sets connection=true on the matching logged-on
// connection when accepted. No matching logged-on connection, or a
// rejection, changes nothing.
func ConnectionResponse(s *model.CPDLCSession, station model.AcarsEndpointCallsign, accepted bool) {
	if !accepted {
		log.Info().Str("station", string(station)).Msg("cpdlc connection rejected")
		return
	}
	conn := connectionFor(s, station)
	if conn == nil || !conn.Logon {
		log.Warn().Str("station", string(station)).Msg("connection response with no matching logged-on connection")
		return
	}
	conn.Connection = true
}

// NextDataAuthority records the station designated to take over the
// session. It is cleared once that connection becomes active (see
// clearNdaIfPromoted, called after EndService promotes a connection).
func NextDataAuthority(s *model.CPDLCSession, nda model.AcarsRoutingEndpoint) {
	s.NextDataAuthority = &nda
}

// EndService handles a station's EndService. If the station occupies the
// active slot, the inactive connection (possibly none) is promoted into
// active and the inactive slot is cleared. If it occupies only the
// inactive slot, that slot is cleared. A station not currently connected
// is a no-op failure.
func EndService(s *model.CPDLCSession, station model.AcarsEndpointCallsign) {
	switch {
	case s.ActiveConnection != nil && s.ActiveConnection.Station.Callsign == station:
		s.ActiveConnection = s.InactiveConnection
		s.InactiveConnection = nil
		clearNdaIfPromoted(s)
	case s.InactiveConnection != nil && s.InactiveConnection.Station.Callsign == station:
		s.InactiveConnection = nil
	default:
		log.Warn().Str("station", string(station)).Msg("end service for unknown connection")
	}
}

// clearNdaIfPromoted clears next_data_authority once the designated
// station has become the active connection, per spec.md's invariant that
// an NDA is transient scaffolding for the handover in progress.
func clearNdaIfPromoted(s *model.CPDLCSession) {
	if s.NextDataAuthority == nil {
		return
	}
	if s.ActiveConnection != nil && s.ActiveConnection.Station.Callsign == s.NextDataAuthority.Callsign {
		s.NextDataAuthority = nil
	}
}
