package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pluce/openlink/model"
	"github.com/pluce/openlink/subjects"
	"github.com/rs/zerolog/log"
)

// participantsToNotify collects every callsign that should receive a
// SessionUpdate after a mutation: the aircraft itself, whichever station(s)
// currently occupy a connection slot, and the source/destination of the
// triggering exchange (a station may be addressed in a message before it
// occupies a slot, e.g. a rejected LogonRequest).
func participantsToNotify(sess *model.CPDLCSession, triggerSource, triggerDest model.AcarsEndpointCallsign) []model.AcarsEndpointCallsign {
	seen := map[model.AcarsEndpointCallsign]struct{}{}
	var out []model.AcarsEndpointCallsign
	add := func(c model.AcarsEndpointCallsign) {
		if c == "" {
			return
		}
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	add(sess.Aircraft)
	if sess.ActiveConnection != nil {
		add(sess.ActiveConnection.Station.Callsign)
	}
	if sess.InactiveConnection != nil {
		add(sess.InactiveConnection.Station.Callsign)
	}
	add(triggerSource)
	add(triggerDest)
	return out
}

// resolveAddress finds the NetworkAddress to deliver to a callsign: the
// aircraft's own address if the callsign is the session's aircraft, or a
// registry lookup by callsign otherwise.
func (s *Server) resolveAddress(ctx context.Context, callsign model.AcarsEndpointCallsign, aircraft model.AcarsRoutingEndpoint) (model.NetworkAddress, bool) {
	if callsign == aircraft.Callsign {
		return model.NetworkAddress(aircraft.Address), true
	}
	entry, ok, err := s.registry.LookupCallsign(ctx, callsign)
	if err != nil || !ok {
		return "", false
	}
	return entry.NetworkAddress, true
}

// sendSessionUpdates projects sess for each of participants and delivers the
// resulting SessionUpdate to whichever address the callsign resolves to,
// silently skipping any it can't resolve (an unregistered or offline
// station simply misses this snapshot; it is caught up by presence replay
// the next time it announces online).
func (s *Server) sendSessionUpdates(ctx context.Context, sess *model.CPDLCSession, participants []model.AcarsEndpointCallsign) {
	aircraft := model.AcarsRoutingEndpoint{Callsign: sess.Aircraft, Address: sess.AircraftAddress}
	for _, participant := range participants {
		var view model.CpdlcSessionView
		if participant == sess.Aircraft {
			view = sess.ToAircraftView()
		} else {
			view = sess.ToStationView(participant)
		}
		if err := s.deliverSessionUpdate(ctx, aircraft, participant, view); err != nil {
			log.Warn().Err(err).Str("to", string(participant)).Msg("failed to deliver session update")
		}
	}
}

func (s *Server) deliverSessionUpdate(ctx context.Context, aircraft model.AcarsRoutingEndpoint, to model.AcarsEndpointCallsign, view model.CpdlcSessionView) error {
	addr, ok := s.resolveAddress(ctx, to, aircraft)
	if !ok {
		return nil
	}

	cpdlc := model.MetaEnvelope(aircraft.Callsign, to, model.SessionUpdateMeta(view))
	payload := model.AcarsPayload(model.AcarsEnvelope{Aircraft: aircraft, Message: cpdlc})
	env := model.OpenLinkEnvelope{
		Id:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Routing: model.Routing{
			Source:      model.ServerRouting(s.network),
			Destination: model.AddressRouting(s.network, addr),
		},
		Payload: payload,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.transport.Publish(subjects.Inbox(s.network, addr), data)
}

// replayPresence sends every session involving station its current view,
// used when a station announces it just came online so it recovers state
// for sessions it missed while offline.
func (s *Server) replayPresence(ctx context.Context, station model.AcarsEndpointCallsign) {
	sessions, err := s.sessions.ListSessionsForCallsign(ctx, station)
	if err != nil {
		log.Warn().Err(err).Str("station", string(station)).Msg("failed to list sessions for presence replay")
		return
	}
	for _, sess := range sessions {
		aircraft := model.AcarsRoutingEndpoint{Callsign: sess.Aircraft, Address: sess.AircraftAddress}
		view := sess.ToStationView(station)
		if err := s.deliverSessionUpdate(ctx, aircraft, station, view); err != nil {
			log.Warn().Err(err).Str("to", string(station)).Msg("failed to replay session update")
		}
	}
}
