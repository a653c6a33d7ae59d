package relay

import (
	"context"

	"github.com/pluce/openlink/internal/olerr"
	"github.com/pluce/openlink/internal/session"
	"github.com/pluce/openlink/model"
	"github.com/rs/zerolog/log"
)

// dispatchResult is what handling one inbound envelope decided: whether to
// forward it (and to which callsign), and the session mutation that
// occurred, if any, so the caller can fan out a SessionUpdate.
type dispatchResult struct {
	forwardTo     model.AcarsEndpointCallsign
	forward       bool
	mutatedSession *model.CPDLCSession
	triggerSource model.AcarsEndpointCallsign
	triggerDest   model.AcarsEndpointCallsign
}

// handleMetaEnvelope processes a Meta(StationStatus) payload: updates the
// registry, and reports whether the station just transitioned to Online
// (the caller replays session snapshots to it in that case). networkAddress
// is the publisher's own address, taken from the outbox subject the status
// was announced on, since StationStatus itself carries only the ACARS
// endpoint, not the transport address to deliver future traffic to.
func (s *Server) handleMetaEnvelope(ctx context.Context, meta model.MetaMessage, networkAddress model.NetworkAddress) (wentOnline bool, status model.StationStatus, err error) {
	status, ok, err := meta.AsStationStatus()
	if err != nil {
		return false, model.StationStatus{}, olerr.Protocol("decode station status", err)
	}
	if !ok {
		return false, model.StationStatus{}, olerr.Protocol("unknown meta message variant", nil)
	}

	previous, existed, err := s.registry.GetStatus(ctx, status.Station)
	if err != nil {
		return false, model.StationStatus{}, err
	}

	if _, err := s.registry.UpdateStatus(ctx, status.Station, status.Status, status.Endpoint, networkAddress); err != nil {
		return false, model.StationStatus{}, err
	}

	wasOffline := !existed || previous.Status != model.StationOnline
	return status.Status == model.StationOnline && wasOffline, status, nil
}

// handleAcarsEnvelope processes an Acars(CPDLC) payload against the session
// engine and returns the destination callsign to forward to (if any) and
// the mutated session (if any) for SessionUpdate fan-out.
func (s *Server) handleAcarsEnvelope(ctx context.Context, acars model.AcarsEnvelope) (dispatchResult, error) {
	cpdlc := acars.Message
	result := dispatchResult{
		forwardTo: cpdlc.Destination,
		forward:   true,
		triggerSource: cpdlc.Source,
		triggerDest:   cpdlc.Destination,
	}

	fromAircraft := cpdlc.Source == acars.Aircraft.Callsign

	switch cpdlc.Kind {
	case model.CpdlcMeta:
		meta := cpdlc.Meta
		if meta == nil {
			return dispatchResult{}, olerr.Protocol("meta envelope missing meta payload", nil)
		}
		mutates := true
		sess, err := s.sessions.Mutate(ctx, acars.Aircraft.Address, acars.Aircraft.Callsign, func(sess *model.CPDLCSession) {
			switch meta.Kind {
			case model.MetaLogonRequest:
				if station, ok := s.stationEndpointByStationId(ctx, meta.Station); ok {
					session.LogonRequest(sess, station)
				}
			case model.MetaLogonResponse:
				if meta.Accepted != nil {
					session.LogonResponse(sess, cpdlc.Source, *meta.Accepted)
				}
			case model.MetaConnectionRequest:
				station, ok := s.stationEndpoint(ctx, cpdlc.Source)
				if ok {
					session.ConnectionRequest(sess, station)
				}
			case model.MetaConnectionResponse:
				if meta.Accepted != nil {
					// Sent by the aircraft; the connection to complete is the
					// addressed station's.
					session.ConnectionResponse(sess, cpdlc.Destination, *meta.Accepted)
				}
			case model.MetaNextDataAuthority:
				if meta.Nda != nil {
					session.NextDataAuthority(sess, *meta.Nda)
				}
			case model.MetaEndService:
				session.EndService(sess, cpdlc.Source)
			default:
				mutates = false
			}
		})
		if err != nil {
			log.Warn().Err(err).Str("aircraft", string(acars.Aircraft.Callsign)).Msg("session mutation failed, dropping triggering message")
			return dispatchResult{}, err
		}
		if mutates {
			result.mutatedSession = sess
		}

	case model.CpdlcApplication:
		app := cpdlc.Application
		if app == nil {
			return dispatchResult{}, olerr.Protocol("application envelope missing application payload", nil)
		}
		sess, err := s.sessions.Mutate(ctx, acars.Aircraft.Address, acars.Aircraft.Callsign, func(sess *model.CPDLCSession) {
			session.ApplyApplicationMessage(sess, s.sessions.Catalog(), fromAircraft, cpdlc.Source, app)
		})
		if err != nil {
			log.Warn().Err(err).Str("aircraft", string(acars.Aircraft.Callsign)).Msg("session mutation failed, dropping triggering message")
			return dispatchResult{}, err
		}
		result.mutatedSession = sess

	default:
		return dispatchResult{}, olerr.Protocol("unknown cpdlc message kind", nil)
	}

	return result, nil
}

// stationEndpoint resolves a callsign to its AcarsRoutingEndpoint via the
// registry, used when a meta handler needs the full endpoint rather than
// just the callsign (e.g. recording the requesting station on an implicit
// NDA-driven connection).
func (s *Server) stationEndpoint(ctx context.Context, callsign model.AcarsEndpointCallsign) (model.AcarsRoutingEndpoint, bool) {
	entry, ok, err := s.registry.LookupCallsign(ctx, callsign)
	if err != nil || !ok {
		return model.AcarsRoutingEndpoint{}, false
	}
	return entry.AcarsEndpoint, true
}

// stationEndpointByStationId resolves a station id to its AcarsRoutingEndpoint
// via the registry. LogonRequest names its target station in the message body
// (meta.Station), not in the envelope's source/destination, since the
// aircraft — not the station — is the one publishing the request.
func (s *Server) stationEndpointByStationId(ctx context.Context, station model.StationId) (model.AcarsRoutingEndpoint, bool) {
	entry, ok, err := s.registry.GetStatus(ctx, station)
	if err != nil || !ok {
		return model.AcarsRoutingEndpoint{}, false
	}
	return entry.AcarsEndpoint, true
}
