// Package relay implements the network relay server: the outbox consumer
// that dispatches station-status and CPDLC traffic, resolves destinations
// via the station registry, forwards to inboxes, fans out SessionUpdate
// snapshots, and sweeps expired station leases.
package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pluce/openlink/internal/registry"
	"github.com/pluce/openlink/internal/session"
	"github.com/pluce/openlink/model"
	"github.com/pluce/openlink/subjects"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Server orchestrates one network's relay: one outbox consumer and one
// lease-sweep ticker, both supervised by an errgroup so either's fatal
// error brings the whole server down for a clean restart.
type Server struct {
	network            model.NetworkId
	transport          Transport
	registry           *registry.Registry
	sessions           *session.Store
	leaseSweepInterval time.Duration
	autoEndService     bool
}

// NewServer builds a Server for one network. autoEndService controls
// whether a station's lease expiring implicitly ends its CPDLC service
// (AUTO_END_SERVICE_ON_STATION_OFFLINE); when false, expired stations are
// just marked offline in the registry and existing sessions are left
// untouched until an explicit EndService arrives.
func NewServer(network model.NetworkId, transport Transport, reg *registry.Registry, sessions *session.Store, leaseSweepInterval time.Duration, autoEndService bool) *Server {
	return &Server{
		network:            network,
		transport:          transport,
		registry:           reg,
		sessions:           sessions,
		leaseSweepInterval: leaseSweepInterval,
		autoEndService:     autoEndService,
	}
}

// Run blocks until ctx is cancelled or either the outbox consumer or the
// lease sweeper returns a fatal error.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.consumeOutbox(ctx) })
	g.Go(func() error { return s.sweepLoop(ctx) })
	return g.Wait()
}

func (s *Server) consumeOutbox(ctx context.Context) error {
	sub, err := s.transport.SubscribeOutboxWildcard()
	if err != nil {
		return err
	}

	for {
		data, subject, err := sub.NextMsg(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn().Err(err).Msg("outbox subscription read failed, continuing")
			continue
		}
		if err := s.handleEnvelope(ctx, subject, data); err != nil {
			log.Warn().Err(err).Str("subject", subject).Msg("dropping unprocessable envelope")
		}
	}
}

func (s *Server) handleEnvelope(ctx context.Context, subject string, data []byte) error {
	var env model.OpenLinkEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	switch env.Payload.Kind {
	case model.PayloadMeta:
		if env.Payload.Meta == nil {
			return nil
		}
		senderAddress, _ := subjects.ParseOutboxSender(subject)
		wentOnline, status, err := s.handleMetaEnvelope(ctx, *env.Payload.Meta, senderAddress)
		if err != nil {
			return err
		}
		if wentOnline {
			s.replayPresence(ctx, status.Endpoint.Callsign)
		}

	case model.PayloadAcars:
		if env.Payload.Acars == nil {
			return nil
		}
		result, err := s.handleAcarsEnvelope(ctx, *env.Payload.Acars)
		if err != nil {
			return err
		}
		if result.forward {
			s.forward(ctx, env, *env.Payload.Acars, result.forwardTo)
		}
		if result.mutatedSession != nil {
			participants := participantsToNotify(result.mutatedSession, result.triggerSource, result.triggerDest)
			s.sendSessionUpdates(ctx, result.mutatedSession, participants)
		}
	}
	return nil
}

// forward rewrites original's routing (source becomes what was addressed as
// the destination; destination becomes the resolved station or aircraft
// address) and republishes it on the resolved recipient's inbox. A callsign
// that doesn't resolve to any known address is dropped silently; the
// sender's own retry/timeout handling covers it.
func (s *Server) forward(ctx context.Context, original model.OpenLinkEnvelope, acars model.AcarsEnvelope, destCallsign model.AcarsEndpointCallsign) {
	addr, ok := s.resolveAddress(ctx, destCallsign, acars.Aircraft)
	if !ok {
		log.Debug().Str("destination", string(destCallsign)).Msg("forward destination does not resolve, dropping")
		return
	}

	rewritten := original.WithRouting(model.Routing{
		Source:      original.Routing.Destination,
		Destination: model.AddressRouting(s.network, addr),
	})
	data, err := json.Marshal(rewritten)
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode forwarded envelope")
		return
	}
	if err := s.transport.Publish(subjects.Inbox(s.network, addr), data); err != nil {
		log.Warn().Err(err).Str("to", string(destCallsign)).Msg("failed to publish forwarded envelope")
	}
}

func (s *Server) sweepLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.leaseSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *Server) runSweep(ctx context.Context) {
	transitions, err := s.registry.SweepExpired(ctx, time.Now().UTC())
	if err != nil {
		log.Warn().Err(err).Msg("lease sweep failed")
		return
	}
	for _, t := range transitions {
		log.Info().Str("station", string(t.Station)).Msg("station lease expired, marked offline")
		if s.autoEndService {
			s.cascadeEndService(ctx, t.Endpoint.Callsign)
		}
	}
}

// cascadeEndService applies an implicit EndService to every session the
// now-offline station occupies, per AUTO_END_SERVICE_ON_STATION_OFFLINE.
func (s *Server) cascadeEndService(ctx context.Context, station model.AcarsEndpointCallsign) {
	sessions, err := s.sessions.ListSessionsForCallsign(ctx, station)
	if err != nil {
		log.Warn().Err(err).Str("station", string(station)).Msg("failed to list sessions for offline cascade")
		return
	}
	for _, sess := range sessions {
		mutated, err := s.sessions.Mutate(ctx, sess.AircraftAddress, sess.Aircraft, func(m *model.CPDLCSession) {
			session.EndService(m, station)
		})
		if err != nil {
			log.Warn().Err(err).Str("aircraft", string(sess.Aircraft)).Msg("failed to cascade end service")
			continue
		}
		participants := participantsToNotify(mutated, station, "")
		s.sendSessionUpdates(ctx, mutated, participants)
	}
}
