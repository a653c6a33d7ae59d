// Package registry implements the station registry: a durable
// StationId -> StationEntry map backed by a kv.Store, with reverse lookup
// by callsign and lease-expiry sweeping.
package registry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pluce/openlink/internal/kv"
	"github.com/pluce/openlink/internal/olerr"
	"github.com/pluce/openlink/model"
	"github.com/rs/zerolog/log"
)

// Registry is the station registry for one network.
type Registry struct {
	store    kv.Store
	leaseTTL time.Duration
}

// New builds a Registry over store. When clean is true the bucket is wiped
// first (the --clean startup flag), mirroring the relay server's test-mode
// reset of both the registry and session-store buckets.
func New(ctx context.Context, store kv.Store, leaseTTL time.Duration, clean bool) (*Registry, error) {
	if clean {
		if err := store.PurgeAll(ctx); err != nil {
			return nil, olerr.Transport("purge registry bucket", err)
		}
	}
	return &Registry{store: store, leaseTTL: leaseTTL}, nil
}

// UpdateStatus upserts a StationEntry with the current timestamp and a
// freshly reset lease.
func (r *Registry) UpdateStatus(ctx context.Context, station model.StationId, status model.StationStatusValue, endpoint model.AcarsRoutingEndpoint, networkAddress model.NetworkAddress) (model.StationEntry, error) {
	now := time.Now().UTC()
	entry := model.StationEntry{
		StationId:      station,
		Status:         status,
		LastUpdated:    now,
		NetworkAddress: networkAddress,
		AcarsEndpoint:  endpoint,
		LeaseExpiresAt: now.Add(r.leaseTTL),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return model.StationEntry{}, olerr.Serialization("encode station entry", err)
	}
	if _, err := r.store.Put(ctx, string(station), data); err != nil {
		return model.StationEntry{}, olerr.Transport("write station entry", err)
	}
	return entry, nil
}

// GetStatus looks up a station's current entry.
func (r *Registry) GetStatus(ctx context.Context, station model.StationId) (model.StationEntry, bool, error) {
	data, _, err := r.store.Get(ctx, string(station))
	if err != nil {
		if olerr.Of(err) == olerr.KindNotFound {
			return model.StationEntry{}, false, nil
		}
		return model.StationEntry{}, false, err
	}
	var entry model.StationEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return model.StationEntry{}, false, olerr.Serialization("decode station entry", err)
	}
	return entry, true, nil
}

// LookupCallsign scans every entry for one whose ACARS callsign matches.
// Linear by default, as spec permits; implementers may add a secondary
// index if the registry grows large.
func (r *Registry) LookupCallsign(ctx context.Context, callsign model.AcarsEndpointCallsign) (model.StationEntry, bool, error) {
	keys, err := r.store.Keys(ctx)
	if err != nil {
		return model.StationEntry{}, false, olerr.Transport("list station keys", err)
	}
	for _, key := range keys {
		data, _, err := r.store.Get(ctx, key)
		if err != nil {
			continue
		}
		var entry model.StationEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if entry.AcarsEndpoint.Callsign == callsign {
			return entry, true, nil
		}
	}
	return model.StationEntry{}, false, nil
}

// ExpiredTransition is emitted by SweepExpired for each entry whose lease
// elapsed this tick.
type ExpiredTransition struct {
	Station  model.StationId
	Endpoint model.AcarsRoutingEndpoint
}

// SweepExpired marks every entry whose lease has elapsed as Offline and
// returns the set of stations that just transitioned, so the caller (the
// relay server) can emit the usual fan-out for each. Write failures on one
// entry do not stop the sweep; the caller retries the whole sweep on the
// next tick per spec.
func (r *Registry) SweepExpired(ctx context.Context, now time.Time) ([]ExpiredTransition, error) {
	keys, err := r.store.Keys(ctx)
	if err != nil {
		return nil, olerr.Transport("list station keys", err)
	}

	var transitions []ExpiredTransition
	for _, key := range keys {
		data, rev, err := r.store.Get(ctx, key)
		if err != nil {
			continue
		}
		var entry model.StationEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if entry.Status != model.StationOnline || !entry.Expired(now) {
			continue
		}
		entry.Status = model.StationOffline
		updated, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		if _, err := r.store.Update(ctx, key, updated, rev); err != nil {
			log.Warn().Str("station", key).Err(err).Msg("failed to write expired station transition, will retry next sweep")
			continue
		}
		transitions = append(transitions, ExpiredTransition{Station: entry.StationId, Endpoint: entry.AcarsEndpoint})
	}
	return transitions, nil
}
