package model

import "time"

// StationEntry is the station registry's durable record for one station.
type StationEntry struct {
	StationId       StationId            `json:"station_id"`
	Status          StationStatusValue   `json:"status"`
	LastUpdated     time.Time            `json:"last_updated"`
	NetworkAddress  NetworkAddress       `json:"network_address"`
	AcarsEndpoint   AcarsRoutingEndpoint `json:"acars_endpoint"`
	LeaseExpiresAt  time.Time            `json:"lease_expires_at"`
}

// Expired reports whether the entry's lease has elapsed as of now.
func (e StationEntry) Expired(now time.Time) bool {
	return now.After(e.LeaseExpiresAt)
}
