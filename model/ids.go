// Package model defines OpenLink's wire data model: identifiers, the
// envelope hierarchy, the CPDLC application/meta message shapes, the
// message catalog, and the session/connection types the relay server and
// SDK both operate on. Types here are the single source of truth for JSON
// encoding; nothing downstream re-derives wire shape.
package model

import (
	"fmt"
	"regexp"
)

// NetworkId names a simulated network (e.g. "vatsim", "ivao"). Equality is
// byte-exact string comparison.
type NetworkId string

// NetworkAddress is a per-network station address used for subject routing.
type NetworkAddress string

// StationId is the station registry's primary key.
type StationId string

// AcarsEndpointCallsign is the ACARS application-layer callsign of a
// participant (aircraft or station).
type AcarsEndpointCallsign string

// AcarsEndpointAddress is the ACARS application-layer address of a
// participant, distinct from its NetworkAddress.
type AcarsEndpointAddress string

var icaoPattern = regexp.MustCompile(`^[A-Z]{4}$`)

// ICAOAirportCode is validated to be exactly four uppercase ASCII letters.
type ICAOAirportCode string

// NewICAOAirportCode validates and constructs an ICAOAirportCode.
func NewICAOAirportCode(value string) (ICAOAirportCode, error) {
	if !icaoPattern.MatchString(value) {
		return "", fmt.Errorf("invalid ICAO airport code %q: must be exactly 4 uppercase ASCII letters", value)
	}
	return ICAOAirportCode(value), nil
}

// FlightLevel is a validated flight level in the range 0..=999.
type FlightLevel int

// NewFlightLevel validates and constructs a FlightLevel.
func NewFlightLevel(value int) (FlightLevel, error) {
	if value < 0 || value > 999 {
		return 0, fmt.Errorf("invalid flight level %d: must be a number between 0 and 999", value)
	}
	return FlightLevel(value), nil
}

// AcarsRoutingEndpoint identifies a participant at the application layer:
// the callsign used in CPDLC exchanges plus the address used to resolve it
// in the station registry.
type AcarsRoutingEndpoint struct {
	Callsign AcarsEndpointCallsign `json:"callsign"`
	Address  AcarsEndpointAddress  `json:"address"`
}

// RoutingEndpointKind tags an OpenLinkRouting variant.
type RoutingEndpointKind string

const (
	RoutingServer  RoutingEndpointKind = "server"
	RoutingAddress RoutingEndpointKind = "address"
)

// OpenLinkRouting is a tagged union: delivery either goes to the network
// server itself, or to a specific network address.
type OpenLinkRouting struct {
	Kind    RoutingEndpointKind `json:"type"`
	Network NetworkId           `json:"network"`
	Address NetworkAddress      `json:"address,omitempty"`
}

// ServerRouting builds a routing endpoint that delegates to the network server.
func ServerRouting(network NetworkId) OpenLinkRouting {
	return OpenLinkRouting{Kind: RoutingServer, Network: network}
}

// AddressRouting builds a routing endpoint pointed at a specific participant.
func AddressRouting(network NetworkId, address NetworkAddress) OpenLinkRouting {
	return OpenLinkRouting{Kind: RoutingAddress, Network: network, Address: address}
}

// IsServer reports whether this endpoint targets the network server.
func (r OpenLinkRouting) IsServer() bool { return r.Kind == RoutingServer }
