package model

import (
	"fmt"
)

// CpdlcMessageKind tags a CpdlcEnvelope's message as an application message
// or a meta (protocol-control) message.
type CpdlcMessageKind string

const (
	CpdlcApplication CpdlcMessageKind = "application"
	CpdlcMeta        CpdlcMessageKind = "meta"
)

// CpdlcEnvelope is the callsign-addressed CPDLC exchange carried inside an
// AcarsEnvelope.
type CpdlcEnvelope struct {
	Source      AcarsEndpointCallsign `json:"source"`
	Destination AcarsEndpointCallsign `json:"destination"`
	Kind        CpdlcMessageKind      `json:"type"`
	Application *CpdlcApplicationMessage `json:"application,omitempty"`
	Meta        *CpdlcMetaMessage        `json:"meta,omitempty"`
}

// ArgKind tags a CpdlcArgument's variant.
type ArgKind string

const (
	ArgLevel    ArgKind = "level"
	ArgSpeed    ArgKind = "speed"
	ArgFreeText ArgKind = "free_text"
	ArgWaypoint ArgKind = "waypoint"
)

// CpdlcArgument is a sum type over the argument shapes a MessageElement's
// template slots can hold. Exactly one of the value fields is populated,
// selected by Kind.
type CpdlcArgument struct {
	Kind     ArgKind     `json:"type"`
	Level    FlightLevel `json:"level,omitempty"`
	Speed    string      `json:"speed,omitempty"`
	FreeText string      `json:"free_text,omitempty"`
	Waypoint string      `json:"waypoint,omitempty"`
}

// Text returns the argument's value regardless of variant, for uniform
// free-text normalization and logging.
func (a CpdlcArgument) Text() string {
	switch a.Kind {
	case ArgLevel:
		return fmt.Sprintf("%d", a.Level)
	case ArgSpeed:
		return a.Speed
	case ArgFreeText:
		return a.FreeText
	case ArgWaypoint:
		return a.Waypoint
	default:
		return ""
	}
}

// MessageElement is one catalog-referenced element of a CPDLC application
// message, e.g. {"id": "UM20", "args": [{"type":"level","level":350}]}.
type MessageElement struct {
	Id   string          `json:"id"`
	Args []CpdlcArgument `json:"args"`
}

// CpdlcApplicationMessage is a server-stamped exchange of one or more
// catalog elements. Min is always overwritten by the server before
// forwarding, so a client-supplied Min is never trusted; Mrn is carried as
// the sender set it.
type CpdlcApplicationMessage struct {
	Min       int              `json:"min"`
	Mrn       *int             `json:"mrn,omitempty"`
	Elements  []MessageElement `json:"elements"`
	Timestamp int64            `json:"timestamp"`
}

// CpdlcMetaKind tags a CpdlcMetaMessage's variant.
type CpdlcMetaKind string

const (
	MetaLogonRequest      CpdlcMetaKind = "logon_request"
	MetaLogonResponse     CpdlcMetaKind = "logon_response"
	MetaConnectionRequest CpdlcMetaKind = "connection_request"
	MetaConnectionResponse CpdlcMetaKind = "connection_response"
	MetaContactRequest    CpdlcMetaKind = "contact_request"
	MetaContactResponse   CpdlcMetaKind = "contact_response"
	MetaContactComplete   CpdlcMetaKind = "contact_complete"
	MetaLogonForward      CpdlcMetaKind = "logon_forward"
	MetaNextDataAuthority CpdlcMetaKind = "next_data_authority"
	MetaEndService        CpdlcMetaKind = "end_service"
	MetaSessionUpdate     CpdlcMetaKind = "session_update"
)

// CpdlcMetaMessage is the tagged union of protocol-control messages
// exchanged outside the application-message catalog. Every field besides
// Kind is optional and populated only for the matching variant.
type CpdlcMetaMessage struct {
	Kind CpdlcMetaKind `json:"type"`

	// LogonRequest
	Station     StationId       `json:"station,omitempty"`
	FpOrigin    ICAOAirportCode `json:"fp_origin,omitempty"`
	FpDestination ICAOAirportCode `json:"fp_destination,omitempty"`

	// LogonResponse, ConnectionResponse, ContactResponse
	Accepted *bool `json:"accepted,omitempty"`

	// LogonForward
	Flight     AcarsEndpointCallsign `json:"flight,omitempty"`
	NewStation StationId             `json:"new_station,omitempty"`

	// NextDataAuthority
	Nda *AcarsRoutingEndpoint `json:"nda,omitempty"`

	// SessionUpdate (server-originated only)
	View *CpdlcSessionView `json:"view,omitempty"`
}

// LogonRequestMeta builds a logon_request meta message.
func LogonRequestMeta(station StationId, fpOrigin, fpDestination ICAOAirportCode) CpdlcMetaMessage {
	return CpdlcMetaMessage{Kind: MetaLogonRequest, Station: station, FpOrigin: fpOrigin, FpDestination: fpDestination}
}

// LogonResponseMeta builds a logon_response meta message.
func LogonResponseMeta(accepted bool) CpdlcMetaMessage {
	return CpdlcMetaMessage{Kind: MetaLogonResponse, Accepted: &accepted}
}

// ConnectionRequestMeta builds a connection_request meta message.
func ConnectionRequestMeta() CpdlcMetaMessage {
	return CpdlcMetaMessage{Kind: MetaConnectionRequest}
}

// ConnectionResponseMeta builds a connection_response meta message.
func ConnectionResponseMeta(accepted bool) CpdlcMetaMessage {
	return CpdlcMetaMessage{Kind: MetaConnectionResponse, Accepted: &accepted}
}

// EndServiceMeta builds an end_service meta message.
func EndServiceMeta() CpdlcMetaMessage { return CpdlcMetaMessage{Kind: MetaEndService} }

// NextDataAuthorityMeta builds a next_data_authority meta message.
func NextDataAuthorityMeta(nda AcarsRoutingEndpoint) CpdlcMetaMessage {
	return CpdlcMetaMessage{Kind: MetaNextDataAuthority, Nda: &nda}
}

// SessionUpdateMeta builds a server-originated session_update meta message.
func SessionUpdateMeta(view CpdlcSessionView) CpdlcMetaMessage {
	return CpdlcMetaMessage{Kind: MetaSessionUpdate, View: &view}
}

// ApplicationEnvelope builds a CpdlcEnvelope wrapping an application message.
func ApplicationEnvelope(source, destination AcarsEndpointCallsign, msg CpdlcApplicationMessage) CpdlcEnvelope {
	return CpdlcEnvelope{Source: source, Destination: destination, Kind: CpdlcApplication, Application: &msg}
}

// MetaEnvelope builds a CpdlcEnvelope wrapping a meta message.
func MetaEnvelope(source, destination AcarsEndpointCallsign, msg CpdlcMetaMessage) CpdlcEnvelope {
	return CpdlcEnvelope{Source: source, Destination: destination, Kind: CpdlcMeta, Meta: &msg}
}

