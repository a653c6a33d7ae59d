package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// StationStatusValue is the online/offline state a station reports of itself.
type StationStatusValue string

const (
	StationOnline  StationStatusValue = "online"
	StationOffline StationStatusValue = "offline"
)

// StationStatus is the sole MetaMessage variant today: a station announcing
// its own reachability.
type StationStatus struct {
	Station  StationId            `json:"station"`
	Status   StationStatusValue   `json:"status"`
	Endpoint AcarsRoutingEndpoint `json:"endpoint"`
}

// MetaMessage is the envelope-level tagged union. It currently has a single
// variant but keeps the {type, data} shape so new variants slot in without
// changing the wire format of existing ones.
type MetaMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewStationStatusMeta wraps a StationStatus as a MetaMessage.
func NewStationStatusMeta(s StationStatus) (MetaMessage, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return MetaMessage{}, fmt.Errorf("encode station status: %w", err)
	}
	return MetaMessage{Type: "station_status", Data: data}, nil
}

// AsStationStatus decodes the payload if this meta message is a station_status.
func (m MetaMessage) AsStationStatus() (StationStatus, bool, error) {
	if m.Type != "station_status" {
		return StationStatus{}, false, nil
	}
	var s StationStatus
	if err := json.Unmarshal(m.Data, &s); err != nil {
		return StationStatus{}, true, fmt.Errorf("decode station status: %w", err)
	}
	return s, true, nil
}

// PayloadKind tags the top-level envelope payload variant.
type PayloadKind string

const (
	PayloadMeta  PayloadKind = "meta"
	PayloadAcars PayloadKind = "acars"
)

// AcarsEnvelope carries a CPDLC exchange addressed to/from a specific
// aircraft at the application layer.
type AcarsEnvelope struct {
	Aircraft AcarsRoutingEndpoint `json:"aircraft"`
	Message  CpdlcEnvelope        `json:"message"`
}

// Payload is the envelope's tagged-union body: either a Meta message or an
// Acars-wrapped CPDLC exchange. Exactly one of Meta/Acars is populated,
// selected by Kind.
type Payload struct {
	Kind  PayloadKind    `json:"type"`
	Meta  *MetaMessage   `json:"meta,omitempty"`
	Acars *AcarsEnvelope `json:"acars,omitempty"`
}

// MetaPayload builds a Payload wrapping a MetaMessage.
func MetaPayload(m MetaMessage) Payload { return Payload{Kind: PayloadMeta, Meta: &m} }

// AcarsPayload builds a Payload wrapping an AcarsEnvelope.
func AcarsPayload(a AcarsEnvelope) Payload { return Payload{Kind: PayloadAcars, Acars: &a} }

// Routing carries the source and destination of an envelope.
type Routing struct {
	Source      OpenLinkRouting `json:"source"`
	Destination OpenLinkRouting `json:"destination"`
}

// OpenLinkEnvelope is the outermost object carried on every subject.
type OpenLinkEnvelope struct {
	Id            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationId *string   `json:"correlation_id,omitempty"`
	Routing       Routing   `json:"routing"`
	Token         string    `json:"token"`
	Payload       Payload   `json:"payload"`
}

// WithRouting returns a copy of the envelope with routing replaced, used by
// the relay server when rewriting an envelope for forwarding to an inbox.
func (e OpenLinkEnvelope) WithRouting(r Routing) OpenLinkEnvelope {
	e.Routing = r
	return e
}
