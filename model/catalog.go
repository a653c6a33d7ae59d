package model

import "strings"

// ResponseAttribute is the CPDLC category of reply a message element
// requires. Precedence for the effective attribute of a multi-element
// message is WU > AN > R > Y > N > NE, highest first.
type ResponseAttribute string

const (
	RespondWilcoUnable    ResponseAttribute = "WU"
	RespondAffirmNegative ResponseAttribute = "AN"
	RespondRoger          ResponseAttribute = "R"
	RespondRequired       ResponseAttribute = "Y"
	RespondNotRequired    ResponseAttribute = "N"
	RespondNoResponse     ResponseAttribute = "NE"
)

// responseAttributePrecedence ranks attributes from most to least demanding;
// lower number wins when selecting the effective attribute of a message.
var responseAttributePrecedence = map[ResponseAttribute]int{
	RespondWilcoUnable:    0,
	RespondAffirmNegative: 1,
	RespondRoger:          2,
	RespondRequired:       3,
	RespondNotRequired:    4,
	RespondNoResponse:     5,
}

// Direction is whether a catalog entry is sent uplink (station to aircraft)
// or downlink (aircraft to station).
type Direction string

const (
	Uplink   Direction = "uplink"
	Downlink Direction = "downlink"
)

// CatalogEntry is a static definition of one CPDLC message element: its
// template, the argument types its slots accept, its default response
// attribute, and which standards reference it.
type CatalogEntry struct {
	Id           string
	Direction    Direction
	Template     string
	ArgTypes     []ArgKind
	ResponseAttr ResponseAttribute
	Fans         bool
	AtnB1        bool
}

// Catalog is a parsed, read-only table of message definitions indexed by
// element id. It is built once at startup (NewCatalog) from a static table;
// lookups afterwards are pure and allocation-free.
type Catalog struct {
	entries map[string]CatalogEntry
}

// NewCatalog builds a Catalog from the given entries, indexed by Id. Later
// entries with a duplicate Id overwrite earlier ones.
func NewCatalog(entries []CatalogEntry) *Catalog {
	m := make(map[string]CatalogEntry, len(entries))
	for _, e := range entries {
		m[e.Id] = e
	}
	return &Catalog{entries: m}
}

// FindDefinition looks up a catalog entry by element id.
func (c *Catalog) FindDefinition(id string) (CatalogEntry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

// standbyIds never close a dialogue even when they carry an mrn referencing
// its initiator min.
var standbyIds = map[string]bool{
	"DM2": true,
	"UM1": true,
	"UM2": true,
}

// IsStandby reports whether an element id is one of the STANDBY elements
// (DM2, UM1, UM2) that never close a dialogue.
func IsStandby(elementId string) bool { return standbyIds[elementId] }

// logicalAckIds are the elements the SDK recognizes as a logical
// acknowledgement rather than a substantive reply.
var logicalAckIds = map[string]bool{
	"DM100": true,
	"UM227": true,
}

// IsLogicalAckElementId reports whether id is a logical-ack element
// (DM100 downlink, UM227 uplink).
func IsLogicalAckElementId(id string) bool { return logicalAckIds[id] }

// EffectiveResponseAttribute computes the most-demanding response attribute
// across a message's elements, defaulting to WU when an element's id is not
// in the catalog or the message has no elements.
func (c *Catalog) EffectiveResponseAttribute(elements []MessageElement) ResponseAttribute {
	best := RespondWilcoUnable
	bestRank := responseAttributePrecedence[best]
	seen := false

	for _, el := range elements {
		attr := RespondWilcoUnable
		if def, ok := c.FindDefinition(el.Id); ok {
			attr = def.ResponseAttr
		}
		rank, ok := responseAttributePrecedence[attr]
		if !ok {
			rank = responseAttributePrecedence[RespondWilcoUnable]
		}
		if !seen || rank < bestRank {
			best, bestRank, seen = attr, rank, true
		}
	}
	return best
}

// NormalizeFreeText uppercases any FreeText argument whose catalog slot is
// marked free text, mutating elements in place before the server forwards
// the message.
func (c *Catalog) NormalizeFreeText(elements []MessageElement) {
	for i := range elements {
		def, ok := c.FindDefinition(elements[i].Id)
		if !ok {
			continue
		}
		for j := range elements[i].Args {
			if elements[i].Args[j].Kind != ArgFreeText {
				continue
			}
			if j < len(def.ArgTypes) && def.ArgTypes[j] == ArgFreeText {
				elements[i].Args[j].FreeText = strings.ToUpper(elements[i].Args[j].FreeText)
			}
		}
	}
}
