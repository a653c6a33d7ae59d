package sdk

import "github.com/pluce/openlink/model"

// IsLogicalAckElementId reports whether id is a logical-ack element
// (DM100 downlink, UM227 uplink). Pure function, identical across every
// client binding.
func IsLogicalAckElementId(id string) bool { return model.IsLogicalAckElementId(id) }

// MessageContainsLogicalAck reports whether any element of the message is a
// logical-ack element.
func MessageContainsLogicalAck(elements []model.MessageElement) bool {
	for _, e := range elements {
		if IsLogicalAckElementId(e.Id) {
			return true
		}
	}
	return false
}

// ShouldAutoSendLogicalAck reports whether the client runtime should
// transmit an automatic logical acknowledgement for an inbound message: true
// iff min > 0 and the message carries no logical-ack element of its own.
func ShouldAutoSendLogicalAck(elements []model.MessageElement, min int) bool {
	return min > 0 && !MessageContainsLogicalAck(elements)
}

// ClosesDialogueResponseElements reports whether a message's elements would
// close the dialogue they reply to: true unless at least one element is a
// STANDBY id (DM2, UM1, UM2), which always leaves the dialogue open
// regardless of the other elements present.
func ClosesDialogueResponseElements(elements []model.MessageElement) bool {
	for _, e := range elements {
		if model.IsStandby(e.Id) {
			return false
		}
	}
	return true
}

// ShortResponseIntent is one candidate short reply a client UI can offer the
// pilot/controller for a received message, identified by a human label plus
// the uplink and downlink catalog element ids it would send (a station-side
// client sends the uplink id, an aircraft-side client the downlink id; both
// name the same semantic reply).
type ShortResponseIntent struct {
	Label      string
	UplinkId   string
	DownlinkId string
}

// responseIntents maps an effective response attribute to the short-reply
// options a client should present. Y and N require a substantive reply the
// catalog doesn't template generically, so they carry no canned intents;
// NE requires none by definition.
var responseIntents = map[model.ResponseAttribute][]ShortResponseIntent{
	model.RespondWilcoUnable:    {{"WILCO", "UM0", "DM0"}, {"UNABLE", "UM1", "DM1"}, {"STANDBY", "UM2", "DM2"}},
	model.RespondAffirmNegative: {{"ROGER", "UM3", "DM3"}, {"UNABLE", "UM1", "DM1"}},
	model.RespondRoger:          {{"ROGER", "UM3", "DM3"}},
}

// ResponseAttrToIntents returns the canned short-reply intents for an
// effective response attribute.
func ResponseAttrToIntents(attr model.ResponseAttribute) []ShortResponseIntent {
	return responseIntents[attr]
}

// CatalogResolver looks up the effective response attribute of a message's
// elements; model.Catalog satisfies this via EffectiveResponseAttribute.
type CatalogResolver interface {
	EffectiveResponseAttribute(elements []model.MessageElement) model.ResponseAttribute
}

// ChooseShortResponseIntentsWithResolver computes the effective response
// attribute across elements using resolver and returns the matching
// short-reply intents. Total function: every input yields a (possibly
// empty) slice, never an error.
func ChooseShortResponseIntentsWithResolver(elements []model.MessageElement, resolver CatalogResolver) []ShortResponseIntent {
	attr := resolver.EffectiveResponseAttribute(elements)
	return ResponseAttrToIntents(attr)
}

// ChooseShortResponseIntents is ChooseShortResponseIntentsWithResolver using
// the built-in default catalog.
func ChooseShortResponseIntents(elements []model.MessageElement) []ShortResponseIntent {
	return ChooseShortResponseIntentsWithResolver(elements, model.DefaultCatalog())
}

// DownlinkIds extracts the downlink element ids a set of intents would
// send, in order, for logging or test assertions.
func DownlinkIds(intents []ShortResponseIntent) []string {
	ids := make([]string, len(intents))
	for i, it := range intents {
		ids[i] = it.DownlinkId
	}
	return ids
}

// UplinkIds extracts the uplink element ids a set of intents would send, in
// order, for logging or test assertions.
func UplinkIds(intents []ShortResponseIntent) []string {
	ids := make([]string, len(intents))
	for i, it := range intents {
		ids[i] = it.UplinkId
	}
	return ids
}
