// Package subjects is the single source of truth for OpenLink's pub/sub
// subject grammar and JetStream KV bucket naming. Every component that
// touches the broker does so through these functions rather than formatting
// subject strings itself.
package subjects

import (
	"fmt"
	"strings"

	"github.com/pluce/openlink/model"
)

const version = "v1"

// Outbox is the subject a participant publishes on.
func Outbox(network model.NetworkId, address model.NetworkAddress) string {
	return fmt.Sprintf("openlink.%s.%s.outbox.%s", version, network, address)
}

// Inbox is the subject a participant subscribes to for messages addressed
// to it.
func Inbox(network model.NetworkId, address model.NetworkAddress) string {
	return fmt.Sprintf("openlink.%s.%s.inbox.%s", version, network, address)
}

// OutboxWildcard is the server's subscription subject for every publisher
// on a network.
func OutboxWildcard(network model.NetworkId) string {
	return fmt.Sprintf("openlink.%s.%s.outbox.>", version, network)
}

// InboxWildcard is the server's publish-capability subject for delivering
// to any participant on a network.
func InboxWildcard(network model.NetworkId) string {
	return fmt.Sprintf("openlink.%s.%s.inbox.>", version, network)
}

// KVCpdlcSessions names the JetStream KV bucket backing the session store.
func KVCpdlcSessions(network model.NetworkId) string {
	return fmt.Sprintf("openlink-%s-%s-cpdlc-sessions", version, network)
}

// KVStationRegistry names the JetStream KV bucket backing the station
// registry.
func KVStationRegistry(network model.NetworkId) string {
	return fmt.Sprintf("openlink-%s-%s-station-registry", version, network)
}

// ParseOutboxSender extracts the publisher's address from a concrete
// (non-wildcard) outbox subject, e.g.
// "openlink.v1.vatsim.outbox.AFR123" -> "AFR123". It returns false if
// subject does not match the outbox grammar.
func ParseOutboxSender(subject string) (model.NetworkAddress, bool) {
	return parseDirectionedAddress(subject, "outbox")
}

// ParseInboxRecipient extracts the recipient's address from a concrete
// inbox subject. It returns false if subject does not match the inbox
// grammar.
func ParseInboxRecipient(subject string) (model.NetworkAddress, bool) {
	return parseDirectionedAddress(subject, "inbox")
}

func parseDirectionedAddress(subject, direction string) (model.NetworkAddress, bool) {
	parts := strings.Split(subject, ".")
	if len(parts) != 5 {
		return "", false
	}
	if parts[0] != "openlink" || parts[1] != version || parts[3] != direction {
		return "", false
	}
	return model.NetworkAddress(parts[4]), true
}
