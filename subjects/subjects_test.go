package subjects

import (
	"testing"

	"github.com/pluce/openlink/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectFormats(t *testing.T) {
	net := model.NetworkId("vatsim")

	assert.Equal(t, "openlink.v1.vatsim.outbox.AFR123", Outbox(net, "AFR123"))
	assert.Equal(t, "openlink.v1.vatsim.inbox.AFR123", Inbox(net, "AFR123"))
	assert.Equal(t, "openlink.v1.vatsim.outbox.>", OutboxWildcard(net))
	assert.Equal(t, "openlink.v1.vatsim.inbox.>", InboxWildcard(net))
	assert.Equal(t, "openlink-v1-vatsim-cpdlc-sessions", KVCpdlcSessions(net))
	assert.Equal(t, "openlink-v1-vatsim-station-registry", KVStationRegistry(net))
}

func TestParseOutboxSender(t *testing.T) {
	addr, ok := ParseOutboxSender(Outbox("vatsim", "AFR123"))
	require.True(t, ok)
	assert.Equal(t, model.NetworkAddress("AFR123"), addr)

	_, ok = ParseOutboxSender("openlink.v1.vatsim.inbox.AFR123")
	assert.False(t, ok)

	_, ok = ParseOutboxSender("not.a.valid.subject")
	assert.False(t, ok)
}

func TestParseInboxRecipient(t *testing.T) {
	addr, ok := ParseInboxRecipient(Inbox("vatsim", "S001"))
	require.True(t, ok)
	assert.Equal(t, model.NetworkAddress("S001"), addr)
}
