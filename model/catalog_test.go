package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveResponseAttributePrecedence(t *testing.T) {
	cat := DefaultCatalog()

	attr := cat.EffectiveResponseAttribute([]MessageElement{
		{Id: "DM67"}, // R
		{Id: "UM20"}, // WU
	})
	assert.Equal(t, RespondWilcoUnable, attr)

	attr = cat.EffectiveResponseAttribute([]MessageElement{{Id: "DM67"}})
	assert.Equal(t, RespondRoger, attr)

	attr = cat.EffectiveResponseAttribute(nil)
	assert.Equal(t, RespondWilcoUnable, attr)
}

func TestIsStandbyAndLogicalAck(t *testing.T) {
	assert.True(t, IsStandby("DM2"))
	assert.True(t, IsStandby("UM1"))
	assert.True(t, IsStandby("UM2"))
	assert.False(t, IsStandby("DM0"))

	assert.True(t, IsLogicalAckElementId("DM100"))
	assert.True(t, IsLogicalAckElementId("UM227"))
	assert.False(t, IsLogicalAckElementId("DM0"))
}

func TestNormalizeFreeText(t *testing.T) {
	cat := DefaultCatalog()
	elements := []MessageElement{
		{Id: "UM169", Args: []CpdlcArgument{{Kind: ArgFreeText, FreeText: "expect delay"}}},
	}
	cat.NormalizeFreeText(elements)
	assert.Equal(t, "EXPECT DELAY", elements[0].Args[0].FreeText)
}

func TestFindDefinition(t *testing.T) {
	cat := DefaultCatalog()
	def, ok := cat.FindDefinition("UM20")
	require.True(t, ok)
	assert.Equal(t, Uplink, def.Direction)

	_, ok = cat.FindDefinition("NOPE")
	assert.False(t, ok)
}
