package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBool(t *testing.T) {
	for _, value := range []string{"1", "y", "yes", "true", "on"} {
		assert.True(t, ParseBool(value), value)
	}
	for _, value := range []string{"0", "n", "no", "false", "off", "", "maybe", "TRUE"} {
		assert.False(t, ParseBool(value), value)
	}
}

func TestConvert(t *testing.T) {
	assert.Equal(t, 42, Convert[int]("42"))
	assert.Equal(t, -7, Convert[int]("-7"))
	assert.Equal(t, 0, Convert[int]("12abc"))
	assert.Equal(t, int8(0), Convert[int8]("300"))
	assert.Equal(t, uint32(255), Convert[uint32]("0xff"))
	assert.Equal(t, uint8(5), Convert[uint8]("0b101"))
	assert.Equal(t, uint16(0), Convert[uint16]("-1"))
	assert.InDelta(t, 21.5, Convert[float64]("21.5"), 0.0001)
	assert.InDelta(t, float32(0.25), Convert[float32]("0.25"), 0.0001)
	assert.Equal(t, "text", Convert[string]("text"))
	assert.True(t, Convert[bool]("on"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "true", Format(true))
	assert.Equal(t, "-3", Format(int16(-3)))
	assert.Equal(t, "65535", Format(uint16(65535)))
	assert.Equal(t, "21.500", Format(21.5))
	assert.Equal(t, "0.125", Format(float32(0.125)))
	assert.Equal(t, "x", Format("x"))
}

func TestTypedAccess(t *testing.T) {
	s, _ := newTestSettings(t, 256)

	require.NoError(t, SetValue(s, "relayPulse0", 1.5))
	require.NoError(t, SetValue(s, "relayBoot0", uint8(2)))
	require.NoError(t, SetValue(s, "mqttEnabled", true))

	assert.Equal(t, "1.500", s.GetString("relayPulse0", ""))
	assert.InDelta(t, 1.5, Get(s, "relayPulse0", 0.0), 0.0001)
	assert.Equal(t, uint8(2), Get(s, "relayBoot0", uint8(0)))
	assert.True(t, Get(s, "mqttEnabled", false))

	// default only applies when the key is absent
	assert.Equal(t, 1883, Get(s, "mqttPort", 1883))
	require.NoError(t, s.Set("mqttPort", "garbage"))
	assert.Equal(t, 0, Get(s, "mqttPort", 1883))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "relayBoot3", IndexedKey("relayBoot", 3).Value())
	assert.Equal(t, "hostname", PlainKey("hostname").Value())
	assert.Equal(t, "led0", IndexedKey("led", 0).String())
}
