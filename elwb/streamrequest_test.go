package elwb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamRequestRoundTrip(t *testing.T) {
	buf := EncodeStreamRequest(5, 0, false)
	require.Len(t, buf, 1)
	req, ok := DecodeStreamRequest(3, buf)
	require.True(t, ok)
	assert.Equal(t, uint16(3), req.NodeID)
	assert.Equal(t, uint8(5), req.Outstanding)
	assert.False(t, req.FirstEver)
}

func TestStreamRequestFirstEverCarriesNodeID(t *testing.T) {
	buf := EncodeStreamRequest(2, 17, true)
	require.Len(t, buf, 2)
	req, ok := DecodeStreamRequest(0, buf)
	require.True(t, ok)
	assert.Equal(t, uint16(17), req.NodeID)
	assert.Equal(t, uint8(2), req.Outstanding)
	assert.True(t, req.FirstEver)
}

func TestDecodeStreamRequestRejectsBadLength(t *testing.T) {
	_, ok := DecodeStreamRequest(0, []byte{1, 2, 3})
	assert.False(t, ok)
	_, ok = DecodeStreamRequest(0, nil)
	assert.False(t, ok)
}

func TestAEStreamRequestRoundTrip(t *testing.T) {
	buf := EncodeAEStreamRequest(12, 9)
	req, ok := DecodeAEStreamRequest(buf)
	require.True(t, ok)
	assert.Equal(t, uint16(12), req.NodeID)
	assert.Equal(t, uint8(9), req.StreamID)
}
