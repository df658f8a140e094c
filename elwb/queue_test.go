package elwb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRAMQueueFIFOOrder(t *testing.T) {
	q := NewRAMQueue(4)
	require.NoError(t, q.Put([]byte("a")))
	require.NoError(t, q.Put([]byte("bb")))
	require.NoError(t, q.Put([]byte("ccc")))

	f, err := q.Get()
	require.NoError(t, err)
	assert.Equal(t, "a", string(f.Bytes()))

	f, err = q.Get()
	require.NoError(t, err)
	assert.Equal(t, "bb", string(f.Bytes()))
}

func TestRAMQueueFullAndEmpty(t *testing.T) {
	q := NewRAMQueue(2)
	require.NoError(t, q.Put([]byte("a")))
	require.NoError(t, q.Put([]byte("b")))
	assert.ErrorIs(t, q.Put([]byte("c")), ErrQueueFull)
	assert.Equal(t, uint64(1), q.Dropped())

	_, err := q.Get()
	require.NoError(t, err)
	_, err = q.Get()
	require.NoError(t, err)
	_, err = q.Get()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestRAMQueuePutRejectsBadFrame(t *testing.T) {
	q := NewRAMQueue(2)
	assert.ErrorIs(t, q.Put(nil), ErrBadFrame)
	assert.ErrorIs(t, q.Put(make([]byte, MaxDataPktLen+1)), ErrBadFrame)
}

func TestInboundRingAttributesSender(t *testing.T) {
	r := newInboundRing(4)
	assert.True(t, r.Push(inboundEntry{sender: 7, frame: NewFrame([]byte("x"))}))
	assert.True(t, r.Push(inboundEntry{sender: 9, frame: NewFrame([]byte("y"))}))

	e, ok := r.Pop()
	require.True(t, ok)
	assert.Equal(t, uint16(7), e.sender)
	assert.Equal(t, "x", string(e.frame.Bytes()))

	e, ok = r.Pop()
	require.True(t, ok)
	assert.Equal(t, uint16(9), e.sender)

	_, ok = r.Pop()
	assert.False(t, ok)
}

func TestInboundRingRoundsUpCapacityAndRejectsOverflow(t *testing.T) {
	r := newInboundRing(3)
	assert.Equal(t, 4, r.Cap())
	for i := 0; i < 4; i++ {
		assert.True(t, r.Push(inboundEntry{sender: uint16(i)}))
	}
	assert.False(t, r.Push(inboundEntry{sender: 99}))
}
