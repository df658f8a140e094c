package elwb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleEncodeParseRoundTrip(t *testing.T) {
	cases := []Schedule{
		{Time: 1, Period: 200, Slots: []uint16{}},
		{Time: 42, Period: 200, Cont: true},
		{Time: 42, Period: 400, Slots: []uint16{1, 2, 3}, Sack: true},
		{Time: 42, Period: 400, Slots: []uint16{5, 1, 2, 3, 9}, Dack: true, Cont: true},
	}
	for _, compress := range []bool{false, true} {
		for _, want := range cases {
			buf := make([]byte, MaxPktLen)
			n, err := want.Encode(buf, compress)
			require.NoError(t, err)
			got, err := Parse(buf[:n])
			require.NoError(t, err)
			assert.Equal(t, want.Time, got.Time)
			assert.Equal(t, want.Period, got.Period)
			assert.Equal(t, want.Cont, got.Cont)
			assert.Equal(t, want.Dack, got.Dack)
			assert.Equal(t, want.Sack, got.Sack)
			assert.ElementsMatch(t, want.Slots, got.Slots)
		}
	}
}

func TestScheduleEncodeUncompressedLength(t *testing.T) {
	s := Schedule{Time: 1, Period: 100, Slots: []uint16{1, 2, 3, 4}}
	buf := make([]byte, MaxPktLen)
	n, err := s.Encode(buf, false)
	require.NoError(t, err)
	assert.Equal(t, s.EncodedLen(), n)
}

func TestScheduleCompressionShrinksConsecutiveRun(t *testing.T) {
	s := Schedule{Time: 1, Period: 100, Slots: []uint16{10, 11, 12, 13, 14}}
	buf := make([]byte, MaxPktLen)
	n, err := s.Encode(buf, true)
	require.NoError(t, err)
	assert.Less(t, n, s.EncodedLen())
}

func TestScheduleEncodeRejectsTooManySlots(t *testing.T) {
	slots := make([]uint16, MaxDataSlots+1)
	s := Schedule{Slots: slots}
	buf := make([]byte, MaxPktLen)
	_, err := s.Encode(buf, false)
	assert.ErrorIs(t, err, ErrBadSchedule)
}

func TestScheduleEncodeRejectsShortBuffer(t *testing.T) {
	s := Schedule{Slots: []uint16{1, 2, 3}}
	buf := make([]byte, HeaderLen)
	_, err := s.Encode(buf, false)
	assert.ErrorIs(t, err, ErrBadSchedule)
}

func TestParseRejectsShortBuffer(t *testing.T) {
	_, err := Parse([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrBadSchedule)
}

func TestParseRejectsTruncatedSlotList(t *testing.T) {
	buf := make([]byte, HeaderLen+2)
	buf[6] = 2 // n_slots = 2, but only one uint16 follows
	_, err := Parse(buf)
	assert.ErrorIs(t, err, ErrBadSchedule)
}

func TestDurationPeriodRoundTrip(t *testing.T) {
	d := 2 * time.Second
	p := DurationToPeriod(d)
	assert.Equal(t, uint16(200), p)
	assert.Equal(t, d, PeriodToDuration(p))
}

func TestSecondScheduleRoundTrip(t *testing.T) {
	b := EncodeSecondSchedule(150)
	period, ok := DecodeSecondSchedule(b[:])
	require.True(t, ok)
	assert.Equal(t, uint16(150), period)

	_, ok = DecodeSecondSchedule([]byte{1})
	assert.False(t, ok)
}
