package elwb

import "encoding/binary"

// EncodeSecondSchedule serializes the 2-byte second-schedule frame sent
// after a contention slot: the new period in PeriodScale units, or 0 for
// "no change" (§4.4, §6).
func EncodeSecondSchedule(period uint16) [2]byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], period)
	return b
}

// DecodeSecondSchedule parses a second-schedule frame. ok is false if buf
// is shorter than 2 bytes.
func DecodeSecondSchedule(buf []byte) (period uint16, ok bool) {
	if len(buf) < 2 {
		return 0, false
	}
	return binary.LittleEndian.Uint16(buf[:2]), true
}
