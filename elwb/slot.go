package elwb

import "time"

// SlotTransport is the thin abstraction over the concurrent-flooding
// (Glossy) primitive that every slot runs on. The round engine never
// learns anything about the flooding mechanics; it only ever starts a
// slot, waits until the slot's deadline, stops it, and reads back the
// introspection fields below.
//
// Implementations are expected to be driven by exactly one slot at a time;
// the engine holds exclusive ownership of the transport's internal buffer
// for the slot's lifetime, returning it only after Stop.
type SlotTransport interface {
	// Send starts a flooding transmission as initiator. buf[:n] is the
	// payload. nTx bounds the number of retransmissions; withSync requests
	// that the flood carry a time reference; withRFCal requests a radio
	// calibration flood.
	Send(initiatorID uint16, buf []byte, n int, nTx int, withSync, withRFCal bool)

	// Recv starts as a relay/receiver. expectedLen is the payload length
	// the caller expects, or 0 if unknown (the schedule slot, whose length
	// varies with the compressed slot list, is the canonical "unknown"
	// case).
	Recv(expectedLen int, nTx int, withSync, withRFCal bool)

	// Stop ends the current slot; it must be called once the slot's
	// deadline has been reached, whether Send or Recv was used to start
	// it. Results become valid only after Stop returns.
	Stop()

	// Result returns the introspection fields captured by the most
	// recently stopped slot.
	Result() SlotResult
}

// SlotResult captures what the engine learns from one Glossy flood: whether
// anything was received, the payload, and signal/time-reference metadata.
type SlotResult struct {
	NRx             int           // number of successful receptions by this node
	NRxStarted      int           // number of receptions that at least started (channel activity)
	PayloadLen      int           // length of the received payload, if NRx > 0
	Payload         []byte        // the received payload (valid for PayloadLen bytes)
	RSSI            int           // signal strength of the first reception
	RelayCntFirstRx int           // relay-count (hop distance) of the first reception
	SNR             float64       // signal-to-noise ratio of the first reception
	TRefUpdated     bool          // true if a "with sync" receive observed any reception
	TRef            time.Duration // absolute HF time of the first reception, valid iff TRefUpdated
}
