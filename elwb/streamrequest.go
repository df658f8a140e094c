package elwb

// StreamRequest is the minimal request a source places in its assigned
// contention or request slot: an outstanding-frame count and, for the
// AE policy, a (node, stream) pair (§3, §6).
type StreamRequest struct {
	NodeID      uint16
	Outstanding uint8
	StreamID    uint8 // AE-format only
	FirstEver   bool  // set when this request carries the node id (2-byte form)
}

// EncodeStreamRequest serializes a request in the eLWB/static/AE-compatible
// minimal form: one byte of outstanding count, or two bytes
// (outstanding, node-id) the first time a given source ever contends,
// matching §6's "1 byte (outstanding-count only) or 2 bytes
// (first-ever: {outstanding, self_node_id})".
func EncodeStreamRequest(outstanding uint8, selfID uint16, firstEver bool) []byte {
	if !firstEver {
		return []byte{outstanding}
	}
	return []byte{outstanding, byte(selfID)}
}

// DecodeStreamRequest parses a request frame received in a contention or
// request slot from senderID (the flooding primitive, not the payload,
// identifies who physically sent it in this protocol — there is no sender
// address inside a 1-byte request). buf must be 1 or 2 bytes.
func DecodeStreamRequest(senderID uint16, buf []byte) (StreamRequest, bool) {
	switch len(buf) {
	case 1:
		return StreamRequest{NodeID: senderID, Outstanding: buf[0]}, true
	case 2:
		return StreamRequest{NodeID: uint16(buf[1]), Outstanding: buf[0], FirstEver: true}, true
	default:
		return StreamRequest{}, false
	}
}

// EncodeAEStreamRequest serializes the AE policy's 2-byte
// {node_id, stream_id} request format.
func EncodeAEStreamRequest(nodeID uint16, streamID uint8) []byte {
	return []byte{byte(nodeID), streamID}
}

// DecodeAEStreamRequest parses a 2-byte AE-format request.
func DecodeAEStreamRequest(buf []byte) (StreamRequest, bool) {
	if len(buf) != 2 {
		return StreamRequest{}, false
	}
	return StreamRequest{NodeID: uint16(buf[0]), StreamID: buf[1]}, true
}
