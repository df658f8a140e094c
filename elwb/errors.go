package elwb

import "errors"

// Sentinel errors for the recoverable conditions enumerated in the error
// handling design: queue full/empty, a busy external-memory worker, a
// malformed ingest frame, and an invalid schedule produced by a policy.
// None of these are fatal; callers observe them via return value and the
// accompanying Stats counters, and retry on the next round.
var (
	// ErrQueueFull is returned by Put when the queue is at capacity. The
	// caller's drop counter (RxbufDrop/TxbufDrop) is incremented exactly
	// once per dropped frame.
	ErrQueueFull = errors.New("elwb: queue full")

	// ErrQueueEmpty is returned by Get when the queue has nothing pending.
	ErrQueueEmpty = errors.New("elwb: queue empty")

	// ErrXmemBusy is returned by XmemWorker.Submit (and so by an
	// ExternalQueue's Put/Get) when a second operation is attempted while
	// one is still outstanding; only one operation may be in flight at a
	// time.
	ErrXmemBusy = errors.New("elwb: external memory worker busy")

	// ErrBadFrame is returned by a queue's Put when the frame has length 0
	// or exceeds MaxDataPktLen. Received frames of such length are dropped
	// and logged by the engine rather than returned as an error.
	ErrBadFrame = errors.New("elwb: malformed frame")

	// ErrBadSchedule is returned by the schedule codec when a buffer is
	// too short to contain a header, or a decompressed slot count would
	// exceed MaxDataSlots.
	ErrBadSchedule = errors.New("elwb: invalid schedule")

	// ErrStreamTableFull is returned by a scheduler policy's OnRequest
	// when an unknown node's request would exceed MaxNStreams.
	ErrStreamTableFull = errors.New("elwb: stream table full")

	// ErrEngineNotRunning is returned by XmemWorker.Submit (and so by an
	// ExternalQueue's Put/Get) once the worker has been closed.
	ErrEngineNotRunning = errors.New("elwb: engine not running")
)
