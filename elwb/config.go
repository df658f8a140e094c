package elwb

import "time"

// Config holds the tunables enumerated in the external interfaces section:
// slot/queue sizing, the timing constants that govern guard intervals and
// slot durations, and the behavioural switches (sink diversion, schedule
// compression, external-memory backing).
//
// Config is assembled via Option values so that zero-value fields can carry
// sensible defaults (see resolveConfig), the same pattern the teacher uses
// for its Loop construction options.
type Config struct {
	InSize  int // depth of the inbound queue
	OutSize int // depth of the outbound queue

	TSched       time.Duration // nominal schedule-slot duration
	TData        time.Duration // data-slot duration
	TCont        time.Duration // contention/request-slot duration
	TGap         time.Duration // inter-slot gap
	TGuard       time.Duration // guard interval, SYNCED
	TGuard1      time.Duration // guard interval, UNSYNCED
	TGuard2      time.Duration // guard interval, UNSYNCED2
	TPreprocess  time.Duration // app preprocess window
	TRefOfs      time.Duration // radio/MAC time-reference compensation
	TSilent      time.Duration // bootstrap silence threshold before deep sleep
	TDeepsleep   time.Duration // bootstrap deep-sleep duration
	TReqRound    time.Duration // AE policy: request-round period

	TxCntSched int // Glossy retransmission count for schedule floods
	TxCntData  int // Glossy retransmission count for data floods
	MaxHops    int // Glossy max relay hop count

	SchedPeriodIdle time.Duration // base idle-round period

	HostID uint16 // the host's node id (conventionally 0)

	// WriteToSink is stored but not read by either engine: received frames
	// go to the inbound queue unless a SinkFunc is installed, and no Option
	// installs one.
	WriteToSink   bool
	SchedCompress bool // run-length compress the schedule's slot list

	// UseExternalMemory backs the outbound queue with an XmemWorker over
	// ExternalStorage instead of RAMQueue, per §4.3 mode 2 / §9's design
	// note that the outbound queue is the one safe to stage asynchronously
	// between rounds. It is a no-op (falls back to RAMQueue) if
	// ExternalStorage is nil.
	UseExternalMemory bool
	ExternalStorage   Storage

	Logger *Logger // structured logger; defaults to a stumpy-backed stderr logger
	Clock  Clock   // HF/LF timebase; defaults to a real-time implementation
}

// Option configures a Config. Following the teacher's functional-option
// convention (options.go: LoopOption/applyLoop), each Option is a closure
// adapted to the interface by the optionFunc type, so additional validation
// can be added later without changing the exported signature.
type Option interface {
	apply(*Config)
}

type optionFunc func(*Config)

func (f optionFunc) apply(c *Config) { f(c) }

func WithQueueSizes(in, out int) Option {
	return optionFunc(func(c *Config) { c.InSize, c.OutSize = in, out })
}

func WithLogger(l *Logger) Option {
	return optionFunc(func(c *Config) { c.Logger = l })
}

func WithClock(clk Clock) Option {
	return optionFunc(func(c *Config) { c.Clock = clk })
}

func WithWriteToSink(enabled bool) Option {
	return optionFunc(func(c *Config) { c.WriteToSink = enabled })
}

func WithScheduleCompression(enabled bool) Option {
	return optionFunc(func(c *Config) { c.SchedCompress = enabled })
}

// WithExternalMemory backs the outbound queue with an ExternalQueue over
// storage instead of the default RAMQueue (§4.3 mode 2).
func WithExternalMemory(storage Storage) Option {
	return optionFunc(func(c *Config) {
		c.UseExternalMemory = true
		c.ExternalStorage = storage
	})
}

func WithHostID(id uint16) Option {
	return optionFunc(func(c *Config) { c.HostID = id })
}

// DefaultConfig returns the tunables from a typical e-LWB deployment,
// expressed in the engine's native units (durations instead of raw ticks).
func DefaultConfig() Config {
	return Config{
		InSize:  32,
		OutSize: 32,

		TSched:      4 * time.Millisecond,
		TData:       4 * time.Millisecond,
		TCont:       4 * time.Millisecond,
		TGap:        2 * time.Millisecond,
		TGuard:      1 * time.Millisecond,
		TGuard1:     2 * time.Millisecond,
		TGuard2:     4 * time.Millisecond,
		TPreprocess: 10 * time.Millisecond,
		TRefOfs:     2 * time.Millisecond,
		TSilent:     10 * time.Second,
		TDeepsleep:  60 * time.Second,
		TReqRound:   200 * time.Millisecond,

		TxCntSched: 3,
		TxCntData:  2,
		MaxHops:    15,

		SchedPeriodIdle: 2 * time.Second,

		HostID: HostID,

		SchedCompress: true,
	}
}

// NewConfig builds a Config from DefaultConfig, applying opts in order.
func NewConfig(opts ...Option) Config {
	return resolveConfig(opts)
}

// resolveConfig applies opts over DefaultConfig and fills in a default
// logger/clock when none was supplied.
func resolveConfig(opts []Option) Config {
	c := DefaultConfig()
	for _, o := range opts {
		if o == nil {
			continue
		}
		o.apply(&c)
	}
	if c.Logger == nil {
		c.Logger = NewDefaultLogger()
	}
	if c.Clock == nil {
		c.Clock = NewRealClock()
	}
	return c
}
