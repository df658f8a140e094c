// Package elwb implements the round engine of an event-triggered Low-Power
// Wireless Bus (e-LWB): a many-to-one, time-synchronized TDMA protocol that
// runs on top of an opaque concurrent-flooding (Glossy) slot primitive.
//
// A single host node and many source nodes share a radio channel. Time is
// divided into rounds, each made up of a schedule broadcast, zero or more
// data slots, an optional contention slot, and an optional second schedule.
// The host computes each round's schedule from a pluggable policy (see
// package scheduler); sources track the schedule, stay synchronized via a
// small state machine, and move application data through bounded in/out
// packet queues.
//
// This package owns the round loop, the sync state machine, the schedule
// wire codec, and the packet queues. It treats the radio flooding primitive,
// the high/low frequency timers, and any external-memory backing store as
// external collaborators supplied through the Clock, SlotTransport and
// Storage interfaces.
package elwb
