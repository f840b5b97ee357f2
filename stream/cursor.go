package stream

import (
	"fmt"
	"slices"
	"sync"

	"github.com/pkg/errors"
)

// Cursor tracks per-stream state while records are processed. Streams are
// named by the caller, usually after the file or connection they come from.
// A Cursor is safe for concurrent use.
type Cursor struct {
	mu sync.RWMutex

	// Per-stream state
	streams map[string]*StreamState
}

// StreamState holds state for a single stream.
type StreamState struct {
	Name    string
	LastSeq uint64 // Last record position seen
	Records uint64 // Well-formed records processed
	Skipped uint64 // Positions skipped over, i.e. malformed records
	Bytes   int64  // Payload bytes processed
	CRC     uint32 // Running CRC-32 over all payloads, in order
	Final   bool   // Whether the stream has ended
}

// CRCHex returns the running CRC as eight lowercase hex digits.
func (s StreamState) CRCHex() string {
	return fmt.Sprintf("%08x", s.CRC)
}

// NewCursor creates a new cursor.
func NewCursor() *Cursor {
	return &Cursor{
		streams: make(map[string]*StreamState),
	}
}

// get returns the state for a stream, creating it if needed. mu must be held.
func (c *Cursor) get(name string) *StreamState {
	state, ok := c.streams[name]
	if !ok {
		state = &StreamState{Name: name}
		c.streams[name] = state
	}
	return state
}

// Get returns a snapshot of the state for a stream, creating it if needed.
func (c *Cursor) Get(name string) StreamState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.get(name)
}

// Lookup returns a snapshot of the state for a stream without creating it.
func (c *Cursor) Lookup(name string) (StreamState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	state, ok := c.streams[name]
	if !ok {
		return StreamState{}, false
	}
	return *state, true
}

// Delete removes state for a stream.
func (c *Cursor) Delete(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.streams, name)
}

// Names returns all tracked stream names in order.
func (c *Cursor) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.streams))
	for name := range c.streams {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Process records a well-formed record of a stream.
// Returns an error if:
//   - The record position is not monotonic (duplicate or reordered)
//   - The record CRC does not match its data
//   - The stream has already ended
//
// Positions skipped over count as malformed records.
func (c *Cursor) Process(name string, rec *Record) error {
	if err := VerifyCRC(rec); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.get(name)

	if state.Final {
		return errors.Errorf("stream: %s: record %d after end of stream", name, rec.Seq)
	}
	if rec.Seq <= state.LastSeq {
		return &SequenceError{Stream: name, Last: state.LastSeq, Got: rec.Seq}
	}

	state.Skipped += rec.Seq - state.LastSeq - 1
	state.LastSeq = rec.Seq
	state.Records++
	state.Bytes += int64(len(rec.Data))
	state.CRC = UpdateCRC(state.CRC, rec.Data)
	return nil
}

// Finish marks a stream as ended. seen is the number of record positions the
// reader consumed, so malformed records at the tail are counted.
func (c *Cursor) Finish(name string, seen uint64) StreamState {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.get(name)
	if seen > state.LastSeq {
		state.Skipped += seen - state.LastSeq
		state.LastSeq = seen
	}
	state.Final = true
	return *state
}

// Verify checks the running CRC of a stream against an expected value, such
// as Writer.CRC on the producing side.
func (c *Cursor) Verify(name string, expected uint32) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	state, ok := c.streams[name]
	if !ok {
		return errors.Errorf("stream: %s: unknown stream", name)
	}
	if state.CRC != expected {
		return &CRCMismatchError{Expected: expected, Got: state.CRC}
	}
	return nil
}
