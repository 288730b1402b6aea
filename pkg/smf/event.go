// Package smf decodes Standard MIDI Files into flat, fixed-layout event
// buffers and provides the post-processing transforms applied to them:
// tick to real-time conversion, track merging, note durations and note-off
// removal.
package smf

import "fmt"

// EventType is the high nibble of a channel voice status byte.
type EventType uint8

const (
	NoteOff        EventType = 0x80
	NoteOn         EventType = 0x90
	PolyAftertouch EventType = 0xA0
	Control        EventType = 0xB0
	Program        EventType = 0xC0 // consumed by the decoder, never emitted
	ChanAftertouch EventType = 0xD0
	PitchBend      EventType = 0xE0
)

// Status bytes outside the channel voice range.
const (
	statusSysexBegin   = 0xF0
	statusQuarterFrame = 0xF1
	statusSongPosition = 0xF2
	statusSongSelect   = 0xF3
	statusSysexEnd     = 0xF7
	statusRealTime     = 0xF8
	statusMeta         = 0xFF
)

// Meta event types the decoder acts on.
const (
	MetaTrackName  = 0x03
	MetaEndOfTrack = 0x2F
	MetaSetTempo   = 0x51
)

func (t EventType) String() string {
	switch t {
	case NoteOff:
		return "NOTE_OFF"
	case NoteOn:
		return "NOTE_ON"
	case PolyAftertouch:
		return "POLY_AFTERTOUCH"
	case Control:
		return "CONTROL"
	case Program:
		return "PROGRAM"
	case ChanAftertouch:
		return "CHAN_AFTERTOUCH"
	case PitchBend:
		return "PITCH_BEND"
	default:
		return fmt.Sprintf("EventType(0x%02X)", uint8(t))
	}
}

// Event is one decoded channel event. The layout is fixed at 16 bytes with no
// implicit padding so a []Event can be reinterpreted as a flat byte array.
//
// Time is a delta from the previous event in the same track, in ticks until
// the file is converted to real time, microseconds afterwards. Duration uses
// the same unit and stays 0 until durations are computed.
type Event struct {
	Time     uint32
	Duration uint32
	Program  uint8
	Track    uint8
	Type     EventType
	Channel  uint8
	Key      uint8
	Value    uint8
	_        [2]uint8
}

// EventSize is the in-memory size of Event.
const EventSize = 16

// IsNote reports whether the event is a NOTE_ON or NOTE_OFF.
func (e Event) IsNote() bool {
	return e.Type == NoteOn || e.Type == NoteOff
}

func (e Event) String() string {
	return fmt.Sprintf("%d, %d, %s, ch=%d, key=%d, value=%d, program=%d, duration=%d",
		e.Time, e.Track, e.Type, e.Channel, e.Key, e.Value, e.Program, e.Duration)
}

// Track is an owned, ordered sequence of events decoded from one MTrk chunk,
// or the single result of MergeTracks.
type Track struct {
	Events []Event
	// Name holds the raw bytes of the first track name meta event, if any.
	// The encoding is whatever the authoring tool used.
	Name []byte
}

// Len returns the number of events.
func (t *Track) Len() int {
	return len(t.Events)
}

// AbsoluteTimes returns the running sum of event deltas.
func (t *Track) AbsoluteTimes() []uint64 {
	out := make([]uint64, len(t.Events))
	var now uint64
	for i, e := range t.Events {
		now += uint64(e.Time)
		out[i] = now
	}
	return out
}
