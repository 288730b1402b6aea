package smf

import (
	"encoding/binary"
	"fmt"
)

// Options controls decoding and the transforms applied by Load.
type Options struct {
	// NotesOnly keeps NOTE_ON/NOTE_OFF and drops every other channel event.
	NotesOnly bool
	// DefaultProgram is each channel's program before any program change.
	DefaultProgram uint8

	MergeTracks       bool
	ConvertToRealTime bool
	ComputeDurations  bool
	RemoveNoteOff     bool
}

// DefaultOptions returns the options used when the caller has no preference:
// merged, real-time, notes only.
func DefaultOptions() Options {
	return Options{
		NotesOnly:         true,
		MergeTracks:       true,
		ConvertToRealTime: true,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.DefaultProgram > 0x7F {
		return fmt.Errorf("%w: default program %d", ErrInvalidDataByte, o.DefaultProgram)
	}
	return nil
}

// File is a decoded Standard MIDI File.
//
// Parse builds it; the transform methods then mutate it in place and return
// the same *File so calls can be chained. The transforms do not enforce an
// order. RemoveNoteOff before ComputeDurations leaves every duration at 0.
type File struct {
	Format   uint16
	Division Division
	Tempos   TempoMap
	Tracks   []Track

	unit TimeUnit
}

// TicksPerBeat returns the metrical resolution, or 0 for SMPTE files.
func (f *File) TicksPerBeat() uint16 {
	return f.Division.TicksPerBeat()
}

// Unit returns the unit of event times and durations.
func (f *File) Unit() TimeUnit {
	return f.unit
}

// EventCount returns the number of events across all tracks.
func (f *File) EventCount() int {
	n := 0
	for i := range f.Tracks {
		n += len(f.Tracks[i].Events)
	}
	return n
}

// Parse decodes a complete SMF held in memory. It either succeeds or returns
// a *DecodeError and no File. The returned File does not reference data.
func Parse(data []byte, opts Options) (*File, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	c := newCursor(data)
	head, err := readChunk(c, TagHeader, -1)
	if err != nil {
		return nil, err
	}
	if len(head) < 6 {
		return nil, newDecodeError(ErrInvalidHeader, TagHeader, -1, 0,
			"header payload is %d bytes, need 6", len(head))
	}

	f := &File{
		Format:   binary.BigEndian.Uint16(head[0:]),
		Division: Division(binary.BigEndian.Uint16(head[4:])),
		unit:     TimeTicks,
	}
	if !f.Division.valid() {
		return nil, newDecodeError(ErrInvalidHeader, TagHeader, -1, 4,
			"unusable division 0x%04X", uint16(f.Division))
	}

	nTracks := int(binary.BigEndian.Uint16(head[2:]))
	f.Tracks = make([]Track, 0, nTracks)
	for i := 0; i < nTracks; i++ {
		payload, err := readChunk(c, TagTrack, i)
		if err != nil {
			return nil, err
		}
		track, err := decodeTrack(payload, i, &f.Tempos, opts)
		if err != nil {
			return nil, err
		}
		f.Tracks = append(f.Tracks, track)
	}

	f.Tempos.sortStable()
	return f, nil
}

// Load parses data and applies the transforms selected in opts in the order
// merge, real time, durations, note-off removal.
func Load(data []byte, opts Options) (*File, error) {
	f, err := Parse(data, opts)
	if err != nil {
		return nil, err
	}
	if opts.MergeTracks {
		f.MergeTracks()
	}
	if opts.ConvertToRealTime {
		f.ConvertToRealTime()
	}
	if opts.ComputeDurations {
		f.ComputeDurations()
	}
	if opts.RemoveNoteOff {
		f.RemoveNoteOff()
	}
	return f, nil
}

// MergeTracks replaces all tracks with one chronologically merged track.
// Events keep their original Track index.
func (f *File) MergeTracks() *File {
	f.Tracks = []Track{mergeTracks(f.Tracks)}
	return f
}

// ConvertToRealTime rewrites event deltas from ticks to microseconds using
// the tempo map. Calling it again is a no-op.
func (f *File) ConvertToRealTime() *File {
	if f.unit == TimeMicroseconds {
		return f
	}
	for i := range f.Tracks {
		f.Tracks[i].convertToMicroseconds(f.Division, f.Tempos)
	}
	f.unit = TimeMicroseconds
	return f
}

// ComputeDurations assigns every NOTE_ON the time until its next matching
// NOTE_OFF, per track.
func (f *File) ComputeDurations() *File {
	for i := range f.Tracks {
		f.Tracks[i].computeDurations()
	}
	return f
}

// RemoveNoteOff drops NOTE_OFF events from every track. Call it after
// ComputeDurations.
func (f *File) RemoveNoteOff() *File {
	for i := range f.Tracks {
		f.Tracks[i].removeNoteOff()
	}
	return f
}
