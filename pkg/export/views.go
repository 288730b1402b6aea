// Package export writes decoded MIDI files in array form for numeric tools.
//
// Events and tempos are stored as fixed-size records, so a slice of them can
// be handed out as raw bytes without copying. The .npy files describe the
// same record layout to NumPy.
package export

import (
	"unsafe"

	"github.com/zurustar/densemidi/pkg/smf"
)

// TempoSize is the size of one smf.Tempo record in bytes.
const TempoSize = int(unsafe.Sizeof(smf.Tempo{}))

// EventBytes returns the memory of events as bytes, EventSize per event.
// The result aliases events and is only valid while events is.
func EventBytes(events []smf.Event) []byte {
	if len(events) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&events[0])), len(events)*smf.EventSize)
}

// TempoBytes returns the memory of tempos as (tick, microsPerBeat) uint32
// pairs. The result aliases tempos.
func TempoBytes(tempos []smf.Tempo) []byte {
	if len(tempos) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&tempos[0])), len(tempos)*TempoSize)
}
