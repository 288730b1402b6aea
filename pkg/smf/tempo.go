package smf

import "sort"

// DefaultMicrosPerBeat is the tempo in effect before any Set-Tempo event
// (120 BPM).
const DefaultMicrosPerBeat = 500000

// Tempo is a tempo change at an absolute tick position.
type Tempo struct {
	Tick          uint32
	MicrosPerBeat uint32
}

// BPM returns the tempo in beats per minute.
func (t Tempo) BPM() float64 {
	if t.MicrosPerBeat == 0 {
		return 0
	}
	return 60000000 / float64(t.MicrosPerBeat)
}

// TempoMap is the file-global sequence of tempo changes. Tempo events live in
// track chunks but apply to every track.
type TempoMap []Tempo

// add records a tempo change. The first change anywhere in the file that is
// not at tick 0 gets an implicit default tempo at tick 0 in front of it.
func (m *TempoMap) add(tick uint64, microsPerBeat uint32) {
	if len(*m) == 0 && tick > 0 {
		*m = append(*m, Tempo{Tick: 0, MicrosPerBeat: DefaultMicrosPerBeat})
	}
	*m = append(*m, Tempo{Tick: uint32(tick), MicrosPerBeat: microsPerBeat})
}

// IsSorted reports whether ticks are non-decreasing.
func (m TempoMap) IsSorted() bool {
	for i := 1; i < len(m); i++ {
		if m[i].Tick < m[i-1].Tick {
			return false
		}
	}
	return true
}

// sortStable orders changes by tick. Encoders writing tempo into several
// concurrently running tracks can produce an out-of-order map; equal ticks
// keep their decode order.
func (m TempoMap) sortStable() {
	if m.IsSorted() {
		return
	}
	sort.SliceStable(m, func(i, j int) bool {
		return m[i].Tick < m[j].Tick
	})
}
