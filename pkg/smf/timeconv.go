package smf

import "fmt"

// TimeUnit tells how Event.Time and Event.Duration are measured.
type TimeUnit uint8

const (
	TimeTicks TimeUnit = iota
	TimeMicroseconds
)

func (u TimeUnit) String() string {
	switch u {
	case TimeTicks:
		return "ticks"
	case TimeMicroseconds:
		return "microseconds"
	default:
		return fmt.Sprintf("TimeUnit(%d)", uint8(u))
	}
}

// Seconds converts a microsecond value to seconds. Tick values are returned
// unchanged as a float.
func (u TimeUnit) Seconds(v uint32) float64 {
	if u == TimeMicroseconds {
		return float64(v) / 1e6
	}
	return float64(v)
}

// Division is the raw MThd division word.
type Division uint16

// TicksPerBeat returns the ticks per quarter note, or 0 for SMPTE timing.
func (d Division) TicksPerBeat() uint16 {
	if d&0x8000 != 0 {
		return 0
	}
	return uint16(d)
}

// SMPTE returns frames per second and ticks per frame when the division uses
// SMPTE timing.
func (d Division) SMPTE() (fps, ticksPerFrame uint8, ok bool) {
	if d&0x8000 == 0 {
		return 0, 0, false
	}
	// frames per second is stored as a negative two's complement byte
	return uint8(-int8(d >> 8)), uint8(d & 0xFF), true
}

func (d Division) valid() bool {
	if fps, tpf, ok := d.SMPTE(); ok {
		return fps > 0 && tpf > 0
	}
	return d != 0
}

// convertToMicroseconds rewrites tick deltas as microsecond deltas by walking
// the tempo map once. Tempo entries are consumed in order and never revisited.
func (t *Track) convertToMicroseconds(div Division, tempos TempoMap) {
	if fps, tpf, ok := div.SMPTE(); ok {
		t.convertSMPTE(uint64(fps) * uint64(tpf))
		return
	}
	ticksPerBeat := uint64(div.TicksPerBeat())

	var (
		next        int
		usecPerBeat uint64 = DefaultMicrosPerBeat
		usec, tick  uint64
	)
	for i := range t.Events {
		e := &t.Events[i]
		before := usec
		eventTick := tick + uint64(e.Time)

		for next < len(tempos) && uint64(tempos[next].Tick) <= eventTick {
			change := uint64(tempos[next].Tick)
			usec += (change - tick) * usecPerBeat / ticksPerBeat
			tick = change
			usecPerBeat = uint64(tempos[next].MicrosPerBeat)
			next++
		}

		usec += (eventTick - tick) * usecPerBeat / ticksPerBeat
		tick = eventTick
		e.Time = uint32(usec - before)
	}
}

// convertSMPTE handles SMPTE divisions, where a tick has a fixed length and
// tempo events do not apply.
func (t *Track) convertSMPTE(ticksPerSecond uint64) {
	var tick, usec uint64
	for i := range t.Events {
		e := &t.Events[i]
		before := usec
		tick += uint64(e.Time)
		usec = tick * 1000000 / ticksPerSecond
		e.Time = uint32(usec - before)
	}
}
