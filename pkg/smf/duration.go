package smf

// computeDurations sets Duration on every NOTE_ON to the time until the next
// NOTE_OFF with the same channel and key, in the track's time unit.
//
// The scan runs backward, so overlapping notes on one key all end at the
// nearest following note-off. A note-on with no later note-off lasts until
// the end of the track.
func (t *Track) computeDurations() {
	// remaining[i] is the time from event i to the end of the track
	var remaining uint64
	var offAt [16][128]uint64

	for i := len(t.Events) - 1; i >= 0; i-- {
		e := &t.Events[i]
		switch e.Type {
		case NoteOn:
			e.Duration = uint32(remaining - offAt[e.Channel&0x0F][e.Key&0x7F])
		case NoteOff:
			offAt[e.Channel&0x0F][e.Key&0x7F] = remaining
		}
		remaining += uint64(e.Time)
	}
}

// removeNoteOff drops NOTE_OFF events in place. Deltas of the following
// events absorb the removed deltas so absolute times are unchanged.
func (t *Track) removeNoteOff() {
	kept := t.Events[:0]
	var carry uint64
	for _, e := range t.Events {
		if e.Type == NoteOff {
			carry += uint64(e.Time)
			continue
		}
		e.Time = uint32(uint64(e.Time) + carry)
		carry = 0
		kept = append(kept, e)
	}
	clear(t.Events[len(kept):])
	t.Events = kept
}
