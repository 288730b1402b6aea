package smf

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestComputeDurations(t *testing.T) {
	tr := Track{Events: []Event{
		{Time: 0, Type: NoteOn, Channel: 0, Key: 60},
		{Time: 10, Type: NoteOn, Channel: 1, Key: 60}, // other channel
		{Time: 90, Type: NoteOff, Channel: 0, Key: 60},
		{Time: 20, Type: Control, Channel: 1, Key: 7},
		{Time: 30, Type: NoteOff, Channel: 1, Key: 60},
	}}
	tr.computeDurations()

	if d := tr.Events[0].Duration; d != 100 {
		t.Errorf("channel 0 duration = %d, want 100", d)
	}
	if d := tr.Events[1].Duration; d != 140 {
		t.Errorf("channel 1 duration = %d, want 140", d)
	}
	for _, i := range []int{2, 3, 4} {
		if tr.Events[i].Duration != 0 {
			t.Errorf("event %d should have no duration", i)
		}
	}
}

func TestComputeDurationsOverlapping(t *testing.T) {
	// both note-ons end at the first following note-off
	tr := Track{Events: []Event{
		{Time: 0, Type: NoteOn, Key: 64},
		{Time: 10, Type: NoteOn, Key: 64},
		{Time: 10, Type: NoteOff, Key: 64},
		{Time: 10, Type: NoteOff, Key: 64},
	}}
	tr.computeDurations()
	if tr.Events[0].Duration != 20 || tr.Events[1].Duration != 10 {
		t.Errorf("durations = %d, %d; want 20, 10", tr.Events[0].Duration, tr.Events[1].Duration)
	}
}

func TestComputeDurationsUnterminated(t *testing.T) {
	tr := Track{Events: []Event{
		{Time: 5, Type: NoteOn, Key: 60},
		{Time: 70, Type: NoteOn, Key: 61},
		{Time: 25, Type: NoteOff, Key: 61},
	}}
	tr.computeDurations()
	if tr.Events[0].Duration != 95 {
		t.Errorf("unterminated note should last to the last event, got %d", tr.Events[0].Duration)
	}
}

func TestRemoveNoteOff(t *testing.T) {
	tr := Track{Events: []Event{
		{Time: 0, Type: NoteOn, Key: 60},
		{Time: 100, Type: NoteOff, Key: 60},
		{Time: 50, Type: NoteOff, Key: 62},
		{Time: 25, Type: NoteOn, Key: 64},
		{Time: 5, Type: NoteOff, Key: 64},
	}}
	tr.removeNoteOff()

	if len(tr.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(tr.Events))
	}
	if tr.Events[1].Key != 64 || tr.Events[1].Time != 175 {
		t.Errorf("second event = %v, want key 64 at delta 175", tr.Events[1])
	}
}

// TestDurationsThenRemoveNoteOffProperty: removing note-offs after computing
// durations leaves every remaining NOTE_ON's duration and absolute time
// unchanged.
func TestDurationsThenRemoveNoteOffProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("remove note-off keeps durations", prop.ForAll(
		func(seeds []uint32) bool {
			chunk := scoreTrack(scoreFromSeeds(seeds), false)
			var tempos TempoMap
			tr, err := decodeTrack(chunk[chunkHeadSize:], 0, &tempos, Options{})
			if err != nil {
				return false
			}
			tr.computeDurations()

			type note struct {
				abs      uint64
				duration uint32
			}
			var before []note
			abs := tr.AbsoluteTimes()
			for i, e := range tr.Events {
				if e.Type == NoteOn {
					before = append(before, note{abs[i], e.Duration})
				}
			}

			tr.removeNoteOff()
			var after []note
			abs = tr.AbsoluteTimes()
			for i, e := range tr.Events {
				if e.Type == NoteOff {
					return false
				}
				if e.Type == NoteOn {
					after = append(after, note{abs[i], e.Duration})
				}
			}

			if len(before) != len(after) {
				return false
			}
			for i := range before {
				if before[i] != after[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt32()),
	))

	properties.TestingRun(t)
}
