package smf

// mergeTracks k-way merges delta-timed tracks into one chronological track.
//
// Each step scans every track for the smallest pending absolute time; the
// lowest track index wins a tie, and events inside a track keep their order.
// The scan is linear in the track count, which is small for real files.
func mergeTracks(tracks []Track) Track {
	pending := make([]uint64, len(tracks)) // absolute time of each track's next event
	popped := make([]int, len(tracks))

	total := 0
	for i := range tracks {
		if len(tracks[i].Events) > 0 {
			pending[i] = uint64(tracks[i].Events[0].Time)
		}
		total += len(tracks[i].Events)
	}

	out := Track{Events: make([]Event, 0, total)}
	if len(tracks) > 0 {
		out.Name = tracks[0].Name
	}

	var now uint64
	for {
		minIdx := -1
		for i := range tracks {
			if popped[i] >= len(tracks[i].Events) {
				continue
			}
			if minIdx == -1 || pending[i] < pending[minIdx] {
				minIdx = i
			}
		}
		if minIdx < 0 {
			break
		}

		e := tracks[minIdx].Events[popped[minIdx]]
		e.Time = uint32(pending[minIdx] - now)
		out.Events = append(out.Events, e)

		now = pending[minIdx]
		popped[minIdx]++
		if popped[minIdx] < len(tracks[minIdx].Events) {
			pending[minIdx] += uint64(tracks[minIdx].Events[popped[minIdx]].Time)
		}
	}
	return out
}
