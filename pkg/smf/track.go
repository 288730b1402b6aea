package smf

// trackState is the mutable decoder state scoped to one track: the running
// status byte and the current program of each channel.
type trackState struct {
	status  byte
	program [16]uint8
}

// trackDecoder walks one MTrk payload through the MIDI event state machine.
type trackDecoder struct {
	c         *cursor
	index     int
	notesOnly bool
	tempos    *TempoMap
	state     trackState
	msgStart  int

	// now is the absolute tick of the current message and last the absolute
	// tick of the previous emitted event. Deltas are taken against absolute
	// time so skipped messages do not shift later events.
	now  uint64
	last uint64

	track Track
}

// decodeTrack converts one track chunk payload into events and appends any
// tempo changes it contains to tempos.
func decodeTrack(payload []byte, index int, tempos *TempoMap, opts Options) (Track, error) {
	d := &trackDecoder{
		c:         newCursor(payload),
		index:     index,
		notesOnly: opts.NotesOnly,
		tempos:    tempos,
	}
	for ch := range d.state.program {
		d.state.program[ch] = opts.DefaultProgram
	}
	// roughly 3 bytes per event; notes-only output is sparser but the
	// overshoot is cheap compared to repeated growth
	d.track.Events = make([]Event, 0, len(payload)/3)

	if err := d.run(); err != nil {
		return Track{}, err
	}
	return d.track, nil
}

func (d *trackDecoder) run() error {
	for d.c.remain() > 0 {
		d.msgStart = d.c.offset()

		delta, err := readVarInt(d.c)
		if err != nil {
			return d.fail(ErrEndOfData, "truncated delta time")
		}
		d.now += uint64(delta)

		if d.c.remain() == 0 {
			return d.fail(ErrEndOfData, "delta time without message")
		}
		d.msgStart = d.c.offset()

		peek := d.c.peek()
		switch {
		case peek >= statusRealTime:
			d.c.takeByte()
			if peek != statusMeta {
				continue
			}
			end, err := d.meta()
			if err != nil {
				return err
			}
			if end {
				return nil
			}
			continue
		case peek >= statusSysexBegin:
			d.c.takeByte()
			if err := d.systemCommon(peek); err != nil {
				return err
			}
			continue
		case peek >= 0x80:
			d.state.status, _ = d.c.takeByte()
		}

		if d.state.status < 0x80 {
			return d.fail(ErrMissingStatusByte, "data byte 0x%02X with no running status", peek)
		}
		if err := d.channelMessage(); err != nil {
			return err
		}
	}
	return nil
}

// meta handles a meta event whose 0xFF marker was already consumed. It
// reports true at End-Of-Track.
func (d *trackDecoder) meta() (bool, error) {
	mtype, err := d.c.takeByte()
	if err != nil {
		return false, d.fail(ErrEndOfData, "truncated meta event")
	}
	if mtype == MetaEndOfTrack {
		return true, nil
	}
	mlen, err := readVarInt(d.c)
	if err != nil {
		return false, d.fail(ErrEndOfData, "truncated meta length")
	}
	data, err := d.c.take(int(mlen))
	if err != nil {
		return false, d.fail(ErrEndOfData, "meta 0x%02X declares %d bytes, %d remain", mtype, mlen, d.c.remain())
	}

	switch mtype {
	case MetaSetTempo:
		if len(data) < 3 {
			// tolerated like an out-of-range program change
			return false, nil
		}
		usec := uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])
		d.tempos.add(d.now, usec)
	case MetaTrackName:
		if d.track.Name == nil {
			d.track.Name = append([]byte{}, data...)
		}
	}
	return false, nil
}

// systemCommon skips a system common message whose status byte was already
// consumed.
func (d *trackDecoder) systemCommon(status byte) error {
	var err error
	switch status {
	case statusQuarterFrame, statusSongSelect:
		_, err = d.c.take(1)
	case statusSongPosition:
		_, err = d.c.take(2)
	case statusSysexBegin:
		for {
			var b byte
			if b, err = d.c.takeByte(); err != nil || b == statusSysexEnd {
				break
			}
		}
	}
	if err != nil {
		return d.fail(ErrEndOfData, "truncated system message 0x%02X", status)
	}
	return nil
}

func (d *trackDecoder) channelMessage() error {
	typ := EventType(d.state.status & 0xF0)
	ch := d.state.status & 0x0F

	switch typ {
	case NoteOff, NoteOn:
		m, err := d.data(2)
		if err != nil {
			return err
		}
		key, err := d.check(m[0])
		if err != nil {
			return err
		}
		if typ == NoteOn && m[1] == 0 {
			typ = NoteOff
		}
		d.emit(typ, ch, key, clip(m[1]))

	case PolyAftertouch, Control, PitchBend:
		m, err := d.data(2)
		if err != nil {
			return err
		}
		if !d.notesOnly {
			key, err := d.check(m[0])
			if err != nil {
				return err
			}
			d.emit(typ, ch, key, clip(m[1]))
		}

	case ChanAftertouch:
		m, err := d.data(1)
		if err != nil {
			return err
		}
		if !d.notesOnly {
			d.emit(typ, ch, 0, clip(m[0]))
		}

	case Program:
		m, err := d.data(1)
		if err != nil {
			return err
		}
		if m[0] < 0x80 {
			d.state.program[ch] = m[0]
		}
	}
	return nil
}

func (d *trackDecoder) data(n int) ([]byte, error) {
	m, err := d.c.take(n)
	if err != nil {
		return nil, d.fail(ErrEndOfData, "status 0x%02X needs %d data bytes, %d remain",
			d.state.status, n, d.c.remain())
	}
	return m, nil
}

func (d *trackDecoder) emit(typ EventType, ch, key, value uint8) {
	d.track.Events = append(d.track.Events, Event{
		Time:    uint32(d.now - d.last), // 2^32 を超える間隔は切り捨て
		Program: d.state.program[ch],
		Track:   uint8(d.index),
		Type:    typ,
		Channel: ch,
		Key:     key,
		Value:   value,
	})
	d.last = d.now
}

// check rejects a key byte outside the data range.
func (d *trackDecoder) check(b byte) (uint8, error) {
	if b >= 0x80 {
		return 0, d.fail(ErrInvalidDataByte, "key byte 0x%02X", b)
	}
	return b, nil
}

// clip caps a velocity/value byte at 127; some real-world files write 128.
func clip(b byte) uint8 {
	return min(b, 0x7F)
}

func (d *trackDecoder) fail(kind error, format string, args ...any) error {
	return newDecodeError(kind, TagTrack, d.index, d.msgStart, format, args...)
}
