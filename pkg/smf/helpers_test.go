package smf

import (
	"bytes"
	"encoding/binary"
)

// encodeVarInt encodes a value as a variable-length quantity.
func encodeVarInt(value uint32) []byte {
	out := []byte{byte(value & 0x7F)}
	for value >>= 7; value > 0; value >>= 7 {
		out = append([]byte{byte(value&0x7F) | 0x80}, out...)
	}
	return out
}

// trackBuilder writes an MTrk chunk byte by byte.
type trackBuilder struct {
	body          bytes.Buffer
	runningStatus bool
	lastStatus    byte
}

// msg writes a delta time followed by raw message bytes. With running status
// enabled, a channel status equal to the previous one is omitted.
func (b *trackBuilder) msg(delta uint32, data ...byte) *trackBuilder {
	b.body.Write(encodeVarInt(delta))
	if len(data) > 0 && data[0] >= 0x80 && data[0] < 0xF0 {
		if b.runningStatus && data[0] == b.lastStatus {
			data = data[1:]
		} else {
			b.lastStatus = data[0]
		}
	} else {
		b.lastStatus = 0
	}
	b.body.Write(data)
	return b
}

func (b *trackBuilder) meta(delta uint32, mtype byte, payload ...byte) *trackBuilder {
	data := append([]byte{0xFF, mtype}, encodeVarInt(uint32(len(payload)))...)
	return b.msg(delta, append(data, payload...)...)
}

func (b *trackBuilder) tempo(delta, microsPerBeat uint32) *trackBuilder {
	return b.meta(delta, MetaSetTempo,
		byte(microsPerBeat>>16), byte(microsPerBeat>>8), byte(microsPerBeat))
}

func (b *trackBuilder) end(delta uint32) *trackBuilder {
	return b.meta(delta, MetaEndOfTrack)
}

func (b *trackBuilder) chunk() []byte {
	return rawChunk(TagTrack, b.body.Bytes())
}

func rawChunk(tag string, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(tag)
	binary.Write(&buf, binary.BigEndian, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

func headerChunk(format, tracks, division uint16) []byte {
	payload := make([]byte, 6)
	binary.BigEndian.PutUint16(payload[0:], format)
	binary.BigEndian.PutUint16(payload[2:], tracks)
	binary.BigEndian.PutUint16(payload[4:], division)
	return rawChunk(TagHeader, payload)
}

// smfBytes assembles a complete file; the header's track count matches the
// number of chunks given.
func smfBytes(format, division uint16, chunks ...[]byte) []byte {
	out := headerChunk(format, uint16(len(chunks)), division)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// scoreEvent is one generated message with its absolute tick.
type scoreEvent struct {
	delta uint32
	tick  uint64
	data  []byte
}

// emitted reports whether the decoder produces an Event for the message.
func (s scoreEvent) emitted(notesOnly bool) bool {
	if len(s.data) == 0 || s.data[0] >= 0xF0 {
		return false
	}
	switch EventType(s.data[0] & 0xF0) {
	case NoteOn, NoteOff:
		return true
	case Program:
		return false
	default:
		return !notesOnly
	}
}

// scoreFromSeeds derives a deterministic message sequence from random seeds,
// mixing every channel message type with meta and sysex filler.
func scoreFromSeeds(seeds []uint32) []scoreEvent {
	var out []scoreEvent
	var tick uint64
	for _, s := range seeds {
		delta := s % 240
		tick += uint64(delta)
		ch := byte(s>>11) & 0x0F
		key := byte(s>>15) & 0x7F
		val := byte(s>>22) & 0x7F

		var data []byte
		switch (s >> 8) % 9 {
		case 0, 1:
			data = []byte{0x90 | ch, key, 1 + val%127}
		case 2:
			data = []byte{0x80 | ch, key, val}
		case 3:
			data = []byte{0x90 | ch, key, 0}
		case 4:
			data = []byte{0xB0 | ch, key, val}
		case 5:
			data = []byte{0xC0 | ch, key}
		case 6:
			data = []byte{0xE0 | ch, key, val}
		case 7:
			data = []byte{0xD0 | ch, val}
		case 8:
			if s&1 == 0 {
				data = []byte{0xFF, 0x01, 0x03, 'a', 'b', 'c'}
			} else {
				data = []byte{0xF0, 0x7E, 0x7F, 0x09, 0x01, 0xF7}
			}
		}
		out = append(out, scoreEvent{delta: delta, tick: tick, data: data})
	}
	return out
}

// scoreTrack writes a generated score as an MTrk chunk.
func scoreTrack(score []scoreEvent, runningStatus bool) []byte {
	b := &trackBuilder{runningStatus: runningStatus}
	for _, ev := range score {
		b.msg(ev.delta, ev.data...)
	}
	return b.end(0).chunk()
}

// expectedTicks lists the absolute ticks of the events the decoder emits.
func expectedTicks(score []scoreEvent, notesOnly bool) []uint64 {
	var out []uint64
	for _, ev := range score {
		if ev.emitted(notesOnly) {
			out = append(out, ev.tick)
		}
	}
	return out
}
