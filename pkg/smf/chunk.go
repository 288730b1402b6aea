package smf

import "encoding/binary"

// Chunk tags.
const (
	TagHeader = "MThd"
	TagTrack  = "MTrk"
)

// chunkHeadSize is the 4-byte tag plus the 4-byte big-endian length.
const chunkHeadSize = 8

// readChunk validates the tag at the cursor and returns a view of the payload.
// The payload aliases the cursor's buffer. track is only used for error context.
func readChunk(c *cursor, tag string, track int) ([]byte, error) {
	start := c.offset()
	head, err := c.take(chunkHeadSize)
	if err != nil {
		return nil, newDecodeError(ErrEndOfData, tag, track, start,
			"need %d bytes for chunk head, have %d", chunkHeadSize, c.remain())
	}
	if string(head[:4]) != tag {
		return nil, newDecodeError(ErrBadChunkTag, tag, track, start,
			"expected %q, found %q", tag, head[:4])
	}
	length := binary.BigEndian.Uint32(head[4:])
	if uint64(length) > uint64(c.remain()) {
		return nil, newDecodeError(ErrEndOfData, tag, track, start,
			"chunk declares %d bytes, %d remain", length, c.remain())
	}
	payload, _ := c.take(int(length))
	return payload, nil
}
