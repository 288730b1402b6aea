package export

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/zurustar/densemidi/pkg/smf"
)

const (
	npyMagic     = "\x93NUMPY"
	npyAlignment = 64
)

// byteOrder NumPy のバイトオーダー記号（実行環境のネイティブ）
func byteOrder() string {
	if binary.NativeEndian.Uint16([]byte{1, 0}) == 1 {
		return "<"
	}
	return ">"
}

// EventDescr returns the NumPy structured dtype of smf.Event.
func EventDescr() string {
	o := byteOrder()
	return "[('dt', '" + o + "u4'), ('duration', '" + o + "u4'), " +
		"('program', '|u1'), ('track', '|u1'), ('type', '|u1'), ('channel', '|u1'), " +
		"('key', '|u1'), ('value', '|u1'), ('_pad0', '|u1'), ('_pad1', '|u1')]"
}

// WriteEventsNPY writes events as a one-dimensional structured .npy array.
func WriteEventsNPY(w io.Writer, events []smf.Event) error {
	shape := fmt.Sprintf("(%d,)", len(events))
	return writeNPY(w, EventDescr(), shape, EventBytes(events))
}

// WriteTemposNPY writes the tempo map as an (n, 2) uint32 array of
// tick and microseconds per beat.
func WriteTemposNPY(w io.Writer, tempos smf.TempoMap) error {
	shape := fmt.Sprintf("(%d, 2)", len(tempos))
	return writeNPY(w, "'"+byteOrder()+"u4'", shape, TempoBytes(tempos))
}

// writeNPY writes a version 1.0 .npy file.
func writeNPY(w io.Writer, descr, shape string, body []byte) error {
	header := "{'descr': " + descr + ", 'fortran_order': False, 'shape': " + shape + ", }"

	// magic + version (2) + header length (2) + header + '\n' をアラインメント境界に揃える
	prefix := len(npyMagic) + 4
	pad := (npyAlignment - (prefix+len(header)+1)%npyAlignment) % npyAlignment
	header += strings.Repeat(" ", pad) + "\n"
	if len(header) > math.MaxUint16 {
		return fmt.Errorf("npy header too long: %d bytes", len(header))
	}

	var head bytes.Buffer
	head.Grow(prefix + len(header))
	head.WriteString(npyMagic)
	head.Write([]byte{1, 0})
	binary.Write(&head, binary.LittleEndian, uint16(len(header)))
	head.WriteString(header)

	if _, err := w.Write(head.Bytes()); err != nil {
		return fmt.Errorf("failed to write npy header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write npy data: %w", err)
	}
	return nil
}
