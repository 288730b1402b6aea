package smf

import (
	"bytes"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestReadVarInt(t *testing.T) {
	// values from the SMF specification's variable-length quantity table
	tests := []struct {
		name  string
		input []byte
		want  uint32
		used  int
	}{
		{"zero", []byte{0x00}, 0x00, 1},
		{"one byte", []byte{0x40}, 0x40, 1},
		{"largest one byte", []byte{0x7F}, 0x7F, 1},
		{"two bytes", []byte{0x81, 0x00}, 0x80, 2},
		{"two bytes mid", []byte{0xC0, 0x00}, 0x2000, 2},
		{"largest two bytes", []byte{0xFF, 0x7F}, 0x3FFF, 2},
		{"three bytes", []byte{0x81, 0x80, 0x00}, 0x4000, 3},
		{"largest four bytes", []byte{0xFF, 0xFF, 0xFF, 0x7F}, 0x0FFFFFFF, 4},
		{"stops at first final byte", []byte{0x83, 0x60, 0x55}, 0x1E0, 2},
		// a fifth continuation byte is never read
		{"capped at four bytes", []byte{0x81, 0x81, 0x81, 0x81, 0x01}, 0x00204081, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCursor(tt.input)
			got, err := readVarInt(c)
			if err != nil {
				t.Fatalf("readVarInt failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got 0x%X, want 0x%X", got, tt.want)
			}
			if c.offset() != tt.used {
				t.Errorf("consumed %d bytes, want %d", c.offset(), tt.used)
			}
		})
	}

	t.Run("truncated", func(t *testing.T) {
		_, err := readVarInt(newCursor([]byte{0x81, 0x80}))
		if !errors.Is(err, ErrEndOfData) {
			t.Fatalf("expected ErrEndOfData, got %v", err)
		}
	})
}

func TestEncodeVarIntHelper(t *testing.T) {
	if got := encodeVarInt(0x4000); !bytes.Equal(got, []byte{0x81, 0x80, 0x00}) {
		t.Errorf("encodeVarInt(0x4000) = % X", got)
	}
}

// TestVarIntRoundTripProperty: every value representable in four groups
// decodes back to itself.
func TestVarIntRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("decode(encode(v)) == v", prop.ForAll(
		func(v uint32) bool {
			enc := encodeVarInt(v)
			c := newCursor(append(enc, 0xAA))
			got, err := readVarInt(c)
			return err == nil && got == v && c.offset() == len(enc)
		},
		gen.UInt32Range(0, 0x0FFFFFFF),
	))

	properties.TestingRun(t)
}
