package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterU8(t *testing.T) {
	buf := make([]byte, 3)
	writer := NewWriter(buf)

	writer.U8(0x01)
	writer.U8(0xFF)
	writer.U8(0x00)
	writer.Finish()

	assert.Equal(t, []byte{0x01, 0xFF, 0x00}, buf)
}

func TestWriterU64LE(t *testing.T) {
	tests := []struct {
		name     string
		value    uint64
		expected []byte
	}{
		{
			name:     "zero",
			value:    0,
			expected: []byte{0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:     "ascending bytes",
			value:    0x0102030405060708,
			expected: []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01},
		},
		{
			name:     "max",
			value:    0xFFFFFFFFFFFFFFFF,
			expected: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := make([]byte, 8)
			writer := NewWriter(buf)

			writer.U64LE(tc.value)
			writer.Finish()

			assert.Equal(t, tc.expected, buf)
		})
	}
}

func TestWriterMixedScalars(t *testing.T) {
	buf := make([]byte, 17)
	writer := NewWriter(buf)

	writer.U64LE(1)
	writer.U8(0x03)
	writer.U64LE(0x42)
	writer.Finish()

	expected := []byte{
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x03,
		0x42, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	assert.Equal(t, expected, buf)
	assert.Equal(t, 17, writer.Written())
}

func TestWriterOverrunPanics(t *testing.T) {
	require.Panics(t, func() {
		writer := NewWriter(make([]byte, 1))
		writer.U64LE(1)
	})

	require.Panics(t, func() {
		writer := NewWriter(nil)
		writer.U8(0)
	})
}

func TestWriterFinishUnderfillPanics(t *testing.T) {
	writer := NewWriter(make([]byte, 9))
	writer.U64LE(7)

	require.Panics(t, func() {
		writer.Finish()
	})
}
