package hexdump

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreview(t *testing.T) {
	seq := make([]byte, 31)
	for i := range seq {
		seq[i] = byte(i + 1)
	}

	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"nil", nil, ""},
		{"empty", []byte{}, ""},
		{"single", []byte{0xAB}, "AB"},
		{"one group", []byte{0xDE, 0xAD, 0xBE, 0xEF}, "DE AD BE EF"},
		{"group boundary", []byte{0x00, 0x01, 0x02, 0x03, 0x0F}, "00 01 02 03  0F"},
		{
			"exactly limit",
			seq[:24],
			"01 02 03 04  05 06 07 08  09 0A 0B 0C  0D 0E 0F 10  11 12 13 14  15 16 17 18",
		},
		{
			"truncated",
			seq,
			"01 02 03 04  05 06 07 08  09 0A 0B 0C  0D 0E 0F 10  11 12 13 14  15 16 17 18 ... +7 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.in))
		})
	}
}

func TestPreviewDoesNotMutate(t *testing.T) {
	in := []byte{0x10, 0x20, 0x30}
	_ = Preview(in)
	assert.Equal(t, []byte{0x10, 0x20, 0x30}, in)
}
