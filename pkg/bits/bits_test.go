package bits

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	payload := []byte{0b1011_0010, 0b0000_0001}

	tests := []struct {
		name  string
		start int
		count int
		want  string
	}{
		{"bit 0", 0, 1, "0b0"},
		{"bit 1", 1, 1, "0b1"},
		{"low nibble", 0, 4, "0b0010"},
		{"high nibble", 4, 4, "0b1011"},
		{"whole byte", 0, 8, "0b10110010"},
		{"across bytes", 6, 4, "0b0110"},
		{"all bits", 0, 16, "0b0000000110110010"},
		{"last bit", 15, 1, "0b0"},
		{"aligned partial", 8, 3, "0b001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Extract(payload, tt.start, tt.count)
			require.NoError(t, err)
			assert.Equal(t, tt.count, s.Len())
			assert.Equal(t, tt.want, s.String())
		})
	}
}

func TestExtract_Errors(t *testing.T) {
	payload := []byte{0xFF}

	_, err := Extract(payload, 0, 0)
	assert.True(t, errors.Is(err, ErrInvalidWidth))

	_, err = Extract(payload, 4, 5)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	_, err = Extract(payload, -1, 1)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	_, err = Extract(nil, 0, 1)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	assert.Panics(t, func() { MustExtract(payload, 0, 9) })
}

func TestExtractDoesNotAlias(t *testing.T) {
	payload := []byte{0x0F}
	s := MustExtract(payload, 0, 8)
	payload[0] = 0xF0
	assert.Equal(t, "0b00001111", s.String())

	b := s.Bytes()
	b[0] = 0
	assert.Equal(t, "0b00001111", s.String())
}

func TestSequenceSlice(t *testing.T) {
	s := FromBytes([]byte{0b0110_1100})

	sub, err := s.Slice(2, 6)
	require.NoError(t, err)
	assert.Equal(t, "0b1011", sub.String())

	_, err = s.Slice(3, 3)
	assert.True(t, errors.Is(err, ErrInvalidWidth))

	_, err = s.Slice(4, 9)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	assert.False(t, s.Bit(100))
	assert.True(t, s.Bit(2))
}

func TestTwosComplement(t *testing.T) {
	var dec TwosComplement

	tests := []struct {
		name    string
		payload []byte
		width   int
		signed  bool
		want    int64
	}{
		{"uint8 max", []byte{0xFF}, 8, false, 255},
		{"sint8 -1", []byte{0xFF}, 8, true, -1},
		{"sint8 -128", []byte{0x80}, 8, true, -128},
		{"sint8 127", []byte{0x7F}, 8, true, 127},
		{"uint16 little-endian", []byte{0x34, 0x12}, 16, false, 0x1234},
		{"sint16 -2", []byte{0xFE, 0xFF}, 16, true, -2},
		{"uint12", []byte{0xFF, 0xFF}, 12, false, 0xFFF},
		{"sint12 -1", []byte{0xFF, 0x0F}, 12, true, -1},
		{"sint4 positive", []byte{0x07}, 4, true, 7},
		{"sint4 -8", []byte{0x08}, 4, true, -8},
		{"1 bit", []byte{0x01}, 1, false, 1},
		{"1 bit signed", []byte{0x01}, 1, true, -1},
		{"width below length", []byte{0xFF}, 3, false, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dec.DecodeInteger(FromBytes(tt.payload), tt.width, tt.signed)
			require.NoError(t, err)
			assert.Equal(t, 0, got.Cmp(big.NewInt(tt.want)), "got %s, want %d", got, tt.want)
		})
	}
}

func TestTwosComplement_Wide(t *testing.T) {
	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = 0xFF
	}

	u, err := TwosComplement{}.DecodeInteger(FromBytes(payload), 128, false)
	require.NoError(t, err)
	want := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	assert.Equal(t, 0, u.Cmp(want))

	s, err := TwosComplement{}.DecodeInteger(FromBytes(payload), 128, true)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Cmp(big.NewInt(-1)))
}

func TestTwosComplement_Errors(t *testing.T) {
	s := FromBytes([]byte{0x01})

	_, err := TwosComplement{}.DecodeInteger(s, 0, false)
	assert.True(t, errors.Is(err, ErrInvalidWidth))

	_, err = TwosComplement{}.DecodeInteger(s, 9, false)
	assert.True(t, errors.Is(err, ErrInvalidWidth))
}
