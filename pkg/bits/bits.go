// Package bits extracts bit ranges from characteristic payloads and decodes
// them as integers.
//
// Bits are numbered from the least-significant bit of the first byte:
// bit 0 is payload[0]&0x01, bit 7 is payload[0]&0x80, bit 8 is
// payload[1]&0x01 and so on.
package bits

import (
	"errors"
	"fmt"
	"strings"
)

// Extraction errors.
var (
	ErrOutOfRange   = errors.New("bits: range exceeds payload")
	ErrInvalidWidth = errors.New("bits: invalid width")
)

// Sequence is an immutable run of bits, stored least-significant bit first.
type Sequence struct {
	data []byte
	n    int
}

// Extract returns bitCount bits of payload starting at bit startBit.
func Extract(payload []byte, startBit, bitCount int) (Sequence, error) {
	if bitCount < 1 {
		return Sequence{}, fmt.Errorf("%w: %d", ErrInvalidWidth, bitCount)
	}
	if startBit < 0 || startBit+bitCount > len(payload)*8 {
		return Sequence{}, fmt.Errorf("%w: bits [%d,%d) of %d",
			ErrOutOfRange, startBit, startBit+bitCount, len(payload)*8)
	}
	return extract(payload, startBit, bitCount), nil
}

// MustExtract is like Extract but panics if the range is invalid.
func MustExtract(payload []byte, startBit, bitCount int) Sequence {
	s, err := Extract(payload, startBit, bitCount)
	if err != nil {
		panic(err)
	}
	return s
}

func extract(src []byte, startBit, bitCount int) Sequence {
	data := make([]byte, (bitCount+7)/8)

	// byte aligned ranges copy directly
	if startBit%8 == 0 {
		copy(data, src[startBit/8:])
		if rem := bitCount % 8; rem != 0 {
			data[len(data)-1] &= byte(1<<rem) - 1
		}
		return Sequence{data: data, n: bitCount}
	}

	for i := 0; i < bitCount; i++ {
		pos := startBit + i
		if src[pos/8]>>(pos%8)&1 == 1 {
			data[i/8] |= 1 << (i % 8)
		}
	}
	return Sequence{data: data, n: bitCount}
}

// FromBytes returns a sequence covering every bit of b.
func FromBytes(b []byte) Sequence {
	data := make([]byte, len(b))
	copy(data, b)
	return Sequence{data: data, n: len(b) * 8}
}

// Len returns the number of bits.
func (s Sequence) Len() int { return s.n }

// Bit returns bit i. Bits beyond the sequence read as false.
func (s Sequence) Bit(i int) bool {
	if i < 0 || i >= s.n {
		return false
	}
	return s.data[i/8]>>(i%8)&1 == 1
}

// Slice returns bits [from, to) of the sequence.
func (s Sequence) Slice(from, to int) (Sequence, error) {
	if to-from < 1 {
		return Sequence{}, fmt.Errorf("%w: %d", ErrInvalidWidth, to-from)
	}
	if from < 0 || to > s.n {
		return Sequence{}, fmt.Errorf("%w: bits [%d,%d) of %d", ErrOutOfRange, from, to, s.n)
	}
	return extract(s.data, from, to-from), nil
}

// Bytes returns the bits packed least-significant bit first.
func (s Sequence) Bytes() []byte {
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out
}

// String returns the bits most-significant first, e.g. "0b010".
func (s Sequence) String() string {
	var b strings.Builder
	b.WriteString("0b")
	for i := s.n - 1; i >= 0; i-- {
		if s.Bit(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
