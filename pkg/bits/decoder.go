package bits

import (
	"fmt"
	"math/big"
)

// IntegerDecoder interprets a fixed-width bit sequence as an integer.
type IntegerDecoder interface {
	// DecodeInteger decodes the first width bits of s. When signed is true
	// the value is read as two's complement.
	DecodeInteger(s Sequence, width int, signed bool) (*big.Int, error)
}

// TwosComplement is the canonical IntegerDecoder.
// It is stateless and usable as a zero value.
type TwosComplement struct{}

// DecodeInteger decodes s as an unsigned or two's complement integer.
func (TwosComplement) DecodeInteger(s Sequence, width int, signed bool) (*big.Int, error) {
	if width < 1 || width > s.Len() {
		return nil, fmt.Errorf("%w: width %d of %d bits", ErrInvalidWidth, width, s.Len())
	}

	// reverse the little-endian packing for big.Int
	n := (width + 7) / 8
	be := make([]byte, n)
	for i := 0; i < n; i++ {
		be[n-1-i] = s.data[i]
	}
	if rem := width % 8; rem != 0 {
		be[0] &= byte(1<<rem) - 1
	}

	v := new(big.Int).SetBytes(be)
	if signed && v.Bit(width-1) == 1 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(width)))
	}
	return v, nil
}

// Compile-time interface satisfaction check.
var _ IntegerDecoder = TwosComplement{}
