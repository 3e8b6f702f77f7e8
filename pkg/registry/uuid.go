package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidUUID is returned for identifiers that are not Bluetooth UUIDs.
var ErrInvalidUUID = errors.New("registry: invalid uuid")

// BaseUUID is the Bluetooth base UUID that 16 and 32-bit UUIDs expand on.
var BaseUUID = uuid.MustParse("00000000-0000-1000-8000-00805F9B34FB")

// ParseUUID parses a 16-bit ("2A37", "0x2A37"), 32-bit ("00002A37") or
// 128-bit UUID. Short forms are expanded on BaseUUID.
func ParseUUID(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	short := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	if len(short) == 4 || len(short) == 8 {
		var v uint32
		for _, c := range short {
			d, ok := hexDigit(c)
			if !ok {
				return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidUUID, s)
			}
			v = v<<4 | uint32(d)
		}
		u := BaseUUID
		u[0] = byte(v >> 24)
		u[1] = byte(v >> 16)
		u[2] = byte(v >> 8)
		u[3] = byte(v)
		return u, nil
	}

	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q: %w", ErrInvalidUUID, s, err)
	}
	return u, nil
}

// ShortUUID returns the 16-bit alias of u, if u is on the Bluetooth base.
func ShortUUID(u uuid.UUID) (uint16, bool) {
	base := BaseUUID
	if u[0] != 0 || u[1] != 0 {
		return 0, false
	}
	for i := 4; i < 16; i++ {
		if u[i] != base[i] {
			return 0, false
		}
	}
	return uint16(u[2])<<8 | uint16(u[3]), true
}

func hexDigit(c rune) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return byte(c - '0'), true
	case c >= 'a' && c <= 'f':
		return byte(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return byte(c-'A') + 10, true
	}
	return 0, false
}
