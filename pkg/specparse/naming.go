package specparse

import (
	"strings"
	"unicode"
)

// ShortType strips the namespace from a type:
// "org.bluetooth.characteristic.heart_rate_measurement" becomes
// "heart_rate_measurement".
func ShortType(typ string) string {
	typ = strings.TrimSpace(typ)
	if i := strings.LastIndexByte(typ, '.'); i >= 0 {
		return typ[i+1:]
	}
	return typ
}

// GoName converts "heart_rate_measurement" to "HeartRateMeasurement" and
// "Heart Rate Measurement" to "HeartRateMeasurement".
func GoName(name string) string {
	var result strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		result.WriteRune(r)
	}
	return result.String()
}
