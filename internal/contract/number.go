package contract

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a leniently decoded numeric field. It accepts JSON numbers,
// numeric strings and null, and remembers anything else instead of failing
// the whole request; callers decide on a default.
type Number struct {
	value   float64
	present bool
	valid   bool
	raw     string
}

// NewNumber returns a present, valid Number.
func NewNumber(v float64) Number {
	return Number{value: v, present: true, valid: true, raw: strconv.FormatFloat(v, 'f', -1, 64)}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*n = Number{raw: string(data)}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	n.present = true

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		n.value, n.valid = f, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			n.value, n.valid = f, true
		}
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.present {
		return []byte("null"), nil
	}
	if n.valid {
		return json.Marshal(n.value)
	}
	return []byte(n.raw), nil
}

// Present reports whether the field appeared with a non-null value.
func (n Number) Present() bool { return n.present }

// Float returns the value and whether it parsed as a finite number.
func (n Number) Float() (float64, bool) {
	if !n.valid || math.IsNaN(n.value) || math.IsInf(n.value, 0) {
		return 0, false
	}
	return n.value, true
}

// PositiveInt returns the value when it is a positive whole number.
func (n Number) PositiveInt() (int, bool) {
	f, ok := n.Float()
	if !ok || f <= 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// Raw returns the original JSON text.
func (n Number) Raw() string { return n.raw }
