package market

import (
	"fmt"
	"strings"
)

// Field names one of the editable OHLC prices of a candle.
type Field int

const (
	FieldOpen Field = iota
	FieldHigh
	FieldLow
	FieldClose
)

func (f Field) String() string {
	switch f {
	case FieldOpen:
		return "open"
	case FieldHigh:
		return "high"
	case FieldLow:
		return "low"
	case FieldClose:
		return "close"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// Valid reports whether f is one of the four OHLC fields.
func (f Field) Valid() bool {
	return f >= FieldOpen && f <= FieldClose
}

// ParseField accepts "open", "high", "low", "close" (or o/h/l/c), case
// insensitive.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open", "o":
		return FieldOpen, nil
	case "high", "h":
		return FieldHigh, nil
	case "low", "l":
		return FieldLow, nil
	case "close", "c":
		return FieldClose, nil
	}
	return 0, fmt.Errorf("unknown field %q", s)
}
