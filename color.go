package mscfb

type Color int

const (
	Red Color = iota
	Black
)

func (c Color) AsByte() byte {
	switch c {
	case Red:
		return COLOR_RED
	case Black:
		return COLOR_BLACK
	default:
		return 0
	}
}

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

// ColorFromByte decodes the red-black flag. Anything but red is read as black;
// the reader never rebalances, so the flag is informational only.
func ColorFromByte(b byte) Color {
	if b == COLOR_RED {
		return Red
	}
	return Black
}
