package pixel

import "strings"

// ChannelSet selects which color channels of a pixel carry a bit.
type ChannelSet uint8

const (
	Red ChannelSet = 1 << iota
	Green
	Blue

	// RedOnly stores one bit per pixel.
	RedOnly = Red
	// RGB stores three bits per pixel, red first.
	RGB = Red | Green | Blue
)

// Channel is the byte offset of a color component inside an NRGBA pixel.
type Channel int

const (
	ChannelR Channel = 0
	ChannelG Channel = 1
	ChannelB Channel = 2
)

func (c Channel) String() string {
	switch c {
	case ChannelR:
		return "R"
	case ChannelG:
		return "G"
	case ChannelB:
		return "B"
	}
	return "?"
}

// Len returns the number of channels in the set.
func (s ChannelSet) Len() int {
	n := 0
	for _, f := range []ChannelSet{Red, Green, Blue} {
		if s&f != 0 {
			n++
		}
	}
	return n
}

// IsZero reports whether the set selects no usable channel.
func (s ChannelSet) IsZero() bool {
	return s&RGB == 0
}

// Channels returns the selected channels in round-robin order (R, G, B).
func (s ChannelSet) Channels() []Channel {
	chs := make([]Channel, 0, 3)
	if s&Red != 0 {
		chs = append(chs, ChannelR)
	}
	if s&Green != 0 {
		chs = append(chs, ChannelG)
	}
	if s&Blue != 0 {
		chs = append(chs, ChannelB)
	}
	return chs
}

func (s ChannelSet) String() string {
	var b strings.Builder
	for _, c := range s.Channels() {
		b.WriteString(c.String())
	}
	if b.Len() == 0 {
		return "none"
	}
	return b.String()
}

// ParseChannelSet reads a set such as "r", "rgb" or "gb" (case-insensitive).
func ParseChannelSet(v string) (ChannelSet, bool) {
	var s ChannelSet
	for _, r := range strings.ToLower(v) {
		switch r {
		case 'r':
			s |= Red
		case 'g':
			s |= Green
		case 'b':
			s |= Blue
		default:
			return 0, false
		}
	}
	return s, !s.IsZero()
}
