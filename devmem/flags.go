package devmem

import (
	"fmt"
	"strings"
)

// FlagBits is the underlying-type constraint for bitmask flag types that
// register their string representations in a FlagStringMapping.
type FlagBits interface {
	~int32 | ~uint32
}

// FlagStringMapping produces human-readable representations of bitmask flag
// values from the names registered for each individual bit.
type FlagStringMapping[T FlagBits] struct {
	names map[T]string
}

func NewFlagStringMapping[T FlagBits]() FlagStringMapping[T] {
	return FlagStringMapping[T]{names: make(map[T]string)}
}

// Register records the name of a single flag bit.
func (m FlagStringMapping[T]) Register(flag T, name string) {
	m.names[flag] = name
}

// FlagsToString renders a flag value as the pipe-joined names of its set bits.
func (m FlagStringMapping[T]) FlagsToString(flags T) string {
	if flags == 0 {
		return "None"
	}

	var sb strings.Builder
	for bit := T(1); bit != 0; bit <<= 1 {
		if flags&bit == 0 {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteRune('|')
		}

		name, ok := m.names[bit]
		if !ok {
			name = fmt.Sprintf("0x%x", uint32(bit))
		}
		sb.WriteString(name)
	}

	return sb.String()
}
