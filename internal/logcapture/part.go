package logcapture

import (
	"fmt"
	"strings"
)

// Part is one of the four capture channels.
type Part int

const (
	PartLevel Part = iota
	PartMessage
	PartInfo
	PartCode

	numParts
)

// Parts lists every part in declaration order.
var Parts = []Part{PartLevel, PartMessage, PartInfo, PartCode}

// Valid reports whether p names a capture channel.
func (p Part) Valid() bool {
	return p >= PartLevel && p < numParts
}

// String makes Part satisfy the fmt.Stringer interface.
func (p Part) String() string {
	switch p {
	case PartLevel:
		return "level"
	case PartMessage:
		return "message"
	case PartInfo:
		return "info"
	case PartCode:
		return "code"
	default:
		return fmt.Sprintf("part(%d)", int(p))
	}
}

// ParsePart maps a part name (case-insensitive) back to a Part.
func ParsePart(s string) (Part, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "level":
		return PartLevel, nil
	case "message":
		return PartMessage, nil
	case "info":
		return PartInfo, nil
	case "code":
		return PartCode, nil
	default:
		return 0, fmt.Errorf("unknown log part %q: must be one of level, message, info, code", s)
	}
}
