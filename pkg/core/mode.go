package core

import (
	"fmt"
	"strings"
)

// =============================================================================
// Mode
// =============================================================================

// Mode selects which content the editor serializes on generate.
type Mode int

// Editor modes.
const (
	// ModeText encodes the free text verbatim.
	ModeText Mode = iota
	// ModeTable encodes the table as {columns, rows} JSON.
	ModeTable
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeTable:
		return "table"
	default:
		return "unknown"
	}
}

// ParseMode converts a string to a Mode value.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return ModeText, nil
	case "table":
		return ModeTable, nil
	default:
		return ModeText, fmt.Errorf("unknown mode %q: want text or table", s)
	}
}
