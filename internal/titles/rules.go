// Package titles holds the pure title-mutation rules applied to deals
// before they are pushed back to Bitrix and persisted.
package titles

import (
	"fmt"
	"strings"
)

// PriorityMarker prefixes the title of high-priority deals.
const PriorityMarker = "♨️ "

// Option ids of the priority list field.
const (
	PriorityYes = "185"
	PriorityNo  = "187"
)

// ApplyPriorityMarker reconciles the marker with the priority flag and
// reports whether the title changed. Flags other than the yes/no sentinels
// leave the title alone. Re-applying the rule to its own output is a no-op.
func ApplyPriorityMarker(title, flag string) (string, bool) {
	hasMarker := strings.HasPrefix(title, PriorityMarker)

	switch {
	case flag == PriorityYes && !hasMarker:
		return PriorityMarker + title, true
	case flag == PriorityNo && hasMarker:
		return strings.Replace(title, PriorityMarker, "", 1), true
	default:
		return title, false
	}
}

// Sequential builds the auto-generated per-company deal title, e.g. "APP 3".
func Sequential(tag string, n int64) string {
	return fmt.Sprintf("%s %d", tag, n)
}
