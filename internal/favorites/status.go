// Package favorites keeps the user's shortlist of starred jobs together with
// a progress status and free-text research notes.
//
// Status is a tag, not a workflow. The usual order is
//
//	discovered ─► analyzing ─► tailoring ─► ready ─► applied ─► interviewing ─► offer
//	                                                                              │
//	                                    any status may also be set directly ─► archived
//
// but any status may be set at any time.
package favorites

import (
	"fmt"
	"strings"
)

// Status values are stored lower-case.
type Status string

const (
	StatusDiscovered   Status = "discovered"
	StatusAnalyzing    Status = "analyzing"
	StatusTailoring    Status = "tailoring"
	StatusReady        Status = "ready"
	StatusApplied      Status = "applied"
	StatusInterviewing Status = "interviewing"
	StatusOffer        Status = "offer"
	StatusArchived     Status = "archived"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusDiscovered,
	StatusAnalyzing,
	StatusTailoring,
	StatusReady,
	StatusApplied,
	StatusInterviewing,
	StatusOffer,
	StatusArchived,
}

var statusLabels = map[Status]string{
	StatusDiscovered:   "Discovered",
	StatusAnalyzing:    "Analyzing",
	StatusTailoring:    "Tailoring Resume",
	StatusReady:        "Ready to Apply",
	StatusApplied:      "Applied",
	StatusInterviewing: "Interviewing",
	StatusOffer:        "Offer",
	StatusArchived:     "Archived / Rejected",
}

// ParseStatus accepts a known status, ignoring case and surrounding
// whitespace, and rejects anything else.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := statusLabels[st]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown favorite status %q", s)
}

// NormalizeStatus is ParseStatus without the error: unknown or missing
// values become StatusDiscovered.
func NormalizeStatus(s string) Status {
	st, err := ParseStatus(s)
	if err != nil {
		return StatusDiscovered
	}
	return st
}

// Label is the human-readable name of s.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return statusLabels[StatusDiscovered]
}
