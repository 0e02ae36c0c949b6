package repository

import (
	"fmt"
	"strings"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// OverlapRule decides whether a proposed window [start, end) collides with
// an existing booking's window. Both rules treat windows as half-open, so
// a proposal that starts exactly when another booking ends is accepted.
type OverlapRule int

const (
	// OverlapLegacy flags a proposal whose start falls inside an existing
	// window or whose end falls inside it. A proposal that strictly
	// contains an existing booking is not flagged.
	OverlapLegacy OverlapRule = iota
	// OverlapStrict flags any intersection of the two windows, including
	// containment.
	OverlapStrict
)

// String returns the configuration name of the rule.
func (r OverlapRule) String() string {
	switch r {
	case OverlapStrict:
		return "strict"
	default:
		return "legacy"
	}
}

// ParseOverlapRule maps a configuration value onto an OverlapRule. The
// empty string selects the legacy rule.
func ParseOverlapRule(s string) (OverlapRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return OverlapLegacy, nil
	case "strict":
		return OverlapStrict, nil
	}
	return OverlapLegacy, fmt.Errorf("%w: %q", ErrUnknownOverlapRule, s)
}

// Overlaps reports whether [start, end) collides with b under the rule.
func (r OverlapRule) Overlaps(b model.Booking, start, end int) bool {
	if r == OverlapStrict {
		return start < b.EndTime && end > b.StartTime
	}
	return (start >= b.StartTime && start < b.EndTime) ||
		(end > b.StartTime && end <= b.EndTime)
}

// IsAvailable reports whether room roomID is free on date for the window
// [start, end) given the existing bookings, using the legacy rule. Bookings
// for other rooms or dates never block the proposal.
func IsAvailable(roomID int, date string, start, end int, existing []model.Booking) bool {
	return OverlapLegacy.IsAvailable(roomID, date, start, end, existing)
}

// IsAvailable is like the package-level IsAvailable but uses rule r.
func (r OverlapRule) IsAvailable(roomID int, date string, start, end int, existing []model.Booking) bool {
	for _, b := range existing {
		if b.RoomID != roomID || b.Date != date {
			continue
		}
		if r.Overlaps(b, start, end) {
			return false
		}
	}
	return true
}
