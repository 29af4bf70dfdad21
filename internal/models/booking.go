package models

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

type Booking struct {
	ID       int64         `json:"id"`
	ItemID   int64         `json:"itemId"`
	BookerID int64         `json:"bookerId"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Status   BookingStatus `json:"status"`
}

// BookingState selects bookings for listing. StateUnknown never matches.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
	StateUnknown  BookingState = "UNKNOWN"
)

var knownStates = map[string]BookingState{
	string(StateAll):      StateAll,
	string(StateCurrent):  StateCurrent,
	string(StatePast):     StatePast,
	string(StateFuture):   StateFuture,
	string(StateWaiting):  StateWaiting,
	string(StateRejected): StateRejected,
}

// UnknownStateError is returned by ParseState for tokens outside the known set.
type UnknownStateError struct {
	Token string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("Unknown state: %s", e.Token)
}

// ParseState maps a case-sensitive token to a state. Empty means ALL.
func ParseState(token string) (BookingState, error) {
	if token == "" {
		return StateAll, nil
	}
	if s, ok := knownStates[token]; ok {
		return s, nil
	}
	return StateUnknown, &UnknownStateError{Token: token}
}

// StateOf is ParseState without the error: unknown tokens become StateUnknown.
func StateOf(token string) BookingState {
	s, _ := ParseState(token)
	return s
}

// Matches reports whether b belongs to the state at the instant now.
func (s BookingState) Matches(now time.Time, b *Booking) bool {
	switch s {
	case StateAll:
		return true
	case StateCurrent:
		return b.Start.Before(now) && b.End.After(now)
	case StatePast:
		return b.End.Before(now)
	case StateFuture:
		return b.Start.After(now)
	case StateWaiting:
		return b.Status == StatusWaiting
	case StateRejected:
		return b.Status == StatusRejected
	default:
		return false
	}
}

// ValidInterval checks end > start with both strictly after now.
func ValidInterval(start, end, now time.Time) error {
	switch {
	case start.IsZero() || end.IsZero():
		return fmt.Errorf("start and end are required")
	case !end.After(start):
		return fmt.Errorf("end %s must be after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	case !start.After(now):
		return fmt.Errorf("start %s must be in the future", start.Format(time.RFC3339))
	}
	return nil
}
