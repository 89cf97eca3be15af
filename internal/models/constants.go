package models

import "strings"

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

// BookingState selects a subset of bookings relative to the moment of the query.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// Role says from which side of a booking the actor is looking.
type Role string

const (
	RoleBooker Role = "BOOKER"
	RoleOwner  Role = "OWNER"
)

var knownStates = map[BookingState]bool{
	StateAll:      true,
	StateCurrent:  true,
	StatePast:     true,
	StateFuture:   true,
	StateWaiting:  true,
	StateRejected: true,
}

// ParseBookingState maps a raw query value to a state. An empty value means ALL.
func ParseBookingState(raw string) (BookingState, bool) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return StateAll, true
	}
	state := BookingState(raw)
	return state, knownStates[state]
}

// ParseRole accepts "booker" and "owner" in any case. An empty value means BOOKER.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", string(RoleBooker):
		return RoleBooker, true
	case string(RoleOwner):
		return RoleOwner, true
	default:
		return "", false
	}
}

const (
	// DefaultRateLimitWindow окно ограничения частоты запросов актора, в секундах
	DefaultRateLimitWindow = 60

	// DefaultRateLimitRequests количество запросов актора в окне
	DefaultRateLimitRequests = 120

	// DefaultExportSheetName имя листа в выгрузке бронирований
	DefaultExportSheetName = "Bookings"
)
