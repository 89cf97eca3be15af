package service

import (
	"fmt"
	"time"

	"shareit/internal/models"
)

type boundFilter func(f *models.BookingFilter, now time.Time)

// stateFilters maps each supported state to the constraint it adds. A state
// missing from the table is not queryable.
var stateFilters = map[models.BookingState]boundFilter{
	models.StateAll: func(*models.BookingFilter, time.Time) {},
	models.StateCurrent: func(f *models.BookingFilter, now time.Time) {
		f.StartBefore = &now
		f.EndAfter = &now
	},
	models.StatePast: func(f *models.BookingFilter, now time.Time) {
		f.EndBefore = &now
	},
	models.StateFuture: func(f *models.BookingFilter, now time.Time) {
		f.StartAfter = &now
	},
	models.StateWaiting: func(f *models.BookingFilter, _ time.Time) {
		f.Status = models.StatusWaiting
	},
}

// ResolveBookingFilter turns a role and a state into a store filter evaluated
// against a single reference instant. REJECTED is refused with ErrWrongStateParameter
// just like any unknown state.
func ResolveBookingFilter(actorID int64, role models.Role, state models.BookingState, now time.Time) (models.BookingFilter, error) {
	var filter models.BookingFilter
	switch role {
	case models.RoleBooker:
		filter.BookerID = actorID
	case models.RoleOwner:
		filter.OwnerID = actorID
	default:
		return models.BookingFilter{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	apply, ok := stateFilters[state]
	if !ok {
		return models.BookingFilter{}, fmt.Errorf("state %s: %w", state, ErrWrongStateParameter)
	}
	apply(&filter, now)
	return filter, nil
}
