// Package access holds the ownership rules shared by bookings, items and comments.
// The predicates work on entities that were already loaded and never touch the store.
package access

import "shareit/internal/models"

// CanAccessBooking reports whether the actor may read the booking: only its booker
// and the owner of the booked item can.
func CanAccessBooking(actorID int64, booking *models.Booking, item *models.Item) bool {
	if booking == nil || item == nil || booking.ItemID != item.ID {
		return false
	}
	return actorID == booking.BookerID || actorID == item.OwnerID
}

// CanApproveBooking reports whether the actor owns the booked item.
func CanApproveBooking(actorID int64, item *models.Item) bool {
	return item != nil && actorID == item.OwnerID
}

func CanModifyItem(actorID int64, item *models.Item) bool {
	return item != nil && actorID == item.OwnerID
}
