package models

import "time"

type Booking struct {
	ID       int64         `json:"id"`
	ItemID   int64         `json:"item_id"`
	BookerID int64         `json:"booker_id"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Status   BookingStatus `json:"status"`
}

// BookingFilter is evaluated by the store. Zero-valued fields do not constrain the result.
// Time bounds are strict: StartBefore means start < t, EndAfter means end > t, and so on.
type BookingFilter struct {
	BookerID      int64
	OwnerID       int64
	ItemID        int64
	StartBefore   *time.Time
	StartAfter    *time.Time
	EndBefore     *time.Time
	EndAfter      *time.Time
	Status        BookingStatus
	ExcludeStatus BookingStatus
	// OldestFirst flips the default most-recent-first order.
	OldestFirst   bool
	// Limit caps the result; zero means no cap.
	Limit         int
}

// StorableTime reports whether t falls within the years 1-9999 the store can hold.
func StorableTime(t time.Time) bool {
	y := t.UTC().Year()
	return y >= 1 && y <= 9999
}
