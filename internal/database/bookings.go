package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"
)

const bookingColumns = `b.id, b.item_id, b.booker_id, b.start_time, b.end_time, b.status`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (item_id, booker_id, start_time, end_time, status) VALUES (?, ?, ?, ?, ?)`
	res, err := db.q.ExecContext(ctx, query,
		booking.ItemID,
		booking.BookerID,
		toMicros(booking.Start),
		toMicros(booking.End),
		string(booking.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	return nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	res, err := db.q.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return affectedOrNotFound(res, "booking", id)
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	row := db.q.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = ?`, id)
	booking, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) BookingExists(ctx context.Context, id int64) (bool, error) {
	ok, err := db.exists(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check booking: %w", err)
	}
	return ok, nil
}

// FindBookings evaluates the filter and orders the result by start, most recent first
// unless the filter asks for the oldest first.
func (db *DB) FindBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	query, args := buildBookingQuery(filter)
	return db.queryBookings(ctx, query, args...)
}

func buildBookingQuery(filter models.BookingFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		conds = append(conds, cond)
		args = append(args, arg)
	}

	if filter.BookerID != 0 {
		add("b.booker_id = ?", filter.BookerID)
	}
	if filter.OwnerID != 0 {
		add("i.owner_id = ?", filter.OwnerID)
	}
	if filter.ItemID != 0 {
		add("b.item_id = ?", filter.ItemID)
	}
	if filter.StartBefore != nil {
		add("b.start_time < ?", toMicros(*filter.StartBefore))
	}
	if filter.StartAfter != nil {
		add("b.start_time > ?", toMicros(*filter.StartAfter))
	}
	if filter.EndBefore != nil {
		add("b.end_time < ?", toMicros(*filter.EndBefore))
	}
	if filter.EndAfter != nil {
		add("b.end_time > ?", toMicros(*filter.EndAfter))
	}
	if filter.Status != "" {
		add("b.status = ?", string(filter.Status))
	}
	if filter.ExcludeStatus != "" {
		add("b.status <> ?", string(filter.ExcludeStatus))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings b`
	if filter.OwnerID != 0 {
		query += ` JOIN items i ON i.id = b.item_id`
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	if filter.OldestFirst {
		query += ` ORDER BY b.start_time ASC, b.id ASC`
	} else {
		query += ` ORDER BY b.start_time DESC, b.id DESC`
	}
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	return query, args
}

func (db *DB) GetBookingsByBookerAndItem(ctx context.Context, bookerID, itemID int64) ([]*models.Booking, error) {
	return db.FindBookings(ctx, models.BookingFilter{BookerID: bookerID, ItemID: itemID})
}

// GetLastBooking returns the latest non-rejected booking of the item that started
// before now, or nil when there is none.
func (db *DB) GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	return db.firstBooking(ctx, models.BookingFilter{
		ItemID:        itemID,
		StartBefore:   &now,
		ExcludeStatus: models.StatusRejected,
		Limit:         1,
	})
}

// GetNextBooking returns the earliest non-rejected booking of the item that starts
// after now, or nil when there is none.
func (db *DB) GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	return db.firstBooking(ctx, models.BookingFilter{
		ItemID:        itemID,
		StartAfter:    &now,
		ExcludeStatus: models.StatusRejected,
		OldestFirst:   true,
		Limit:         1,
	})
}

func (db *DB) firstBooking(ctx context.Context, filter models.BookingFilter) (*models.Booking, error) {
	bookings, err := db.FindBookings(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, nil
	}
	return bookings[0], nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func scanBooking(s scanner) (*models.Booking, error) {
	var (
		b          models.Booking
		start, end int64
		status     string
	)
	if err := s.Scan(&b.ID, &b.ItemID, &b.BookerID, &start, &end, &status); err != nil {
		return nil, err
	}
	b.Start = fromMicros(start)
	b.End = fromMicros(end)
	b.Status = models.BookingStatus(status)
	return &b, nil
}
