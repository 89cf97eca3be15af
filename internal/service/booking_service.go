package service

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/access"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

var _ domain.BookingService = (*BookingService)(nil)

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for every reference instant.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// Create stores a new WAITING booking. Overlapping bookings of the same item
// are allowed; the item's availability flag is the only gate.
func (s *BookingService) Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error) {
	exists, err := s.repo.UserExists(ctx, bookerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, notFound("user", bookerID)
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, storeErr(err, "item", itemID)
	}
	if !item.Available {
		s.logger.Debug().Int64("item_id", itemID).Int64("booker_id", bookerID).Msg("booking rejected: item unavailable")
		return nil, fmt.Errorf("item %d: %w", itemID, ErrUnavailableItem)
	}

	if !start.Before(end) {
		return nil, fmt.Errorf("%w: booking start must be before its end", ErrValidation)
	}
	if !models.StorableTime(start) || !models.StorableTime(end) {
		return nil, fmt.Errorf("%w: booking period must fall within years 1-9999", ErrValidation)
	}

	booking := &models.Booking{
		ItemID:   itemID,
		BookerID: bookerID,
		Start:    start,
		End:      end,
		Status:   models.StatusWaiting,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("booking_id", booking.ID).Int64("item_id", itemID).Int64("booker_id", bookerID).Msg("booking created")
	s.publishEvent(events.EventBookingCreated, booking, bookerID)
	return booking, nil
}

// Approve sets the booking to APPROVED or REJECTED. Only the item owner may do it;
// a repeated decision by the owner overwrites the previous one.
func (s *BookingService) Approve(ctx context.Context, actorID, bookingID int64, approved bool) (*models.Booking, error) {
	var updated *models.Booking
	err := s.repo.WithTx(ctx, func(repo domain.Repository) error {
		booking, err := repo.GetBooking(ctx, bookingID)
		if err != nil {
			return storeErr(err, "booking", bookingID)
		}

		item, err := repo.GetItem(ctx, booking.ItemID)
		if err != nil {
			return storeErr(err, "item", booking.ItemID)
		}
		if !access.CanApproveBooking(actorID, item) {
			return fmt.Errorf("user %d may not decide booking %d: %w", actorID, bookingID, ErrAccessDenied)
		}

		status := models.StatusRejected
		if approved {
			status = models.StatusApproved
		}
		if err := repo.UpdateBookingStatus(ctx, bookingID, status); err != nil {
			return storeErr(err, "booking", bookingID)
		}

		booking.Status = status
		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("booking_id", bookingID).Str("status", string(updated.Status)).Int64("owner_id", actorID).Msg("booking decided")
	eventType := events.EventBookingRejected
	if approved {
		eventType = events.EventBookingApproved
	}
	s.publishEvent(eventType, updated, actorID)
	return updated, nil
}

func (s *BookingService) Get(ctx context.Context, actorID, bookingID int64) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, storeErr(err, "booking", bookingID)
	}

	item, err := s.repo.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, storeErr(err, "item", booking.ItemID)
	}
	if !access.CanAccessBooking(actorID, booking, item) {
		return nil, fmt.Errorf("user %d may not read booking %d: %w", actorID, bookingID, ErrAccessDenied)
	}
	return booking, nil
}

// List returns the actor's bookings seen from the given role, filtered by state
// against one reference instant and ordered by start, most recent first.
func (s *BookingService) List(ctx context.Context, actorID int64, role models.Role, state models.BookingState) ([]*models.Booking, error) {
	exists, err := s.repo.UserExists(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, notFound("user", actorID)
	}

	filter, err := ResolveBookingFilter(actorID, role, state, s.now())
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.FindBookings(ctx, filter)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	return bookings, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, actorID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		BookerID:  booking.BookerID,
		Status:    string(booking.Status),
		Start:     booking.Start,
		End:       booking.End,
		ActorID:   actorID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
