package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newBookingService(repo *mockRepo, bus *mockEventBus) *BookingService {
	logger := zerolog.New(io.Discard)
	return NewBookingService(repo, bus, &logger).WithClock(func() time.Time { return fixedNow })
}

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()
	start := fixedNow.Add(time.Hour)
	end := fixedNow.Add(2 * time.Hour)

	t.Run("CreatedWaiting", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockEventBus)
		svc := newBookingService(repo, bus)

		repo.On("UserExists", ctx, int64(2)).Return(true, nil).Once()
		repo.On("GetItem", ctx, int64(10)).Return(&models.Item{ID: 10, OwnerID: 1, Available: true}, nil).Once()
		repo.On("CreateBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.Status == models.StatusWaiting && b.BookerID == 2 && b.ItemID == 10
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Booking).ID = 100
		}).Return(nil).Once()
		bus.On("PublishJSON", events.EventBookingCreated, mock.Anything).Return(nil).Once()

		booking, err := svc.Create(ctx, 2, 10, start, end)
		require.NoError(t, err)
		assert.Equal(t, int64(100), booking.ID)
		assert.Equal(t, models.StatusWaiting, booking.Status)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("UnavailableItem", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, new(mockEventBus))

		repo.On("UserExists", ctx, int64(2)).Return(true, nil)
		repo.On("GetItem", ctx, int64(10)).Return(&models.Item{ID: 10, OwnerID: 1, Available: false}, nil)

		// Для любых корректных интервалов
		for _, offset := range []time.Duration{-48 * time.Hour, 0, time.Hour, 365 * 24 * time.Hour} {
			_, err := svc.Create(ctx, 2, 10, fixedNow.Add(offset), fixedNow.Add(offset+time.Minute))
			assert.ErrorIs(t, err, ErrUnavailableItem)
		}
		repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	})

	t.Run("BookerNotFound", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, new(mockEventBus))
		repo.On("UserExists", ctx, int64(2)).Return(false, nil).Once()

		_, err := svc.Create(ctx, 2, 10, start, end)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ItemNotFound", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, new(mockEventBus))
		repo.On("UserExists", ctx, int64(2)).Return(true, nil).Once()
		repo.On("GetItem", ctx, int64(10)).Return(nil, database.ErrNotFound).Once()

		_, err := svc.Create(ctx, 2, 10, start, end)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("StartNotBeforeEnd", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, new(mockEventBus))
		repo.On("UserExists", ctx, int64(2)).Return(true, nil)
		repo.On("GetItem", ctx, int64(10)).Return(&models.Item{ID: 10, OwnerID: 1, Available: true}, nil)

		_, err := svc.Create(ctx, 2, 10, end, start)
		assert.ErrorIs(t, err, ErrValidation)
		_, err = svc.Create(ctx, 2, 10, start, start)
		assert.ErrorIs(t, err, ErrValidation)
		repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	})

	t.Run("NotFoundBeforePeriodCheck", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, new(mockEventBus))
		repo.On("UserExists", ctx, int64(2)).Return(false, nil).Once()

		_, err := svc.Create(ctx, 2, 10, end, start)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrValidation)
	})

	t.Run("PeriodOutsideStorableYears", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, new(mockEventBus))
		repo.On("UserExists", ctx, int64(2)).Return(true, nil)
		repo.On("GetItem", ctx, int64(10)).Return(&models.Item{ID: 10, OwnerID: 1, Available: true}, nil)

		farEnd := time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)
		_, err := svc.Create(ctx, 2, 10, start, farEnd)
		assert.ErrorIs(t, err, ErrValidation)
		repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	})

	t.Run("StoreError", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, new(mockEventBus))
		boom := errors.New("disk full")
		repo.On("UserExists", ctx, int64(2)).Return(true, nil).Once()
		repo.On("GetItem", ctx, int64(10)).Return(&models.Item{ID: 10, OwnerID: 1, Available: true}, nil).Once()
		repo.On("CreateBooking", ctx, mock.Anything).Return(boom).Once()

		_, err := svc.Create(ctx, 2, 10, start, end)
		assert.ErrorIs(t, err, boom)
	})
}

func TestBookingService_Approve(t *testing.T) {
	ctx := context.Background()
	item := &models.Item{ID: 10, OwnerID: 1, Available: true}

	waiting := func() *models.Booking {
		return &models.Booking{ID: 100, ItemID: 10, BookerID: 2, Status: models.StatusWaiting}
	}

	decide := []struct {
		approved  bool
		status    models.BookingStatus
		eventType string
	}{
		{approved: true, status: models.StatusApproved, eventType: events.EventBookingApproved},
		{approved: false, status: models.StatusRejected, eventType: events.EventBookingRejected},
	}

	for _, tt := range decide {
		t.Run(string(tt.status), func(t *testing.T) {
			repo := new(mockRepo)
			bus := new(mockEventBus)
			svc := newBookingService(repo, bus)

			repo.On("GetBooking", ctx, int64(100)).Return(waiting(), nil).Once()
			repo.On("GetItem", ctx, int64(10)).Return(item, nil).Once()
			repo.On("UpdateBookingStatus", ctx, int64(100), tt.status).Return(nil).Once()
			bus.On("PublishJSON", tt.eventType, mock.Anything).Return(nil).Once()

			booking, err := svc.Approve(ctx, 1, 100, tt.approved)
			require.NoError(t, err)
			assert.Equal(t, tt.status, booking.Status)
			repo.AssertExpectations(t)
			bus.AssertExpectations(t)
		})
	}

	t.Run("NonOwnerDenied", func(t *testing.T) {
		for _, approved := range []bool{true, false} {
			for _, actor := range []int64{2, 3} {
				repo := new(mockRepo)
				svc := newBookingService(repo, new(mockEventBus))
				repo.On("GetBooking", ctx, int64(100)).Return(waiting(), nil).Once()
				repo.On("GetItem", ctx, int64(10)).Return(item, nil).Once()

				_, err := svc.Approve(ctx, actor, 100, approved)
				assert.ErrorIs(t, err, ErrAccessDenied)
				repo.AssertNotCalled(t, "UpdateBookingStatus", mock.Anything, mock.Anything, mock.Anything)
			}
		}
	})

	t.Run("OwnerOverwritesDecision", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockEventBus)
		svc := newBookingService(repo, bus)
		approved := waiting()
		approved.Status = models.StatusApproved

		repo.On("GetBooking", ctx, int64(100)).Return(approved, nil).Once()
		repo.On("GetItem", ctx, int64(10)).Return(item, nil).Once()
		repo.On("UpdateBookingStatus", ctx, int64(100), models.StatusRejected).Return(nil).Once()
		bus.On("PublishJSON", events.EventBookingRejected, mock.Anything).Return(nil).Once()

		booking, err := svc.Approve(ctx, 1, 100, false)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, booking.Status)
	})

	t.Run("BookingNotFound", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, new(mockEventBus))
		repo.On("GetBooking", ctx, int64(100)).Return(nil, database.ErrNotFound).Once()

		_, err := svc.Approve(ctx, 1, 100, true)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("PublishErrorIgnored", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockEventBus)
		svc := newBookingService(repo, bus)
		repo.On("GetBooking", ctx, int64(100)).Return(waiting(), nil).Once()
		repo.On("GetItem", ctx, int64(10)).Return(item, nil).Once()
		repo.On("UpdateBookingStatus", ctx, int64(100), models.StatusApproved).Return(nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(errors.New("bus down")).Once()

		_, err := svc.Approve(ctx, 1, 100, true)
		assert.NoError(t, err)
	})
}

func TestBookingService_Get(t *testing.T) {
	ctx := context.Background()
	item := &models.Item{ID: 10, OwnerID: 1}
	booking := &models.Booking{ID: 100, ItemID: 10, BookerID: 2}

	tests := []struct {
		actor   int64
		wantErr error
	}{
		{actor: 1},
		{actor: 2},
		{actor: 3, wantErr: ErrAccessDenied},
		{actor: 42, wantErr: ErrAccessDenied},
	}

	for _, tt := range tests {
		repo := new(mockRepo)
		svc := newBookingService(repo, new(mockEventBus))
		repo.On("GetBooking", ctx, int64(100)).Return(booking, nil).Once()
		repo.On("GetItem", ctx, int64(10)).Return(item, nil).Once()

		got, err := svc.Get(ctx, tt.actor, 100)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, got)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, booking, got)
	}

	t.Run("NotFound", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, new(mockEventBus))
		repo.On("GetBooking", ctx, int64(100)).Return(nil, database.ErrNotFound).Once()

		_, err := svc.Get(ctx, 1, 100)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBookingService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("UsesSingleReferenceInstant", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, new(mockEventBus))
		now := fixedNow
		want := []*models.Booking{{ID: 1}}

		repo.On("UserExists", ctx, int64(1)).Return(true, nil).Once()
		repo.On("FindBookings", ctx, models.BookingFilter{OwnerID: 1, StartBefore: &now, EndAfter: &now}).Return(want, nil).Once()

		got, err := svc.List(ctx, 1, models.RoleOwner, models.StateCurrent)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		repo.AssertExpectations(t)
	})

	t.Run("RejectedStateRefused", func(t *testing.T) {
		for _, role := range []models.Role{models.RoleBooker, models.RoleOwner} {
			repo := new(mockRepo)
			svc := newBookingService(repo, new(mockEventBus))
			repo.On("UserExists", ctx, int64(1)).Return(true, nil).Once()

			got, err := svc.List(ctx, 1, role, models.StateRejected)
			assert.ErrorIs(t, err, ErrWrongStateParameter)
			assert.Nil(t, got)
			repo.AssertNotCalled(t, "FindBookings", mock.Anything, mock.Anything)
		}
	})

	t.Run("UnknownActor", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, new(mockEventBus))
		repo.On("UserExists", ctx, int64(9)).Return(false, nil).Once()

		_, err := svc.List(ctx, 9, models.RoleBooker, models.StateAll)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("EmptyIsNotNil", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, new(mockEventBus))
		repo.On("UserExists", ctx, int64(1)).Return(true, nil).Once()
		repo.On("FindBookings", ctx, models.BookingFilter{BookerID: 1}).Return(nil, nil).Once()

		got, err := svc.List(ctx, 1, models.RoleBooker, models.StateAll)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}
