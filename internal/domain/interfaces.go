package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

// Repository is the persistence port. Every Get* method returns an error wrapping
// database.ErrNotFound when the row does not exist.
type Repository interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error

	GetItem(ctx context.Context, id int64) (*models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string) ([]*models.Item, error)
	GetItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error)

	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error
	BookingExists(ctx context.Context, id int64) (bool, error)
	FindBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
	GetBookingsByBookerAndItem(ctx context.Context, bookerID, itemID int64) ([]*models.Booking, error)
	GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)

	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error)
	GetRequestsNotByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error)

	// WithTx runs fn against a repository bound to a single transaction.
	// The transaction is committed when fn returns nil and rolled back otherwise.
	WithTx(ctx context.Context, fn func(repo Repository) error) error
}

type RateLimiter interface {
	CheckRateLimit(ctx context.Context, actorID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type BookingService interface {
	Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error)
	Approve(ctx context.Context, actorID, bookingID int64, approved bool) (*models.Booking, error)
	Get(ctx context.Context, actorID, bookingID int64) (*models.Booking, error)
	List(ctx context.Context, actorID int64, role models.Role, state models.BookingState) ([]*models.Booking, error)
}

type ItemService interface {
	Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, actorID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	ProjectItemView(ctx context.Context, itemID, viewerID int64) (*models.ItemView, error)
	ListOwned(ctx context.Context, ownerID int64) ([]*models.ItemView, error)
	Search(ctx context.Context, text string) ([]*models.Item, error)
	AddComment(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error)
}

type UserService interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type RequestService interface {
	Create(ctx context.Context, requesterID int64, description string) (*models.ItemRequest, error)
	ListOwn(ctx context.Context, requesterID int64) ([]*models.ItemRequestView, error)
	ListOthers(ctx context.Context, actorID int64) ([]*models.ItemRequestView, error)
	Get(ctx context.Context, actorID, requestID int64) (*models.ItemRequestView, error)
}
