package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, error)
	SearchAvailableItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error)
	GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error)
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, req *models.ItemRequest) error
	GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequester(ctx context.Context, requesterID int64, page models.Page) ([]*models.ItemRequest, error)
	GetRequestsExcludingRequester(ctx context.Context, requesterID int64, page models.Page) ([]*models.ItemRequest, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.BookingView, error)
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error
	GetBookingsByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time, page models.Page) ([]*models.BookingView, error)
	GetBookingsByItemOwner(ctx context.Context, ownerID int64, state models.BookingState, now time.Time, page models.Page) ([]*models.BookingView, error)
	GetLastBookings(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*models.Booking, error)
	GetNextBookings(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*models.Booking, error)
	HasFinishedApprovedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	CommentExists(ctx context.Context, authorID, itemID int64) (bool, error)
	GetCommentsByItemIDs(ctx context.Context, itemIDs []int64) (map[int64][]*models.Comment, error)
}

// Repository is the whole storage surface. WithinTx runs fn against a
// transaction-scoped Repository; a non-nil error from fn rolls back.
type Repository interface {
	UserRepository
	ItemRepository
	RequestRepository
	BookingRepository
	CommentRepository
	WithinTx(ctx context.Context, fn func(repo Repository) error) error
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type UserService interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type ItemService interface {
	CreateItem(ctx context.Context, actorID int64, item *models.Item) (*models.Item, error)
	UpdateItem(ctx context.Context, actorID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	GetItem(ctx context.Context, actorID, itemID int64) (*models.ItemView, error)
	GetOwnerItems(ctx context.Context, actorID int64, page models.Page) ([]*models.ItemView, error)
	SearchItems(ctx context.Context, actorID int64, text string, page models.Page) ([]*models.Item, error)
	CreateComment(ctx context.Context, actorID, itemID int64, text string) (*models.CommentView, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, actorID, itemID int64, start, end time.Time) (*models.BookingView, error)
	UpdateBookingStatus(ctx context.Context, actorID, bookingID int64, approved bool) (*models.BookingView, error)
	GetBooking(ctx context.Context, actorID, bookingID int64) (*models.BookingView, error)
	GetBookingsForUser(ctx context.Context, actorID int64, state models.BookingState, page models.Page) ([]*models.BookingView, error)
	GetBookingsForItemOwner(ctx context.Context, actorID int64, state models.BookingState, page models.Page) ([]*models.BookingView, error)
	GetItemLastBookingMapping(ctx context.Context, itemIDs []int64) (map[int64]*models.Booking, error)
	GetItemNextBookingMapping(ctx context.Context, itemIDs []int64) (map[int64]*models.Booking, error)
}

type RequestService interface {
	CreateRequest(ctx context.Context, actorID int64, description string) (*models.RequestView, error)
	GetOwnRequests(ctx context.Context, actorID int64, page models.Page) ([]*models.RequestView, error)
	GetOtherRequests(ctx context.Context, actorID int64, page models.Page) ([]*models.RequestView, error)
	GetRequest(ctx context.Context, actorID, requestID int64) (*models.RequestView, error)
}
