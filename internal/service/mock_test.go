package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/mock"
)

var (
	_ domain.BookingService = (*BookingService)(nil)
	_ domain.ItemService    = (*ItemService)(nil)
	_ domain.UserService    = (*UserService)(nil)
	_ domain.RequestService = (*RequestService)(nil)
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) WithinTx(_ context.Context, fn func(repo domain.Repository) error) error {
	return fn(m)
}

func (m *mockRepo) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *mockRepo) UpdateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockRepo) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) CreateItem(ctx context.Context, i *models.Item) error {
	return m.Called(ctx, i).Error(0)
}
func (m *mockRepo) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}
func (m *mockRepo) UpdateItem(ctx context.Context, i *models.Item) error {
	return m.Called(ctx, i).Error(0)
}
func (m *mockRepo) GetItemsByOwner(ctx context.Context, ownerID int64, p models.Page) ([]*models.Item, error) {
	args := m.Called(ctx, ownerID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}
func (m *mockRepo) SearchAvailableItems(ctx context.Context, text string, p models.Page) ([]*models.Item, error) {
	args := m.Called(ctx, text, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}
func (m *mockRepo) GetItemsByRequestIDs(ctx context.Context, ids []int64) ([]*models.Item, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *mockRepo) CreateRequest(ctx context.Context, r *models.ItemRequest) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRepo) GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemRequest), args.Error(1)
}
func (m *mockRepo) GetRequestsByRequester(ctx context.Context, id int64, p models.Page) ([]*models.ItemRequest, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ItemRequest), args.Error(1)
}
func (m *mockRepo) GetRequestsExcludingRequester(ctx context.Context, id int64, p models.Page) ([]*models.ItemRequest, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ItemRequest), args.Error(1)
}

func (m *mockRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.BookingView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingView), args.Error(1)
}
func (m *mockRepo) UpdateBookingStatus(ctx context.Context, id int64, s models.BookingStatus) error {
	return m.Called(ctx, id, s).Error(0)
}
func (m *mockRepo) GetBookingsByBooker(ctx context.Context, id int64, st models.BookingState, now time.Time, p models.Page) ([]*models.BookingView, error) {
	args := m.Called(ctx, id, st, now, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingView), args.Error(1)
}
func (m *mockRepo) GetBookingsByItemOwner(ctx context.Context, id int64, st models.BookingState, now time.Time, p models.Page) ([]*models.BookingView, error) {
	args := m.Called(ctx, id, st, now, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingView), args.Error(1)
}
func (m *mockRepo) GetLastBookings(ctx context.Context, ids []int64, now time.Time) (map[int64]*models.Booking, error) {
	args := m.Called(ctx, ids, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetNextBookings(ctx context.Context, ids []int64, now time.Time) (map[int64]*models.Booking, error) {
	args := m.Called(ctx, ids, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*models.Booking), args.Error(1)
}
func (m *mockRepo) HasFinishedApprovedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, bookerID, itemID, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) CreateComment(ctx context.Context, c *models.Comment) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockRepo) CommentExists(ctx context.Context, authorID, itemID int64) (bool, error) {
	args := m.Called(ctx, authorID, itemID)
	return args.Bool(0), args.Error(1)
}
func (m *mockRepo) GetCommentsByItemIDs(ctx context.Context, ids []int64) (map[int64][]*models.Comment, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]*models.Comment), args.Error(1)
}
