package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, now func() time.Time, logger *zerolog.Logger) *BookingService {
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		now:      now,
		logger:   logger,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, actorID, itemID int64, start, end time.Time) (*models.BookingView, error) {
	now := s.now()
	var view *models.BookingView

	err := s.repo.WithinTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUserByID(ctx, actorID); err != nil {
			return storageErr(err)
		}

		item, err := repo.GetItemByID(ctx, itemID)
		if err != nil {
			return storageErr(err)
		}
		if !item.Available {
			return newError(ErrUnavailable, "item %d is not available for booking", item.ID)
		}
		// Владелец не может бронировать свою вещь
		if item.OwnerID == actorID {
			return newError(ErrNotFound, "item %d cannot be booked by its owner", item.ID)
		}
		if err := models.ValidInterval(start, end, now); err != nil {
			return newError(ErrValidation, "%s", err.Error())
		}

		booking := &models.Booking{
			ItemID:   item.ID,
			BookerID: actorID,
			Start:    start,
			End:      end,
			Status:   models.StatusWaiting,
		}
		if err := repo.CreateBooking(ctx, booking); err != nil {
			return err
		}

		view, err = repo.GetBooking(ctx, booking.ID)
		return storageErr(err)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingCreated, view, actorID)
	return view, nil
}

func (s *BookingService) UpdateBookingStatus(ctx context.Context, actorID, bookingID int64, approved bool) (*models.BookingView, error) {
	var view *models.BookingView

	err := s.repo.WithinTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUserByID(ctx, actorID); err != nil {
			return storageErr(err)
		}

		var err error
		view, err = repo.GetBooking(ctx, bookingID)
		if err != nil {
			return storageErr(err)
		}
		if view.Item.OwnerID != actorID {
			return newError(ErrNotFound, "booking %d not found for owner %d", bookingID, actorID)
		}
		if view.Status != models.StatusWaiting {
			return newError(ErrIllegalTransition, "booking %d is already %s", bookingID, view.Status)
		}

		status := models.StatusRejected
		if approved {
			status = models.StatusApproved
		}
		if err := repo.UpdateBookingStatus(ctx, bookingID, status); err != nil {
			return storageErr(err)
		}
		view.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := events.EventBookingRejected
	if approved {
		eventType = events.EventBookingApproved
	}
	s.publishEvent(eventType, view, actorID)
	return view, nil
}

func (s *BookingService) GetBooking(ctx context.Context, actorID, bookingID int64) (*models.BookingView, error) {
	if _, err := s.repo.GetUserByID(ctx, actorID); err != nil {
		return nil, storageErr(err)
	}

	view, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, storageErr(err)
	}
	if view.Booker.ID != actorID && view.Item.OwnerID != actorID {
		return nil, newError(ErrNotFound, "booking %d not found for user %d", bookingID, actorID)
	}
	return view, nil
}

func (s *BookingService) GetBookingsForUser(
	ctx context.Context,
	actorID int64,
	state models.BookingState,
	page models.Page,
) ([]*models.BookingView, error) {
	if _, err := s.repo.GetUserByID(ctx, actorID); err != nil {
		return nil, storageErr(err)
	}
	if !s.knownState(state) {
		return []*models.BookingView{}, nil
	}
	return s.repo.GetBookingsByBooker(ctx, actorID, state, s.now(), page)
}

func (s *BookingService) GetBookingsForItemOwner(
	ctx context.Context,
	actorID int64,
	state models.BookingState,
	page models.Page,
) ([]*models.BookingView, error) {
	if _, err := s.repo.GetUserByID(ctx, actorID); err != nil {
		return nil, storageErr(err)
	}
	if !s.knownState(state) {
		return []*models.BookingView{}, nil
	}
	return s.repo.GetBookingsByItemOwner(ctx, actorID, state, s.now(), page)
}

func (s *BookingService) GetItemLastBookingMapping(ctx context.Context, itemIDs []int64) (map[int64]*models.Booking, error) {
	return s.repo.GetLastBookings(ctx, itemIDs, s.now())
}

func (s *BookingService) GetItemNextBookingMapping(ctx context.Context, itemIDs []int64) (map[int64]*models.Booking, error) {
	return s.repo.GetNextBookings(ctx, itemIDs, s.now())
}

func (s *BookingService) knownState(state models.BookingState) bool {
	if state == models.StateUnknown || state == "" {
		s.logger.Warn().Str("state", string(state)).Msg("Unknown booking state")
		return false
	}
	return true
}

func (s *BookingService) publishEvent(eventType string, view *models.BookingView, changedBy int64) {
	payload := events.BookingEventPayload{
		BookingID: view.ID,
		ItemID:    view.Item.ID,
		BookerID:  view.Booker.ID,
		OwnerID:   view.Item.OwnerID,
		Status:    string(view.Status),
		Start:     view.Start,
		End:       view.End,
		ChangedBy: changedBy,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", view.ID).Str("event", eventType).Msg("Failed to publish booking event")
	}
}
