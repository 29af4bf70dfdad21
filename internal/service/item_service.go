package service

import (
	"context"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo     domain.Repository
	bookings domain.BookingService
	eventBus domain.EventPublisher
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewItemService(
	repo domain.Repository,
	bookings domain.BookingService,
	eventBus domain.EventPublisher,
	now func() time.Time,
	logger *zerolog.Logger,
) *ItemService {
	if now == nil {
		now = time.Now
	}
	return &ItemService{
		repo:     repo,
		bookings: bookings,
		eventBus: eventBus,
		now:      now,
		logger:   logger,
	}
}

func (s *ItemService) CreateItem(ctx context.Context, actorID int64, item *models.Item) (*models.Item, error) {
	err := s.repo.WithinTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUserByID(ctx, actorID); err != nil {
			return storageErr(err)
		}
		if item.RequestID != nil {
			if _, err := repo.GetRequestByID(ctx, *item.RequestID); err != nil {
				return storageErr(err)
			}
		}
		item.OwnerID = actorID
		return repo.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	if err := s.eventBus.PublishJSON(events.EventItemCreated, events.ItemEventPayload{
		ItemID:    item.ID,
		OwnerID:   item.OwnerID,
		RequestID: item.RequestID,
	}); err != nil {
		s.logger.Error().Err(err).Int64("item_id", item.ID).Msg("Failed to publish item event")
	}
	return item, nil
}

// UpdateItem applies a partial update. Only the owner may edit.
func (s *ItemService) UpdateItem(ctx context.Context, actorID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	var item *models.Item

	err := s.repo.WithinTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUserByID(ctx, actorID); err != nil {
			return storageErr(err)
		}

		var err error
		item, err = repo.GetItemByID(ctx, itemID)
		if err != nil {
			return storageErr(err)
		}
		if item.OwnerID != actorID {
			return newError(ErrAccessDenied, "user %d cannot edit item %d", actorID, itemID)
		}

		patch.Apply(item)
		return storageErr(repo.UpdateItem(ctx, item))
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) GetItem(ctx context.Context, actorID, itemID int64) (*models.ItemView, error) {
	if _, err := s.repo.GetUserByID(ctx, actorID); err != nil {
		return nil, storageErr(err)
	}

	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, storageErr(err)
	}

	views, err := s.enrich(ctx, actorID, []*models.Item{item})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *ItemService) GetOwnerItems(ctx context.Context, actorID int64, page models.Page) ([]*models.ItemView, error) {
	if _, err := s.repo.GetUserByID(ctx, actorID); err != nil {
		return nil, storageErr(err)
	}

	items, err := s.repo.GetItemsByOwner(ctx, actorID, page)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, actorID, items)
}

// SearchItems returns nothing for blank text.
func (s *ItemService) SearchItems(ctx context.Context, actorID int64, text string, page models.Page) ([]*models.Item, error) {
	if _, err := s.repo.GetUserByID(ctx, actorID); err != nil {
		return nil, storageErr(err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return []*models.Item{}, nil
	}
	return s.repo.SearchAvailableItems(ctx, text, page)
}

// CreateComment requires a finished approved booking of the item by the author.
func (s *ItemService) CreateComment(ctx context.Context, actorID, itemID int64, text string) (*models.CommentView, error) {
	if strings.TrimSpace(text) == "" {
		return nil, newError(ErrValidation, "comment text must not be blank")
	}

	now := s.now()
	var comment *models.Comment

	err := s.repo.WithinTx(ctx, func(repo domain.Repository) error {
		author, err := repo.GetUserByID(ctx, actorID)
		if err != nil {
			return storageErr(err)
		}
		if _, err := repo.GetItemByID(ctx, itemID); err != nil {
			return storageErr(err)
		}

		exists, err := repo.CommentExists(ctx, actorID, itemID)
		if err != nil {
			return err
		}
		if exists {
			return newError(ErrValidation, "user %d has already commented on item %d", actorID, itemID)
		}

		booked, err := repo.HasFinishedApprovedBooking(ctx, actorID, itemID, now)
		if err != nil {
			return err
		}
		if !booked {
			return newError(ErrCreatingComment, "user %d has no finished approved booking of item %d", actorID, itemID)
		}

		comment = &models.Comment{
			Text:       text,
			ItemID:     itemID,
			AuthorID:   actorID,
			AuthorName: author.Name,
			Created:    now,
		}
		return storageErr(repo.CreateComment(ctx, comment))
	})
	if err != nil {
		return nil, err
	}

	if err := s.eventBus.PublishJSON(events.EventCommentCreated, events.CommentEventPayload{
		CommentID: comment.ID,
		ItemID:    itemID,
		AuthorID:  actorID,
	}); err != nil {
		s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("Failed to publish comment event")
	}

	view := models.CommentViewOf(comment)
	return &view, nil
}

func (s *ItemService) enrich(ctx context.Context, viewerID int64, items []*models.Item) ([]*models.ItemView, error) {
	ids := itemIDs(items)

	comments, err := s.repo.GetCommentsByItemIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	var owned []int64
	for _, it := range items {
		if it.OwnerID == viewerID {
			owned = append(owned, it.ID)
		}
	}

	last := map[int64]*models.Booking{}
	next := map[int64]*models.Booking{}
	if len(owned) > 0 {
		if last, err = s.bookings.GetItemLastBookingMapping(ctx, owned); err != nil {
			return nil, err
		}
		if next, err = s.bookings.GetItemNextBookingMapping(ctx, owned); err != nil {
			return nil, err
		}
	}

	views := make([]*models.ItemView, 0, len(items))
	for _, it := range items {
		views = append(views, AssembleItemView(viewerID, it, comments[it.ID], last[it.ID], next[it.ID]))
	}
	return views, nil
}
