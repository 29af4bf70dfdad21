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

type RequestService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewRequestService(repo domain.Repository, eventBus domain.EventPublisher, now func() time.Time, logger *zerolog.Logger) *RequestService {
	if now == nil {
		now = time.Now
	}
	return &RequestService{repo: repo, eventBus: eventBus, now: now, logger: logger}
}

func (s *RequestService) CreateRequest(ctx context.Context, actorID int64, description string) (*models.RequestView, error) {
	if strings.TrimSpace(description) == "" {
		return nil, newError(ErrValidation, "request description must not be blank")
	}

	req := &models.ItemRequest{Description: description, RequesterID: actorID, Created: s.now()}
	err := s.repo.WithinTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUserByID(ctx, actorID); err != nil {
			return storageErr(err)
		}
		return repo.CreateRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	if err := s.eventBus.PublishJSON(events.EventRequestCreated, events.RequestEventPayload{
		RequestID:   req.ID,
		RequesterID: actorID,
	}); err != nil {
		s.logger.Error().Err(err).Int64("request_id", req.ID).Msg("Failed to publish request event")
	}

	return AssembleRequestView([]*models.ItemRequest{req}, nil)[0], nil
}

// GetOwnRequests lists the actor's requests, newest first.
func (s *RequestService) GetOwnRequests(ctx context.Context, actorID int64, page models.Page) ([]*models.RequestView, error) {
	if _, err := s.repo.GetUserByID(ctx, actorID); err != nil {
		return nil, storageErr(err)
	}
	reqs, err := s.repo.GetRequestsByRequester(ctx, actorID, page)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, reqs)
}

// GetOtherRequests lists everyone else's requests, newest first.
func (s *RequestService) GetOtherRequests(ctx context.Context, actorID int64, page models.Page) ([]*models.RequestView, error) {
	if _, err := s.repo.GetUserByID(ctx, actorID); err != nil {
		return nil, storageErr(err)
	}
	reqs, err := s.repo.GetRequestsExcludingRequester(ctx, actorID, page)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, reqs)
}

func (s *RequestService) GetRequest(ctx context.Context, actorID, requestID int64) (*models.RequestView, error) {
	if _, err := s.repo.GetUserByID(ctx, actorID); err != nil {
		return nil, storageErr(err)
	}
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, storageErr(err)
	}
	views, err := s.withItems(ctx, []*models.ItemRequest{req})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *RequestService) withItems(ctx context.Context, reqs []*models.ItemRequest) ([]*models.RequestView, error) {
	items, err := s.repo.GetItemsByRequestIDs(ctx, requestIDs(reqs))
	if err != nil {
		return nil, err
	}
	return AssembleRequestView(reqs, items), nil
}
