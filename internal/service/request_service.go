package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	repo   domain.Repository
	logger *zerolog.Logger
	now    func() time.Time
}

var _ domain.RequestService = (*RequestService)(nil)

func NewRequestService(repo domain.Repository, logger *zerolog.Logger) *RequestService {
	return &RequestService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *RequestService) WithClock(now func() time.Time) *RequestService {
	s.now = now
	return s
}

func (s *RequestService) Create(ctx context.Context, requesterID int64, description string) (*models.ItemRequest, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: request description is required", ErrValidation)
	}
	if err := s.ensureUser(ctx, requesterID); err != nil {
		return nil, err
	}

	request := &models.ItemRequest{
		Description: description,
		RequesterID: requesterID,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("request_id", request.ID).Int64("requester_id", requesterID).Msg("item request created")
	return request, nil
}

// ListOwn returns the requester's own requests, newest first.
func (s *RequestService) ListOwn(ctx context.Context, requesterID int64) ([]*models.ItemRequestView, error) {
	if err := s.ensureUser(ctx, requesterID); err != nil {
		return nil, err
	}
	requests, err := s.repo.GetRequestsByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

// ListOthers returns requests made by everybody except the actor, newest first.
func (s *RequestService) ListOthers(ctx context.Context, actorID int64) ([]*models.ItemRequestView, error) {
	if err := s.ensureUser(ctx, actorID); err != nil {
		return nil, err
	}
	requests, err := s.repo.GetRequestsNotByRequester(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

func (s *RequestService) Get(ctx context.Context, actorID, requestID int64) (*models.ItemRequestView, error) {
	if err := s.ensureUser(ctx, actorID); err != nil {
		return nil, err
	}
	request, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, storeErr(err, "request", requestID)
	}

	views, err := s.withItems(ctx, []*models.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *RequestService) withItems(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequestView, error) {
	views := make([]*models.ItemRequestView, 0, len(requests))
	for _, r := range requests {
		items, err := s.repo.GetItemsByRequest(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []*models.Item{}
		}
		views = append(views, &models.ItemRequestView{ItemRequest: *r, Items: items})
	}
	return views, nil
}

func (s *RequestService) ensureUser(ctx context.Context, id int64) error {
	exists, err := s.repo.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return notFound("user", id)
	}
	return nil
}
