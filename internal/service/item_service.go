package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareit/internal/access"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

var _ domain.ItemService = (*ItemService)(nil)

func NewItemService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ItemService) WithClock(now func() time.Time) *ItemService {
	s.now = now
	return s
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	if strings.TrimSpace(item.Name) == "" || strings.TrimSpace(item.Description) == "" {
		return nil, fmt.Errorf("%w: item name and description are required", ErrValidation)
	}

	exists, err := s.repo.UserExists(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, notFound("user", ownerID)
	}

	if item.RequestID != nil {
		if _, err := s.repo.GetRequest(ctx, *item.RequestID); err != nil {
			return nil, storeErr(err, "request", *item.RequestID)
		}
	}

	created := *item
	created.ID = 0
	created.OwnerID = ownerID
	if err := s.repo.CreateItem(ctx, &created); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", created.ID).Int64("owner_id", ownerID).Msg("item created")
	return &created, nil
}

// Update applies a partial update. Only the owner may change an item; present fields must not be blank.
func (s *ItemService) Update(ctx context.Context, actorID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: item name must not be blank", ErrValidation)
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return nil, fmt.Errorf("%w: item description must not be blank", ErrValidation)
	}

	var updated *models.Item
	err := s.repo.WithTx(ctx, func(repo domain.Repository) error {
		item, err := repo.GetItem(ctx, itemID)
		if err != nil {
			return storeErr(err, "item", itemID)
		}
		if !access.CanModifyItem(actorID, item) {
			return fmt.Errorf("user %d may not modify item %d: %w", actorID, itemID, ErrAccessDenied)
		}

		if patch.Name != nil {
			item.Name = *patch.Name
		}
		if patch.Description != nil {
			item.Description = *patch.Description
		}
		if patch.Available != nil {
			item.Available = *patch.Available
		}

		if err := repo.UpdateItem(ctx, item); err != nil {
			return storeErr(err, "item", itemID)
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", itemID).Bool("available", updated.Available).Msg("item updated")
	return updated, nil
}

// ProjectItemView builds the item view for a viewer. Last and next bookings are
// computed only when the viewer owns the item.
func (s *ItemService) ProjectItemView(ctx context.Context, itemID, viewerID int64) (*models.ItemView, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, storeErr(err, "item", itemID)
	}
	return s.project(ctx, item, viewerID, s.now())
}

func (s *ItemService) project(ctx context.Context, item *models.Item, viewerID int64, now time.Time) (*models.ItemView, error) {
	view := &models.ItemView{Item: *item}

	if viewerID == item.OwnerID {
		last, err := s.repo.GetLastBooking(ctx, item.ID, now)
		if err != nil {
			return nil, err
		}
		next, err := s.repo.GetNextBooking(ctx, item.ID, now)
		if err != nil {
			return nil, err
		}
		view.LastBooking = last
		view.NextBooking = next
	}

	comments, err := s.repo.GetCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	view.Comments = comments
	return view, nil
}

// ListOwned returns the owner's items, each projected for the owner.
func (s *ItemService) ListOwned(ctx context.Context, ownerID int64) ([]*models.ItemView, error) {
	items, err := s.repo.GetItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]*models.ItemView, 0, len(items))
	for _, item := range items {
		view, err := s.project(ctx, item, ownerID, now)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Search matches available items by name or description. Blank text matches nothing.
func (s *ItemService) Search(ctx context.Context, text string) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}

	items, err := s.repo.SearchItems(ctx, text)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Item{}
	}
	return items, nil
}

// AddComment stores a comment if the author has an approved booking of the item
// that already ended.
func (s *ItemService) AddComment(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error) {
	author, err := s.repo.GetUser(ctx, authorID)
	if err != nil {
		return nil, storeErr(err, "user", authorID)
	}

	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return nil, storeErr(err, "item", itemID)
	}

	bookings, err := s.repo.GetBookingsByBookerAndItem(ctx, authorID, itemID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !hasFinishedApproved(bookings, now) {
		s.logger.Debug().Int64("item_id", itemID).Int64("author_id", authorID).Msg("comment rejected: no finished approved booking")
		return nil, fmt.Errorf("user %d on item %d: %w", authorID, itemID, ErrUnavailableToAddComment)
	}

	comment := &models.Comment{
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
		Text:       text,
		CreatedAt:  now,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("comment_id", comment.ID).Int64("item_id", itemID).Msg("comment added")
	if s.eventBus != nil {
		payload := events.CommentEventPayload{
			CommentID: comment.ID,
			ItemID:    itemID,
			AuthorID:  authorID,
			CreatedAt: now,
		}
		if err := s.eventBus.PublishJSON(events.EventCommentAdded, payload); err != nil {
			s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("publish event error")
		}
	}
	return comment, nil
}

func hasFinishedApproved(bookings []*models.Booking, now time.Time) bool {
	for _, b := range bookings {
		if b.Status == models.StatusApproved && b.End.Before(now) {
			return true
		}
	}
	return false
}
