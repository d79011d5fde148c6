package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/pagination"
)

// Service exposes the back-office notification inbox.
type Service interface {
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]NotificationDTO, pagination.Page, error)
	UnreadCount(ctx context.Context) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService constructs a notification service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]NotificationDTO, pagination.Page, error) {
	rows, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return ToDTOs(rows), params.BuildPage(total), nil
}

func (s *service) UnreadCount(ctx context.Context) (int64, error) {
	count, err := s.repo.CountUnread(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id is required")
	}

	affected, err := s.repo.MarkRead(ctx, id, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if affected > 0 {
		return nil
	}

	// Zero rows means the notification is already read or never existed.
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check notification")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}
