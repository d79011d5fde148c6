package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	"github.com/bancadosucesso/storefront-backend/pkg/enums"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox/payloads"
	"github.com/bancadosucesso/storefront-backend/pkg/pagination"
)

// Service exposes the back-office order operations.
type Service interface {
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]OrderDTO, pagination.Page, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	Confirm(ctx context.Context, id uuid.UUID, actor *outbox.ActorRef) (*OrderDTO, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string, actor *outbox.ActorRef) (*OrderDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo   *Repository
	runner txRunner
	events eventEmitter
	now    func() time.Time
}

// NewService constructs an order service instance.
func NewService(repo *Repository, runner txRunner, events eventEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{repo: repo, runner: runner, events: events, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]OrderDTO, pagination.Page, error) {
	rows, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return ToDTOs(rows), params.BuildPage(total), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToDTO(order), nil
}

func (s *service) Confirm(ctx context.Context, id uuid.UUID, actor *outbox.ActorRef) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "only pending orders can be confirmed")
	}

	now := s.now().UTC()
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		affected, txErr := s.repo.WithTx(tx).UpdateStatus(ctx, id, enums.OrderStatusPending, enums.OrderStatusConfirmed, now)
		if txErr != nil {
			return txErr
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
		}
		return nil
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm order")
	}
	return s.Get(ctx, id)
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, reason string, actor *outbox.ActorRef) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "only pending orders can be canceled")
	}

	now := s.now().UTC()
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		affected, txErr := s.repo.WithTx(tx).UpdateStatus(ctx, id, enums.OrderStatusPending, enums.OrderStatusCanceled, now)
		if txErr != nil {
			return txErr
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCanceled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Data: payloads.OrderCanceledEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				CanceledAt:  now,
				Reason:      reason,
			},
			OccurredAt: now,
		})
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	return s.Get(ctx, id)
}

func (s *service) loadOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
