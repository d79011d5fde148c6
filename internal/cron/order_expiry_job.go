package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/bancadosucesso/storefront-backend/internal/orders"
	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	"github.com/bancadosucesso/storefront-backend/pkg/enums"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox/payloads"
)

const expiryBatchSize = 100

// OrderExpiryJobParams configure the pending order expiry job.
type OrderExpiryJobParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Orders      expirableOrderRepo
	Outbox      dedupedEmitter
	ExpireAfter time.Duration
}

type expirableOrderRepo interface {
	FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	WithTx(tx *gorm.DB) *orders.Repository
}

type dedupedEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// NewOrderExpiryJob builds the job that expires stale pending orders.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if params.ExpireAfter <= 0 {
		return nil, fmt.Errorf("expire-after duration required")
	}
	return &orderExpiryJob{
		logg:        params.Logger,
		db:          params.DB,
		orders:      params.Orders,
		outbox:      params.Outbox,
		expireAfter: params.ExpireAfter,
		now:         time.Now,
	}, nil
}

type orderExpiryJob struct {
	logg        *logger.Logger
	db          txRunner
	orders      expirableOrderRepo
	outbox      dedupedEmitter
	expireAfter time.Duration
	now         func() time.Time
}

func (j *orderExpiryJob) Name() string { return "order-expiry" }

// Run expires every pending order older than the cutoff. Each order gets its
// own transaction so one bad row does not roll back the whole batch.
func (j *orderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.expireAfter)
	stale, err := j.orders.FindExpiredPending(ctx, cutoff, expiryBatchSize)
	if err != nil {
		return fmt.Errorf("query stale pending orders: %w", err)
	}

	var errs []error
	expired := 0
	for _, order := range stale {
		if err := j.expireOrder(ctx, order); err != nil {
			errs = append(errs, fmt.Errorf("expire order %s: %w", order.ID, err))
			continue
		}
		expired++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff,
		"found":   len(stale),
		"expired": expired,
	})
	j.logg.Info(logCtx, "order expiry loop complete")
	return multierr.Combine(errs...)
}

func (j *orderExpiryJob) expireOrder(ctx context.Context, order models.Order) error {
	now := j.now().UTC()
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := j.orders.WithTx(tx).
			UpdateStatus(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusExpired, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			// Someone confirmed or canceled it since the query ran.
			return nil
		}
		return j.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderExpired,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			OccurredAt:    now,
			Data: payloads.OrderExpiredEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				ExpiredAt:   now,
			},
		})
	})
}
