package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bancadosucesso/storefront-backend/internal/cart"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
	"github.com/bancadosucesso/storefront-backend/pkg/metrics"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox"
)

// SubmitInput is the shopper-supplied half of a checkout.
type SubmitInput struct {
	CustomerName  string `validate:"required,min=2,max=100"`
	CustomerEmail string `validate:"required,email,max=255"`
	CustomerPhone string `validate:"required,min=10,max=20"`
	SalespersonID *uuid.UUID
	Notes         *string
	Actor         *outbox.ActorRef
}

// Service runs the checkout pipeline end to end.
type Service interface {
	Submit(ctx context.Context, cartKey string, input SubmitInput) (*Artifact, error)
}

type cartAccessor interface {
	Get(ctx context.Context, cartKey string) (cart.Snapshot, error)
	Drop(ctx context.Context, cartKey string) error
}

type service struct {
	carts     cartAccessor
	verifier  *Verifier
	submitter Submitter
	validate  *validator.Validate
	logg      *logger.Logger
	metrics   *metrics.CheckoutMetrics
}

// NewService builds the checkout service around the configured submitter.
func NewService(
	carts cartAccessor,
	verifier *Verifier,
	submitter Submitter,
	logg *logger.Logger,
	checkoutMetrics *metrics.CheckoutMetrics,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("verifier required")
	}
	if submitter == nil {
		return nil, fmt.Errorf("submitter required")
	}
	return &service{
		carts:     carts,
		verifier:  verifier,
		submitter: submitter,
		validate:  validator.New(),
		logg:      logg,
		metrics:   checkoutMetrics,
	}, nil
}

func (s *service) Submit(ctx context.Context, cartKey string, input SubmitInput) (*Artifact, error) {
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.CustomerEmail = strings.TrimSpace(input.CustomerEmail)
	input.CustomerPhone = strings.TrimSpace(input.CustomerPhone)

	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer data")
	}

	snapshot, err := s.carts.Get(ctx, cartKey)
	if err != nil {
		return nil, err
	}
	if len(snapshot.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	verified, err := s.verifier.Verify(ctx, snapshot.Items)
	if err != nil {
		s.metrics.IncSubmission(s.submitter.Kind(), "rejected")
		return nil, err
	}

	artifact, err := s.submitter.Submit(ctx, Submission{
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		SalespersonID: input.SalespersonID,
		Notes:         input.Notes,
		Items:         verified,
		Total:         TotalOf(verified),
		Actor:         input.Actor,
	})
	if err != nil {
		s.metrics.IncSubmission(s.submitter.Kind(), "failed")
		return nil, err
	}
	s.metrics.IncSubmission(s.submitter.Kind(), "accepted")

	// The order artifact exists at this point; a stale cart is recoverable,
	// a lost order is not.
	if err := s.carts.Drop(ctx, cartKey); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithCartKey(ctx, cartKey), "drop cart after checkout", err)
	}

	return artifact, nil
}
