package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bancadosucesso/storefront-backend/internal/cart"
	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
)

type stubProductLoader struct {
	products []models.Product
	err      error
	calls    int
	lastIDs  []uuid.UUID
}

func (s *stubProductLoader) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	s.calls++
	s.lastIDs = ids
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

func catalogProduct(id uuid.UUID, name, price string, active bool) models.Product {
	return models.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		IsActive: active,
	}
}

func cartLine(id uuid.UUID, name, price string, quantity int) cart.LineItem {
	return cart.LineItem{
		ProductID: id,
		Name:      name,
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  quantity,
	}
}

func requireVerificationFailure(t *testing.T, err error, reason VerificationReason, productID uuid.UUID) {
	t.Helper()
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodePriceCheck, coded.Code())

	var failure *VerificationFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, reason, failure.Reason)
	assert.Equal(t, productID, failure.ProductID)
}

func TestVerifyAcceptsMatchingCart(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	loader := &stubProductLoader{products: []models.Product{
		catalogProduct(p1, "Caderno Espiral", "10.00", true),
		catalogProduct(p2, "Caneta Azul", "25.00", true),
	}}
	verifier, err := NewVerifier(loader, 0.01, nil)
	require.NoError(t, err)

	verified, err := verifier.Verify(context.Background(), []cart.LineItem{
		cartLine(p1, "Caderno Espiral", "10.00", 2),
		cartLine(p2, "Caneta Azul", "25.00", 1),
	})
	require.NoError(t, err)
	require.Len(t, verified, 2)

	assert.Equal(t, 1, loader.calls)
	assert.Len(t, loader.lastIDs, 2)
	assert.True(t, verified[0].Subtotal.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, TotalOf(verified).Equal(decimal.RequireFromString("45.00")))
}

func TestVerifyRejectsPriceDrift(t *testing.T) {
	p1 := uuid.New()
	loader := &stubProductLoader{products: []models.Product{
		catalogProduct(p1, "Caderno Espiral", "12.00", true),
	}}
	verifier, err := NewVerifier(loader, 0.01, nil)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), []cart.LineItem{
		cartLine(p1, "Caderno Espiral", "10.00", 1),
	})
	requireVerificationFailure(t, err, ReasonPriceChanged, p1)
}

func TestVerifyToleratesFloatNoise(t *testing.T) {
	p1 := uuid.New()
	loader := &stubProductLoader{products: []models.Product{
		catalogProduct(p1, "Caderno Espiral", "9.99", true),
	}}
	verifier, err := NewVerifier(loader, 0.01, nil)
	require.NoError(t, err)

	noisy := cart.LineItem{
		ProductID: p1,
		Name:      "Caderno Espiral",
		UnitPrice: decimal.NewFromFloat(9.990000001),
		Quantity:  1,
	}
	verified, err := verifier.Verify(context.Background(), []cart.LineItem{noisy})
	require.NoError(t, err)

	// The authoritative catalog price wins, not the noisy cached one.
	assert.True(t, verified[0].UnitPrice.Equal(decimal.RequireFromString("9.99")))
}

func TestVerifyRejectsMissingProduct(t *testing.T) {
	p1 := uuid.New()
	loader := &stubProductLoader{}
	verifier, err := NewVerifier(loader, 0.01, nil)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), []cart.LineItem{
		cartLine(p1, "Caderno Espiral", "10.00", 1),
	})
	requireVerificationFailure(t, err, ReasonProductRemoved, p1)
}

func TestVerifyRejectsInactiveProduct(t *testing.T) {
	p1 := uuid.New()
	loader := &stubProductLoader{products: []models.Product{
		catalogProduct(p1, "Caderno Espiral", "10.00", false),
	}}
	verifier, err := NewVerifier(loader, 0.01, nil)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), []cart.LineItem{
		cartLine(p1, "Caderno Espiral", "10.00", 1),
	})
	requireVerificationFailure(t, err, ReasonProductRemoved, p1)
}

func TestVerifyRejectsRenamedProduct(t *testing.T) {
	p1 := uuid.New()
	loader := &stubProductLoader{products: []models.Product{
		catalogProduct(p1, "Caderno Universitário", "10.00", true),
	}}
	verifier, err := NewVerifier(loader, 0.01, nil)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), []cart.LineItem{
		cartLine(p1, "Caderno Espiral", "10.00", 1),
	})
	requireVerificationFailure(t, err, ReasonNameChanged, p1)
}

func TestVerifyFirstFailureAborts(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	loader := &stubProductLoader{products: []models.Product{
		// p1 is missing entirely, p2 also has a bad price.
		catalogProduct(p2, "Caneta Azul", "30.00", true),
	}}
	verifier, err := NewVerifier(loader, 0.01, nil)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), []cart.LineItem{
		cartLine(p1, "Caderno Espiral", "10.00", 1),
		cartLine(p2, "Caneta Azul", "25.00", 1),
	})
	requireVerificationFailure(t, err, ReasonProductRemoved, p1)
}

func TestVerifyEmptyCart(t *testing.T) {
	loader := &stubProductLoader{}
	verifier, err := NewVerifier(loader, 0.01, nil)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), nil)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
	assert.Zero(t, loader.calls)
}

func TestVerifyWrapsLoaderFailure(t *testing.T) {
	loader := &stubProductLoader{err: assert.AnError}
	verifier, err := NewVerifier(loader, 0.01, nil)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), []cart.LineItem{
		cartLine(uuid.New(), "Caderno Espiral", "10.00", 1),
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeDependency, coded.Code())
}
