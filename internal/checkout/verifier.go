package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bancadosucesso/storefront-backend/internal/cart"
	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/metrics"
)

// VerificationReason identifies which integrity check a line item failed.
type VerificationReason string

const (
	ReasonProductRemoved VerificationReason = "product_removed"
	ReasonPriceChanged   VerificationReason = "price_changed"
	ReasonNameChanged    VerificationReason = "name_changed"
)

// VerificationFailure carries the first line item that failed verification.
type VerificationFailure struct {
	Reason    VerificationReason
	ProductID uuid.UUID
}

func (f *VerificationFailure) Error() string {
	return fmt.Sprintf("cart verification failed: %s for product %s", f.Reason, f.ProductID)
}

// VerifiedItem is a cart line revalidated against the catalog. Name and unit
// price come from the authoritative product row, never the client cache.
type VerifiedItem struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Subtotal  decimal.Decimal
}

type batchProductLoader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Verifier cross-checks cart line items against the catalog before an order
// artifact may be produced.
type Verifier struct {
	products  batchProductLoader
	tolerance decimal.Decimal
	metrics   *metrics.CheckoutMetrics
}

// NewVerifier builds a verifier with the given absolute price tolerance. The
// tolerance absorbs float rounding from clients, not real price drift.
func NewVerifier(products batchProductLoader, tolerance float64, checkoutMetrics *metrics.CheckoutMetrics) (*Verifier, error) {
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if tolerance < 0 {
		return nil, fmt.Errorf("tolerance cannot be negative")
	}
	return &Verifier{
		products:  products,
		tolerance: decimal.NewFromFloat(tolerance),
		metrics:   checkoutMetrics,
	}, nil
}

// Verify fetches the authoritative products for the cart in one batched query
// and checks every line item in order. The first failing line aborts the whole
// verification; the cart is never mutated here.
func (v *Verifier) Verify(ctx context.Context, items []cart.LineItem) ([]VerifiedItem, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}

	start := time.Now()
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	rows, err := v.products.FindByIDs(ctx, ids)
	if err != nil {
		v.metrics.ObserveVerifyDuration("error", time.Since(start))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch products for verification")
	}

	catalog := make(map[uuid.UUID]*models.Product, len(rows))
	for i := range rows {
		catalog[rows[i].ID] = &rows[i]
	}

	verified := make([]VerifiedItem, 0, len(items))
	for _, item := range items {
		product, ok := catalog[item.ProductID]
		if !ok || !product.IsActive {
			return nil, v.fail(start, &VerificationFailure{Reason: ReasonProductRemoved, ProductID: item.ProductID})
		}
		if product.Price.Sub(item.UnitPrice).Abs().GreaterThan(v.tolerance) {
			return nil, v.fail(start, &VerificationFailure{Reason: ReasonPriceChanged, ProductID: item.ProductID})
		}
		if product.Name != item.Name {
			return nil, v.fail(start, &VerificationFailure{Reason: ReasonNameChanged, ProductID: item.ProductID})
		}

		quantity := decimal.NewFromInt(int64(item.Quantity))
		verified = append(verified, VerifiedItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
			Subtotal:  product.Price.Mul(quantity),
		})
	}

	v.metrics.ObserveVerifyDuration("ok", time.Since(start))
	return verified, nil
}

func (v *Verifier) fail(start time.Time, failure *VerificationFailure) error {
	v.metrics.ObserveVerifyDuration("failed", time.Since(start))
	v.metrics.IncVerifyFailure(string(failure.Reason))
	return pkgerrors.Wrap(pkgerrors.CodePriceCheck, failure, "cart contents changed").
		WithDetails(map[string]any{
			"reason":     string(failure.Reason),
			"product_id": failure.ProductID.String(),
		})
}

// TotalOf sums the verified subtotals.
func TotalOf(items []VerifiedItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}
