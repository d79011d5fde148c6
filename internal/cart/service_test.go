package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
)

type stubProductLoader struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func newTestService(t *testing.T, products ...*models.Product) (Service, *MemoryPersister, *stubProductLoader) {
	t.Helper()

	loader := &stubProductLoader{products: make(map[uuid.UUID]*models.Product)}
	for _, p := range products {
		loader.products[p.ID] = p
	}
	persister := NewMemoryPersister()
	svc, err := NewService(persister, loader, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, persister, loader
}

func testProduct(name, price string) *models.Product {
	return &models.Product{
		ID:       uuid.New(),
		Name:     name,
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	}
}

func TestServiceAddItemCachesCatalogFields(t *testing.T) {
	product := testProduct("Panela de Pressão", "89.90")
	image := "https://cdn.example.com/panela.jpg"
	product.ImageURL = &image
	svc, _, _ := newTestService(t, product)

	snap, err := svc.AddItem(context.Background(), "visitor-1", product.ID)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if len(snap.Items) != 1 {
		t.Fatalf("expected one line item, got %d", len(snap.Items))
	}
	line := snap.Items[0]
	if line.Name != product.Name {
		t.Fatalf("expected cached name %q, got %q", product.Name, line.Name)
	}
	if !line.UnitPrice.Equal(product.Price) {
		t.Fatalf("expected cached price %s, got %s", product.Price, line.UnitPrice)
	}
	if line.ImageURL == nil || *line.ImageURL != image {
		t.Fatalf("expected cached image url")
	}
}

func TestServiceAddItemUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.AddItem(context.Background(), "visitor-1", uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestServiceAddItemInactiveProduct(t *testing.T) {
	product := testProduct("Produto Desativado", "10.00")
	product.IsActive = false
	svc, _, _ := newTestService(t, product)

	_, err := svc.AddItem(context.Background(), "visitor-1", product.ID)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceRequiresCartKey(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "  ")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServicePersistsAcrossInstances(t *testing.T) {
	product := testProduct("Jogo de Toalhas", "59.90")
	svc, persister, loader := newTestService(t, product)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "visitor-1", product.ID); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := svc.AddItem(ctx, "visitor-1", product.ID); err != nil {
		t.Fatalf("add item: %v", err)
	}

	fresh, err := NewService(persister, loader, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	snap, err := fresh.Get(ctx, "visitor-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 2 {
		t.Fatalf("expected persisted cart with quantity 2, got %+v", snap.Items)
	}
}

func TestServiceCartsAreIsolatedByKey(t *testing.T) {
	product := testProduct("Caneca Esmaltada", "12.50")
	svc, _, _ := newTestService(t, product)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "visitor-1", product.ID); err != nil {
		t.Fatalf("add item: %v", err)
	}

	snap, err := svc.Get(ctx, "visitor-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(snap.Items) != 0 {
		t.Fatalf("expected empty cart for other key, got %d items", len(snap.Items))
	}
}

func TestServiceSetQuantityAndRemove(t *testing.T) {
	product := testProduct("Tábua de Corte", "24.00")
	svc, _, _ := newTestService(t, product)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "visitor-1", product.ID); err != nil {
		t.Fatalf("add item: %v", err)
	}
	snap, err := svc.SetQuantity(ctx, "visitor-1", product.ID, 5)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if snap.TotalItems != 5 {
		t.Fatalf("expected 5 items, got %d", snap.TotalItems)
	}

	snap, err = svc.SetQuantity(ctx, "visitor-1", product.ID, 0)
	if err != nil {
		t.Fatalf("set quantity zero: %v", err)
	}
	if len(snap.Items) != 0 {
		t.Fatalf("expected removal at quantity zero, got %+v", snap.Items)
	}
}

func TestServiceDropDeletesPersistedCart(t *testing.T) {
	product := testProduct("Faqueiro Inox", "120.00")
	svc, persister, _ := newTestService(t, product)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "visitor-1", product.ID); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := svc.Drop(ctx, "visitor-1"); err != nil {
		t.Fatalf("drop: %v", err)
	}
	data, err := persister.Load(ctx, "visitor-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if data != nil {
		t.Fatalf("expected cart gone from persister, got %q", data)
	}
}
