package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bancadosucesso/storefront-backend/api/middleware"
	cartsvc "github.com/bancadosucesso/storefront-backend/internal/cart"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
)

type stubCartService struct {
	snapshot cartsvc.Snapshot
	err      error

	addedProduct uuid.UUID
	setProduct   uuid.UUID
	setQuantity  int
}

func (s *stubCartService) Get(ctx context.Context, cartKey string) (cartsvc.Snapshot, error) {
	return s.snapshot, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, cartKey string, productID uuid.UUID) (cartsvc.Snapshot, error) {
	s.addedProduct = productID
	return s.snapshot, s.err
}

func (s *stubCartService) SetQuantity(ctx context.Context, cartKey string, productID uuid.UUID, quantity int) (cartsvc.Snapshot, error) {
	s.setProduct = productID
	s.setQuantity = quantity
	return s.snapshot, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, cartKey string, productID uuid.UUID) (cartsvc.Snapshot, error) {
	return s.snapshot, s.err
}

func (s *stubCartService) Clear(ctx context.Context, cartKey string) (cartsvc.Snapshot, error) {
	return s.snapshot, s.err
}

func (s *stubCartService) Drop(ctx context.Context, cartKey string) error {
	return s.err
}

func withCartKey(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithCartKey(req.Context(), "cart_a1b2c3d4e5"))
}

func TestCartGetReturnsSnapshot(t *testing.T) {
	productID := uuid.New()
	svc := &stubCartService{snapshot: cartsvc.Snapshot{
		Items: []cartsvc.LineItem{{
			ProductID: productID,
			Name:      "Caderno Espiral",
			UnitPrice: decimal.NewFromFloat(10.00),
			Quantity:  2,
		}},
		TotalItems: 2,
		TotalPrice: decimal.NewFromFloat(20.00),
	}}
	handler := CartGet(svc, nil)

	req := withCartKey(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartsvc.Snapshot `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalItems != 2 {
		t.Fatalf("expected total_items 2 got %d", envelope.Data.TotalItems)
	}
	if len(envelope.Data.Items) != 1 || envelope.Data.Items[0].ProductID != productID {
		t.Fatal("unexpected items in snapshot")
	}
}

func TestCartGetWithoutCartKey(t *testing.T) {
	handler := CartGet(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemForwardsProduct(t *testing.T) {
	productID := uuid.New()
	svc := &stubCartService{}
	handler := CartAddItem(svc, nil)

	body, _ := json.Marshal(map[string]string{"product_id": productID.String()})
	req := withCartKey(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.addedProduct != productID {
		t.Fatalf("expected product %s forwarded got %s", productID, svc.addedProduct)
	}
}

func TestCartAddItemRejectsUnknownFields(t *testing.T) {
	handler := CartAddItem(&stubCartService{}, nil)

	req := withCartKey(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader([]byte(`{"product":"oops"}`))))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartSetQuantityUsesRouteParam(t *testing.T) {
	productID := uuid.New()
	svc := &stubCartService{}
	handler := CartSetQuantity(svc, nil)

	body := bytes.NewReader([]byte(`{"quantity":0}`))
	req := withCartKey(httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/"+productID.String(), body))
	req = withURLParam(req, "id", productID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.setProduct != productID {
		t.Fatalf("expected product %s forwarded got %s", productID, svc.setProduct)
	}
	if svc.setQuantity != 0 {
		t.Fatalf("expected quantity 0 forwarded got %d", svc.setQuantity)
	}
}

func TestCartRemoveItemServiceError(t *testing.T) {
	productID := uuid.New()
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeDependency, "redis down")}
	handler := CartRemoveItem(svc, nil)

	req := withCartKey(httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/"+productID.String(), nil))
	req = withURLParam(req, "id", productID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
