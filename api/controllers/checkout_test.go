package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	checkoutsvc "github.com/bancadosucesso/storefront-backend/internal/checkout"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
)

type stubCheckoutService struct {
	artifact *checkoutsvc.Artifact
	err      error
	input    checkoutsvc.SubmitInput
	cartKey  string
}

func (s *stubCheckoutService) Submit(ctx context.Context, cartKey string, input checkoutsvc.SubmitInput) (*checkoutsvc.Artifact, error) {
	s.cartKey = cartKey
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return s.artifact, nil
}

func validCheckoutBody() []byte {
	body, _ := json.Marshal(map[string]any{
		"customer_name":  "Maria Silva",
		"customer_email": "maria@example.com",
		"customer_phone": "11987654321",
	})
	return body
}

func TestCheckoutSubmitSuccess(t *testing.T) {
	svc := &stubCheckoutService{artifact: &checkoutsvc.Artifact{
		Fulfillment: "order",
		Message:     "pedido confirmado",
		TotalLabel:  "R$ 45,00",
	}}
	handler := CheckoutSubmit(svc, nil)

	req := withCartKey(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(validCheckoutBody())))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.cartKey != "cart_a1b2c3d4e5" {
		t.Fatalf("unexpected cart key forwarded: %q", svc.cartKey)
	}
	if svc.input.CustomerName != "Maria Silva" {
		t.Fatalf("unexpected customer name forwarded: %q", svc.input.CustomerName)
	}

	var envelope struct {
		Data checkoutsvc.Artifact `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalLabel != "R$ 45,00" {
		t.Fatalf("unexpected total label: %q", envelope.Data.TotalLabel)
	}
}

func TestCheckoutSubmitMissingFields(t *testing.T) {
	svc := &stubCheckoutService{}
	handler := CheckoutSubmit(svc, nil)

	req := withCartKey(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader([]byte(`{"customer_name":"Maria Silva"}`))))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.cartKey != "" {
		t.Fatal("service should not be reached on invalid payload")
	}
}

func TestCheckoutSubmitWithoutCartKey(t *testing.T) {
	handler := CheckoutSubmit(&stubCheckoutService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(validCheckoutBody()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutSubmitPriceVerificationFailure(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodePriceCheck, "cart contents changed").
		WithDetails(map[string]any{"reason": "price_changed"})}
	handler := CheckoutSubmit(svc, nil)

	req := withCartKey(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(validCheckoutBody())))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "PRICE_VERIFICATION_FAILED" {
		t.Fatalf("unexpected error code: %q", envelope.Error.Code)
	}
	if envelope.Error.Details["reason"] != "price_changed" {
		t.Fatalf("expected failure reason in details, got %v", envelope.Error.Details)
	}
}
